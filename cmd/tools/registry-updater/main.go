// cmd/tools/registry-updater/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AI-Web3-Studio/mcp-product-suggester/pkg/registry"
)

const defaultRegistryPath = "pkg/registry/tools.json"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		help(out)
		return errors.New("missing command")
	}

	listCmd := flag.NewFlagSet("list", flag.ContinueOnError)
	listPath := listCmd.String("path", defaultRegistryPath, "Path to registry file")

	updateCmd := flag.NewFlagSet("update", flag.ContinueOnError)
	updatePath := updateCmd.String("path", defaultRegistryPath, "Path to registry file")
	name := updateCmd.String("name", "", "Tool name to update")
	field := updateCmd.String("field", "", "Field to update (version, displayName, description, category, timeout, tags)")
	value := updateCmd.String("value", "", "New value for the field")

	validateCmd := flag.NewFlagSet("validate", flag.ContinueOnError)
	validatePath := validateCmd.String("path", defaultRegistryPath, "Path to registry file")

	switch args[0] {
	case "list":
		if err := listCmd.Parse(args[1:]); err != nil {
			return err
		}
		return listTools(*listPath, out)

	case "update":
		if err := updateCmd.Parse(args[1:]); err != nil {
			return err
		}
		if *name == "" || *field == "" || *value == "" {
			updateCmd.Usage()
			return errors.New("name, field, and value are required for update")
		}
		if err := updateTool(*updatePath, *name, *field, *value); err != nil {
			return fmt.Errorf("updating tool: %w", err)
		}
		fmt.Fprintf(out, "Updated tool %s, field %s to %s\n", *name, *field, *value)
		return nil

	case "validate":
		if err := validateCmd.Parse(args[1:]); err != nil {
			return err
		}
		reg, err := registry.LoadRegistry(*validatePath)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		if err := reg.Validate(); err != nil {
			return fmt.Errorf("registry validation failed: %w", err)
		}
		fmt.Fprintf(out, "Registry validation passed. Found %d tools.\n", len(reg.Tools))
		return nil

	case "help":
		help(out)
		return nil

	default:
		help(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func listTools(path string, out io.Writer) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	for _, tool := range reg.Tools {
		fmt.Fprintf(out, "%-16s %-8s %-8s %s\n", tool.Name, tool.Version, tool.Timeout, tool.DisplayName)
	}
	return nil
}

func updateTool(path, name, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	found := false
	for i := range reg.Tools {
		if reg.Tools[i].Name != name {
			continue
		}
		found = true
		switch field {
		case "version":
			reg.Tools[i].Version = value
		case "displayName":
			reg.Tools[i].DisplayName = value
		case "description":
			reg.Tools[i].Description = value
		case "category":
			reg.Tools[i].Category = value
		case "timeout":
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("invalid timeout value: %w", err)
			}
			reg.Tools[i].Timeout = value
		case "tags":
			reg.Tools[i].Tags = strings.Split(value, ",")
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		break
	}

	if !found {
		return fmt.Errorf("tool %s not found", name)
	}

	reg.LastUpdated = time.Now().Format("2006-01-02")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return reg.Save(path)
}

func help(out io.Writer) {
	fmt.Fprintln(out, `
Usage: registry-updater <command> [flags]

Commands:
  list      List the tools in the registry
  update    Update an existing tool's field
  validate  Validate the registry file
  help      Show this help message

Examples:
  registry-updater list
  registry-updater update -name gpt_recommend -field timeout -value 90s
  registry-updater validate -path pkg/registry/tools.json

Use 'registry-updater <command> -h' for more information about a command.`)
}
