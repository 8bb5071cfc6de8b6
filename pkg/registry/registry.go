// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/validation"
)

//go:embed tools.json
var embeddedTools []byte

// Default parses the tool descriptors compiled into the binary.
func Default() (*ToolRegistry, error) {
	return parse(embeddedTools)
}

// LoadRegistry reads tool descriptors from path.
func LoadRegistry(path string) (*ToolRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*ToolRegistry, error) {
	var reg ToolRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode tool registry: %w", err)
	}

	seen := make(map[string]bool, len(reg.Tools))
	for _, tool := range reg.Tools {
		if err := validation.ValidateToolName(tool.Name); err != nil {
			return nil, err
		}
		if seen[tool.Name] {
			return nil, fmt.Errorf("duplicate tool %q", tool.Name)
		}
		seen[tool.Name] = true
	}
	return &reg, nil
}

// Lookup finds a tool by name.
func (r *ToolRegistry) Lookup(name string) (Tool, bool) {
	for _, tool := range r.Tools {
		if tool.Name == name {
			return tool, true
		}
	}
	return Tool{}, false
}

// Validate applies the stricter checks used before shipping a registry file:
// descriptive fields present, a parseable timeout, and an object input schema
// that gojsonschema can compile.
func (r *ToolRegistry) Validate() error {
	if len(r.Tools) == 0 {
		return fmt.Errorf("registry contains no tools")
	}

	for _, tool := range r.Tools {
		if tool.DisplayName == "" {
			return fmt.Errorf("tool %s missing required field: displayName", tool.Name)
		}
		if tool.Description == "" {
			return fmt.Errorf("tool %s missing required field: description", tool.Name)
		}
		if tool.Timeout != "" {
			if d, err := time.ParseDuration(tool.Timeout); err != nil || d <= 0 {
				return fmt.Errorf("tool %s has invalid timeout %q", tool.Name, tool.Timeout)
			}
		}
		if tool.InputSchema["type"] != "object" {
			return fmt.Errorf("tool %s input schema must be of type object", tool.Name)
		}
		if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(tool.InputSchema)); err != nil {
			return fmt.Errorf("tool %s has an invalid input schema: %w", tool.Name, err)
		}
	}
	return nil
}

// Save writes the registry as indented JSON.
func (r *ToolRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
