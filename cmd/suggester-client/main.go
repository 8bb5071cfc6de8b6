// cmd/suggester-client/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/logger"
)

const defaultQuery = "I want a lightweight, waterproof jacket for hiking that packs small."

type options struct {
	ServerURL string
	Path      string
	Query     string
	Limit     int
	Health    bool
	Timeout   time.Duration
}

func main() {
	_ = godotenv.Load()

	serverURL := os.Getenv("SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8000"
	}

	opts := options{}
	flag.StringVar(&opts.ServerURL, "url", serverURL, "server base URL (defaults to $SERVER_URL)")
	flag.StringVar(&opts.Path, "path", "/mcp", "MCP endpoint path")
	flag.StringVar(&opts.Query, "query", defaultQuery, "shopping query")
	flag.IntVar(&opts.Limit, "limit", 1, "maximum number of products")
	flag.BoolVar(&opts.Health, "health", false, "call the health tool instead of gpt_recommend")
	flag.DurationVar(&opts.Timeout, "timeout", 3*time.Minute, "overall call timeout")
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		opts.Query = strings.Join(args, " ")
	}

	zapLog, err := logger.New("info", "console", "stderr")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	if err := run(ctx, opts, os.Stdout); err != nil {
		zapLog.Error("client call failed", zap.Error(err), zap.String("url", opts.ServerURL))
		os.Exit(1)
	}
}

// run connects, calls one tool and writes its text content to out.
func run(ctx context.Context, opts options, out io.Writer) error {
	endpoint := strings.TrimRight(opts.ServerURL, "/") + opts.Path

	cli, err := mcpclient.NewStreamableHttpClient(endpoint)
	if err != nil {
		return fmt.Errorf("failed to create MCP client: %w", err)
	}
	defer cli.Close()

	if err := cli.Start(ctx); err != nil {
		return fmt.Errorf("failed to start MCP client: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "suggester-client", Version: "1.0.0"}
	if _, err := cli.Initialize(ctx, initReq); err != nil {
		return fmt.Errorf("failed to initialize MCP client: %w", err)
	}

	req := mcp.CallToolRequest{}
	if opts.Health {
		req.Params.Name = "health"
	} else {
		req.Params.Name = "gpt_recommend"
		req.Params.Arguments = map[string]interface{}{
			"query": opts.Query,
			"limit": opts.Limit,
		}
	}

	result, err := cli.CallTool(ctx, req)
	if err != nil {
		return fmt.Errorf("%s call failed: %w", req.Params.Name, err)
	}

	var text strings.Builder
	for _, content := range result.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			text.WriteString(tc.Text)
		}
	}
	if result.IsError {
		return fmt.Errorf("%s returned an error: %s", req.Params.Name, text.String())
	}

	_, err = fmt.Fprintln(out, text.String())
	return err
}
