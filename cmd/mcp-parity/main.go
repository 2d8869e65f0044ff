// Command mcp-parity runs the MCP tool server for contract comparison runs.
// Uses stdio transport for integration with AI assistants.
package main

import (
	"context"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/contract-parity/parity-go/internal/config"
	"github.com/contract-parity/parity-go/internal/fetch"
	"github.com/contract-parity/parity-go/internal/mcpserver"
	"github.com/contract-parity/parity-go/internal/observability"
	"github.com/contract-parity/parity-go/internal/parity"
	"github.com/contract-parity/parity-go/internal/store"
	"github.com/contract-parity/parity-go/internal/testutil"
)

const maxStoredRuns = 50

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	doc, err := config.LoadEndpointsFile(cfg.EndpointsFile)
	if err != nil {
		log.Fatalf("load endpoints: %v", err)
	}

	var fetcher parity.Fetcher
	switch cfg.Mode {
	case config.ModeProduction:
		fetcher = fetch.New(fetch.Options{
			Timeout:   cfg.HTTPTimeout,
			RPS:       cfg.FetchRPS,
			Burst:     cfg.FetchBurst,
			UserAgent: "mcp-parity",
			Tokens: map[string]string{
				cfg.EnvA.Name: cfg.EnvA.Token,
				cfg.EnvB.Name: cfg.EnvB.Token,
			},
		})
	default: // stub mode
		fixturesDir := cfg.FixturesDir
		if fixturesDir == "" {
			fixturesDir = testutil.GoldenDir()
		}
		fetcher = &testutil.StubFetcher{FixturesDir: fixturesDir}
	}

	envA := parity.Environment{Name: cfg.EnvA.Name, BaseURL: cfg.EnvA.BaseURL}
	envB := parity.Environment{Name: cfg.EnvB.Name, BaseURL: cfg.EnvB.BaseURL}
	svc := mcpserver.NewService(doc, fetcher, envA, envB, store.NewRunStore(maxStoredRuns))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "contract-parity",
		Version: observability.ServiceVersion,
	}, nil)
	mcpserver.RegisterTools(server, svc)

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}
