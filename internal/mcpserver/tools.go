// Package mcpserver exposes contract comparison runs via MCP tools.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/contract-parity/parity-go/internal/analysis"
	"github.com/contract-parity/parity-go/internal/annotate"
	"github.com/contract-parity/parity-go/internal/config"
	"github.com/contract-parity/parity-go/internal/contract"
	"github.com/contract-parity/parity-go/internal/parity"
	"github.com/contract-parity/parity-go/internal/report"
	"github.com/contract-parity/parity-go/internal/store"
	"github.com/contract-parity/parity-go/internal/uischema"
)

// Service runs comparisons in-process for MCP callers and remembers their
// results, so follow-up tools can render and explain past runs.
type Service struct {
	doc     *config.Document
	fetcher parity.Fetcher
	envA    parity.Environment
	envB    parity.Environment
	runs    *store.RunStore
}

// NewService wires a Service over the given endpoint document and fetcher.
func NewService(doc *config.Document, fetcher parity.Fetcher, envA, envB parity.Environment, runs *store.RunStore) *Service {
	return &Service{doc: doc, fetcher: fetcher, envA: envA, envB: envB, runs: runs}
}

// RunComparison performs one comparison run synchronously and stores it.
func (s *Service) RunComparison(ctx context.Context, names []string) (store.Run, error) {
	specs, err := s.doc.SpecsFor(names)
	if err != nil {
		return store.Run{}, err
	}
	run := s.runs.Create()
	ignore := contract.NewSegmentIgnore(s.doc.Ignore...)
	rep := parity.RunObserved(ctx, run.ID, specs, s.envA, s.envB, s.fetcher, ignore, nil)
	an := analysis.Analyze(&rep)
	if err := s.runs.Complete(run.ID, &rep, an, annotate.RunAnnotations{}); err != nil {
		return store.Run{}, err
	}
	return s.runs.Get(run.ID)
}

// GetRun returns a stored run by ID.
func (s *Service) GetRun(id string) (store.Run, error) {
	return s.runs.Get(id)
}

// ListRuns returns stored runs, newest first.
func (s *Service) ListRuns() []store.Run {
	return s.runs.List()
}

// Endpoints returns the endpoints the service compares.
func (s *Service) Endpoints() ([]parity.EndpointSpec, parity.Environment, parity.Environment) {
	return s.doc.Specs(), s.envA, s.envB
}

// RegisterTools registers all parity MCP tools on the given server.
func RegisterTools(server *mcp.Server, svc *Service) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_endpoints",
			Description: "List the endpoints under comparison and the two environments they are fetched from",
		},
		listEndpointsHandler(svc),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "run_comparison",
			Description: "Fetch every configured endpoint from both environments, diff the response shapes, and return the run report",
		},
		runComparisonHandler(svc),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_run_report",
			Description: "Render a stored run report as json, text, or markdown",
		},
		getRunReportHandler(svc),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "explain_drift",
			Description: "Classify a stored run's differences into breaking, removal, and additive findings with remediation hints",
		},
		explainDriftHandler(svc),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_run_ui",
			Description: "Get UI schema components for rendering a stored run",
		},
		getRunUIHandler(svc),
	)
}

type listEndpointsInput struct{}

func listEndpointsHandler(svc *Service) mcp.ToolHandlerFor[listEndpointsInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ listEndpointsInput) (*mcp.CallToolResult, any, error) {
		specs, envA, envB := svc.Endpoints()
		return textResult(map[string]any{
			"environment_a": envA,
			"environment_b": envB,
			"endpoints":     specs,
		})
	}
}

type runComparisonInput struct {
	// Endpoints restricts the run to the named endpoints; empty means all.
	Endpoints []string `json:"endpoints,omitempty"`
}

func runComparisonHandler(svc *Service) mcp.ToolHandlerFor[runComparisonInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input runComparisonInput) (*mcp.CallToolResult, any, error) {
		run, err := svc.RunComparison(ctx, input.Endpoints)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return textResult(run)
	}
}

type runReportInput struct {
	RunID  string `json:"run_id"`
	Format string `json:"format,omitempty"` // json, text, or markdown
}

func getRunReportHandler(svc *Service) mcp.ToolHandlerFor[runReportInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input runReportInput) (*mcp.CallToolResult, any, error) {
		if input.RunID == "" {
			return errorResult("run_id is required"), nil, nil
		}
		run, err := svc.GetRun(input.RunID)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		if run.Report == nil {
			return errorResult(fmt.Sprintf("run %s is %s and has no report", run.ID, run.State)), nil, nil
		}

		format := report.Format(input.Format)
		if input.Format == "" || input.Format == "md" {
			format = report.FormatMarkdown
		}
		if !format.Valid() {
			return errorResult(fmt.Sprintf("unknown report format %q", input.Format)), nil, nil
		}

		var buf bytes.Buffer
		if err := report.Write(&buf, format, run.Report); err != nil {
			return nil, nil, fmt.Errorf("get_run_report: %w", err)
		}
		return plainResult(buf.String())
	}
}

type runIDInput struct {
	RunID string `json:"run_id"`
}

func explainDriftHandler(svc *Service) mcp.ToolHandlerFor[runIDInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input runIDInput) (*mcp.CallToolResult, any, error) {
		if input.RunID == "" {
			return errorResult("run_id is required"), nil, nil
		}
		run, err := svc.GetRun(input.RunID)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		if run.Report == nil {
			return errorResult(fmt.Sprintf("run %s is %s and has no report", run.ID, run.State)), nil, nil
		}

		an := run.Analysis
		if an == nil {
			computed := analysis.Analyze(run.Report)
			an = &computed
		}
		return textResult(an)
	}
}

func getRunUIHandler(svc *Service) mcp.ToolHandlerFor[runIDInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input runIDInput) (*mcp.CallToolResult, any, error) {
		if input.RunID == "" {
			return errorResult("run_id is required"), nil, nil
		}
		run, err := svc.GetRun(input.RunID)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		if run.Report == nil {
			return errorResult(fmt.Sprintf("run %s is %s and has no report", run.ID, run.State)), nil, nil
		}

		schema := uischema.Build(run.Report, run.Analysis, run.Annotations)
		return textResult(schema)
	}
}

func textResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal result: %w", err)
	}
	return plainResult(string(data))
}

func plainResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
