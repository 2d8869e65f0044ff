package mcpserver_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contract-parity/parity-go/internal/config"
	"github.com/contract-parity/parity-go/internal/mcpserver"
	"github.com/contract-parity/parity-go/internal/parity"
	"github.com/contract-parity/parity-go/internal/store"
)

// stubFetcher serves fixed bodies keyed by environment name.
type stubFetcher struct {
	bodies map[string]string
}

func (f *stubFetcher) Fetch(_ context.Context, env parity.Environment, _ parity.EndpointSpec) parity.Outcome {
	body, ok := f.bodies[env.Name]
	if !ok {
		return parity.FailureOutcome("no route")
	}
	return parity.SuccessOutcome(http.StatusOK, nil, []byte(body))
}

func newService() *mcpserver.Service {
	doc := &config.Document{
		Endpoints: []config.EndpointDoc{
			{Name: "users", Path: "/api/users"},
			{Name: "orders", Path: "/api/orders"},
		},
	}
	fetcher := &stubFetcher{bodies: map[string]string{
		"canary": `{"id": 1}`,
		"prod":   `{"id": "one"}`,
	}}
	return mcpserver.NewService(doc, fetcher,
		parity.Environment{Name: "canary", BaseURL: "http://canary.local"},
		parity.Environment{Name: "prod", BaseURL: "http://prod.local"},
		store.NewRunStore(10),
	)
}

func TestRegisterTools(t *testing.T) {
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "v1"}, nil)
	mcpserver.RegisterTools(server, newService())

	// Verify it compiles and registers without panic.
	assert.NotNil(t, server)
}

func TestService_RunComparison(t *testing.T) {
	svc := newService()

	run, err := svc.RunComparison(t.Context(), nil)
	require.NoError(t, err)
	assert.Equal(t, store.RunCompleted, run.State)
	require.NotNil(t, run.Report)
	assert.Equal(t, run.ID, run.Report.RunID)
	assert.Equal(t, parity.StatusFail, run.Report.Status)
	require.NotNil(t, run.Analysis)
	assert.Equal(t, 2, run.Analysis.BreakingCount)

	got, err := svc.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
}

func TestService_RunComparison_Filter(t *testing.T) {
	svc := newService()

	run, err := svc.RunComparison(t.Context(), []string{"orders"})
	require.NoError(t, err)
	require.NotNil(t, run.Report)
	require.Len(t, run.Report.Endpoints, 1)
	assert.Equal(t, "orders", run.Report.Endpoints[0].EndpointName)
}

func TestService_RunComparison_UnknownEndpoint(t *testing.T) {
	svc := newService()

	_, err := svc.RunComparison(t.Context(), []string{"nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown endpoint")
}

func TestService_ListRuns(t *testing.T) {
	svc := newService()
	first, err := svc.RunComparison(t.Context(), nil)
	require.NoError(t, err)
	second, err := svc.RunComparison(t.Context(), nil)
	require.NoError(t, err)

	runs := svc.ListRuns()
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)
}
