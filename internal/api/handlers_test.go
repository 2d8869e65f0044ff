package api_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contract-parity/parity-go/internal/api"
	"github.com/contract-parity/parity-go/internal/config"
	"github.com/contract-parity/parity-go/internal/parity"
	"github.com/contract-parity/parity-go/internal/store"
	"github.com/contract-parity/parity-go/internal/stream"
)

// stubFetcher serves canned outcomes keyed by "<env> <path>". Paths without
// an entry fail, so tests can exercise fetch failures without a network.
type stubFetcher struct {
	bodies map[string]string
}

func (f *stubFetcher) Fetch(_ context.Context, env parity.Environment, spec parity.EndpointSpec) parity.Outcome {
	body, ok := f.bodies[env.Name+" "+spec.Path]
	if !ok {
		return parity.FailureOutcome("no route")
	}
	return parity.SuccessOutcome(http.StatusOK, http.Header{"Content-Type": []string{"application/json"}}, []byte(body))
}

type testEnv struct {
	ts    *httptest.Server
	store *store.RunStore
}

func newTestServer(t *testing.T, fetcher parity.Fetcher) testEnv {
	t.Helper()
	doc := &config.Document{
		Endpoints: []config.EndpointDoc{
			{Name: "users", Path: "/api/users"},
			{Name: "health", Path: "/health"},
		},
		Ignore: []string{"request_id"},
	}
	runs := store.NewRunStore(10)
	srv, err := api.New(t.Context(), doc, api.Options{
		Fetcher:     fetcher,
		Store:       runs,
		Streamer:    stream.NewStreamer(16),
		EnvA:        parity.Environment{Name: "canary", BaseURL: "http://canary.local"},
		EnvB:        parity.Environment{Name: "prod", BaseURL: "http://prod.local"},
		CORSOrigins: []string{"*"},
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return testEnv{ts: ts, store: runs}
}

func identicalFetcher() *stubFetcher {
	return &stubFetcher{bodies: map[string]string{
		"canary /api/users": `{"id": 1, "name": "ada"}`,
		"prod /api/users":   `{"id": 2, "name": "bob"}`,
		"canary /health":    `{"status": "ok"}`,
		"prod /health":      `{"status": "ok"}`,
	}}
}

// createRun triggers a run and waits for it to leave the running state.
func createRun(t *testing.T, env testEnv, body string) store.Run {
	t.Helper()
	resp, err := http.Post(env.ts.URL+"/api/v1/runs", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var created struct {
		ID    string `json:"id"`
		State string `json:"state"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "running", created.State)

	var run store.Run
	require.Eventually(t, func() bool {
		run, err = env.store.Get(created.ID)
		return err == nil && run.State != store.RunRunning
	}, 2*time.Second, 10*time.Millisecond, "run never finished")
	return run
}

func TestHealth(t *testing.T) {
	env := newTestServer(t, identicalFetcher())

	resp, err := http.Get(env.ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestListEndpoints(t *testing.T) {
	env := newTestServer(t, identicalFetcher())

	resp, err := http.Get(env.ts.URL + "/api/v1/endpoints")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		EnvironmentA parity.Environment    `json:"environment_a"`
		EnvironmentB parity.Environment    `json:"environment_b"`
		Endpoints    []parity.EndpointSpec `json:"endpoints"`
		Ignore       []string              `json:"ignore"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "canary", body.EnvironmentA.Name)
	assert.Equal(t, "prod", body.EnvironmentB.Name)
	require.Len(t, body.Endpoints, 2)
	assert.Equal(t, "users", body.Endpoints[0].Name)
	assert.Equal(t, []string{"request_id"}, body.Ignore)
}

func TestCreateRun_CompletesAndStoresReport(t *testing.T) {
	env := newTestServer(t, identicalFetcher())

	run := createRun(t, env, "")
	assert.Equal(t, store.RunCompleted, run.State)
	require.NotNil(t, run.Report)
	assert.Equal(t, run.ID, run.Report.RunID)
	assert.Equal(t, parity.StatusPass, run.Report.Status)
	assert.Equal(t, 2, run.Report.Totals.TotalEndpoints)
	assert.Equal(t, 2, run.Report.Totals.SuccessfulComparisons)
	require.NotNil(t, run.Analysis)
	assert.NotNil(t, run.FinishedAt)
}

func TestCreateRun_EndpointFilter(t *testing.T) {
	env := newTestServer(t, identicalFetcher())

	run := createRun(t, env, `{"endpoints": ["health"]}`)
	require.NotNil(t, run.Report)
	require.Len(t, run.Report.Endpoints, 1)
	assert.Equal(t, "health", run.Report.Endpoints[0].EndpointName)
}

func TestCreateRun_UnknownEndpoint(t *testing.T) {
	env := newTestServer(t, identicalFetcher())

	resp, err := http.Post(env.ts.URL+"/api/v1/runs", "application/json", strings.NewReader(`{"endpoints": ["nope"]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateRun_FetchFailuresSurfaceAsError(t *testing.T) {
	env := newTestServer(t, &stubFetcher{bodies: map[string]string{}})

	run := createRun(t, env, "")
	assert.Equal(t, store.RunCompleted, run.State)
	require.NotNil(t, run.Report)
	assert.Equal(t, parity.StatusError, run.Report.Status)
	assert.Equal(t, 2, run.Report.Totals.FailedFetches)
}

func TestListRuns(t *testing.T) {
	env := newTestServer(t, identicalFetcher())
	createRun(t, env, "")
	createRun(t, env, "")

	resp, err := http.Get(env.ts.URL + "/api/v1/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Runs []store.Run `json:"runs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Runs, 2)
}

func TestGetRun_NotFound(t *testing.T) {
	env := newTestServer(t, identicalFetcher())

	resp, err := http.Get(env.ts.URL + "/api/v1/runs/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRunReport_Formats(t *testing.T) {
	env := newTestServer(t, identicalFetcher())
	run := createRun(t, env, "")

	tests := []struct {
		query       string
		contentType string
		want        string
	}{
		{"", "application/json", `"run_id"`},
		{"?format=json", "application/json", `"totals"`},
		{"?format=text", "text/plain; charset=utf-8", "Contract parity: canary vs prod"},
		{"?format=md", "text/markdown; charset=utf-8", "# Contract Parity Report"},
	}
	for _, tt := range tests {
		t.Run("format"+tt.query, func(t *testing.T) {
			resp, err := http.Get(fmt.Sprintf("%s/api/v1/runs/%s/report%s", env.ts.URL, run.ID, tt.query))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			assert.Contains(t, readAll(t, resp), tt.want)
		})
	}
}

func TestRunReport_UnknownFormat(t *testing.T) {
	env := newTestServer(t, identicalFetcher())
	run := createRun(t, env, "")

	resp, err := http.Get(env.ts.URL + "/api/v1/runs/" + run.ID + "/report?format=xml")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunReport_RunningRunHasNoReport(t *testing.T) {
	env := newTestServer(t, identicalFetcher())
	run := env.store.Create()

	resp, err := http.Get(env.ts.URL + "/api/v1/runs/" + run.ID + "/report")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestStream_NotFound(t *testing.T) {
	env := newTestServer(t, identicalFetcher())

	resp, err := http.Get(env.ts.URL + "/api/v1/stream/runs/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStream_ReplaysTerminalEvent(t *testing.T) {
	env := newTestServer(t, identicalFetcher())
	run := createRun(t, env, "")

	resp, err := http.Get(env.ts.URL + "/api/v1/stream/runs/" + run.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	types := readSSETypes(t, resp)
	require.NotEmpty(t, types)
	assert.Equal(t, "run_completed", types[len(types)-1])
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestServer(t, identicalFetcher())

	resp, err := http.Get(env.ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestCORSHeaders(t *testing.T) {
	env := newTestServer(t, identicalFetcher())

	resp, err := http.Get(env.ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	var sb strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteString("\n")
	}
	require.NoError(t, scanner.Err())
	return sb.String()
}

// readSSETypes collects the event types from an SSE response until the
// server closes the stream.
func readSSETypes(t *testing.T, resp *http.Response) []string {
	t.Helper()
	var types []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			types = append(types, name)
		}
	}
	return types
}
