package verifier

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contract-parity/parity-go/internal/parity"
)

// scriptedFetcher returns outcomes in order, repeating the last one.
type scriptedFetcher struct {
	mu       sync.Mutex
	outcomes []parity.Outcome
	calls    int
}

func (f *scriptedFetcher) Fetch(_ context.Context, _ parity.Environment, _ parity.EndpointSpec) parity.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i >= len(f.outcomes) {
		i = len(f.outcomes) - 1
	}
	return f.outcomes[i]
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestWaitHealthy_FirstAttempt(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{outcomes: []parity.Outcome{parity.SuccessOutcome(200, nil, nil)}}
	err := WaitHealthy(context.Background(), f, parity.Environment{Name: "prod"}, "/health", 3, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 1, f.callCount())
}

func TestWaitHealthy_RecoversWithinAttempts(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{outcomes: []parity.Outcome{
		parity.FailureOutcome("connection refused"),
		parity.SuccessOutcome(503, nil, nil),
		parity.SuccessOutcome(200, nil, nil),
	}}
	err := WaitHealthy(context.Background(), f, parity.Environment{Name: "prod"}, "/health", 5, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 3, f.callCount())
}

func TestWaitHealthy_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{outcomes: []parity.Outcome{parity.SuccessOutcome(503, nil, nil)}}
	err := WaitHealthy(context.Background(), f, parity.Environment{Name: "canary"}, "/health", 3, time.Millisecond)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "canary not healthy after 3 attempts")
	assert.Contains(t, err.Error(), "status 503")
	assert.Equal(t, 3, f.callCount())
}

func TestWaitHealthy_ReportsFetchReason(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{outcomes: []parity.Outcome{parity.FailureOutcome("connection refused")}}
	err := WaitHealthy(context.Background(), f, parity.Environment{Name: "canary"}, "/health", 2, time.Millisecond)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWaitHealthy_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &scriptedFetcher{outcomes: []parity.Outcome{parity.SuccessOutcome(503, nil, nil)}}
	err := WaitHealthy(ctx, f, parity.Environment{Name: "prod"}, "/health", 5, time.Hour)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitHealthy_ZeroAttemptsMeansOne(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{outcomes: []parity.Outcome{parity.SuccessOutcome(200, nil, nil)}}
	err := WaitHealthy(context.Background(), f, parity.Environment{Name: "prod"}, "/health", 0, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 1, f.callCount())
}

func TestWaitAllHealthy(t *testing.T) {
	t.Parallel()

	healthy := &scriptedFetcher{outcomes: []parity.Outcome{parity.SuccessOutcome(200, nil, nil)}}
	envs := []parity.Environment{{Name: "canary"}, {Name: "prod"}}
	require.NoError(t, WaitAllHealthy(context.Background(), healthy, envs, "/health", 2, time.Millisecond))

	unhealthy := &scriptedFetcher{outcomes: []parity.Outcome{parity.FailureOutcome("boom")}}
	err := WaitAllHealthy(context.Background(), unhealthy, envs, "/health", 1, time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not healthy")
}
