package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerHostLimiter_UnlimitedWhenRateZero(t *testing.T) {
	t.Parallel()
	l := NewPerHostLimiter(0, 0)
	for range 100 {
		require.NoError(t, l.Wait(context.Background(), "a.example.com"))
	}
}

func TestPerHostLimiter_NilIsUnlimited(t *testing.T) {
	t.Parallel()
	var l *PerHostLimiter
	assert.NoError(t, l.Wait(context.Background(), "a.example.com"))
}

func TestPerHostLimiter_WithinBurst(t *testing.T) {
	t.Parallel()
	l := NewPerHostLimiter(1, 5)
	start := time.Now()
	for range 5 {
		require.NoError(t, l.Wait(context.Background(), "a.example.com"))
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond, "burst tokens must not block")
}

func TestPerHostLimiter_HostsIndependent(t *testing.T) {
	t.Parallel()
	l := NewPerHostLimiter(1, 1)
	start := time.Now()
	require.NoError(t, l.Wait(context.Background(), "a.example.com"))
	require.NoError(t, l.Wait(context.Background(), "b.example.com"))
	assert.Less(t, time.Since(start), 500*time.Millisecond, "buckets are per host")
}

func TestPerHostLimiter_CancelledContext(t *testing.T) {
	t.Parallel()
	l := NewPerHostLimiter(0.001, 1)
	require.NoError(t, l.Wait(context.Background(), "a.example.com")) // drain the burst

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.Wait(ctx, "a.example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit a.example.com")
}
