// Package verifier runs pre-flight health checks so a comparison run does not
// start against an environment that is still deploying.
package verifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/contract-parity/parity-go/internal/parity"
)

// WaitHealthy polls the environment's health path until it answers 2xx or the
// attempts are exhausted, waiting interval between attempts. The error names
// the environment and carries the last failure seen.
func WaitHealthy(ctx context.Context, f parity.Fetcher, env parity.Environment, path string, attempts int, interval time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	spec := parity.EndpointSpec{Name: "health", Method: http.MethodGet, Path: path}

	var last string
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("verifier: %s health check: %w", env.Name, ctx.Err())
			case <-time.After(interval):
			}
		}

		outcome := f.Fetch(ctx, env, spec)
		if outcome.Success() && outcome.StatusCode >= 200 && outcome.StatusCode < 300 {
			return nil
		}
		if outcome.Success() {
			last = fmt.Sprintf("status %d", outcome.StatusCode)
		} else {
			last = outcome.Reason
		}
	}
	return fmt.Errorf("verifier: %s not healthy after %d attempts: %s", env.Name, attempts, last)
}

// WaitAllHealthy checks every environment concurrently and returns the first
// failure, cancelling the remaining checks.
func WaitAllHealthy(ctx context.Context, f parity.Fetcher, envs []parity.Environment, path string, attempts int, interval time.Duration) error {
	eg, egCtx := errgroup.WithContext(ctx)
	for _, env := range envs {
		eg.Go(func() error {
			return WaitHealthy(egCtx, f, env, path, attempts, interval)
		})
	}
	return eg.Wait()
}
