package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds OTel metric instruments for contract comparison runs.
type Metrics struct {
	RunCount        metric.Int64Counter
	RunDuration     metric.Float64Histogram
	EndpointCount   metric.Int64Counter
	DifferenceCount metric.Int64Counter
	FetchFailures   metric.Int64Counter
}

// NewMetrics creates the parity metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("parity")

	runCount, err := meter.Int64Counter("parity.run.count",
		metric.WithDescription("Number of comparison runs executed"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram("parity.run.duration_seconds",
		metric.WithDescription("Wall-clock duration of a comparison run"),
	)
	if err != nil {
		return nil, err
	}

	endpointCount, err := meter.Int64Counter("parity.endpoint.count",
		metric.WithDescription("Number of endpoints compared"),
	)
	if err != nil {
		return nil, err
	}

	differenceCount, err := meter.Int64Counter("parity.difference.count",
		metric.WithDescription("Number of structural differences found"),
	)
	if err != nil {
		return nil, err
	}

	fetchFailures, err := meter.Int64Counter("parity.fetch.failures",
		metric.WithDescription("Number of endpoint fetches that failed"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RunCount:        runCount,
		RunDuration:     runDuration,
		EndpointCount:   endpointCount,
		DifferenceCount: differenceCount,
		FetchFailures:   fetchFailures,
	}, nil
}

// RecordRun records a completed run with its terminal status.
func (m *Metrics) RecordRun(ctx context.Context, status string, d time.Duration) {
	m.RunCount.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
	m.RunDuration.Record(ctx, d.Seconds())
}

// RecordEndpoint records one compared endpoint and its verdict.
func (m *Metrics) RecordEndpoint(ctx context.Context, verdict string) {
	m.EndpointCount.Add(ctx, 1,
		metric.WithAttributes(attribute.String("verdict", verdict)),
	)
}

// RecordDifferences records structural differences found at a given severity.
func (m *Metrics) RecordDifferences(ctx context.Context, severity string, n int64) {
	if n == 0 {
		return
	}
	m.DifferenceCount.Add(ctx, n,
		metric.WithAttributes(attribute.String("severity", severity)),
	)
}

// RecordFetchFailure records a failed fetch against one environment.
func (m *Metrics) RecordFetchFailure(ctx context.Context, environment string) {
	m.FetchFailures.Add(ctx, 1,
		metric.WithAttributes(attribute.String("environment", environment)),
	)
}
