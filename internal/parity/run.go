package parity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/contract-parity/parity-go/internal/contract"
)

// Observer receives progress callbacks during a run. Callbacks fire on the
// run's goroutine, so implementations must return quickly.
type Observer interface {
	RunStarted(runID string, total int)
	EndpointStarted(runID string, spec EndpointSpec)
	EndpointCompleted(runID string, er EndpointReport)
	RunCompleted(report Report)
}

// Run compares every endpoint spec between the two environments and returns
// the aggregated report. Endpoints are processed sequentially in input order
// so the report is deterministic; concurrency lives inside each endpoint's
// two-sided fetch. Run never fails: fetch and decode problems are recorded
// in the report and surface through the status.
func Run(ctx context.Context, specs []EndpointSpec, envA, envB Environment, fetcher Fetcher, ignore contract.IgnorePolicy) Report {
	return RunObserved(ctx, "", specs, envA, envB, fetcher, ignore, nil)
}

// RunObserved is Run with progress callbacks and an optional pre-assigned run
// ID; an empty runID gets a fresh uuid. A nil observer is allowed.
func RunObserved(ctx context.Context, runID string, specs []EndpointSpec, envA, envB Environment, fetcher Fetcher, ignore contract.IgnorePolicy, obs Observer) Report {
	if runID == "" {
		runID = uuid.NewString()
	}
	started := time.Now().UTC()
	report := Report{
		RunID:        runID,
		EnvironmentA: envA,
		EnvironmentB: envB,
		StartedAt:    started,
		Endpoints:    make([]EndpointReport, 0, len(specs)),
	}
	if obs != nil {
		obs.RunStarted(report.RunID, len(specs))
	}

	for _, spec := range specs {
		if obs != nil {
			obs.EndpointStarted(report.RunID, spec)
		}
		er := CompareEndpoint(ctx, spec, envA, envB, fetcher, ignore)
		report.Endpoints = append(report.Endpoints, er)
		tally(&report.Totals, er)
		if obs != nil {
			obs.EndpointCompleted(report.RunID, er)
		}
	}

	report.Totals.TotalEndpoints = len(specs)
	report.Status = statusFor(report.Totals)
	report.DurationMS = time.Since(started).Milliseconds()
	if obs != nil {
		obs.RunCompleted(report)
	}
	return report
}

func tally(t *Totals, er EndpointReport) {
	if er.Comparison == nil {
		t.FailedFetches++
		return
	}
	t.SuccessfulComparisons++
	if er.Comparison.Identical {
		t.IdenticalContracts++
	}
	if er.Comparison.Compatible {
		t.CompatibleContracts++
	} else {
		t.ContractMismatches++
	}
}

// statusFor applies the strict verdict precedence: any failed fetch wins,
// then any contract mismatch, then any non-identical comparison, else pass.
func statusFor(t Totals) Status {
	switch {
	case t.FailedFetches > 0:
		return StatusError
	case t.ContractMismatches > 0:
		return StatusFail
	case t.IdenticalContracts < t.SuccessfulComparisons:
		return StatusWarning
	default:
		return StatusPass
	}
}
