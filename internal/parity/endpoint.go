package parity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/contract-parity/parity-go/internal/contract"
	"github.com/contract-parity/parity-go/internal/shape"
)

// CompareEndpoint fetches one endpoint from both environments concurrently
// and compares the response shapes. The two fetches are independent: each
// always runs to completion and both outcomes are always recorded, whatever
// the other side does. Comparison stays nil unless both sides succeeded.
func CompareEndpoint(ctx context.Context, spec EndpointSpec, envA, envB Environment, fetcher Fetcher, ignore contract.IgnorePolicy) EndpointReport {
	report := EndpointReport{
		EndpointName: spec.Name,
		Path:         spec.Path,
		Description:  spec.Description,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		report.OutcomeA = fetcher.Fetch(egCtx, envA, spec)
		return nil
	})
	eg.Go(func() error {
		report.OutcomeB = fetcher.Fetch(egCtx, envB, spec)
		return nil
	})
	_ = eg.Wait() // goroutines record outcomes and never error

	if !report.OutcomeA.Success() || !report.OutcomeB.Success() {
		return report
	}

	valueA, errA := decodeBody(report.OutcomeA.Body)
	valueB, errB := decodeBody(report.OutcomeB.Body)
	if errA != nil {
		report.OutcomeA = FailureOutcome(fmt.Sprintf("invalid JSON body: %v", errA))
	}
	if errB != nil {
		report.OutcomeB = FailureOutcome(fmt.Sprintf("invalid JSON body: %v", errB))
	}
	if errA != nil || errB != nil {
		return report
	}

	diffs := contract.Compare(shape.Extract(valueA), shape.Extract(valueB), ignore)
	result := contract.NewResult(diffs)
	report.Comparison = &result
	return report
}

// decodeBody turns a raw response body into a value for shape extraction.
// An empty body is the undefined sentinel, distinct from an explicit null.
func decodeBody(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return shape.Undefined, nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}
