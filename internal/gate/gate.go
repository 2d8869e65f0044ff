// Package gate turns a finished comparison report into a CI verdict.
// The mapping is deterministic: the same report and settings always produce
// the same decision.
package gate

import (
	"fmt"

	"github.com/contract-parity/parity-go/internal/parity"
)

// Exit codes for cmd/contract-compare. 0 = contracts in parity, 1 = contract
// drift, 2 = operational failure (could not produce a trustworthy answer).
const (
	ExitOK       = 0
	ExitDrift    = 1
	ExitOperator = 2
)

// Settings controls how strict the gate is beyond the report's own status.
type Settings struct {
	// FailOnWarnings promotes any warning-level drift to a failing verdict.
	FailOnWarnings bool
	// MaxWarnings fails the run when total warnings exceed it. Zero means
	// no cap.
	MaxWarnings int
	// RequiredEndpoints must all appear in the report; a missing one is an
	// operational failure, not drift.
	RequiredEndpoints []string
}

// Decision is the gate outcome: the process exit code plus the reasons that
// produced it.
type Decision struct {
	ExitCode int      `json:"exit_code"`
	Reasons  []string `json:"reasons"`
}

// Passed reports whether the gate is green.
func (d Decision) Passed() bool { return d.ExitCode == ExitOK }

// Evaluate applies the gate rules in order.
//
// Rules:
//  1. A required endpoint absent from the report is an operational failure.
//  2. Report status error (any fetch failed) is an operational failure.
//  3. Report status fail (breaking drift) fails the gate.
//  4. Warnings fail the gate only when FailOnWarnings is set or the
//     MaxWarnings cap is exceeded.
//  5. Otherwise the gate passes.
func Evaluate(r *parity.Report, s Settings) Decision {
	if missing := missingEndpoints(r, s.RequiredEndpoints); len(missing) > 0 {
		reasons := make([]string, 0, len(missing))
		for _, name := range missing {
			reasons = append(reasons, fmt.Sprintf("required endpoint %q not in report", name))
		}
		return Decision{ExitCode: ExitOperator, Reasons: reasons}
	}

	if r.Status == parity.StatusError {
		return Decision{
			ExitCode: ExitOperator,
			Reasons:  []string{fmt.Sprintf("%d endpoint fetches failed", r.Totals.FailedFetches)},
		}
	}

	if r.Status == parity.StatusFail {
		return Decision{
			ExitCode: ExitDrift,
			Reasons:  []string{fmt.Sprintf("%d endpoints have contract mismatches", r.Totals.ContractMismatches)},
		}
	}

	warnings := totalWarnings(r)
	if warnings > 0 {
		if s.FailOnWarnings {
			return Decision{
				ExitCode: ExitDrift,
				Reasons:  []string{fmt.Sprintf("%d warnings with fail-on-warnings set", warnings)},
			}
		}
		if s.MaxWarnings > 0 && warnings > s.MaxWarnings {
			return Decision{
				ExitCode: ExitDrift,
				Reasons:  []string{fmt.Sprintf("%d warnings exceed cap of %d", warnings, s.MaxWarnings)},
			}
		}
		return Decision{
			ExitCode: ExitOK,
			Reasons:  []string{fmt.Sprintf("%d warnings within tolerance", warnings)},
		}
	}

	return Decision{ExitCode: ExitOK, Reasons: []string{"contracts in parity"}}
}

func missingEndpoints(r *parity.Report, required []string) []string {
	if len(required) == 0 {
		return nil
	}
	present := make(map[string]struct{}, len(r.Endpoints))
	for _, ep := range r.Endpoints {
		present[ep.EndpointName] = struct{}{}
	}
	var missing []string
	for _, name := range required {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func totalWarnings(r *parity.Report) int {
	var n int
	for _, ep := range r.Endpoints {
		if ep.Comparison != nil {
			n += ep.Comparison.WarningCount
		}
	}
	return n
}
