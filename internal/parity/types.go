// Package parity compares API contracts between two live environments: it
// fetches each configured endpoint from both sides, extracts and diffs the
// response shapes, and folds the endpoint reports into one run report with a
// single overall status. Failures are data; a run never errors.
package parity

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/contract-parity/parity-go/internal/contract"
)

// Environment is one side of a comparison.
type Environment struct {
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
}

// EndpointSpec describes one endpoint to compare. Method defaults to GET;
// Path may carry a query string and is resolved against each environment's
// base URL.
type EndpointSpec struct {
	Name        string `json:"name"`
	Method      string `json:"method,omitempty"`
	Path        string `json:"path"`
	Description string `json:"description,omitempty"`
}

// OutcomeState tags a fetch outcome.
type OutcomeState string

const (
	OutcomeSuccess OutcomeState = "success"
	OutcomeFailure OutcomeState = "failure"
)

func (s OutcomeState) Valid() bool {
	switch s {
	case OutcomeSuccess, OutcomeFailure:
		return true
	}
	return false
}

// Outcome records what one environment returned for one endpoint. A success
// carries the HTTP status, headers, and raw body; non-2xx statuses are still
// successes because the status code is contract data. A failure carries a
// human-readable reason.
type Outcome struct {
	State      OutcomeState    `json:"state"`
	StatusCode int             `json:"status_code,omitempty"`
	Headers    http.Header     `json:"headers,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
	Reason     string          `json:"reason,omitempty"`
}

// SuccessOutcome builds a success outcome.
func SuccessOutcome(statusCode int, headers http.Header, body []byte) Outcome {
	return Outcome{
		State:      OutcomeSuccess,
		StatusCode: statusCode,
		Headers:    headers,
		Body:       body,
	}
}

// FailureOutcome builds a failure outcome from a reason.
func FailureOutcome(reason string) Outcome {
	return Outcome{State: OutcomeFailure, Reason: reason}
}

// Success reports whether the fetch reached the environment and returned a
// decodable response envelope.
func (o Outcome) Success() bool { return o.State == OutcomeSuccess }

// EndpointReport is the comparison record for one endpoint. Comparison is
// nil unless both fetches succeeded.
type EndpointReport struct {
	EndpointName string           `json:"endpoint_name"`
	Path         string           `json:"path"`
	Description  string           `json:"description,omitempty"`
	OutcomeA     Outcome          `json:"outcome_a"`
	OutcomeB     Outcome          `json:"outcome_b"`
	Comparison   *contract.Result `json:"comparison,omitempty"`
}

// Status is the overall verdict of a run. Precedence is strict:
// error > fail > warning > pass.
type Status string

const (
	StatusPass    Status = "pass"
	StatusWarning Status = "warning"
	StatusFail    Status = "fail"
	StatusError   Status = "error"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPass, StatusWarning, StatusFail, StatusError:
		return true
	}
	return false
}

// Totals are the per-run counters the status verdict derives from.
type Totals struct {
	TotalEndpoints        int `json:"total_endpoints"`
	SuccessfulComparisons int `json:"successful_comparisons"`
	IdenticalContracts    int `json:"identical_contracts"`
	CompatibleContracts   int `json:"compatible_contracts"`
	ContractMismatches    int `json:"contract_mismatches"`
	FailedFetches         int `json:"failed_fetches"`
}

// Report is the output of one comparison run.
type Report struct {
	RunID        string           `json:"run_id"`
	EnvironmentA Environment      `json:"environment_a"`
	EnvironmentB Environment      `json:"environment_b"`
	StartedAt    time.Time        `json:"started_at"`
	DurationMS   int64            `json:"duration_ms"`
	Status       Status           `json:"status"`
	Totals       Totals           `json:"totals"`
	Endpoints    []EndpointReport `json:"endpoints"`
}
