package parity

import "context"

// Fetcher retrieves one endpoint from one environment. Implementations never
// return a Go error: transport problems, timeouts, and unreadable bodies all
// become failure outcomes so the run can treat them as data.
type Fetcher interface {
	Fetch(ctx context.Context, env Environment, spec EndpointSpec) Outcome
}
