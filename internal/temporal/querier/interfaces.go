package querier

import (
	"context"

	"github.com/contract-parity/parity-go/internal/temporal/workflows"
)

// SweepQuerier starts sweeps and reads their state. Used by the parityctl
// CLI and by the HTTP API when Temporal is configured.
type SweepQuerier interface {
	StartSweep(ctx context.Context, input workflows.SweepInput) (SweepHandle, error)
	ListSweeps(ctx context.Context, opts ListOptions) ([]SweepSummary, error)
	DescribeSweep(ctx context.Context, workflowID string) (*SweepDescription, error)
	GetSweepResult(ctx context.Context, workflowID string) (*workflows.SweepResult, error)
}
