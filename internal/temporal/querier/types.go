// Package querier provides start and read access to parity sweep workflows.
package querier

import "time"

// ListOptions controls filtering for ListSweeps.
type ListOptions struct {
	// TaskQueue filters by task queue name. Empty means no filter.
	TaskQueue string
	// StatusFilter filters by workflow status (e.g. "Running", "Completed").
	StatusFilter string
	// PageSize limits the number of results.
	PageSize int
}

// SweepHandle identifies a started sweep.
type SweepHandle struct {
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
}

// SweepSummary is a lightweight overview of a sweep execution.
type SweepSummary struct {
	WorkflowID string    `json:"workflow_id"`
	RunID      string    `json:"run_id"`
	Status     string    `json:"status"`
	StartTime  time.Time `json:"start_time"`
	CloseTime  time.Time `json:"close_time,omitempty"`
	TaskQueue  string    `json:"task_queue"`
}

// SweepDescription provides detailed info about a sweep execution.
type SweepDescription struct {
	SweepSummary
	SearchAttributes map[string]any `json:"search_attributes,omitempty"`
}
