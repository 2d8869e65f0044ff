// Package store keeps recent comparison runs in memory for the API server.
// It is intentionally not durable; reports that matter leave through the API
// or the report renderers.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/contract-parity/parity-go/internal/analysis"
	"github.com/contract-parity/parity-go/internal/annotate"
	"github.com/contract-parity/parity-go/internal/parity"
)

// ErrNotFound is returned when a run ID is unknown or already evicted.
var ErrNotFound = errors.New("store: run not found")

// RunState tracks a run through its lifecycle.
type RunState string

const (
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunFailed    RunState = "failed"
)

// Run is one stored comparison run. Report and Analysis are set when the run
// completes; Error when it fails before producing a report.
type Run struct {
	ID          string                   `json:"id"`
	State       RunState                 `json:"state"`
	CreatedAt   time.Time                `json:"created_at"`
	FinishedAt  *time.Time               `json:"finished_at,omitempty"`
	Report      *parity.Report           `json:"report,omitempty"`
	Analysis    *analysis.Analysis       `json:"analysis,omitempty"`
	Annotations *annotate.RunAnnotations `json:"annotations,omitempty"`
	Error       string                   `json:"error,omitempty"`
}

// RunStore is a bounded, mutex-guarded run registry.
type RunStore struct {
	mu      sync.Mutex
	maxRuns int
	runs    map[string]*Run
	order   []string // oldest first
}

const defaultMaxRuns = 100

// NewRunStore creates a store holding at most maxRuns runs; older runs are
// evicted as new ones are created.
func NewRunStore(maxRuns int) *RunStore {
	if maxRuns <= 0 {
		maxRuns = defaultMaxRuns
	}
	return &RunStore{
		maxRuns: maxRuns,
		runs:    make(map[string]*Run),
	}
}

// Create registers a new running run and returns it.
func (s *RunStore) Create() Run {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &Run{
		ID:        uuid.NewString(),
		State:     RunRunning,
		CreatedAt: time.Now().UTC(),
	}
	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)

	for len(s.order) > s.maxRuns {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.runs, oldest)
	}
	return *run
}

// Complete transitions a run to completed and attaches its results.
func (s *RunStore) Complete(id string, report *parity.Report, an analysis.Analysis, anns annotate.RunAnnotations) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	run.State = RunCompleted
	run.FinishedAt = &now
	run.Report = report
	run.Analysis = &an
	run.Annotations = &anns
	return nil
}

// Fail transitions a run to failed with a reason.
func (s *RunStore) Fail(id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	run.State = RunFailed
	run.FinishedAt = &now
	run.Error = reason
	return nil
}

// Get returns a copy of the run with the given ID.
func (s *RunStore) Get(id string) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return Run{}, ErrNotFound
	}
	return *run, nil
}

// List returns all stored runs, newest first.
func (s *RunStore) List() []Run {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Run, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, *s.runs[s.order[i]])
	}
	return out
}
