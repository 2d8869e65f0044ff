// Package stream broadcasts comparison run progress as server-sent events.
package stream

import (
	"time"

	"github.com/contract-parity/parity-go/internal/parity"
	"github.com/contract-parity/parity-go/internal/uischema"
)

// EventType identifies a run stream event.
type EventType string

const (
	EventRunStarted        EventType = "run_started"
	EventEndpointStarted   EventType = "endpoint_started"
	EventEndpointCompleted EventType = "endpoint_completed"
	EventRunCompleted      EventType = "run_completed"
	EventRunError          EventType = "run_error"
)

// Terminal reports whether the event ends its run's stream.
func (t EventType) Terminal() bool {
	return t == EventRunCompleted || t == EventRunError
}

// Event is a single SSE event emitted to the client. Sequence is per-run and
// strictly increasing.
type Event struct {
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// RunStartedData opens a run stream.
type RunStartedData struct {
	TotalEndpoints int `json:"total_endpoints"`
}

// EndpointStartedData announces the endpoint being compared.
type EndpointStartedData struct {
	Endpoint parity.EndpointSpec `json:"endpoint"`
}

// EndpointCompletedData carries the finished endpoint report.
type EndpointCompletedData struct {
	Report parity.EndpointReport `json:"report"`
}

// RunCompletedData is the terminal payload for a successful run, UI card
// included.
type RunCompletedData struct {
	Status   parity.Status     `json:"status"`
	Totals   parity.Totals     `json:"totals"`
	UISchema uischema.UISchema `json:"ui_schema"`
}

// RunErrorData is the terminal payload when a run could not execute at all.
type RunErrorData struct {
	Message string `json:"message"`
}
