package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/contract-parity/parity-go/internal/analysis"
	"github.com/contract-parity/parity-go/internal/parity"
	"github.com/contract-parity/parity-go/internal/uischema"
)

// Config controls SSE stream behavior.
type Config struct {
	// MaxDuration bounds how long one SSE response may stay open.
	MaxDuration time.Duration
	// SubscriberBuffer is the per-subscriber channel capacity. A subscriber
	// that falls this far behind is dropped.
	SubscriberBuffer int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxDuration:      30 * time.Minute,
		SubscriberBuffer: 32,
	}
}

const maxTerminalEvents = 100

type subscriber struct {
	ch chan Event
}

// Streamer fans run events out to SSE subscribers. It implements the
// comparison run's Observer, so handing it to RunObserved is all the wiring a
// live stream needs. Terminal events are retained (bounded) so subscribers
// arriving after a run finished still get its closing event.
type Streamer struct {
	mu        sync.Mutex
	buffer    int
	seq       map[string]int
	subs      map[string]map[*subscriber]struct{}
	terminal  map[string]Event
	termOrder []string
}

// NewStreamer creates a Streamer with the given per-subscriber buffer.
func NewStreamer(buffer int) *Streamer {
	if buffer <= 0 {
		buffer = DefaultConfig().SubscriberBuffer
	}
	return &Streamer{
		buffer:   buffer,
		seq:      make(map[string]int),
		subs:     make(map[string]map[*subscriber]struct{}),
		terminal: make(map[string]Event),
	}
}

// Subscribe returns a channel of events for the run and a cancel function.
// If the run already finished, the channel delivers its terminal event and
// closes. The caller must call cancel when done.
func (s *Streamer) Subscribe(runID string) (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &subscriber{ch: make(chan Event, s.buffer)}

	if evt, done := s.terminal[runID]; done {
		sub.ch <- evt
		close(sub.ch)
		return sub.ch, func() {}
	}

	if s.subs[runID] == nil {
		s.subs[runID] = make(map[*subscriber]struct{})
	}
	s.subs[runID][sub] = struct{}{}

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.remove(runID, sub)
	}
	return sub.ch, cancel
}

// remove drops a subscriber and closes its channel. Caller holds mu.
func (s *Streamer) remove(runID string, sub *subscriber) {
	set, ok := s.subs[runID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	close(sub.ch)
	if len(set) == 0 {
		delete(s.subs, runID)
	}
}

// publish stamps sequence and timestamp on the event and delivers it. Slow
// subscribers are dropped rather than block the run.
func (s *Streamer) publish(runID string, typ EventType, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq[runID]++
	evt := Event{
		Type:      typ,
		RunID:     runID,
		Sequence:  s.seq[runID],
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	if typ.Terminal() {
		s.retainTerminal(runID, evt)
	}

	for sub := range s.subs[runID] {
		select {
		case sub.ch <- evt:
		default:
			s.remove(runID, sub)
			continue
		}
		if typ.Terminal() {
			s.remove(runID, sub)
		}
	}
	if typ.Terminal() {
		delete(s.subs, runID)
		delete(s.seq, runID)
	}
}

// retainTerminal keeps the closing event for late subscribers, bounded.
// Caller holds mu.
func (s *Streamer) retainTerminal(runID string, evt Event) {
	if _, exists := s.terminal[runID]; !exists {
		s.termOrder = append(s.termOrder, runID)
	}
	s.terminal[runID] = evt
	for len(s.termOrder) > maxTerminalEvents {
		oldest := s.termOrder[0]
		s.termOrder = s.termOrder[1:]
		delete(s.terminal, oldest)
	}
}

// SubscriberCount reports the live subscribers for a run.
func (s *Streamer) SubscriberCount(runID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs[runID])
}

// RunStarted implements the run observer.
func (s *Streamer) RunStarted(runID string, total int) {
	s.publish(runID, EventRunStarted, RunStartedData{TotalEndpoints: total})
}

// EndpointStarted implements the run observer.
func (s *Streamer) EndpointStarted(runID string, spec parity.EndpointSpec) {
	s.publish(runID, EventEndpointStarted, EndpointStartedData{Endpoint: spec})
}

// EndpointCompleted implements the run observer.
func (s *Streamer) EndpointCompleted(runID string, er parity.EndpointReport) {
	s.publish(runID, EventEndpointCompleted, EndpointCompletedData{Report: er})
}

// RunCompleted implements the run observer. The terminal event carries the
// classified drift and the UI card so stream clients need no second request.
func (s *Streamer) RunCompleted(report parity.Report) {
	an := analysis.Analyze(&report)
	s.publish(report.RunID, EventRunCompleted, RunCompletedData{
		Status:   report.Status,
		Totals:   report.Totals,
		UISchema: uischema.Build(&report, &an, nil),
	})
}

// RunFailed closes a run's stream when the run could not execute at all,
// for example when the endpoints file failed to load.
func (s *Streamer) RunFailed(runID, message string) {
	s.publish(runID, EventRunError, RunErrorData{Message: message})
}

var _ parity.Observer = (*Streamer)(nil)

// Handler serves one run's events as SSE until the run finishes, the client
// leaves, or the max duration elapses.
func Handler(s *Streamer, cfg Config) http.HandlerFunc {
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = DefaultConfig().MaxDuration
	}
	return func(w http.ResponseWriter, r *http.Request) {
		runID := r.PathValue("id")
		if runID == "" {
			http.Error(w, "run id required", http.StatusBadRequest)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ctx, cancelCtx := context.WithTimeout(r.Context(), cfg.MaxDuration)
		defer cancelCtx()

		ch, cancel := s.Subscribe(runID)
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				return
			case evt, open := <-ch:
				if !open {
					return
				}
				writeSSE(w, flusher, evt)
				if evt.Type.Terminal() {
					return
				}
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	flusher.Flush()
}
