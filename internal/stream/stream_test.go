package stream_test

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contract-parity/parity-go/internal/parity"
	"github.com/contract-parity/parity-go/internal/stream"
)

func passReport(runID string) parity.Report {
	return parity.Report{
		RunID:        runID,
		EnvironmentA: parity.Environment{Name: "canary"},
		EnvironmentB: parity.Environment{Name: "prod"},
		Status:       parity.StatusPass,
		Totals:       parity.Totals{TotalEndpoints: 1, SuccessfulComparisons: 1, IdenticalContracts: 1, CompatibleContracts: 1},
	}
}

func drainAll(t *testing.T, ch <-chan stream.Event) []stream.Event {
	t.Helper()
	var events []stream.Event
	for {
		select {
		case evt, open := <-ch:
			if !open {
				return events
			}
			events = append(events, evt)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for events")
		}
	}
}

func TestStreamer_DeliversRunEvents(t *testing.T) {
	t.Parallel()

	s := stream.NewStreamer(8)
	ch, cancel := s.Subscribe("run-1")
	defer cancel()

	s.RunStarted("run-1", 2)
	s.EndpointStarted("run-1", parity.EndpointSpec{Name: "users", Path: "/users"})
	s.EndpointCompleted("run-1", parity.EndpointReport{EndpointName: "users", Path: "/users"})
	s.RunCompleted(passReport("run-1"))

	events := drainAll(t, ch)
	require.Len(t, events, 4)
	assert.Equal(t, stream.EventRunStarted, events[0].Type)
	assert.Equal(t, stream.EventEndpointStarted, events[1].Type)
	assert.Equal(t, stream.EventEndpointCompleted, events[2].Type)
	assert.Equal(t, stream.EventRunCompleted, events[3].Type)

	for i, evt := range events {
		assert.Equal(t, "run-1", evt.RunID)
		assert.Equal(t, i+1, evt.Sequence)
		assert.False(t, evt.Timestamp.IsZero())
	}

	terminal, ok := events[3].Data.(stream.RunCompletedData)
	require.True(t, ok)
	assert.Equal(t, parity.StatusPass, terminal.Status)
	assert.Equal(t, "run-1", terminal.UISchema.RunID)
}

func TestStreamer_RunsAreIsolated(t *testing.T) {
	t.Parallel()

	s := stream.NewStreamer(8)
	chA, cancelA := s.Subscribe("run-a")
	defer cancelA()

	s.RunStarted("run-b", 1)
	s.RunCompleted(passReport("run-b"))
	s.RunStarted("run-a", 1)
	s.RunCompleted(passReport("run-a"))

	events := drainAll(t, chA)
	require.Len(t, events, 2)
	for _, evt := range events {
		assert.Equal(t, "run-a", evt.RunID)
	}
}

func TestStreamer_TerminalReplayForLateSubscriber(t *testing.T) {
	t.Parallel()

	s := stream.NewStreamer(8)
	s.RunStarted("run-1", 1)
	s.RunCompleted(passReport("run-1"))

	ch, cancel := s.Subscribe("run-1")
	defer cancel()

	events := drainAll(t, ch)
	require.Len(t, events, 1)
	assert.Equal(t, stream.EventRunCompleted, events[0].Type)
}

func TestStreamer_RunFailedReplay(t *testing.T) {
	t.Parallel()

	s := stream.NewStreamer(8)
	s.RunFailed("run-1", "endpoints file unreadable")

	ch, cancel := s.Subscribe("run-1")
	defer cancel()

	events := drainAll(t, ch)
	require.Len(t, events, 1)
	assert.Equal(t, stream.EventRunError, events[0].Type)
	data, ok := events[0].Data.(stream.RunErrorData)
	require.True(t, ok)
	assert.Equal(t, "endpoints file unreadable", data.Message)
}

func TestStreamer_SlowSubscriberDropped(t *testing.T) {
	t.Parallel()

	s := stream.NewStreamer(1)
	ch, cancel := s.Subscribe("run-1")
	defer cancel()

	s.RunStarted("run-1", 3)
	s.EndpointStarted("run-1", parity.EndpointSpec{Name: "a"})
	s.EndpointStarted("run-1", parity.EndpointSpec{Name: "b"})

	events := drainAll(t, ch)
	require.Len(t, events, 1, "overflowing subscriber keeps only the buffered event")
	assert.Equal(t, stream.EventRunStarted, events[0].Type)
	assert.Equal(t, 0, s.SubscriberCount("run-1"))
}

func TestStreamer_CancelIsIdempotent(t *testing.T) {
	t.Parallel()

	s := stream.NewStreamer(4)
	_, cancel := s.Subscribe("run-1")
	cancel()
	cancel()
	assert.Equal(t, 0, s.SubscriberCount("run-1"))
}

type sseEvent struct {
	Type string
	Data string
}

func parseSSE(t *testing.T, resp *http.Response) []sseEvent {
	t.Helper()
	var events []sseEvent
	scanner := bufio.NewScanner(resp.Body)
	var current sseEvent
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			current.Type = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			current.Data = strings.TrimPrefix(line, "data: ")
		} else if line == "" && current.Type != "" {
			events = append(events, current)
			current = sseEvent{}
		}
	}
	return events
}

func TestHandler_LiveRun(t *testing.T) {
	t.Parallel()

	s := stream.NewStreamer(8)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/stream/runs/{id}", stream.Handler(s, stream.DefaultConfig()))
	ts := httptest.NewServer(mux)
	defer ts.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			if s.SubscriberCount("run-live") > 0 {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		s.RunStarted("run-live", 1)
		s.EndpointCompleted("run-live", parity.EndpointReport{EndpointName: "users"})
		s.RunCompleted(passReport("run-live"))
	}()

	resp, err := http.Get(ts.URL + "/api/v1/stream/runs/run-live")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := parseSSE(t, resp)
	<-done

	require.Len(t, events, 3)
	assert.Equal(t, "run_started", events[0].Type)
	assert.Equal(t, "endpoint_completed", events[1].Type)
	assert.Equal(t, "run_completed", events[2].Type)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(events[2].Data), &decoded))
	assert.Equal(t, "run-live", decoded["run_id"])
	assert.Equal(t, float64(3), decoded["sequence"])
}

func TestHandler_FinishedRunReplaysTerminal(t *testing.T) {
	t.Parallel()

	s := stream.NewStreamer(8)
	s.RunCompleted(passReport("run-done"))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/stream/runs/{id}", stream.Handler(s, stream.DefaultConfig()))
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/stream/runs/run-done")
	require.NoError(t, err)
	defer resp.Body.Close()

	events := parseSSE(t, resp)
	require.Len(t, events, 1)
	assert.Equal(t, "run_completed", events[0].Type)
}

func TestHandler_MaxDurationCloses(t *testing.T) {
	t.Parallel()

	s := stream.NewStreamer(8)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/stream/runs/{id}", stream.Handler(s, stream.Config{MaxDuration: 100 * time.Millisecond}))
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/stream/runs/run-quiet")
	require.NoError(t, err)
	defer resp.Body.Close()

	events := parseSSE(t, resp)
	assert.Empty(t, events)
}
