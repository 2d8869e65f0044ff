package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/contract-parity/parity-go/internal/analysis"
	"github.com/contract-parity/parity-go/internal/annotate"
	"github.com/contract-parity/parity-go/internal/config"
	"github.com/contract-parity/parity-go/internal/contract"
	"github.com/contract-parity/parity-go/internal/parity"
	"github.com/contract-parity/parity-go/internal/report"
	"github.com/contract-parity/parity-go/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("api: encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type endpointsResponse struct {
	EnvironmentA parity.Environment    `json:"environment_a"`
	EnvironmentB parity.Environment    `json:"environment_b"`
	Endpoints    []parity.EndpointSpec `json:"endpoints"`
	Ignore       []string              `json:"ignore,omitempty"`
}

func (s *Server) handleListEndpoints(w http.ResponseWriter, _ *http.Request) {
	doc := s.Document()
	writeJSON(w, http.StatusOK, endpointsResponse{
		EnvironmentA: s.opts.EnvA,
		EnvironmentB: s.opts.EnvB,
		Endpoints:    doc.Specs(),
		Ignore:       s.ignoreFields(doc),
	})
}

type createRunRequest struct {
	// Endpoints restricts the run to the named endpoints; empty means all.
	Endpoints []string `json:"endpoints,omitempty"`
}

type createRunResponse struct {
	ID    string         `json:"id"`
	State store.RunState `json:"state"`
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := decodeOptionalJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc := s.Document()
	specs, err := doc.SpecsFor(req.Endpoints)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run := s.opts.Store.Create()
	go s.executeRun(run.ID, specs, doc)
	writeJSON(w, http.StatusAccepted, createRunResponse{ID: run.ID, State: run.State})
}

func (s *Server) handleListRuns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"runs": s.opts.Store.List()})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.opts.Store.Get(r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	run, err := s.opts.Store.Get(r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if run.Report == nil {
		writeError(w, http.StatusConflict, fmt.Sprintf("run is %s and has no report", run.State))
		return
	}

	format := report.FormatJSON
	switch q := r.URL.Query().Get("format"); q {
	case "", "json":
	case "text":
		format = report.FormatText
	case "md", "markdown":
		format = report.FormatMarkdown
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown report format %q", q))
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(format))
	if format == report.FormatMarkdown && run.Annotations != nil {
		err = report.WriteMarkdownAnnotated(w, run.Report, *run.Annotations)
	} else {
		err = report.Write(w, format, run.Report)
	}
	if err != nil {
		slog.Error("api: write report", "run_id", run.ID, "error", err)
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if _, err := s.opts.Store.Get(r.PathValue("id")); errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.streamSSE(w, r)
}

// executeRun performs one comparison run in the background, publishing
// progress to the streamer and recording the result in the store.
func (s *Server) executeRun(runID string, specs []parity.EndpointSpec, doc *config.Document) {
	ctx := context.Background()
	ignore := contract.NewSegmentIgnore(s.ignoreFields(doc)...)

	rep := parity.RunObserved(ctx, runID, specs, s.opts.EnvA, s.opts.EnvB, s.opts.Fetcher, ignore, s.opts.Streamer)
	an := analysis.Analyze(&rep)
	anns := annotate.RunAnnotations{}
	if s.opts.Annotator != nil {
		anns = s.opts.Annotator.Annotate(ctx, &rep)
	}
	if err := s.opts.Store.Complete(runID, &rep, an, anns); err != nil {
		slog.Error("api: record run result", "run_id", runID, "error", err)
	}
	s.recordMetrics(ctx, &rep)
	slog.Info("run completed",
		"run_id", runID,
		"status", rep.Status,
		"endpoints", rep.Totals.TotalEndpoints,
		"mismatches", rep.Totals.ContractMismatches,
	)
}

func (s *Server) recordMetrics(ctx context.Context, rep *parity.Report) {
	if s.opts.Metrics == nil {
		return
	}
	s.opts.Metrics.RecordRun(ctx, string(rep.Status), time.Duration(rep.DurationMS)*time.Millisecond)
	for _, ep := range rep.Endpoints {
		s.opts.Metrics.RecordEndpoint(ctx, report.Verdict(ep))
		if !ep.OutcomeA.Success() {
			s.opts.Metrics.RecordFetchFailure(ctx, rep.EnvironmentA.Name)
		}
		if !ep.OutcomeB.Success() {
			s.opts.Metrics.RecordFetchFailure(ctx, rep.EnvironmentB.Name)
		}
		if ep.Comparison == nil {
			continue
		}
		var errs, warns int64
		for _, d := range ep.Comparison.Differences {
			if d.Severity == contract.SeverityError {
				errs++
			} else {
				warns++
			}
		}
		s.opts.Metrics.RecordDifferences(ctx, string(contract.SeverityError), errs)
		s.opts.Metrics.RecordDifferences(ctx, string(contract.SeverityWarning), warns)
	}
}

// ignoreFields merges the document's ignore list with the server-level one.
func (s *Server) ignoreFields(doc *config.Document) []string {
	if len(s.opts.Ignore) == 0 {
		return doc.Ignore
	}
	merged := make([]string, 0, len(doc.Ignore)+len(s.opts.Ignore))
	merged = append(merged, doc.Ignore...)
	merged = append(merged, s.opts.Ignore...)
	return merged
}

// decodeOptionalJSON decodes a JSON body into v, treating an empty body as
// the zero value.
func decodeOptionalJSON(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid request body: %v", err)
	}
	return nil
}

func contentTypeFor(f report.Format) string {
	switch f {
	case report.FormatText:
		return "text/plain; charset=utf-8"
	case report.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "application/json"
	}
}
