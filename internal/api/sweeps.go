package api

import (
	"net/http"

	"github.com/contract-parity/parity-go/internal/temporal/querier"
	"github.com/contract-parity/parity-go/internal/temporal/versioning"
	"github.com/contract-parity/parity-go/internal/temporal/workflows"
)

// sweepsConfigured rejects sweep requests when no Temporal querier is wired.
func (s *Server) sweepsConfigured(w http.ResponseWriter) bool {
	if s.opts.Sweeps == nil {
		writeError(w, http.StatusServiceUnavailable, "temporal is not configured")
		return false
	}
	return true
}

type createSweepRequest struct {
	Endpoints []string `json:"endpoints,omitempty"`
	Namespace string   `json:"namespace,omitempty"`
}

func (s *Server) handleCreateSweep(w http.ResponseWriter, r *http.Request) {
	if !s.sweepsConfigured(w) {
		return
	}

	var req createSweepRequest
	if err := decodeOptionalJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	handle, err := s.opts.Sweeps.StartSweep(r.Context(), workflows.SweepInput{
		Endpoints: req.Endpoints,
		Namespace: req.Namespace,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, handle)
}

func (s *Server) handleListSweeps(w http.ResponseWriter, r *http.Request) {
	if !s.sweepsConfigured(w) {
		return
	}

	opts := querier.ListOptions{TaskQueue: versioning.QueueSweep}
	if status := r.URL.Query().Get("status"); status != "" {
		opts.StatusFilter = status
	}

	sweeps, err := s.opts.Sweeps.ListSweeps(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sweeps": sweeps})
}

func (s *Server) handleGetSweep(w http.ResponseWriter, r *http.Request) {
	if !s.sweepsConfigured(w) {
		return
	}

	desc, err := s.opts.Sweeps.DescribeSweep(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, desc)
}

func (s *Server) handleSweepResult(w http.ResponseWriter, r *http.Request) {
	if !s.sweepsConfigured(w) {
		return
	}

	result, err := s.opts.Sweeps.GetSweepResult(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
