// Package api exposes comparison runs over HTTP: trigger, inspect, render,
// and stream.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/contract-parity/parity-go/internal/annotate"
	"github.com/contract-parity/parity-go/internal/config"
	"github.com/contract-parity/parity-go/internal/observability"
	"github.com/contract-parity/parity-go/internal/parity"
	"github.com/contract-parity/parity-go/internal/store"
	"github.com/contract-parity/parity-go/internal/stream"
	"github.com/contract-parity/parity-go/internal/temporal/querier"
)

// Options wires the server's collaborators. Annotator, Metrics, and Sweeps
// are optional.
type Options struct {
	Fetcher     parity.Fetcher
	Store       *store.RunStore
	Streamer    *stream.Streamer
	Annotator   *annotate.Annotator
	Metrics     *observability.Metrics
	Sweeps      querier.SweepQuerier // scheduled sweeps; nil disables the sweep routes
	EnvA        parity.Environment
	EnvB        parity.Environment
	Ignore      []string // merged with the endpoint document's ignore list
	CORSOrigins []string
	OIDC        OIDCConfig
}

// Server is the HTTP API server for contract comparison runs.
type Server struct {
	opts      Options
	mu        sync.RWMutex
	doc       *config.Document
	mux       *http.ServeMux
	handler   http.Handler
	streamSSE http.HandlerFunc
}

// New creates a Server serving the given endpoint document. OIDC discovery
// runs at startup when auth is enabled.
func New(ctx context.Context, doc *config.Document, opts Options) (*Server, error) {
	s := &Server{
		opts:      opts,
		doc:       doc,
		mux:       http.NewServeMux(),
		streamSSE: stream.Handler(opts.Streamer, stream.DefaultConfig()),
	}
	s.routes()

	var handler http.Handler = s.mux
	if opts.OIDC.Enabled {
		provider, err := oidc.NewProvider(ctx, opts.OIDC.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("api: oidc discovery: %w", err)
		}
		handler = oidcAuth(provider, opts.OIDC.Audience)(handler)
	}
	s.handler = requestID(logging(cors(opts.CORSOrigins, handler)))
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Document returns the endpoint document currently served.
func (s *Server) Document() *config.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// SetDocument swaps the served endpoint document. The config watcher calls
// this on hot reload; in-flight runs keep the specs they started with.
func (s *Server) SetDocument(doc *config.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/endpoints", s.handleListEndpoints)
	s.mux.HandleFunc("POST /api/v1/runs", s.handleCreateRun)
	s.mux.HandleFunc("GET /api/v1/runs", s.handleListRuns)
	s.mux.HandleFunc("GET /api/v1/runs/{id}", s.handleGetRun)
	s.mux.HandleFunc("GET /api/v1/runs/{id}/report", s.handleRunReport)
	s.mux.HandleFunc("GET /api/v1/stream/runs/{id}", s.handleStream)
	s.mux.HandleFunc("POST /api/v1/sweeps", s.handleCreateSweep)
	s.mux.HandleFunc("GET /api/v1/sweeps", s.handleListSweeps)
	s.mux.HandleFunc("GET /api/v1/sweeps/{id}", s.handleGetSweep)
	s.mux.HandleFunc("GET /api/v1/sweeps/{id}/result", s.handleSweepResult)
}
