// Package api serves the time engine over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codeGROOVE-dev/tzapi/pkg/constants"
	"github.com/codeGROOVE-dev/tzapi/pkg/tzconvert"
)

// Server routes requests to the engine. It keeps no per-request state.
type Server struct {
	engine   *tzconvert.Engine
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics
}

// New returns a Server backed by engine. A nil logger discards output.
func New(engine *tzconvert.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	registry := prometheus.NewRegistry()
	return &Server{
		engine:   engine,
		logger:   logger,
		registry: registry,
		metrics:  newMetrics(registry),
	}
}

type route struct {
	handler http.HandlerFunc
	method  string
	path    string
	name    string
}

// routes lists the exact (method, path) pairs. GET requests on any path
// are current-time queries and are dispatched before this table.
func (s *Server) routes() []route {
	return []route{
		{method: http.MethodPost, path: constants.ConvertPath, name: "convert", handler: s.handleConvert},
		{method: http.MethodPost, path: constants.DateDiffPath, name: "datediff", handler: s.handleDateDiff},
	}
}

// Handler returns the full HTTP handler including middleware.
//
// Paths are matched as sent. http.ServeMux would redirect /Europe//Moscow
// to its cleaned form and answer HEAD through GET routes.
func (s *Server) Handler() http.Handler {
	now := s.instrument("now", s.handleNow)
	notFound := s.instrument("not_found", s.handleNotFound)

	table := make(map[string]http.Handler)
	for _, rt := range s.routes() {
		table[rt.method+" "+rt.path] = s.instrument(rt.name, rt.handler)
	}

	return s.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			now.ServeHTTP(w, r)
			return
		}
		if h, ok := table[r.Method+" "+r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		notFound.ServeHTTP(w, r)
	}))
}

// MetricsHandler exposes the server's Prometheus registry.
func (s *Server) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
