// Package apiserver wires internal/walker, internal/reverse,
// internal/failsim, internal/blastradius, internal/collected, and
// internal/history behind the HTTP/JSON surface spec.md §6.3 describes,
// grounded on lake/api/main.go's chi router, middleware stack, and
// graceful-shutdown pattern.
package apiserver

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/malbeclabs/pathtracer/internal/apiserver/metrics"
	"github.com/malbeclabs/pathtracer/internal/blastradius"
	"github.com/malbeclabs/pathtracer/internal/collected"
	"github.com/malbeclabs/pathtracer/internal/history"
	"github.com/malbeclabs/pathtracer/internal/inventory"
	"github.com/malbeclabs/pathtracer/internal/reverse"
	"github.com/malbeclabs/pathtracer/internal/walker"
)

// Walker is the subset of *walker.Walker the server depends on.
type Walker interface {
	Trace(ctx context.Context, prefix, start, vrf string, excluded []string) (*walker.TraceResult, error)
}

// Inventory is the subset of inventory.Inventory the server needs directly
// (beyond what Walker already consumes), plus the read-only listing
// methods the reference Store exposes for §12's supplemented endpoints.
type Inventory interface {
	GetDevice(hostname string) (inventory.Device, bool)
	Domains() []inventory.Domain
	Boundaries() []inventory.Boundary
}

// GraphSource builds the topology graph blast-radius and /api/domains'
// vis.js export operate over.
type GraphSource interface {
	Devices() []inventory.Device
	Neighbors(hostname string) []string
}

// Deps are the components Server wires into HTTP handlers.
type Deps struct {
	Walker      Walker
	Inventory   Inventory
	Graph       GraphSource
	Collected   *collected.Cache
	History     history.Store
	Log         *slog.Logger
	CORSOrigins []string

	Version string
	Commit  string
	Date    string
}

// Server hosts the pathtracer HTTP API.
type Server struct {
	deps         Deps
	router       chi.Router
	graph        *blastradius.Graph
	shuttingDown atomic.Bool
}

// New builds a Server with its router fully wired. The graph is built
// once at construction — topology changes require restarting the
// process, same as the rest of the inventory snapshot's lifecycle.
func New(deps Deps) *Server {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if len(deps.CORSOrigins) == 0 {
		deps.CORSOrigins = []string{"*"}
	}
	if deps.History == nil {
		deps.History = history.NewMemoryStore()
	}

	s := &Server{deps: deps, graph: blastradius.Build(deps.Graph)}
	s.router = s.buildRouter()
	return s
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) buildRouter() chi.Router {
	metrics.BuildInfo.WithLabelValues(s.deps.Version, s.deps.Commit, s.deps.Date).Set(1)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/api/version", s.handleVersion)

	r.Post("/api/trace", s.handleTrace)
	r.Post("/api/trace/compare", s.handleCompare)
	r.Post("/api/simulate/failure", s.handleSimulateFailure)
	r.Post("/api/blast-radius", s.handleBlastRadius)
	r.Get("/api/origin/{prefix}", s.handleOrigin)
	r.Get("/api/domains", s.handleDomains)
	r.Get("/api/collected/{device}", s.handleCollected)

	r.Get("/api/history", s.handleHistoryList)
	r.Get("/api/history/{id}", s.handleHistoryGet)

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.shuttingDown.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("shutting down"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": s.deps.Version,
		"commit":  s.deps.Commit,
		"date":    s.deps.Date,
	})
}

// Shutdown marks the server as shutting down (so /readyz starts failing
// immediately) and gives in-flight requests the rest of ctx's deadline.
func (s *Server) Shutdown(ctx context.Context, httpServer *http.Server) error {
	s.shuttingDown.Store(true)
	return httpServer.Shutdown(ctx)
}

// reverseTracer adapts Server.deps.Walker to the narrower Tracer
// interface internal/reverse declares (failsimTracer, in simulate.go,
// does the same for internal/failsim), since Deps.Walker is typed by
// this package's own Walker interface rather than *walker.Walker
// directly.
type reverseTracer struct{ w Walker }

func (t reverseTracer) Trace(ctx context.Context, prefix, start, vrf string, excluded []string) (*walker.TraceResult, error) {
	return t.w.Trace(ctx, prefix, start, vrf, excluded)
}

var _ reverse.Tracer = reverseTracer{}
