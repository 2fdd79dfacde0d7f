package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/explode"
	apimiddleware "github.com/helixml/explode/infrastructure/api/middleware"
	v1 "github.com/helixml/explode/infrastructure/api/v1"
	mcpinternal "github.com/helixml/explode/internal/mcp"
)

// DefaultRequestTimeout bounds /api/v1 requests.
const DefaultRequestTimeout = 60 * time.Second

// APIServer provides an HTTP API backed by an explode Client.
type APIServer struct {
	client         *explode.Client
	apiKeys        []string
	corsOrigins    []string
	requestTimeout time.Duration
	version        string
	logger         *slog.Logger

	mu     sync.Mutex
	server *Server
}

// APIServerOption configures an APIServer.
type APIServerOption func(*APIServer)

// WithAPIKeys write-protects POST /api/v1/query with the given keys.
func WithAPIKeys(keys []string) APIServerOption {
	return func(a *APIServer) { a.apiKeys = keys }
}

// WithCORSOrigins enables CORS for origins.
func WithCORSOrigins(origins []string) APIServerOption {
	return func(a *APIServer) { a.corsOrigins = origins }
}

// WithRequestTimeout overrides DefaultRequestTimeout.
func WithRequestTimeout(d time.Duration) APIServerOption {
	return func(a *APIServer) {
		if d > 0 {
			a.requestTimeout = d
		}
	}
}

// WithVersion sets the version reported by the MCP endpoint.
func WithVersion(v string) APIServerOption {
	return func(a *APIServer) { a.version = v }
}

// NewAPIServer creates a new APIServer wired to client.
func NewAPIServer(client *explode.Client, opts ...APIServerOption) *APIServer {
	a := &APIServer{
		client:         client,
		requestTimeout: DefaultRequestTimeout,
		version:        "dev",
		logger:         client.Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// mountRoutes wires every route onto router.
func (a *APIServer) mountRoutes(router chi.Router) {
	functionsRouter := v1.NewFunctionsRouter(a.client)
	queryRouter := v1.NewQueryRouter(a.client)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(a.requestTimeout))

		r.Mount("/functions", functionsRouter.Routes())

		r.Group(func(r chi.Router) {
			r.Use(apimiddleware.WriteProtect(apimiddleware.NewAuthConfig(a.apiKeys)))
			r.Mount("/query", queryRouter.Routes())
		})
	})

	mcpSrv := mcpinternal.NewServer(a.client.Functions, a.client, a.client, a.version, a.logger)
	router.Mount("/mcp", server.NewStreamableHTTPServer(mcpSrv.MCPServer()))
}

// Handler returns every route as an http.Handler, for tests and custom servers.
func (a *APIServer) Handler() http.Handler {
	srv := NewServer("", a.logger, a.corsOrigins)
	a.mountRoutes(srv.Router())
	return srv.Router()
}

// ListenAndServe starts the HTTP server on addr.
func (a *APIServer) ListenAndServe(addr string) error {
	return a.start(NewServer(addr, a.logger, a.corsOrigins)).Start()
}

// Serve starts the HTTP server on ln.
func (a *APIServer) Serve(ln net.Listener) error {
	return a.start(NewServer(ln.Addr().String(), a.logger, a.corsOrigins)).Serve(ln)
}

func (a *APIServer) start(srv *Server) *Server {
	a.mountRoutes(srv.Router())
	a.mu.Lock()
	a.server = srv
	a.mu.Unlock()
	return srv
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	srv := a.server
	a.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
