// Package httpapi implements the ingress HTTP and WebSocket surface: the
// seven REST endpoints and the live event stream. It is the only package
// that knows about wire-level concerns (status codes, JSON envelopes,
// WebSocket framing); everything else in a request's path (rate limiting,
// session storage, the workflow engine) is a plain Go collaborator it
// calls into.
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/archadvisor/archadvisor/core"
	"github.com/archadvisor/archadvisor/eventbus"
	"github.com/archadvisor/archadvisor/orchestration"
	"github.com/archadvisor/archadvisor/ratelimit"
	"github.com/archadvisor/archadvisor/session"
)

// Server bundles every collaborator a handler needs and implements
// http.Handler by dispatching on method and path.
type Server struct {
	Store       *session.Store
	Bus         *eventbus.Bus
	Engine      *orchestration.Engine
	Limiter     *ratelimit.Limiter
	Logger      core.Logger
	CORS        *core.CORSConfig
	DevMode     bool

	mux *http.ServeMux

	// running holds the cancel func of every session currently executing
	// its workflow goroutine, so a cancel request (REST or WebSocket) can
	// stop the task at its next suspension point rather than only
	// flipping the stored status.
	runningMu sync.Mutex
	running   map[string]context.CancelFunc
}

// NewServer builds a Server and registers all routes. Workflows are started
// in the background by runWorkflow.
func NewServer(store *session.Store, bus *eventbus.Bus, engine *orchestration.Engine, limiter *ratelimit.Limiter, logger core.Logger, cors *core.CORSConfig) *Server {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	if cors == nil {
		cors = core.DefaultCORSConfig()
	}
	s := &Server{
		Store:   store,
		Bus:     bus,
		Engine:  engine,
		Limiter: limiter,
		Logger:  logger,
		CORS:    cors,
		mux:     http.NewServeMux(),
		running: make(map[string]context.CancelFunc),
	}
	s.routes()
	return s
}

// runWorkflow spawns a session's workflow in the background and registers
// its cancel func so a later cancel request can stop it promptly.
func (s *Server) runWorkflow(state *session.State) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)

	s.runningMu.Lock()
	s.running[state.SessionID] = cancel
	s.runningMu.Unlock()

	go func() {
		defer func() {
			cancel()
			s.runningMu.Lock()
			delete(s.running, state.SessionID)
			s.runningMu.Unlock()
		}()
		if err := s.Engine.Run(ctx, state); err != nil {
			s.Logger.Warn("workflow run ended with error", map[string]interface{}{"session_id": state.SessionID, "error": err.Error()})
		}
	}()
}

// cancelRunning stops a session's in-flight workflow goroutine, if any. It
// is a best-effort signal: the goroutine observes ctx.Done() at its next
// suspension point rather than stopping instantaneously.
func (s *Server) cancelRunning(sessionID string) {
	s.runningMu.Lock()
	cancel, ok := s.running[sessionID]
	s.runningMu.Unlock()
	if ok {
		cancel()
	}
}

func (s *Server) routes() {
	s.mux.HandleFunc("/sessions", s.handleSessionsCollection)
	s.mux.HandleFunc("/sessions/", s.handleSessionsItem)
	s.mux.HandleFunc("/templates", s.handleTemplates)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ws/", s.handleWebSocket)
}

// ServeHTTP wraps the mux with CORS, OpenTelemetry span instrumentation,
// and structured request logging, in that order from outermost in.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := otelhttp.NewHandler(
		core.LoggingMiddleware(s.Logger, s.DevMode)(s.mux),
		"archadvisor.http",
	)
	core.CORSMiddleware(s.CORS)(handler).ServeHTTP(w, r)
}

// handleSessionsCollection dispatches POST /sessions and GET /sessions.
func (s *Server) handleSessionsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSession(w, r)
	case http.MethodGet:
		s.handleListSessions(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSessionsItem dispatches the /sessions/{id}[/output|/cancel] family.
func (s *Server) handleSessionsItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/sessions/")
	rest = strings.TrimSuffix(rest, "/")
	if rest == "" {
		writeError(w, http.StatusNotFound, "session id required")
		return
	}

	switch {
	case strings.HasSuffix(rest, "/output") && r.Method == http.MethodGet:
		s.handleSessionOutput(w, r, strings.TrimSuffix(rest, "/output"))
	case strings.HasSuffix(rest, "/cancel") && r.Method == http.MethodPost:
		s.handleCancelSession(w, r, strings.TrimSuffix(rest, "/cancel"))
	case r.Method == http.MethodGet:
		s.handleGetSession(w, r, rest)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// clientFingerprint derives the rate-limit and recency-filter key for a
// request. It never trusts a client-supplied identity header: the remote
// address is the only input that costs an attacker something to vary.
func clientFingerprint(r *http.Request) string {
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		addr = addr[:idx]
	}
	if addr == "" {
		addr = "unknown"
	}
	return addr
}

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 30*time.Second)
}

// requestContextBackground is used by paths with no inbound *http.Request
// to bound against, such as a command received over an already-upgraded
// WebSocket connection.
func requestContextBackground() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}
