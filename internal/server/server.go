// Package server provides the HTTP/WebSocket transport for the agent
// runtime: REST session endpoints plus a bidirectional WS connection that
// drives a session's turns and streams its events.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/opencode-ai/opencode/internal/auth"
	"github.com/opencode-ai/opencode/internal/event"
	"github.com/opencode-ai/opencode/internal/provider"
	"github.com/opencode-ai/opencode/internal/session"
	"github.com/opencode-ai/opencode/internal/storage"
	"github.com/opencode-ai/opencode/internal/tool"
	"github.com/opencode-ai/opencode/pkg/types"
)

// Config holds server configuration.
type Config struct {
	Port         int
	EnableCORS   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:         8080,
		EnableCORS:   true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // no write timeout: the WS connection is long-lived
	}
}

// Server is the HTTP/WS server fronting one Session Runtime.
type Server struct {
	config         *Config
	router         *chi.Mux
	httpSrv        *http.Server
	appConfig      *types.Config
	storage        *storage.Storage
	bus            *event.Bus
	sessionService *session.Service
	providerReg    *provider.Registry
	toolReg        *tool.Registry
	verifier       auth.Verifier
	upgrader       websocket.Upgrader

	mu    sync.Mutex
	sinks map[string]*wsConn // sessionID -> the live connection currently serving it
}

// New creates a new Server instance. verifier resolves bearer credentials to
// identities; a nil verifier falls back to auth.StubVerifier.
func New(cfg *Config, appConfig *types.Config, store *storage.Storage, providerReg *provider.Registry, toolReg *tool.Registry, verifier auth.Verifier) *Server {
	r := chi.NewRouter()

	defaultProviderID, defaultModelID := provider.ParseModelString(appConfig.LLMModel)
	if defaultProviderID == "" {
		defaultProviderID = "anthropic"
	}

	if verifier == nil {
		verifier = auth.StubVerifier{}
	}

	bus := event.NewBus()
	s := &Server{
		config:    cfg,
		router:    r,
		appConfig: appConfig,
		storage:   store,
		bus:       bus,
		sessionService: session.NewServiceWithProcessor(
			store, providerReg, toolReg, bus,
			defaultProviderID, defaultModelID,
			appConfig.MaxIterations, appConfig.MaxTurnDuration, appConfig.ContextTokenBudget,
		),
		providerReg: providerReg,
		toolReg:     toolReg,
		verifier:    verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		sinks: make(map[string]*wsConn),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures middleware for the server.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RealIP)

	if s.config.EnableCORS {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	s.router.Use(s.authenticate)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Router returns the Chi router, for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// registerSink makes conn the active WS sink for sessionID, superseding and
// closing whatever connection previously held it. Per-session reconnect
// redirects future events to the new connection without replaying the gap.
func (s *Server) registerSink(sessionID string, conn *wsConn) {
	s.mu.Lock()
	prev := s.sinks[sessionID]
	s.sinks[sessionID] = conn
	s.mu.Unlock()

	if prev != nil {
		prev.supersede()
	}
}

// releaseSink clears conn as the active sink for sessionID, if it still is
// (a later reconnect may already have replaced it).
func (s *Server) releaseSink(sessionID string, conn *wsConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sinks[sessionID] == conn {
		delete(s.sinks, sessionID)
	}
}
