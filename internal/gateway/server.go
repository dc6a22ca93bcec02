// Package gateway serves the assistant over HTTP.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dohr-michael/todomind/internal/agent"
	"github.com/dohr-michael/todomind/internal/history"
	"github.com/dohr-michael/todomind/internal/memory"
)

// Chatter answers chat turns.
type Chatter interface {
	Chat(ctx context.Context, req agent.Request) (*agent.Reply, error)
}

// MemoryStore is the memory API exposed under /api/memories.
type MemoryStore interface {
	All(userID string) map[string]memory.Record
	Clear(userID string) error
	ContextSummary(userID string, limit int) string
}

// ConversationLister lists stored conversations.
type ConversationLister interface {
	Conversations(ctx context.Context, userID string) ([]history.Conversation, error)
}

// Deps are the services behind the routes. History is optional.
type Deps struct {
	Assistant    Chatter
	Memory       MemoryStore
	History      ConversationLister
	DefaultUser  string
	SummaryLimit int
}

// Server is the todomind gateway HTTP server.
type Server struct {
	httpServer *http.Server
	deps       Deps
}

// NewServer creates a new gateway server.
func NewServer(deps Deps, host string, port int) *Server {
	if deps.DefaultUser == "" {
		deps.DefaultUser = memory.DefaultUser
	}
	if deps.SummaryLimit <= 0 {
		deps.SummaryLimit = 10
	}
	s := &Server{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(accessLog)

	r.Get("/", s.handleIndex)
	r.Post("/chat", s.handleChat)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/memories", s.handleListMemories)
		r.Delete("/memories", s.handleClearMemories)
		r.Get("/memories/summary", s.handleMemorySummary)
		r.Get("/conversations", s.handleConversations)
	})

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("todomind gateway listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// accessLog logs one line per request once it completes.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
			"remote", r.RemoteAddr,
		)
	})
}
