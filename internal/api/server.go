package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/mimic/internal/corpus"
	"github.com/MikeSquared-Agency/mimic/internal/index"
)

// Publisher receives lookup-miss events. *hermes.Client satisfies it.
type Publisher interface {
	Publish(subject string, data any) error
}

type Server struct {
	router *chi.Mux
	http   *http.Server

	index  *index.Index
	convs  *corpus.Conversations
	events Publisher
	faulty bool
}

// NewServer wires the read-only index and conversation store into the HTTP
// routes. events may be nil.
func NewServer(port int, idx *index.Index, convs *corpus.Conversations, events Publisher) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		index:  idx,
		convs:  convs,
		events: events,
	}
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/mimic/status", s.status)
	router.Post("/v1/chat/completions", s.chatCompletion)
	router.Get("/api/v1/conversations/{id}", s.conversation)

	return s
}

// MarkFaulty flags the status endpoint so clients know replies were
// deliberately corrupted.
func (s *Server) MarkFaulty() {
	s.faulty = true
}

// Handler exposes the router, mainly for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called. A Shutdown that happens first makes
// Start return nil immediately.
func (s *Server) Start() error {
	slog.Info("API server starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	mode := "replay"
	if s.faulty {
		mode = "faulty"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":         "mimic",
		"status":        mode,
		"conversations": s.convs.Len(),
		"keys":          s.index.Len(),
		"candidates":    s.index.CandidateCount(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
