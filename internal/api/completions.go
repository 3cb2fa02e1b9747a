package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/mimic/internal/corpus"
	"github.com/MikeSquared-Agency/mimic/internal/hermes"
	"github.com/MikeSquared-Agency/mimic/internal/index"
)

// maxRequestBytes bounds a completion request; long conversations carry
// their whole history.
const maxRequestBytes = 64 << 20

// NotFoundMessage is the error text for a context with no recorded reply.
const NotFoundMessage = "No valid response exists for the given request"

// ChatCompletionRequest follows the OpenAI chat completions request shape.
type ChatCompletionRequest struct {
	Messages []corpus.Message `json:"messages"`
}

// ChatCompletionResponse carries the replayed reply and the id of the
// conversation it was recorded in.
type ChatCompletionResponse struct {
	ID      string         `json:"id"`
	Created int64          `json:"created"`
	Message corpus.Message `json:"message"`
}

// ConversationResponse is a full canonical conversation.
type ConversationResponse struct {
	ID       string           `json:"id"`
	Messages []corpus.Message `json:"messages"`
}

// chatCompletion handles POST /v1/chat/completions
func (s *Server) chatCompletion(w http.ResponseWriter, r *http.Request) {
	var req ChatCompletionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, corpus.ErrUnknownRoleAlias) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Messages == nil {
		writeError(w, http.StatusBadRequest, "missing field \"messages\"")
		return
	}

	cand, ok := s.index.LookupMessages(req.Messages)
	if !ok {
		contextLen := len(index.Key(req.Messages))
		slog.Debug("no recorded reply", "messages", len(req.Messages), "context_len", contextLen)
		s.publishMiss(len(req.Messages), contextLen)
		writeError(w, http.StatusNotFound, NotFoundMessage)
		return
	}

	writeJSON(w, http.StatusOK, ChatCompletionResponse{
		ID:      cand.ConversationID,
		Created: time.Now().Unix(),
		Message: cand.Message,
	})
}

func (s *Server) publishMiss(messages, contextLen int) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(hermes.SubjectLookupMiss, hermes.NewLookupMiss(messages, contextLen)); err != nil {
		slog.Warn("failed to publish lookup miss", "error", err)
	}
}

// conversation handles GET /api/v1/conversations/{id}
func (s *Server) conversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	msgs, ok := s.convs.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	if msgs == nil {
		msgs = []corpus.Message{}
	}
	writeJSON(w, http.StatusOK, ConversationResponse{ID: id, Messages: msgs})
}
