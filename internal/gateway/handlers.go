package gateway

import (
	"embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dohr-michael/todomind/internal/agent"
	"github.com/dohr-michael/todomind/internal/history"
	"github.com/dohr-michael/todomind/internal/memory"
)

//go:embed static/index.html
var staticFS embed.FS

const maxChatBody = 1 << 20

type chatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) userID(r *http.Request) string {
	if id := r.URL.Query().Get("user_id"); id != "" {
		return id
	}
	return s.deps.DefaultUser
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req agent.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := s.deps.Assistant.Chat(r.Context(), req)
	switch {
	case errors.Is(err, agent.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "message is required")
		return
	case err != nil:
		slog.Error("chat failed", "user", req.UserID, "conversation", req.ConversationID, "error", err)
		writeJSON(w, http.StatusBadGateway, chatResponse{
			Response:       "Error: " + err.Error(),
			ConversationID: req.ConversationID,
		})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply.Content, ConversationID: reply.ConversationID})
}

func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Memory.All(s.userID(r)))
}

func (s *Server) handleClearMemories(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Memory.Clear(s.userID(r)); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, memory.ErrInvalidUser) {
			code = http.StatusBadRequest
		}
		writeError(w, code, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMemorySummary(w http.ResponseWriter, r *http.Request) {
	limit := s.deps.SummaryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"summary": s.deps.Memory.ContextSummary(s.userID(r), limit),
	})
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeError(w, http.StatusServiceUnavailable, "history not available")
		return
	}
	list, err := s.deps.History.Conversations(r.Context(), s.userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []history.Conversation{}
	}
	writeJSON(w, http.StatusOK, list)
}
