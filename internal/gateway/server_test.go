package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dohr-michael/todomind/internal/agent"
	"github.com/dohr-michael/todomind/internal/history"
	"github.com/dohr-michael/todomind/internal/memory"
)

type fakeChatter struct {
	last  agent.Request
	reply *agent.Reply
	err   error
}

func (f *fakeChatter) Chat(_ context.Context, req agent.Request) (*agent.Reply, error) {
	f.last = req
	return f.reply, f.err
}

type testEnv struct {
	srv     *Server
	chat    *fakeChatter
	memory  *memory.Store
	history *history.Store
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	mem, err := memory.NewStore(filepath.Join(dir, "memory"))
	if err != nil {
		t.Fatal(err)
	}
	hist, err := history.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = hist.Close() })

	chat := &fakeChatter{reply: &agent.Reply{Content: "hello", ConversationID: "conv_12345678"}}
	srv := NewServer(Deps{Assistant: chat, Memory: mem, History: hist}, "localhost", 0)
	return &testEnv{srv: srv, chat: chat, memory: mem, history: hist}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

func TestHandleHealth(t *testing.T) {
	env := newTestServer(t)
	w := env.do(t, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if body := decode[map[string]string](t, w); body["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", body)
	}
}

func TestHandleIndex(t *testing.T) {
	env := newTestServer(t)
	w := env.do(t, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("unexpected content type %q", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), `fetch("/chat"`) {
		t.Error("chat page should post to /chat")
	}
}

func TestHandleChat(t *testing.T) {
	env := newTestServer(t)
	w := env.do(t, http.MethodPost, "/chat", `{"message":"hi","user_id":"ana"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decode[map[string]string](t, w)
	if body["response"] != "hello" || body["conversation_id"] != "conv_12345678" {
		t.Errorf("unexpected body %v", body)
	}
	if env.chat.last.UserID != "ana" || env.chat.last.Message != "hi" {
		t.Errorf("unexpected request %+v", env.chat.last)
	}
}

func TestHandleChat_BadRequests(t *testing.T) {
	env := newTestServer(t)
	for _, body := range []string{`{"message":"  "}`, `{}`, `not json`} {
		if w := env.do(t, http.MethodPost, "/chat", body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestHandleChat_AgentError(t *testing.T) {
	env := newTestServer(t)
	env.chat.err = errors.New("model unavailable")

	w := env.do(t, http.MethodPost, "/chat", `{"message":"hi"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if body := decode[map[string]string](t, w); body["response"] != "Error: model unavailable" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestMemoriesAPI(t *testing.T) {
	env := newTestServer(t)
	_ = env.memory.Remember("name", "Ana", "ana")
	_ = env.memory.Remember("lang", "pt", "")

	w := env.do(t, http.MethodGet, "/api/memories?user_id=ana", "")
	records := decode[map[string]memory.Record](t, w)
	if len(records) != 1 || records["name"].Value != "Ana" {
		t.Fatalf("unexpected records %v", records)
	}

	w = env.do(t, http.MethodGet, "/api/memories/summary?limit=5", "")
	summary := decode[map[string]string](t, w)["summary"]
	if !strings.Contains(summary, "lang: pt") {
		t.Errorf("expected default user summary, got %q", summary)
	}

	if w := env.do(t, http.MethodGet, "/api/memories/summary?limit=x", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", w.Code)
	}

	if w := env.do(t, http.MethodDelete, "/api/memories?user_id=ana", ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if n := len(env.memory.All("ana")); n != 0 {
		t.Errorf("expected ana's memories cleared, got %d", n)
	}
	if n := len(env.memory.All("")); n != 1 {
		t.Errorf("default user must be untouched, got %d", n)
	}

	if w := env.do(t, http.MethodDelete, "/api/memories?user_id=../x", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid user, got %d", w.Code)
	}
}

func TestConversationsAPI(t *testing.T) {
	env := newTestServer(t)
	ctx := context.Background()
	_ = env.history.Append(ctx, "conv_a", "ana", history.RoleUser, "hi")
	_ = env.history.Append(ctx, "conv_a", "ana", history.RoleAssistant, "hello")

	w := env.do(t, http.MethodGet, "/api/conversations?user_id=ana", "")
	list := decode[[]history.Conversation](t, w)
	if len(list) != 1 || list[0].ID != "conv_a" || list[0].Messages != 2 {
		t.Fatalf("unexpected conversations %+v", list)
	}

	w = env.do(t, http.MethodGet, "/api/conversations?user_id=nobody", "")
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("expected empty list, got %s", body)
	}
}
