package agent

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/dohr-michael/todomind/internal/history"
	"github.com/dohr-michael/todomind/internal/memory"
	"github.com/dohr-michael/todomind/internal/plugins"
)

type fixture struct {
	model   *scriptedModel
	memory  *memory.Store
	history *history.Store
	asst    *Assistant
}

func newFixture(t *testing.T, profile string, replies ...*schema.Message) *fixture {
	t.Helper()
	dir := t.TempDir()

	mem, err := memory.NewStore(filepath.Join(dir, "memory"))
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	hist, err := history.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	t.Cleanup(func() { _ = hist.Close() })

	reg := plugins.NewToolRegistry()
	for name, tl := range plugins.NewMemoryTools(mem) {
		if err := reg.RegisterNative(name, tl, plugins.MemoryManifest()); err != nil {
			t.Fatal(err)
		}
	}

	p, err := LookupProfile(profile)
	if err != nil {
		t.Fatal(err)
	}
	m := &scriptedModel{replies: replies}
	asst, err := New(Config{Model: m, Tools: reg, Memory: mem, History: hist, Profile: p})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	asst.now = func() time.Time { return time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC) }
	return &fixture{model: m, memory: mem, history: hist, asst: asst}
}

func TestChat_PlainAnswer(t *testing.T) {
	f := newFixture(t, "todoist", schema.AssistantMessage("Hello Ana!", nil))
	_ = f.memory.Remember("name", "Ana", "ana")

	reply, err := f.asst.Chat(context.Background(), Request{UserID: "ana", Message: "hi"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply.Content != "Hello Ana!" {
		t.Errorf("unexpected content %q", reply.Content)
	}
	if !strings.HasPrefix(reply.ConversationID, "conv_") || len(reply.ConversationID) != len("conv_")+8 {
		t.Errorf("unexpected conversation id %q", reply.ConversationID)
	}

	calls := f.model.calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 model call, got %d", len(calls))
	}
	system := calls[0][0]
	if system.Role != schema.System || !strings.Contains(system.Content, "name: Ana") {
		t.Errorf("expected memory summary in system prompt, got %q", system.Content)
	}
	if !strings.Contains(system.Content, "2026-03-11") {
		t.Errorf("expected current date in system prompt")
	}

	msgs, err := f.history.Recent(context.Background(), reply.ConversationID, "ana", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].Content != "hi" || msgs[1].Content != "Hello Ana!" {
		t.Fatalf("unexpected history %+v", msgs)
	}
	if msgs[0].UserID != "ana" {
		t.Errorf("expected history user ana, got %q", msgs[0].UserID)
	}
}

func TestChat_ToolCallUsesRequestUser(t *testing.T) {
	f := newFixture(t, "todoist",
		toolCall("call_1", "remember", `{"key":"city","value":"Porto"}`),
		schema.AssistantMessage("Noted, you live in Porto.", nil),
	)

	reply, err := f.asst.Chat(context.Background(), Request{UserID: "bob", Message: "I live in Porto"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply.Content != "Noted, you live in Porto." {
		t.Errorf("unexpected content %q", reply.Content)
	}
	if v, ok := f.memory.Recall("city", "bob"); !ok || v != "Porto" {
		t.Fatalf("expected tool to write bob's memory, got %v %v", v, ok)
	}

	calls := f.model.calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(calls))
	}
	last := calls[1][len(calls[1])-1]
	if last.Role != schema.Tool || !strings.Contains(last.Content, "I'll remember that city: Porto") {
		t.Errorf("expected tool result as last input, got %+v", last)
	}
	if len(f.model.tools) != 4 {
		t.Errorf("expected the 4 memory tools, got %d", len(f.model.tools))
	}
}

func TestChat_ReplaysHistory(t *testing.T) {
	f := newFixture(t, "todoist",
		schema.AssistantMessage("first answer", nil),
		schema.AssistantMessage("second answer", nil),
	)
	ctx := context.Background()

	first, err := f.asst.Chat(ctx, Request{Message: "first question"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.asst.Chat(ctx, Request{ConversationID: first.ConversationID, Message: "second question"}); err != nil {
		t.Fatal(err)
	}

	input := f.model.calls()[1]
	var contents []string
	for _, m := range input[1:] {
		contents = append(contents, string(m.Role)+":"+m.Content)
	}
	want := "user:first question|assistant:first answer|user:second question"
	if got := strings.Join(contents, "|"); got != want {
		t.Errorf("expected replay %q, got %q", want, got)
	}
}

func TestChat_ForeignConversationNotReplayed(t *testing.T) {
	f := newFixture(t, "todoist",
		schema.AssistantMessage("noted", nil),
		schema.AssistantMessage("hello bob", nil),
	)
	ctx := context.Background()

	first, err := f.asst.Chat(ctx, Request{UserID: "alice", Message: "my phone is 555"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.asst.Chat(ctx, Request{UserID: "bob", ConversationID: first.ConversationID, Message: "hi"}); err != nil {
		t.Fatal(err)
	}

	input := f.model.calls()[1]
	if len(input) != 2 || input[1].Content != "hi" {
		t.Fatalf("expected only the system prompt and bob's message, got %+v", input)
	}
	for _, m := range input {
		if strings.Contains(m.Content, "555") {
			t.Fatalf("alice's turn leaked into bob's prompt: %q", m.Content)
		}
	}
}

func TestChat_Errors(t *testing.T) {
	f := newFixture(t, "todoist")
	if _, err := f.asst.Chat(context.Background(), Request{Message: "   "}); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}

	f.model.err = errors.New("upstream down")
	_, err := f.asst.Chat(context.Background(), Request{Message: "hi"})
	if err == nil || !strings.Contains(err.Error(), "upstream down") {
		t.Fatalf("expected model error to surface, got %v", err)
	}
}

func TestNew_RequiresModelAndMemory(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without model")
	}
	if _, err := New(Config{Model: &scriptedModel{}}); err == nil {
		t.Error("expected error without memory")
	}
}

func TestAssistant_ToolNamesFollowProfile(t *testing.T) {
	f := newFixture(t, "researcher")
	if names := f.asst.ToolNames(); len(names) != 0 {
		t.Errorf("researcher should not see memory tools, got %v", names)
	}
}
