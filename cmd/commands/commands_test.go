package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dohr-michael/todomind/internal/agent"
	"github.com/dohr-michael/todomind/internal/memory"
)

type echoChatter struct {
	requests []agent.Request
	fail     string
}

func (e *echoChatter) Chat(_ context.Context, req agent.Request) (*agent.Reply, error) {
	e.requests = append(e.requests, req)
	if req.Message == e.fail {
		return nil, errors.New("model offline")
	}
	conv := req.ConversationID
	if conv == "" {
		conv = "conv_test"
	}
	return &agent.Reply{Content: "echo: " + req.Message, ConversationID: conv}, nil
}

func TestChatLoop(t *testing.T) {
	in := strings.NewReader("hello\n\nbroken\nagain\nsair\nignored\n")
	var out bytes.Buffer
	c := &echoChatter{fail: "broken"}

	if err := chatLoop(context.Background(), in, &out, c, "alice", true); err != nil {
		t.Fatalf("chatLoop: %v", err)
	}

	if len(c.requests) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(c.requests))
	}
	if c.requests[0].ConversationID != "" {
		t.Errorf("first turn must start a conversation, got %q", c.requests[0].ConversationID)
	}
	if c.requests[2].ConversationID != "conv_test" || c.requests[2].UserID != "alice" {
		t.Errorf("later turns must reuse the conversation, got %+v", c.requests[2])
	}

	text := out.String()
	for _, want := range []string{"echo: hello", "Error: model offline", "echo: again", "Bye!"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected output to contain %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "ignored") {
		t.Error("input after the exit word must not be sent")
	}
}

func TestChatLoop_EOF(t *testing.T) {
	var out bytes.Buffer
	if err := chatLoop(context.Background(), strings.NewReader("hi"), &out, &echoChatter{}, "", true); err != nil {
		t.Fatalf("chatLoop: %v", err)
	}
	if !strings.Contains(out.String(), "echo: hi") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestPrintAnswer_NonTerminal(t *testing.T) {
	var out bytes.Buffer
	if err := printAnswer(&out, "**bold**", false); err != nil {
		t.Fatal(err)
	}
	if out.String() != "**bold**\n" {
		t.Errorf("expected raw markdown on a non-terminal writer, got %q", out.String())
	}
}

func TestWriteMemories(t *testing.T) {
	records := map[string]memory.Record{
		"name": {Value: "Ana", Timestamp: "2026-03-01T09:30:00.000000", SessionID: "20260301_093000"},
		"age":  {Value: 31.0},
	}

	var table bytes.Buffer
	if err := writeMemories(&table, records, "table"); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(table.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "age") || !strings.Contains(lines[2], "2026-03-01 09:30") {
		t.Errorf("unexpected table:\n%s", table.String())
	}

	var js bytes.Buffer
	if err := writeMemories(&js, records, "json"); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]memory.Record
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["name"].Value != "Ana" {
		t.Errorf("unexpected json %s", js.String())
	}

	var y bytes.Buffer
	if err := writeMemories(&y, records, "yaml"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(y.String(), "session_id:") || !strings.Contains(y.String(), "20260301_093000") {
		t.Errorf("unexpected yaml:\n%s", y.String())
	}

	if err := writeMemories(&bytes.Buffer{}, records, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}

	var empty bytes.Buffer
	_ = writeMemories(&empty, nil, "table")
	if empty.String() != "No memories stored.\n" {
		t.Errorf("unexpected empty output %q", empty.String())
	}
}

func TestParseMemoryValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", json.Number("42")},
		{"true", true},
		{`["a","b"]`, []any{"a", "b"}},
		{"pão de queijo", "pão de queijo"},
		{`"quoted"`, "quoted"},
		{"null", "null"},
		{"42 apples", "42 apples"},
	}
	for _, tt := range tests {
		got := parseMemoryValue(tt.in)
		gotJSON, _ := json.Marshal(got)
		wantJSON, _ := json.Marshal(tt.want)
		if string(gotJSON) != string(wantJSON) {
			t.Errorf("parseMemoryValue(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestParseMemoryValue_LongDigits(t *testing.T) {
	v := parseMemoryValue("5511987654321987")
	if _, ok := v.(json.Number); !ok {
		t.Fatalf("expected json.Number, got %T", v)
	}
	if got := memory.FormatValue(v); got != "5511987654321987" {
		t.Errorf("expected every digit, got %q", got)
	}
}

func TestFormatJSONC(t *testing.T) {
	in := []byte("{\n// gateway\n\"gateway\":{\"port\":7777,},\n}\n")
	out, err := formatJSONC(in)
	if err != nil {
		t.Fatalf("formatJSONC: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "// gateway") {
		t.Errorf("comments must survive formatting:\n%s", text)
	}
	if !strings.Contains(text, `"port": 7777`) {
		t.Errorf("expected normalized spacing:\n%s", text)
	}

	if _, err := formatJSONC([]byte("{broken")); err == nil {
		t.Error("expected parse error")
	}
}

func TestExcerpt(t *testing.T) {
	if got := excerpt("a\n  b\tc", 10); got != "a b c" {
		t.Errorf("unexpected excerpt %q", got)
	}
	if got := excerpt("abcdefghij", 5); got != "abcd…" {
		t.Errorf("unexpected cut %q", got)
	}
}
