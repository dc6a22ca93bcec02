package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/dohr-michael/todomind/internal/history"
	"github.com/dohr-michael/todomind/internal/memory"
	"github.com/dohr-michael/todomind/internal/models"
	"github.com/dohr-michael/todomind/internal/plugins"
)

// ErrEmptyMessage is returned by Chat when the user message is blank.
var ErrEmptyMessage = errors.New("agent: message is required")

// History is the conversation log replayed into every turn.
type History interface {
	Append(ctx context.Context, conversationID, userID string, role history.Role, content string) error
	Recent(ctx context.Context, conversationID, userID string, runs int) ([]history.Message, error)
}

// Config wires an Assistant.
type Config struct {
	Model   model.ToolCallingChatModel
	Tools   *plugins.ToolRegistry
	Memory  *memory.Store
	History History // optional

	Profile           Profile
	ExtraInstructions string
	DefaultUser       string
	SummaryLimit      int // memory lines injected per turn
	HistoryRuns       int // past exchanges replayed per turn
	MaxIterations     int
}

// Request is one user turn.
type Request struct {
	UserID         string `json:"user_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

// Reply is the assistant's answer to a Request.
type Reply struct {
	Content        string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

// Assistant answers user turns with a profile-specific agent.
type Assistant struct {
	cfg Config
	now func() time.Time
}

// New validates cfg and returns an Assistant.
func New(cfg Config) (*Assistant, error) {
	if cfg.Model == nil {
		return nil, errors.New("agent: chat model is required")
	}
	if cfg.Memory == nil {
		return nil, errors.New("agent: memory store is required")
	}
	if cfg.Tools == nil {
		cfg.Tools = plugins.NewToolRegistry()
	}
	if cfg.DefaultUser == "" {
		cfg.DefaultUser = memory.DefaultUser
	}
	if cfg.SummaryLimit <= 0 {
		cfg.SummaryLimit = 10
	}
	if cfg.HistoryRuns <= 0 {
		cfg.HistoryRuns = 10
	}
	return &Assistant{cfg: cfg, now: time.Now}, nil
}

// Profile returns the assistant's profile.
func (a *Assistant) Profile() Profile { return a.cfg.Profile }

// ToolNames lists the tools the assistant may call.
func (a *Assistant) ToolNames() []string {
	return a.cfg.Tools.ToolsByCategory(a.cfg.Profile.Categories...)
}

// Chat runs one turn: it injects the user's memory summary into the
// instruction, replays recent history, runs the agent to completion and
// records both messages.
func (a *Assistant) Chat(ctx context.Context, req Request) (*Reply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	userID := req.UserID
	if userID == "" {
		userID = a.cfg.DefaultUser
	}
	convID := req.ConversationID
	if convID == "" {
		convID = NewConversationID()
	}
	ctx = memory.WithUser(ctx, userID)

	instruction := Instructions(a.cfg.Profile, a.cfg.Memory.ContextSummary(userID, a.cfg.SummaryLimit), a.now())
	if a.cfg.ExtraInstructions != "" {
		instruction += "\n\n## Additional Instructions\n\n" + a.cfg.ExtraInstructions
	}

	runner, err := NewAgent(ctx, a.cfg.Model, instruction,
		a.cfg.Tools.ToolsByNames(a.ToolNames()),
		[]adk.AgentMiddleware{NewToolRecoveryMiddleware(0)},
		AgentOptions{MaxIterations: a.cfg.MaxIterations},
	)
	if err != nil {
		return nil, fmt.Errorf("agent: create runner: %w", err)
	}

	messages, err := a.replay(ctx, convID, userID)
	if err != nil {
		return nil, err
	}
	messages = append(messages, schema.UserMessage(message))

	content, err := collectReply(runner.Run(ctx, messages))
	if err != nil {
		return nil, err
	}

	a.record(ctx, convID, userID, history.RoleUser, message)
	a.record(ctx, convID, userID, history.RoleAssistant, content)

	return &Reply{Content: content, ConversationID: convID}, nil
}

func (a *Assistant) replay(ctx context.Context, convID, userID string) ([]adk.Message, error) {
	if a.cfg.History == nil {
		return nil, nil
	}
	past, err := a.cfg.History.Recent(ctx, convID, userID, a.cfg.HistoryRuns)
	if err != nil {
		return nil, fmt.Errorf("agent: load history: %w", err)
	}
	out := make([]adk.Message, 0, len(past)+1)
	for _, m := range past {
		switch m.Role {
		case history.RoleUser:
			out = append(out, schema.UserMessage(m.Content))
		case history.RoleAssistant:
			out = append(out, schema.AssistantMessage(m.Content, nil))
		}
	}
	return out, nil
}

func (a *Assistant) record(ctx context.Context, convID, userID string, role history.Role, content string) {
	if a.cfg.History == nil || content == "" {
		return
	}
	if err := a.cfg.History.Append(ctx, convID, userID, role, content); err != nil {
		slog.Warn("failed to append history", "conversation", convID, "role", role, "error", err)
	}
}

// collectReply drains the iterator and returns the last assistant text.
// Tool results and tool-call-only messages are skipped.
func collectReply(iter *adk.AsyncIterator[*adk.AgentEvent]) (string, error) {
	var content string
	for {
		event, ok := iter.Next()
		if !ok {
			break
		}
		if event.Err != nil {
			return "", fmt.Errorf("agent: %w", models.HandleError(event.Err))
		}
		if event.Output == nil || event.Output.MessageOutput == nil {
			continue
		}

		mv := event.Output.MessageOutput
		if mv.Role == schema.Tool {
			if mv.IsStreaming && mv.MessageStream != nil {
				mv.MessageStream.Close()
			}
			continue
		}

		if mv.IsStreaming {
			text, err := drain(mv.MessageStream)
			if err != nil {
				return "", fmt.Errorf("agent: read stream: %w", err)
			}
			if text != "" {
				content = text
			}
			continue
		}
		if mv.Message != nil && mv.Message.Content != "" {
			content = mv.Message.Content
		}
	}
	return content, nil
}

func drain(stream *schema.StreamReader[*schema.Message]) (string, error) {
	if stream == nil {
		return "", nil
	}
	defer stream.Close()

	var b strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		if chunk != nil {
			b.WriteString(chunk.Content)
		}
	}
}

// NewConversationID returns a fresh "conv_" id.
func NewConversationID() string {
	return "conv_" + uuid.NewString()[:8]
}
