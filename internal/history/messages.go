package history

import (
	"context"
	"fmt"
	"slices"
	"time"
)

const timeLayout = "2006-01-02T15:04:05.000Z"

// Append adds a message to the conversation.
func (s *Store) Append(ctx context.Context, conversationID, userID string, role Role, content string) error {
	if conversationID == "" {
		return fmt.Errorf("history: conversation id is required")
	}
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("history: unsupported role %q", role)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (conversation_id, seq, user_id, role, content)
		VALUES (?, COALESCE((SELECT MAX(seq) FROM messages WHERE conversation_id = ?), 0) + 1, ?, ?, ?)`,
		conversationID, conversationID, userID, string(role), content,
	)
	if err != nil {
		return fmt.Errorf("history: append message: %w", err)
	}
	return nil
}

// Recent returns the last runs user/assistant exchanges the user had in the
// conversation, in chronological order. The window always opens on a user turn.
func (s *Store) Recent(ctx context.Context, conversationID, userID string, runs int) ([]Message, error) {
	if runs <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT conversation_id, user_id, role, content, created_at
		FROM messages
		WHERE conversation_id = ? AND user_id = ?
		ORDER BY seq DESC
		LIMIT ?`,
		conversationID, userID, runs*2,
	)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		var (
			m       Message
			role    string
			created string
		)
		if err := rows.Scan(&m.ConversationID, &m.UserID, &role, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("history: scan message: %w", err)
		}
		m.Role = Role(role)
		m.CreatedAt = parseTime(created)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: recent rows: %w", err)
	}

	slices.Reverse(msgs)
	for len(msgs) > 0 && msgs[0].Role != RoleUser {
		msgs = msgs[1:]
	}
	return msgs, nil
}

// Conversations lists a user's conversations, most recently updated first.
func (s *Store) Conversations(ctx context.Context, userID string) ([]Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT conversation_id, COUNT(*), MIN(created_at), MAX(created_at)
		FROM messages
		WHERE user_id = ?
		GROUP BY conversation_id
		ORDER BY MAX(created_at) DESC, conversation_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("history: conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var convs []Conversation
	for rows.Next() {
		var (
			c              Conversation
			started, ended string
		)
		if err := rows.Scan(&c.ID, &c.Messages, &started, &ended); err != nil {
			return nil, fmt.Errorf("history: scan conversation: %w", err)
		}
		c.UserID = userID
		c.StartedAt = parseTime(started)
		c.UpdatedAt = parseTime(ended)
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: conversation rows: %w", err)
	}
	return convs, nil
}

// Purge removes every message of the conversation.
func (s *Store) Purge(ctx context.Context, conversationID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id = ?", conversationID); err != nil {
		return fmt.Errorf("history: purge: %w", err)
	}
	return nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
