// Package memory provides the per-user key-value memory of the assistant.
//
// Each user's facts live in one JSON document, <dir>/<user>_memory.json,
// rewritten in full on every change.
package memory

import (
	"context"
	"errors"
	"time"
)

// DefaultUser is used whenever a caller does not name a user.
const DefaultUser = "default"

// sessionIDLayout formats the per-process session id (YYYYMMDD_HHMMSS).
const sessionIDLayout = "20060102_150405"

// timestampLayout is the ISO-8601 layout stamped on records.
const timestampLayout = "2006-01-02T15:04:05.000000"

var (
	// ErrEmptyKey is returned when remembering a fact without a key.
	ErrEmptyKey = errors.New("memory: key is required")
	// ErrInvalidUser is returned for user ids that cannot name a file.
	ErrInvalidUser = errors.New("memory: invalid user id")
)

// Record is one remembered fact.
type Record struct {
	Value     any    `json:"value" yaml:"value"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	SessionID string `json:"session_id" yaml:"session_id"`
}

// Time parses the record timestamp. ok is false when it is absent or malformed.
func (r Record) Time() (t time.Time, ok bool) {
	return parseTimestamp(r.Timestamp)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type userKey struct{}

// WithUser returns a context carrying the active memory user.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFromContext returns the memory user carried by ctx, or DefaultUser.
func UserFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userKey{}).(string); ok && id != "" {
		return id
	}
	return DefaultUser
}
