package memory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const fileSuffix = "_memory.json"

// Store keeps every user's records in memory and mirrors each user to its
// own JSON file. Every mutation rewrites the user's file before returning.
type Store struct {
	dir       string
	sessionID string
	now       func() time.Time

	mu    sync.Mutex
	users map[string]map[string]Record
}

// NewStore creates the storage directory if needed and eagerly loads the
// default user. Other users are loaded on first access.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("memory: create storage dir: %w", err)
	}

	s := &Store{
		dir:   dir,
		now:   time.Now,
		users: make(map[string]map[string]Record),
	}
	s.sessionID = s.now().Format(sessionIDLayout)
	s.users[DefaultUser] = s.load(DefaultUser)
	return s, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }

// SessionID returns the id stamped on records written by this store.
func (s *Store) SessionID() string { return s.sessionID }

// Remember inserts or overwrites the record at key and persists the user's
// whole set. The in-memory set only changes once the file is written.
func (s *Store) Remember(key string, value any, userID string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	userID = normalizeUser(userID)
	if !validUser(userID) {
		return fmt.Errorf("%w: %q", ErrInvalidUser, userID)
	}

	value, err := normalizeValue(value)
	if err != nil {
		return fmt.Errorf("memory: encode value for %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.userSet(userID)
	next := make(map[string]Record, len(current)+1)
	for k, r := range current {
		next[k] = r
	}
	next[key] = Record{
		Value:     value,
		Timestamp: s.now().Format(timestampLayout),
		SessionID: s.sessionID,
	}

	if err := s.save(userID, next); err != nil {
		return err
	}
	s.users[userID] = next
	return nil
}

// Recall returns the value stored at key for the user.
// ok is false when the user or key is unknown.
func (s *Store) Recall(key, userID string) (value any, ok bool) {
	userID = normalizeUser(userID)
	if !validUser(userID) {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.userSet(userID)[key]
	if !ok {
		return nil, false
	}
	return r.Value, true
}

// All returns a copy of every record for the user.
func (s *Store) All(userID string) map[string]Record {
	userID = normalizeUser(userID)
	out := make(map[string]Record)
	if !validUser(userID) {
		return out
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, r := range s.userSet(userID) {
		out[k] = r
	}
	return out
}

// Clear drops every record for the user and persists the empty set.
// Clearing an unknown or already empty user succeeds.
func (s *Store) Clear(userID string) error {
	userID = normalizeUser(userID)
	if !validUser(userID) {
		return fmt.Errorf("%w: %q", ErrInvalidUser, userID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	empty := make(map[string]Record)
	if err := s.save(userID, empty); err != nil {
		return err
	}
	s.users[userID] = empty
	return nil
}

// Users lists the users with a memory file in the storage directory.
func (s *Store) Users() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("memory: list users: %w", err)
	}

	var users []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		users = append(users, strings.TrimSuffix(name, fileSuffix))
	}
	sort.Strings(users)
	return users, nil
}

// userSet returns the user's set, loading it from disk on first access.
// Callers must hold s.mu.
func (s *Store) userSet(userID string) map[string]Record {
	set, ok := s.users[userID]
	if !ok {
		set = s.load(userID)
		s.users[userID] = set
	}
	return set
}

func (s *Store) path(userID string) string {
	return filepath.Join(s.dir, userID+fileSuffix)
}

// load reads a user's file. A missing, unreadable or malformed file yields an
// empty set; the next write replaces it.
func (s *Store) load(userID string) map[string]Record {
	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("memory: read user file", "user", userID, "error", err)
		}
		return make(map[string]Record)
	}

	var set map[string]Record
	if err := decodeJSON(data, &set); err != nil {
		slog.Warn("memory: malformed user file, starting empty", "user", userID, "error", err)
		return make(map[string]Record)
	}
	if set == nil {
		set = make(map[string]Record)
	}
	return set
}

// save rewrites the user's file with the full set.
func (s *Store) save(userID string, set map[string]Record) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("memory: encode %s: %w", userID, err)
	}

	// Atomic write: tmp + rename
	path := s.path(userID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("memory: write %s: %w", userID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("memory: write %s: %w", userID, err)
	}
	return nil
}

// normalizeValue returns v as it reads back from a user file, so the
// in-memory set always equals what the file reconstructs.
func normalizeValue(v any) (any, error) {
	data, err := marshalValue(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := decodeJSON(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// decodeJSON unmarshals data keeping numbers as json.Number.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

func normalizeUser(userID string) string {
	if userID == "" {
		return DefaultUser
	}
	return userID
}

func validUser(userID string) bool {
	if userID == "" || userID == "." || strings.Contains(userID, "..") {
		return false
	}
	return !strings.ContainsAny(userID, `/\`+"\x00")
}
