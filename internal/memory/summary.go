package memory

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// NoMemorySummary is returned by ContextSummary for a user without records.
const NoMemorySummary = "No previous memories found."

const summaryHeader = "📝 Previous memories:\n"

// ContextSummary renders at most limit records for the user, newest first,
// one "• [DD/MM HH:MM] key: value" line each. Records whose timestamp does
// not parse render as "• key: value" and sort after all dated records.
// Equal timestamps are ordered by key. A limit <= 0 means no cap.
func (s *Store) ContextSummary(userID string, limit int) string {
	records := s.All(userID)
	if len(records) == 0 {
		return NoMemorySummary
	}

	entries := sortedByRecency(records)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	var b strings.Builder
	b.WriteString(summaryHeader)
	for _, e := range entries {
		if e.dated {
			fmt.Fprintf(&b, "• [%s] %s: %s\n", e.at.Format("02/01 15:04"), e.key, FormatValue(e.record.Value))
		} else {
			fmt.Fprintf(&b, "• %s: %s\n", e.key, FormatValue(e.record.Value))
		}
	}
	return b.String()
}

// FormatValue renders a stored value for display. Strings are printed as-is,
// numbers in plain decimal notation and composite values as compact JSON.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case map[string]any, []any:
		data, err := marshalValue(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}

type summaryEntry struct {
	key    string
	record Record
	at     time.Time
	dated  bool
}

func sortedByRecency(records map[string]Record) []summaryEntry {
	entries := make([]summaryEntry, 0, len(records))
	for k, r := range records {
		t, ok := r.Time()
		entries = append(entries, summaryEntry{key: k, record: r, at: t, dated: ok})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.dated != b.dated {
			return a.dated
		}
		if a.dated && !a.at.Equal(b.at) {
			return a.at.After(b.at)
		}
		return a.key < b.key
	})
	return entries
}
