package todoist

import (
	"fmt"
	"strings"
	"time"
)

const maxListedTasks = 20

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// FormatTasks renders active tasks for the assistant, at most 20 lines.
func FormatTasks(tasks []Task, filter string, now time.Time) string {
	if len(tasks) == 0 {
		if filter != "" {
			return fmt.Sprintf("No tasks found in Todoist with filter '%s'", filter)
		}
		return "No tasks found in Todoist"
	}

	var b strings.Builder
	if filter != "" {
		fmt.Fprintf(&b, "📋 Your Todoist tasks (%s):\n", filter)
	} else {
		b.WriteString("📋 Your Todoist tasks:\n")
	}
	for i, t := range tasks {
		if i == maxListedTasks {
			break
		}
		fmt.Fprintf(&b, "⬜ %s[%s] %s%s\n", priorityMark(t.Priority), t.ID, t.Content, dueTag(t.Due, now))
	}
	return b.String()
}

// FormatAdded renders the confirmation for a created task.
func FormatAdded(t *Task) string {
	due := ""
	if t.Due != nil && t.Due.Date != "" {
		due = " 📅 for " + t.Due.Date
	}
	return fmt.Sprintf("✅ Task added: %s%s (ID: %s)", t.Content, due, t.ID)
}

// FormatCompleted renders recently completed tasks.
func FormatCompleted(items []CompletedTask, now time.Time) string {
	if len(items) == 0 {
		return "No completed tasks found"
	}

	var b strings.Builder
	b.WriteString("✅ Recently completed tasks:\n")
	for _, it := range items {
		content := it.Content
		if content == "" {
			content = "Untitled"
		}
		fmt.Fprintf(&b, "✅ %s%s\n", content, completedTag(it.CompletedAt, now))
	}
	return b.String()
}

func priorityMark(p int) string {
	switch p {
	case 4:
		return "🔴 "
	case 3:
		return "🟡 "
	case 2:
		return "🔵 "
	default:
		return ""
	}
}

func dueTag(due *Due, now time.Time) string {
	if due == nil || due.Date == "" {
		return ""
	}

	var (
		day     time.Time
		timeStr string
	)
	if t, ok := parseDatetime(due.Datetime, now.Location()); ok {
		day, timeStr = t, t.Format("15:04")
	} else if t, err := time.ParseInLocation(dateLayout, due.Date, now.Location()); err == nil {
		day = t
	} else {
		return " 📅 [" + due.Date + "]"
	}

	at := ""
	if timeStr != "" {
		at = " at " + timeStr
	}

	switch diff := daysBetween(now, day); {
	case diff == 0:
		return " 📅 [TODAY" + at + "]"
	case diff == 1:
		return " 📅 [TOMORROW" + at + "]"
	case diff < 0:
		n := -diff
		unit := "days"
		if n == 1 {
			unit = "day"
		}
		return fmt.Sprintf(" ⚠️ [OVERDUE by %d %s]", n, unit)
	default:
		return " 📅 [" + day.Format("02/01") + at + "]"
	}
}

func completedTag(raw string, now time.Time) string {
	if raw == "" {
		return ""
	}
	t, ok := parseDatetime(raw, now.Location())
	if !ok {
		return " [Completed on " + raw + "]"
	}

	switch daysBetween(now, t) {
	case 0:
		return " [Completed TODAY at " + t.Format("15:04") + "]"
	case -1:
		return " [Completed YESTERDAY at " + t.Format("15:04") + "]"
	default:
		return " [Completed on " + t.Format("02/01 at 15:04") + "]"
	}
}

// parseDatetime parses a Todoist datetime. Zoned values are converted to loc,
// floating ones are read as loc wall-clock time.
func parseDatetime(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// daysBetween returns the number of calendar days from a to b.
func daysBetween(a, b time.Time) int {
	b = b.In(a.Location())
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
