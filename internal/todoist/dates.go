package todoist

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var digitsRe = regexp.MustCompile(`\d+`)

// FilterQuery translates a natural-language period ("today", "amanhã",
// "next 3", ...) into a Todoist filter query. Unknown input yields "", which
// lists every task.
func FilterQuery(input string, today time.Time) string {
	s := strings.ToLower(strings.TrimSpace(input))
	switch s {
	case "":
		return ""
	case "hoje", "today":
		return "due today"
	case "amanhã", "amanha", "tomorrow":
		return "due tomorrow"
	case "semana", "week", "esta semana", "this week":
		return "due before: " + today.AddDate(0, 0, 7).Format(dateLayout)
	case "vencidas", "overdue", "atrasadas":
		return "overdue"
	}

	if strings.Contains(s, "próximos") || strings.Contains(s, "proximos") || strings.Contains(s, "next") {
		if m := digitsRe.FindString(s); m != "" {
			if days, err := strconv.Atoi(m); err == nil {
				return "due before: " + today.AddDate(0, 0, days).Format(dateLayout)
			}
		}
	}
	return ""
}

var weekdayNames = []struct {
	name string
	day  time.Weekday
}{
	{"segunda", time.Monday}, {"monday", time.Monday},
	{"terça", time.Tuesday}, {"terca", time.Tuesday}, {"tuesday", time.Tuesday},
	{"quarta", time.Wednesday}, {"wednesday", time.Wednesday},
	{"quinta", time.Thursday}, {"thursday", time.Thursday},
	{"sexta", time.Friday}, {"friday", time.Friday},
	{"sábado", time.Saturday}, {"sabado", time.Saturday}, {"saturday", time.Saturday},
	{"domingo", time.Sunday}, {"sunday", time.Sunday},
}

// Layouts tried in order; the last two carry no year.
var dueLayouts = []string{"2006-1-2", "2/1/2006", "2-1-2006", "2/1", "2-1"}

// ParseDueDate turns a user supplied due date into YYYY-MM-DD. It accepts
// today/tomorrow words, "next <weekday>" in English or Portuguese and a few
// numeric day-first formats. Unrecognised input yields "".
func ParseDueDate(input string, today time.Time) string {
	s := strings.ToLower(strings.TrimSpace(input))
	switch s {
	case "":
		return ""
	case "hoje", "today":
		return today.Format(dateLayout)
	case "amanhã", "amanha", "tomorrow":
		return today.AddDate(0, 0, 1).Format(dateLayout)
	}

	if strings.Contains(s, "próxima") || strings.Contains(s, "proxima") || strings.Contains(s, "next") {
		for _, wd := range weekdayNames {
			if strings.Contains(s, wd.name) {
				ahead := int(wd.day - today.Weekday())
				if ahead <= 0 {
					ahead += 7
				}
				return today.AddDate(0, 0, ahead).Format(dateLayout)
			}
		}
		return ""
	}

	for i, layout := range dueLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if i >= 3 {
			d := time.Date(today.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			if d.Day() != t.Day() {
				// 29/02 outside a leap year
				return ""
			}
			t = d
		}
		return t.Format(dateLayout)
	}
	return ""
}
