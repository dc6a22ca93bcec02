package todoist

import (
	"testing"
	"time"
)

// Wednesday.
var refDay = time.Date(2026, 3, 11, 10, 30, 0, 0, time.UTC)

func TestFilterQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"today", "due today"},
		{"Hoje", "due today"},
		{"amanhã", "due tomorrow"},
		{"amanha", "due tomorrow"},
		{"tomorrow", "due tomorrow"},
		{"semana", "due before: 2026-03-18"},
		{"this week", "due before: 2026-03-18"},
		{"vencidas", "overdue"},
		{"atrasadas", "overdue"},
		{"overdue", "overdue"},
		{"próximos 3 dias", "due before: 2026-03-14"},
		{"next 30 days", "due before: 2026-04-10"},
		{"next", ""},
		{"whatever", ""},
	}
	for _, tt := range tests {
		if got := FilterQuery(tt.in, refDay); got != tt.want {
			t.Errorf("FilterQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"today", "2026-03-11"},
		{"amanhã", "2026-03-12"},
		{"next friday", "2026-03-13"},
		{"próxima segunda", "2026-03-16"},
		{"next wednesday", "2026-03-18"},
		{"próxima terça-feira", "2026-03-17"},
		{"proxima sabado", "2026-03-14"},
		{"next domingo", "2026-03-15"},
		{"next month", ""},
		{"2026-04-01", "2026-04-01"},
		{"25/12/2026", "2026-12-25"},
		{"25-12-2027", "2027-12-25"},
		{"05/04", "2026-04-05"},
		{"5-4", "2026-04-05"},
		{"29/02", ""},
		{"31/13/2026", ""},
		{"someday", ""},
	}
	for _, tt := range tests {
		if got := ParseDueDate(tt.in, refDay); got != tt.want {
			t.Errorf("ParseDueDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
