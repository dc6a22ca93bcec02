package agent

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profile selects the persona and the tool categories of an assistant.
type Profile struct {
	Name        string
	Description string
	Persona     string
	Categories  []string // plugin categories whose tools the agent may call
}

var profiles = map[string]Profile{
	"todoist": {
		Name:        "todoist",
		Description: "Todoist task manager with persistent memory",
		Categories:  []string{"todoist", "memory"},
		Persona: `You are an assistant specialized in managing tasks in Todoist, with persistent memory.

You can:
- List tasks (all, today, tomorrow, this week, overdue, next N days)
- Add tasks with due dates and priorities
- Complete tasks and show recently completed ones
- Remember the user's preferences and information, recall them, list them, and clear them when asked

When the user shares something worth keeping (their name, how they like to organize tasks, preferred working hours, the kind of projects they work on, goals, other productivity tools they use), store it with remember.
Use memory to personalize your answers. Be proactive in suggesting actions based on what you know about the user.
Always be clear and organized in your answers.`,
	},
	"researcher": {
		Name:        "researcher",
		Description: "Web researcher focused on productivity and task organization",
		Categories:  []string{"web"},
		Persona: `You are a research expert in productivity and task organization.
Your goal is to help users manage their work efficiently.

- Search the web for current, verifiable information and fetch pages when a snippet is not enough.
- Cite the URLs you relied on.
- Be clear and objective in your answers.`,
	},
	"knowledge": {
		Name:        "knowledge",
		Description: "Answers questions from the local knowledge base",
		Categories:  []string{"knowledge", "memory"},
		Persona: `You are a specialist who answers from the local knowledge base.

ALWAYS search the knowledge base before answering.
Be technical and precise, and name the source document of every passage you rely on.
If the knowledge base has nothing relevant, say so instead of guessing.`,
	},
}

// LookupProfile returns the profile registered under name.
func LookupProfile(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(ProfileNames(), ", "))
	}
	return p, nil
}

// ProfileNames lists the registered profiles, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Instructions builds the system instruction of one turn: the profile persona,
// the user's memory summary and the current date.
func Instructions(p Profile, memorySummary string, now time.Time) string {
	var b strings.Builder
	b.WriteString(p.Persona)

	if s := strings.TrimSpace(memorySummary); s != "" {
		b.WriteString("\n\n## What you know about the user\n\n")
		b.WriteString(s)
	}

	b.WriteString("\n\n## Current date\n\n")
	b.WriteString(now.Format("Monday, 2006-01-02 15:04 MST"))
	return b.String()
}
