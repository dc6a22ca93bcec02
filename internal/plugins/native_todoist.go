package plugins

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/dohr-michael/todomind/internal/todoist"
)

// TodoistManifest returns the plugin manifest for the Todoist tools.
func TodoistManifest() *PluginManifest {
	return nativeManifest("todoist", "todoist", "Manage tasks in Todoist",
		ToolSpec{
			Name:        "list_todoist_tasks",
			Description: "List active Todoist tasks, optionally filtered by period.",
			Parameters: map[string]ParamSpec{
				"filter": {
					Type:        "string",
					Description: "Optional period: 'today', 'tomorrow', 'week', 'overdue', 'next N' (days). Portuguese words (hoje, amanhã, semana, vencidas, próximos N) are accepted too. Omit to list every task.",
				},
			},
		},
		ToolSpec{
			Name:        "add_todoist_task",
			Description: "Create a Todoist task with an optional due date and priority.",
			Parameters: map[string]ParamSpec{
				"content":  {Type: "string", Description: "Task description", Required: true},
				"due_date": {Type: "string", Description: "Optional due date: 'today', 'tomorrow', 'next monday', YYYY-MM-DD, DD/MM/YYYY or DD/MM"},
				"priority": {Type: "integer", Description: "Priority from 1 (normal) to 4 (urgent)", Default: 1},
			},
		},
		ToolSpec{
			Name:        "complete_todoist_task",
			Description: "Mark a Todoist task as completed.",
			Parameters: map[string]ParamSpec{
				"task_id": {Type: "string", Description: "ID of the task, as shown in brackets by list_todoist_tasks", Required: true},
			},
			Dangerous: true,
		},
		ToolSpec{
			Name:        "list_completed_tasks",
			Description: "List recently completed Todoist tasks.",
			Parameters: map[string]ParamSpec{
				"limit": {Type: "integer", Description: "Maximum number of tasks to return (default 20)", Default: 20},
			},
		},
	)
}

// TodoistAPI is the subset of the Todoist client the tools use.
type TodoistAPI interface {
	ListTasks(ctx context.Context, filter string) ([]todoist.Task, error)
	AddTask(ctx context.Context, t todoist.NewTask) (*todoist.Task, error)
	CloseTask(ctx context.Context, id string) error
	ListCompleted(ctx context.Context, limit int) ([]todoist.CompletedTask, error)
}

type todoistTool struct {
	api  TodoistAPI
	spec *ToolSpec
	now  func() time.Time
}

func (t *todoistTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return toolSpecToToolInfo(t.spec), nil
}

// ListTasksTool lists active tasks.
type ListTasksTool struct{ todoistTool }

// AddTaskTool creates a task.
type AddTaskTool struct{ todoistTool }

// CompleteTaskTool closes a task.
type CompleteTaskTool struct{ todoistTool }

// ListCompletedTool lists completed tasks.
type ListCompletedTool struct{ todoistTool }

// NewTodoistTools builds the Todoist tools keyed by name.
func NewTodoistTools(api TodoistAPI) map[string]tool.InvokableTool {
	return newTodoistTools(api, time.Now)
}

func newTodoistTools(api TodoistAPI, now func() time.Time) map[string]tool.InvokableTool {
	m := TodoistManifest()
	base := func(i int) todoistTool { return todoistTool{api: api, spec: &m.Tools[i], now: now} }
	return map[string]tool.InvokableTool{
		"list_todoist_tasks":    &ListTasksTool{base(0)},
		"add_todoist_task":      &AddTaskTool{base(1)},
		"complete_todoist_task": &CompleteTaskTool{base(2)},
		"list_completed_tasks":  &ListCompletedTool{base(3)},
	}
}

type listTasksInput struct {
	Filter string `json:"filter"`
}

func (t *ListTasksTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var input listTasksInput
	if err := parseInput("list_todoist_tasks", argumentsInJSON, &input); err != nil {
		return "", err
	}

	now := t.now()
	tasks, err := t.api.ListTasks(ctx, todoist.FilterQuery(input.Filter, now))
	if err != nil {
		return "", fmt.Errorf("list_todoist_tasks: %w", err)
	}
	return todoist.FormatTasks(tasks, input.Filter, now), nil
}

type addTaskInput struct {
	Content  string `json:"content"`
	DueDate  string `json:"due_date"`
	Priority int    `json:"priority"`
}

func (t *AddTaskTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var input addTaskInput
	if err := parseInput("add_todoist_task", argumentsInJSON, &input); err != nil {
		return "", err
	}
	if strings.TrimSpace(input.Content) == "" {
		return "", fmt.Errorf("add_todoist_task: content is required")
	}
	if input.Priority < 1 || input.Priority > 4 {
		input.Priority = 1
	}

	nt := todoist.NewTask{Content: input.Content, Priority: input.Priority}
	if input.DueDate != "" {
		nt.DueDate = todoist.ParseDueDate(input.DueDate, t.now())
		if nt.DueDate == "" {
			// Unparsed input goes to Todoist's natural-language parser.
			nt.DueString = input.DueDate
		}
	}

	task, err := t.api.AddTask(ctx, nt)
	if err != nil {
		return "", fmt.Errorf("add_todoist_task: %w", err)
	}
	return todoist.FormatAdded(task), nil
}

type completeTaskInput struct {
	TaskID string `json:"task_id"`
}

func (t *CompleteTaskTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var input completeTaskInput
	if err := parseInput("complete_todoist_task", argumentsInJSON, &input); err != nil {
		return "", err
	}
	if err := t.api.CloseTask(ctx, input.TaskID); err != nil {
		return "", fmt.Errorf("complete_todoist_task: %w", err)
	}
	return fmt.Sprintf("✅ Task %s marked as completed!", input.TaskID), nil
}

type listCompletedInput struct {
	Limit int `json:"limit"`
}

func (t *ListCompletedTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var input listCompletedInput
	if err := parseInput("list_completed_tasks", argumentsInJSON, &input); err != nil {
		return "", err
	}
	items, err := t.api.ListCompleted(ctx, input.Limit)
	if err != nil {
		return "", fmt.Errorf("list_completed_tasks: %w", err)
	}
	return todoist.FormatCompleted(items, t.now()), nil
}

var (
	_ tool.InvokableTool = (*ListTasksTool)(nil)
	_ tool.InvokableTool = (*AddTaskTool)(nil)
	_ tool.InvokableTool = (*CompleteTaskTool)(nil)
	_ tool.InvokableTool = (*ListCompletedTool)(nil)
)
