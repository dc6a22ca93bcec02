package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/todomind/internal/plugins"
)

// NewTasksCommand returns the tasks subcommand. Each action runs the same
// Todoist tool the assistant calls, so output matches what the model sees.
func NewTasksCommand() *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "Manage Todoist tasks directly",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List active tasks",
				ArgsUsage: "[today|tomorrow|week|overdue|next N]",
				Action:    runTasksList,
			},
			{
				Name:      "add",
				Usage:     "Create a task",
				ArgsUsage: "<content>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "due", Aliases: []string{"d"}, Usage: "Due date (today, tomorrow, YYYY-MM-DD, DD/MM, ...)"},
					&cli.IntFlag{Name: "priority", Aliases: []string{"p"}, Value: 1, Usage: "Priority 1 (normal) to 4 (urgent)"},
				},
				Action: runTasksAdd,
			},
			{
				Name:      "complete",
				Usage:     "Mark a task as completed",
				ArgsUsage: "<task_id>",
				Action:    runTasksComplete,
			},
			{
				Name:  "completed",
				Usage: "List recently completed tasks",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Maximum number of tasks"},
				},
				Action: runTasksCompleted,
			},
		},
		DefaultCommand: "list",
	}
}

func runTodoistTool(ctx context.Context, cmd *cli.Command, name string, args map[string]any) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := requireTodoist(cfg)
	if err != nil {
		return err
	}

	t := plugins.NewTodoistTools(client)[name]
	payload, err := json.Marshal(args)
	if err != nil {
		return err
	}
	out, err := t.InvokableRun(ctx, string(payload))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func runTasksList(ctx context.Context, cmd *cli.Command) error {
	return runTodoistTool(ctx, cmd, "list_todoist_tasks", map[string]any{
		"filter": strings.Join(cmd.Args().Slice(), " "),
	})
}

func runTasksAdd(ctx context.Context, cmd *cli.Command) error {
	content := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("usage: todomind tasks add <content> [--due DATE] [--priority N]")
	}
	return runTodoistTool(ctx, cmd, "add_todoist_task", map[string]any{
		"content":  content,
		"due_date": cmd.String("due"),
		"priority": cmd.Int("priority"),
	})
}

func runTasksComplete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: todomind tasks complete <task_id>")
	}
	return runTodoistTool(ctx, cmd, "complete_todoist_task", map[string]any{"task_id": id})
}

func runTasksCompleted(ctx context.Context, cmd *cli.Command) error {
	return runTodoistTool(ctx, cmd, "list_completed_tasks", map[string]any{"limit": cmd.Int("limit")})
}
