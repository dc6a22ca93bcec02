package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/dohr-michael/todomind/internal/memory"
)

// NewMemoryCommand returns the memory subcommand.
func NewMemoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "memory",
		Usage: "Inspect and edit the assistant's memory",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all memories of a user",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "table", Usage: "Output format: table, json or yaml"},
				},
				Action: runMemoryList,
			},
			{
				Name:      "recall",
				Usage:     "Print one remembered value",
				ArgsUsage: "<key>",
				Flags:     []cli.Flag{userFlag()},
				Action:    runMemoryRecall,
			},
			{
				Name:      "remember",
				Usage:     "Store a value (JSON literals are decoded, anything else is kept as text)",
				ArgsUsage: "<key> <value>",
				Flags:     []cli.Flag{userFlag()},
				Action:    runMemoryRemember,
			},
			{
				Name:   "clear",
				Usage:  "Delete every memory of a user",
				Flags:  []cli.Flag{userFlag()},
				Action: runMemoryClear,
			},
			{
				Name:  "summary",
				Usage: "Print the summary injected into the assistant prompt",
				Flags: []cli.Flag{
					userFlag(),
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of lines (default: memory.summary_limit)"},
				},
				Action: runMemorySummary,
			},
			{
				Name:   "users",
				Usage:  "List users with stored memories",
				Action: runMemoryUsers,
			},
		},
		DefaultCommand: "list",
	}
}

func userFlag() cli.Flag {
	return &cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "Memory user id (default: memory.default_user)"}
}

// memoryContext opens the store and resolves the --user flag.
func memoryContext(cmd *cli.Command) (*memory.Store, string, int, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, "", 0, err
	}
	store, err := openMemory(cfg)
	if err != nil {
		return nil, "", 0, err
	}
	user := cmd.String("user")
	if user == "" {
		user = cfg.Memory.DefaultUser
	}
	return store, user, cfg.Memory.SummaryLimit, nil
}

func runMemoryList(_ context.Context, cmd *cli.Command) error {
	store, user, _, err := memoryContext(cmd)
	if err != nil {
		return err
	}
	return writeMemories(os.Stdout, store.All(user), cmd.String("format"))
}

func writeMemories(w io.Writer, records map[string]memory.Record, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(records)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	case "", "table":
	default:
		return fmt.Errorf("unknown format %q (use table, json or yaml)", format)
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No memories stored.")
		return err
	}

	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE\tUPDATED\tSESSION")
	for _, k := range keys {
		r := records[k]
		updated := "-"
		if t, ok := r.Time(); ok {
			updated = t.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", k, memory.FormatValue(r.Value), updated, r.SessionID)
	}
	return tw.Flush()
}

func runMemoryRecall(_ context.Context, cmd *cli.Command) error {
	key := cmd.Args().First()
	if key == "" {
		return fmt.Errorf("usage: todomind memory recall <key>")
	}
	store, user, _, err := memoryContext(cmd)
	if err != nil {
		return err
	}
	v, ok := store.Recall(key, user)
	if !ok {
		return fmt.Errorf("no memory for %q", key)
	}
	fmt.Println(memory.FormatValue(v))
	return nil
}

func runMemoryRemember(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 2 {
		return fmt.Errorf("usage: todomind memory remember <key> <value>")
	}
	key := cmd.Args().First()
	value := parseMemoryValue(strings.Join(cmd.Args().Tail(), " "))

	store, user, _, err := memoryContext(cmd)
	if err != nil {
		return err
	}
	if err := store.Remember(key, value, user); err != nil {
		return fmt.Errorf("remember: %w", err)
	}
	fmt.Printf("Remembered %s: %s\n", key, memory.FormatValue(value))
	return nil
}

// parseMemoryValue decodes JSON numbers, booleans, strings, arrays and
// objects. Numbers keep their digits as json.Number. Anything else, and a
// bare null, stays text.
func parseMemoryValue(raw string) any {
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || v == nil || dec.More() {
		return raw
	}
	return v
}

func runMemoryClear(_ context.Context, cmd *cli.Command) error {
	store, user, _, err := memoryContext(cmd)
	if err != nil {
		return err
	}
	if err := store.Clear(user); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	fmt.Printf("Memories of %s cleared.\n", user)
	return nil
}

func runMemorySummary(_ context.Context, cmd *cli.Command) error {
	store, user, limit, err := memoryContext(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("limit") {
		limit = cmd.Int("limit")
	}
	fmt.Print(strings.TrimSuffix(store.ContextSummary(user, limit), "\n") + "\n")
	return nil
}

func runMemoryUsers(_ context.Context, cmd *cli.Command) error {
	store, _, _, err := memoryContext(cmd)
	if err != nil {
		return err
	}
	users, err := store.Users()
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("No users found.")
		return nil
	}
	for _, u := range users {
		fmt.Println(u)
	}
	return nil
}
