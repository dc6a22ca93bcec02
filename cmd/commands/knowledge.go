package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
)

// NewKnowledgeCommand returns the knowledge subcommand.
func NewKnowledgeCommand() *cli.Command {
	return &cli.Command{
		Name:  "knowledge",
		Usage: "Manage the local knowledge base searched by the assistant",
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Index text and markdown files (glob patterns, ** supported)",
				ArgsUsage: "<pattern...>",
				Action:    runKnowledgeIngest,
			},
			{
				Name:      "search",
				Usage:     "Search the knowledge base",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 5, Usage: "Maximum number of results"},
				},
				Action: runKnowledgeSearch,
			},
		},
	}
}

func runKnowledgeIngest(ctx context.Context, cmd *cli.Command) error {
	patterns := cmd.Args().Slice()
	if len(patterns) == 0 {
		return fmt.Errorf("usage: todomind knowledge ingest <pattern...>")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	kb, err := openKnowledge(ctx, cfg)
	if err != nil {
		return err
	}

	n, err := kb.Ingest(ctx, patterns)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	fmt.Printf("Indexed %d chunks (%d total).\n", n, kb.Count())
	return nil
}

func runKnowledgeSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("usage: todomind knowledge search <query>")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	kb, err := openKnowledge(ctx, cfg)
	if err != nil {
		return err
	}

	hits, err := kb.Search(ctx, query, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(hits) == 0 {
		fmt.Println("No matching documents found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tSOURCE\tEXCERPT")
	for _, h := range hits {
		fmt.Fprintf(w, "%.2f\t%s\t%s\n", h.Similarity, h.Source, excerpt(h.Content, 80))
	}
	return w.Flush()
}

// excerpt flattens whitespace and cuts s to at most n runes.
func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
