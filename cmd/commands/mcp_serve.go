package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/todomind/internal/mcp"
	"github.com/dohr-michael/todomind/internal/plugins"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewMCPServeCommand returns the mcp-serve subcommand.
func NewMCPServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp-serve",
		Usage: "Expose todomind tools as an MCP server (stdio)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "Memory user the tools act for (default: memory.default_user)"},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "filter",
				UsageText: "Comma-separated tool, plugin or category names to expose (empty = all)",
			},
		},
		Action: runMCPServe,
	}
}

func runMCPServe(ctx context.Context, cmd *cli.Command) error {
	// stdout carries the MCP stdio transport
	level := slog.LevelWarn
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mem, err := openMemory(cfg)
	if err != nil {
		return err
	}

	registry, err := plugins.SetupToolRegistry(ctx, cfg, toolDeps(ctx, cfg, mem))
	if err != nil {
		return err
	}

	user := cmd.String("user")
	if user == "" {
		user = cfg.Memory.DefaultUser
	}
	filter := cmd.StringArg("filter")

	slog.Debug("starting MCP server", "filter", filter, "user", user, "tools", len(mcp.ExposedTools(registry, filter)))

	server := mcp.NewMCPServer(registry, filter, mcp.WithUser(user))
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}
