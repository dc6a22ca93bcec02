package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/todomind/internal/gateway"
)

// NewServeCommand returns the serve subcommand.
func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP gateway (chat page and JSON API)",
		Flags: append(agentFlags(),
			&cli.StringFlag{Name: "host", Usage: "Host to listen on"},
			&cli.IntFlag{Name: "port", Usage: "Port to listen on"},
		),
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx, cmd, appOptionsFrom(cmd))
	if err != nil {
		return err
	}
	defer a.Close()

	// CLI flags override config
	host, port := a.cfg.Gateway.Host, a.cfg.Gateway.Port
	if cmd.IsSet("host") {
		host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		port = cmd.Int("port")
	}

	server := gateway.NewServer(gateway.Deps{
		Assistant:    a.assistant,
		Memory:       a.memory,
		History:      a.history,
		DefaultUser:  a.cfg.Memory.DefaultUser,
		SummaryLimit: a.cfg.Memory.SummaryLimit,
	}, host, port)

	slog.Info("tools loaded", "profile", a.assistant.Profile().Name, "count", len(a.assistant.ToolNames()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
