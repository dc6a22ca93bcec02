package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/todomind/internal/config"
)

// NewConfigCommand returns the config subcommand.
func NewConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Create, inspect and format the config file",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a commented default config",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
				},
				Action: runConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective config with defaults applied and secrets masked",
				Action: runConfigShow,
			},
			{
				Name:  "fmt",
				Usage: "Reformat the config file, keeping comments",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "write", Aliases: []string{"w"}, Usage: "Write the result back instead of printing it"},
				},
				Action: runConfigFmt,
			},
		},
		DefaultCommand: "show",
	}
}

func runConfigInit(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.Template), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("Config written to %s\n", path)
	return nil
}

func runConfigShow(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(cfg.Redacted())
}

func runConfigFmt(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	out, err := formatJSONC(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if !cmd.Bool("write") {
		_, err = os.Stdout.Write(out)
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, info.Mode().Perm())
}

// formatJSONC normalizes indentation and spacing. Comments are preserved.
func formatJSONC(data []byte) ([]byte, error) {
	v, err := hujson.Parse(data)
	if err != nil {
		return nil, err
	}
	v.Format()
	return v.Pack(), nil
}
