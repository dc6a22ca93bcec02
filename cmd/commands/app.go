package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/todomind/internal/agent"
	"github.com/dohr-michael/todomind/internal/config"
	"github.com/dohr-michael/todomind/internal/history"
	"github.com/dohr-michael/todomind/internal/knowledge"
	"github.com/dohr-michael/todomind/internal/memory"
	"github.com/dohr-michael/todomind/internal/models"
	"github.com/dohr-michael/todomind/internal/plugins"
	"github.com/dohr-michael/todomind/internal/todoist"
)

// loadConfig reads the --config file. A missing file yields the defaults.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	path := cmd.String("config")
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config not found, using defaults", "path", path)
		return config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func openMemory(cfg *config.Config) (*memory.Store, error) {
	store, err := memory.NewStore(cfg.Memory.Dir)
	if err != nil {
		return nil, fmt.Errorf("open memory: %w", err)
	}
	return store, nil
}

// newTodoist returns nil when no API key is configured.
func newTodoist(cfg *config.Config) *todoist.Client {
	if !cfg.Todoist.Enabled() {
		return nil
	}
	return todoist.NewClient(cfg.Todoist.APIKey, todoist.Options{
		BaseURL: cfg.Todoist.BaseURL,
		SyncURL: cfg.Todoist.SyncURL,
		Timeout: cfg.Todoist.Timeout.Duration(),
	})
}

func requireTodoist(cfg *config.Config) (*todoist.Client, error) {
	c := newTodoist(cfg)
	if c == nil {
		return nil, errors.New("todoist: no API key (set TODOIST_API_KEY or todoist.api_key)")
	}
	return c, nil
}

func openKnowledge(ctx context.Context, cfg *config.Config) (*knowledge.Base, error) {
	emb, err := knowledge.NewEmbedder(ctx, cfg.Knowledge.Embedding)
	if err != nil {
		return nil, fmt.Errorf("knowledge embedder: %w", err)
	}
	return knowledge.Open(ctx, cfg.Knowledge.Dir, emb,
		knowledge.WithChunking(cfg.Knowledge.ChunkSize, cfg.Knowledge.ChunkOverlap))
}

// toolDeps collects the optional tool backends. A missing Todoist key or an
// unusable knowledge base leaves the matching tools out.
func toolDeps(ctx context.Context, cfg *config.Config, mem *memory.Store) plugins.Deps {
	deps := plugins.Deps{Memory: mem}
	if c := newTodoist(cfg); c != nil {
		deps.Todoist = c
	}
	if kb, err := openKnowledge(ctx, cfg); err != nil {
		slog.Debug("knowledge base unavailable", "error", err)
	} else {
		deps.Knowledge = kb
	}
	return deps
}

// app holds the services shared by ask, chat and serve.
type app struct {
	cfg       *config.Config
	memory    *memory.Store
	history   *history.Store
	tools     *plugins.ToolRegistry
	assistant *agent.Assistant
}

type appOptions struct {
	profile  string
	provider string
}

func newApp(ctx context.Context, cmd *cli.Command, opts appOptions) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	profileName := opts.profile
	if profileName == "" {
		profileName = cfg.Agent.Profile
	}
	profile, err := agent.LookupProfile(profileName)
	if err != nil {
		return nil, err
	}

	mem, err := openMemory(cfg)
	if err != nil {
		return nil, err
	}

	tools, err := plugins.SetupToolRegistry(ctx, cfg, toolDeps(ctx, cfg, mem))
	if err != nil {
		return nil, err
	}

	registry := models.NewRegistry(cfg.Models)
	provider := opts.provider
	if provider == "" {
		provider = registry.DefaultName()
	}
	chatModel, err := registry.Get(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("init model: %w", err)
	}

	hist, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, err
	}

	asst, err := agent.New(agent.Config{
		Model:             chatModel,
		Tools:             tools,
		Memory:            mem,
		History:           hist,
		Profile:           profile,
		ExtraInstructions: cfg.Agent.Instructions,
		DefaultUser:       cfg.Memory.DefaultUser,
		SummaryLimit:      cfg.Memory.SummaryLimit,
		HistoryRuns:       cfg.History.Runs,
		MaxIterations:     cfg.Agent.MaxIterations,
	})
	if err != nil {
		_ = hist.Close()
		return nil, err
	}

	slog.Debug("assistant ready", "profile", profile.Name, "provider", provider, "tools", asst.ToolNames())
	return &app{cfg: cfg, memory: mem, history: hist, tools: tools, assistant: asst}, nil
}

func (a *app) Close() error {
	return a.history.Close()
}

// agentFlags are shared by ask and chat.
func agentFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "profile", Aliases: []string{"p"}, Usage: "Assistant profile (todoist, researcher, knowledge)"},
		&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "Model provider name from config (default: models.default)"},
		&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "Memory user id"},
		&cli.BoolFlag{Name: "raw", Usage: "Print answers without markdown rendering"},
	}
}

func appOptionsFrom(cmd *cli.Command) appOptions {
	return appOptions{profile: cmd.String("profile"), provider: cmd.String("model")}
}
