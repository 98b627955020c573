package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nextlevelbuilder/codeagent/internal/agent"
	"github.com/nextlevelbuilder/codeagent/internal/bus"
	"github.com/nextlevelbuilder/codeagent/internal/cache"
	"github.com/nextlevelbuilder/codeagent/internal/config"
	"github.com/nextlevelbuilder/codeagent/internal/contextbuilder"
	"github.com/nextlevelbuilder/codeagent/internal/executor"
	"github.com/nextlevelbuilder/codeagent/internal/planner"
	"github.com/nextlevelbuilder/codeagent/internal/providers"
	"github.com/nextlevelbuilder/codeagent/internal/store"
	"github.com/nextlevelbuilder/codeagent/internal/store/pg"
	"github.com/nextlevelbuilder/codeagent/internal/store/sqlite"
	"github.com/nextlevelbuilder/codeagent/internal/tools"
	"github.com/nextlevelbuilder/codeagent/internal/tracing"
)

// app bundles the wired collaborators a CLI command needs. Built fresh
// per command invocation; nothing here survives across commands.
type app struct {
	cfg      *config.Config
	store    store.Store
	registry *tools.Registry
	model    providers.ModelClient
	events   bus.EventPublisher
	driver   *agent.Driver
	shutdown tracing.Shutdown
}

// newApp loads config, opens the store, builds the tool registry, and
// wires a Driver. Callers must call app.Close() when done.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.Debug = true
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	shutdown, err := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		Protocol:    cfg.Telemetry.Protocol,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	modelClient := providers.NewLocalHTTPClient(cfg.Model.Endpoint, cfg.Model.Model, 60*time.Second, 2.0)
	cacheService := cache.NewService(config.ExpandHome(cfg.Agent.Workspace), st)
	registry := buildRegistry(cfg, modelClient, cacheService)
	events := bus.NewPublisher()

	builder := contextbuilder.NewBuilder(config.ExpandHome(cfg.Agent.Workspace), st, cfg.Context.MaxSummaries, true, cfg.Context.RelevanceThreshold)
	plan := planner.New(modelClient)
	prompter := newHuhPrompter()
	exec := executor.New(registry, prompter, cfg.Execution.AutoContinue, cfg.Execution.MaxParallelTools)
	driver := agent.New(builder, plan, exec, registry, modelClient, st, cfg.Debug, cfg.Telemetry.AuditModelCalls, events)

	if cfg.Cache.CleanupCron != "" {
		scheduler := cache.NewCleanupScheduler(cacheService, cfg.Cache.CleanupCron, cfg.Cache.KeepLastNCommits)
		go scheduler.Run(ctx)
	}

	return &app{
		cfg:      cfg,
		store:    st,
		registry: registry,
		model:    modelClient,
		events:   events,
		driver:   driver,
		shutdown: shutdown,
	}, nil
}

func (a *app) Close() {
	if a.shutdown != nil {
		_ = a.shutdown(context.Background())
	}
	if a.store != nil {
		_ = a.store.Close()
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Database.Driver == "postgres" {
		return pg.Open(ctx, cfg.Database.PostgresDSN)
	}
	return sqlite.Open(ctx, cfg.DBPath())
}

func buildRegistry(cfg *config.Config, modelClient providers.ModelClient, cacheService *cache.Service) *tools.Registry {
	workspace := config.ExpandHome(cfg.Agent.Workspace)
	restrict := cfg.Agent.RestrictToWorkspace

	reg := tools.NewRegistry()
	reg.Register(tools.NewReadFileTool(workspace, restrict))
	reg.Register(tools.NewReadFileCachedTool(cacheService))
	reg.Register(tools.NewCacheFileSummaryTool(cacheService))
	reg.Register(tools.NewWriteFileTool(workspace, restrict))
	reg.Register(tools.NewMoveFileTool(workspace, restrict))
	reg.Register(tools.NewCodeSearchTool(workspace, restrict))
	reg.Register(tools.NewBrainstormSearchTermsTool())
	reg.Register(tools.NewScaffoldProjectTool(workspace, restrict))
	reg.Register(tools.NewGitStatusTool(workspace))
	reg.Register(tools.NewGitDiffTool(workspace))
	reg.Register(tools.NewGitCommitHashTool(workspace))
	reg.Register(tools.NewSummarizeCodeTool(workspace, restrict, modelClient))
	reg.Register(tools.NewAnalyzeCodeTool(workspace, restrict, modelClient))

	for _, mcpCfg := range cfg.MCP {
		source, err := tools.NewMCPStdioSource(context.Background(), mcpCfg.Name, mcpCfg.Command, mcpCfg.Args)
		if err != nil {
			slog.Warn("cmd: failed to start mcp source", "name", mcpCfg.Name, "error", err)
			continue
		}
		remoteTools, err := source.Tools(context.Background())
		if err != nil {
			slog.Warn("cmd: failed to list mcp tools", "name", mcpCfg.Name, "error", err)
			continue
		}
		for _, rt := range remoteTools {
			reg.Register(rt)
		}
	}

	return reg
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
