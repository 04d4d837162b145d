package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapuast/internal/cli/config"
	"github.com/leapstack-labs/leapuast/internal/cli/output"
	sharedcfg "github.com/leapstack-labs/leapuast/internal/config"
	"github.com/leapstack-labs/leapuast/pkg/frontend/kotlin"
	"github.com/leapstack-labs/leapuast/pkg/semantic"
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Parser   *kotlin.Parser
	Engine   *semantic.Engine
}

// NewCommandContext builds the dependencies shared by commands from the
// loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
		Parser:   kotlin.NewParser(kotlin.WithMaxFileSize(cfg.MaxFileSize), kotlin.WithLogger(logger)),
		Engine:   semantic.NewEngine(semantic.WithLogger(logger)),
	}
}

// ToolContext returns a tool context bound to the command's engine.
func (c *CommandContext) ToolContext() *uast.ToolContext {
	return uast.NewToolContext(c.Engine, c.Cfg.Depth(), c.Logger)
}

// withFreshEngine returns a copy of c with an empty semantic engine.
func (c *CommandContext) withFreshEngine() *CommandContext {
	cp := *c
	cp.Engine = semantic.NewEngine(semantic.WithLogger(c.Logger))
	return &cp
}

// RendererFor returns the command renderer, or one for format when a
// per-command --format flag was given.
func (c *CommandContext) RendererFor(cmd *cobra.Command, format string) *output.Renderer {
	if format == "" {
		return c.Renderer
	}
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
}

// getConfig returns the current configuration, or defaults when commands
// run without the root command (as in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		AnalysisDepth: config.DefaultAnalysisDepth,
		OutputFormat:  config.DefaultOutput,
		Include:       sharedcfg.DefaultInclude(),
		Exclude:       sharedcfg.DefaultExclude(),
		MaxFileSize:   config.DefaultMaxFileSize,
		Workers:       config.DefaultWorkers,
		Snapshot:      &config.SnapshotConfig{Path: config.DefaultSnapshotPath},
	}
}
