package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/simtrace/internal/cli/config"
	"github.com/leapstack-labs/simtrace/internal/cli/output"
	intconfig "github.com/leapstack-labs/simtrace/internal/config"
	"github.com/leapstack-labs/simtrace/internal/dataset"
	"github.com/spf13/cobra"
)

// RenderedAnnotation marks commands whose output follows --output.
const RenderedAnnotation = "simtrace/rendered"

// rendered is the annotation set carried by such commands.
func rendered() map[string]string {
	return map[string]string{RenderedAnnotation: "true"}
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Dataset  *dataset.Compiled
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with the compiled dataset and a
// renderer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cmdCtx := NewCommandContextWithoutDataset(cmd)

	compiled, err := loadDataset(cmdCtx.Cfg.Dataset, cmdCtx.Logger)
	if err != nil {
		return nil, err
	}
	cmdCtx.Dataset = compiled
	return cmdCtx, nil
}

// NewCommandContextWithoutDataset creates a CommandContext without loading a
// dataset. Useful for commands that report on loading themselves.
func NewCommandContextWithoutDataset(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	return &config.Config{
		Dataset:      getEnvOrDefault(intconfig.EnvPrefix+"DATASET", intconfig.DefaultDataset),
		Verbose:      os.Getenv(intconfig.EnvPrefix+"VERBOSE") == "true",
		OutputFormat: getEnvOrDefault(intconfig.EnvPrefix+"OUTPUT", intconfig.DefaultOutput),
		LogLevel:     getEnvOrDefault(intconfig.EnvPrefix+"LOG_LEVEL", intconfig.DefaultLogLevel),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadDataset reads and compiles a dataset, logging any warnings.
func loadDataset(path string, logger *slog.Logger) (*dataset.Compiled, error) {
	d, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}

	compiled, err := d.Compile()
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", d.Name, err)
	}

	logger.Debug("dataset loaded",
		"name", compiled.Name,
		"nodes", compiled.Graph.Len(),
		"edges", len(compiled.Graph.Edges()))
	for _, w := range compiled.Warnings {
		logger.Warn("dataset warning", "dataset", compiled.Name, "warning", w)
	}
	return compiled, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
