package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedcfg "github.com/leapstack-labs/simtrace/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, sharedcfg.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dataset", "", "dataset")
	flags.String("log-level", "", "log level")
	flags.StringP("output", "o", "", "output format")
	flags.BoolP("verbose", "v", false, "verbose")
	return flags
}

func TestKeysAndEnvVars(t *testing.T) {
	keys := Keys()
	assert.Equal(t, []string{
		"dataset", "log_level", "output",
		"ui.auto_open", "ui.port", "ui.session_secret", "ui.watch",
		"verbose",
	}, keys)

	assert.Equal(t, "SIMTRACE_UI_AUTO_OPEN", EnvVar("ui.auto_open"))
	for _, key := range keys {
		assert.Equal(t, key, envKey(EnvVar(key)), "env var for %q maps back to it", key)
	}
}

// TestConfig_Validate tests the Config.Validate method.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		errSubstr string
	}{
		{
			name: "valid config",
			cfg:  Config{Dataset: "builtin", OutputFormat: "auto", LogLevel: "info"},
		},
		{
			name:      "empty dataset",
			cfg:       Config{OutputFormat: "auto", LogLevel: "info"},
			errSubstr: "dataset is required",
		},
		{
			name:      "unknown output",
			cfg:       Config{Dataset: "builtin", OutputFormat: "yaml", LogLevel: "info"},
			errSubstr: `invalid output format "yaml"`,
		},
		{
			name:      "unknown log level",
			cfg:       Config{Dataset: "builtin", OutputFormat: "text", LogLevel: "loud"},
			errSubstr: `invalid log level "loud"`,
		},
		{
			name:      "port out of range",
			cfg:       Config{Dataset: "builtin", OutputFormat: "json", LogLevel: "debug", UI: &UIConfig{Port: 70000}},
			errSubstr: "ui.port 70000 is out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_ValidateDataset(t *testing.T) {
	cfg := &Config{Dataset: sharedcfg.DefaultDataset}
	assert.NoError(t, cfg.ValidateDataset())

	cfg.Dataset = filepath.Join(t.TempDir(), "missing.yaml")
	err := cfg.ValidateDataset()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset file does not exist")
}

func TestGetUIConfig(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, DefaultUIConfig(), cfg.GetUIConfig())

	cfg.UI = &UIConfig{AutoOpen: false}
	assert.Equal(t, sharedcfg.DefaultPort, cfg.GetUIConfig().Port, "zero port falls back to default")
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, sharedcfg.DefaultDataset, cfg.Dataset, "built-in dataset is never resolved as a path")
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.Verbose)
	require.NotNil(t, cfg.UI)
	assert.Equal(t, sharedcfg.DefaultPort, cfg.UI.Port)
	assert.True(t, cfg.UI.Watch)
	assert.Equal(t, filepath.Dir(path), cfg.ProjectRoot)
	assert.Equal(t, path, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())

	ResetConfig()
	assert.Nil(t, GetCurrentConfig())
}

func TestLoadConfig_FileResolvesDatasetAgainstProjectRoot(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, `dataset: graphs/wheel.yaml
output: json
ui:
  port: 9100
  auto_open: false
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(path), "graphs", "wheel.yaml"), cfg.Dataset)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, 9100, cfg.UI.Port)
	assert.False(t, cfg.UI.AutoOpen)
}

// TestLoadConfig_FlagPrecedence tests that flags override env vars and config file.
func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "log_level: warn\n")
	t.Setenv("SIMTRACE_LOG_LEVEL", "error")

	flags := newFlags()
	require.NoError(t, flags.Set("log-level", "debug"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel, "flag value should override config file and env var")
}

// TestLoadConfig_EnvPrecedenceOverFile tests that env vars override config file.
func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "log_level: warn\nui:\n  port: 9100\n")
	t.Setenv("SIMTRACE_LOG_LEVEL", "error")
	t.Setenv("SIMTRACE_UI_PORT", "9200")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.LogLevel, "env var should override config file")
	assert.Equal(t, 9200, cfg.UI.Port, "SIMTRACE_UI_ maps onto the ui section")
}

// TestLoadConfig_FlagNotSetUsesEnv tests that unset flags fall back to env vars.
func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "output: text\n")
	t.Setenv("SIMTRACE_OUTPUT", "markdown")

	cfg, err := LoadConfig(path, newFlags())
	require.NoError(t, err)

	assert.Equal(t, "markdown", cfg.OutputFormat, "env var should be used when flag is not set")
}

func TestLoadConfig_DatasetFlagIsRelativeToWorkingDir(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "dataset: from_file.yaml\n")

	flags := newFlags()
	require.NoError(t, flags.Set("dataset", "from_flag.yaml"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	want, err := filepath.Abs("from_flag.yaml")
	require.NoError(t, err)
	assert.Equal(t, want, cfg.Dataset)
}

func TestLoadConfig_Invalid(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "output: yaml\n")

	_, err := LoadConfig(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	ResetConfig()
	path = writeConfig(t, "dataset: [\n")
	_, err = LoadConfig(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &Config{LogLevel: "warn"})

	logger.Info("hidden")
	logger.Warn("shown", "node", "kpi-fold-time")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "node=kpi-fold-time")

	buf.Reset()
	verbose := NewLogger(&buf, &Config{LogLevel: "error", Verbose: true})
	verbose.Debug("details")
	assert.Contains(t, buf.String(), "details", "verbose forces debug level")

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.NotNil(t, GetLogger(context.Background()), "missing logger falls back to discard")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}
