package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	sharedcfg "github.com/leapstack-labs/simtrace/internal/config"
)

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// inferProjectRoot determines the project root.
// Priority:
//  1. Directory of an explicit --config file
//  2. Search upward from CWD for simtrace.yaml
//  3. Current working directory
func inferProjectRoot(cfgFile string) string {
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			return filepath.Dir(abs)
		}
	}

	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		return "."
	}
	if root := sharedcfg.FindProjectRoot(cwd, maxUpwardSearchLevels); root != "" {
		return root
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty, the built-in dataset name, or
// already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == sharedcfg.DefaultDataset || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// defaultValues holds every config key with its default.
func defaultValues() map[string]interface{} {
	defaults := map[string]interface{}{
		"dataset":           DefaultDataset,
		"verbose":           false,
		"output":            DefaultOutput,
		"log_level":         DefaultLogLevel,
		"ui.session_secret": "",
	}
	for key, v := range sharedcfg.UIDefaults() {
		defaults[key] = v
	}
	return defaults
}

// Keys returns every configuration key, sorted.
func Keys() []string {
	return slices.Sorted(maps.Keys(defaultValues()))
}

// EnvVar returns the environment variable that sets key.
func EnvVar(key string) string {
	return sharedcfg.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// envKey maps SIMTRACE_LOG_LEVEL to log_level and SIMTRACE_UI_PORT to ui.port.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, sharedcfg.EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "ui_"); ok {
		return "ui." + rest
	}
	return key
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	projectRoot := inferProjectRoot(cfgFile)

	// A dataset given as a flag is relative to CWD, not the project root.
	var flagDataset string
	if flags != nil && flags.Changed("dataset") {
		if v, _ := flags.GetString("dataset"); v != "" && v != sharedcfg.DefaultDataset {
			flagDataset, _ = filepath.Abs(v)
		}
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	if cfgFile == "" {
		cfgFile = sharedcfg.FindConfigFile(projectRoot)
	}
	configFileUsed = cfgFile
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (SIMTRACE_ prefix)
	if err := k.Load(env.Provider(sharedcfg.EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve the dataset path
	cfg.ProjectRoot = projectRoot
	if flagDataset != "" {
		cfg.Dataset = flagDataset
	} else {
		cfg.Dataset = resolvePathRelativeTo(cfg.Dataset, projectRoot)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	currentConfig = &cfg
	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the most recently loaded configuration, or nil.
func GetCurrentConfig() *Config {
	return currentConfig
}
