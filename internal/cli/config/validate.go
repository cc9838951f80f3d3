package config

import (
	"fmt"
	"os"
	"strings"

	sharedcfg "github.com/leapstack-labs/simtrace/internal/config"
)

var validOutputs = []string{"auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dataset == "" {
		return fmt.Errorf("dataset is required (use %q for the built-in dataset)", sharedcfg.DefaultDataset)
	}

	if !contains(validOutputs, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (want one of %s)", c.OutputFormat, strings.Join(validOutputs, ", "))
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.UI != nil && (c.UI.Port < 0 || c.UI.Port > 65535) {
		return fmt.Errorf("ui.port %d is out of range", c.UI.Port)
	}

	return nil
}

// ValidateDataset checks that a dataset file exists. The built-in dataset
// always passes.
func (c *Config) ValidateDataset() error {
	if c.Dataset == sharedcfg.DefaultDataset {
		return nil
	}
	if _, err := os.Stat(c.Dataset); os.IsNotExist(err) {
		return fmt.Errorf("dataset file does not exist: %s\nHint: create it or use --dataset builtin", c.Dataset)
	}
	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
