// Package config provides shared configuration defaults and config file
// discovery for simtrace. It is decoupled from CLI concerns so the UI server
// and tests can use the same defaults.
package config

// Default configuration values.
const (
	DefaultDataset   = "builtin"
	DefaultPort      = 8765
	DefaultLogLevel  = "info"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultUIWatch   = true
	DefaultAutoOpen  = true
	DefaultGridStep  = 10.0
	EnvPrefix        = "SIMTRACE_"
	SessionSecretEnv = EnvPrefix + "SESSION_SECRET"
)

// UIDefaults holds the default UI settings as a flat key map for koanf.
func UIDefaults() map[string]interface{} {
	return map[string]interface{}{
		"ui.port":      DefaultPort,
		"ui.auto_open": DefaultAutoOpen,
		"ui.watch":     DefaultUIWatch,
	}
}
