package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/simtrace/internal/cli/config"
	intconfig "github.com/leapstack-labs/simtrace/internal/config"
	"github.com/leapstack-labs/simtrace/internal/ui"
	"github.com/leapstack-labs/simtrace/internal/ui/metrics"
)

// UIOptions holds options for the ui command.
type UIOptions struct {
	Port      int
	NoBrowser bool
	Watch     bool
}

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	opts := &UIOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the simtrace web UI",
		Long: `Start a local web server with the interactive trace panel.

The UI provides:
- The KPI, parameter and model graph with its default layout
- Click a node to highlight its upstream and downstream dependencies
- Drag nodes, reset the layout, close and reopen the panel
- Live reload when the dataset file changes
- Prometheus metrics on /metrics`,
		Example: `  # Start UI on default port
  simtrace ui

  # Start on custom port
  simtrace ui --port 3000

  # Serve a dataset file without auto-opening the browser
  simtrace ui --dataset wheel.yaml --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, fmt.Sprintf("Port to serve on (default: %d)", intconfig.DefaultPort))
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Reload the dataset when its file changes")

	return cmd
}

func runUI(cmd *cobra.Command, opts *UIOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg

	// Get UI config with defaults
	uiCfg := cfg.GetUIConfig()

	// CLI flags override config file
	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}

	autoOpen := uiCfg.AutoOpen
	if opts.NoBrowser {
		autoOpen = false
	}

	watch := uiCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	server := ui.NewServer(ui.Config{
		DatasetPath:   cfg.Dataset,
		Dataset:       cmdCtx.Dataset,
		Port:          port,
		Watch:         watch,
		SessionSecret: sessionSecret(uiCfg),
		Logger:        cmdCtx.Logger,
		Metrics:       metrics.NewRegistry(),
	})

	// Open browser if configured
	url := fmt.Sprintf("http://localhost:%d", port)
	if autoOpen {
		go openBrowser(url)
	}

	r := cmdCtx.Renderer
	r.Printf("Serving %s on %s\n", cmdCtx.Dataset.Name, url)
	r.Muted("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// sessionSecret returns the configured cookie secret, then the environment,
// then a fixed development secret.
func sessionSecret(uiCfg *config.UIConfig) string {
	if uiCfg.SessionSecret != "" {
		return uiCfg.SessionSecret
	}
	if secret := os.Getenv(intconfig.SessionSecretEnv); secret != "" {
		return secret
	}
	return "simtrace-dev-secret-change-in-production" //nolint:gosec
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
