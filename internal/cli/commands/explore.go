package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/simtrace/internal/trace"
	"github.com/leapstack-labs/simtrace/internal/tui"
)

// ExploreOptions holds options for the explore command.
type ExploreOptions struct {
	Select string
}

// NewExploreCommand creates the explore command.
func NewExploreCommand() *cobra.Command {
	opts := &ExploreOptions{}

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore the trace graph in the terminal",
		Long: `Open an interactive terminal view of the dataset.

Move between nodes with j/k, press enter to trace the node under the cursor,
move it with H/J/K/L and press r to restore the default layout.`,
		Example: `  # Explore the built-in dataset
  simtrace explore

  # Start with a node selected
  simtrace explore --select param-motor-power`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExplore(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Select, "select", "", "Node to select on start")
	_ = cmd.RegisterFlagCompletionFunc("select", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nodeCompletions(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runExplore(cmd *cobra.Command, opts *ExploreOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	view, err := newExploreView(cmdCtx, opts)
	if err != nil {
		return err
	}

	m := tui.New(cmdCtx.Dataset.Name, view, cmdCtx.Renderer.Styles())
	return tui.Run(cmd.Context(), m)
}

func newExploreView(cmdCtx *CommandContext, opts *ExploreOptions) (*trace.View, error) {
	view := trace.NewView(cmdCtx.Dataset.Graph, cmdCtx.Dataset.Layout)
	if opts.Select != "" {
		if err := view.Click(opts.Select); err != nil {
			return nil, fmt.Errorf("node not found: %s", opts.Select)
		}
	}
	return view, nil
}
