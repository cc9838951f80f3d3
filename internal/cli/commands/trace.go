package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/simtrace/internal/cli/output"
	"github.com/leapstack-labs/simtrace/internal/trace"
	"github.com/spf13/cobra"
)

// TraceOptions holds options for the trace command.
type TraceOptions struct {
	Upstream   bool
	Downstream bool
	All        bool
}

// NewTraceCommand creates the trace command.
func NewTraceCommand() *cobra.Command {
	opts := &TraceOptions{}

	cmd := &cobra.Command{
		Use:   "trace <node>",
		Short: "Trace the dependencies of a node",
		Long: `Select a node and show everything it depends on and everything that
depends on it.

Upstream nodes reach the selected node by following edges forward;
downstream nodes are reached from it. Edges between two related nodes are
marked as related.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Trace the motor power parameter
  simtrace trace param-motor-power

  # Only show what the node depends on
  simtrace trace kpi-fold-time --upstream=false

  # Show the state of every node
  simtrace trace model-sim --all

  # Output as JSON
  simtrace trace kpi-jerk --output json`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return nodeCompletions(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, args[0], opts)
		},
	}

	cmd.Annotations = rendered()

	cmd.Flags().BoolVar(&opts.Upstream, "upstream", true, "Include upstream nodes and their edges")
	cmd.Flags().BoolVar(&opts.Downstream, "downstream", true, "Include downstream nodes and their edges")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Show the state of every node and edge")

	return cmd
}

func runTrace(cmd *cobra.Command, id string, opts *TraceOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	c := cmdCtx.Dataset
	view := trace.NewView(c.Graph, c.Layout)
	if err := view.Click(id); err != nil {
		if errors.Is(err, trace.ErrUnknownNode) {
			return fmt.Errorf("node not found: %s", id)
		}
		return err
	}
	frame := scope(view.Frame(), opts)

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(output.TraceOutput{
			Dataset:    c.Name,
			Selected:   frame.Selected,
			Upstream:   frame.Upstream,
			Downstream: frame.Downstream,
			Nodes:      frame.Nodes,
			Edges:      frame.Edges,
			Hint:       frame.Hint,
		})
	case output.ModeMarkdown:
		traceMarkdown(r, c.Graph, frame, opts)
	default:
		traceText(r, c.Graph, frame, opts)
	}
	return nil
}

// scope drops the closures the flags exclude. Highlighted nodes outside the
// kept closures and related edges leaving them are removed from the frame.
func scope(f trace.Frame, opts *TraceOptions) trace.Frame {
	if opts.Upstream && opts.Downstream {
		return f
	}
	if !opts.Upstream {
		f.Upstream = []string{f.Selected}
	}
	if !opts.Downstream {
		f.Downstream = []string{f.Selected}
	}

	kept := make(map[string]bool, len(f.Upstream)+len(f.Downstream))
	for _, id := range f.Upstream {
		kept[id] = true
	}
	for _, id := range f.Downstream {
		kept[id] = true
	}

	nodes := make([]trace.NodeView, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		if n.State == trace.NodeHighlighted && !kept[n.ID] {
			continue
		}
		nodes = append(nodes, n)
	}
	edges := make([]trace.EdgeView, 0, len(f.Edges))
	for _, e := range f.Edges {
		if e.State == trace.EdgeRelated && (!kept[e.Source] || !kept[e.Target]) {
			continue
		}
		edges = append(edges, e)
	}
	f.Nodes, f.Edges = nodes, edges
	return f
}

// others returns the ids of a closure without the selected node itself.
func others(ids []string, selected string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != selected {
			out = append(out, id)
		}
	}
	return out
}

func describe(g *trace.Graph, id string) string {
	n, ok := g.Node(id)
	if !ok {
		return id
	}
	return fmt.Sprintf("%s (%s, %s)", n.Label(), n.Category.Title(), id)
}

// traceText outputs a trace in styled text format.
func traceText(r *output.Renderer, g *trace.Graph, f trace.Frame, opts *TraceOptions) {
	styles := r.Styles()
	selected, _ := g.Node(f.Selected)

	r.Header(1, "Trace: "+selected.Label())
	r.Println(styles.Muted.Render(f.Hint))
	r.Println("")

	section := func(title string, ids []string) {
		r.Println(styles.Header2.Render(fmt.Sprintf("%s (%d):", title, len(ids))))
		for _, id := range ids {
			n, _ := g.Node(id)
			r.Printf("  %s %s\n", styles.Category(n.Category).Render(n.Label()), styles.ID.Render(id))
		}
		r.Println("")
	}
	if opts.Upstream {
		section("Upstream", others(f.Upstream, f.Selected))
	}
	if opts.Downstream {
		section("Downstream", others(f.Downstream, f.Selected))
	}

	var related []string
	for _, e := range f.Edges {
		if e.State == trace.EdgeRelated {
			related = append(related, styles.Related.Render(e.Source+" → "+e.Target))
		}
	}
	r.Println(styles.Header2.Render(fmt.Sprintf("Related edges (%d):", len(related))))
	for _, e := range related {
		r.Printf("  %s\n", e)
	}

	if opts.All {
		r.Println("")
		r.Table([]string{"NODE", "CATEGORY", "STATE"}, stateRows(f, func(n trace.NodeView) string {
			return styles.Node(n)
		}))
	}
}

// traceMarkdown outputs a trace in markdown format.
func traceMarkdown(r *output.Renderer, g *trace.Graph, f trace.Frame, opts *TraceOptions) {
	r.Println(output.FormatHeader(1, "Trace: "+f.Selected))
	r.Println("")
	r.Println(output.FormatKeyValue("Selected", describe(g, f.Selected)))
	r.Println(output.FormatKeyValue("Hint", f.Hint))
	r.Println("")

	section := func(title string, ids []string) {
		r.Println(output.FormatHeader(2, fmt.Sprintf("%s (%d)", title, len(ids))))
		items := make([]string, 0, len(ids))
		for _, id := range ids {
			items = append(items, describe(g, id))
		}
		if len(items) == 0 {
			r.Println("_none_")
		} else {
			r.Println(output.FormatList(items))
		}
		r.Println("")
	}
	if opts.Upstream {
		section("Upstream", others(f.Upstream, f.Selected))
	}
	if opts.Downstream {
		section("Downstream", others(f.Downstream, f.Selected))
	}

	var related []string
	for _, e := range f.Edges {
		if e.State == trace.EdgeRelated {
			related = append(related, output.FormatCode(e.ID))
		}
	}
	r.Println(output.FormatHeader(2, fmt.Sprintf("Related edges (%d)", len(related))))
	if len(related) > 0 {
		r.Println(strings.Join(related, ", "))
	}

	if opts.All {
		r.Println("")
		r.Println(output.FormatHeader(2, "All nodes"))
		r.Println("")
		r.Table([]string{"NODE", "CATEGORY", "STATE"}, stateRows(f, func(n trace.NodeView) string {
			return n.ID
		}))
	}
}

func stateRows(f trace.Frame, name func(trace.NodeView) string) [][]string {
	rows := make([][]string, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		rows = append(rows, []string{name(n), n.Category.Title(), string(n.State)})
	}
	return rows
}

// nodeCompletions lists node ids of the configured dataset for shell
// completion. Errors yield no completions.
func nodeCompletions() []string {
	c, err := loadDataset(getConfig().Dataset, discardLogger())
	if err != nil {
		return nil
	}
	ids := make([]string, 0, c.Graph.Len())
	for _, n := range c.Graph.Nodes() {
		ids = append(ids, n.ID+"\t"+n.Label())
	}
	return ids
}
