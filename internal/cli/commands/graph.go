package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/simtrace/internal/cli/output"
	"github.com/leapstack-labs/simtrace/internal/dag"
	"github.com/leapstack-labs/simtrace/internal/dataset"
	"github.com/leapstack-labs/simtrace/internal/trace"
	"github.com/spf13/cobra"
)

// GraphQuerier provides read-only access to graph structure.
type GraphQuerier interface {
	Parents(string) []string
	Children(string) []string
	Roots() []string
	Leaves() []string
	NodeCount() int
	EdgeCount() int
}

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "graph",
		Aliases: []string{"dag"},
		Short:   "Show the traceability graph",
		Long: `Display the traceability graph grouped by dependency level.

Level 0 holds the nodes nothing points at, usually the KPIs. Each further
level holds nodes one step below their deepest parent. A cyclic graph has
no levels and is listed in authoring order instead.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Show the graph
  simtrace graph

  # Show a dataset file
  simtrace graph --dataset wheel.yaml

  # Output as JSON
  simtrace graph --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGraph(cmd)
		},
	}

	cmd.Annotations = rendered()
	return cmd
}

func runGraph(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	c := cmdCtx.Dataset
	r := cmdCtx.Renderer
	topology := dag.FromTrace(c.Graph)

	levels, err := topology.Levels()
	if err != nil {
		cmdCtx.Logger.Debug("graph has no levels", "error", err)
		levels = [][]string{make([]string, 0, c.Graph.Len())}
		for _, n := range c.Graph.Nodes() {
			levels[0] = append(levels[0], n.ID)
		}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return graphJSON(r, c, topology, levels)
	case output.ModeMarkdown:
		return graphMarkdown(r, c, topology, levels)
	default:
		return graphText(r, c, topology, levels)
	}
}

// graphText outputs the graph in styled text format.
func graphText(r *output.Renderer, c *dataset.Compiled, graph GraphQuerier, levels [][]string) error {
	styles := r.Styles()

	r.Header(1, "Traceability Graph: "+c.Name)

	for i, level := range levels {
		r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", i)))
		for _, id := range level {
			n, _ := c.Graph.Node(id)
			deps := graph.Parents(id)
			children := graph.Children(id)

			r.Printf("  %s %s\n", styles.Category(n.Category).Render(n.Label()), styles.ID.Render(id))
			if len(deps) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("depends on:"), strings.Join(deps, ", "))
			}
			if len(children) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("used by:"), strings.Join(children, ", "))
			}
		}
		r.Println("")
	}

	r.Printf("%s %s\n", styles.Muted.Render("entry points:"), strings.Join(graph.Roots(), ", "))
	r.Printf("%s %s\n", styles.Muted.Render("terminal nodes:"), strings.Join(graph.Leaves(), ", "))
	for _, w := range c.Warnings {
		r.Println(styles.Warning.Render("warning: " + w))
	}
	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d nodes, %d edges", graph.NodeCount(), graph.EdgeCount())))

	return nil
}

// graphMarkdown outputs the graph in markdown format.
func graphMarkdown(r *output.Renderer, c *dataset.Compiled, graph GraphQuerier, levels [][]string) error {
	r.Println(output.FormatHeader(1, "Traceability Graph: "+c.Name))
	r.Println("")

	for i, level := range levels {
		levelName := fmt.Sprintf("Level %d", i)
		if i == 0 {
			levelName = "Level 0 (Roots)"
		}
		r.Println(output.FormatHeader(2, levelName))

		for _, id := range level {
			n, _ := c.Graph.Node(id)
			deps := graph.Parents(id)
			children := graph.Children(id)

			r.Printf("- %s (%s, %s)\n", id, n.Label(), n.Category.Title())
			if len(deps) > 0 {
				r.Printf("  - depends on: %s\n", strings.Join(deps, ", "))
			}
			if len(children) > 0 {
				r.Printf("  - used by: %s\n", strings.Join(children, ", "))
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Nodes", fmt.Sprintf("%d", graph.NodeCount())))
	r.Println(output.FormatKeyValue("Total Edges", fmt.Sprintf("%d", graph.EdgeCount())))
	r.Println(output.FormatKeyValue("Entry Points", strings.Join(graph.Roots(), ", ")))
	r.Println(output.FormatKeyValue("Terminal Nodes", strings.Join(graph.Leaves(), ", ")))
	for _, w := range c.Warnings {
		r.Println(output.FormatKeyValue("Warning", w))
	}

	return nil
}

// graphJSON outputs the graph in JSON format.
func graphJSON(r *output.Renderer, c *dataset.Compiled, graph GraphQuerier, levels [][]string) error {
	graphOutput := output.GraphOutput{
		Dataset:    c.Name,
		Levels:     make([]output.GraphLevel, 0, len(levels)),
		TotalNodes: graph.NodeCount(),
		TotalEdges: graph.EdgeCount(),
		Roots:      nonNil(graph.Roots()),
		Leaves:     nonNil(graph.Leaves()),
		Warnings:   c.Warnings,
	}

	for i, level := range levels {
		graphLevel := output.GraphLevel{
			Level: i,
			Nodes: make([]output.GraphNode, 0, len(level)),
		}

		for _, id := range level {
			n, _ := c.Graph.Node(id)
			graphLevel.Nodes = append(graphLevel.Nodes, output.GraphNode{
				ID:        id,
				Category:  n.Category,
				Label:     n.Label(),
				DependsOn: nonNil(graph.Parents(id)),
				UsedBy:    nonNil(graph.Children(id)),
			})
		}

		graphOutput.Levels = append(graphOutput.Levels, graphLevel)
	}

	return r.JSON(graphOutput)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

var _ GraphQuerier = (*dag.Graph)(nil)

// categoryCounts counts nodes per category in display order.
func categoryCounts(g *trace.Graph) map[trace.Category]int {
	counts := make(map[trace.Category]int, len(trace.Categories()))
	for _, n := range g.Nodes() {
		counts[n.Category]++
	}
	return counts
}
