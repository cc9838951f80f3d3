package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/simtrace/internal/cli"
	"github.com/leapstack-labs/simtrace/internal/cli/commands"
	"github.com/leapstack-labs/simtrace/internal/cli/config"
	"github.com/leapstack-labs/simtrace/internal/cli/output"
	sharedcfg "github.com/leapstack-labs/simtrace/internal/config"
	"github.com/leapstack-labs/simtrace/internal/dataset"
	"github.com/leapstack-labs/simtrace/internal/trace"
)

// nodePages are the commands that take a node id and list the built-in ids.
var nodePages = map[string]bool{"trace": true, "explore": true}

// cliDocs holds what the CLI reference is generated from.
type cliDocs struct {
	root  *cobra.Command
	nodes []trace.Node
}

// generateCLIDocs writes index.md plus one page per command into outDir.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	builtin, err := dataset.Builtin().Compile()
	if err != nil {
		return fmt.Errorf("failed to compile built-in dataset: %w", err)
	}
	d := &cliDocs{root: cli.NewRootCmd(), nodes: builtin.Graph.Nodes()}

	pages := map[string][]byte{"index": d.index()}
	for _, cmd := range documented(d.root) {
		pages[cmd.Name()] = d.commandPage(cmd)
	}
	for name, content := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name+".md"), content, 0600); err != nil {
			return fmt.Errorf("failed to write %s.md: %w", name, err)
		}
		log.Printf("  Generated %s.md", name)
	}
	return nil
}

// documented returns the visible commands below root.
func documented(root *cobra.Command) []*cobra.Command {
	var cmds []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "__complete" {
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func (d *cliDocs) index() []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for simtrace")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("simtrace traces KPIs, design parameters and simulation models through their dependency graph, from the command line, a terminal explorer or a web UI.")

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/simtrace/cmd/simtrace@latest")

	w.Header(2, "Quick Start")
	w.CodeBlock("bash", strings.Join([]string{
		"# List the built-in graph level by level",
		"simtrace graph",
		"",
		"# Everything the motor power parameter depends on and drives",
		"simtrace trace param-motor-power",
		"",
		"# Explore interactively, or open the web view",
		"simtrace explore",
		"simtrace ui",
	}, "\n"))

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range documented(d.root) {
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Paragraph("These flags are available for all commands:")
	writeFlagsTable(w, d.root.PersistentFlags())

	w.Header(2, "Environment Variables")
	writeEnvTable(w)
	w.Paragraph("Command-line flags take precedence over environment variables, which take precedence over `" + sharedcfg.ConfigFileName + "`.")

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Error, including an unknown node or an invalid dataset (details on stderr)"},
	})

	return w.Bytes()
}

func (d *cliDocs) commandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	w.CodeBlock("bash", usageLine(cmd))

	if len(cmd.Aliases) > 0 {
		w.Header(2, "Aliases")
		aliases := make([]string, 0, len(cmd.Aliases))
		for _, alias := range cmd.Aliases {
			aliases = append(aliases, InlineCode(alias))
		}
		w.BulletList(aliases)
	}

	if cmd.HasSubCommands() {
		w.Header(2, "Subcommands")
		var rows [][]string
		for _, sub := range cmd.Commands() {
			if !sub.Hidden {
				rows = append(rows, []string{InlineCode(sub.Name()), cleanDescription(sub.Short)})
			}
		}
		w.Table([]string{"Subcommand", "Description"}, rows)
	}

	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags())
	}
	if cmd.HasInheritedFlags() {
		w.Header(2, "Global Options")
		writeFlagsTable(w, cmd.InheritedFlags())
	}

	if cmd.Annotations[commands.RenderedAnnotation] != "" {
		w.Header(2, "Output Formats")
		w.Paragraph("Select with `--output`/`-o` or the `output` config key.")
		var rows [][]string
		for _, m := range output.Modes() {
			rows = append(rows, []string{InlineCode(string(m)), m.Describe()})
		}
		w.Table([]string{"Format", "Description"}, rows)
	}

	if nodePages[cmd.Name()] {
		w.Header(2, "Built-in Nodes")
		w.Paragraph("Node ids of the built-in dataset. Shell completion offers the ids of the configured dataset.")
		rows := make([][]string, 0, len(d.nodes))
		for _, n := range d.nodes {
			rows = append(rows, []string{InlineCode(n.ID), n.Category.Title(), n.Label()})
		}
		w.Table([]string{"ID", "Category", "Label"}, rows)
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", cleanExample(cmd.Example))
	}

	return w.Bytes()
}

func usageLine(cmd *cobra.Command) string {
	if cmd.HasSubCommands() {
		return fmt.Sprintf("simtrace %s <subcommand> [options]", cmd.Name())
	}
	line := cmd.UseLine()
	if !strings.HasPrefix(line, "simtrace") {
		line = "simtrace " + line
	}
	return line
}

// writeEnvTable lists one variable per config key, as the loader maps them.
func writeEnvTable(w *MarkdownWriter) {
	described := make(map[string]string, len(getConfigSchema()))
	for _, f := range getConfigSchema() {
		described[f.Name] = f.Description
	}

	var rows [][]string
	for _, key := range config.Keys() {
		rows = append(rows, []string{InlineCode(config.EnvVar(key)), InlineCode(key), described[key]})
	}
	rows = append(rows, []string{InlineCode(sharedcfg.SessionSecretEnv), "-", "Session secret used when `ui.session_secret` is unset"})
	w.Table([]string{"Variable", "Config key", "Description"}, rows)
}

func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		short := ""
		if f.Shorthand != "" {
			short = "-" + f.Shorthand
		}
		rows = append(rows, []string{InlineCode("--" + f.Name), short, flagDefault(f), cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Short", "Default", "Description"}, rows)
}

// flagDefault quotes non-empty string defaults as code.
func flagDefault(f *pflag.Flag) string {
	if f.DefValue != "" && f.Value.Type() == "string" {
		return InlineCode(f.DefValue)
	}
	return f.DefValue
}

// cleanExample strips the indentation shared by every non-blank line.
func cleanExample(example string) string {
	lines := strings.Split(example, "\n")

	indent := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		if n := len(line) - len(trimmed); indent < 0 || n < indent {
			indent = n
		}
	}

	for i, line := range lines {
		if len(line) >= indent && indent > 0 {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
