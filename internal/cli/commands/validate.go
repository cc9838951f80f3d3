package commands

import (
	"fmt"

	"github.com/leapstack-labs/simtrace/internal/cli/output"
	"github.com/leapstack-labs/simtrace/internal/trace"
	"github.com/spf13/cobra"
)

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	Strict bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate [dataset]",
		Short: "Check a dataset for errors",
		Long: `Load a dataset and report schema errors, dangling edges, cycles and
gaps in the layout table.

Schema errors and edges that name a missing node fail validation. Cycles
and layout gaps are warnings unless --strict is set.`,
		Example: `  # Validate the configured dataset
  simtrace validate

  # Validate a specific file and fail on warnings
  simtrace validate wheel.yaml --strict`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(cmd, path, opts)
		},
	}

	cmd.Annotations = rendered()

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Treat warnings as errors")

	return cmd
}

func runValidate(cmd *cobra.Command, path string, opts *ValidateOptions) error {
	cmdCtx := NewCommandContextWithoutDataset(cmd)
	r := cmdCtx.Renderer
	if path == "" {
		path = cmdCtx.Cfg.Dataset
	}

	result := output.ValidateOutput{Dataset: path, Warnings: []string{}}
	compiled, err := loadDataset(path, cmdCtx.Logger)
	if err != nil {
		result.Error = err.Error()
	} else {
		result.Valid = true
		result.Dataset = compiled.Name
		result.Nodes = compiled.Graph.Len()
		result.Edges = len(compiled.Graph.Edges())
		result.Warnings = append(result.Warnings, compiled.Warnings...)
		if opts.Strict && len(compiled.Warnings) > 0 {
			result.Valid = false
		}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(result); err != nil {
			return err
		}
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Validate: "+result.Dataset))
		r.Println("")
		r.Println(output.FormatKeyValue("Valid", fmt.Sprintf("%t", result.Valid)))
		if compiled != nil {
			r.Println(output.FormatKeyValue("Nodes", fmt.Sprintf("%d", result.Nodes)))
			r.Println(output.FormatKeyValue("Edges", fmt.Sprintf("%d", result.Edges)))
		}
		if result.Error != "" {
			r.Println(output.FormatKeyValue("Error", result.Error))
		}
		if len(result.Warnings) > 0 {
			r.Println("")
			r.Println(output.FormatHeader(2, "Warnings"))
			r.Println(output.FormatList(result.Warnings))
		}
	default:
		if result.Error != "" {
			r.Error(result.Error)
		}
		for _, w := range result.Warnings {
			r.Warning(w)
		}
		if compiled != nil {
			counts := categoryCounts(compiled.Graph)
			rows := make([][]string, 0, len(trace.Categories()))
			for _, c := range trace.Categories() {
				rows = append(rows, []string{c.Title(), fmt.Sprintf("%d", counts[c])})
			}
			r.Table([]string{"CATEGORY", "NODES"}, rows)
		}
		if result.Valid {
			r.Success(fmt.Sprintf("%s: %d nodes, %d edges", result.Dataset, result.Nodes, result.Edges))
		}
	}

	if result.Error != "" {
		return fmt.Errorf("dataset is invalid")
	}
	if !result.Valid {
		return fmt.Errorf("dataset has %d warning(s)", len(result.Warnings))
	}
	return nil
}
