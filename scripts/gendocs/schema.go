package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	sharedcfg "github.com/leapstack-labs/simtrace/internal/config"
	"github.com/leapstack-labs/simtrace/internal/dataset"
)

// generateSchemaDocs generates reference pages for the config file and the
// dataset format.
func generateSchemaDocs(outDir string) error {
	log.Printf("Generating schema docs to %s", outDir)

	// Create output directory
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	if err := generateDatasetDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate dataset.md: %w", err)
	}
	log.Printf("  Generated dataset.md")

	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
}

// getConfigSchema returns the configuration schema definition.
// This is based on internal/cli/config/types.go Config and UIConfig.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "dataset", Type: "string", Default: sharedcfg.DefaultDataset, Description: "Dataset file relative to the project root, or `builtin`"},
		{Name: "output", Type: "string", Default: sharedcfg.DefaultOutput, Description: "Output format: auto, text, markdown, json"},
		{Name: "log_level", Type: "string", Default: sharedcfg.DefaultLogLevel, Description: "Log level: debug, info, warn, error"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Verbose output, forces debug logging"},
		{Name: "ui.port", Type: "int", Default: fmt.Sprint(sharedcfg.DefaultPort), Description: "Web UI port"},
		{Name: "ui.auto_open", Type: "bool", Default: fmt.Sprint(sharedcfg.DefaultAutoOpen), Description: "Open the browser when the UI starts"},
		{Name: "ui.watch", Type: "bool", Default: fmt.Sprint(sharedcfg.DefaultUIWatch), Description: "Reload the dataset when its file changes"},
		{Name: "ui.session_secret", Type: "string", Description: "Secret used to sign session cookies"},
	}
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "simtrace configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("simtrace reads `%s` (or `%s`) from the working directory or the nearest parent directory.",
		sharedcfg.ConfigFileName, sharedcfg.ConfigFileNameAlt))

	rows := make([][]string, 0, len(getConfigSchema()))
	for _, f := range getConfigSchema() {
		defVal := f.Default
		if defVal == "" {
			defVal = "-"
		}
		rows = append(rows, []string{InlineCode(f.Name), f.Type, InlineCode(defVal), f.Description})
	}
	w.Table([]string{"Field", "Type", "Default", "Description"}, rows)

	w.Header(2, "Example")
	w.CodeBlock("yaml", `# simtrace.yaml
dataset: graphs/steering-wheel.yaml
output: auto
log_level: info

ui:
  port: 8765
  auto_open: true
  watch: true`)

	w.Header(2, "Environment Variables")
	w.Paragraph(fmt.Sprintf("Every field can be set with the `%s` prefix. Nested keys use an underscore, so `ui.port` becomes `%sUI_PORT`.",
		sharedcfg.EnvPrefix, sharedcfg.EnvPrefix))

	filename := filepath.Join(outDir, "configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}

// DatasetField is one field of a dataset entry, read from struct tags.
type DatasetField struct {
	Name     string
	Type     string
	Required bool
	OneOf    string
}

// datasetFields lists the yaml fields of a dataset spec struct.
func datasetFields(v any) []DatasetField {
	t := reflect.TypeOf(v)
	fields := make([]DatasetField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		df := DatasetField{Name: name, Type: f.Type.String()}
		for _, rule := range strings.Split(f.Tag.Get("validate"), ",") {
			switch {
			case rule == "required":
				df.Required = true
			case strings.HasPrefix(rule, "oneof="):
				df.OneOf = strings.TrimPrefix(rule, "oneof=")
			}
		}
		fields = append(fields, df)
	}
	return fields
}

func writeDatasetTable(w *MarkdownWriter, fields []DatasetField) {
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		req := "No"
		if f.Required {
			req = "Yes"
		}
		values := "-"
		if f.OneOf != "" {
			values = strings.Join(strings.Fields(f.OneOf), ", ")
		}
		rows = append(rows, []string{InlineCode(f.Name), f.Type, req, values})
	}
	w.Table([]string{"Field", "Type", "Required", "Values"}, rows)
}

// generateDatasetDoc generates the dataset format reference page.
func generateDatasetDoc(outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Dataset Format", "simtrace dataset file reference")
	w.GeneratedMarker()

	w.Header(1, "Dataset Format")
	w.Paragraph("A dataset is a YAML file with a name, a list of nodes, a list of directed edges and an optional layout table.")

	w.Header(2, "Nodes")
	writeDatasetTable(w, datasetFields(dataset.NodeSpec{}))

	w.Header(2, "Edges")
	w.Paragraph("Edges point from the dependent node to what it depends on. The id defaults to `source->target`.")
	writeDatasetTable(w, datasetFields(dataset.EdgeSpec{}))

	w.Header(2, "Layout")
	w.Paragraph(fmt.Sprintf("`layout` maps node ids to `{x, y}` positions. Nodes without an entry are placed %g apart by dependency level and %g apart by authoring order.",
		dataset.ColumnSpacing, dataset.RowSpacing))

	w.Header(2, "Example")
	w.CodeBlock("yaml", `name: minimal
nodes:
  - {id: kpi-fold-time, category: kpi, label: Folding time, value: "3.1", unit: s}
  - {id: param-motor-power, category: param, label: Motor rated power}
  - {id: model-sim, category: model, label: Folding simulation}
edges:
  - {source: kpi-fold-time, target: param-motor-power}
  - {source: param-motor-power, target: model-sim}
layout:
  kpi-fold-time: {x: 0, y: 0}
  param-motor-power: {x: 320, y: 0}
  model-sim: {x: 640, y: 0}`)

	filename := filepath.Join(outDir, "dataset.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}
