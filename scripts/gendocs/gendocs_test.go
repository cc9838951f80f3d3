package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/simtrace/internal/cli/config"
	"github.com/leapstack-labs/simtrace/internal/dataset"
)

func TestGenerateCLIDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "# CLI Reference")
	assert.Contains(t, string(index), "[`trace`](/cli/trace)")
	assert.Contains(t, string(index), "SIMTRACE_SESSION_SECRET")

	for _, name := range []string{"trace", "graph", "validate", "explore", "ui", "version", "completion"} {
		_, err := os.Stat(filepath.Join(dir, name+".md"))
		assert.NoError(t, err, name)
	}

	assert.Contains(t, string(index), "`SIMTRACE_UI_PORT`")
	assert.Contains(t, string(index), "simtrace trace param-motor-power")

	tests := []struct {
		page        string
		contains    []string
		notContains []string
	}{
		{
			page:     "trace",
			contains: []string{"simtrace trace <node>", "`--upstream`", "## Output Formats", "`markdown`", "## Built-in Nodes", "`param-motor-power`", "Folding time"},
		},
		{
			page:        "graph",
			contains:    []string{"## Output Formats", "## Aliases", "`dag`"},
			notContains: []string{"## Built-in Nodes"},
		},
		{
			page:        "explore",
			contains:    []string{"## Built-in Nodes", "`model-sim`"},
			notContains: []string{"## Output Formats"},
		},
		{
			page:        "ui",
			notContains: []string{"## Output Formats", "## Built-in Nodes"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			content, err := os.ReadFile(filepath.Join(dir, tt.page+".md"))
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, string(content), want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, string(content), unwanted)
			}
		})
	}
}

func TestConfigSchemaCoversEveryKey(t *testing.T) {
	var names []string
	for _, f := range getConfigSchema() {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, config.Keys(), names)
}

func TestGenerateSchemaDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateSchemaDocs(dir))

	cfg, err := os.ReadFile(filepath.Join(dir, "configuration.md"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "`ui.session_secret`")

	ds, err := os.ReadFile(filepath.Join(dir, "dataset.md"))
	require.NoError(t, err)
	assert.Contains(t, string(ds), "kpi, param, model")
}

func TestDatasetFields(t *testing.T) {
	fields := datasetFields(dataset.EdgeSpec{})
	assert.Equal(t, []DatasetField{
		{Name: "id", Type: "string"},
		{Name: "source", Type: "string", Required: true},
		{Name: "target", Type: "string", Required: true},
	}, fields)
}

func TestCleanExample(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  # comment\n  simtrace graph", "# comment\nsimtrace graph"},
		{"simtrace ui", "simtrace ui"},
		{"    a\n      b\n", "a\n  b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanExample(tt.in))
	}
}

func TestMarkdownWriter(t *testing.T) {
	w := NewMarkdownWriter()
	w.Header(0, "Title")
	w.BulletList([]string{InlineCode("a")})
	w.CodeBlock("bash", "echo hi\n")

	assert.Equal(t, "# Title\n\n- `a`\n\n```bash\necho hi\n```\n\n", w.String())
	assert.Equal(t, "one two", cleanDescription("  one\n\ttwo "))
}
