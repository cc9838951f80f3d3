package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/simtrace/internal/dataset"
)

// ScenarioYAML is a four node diamond: one KPI driven by two parameters that
// both feed one model.
const ScenarioYAML = `name: diamond
nodes:
  - {id: K, category: kpi, label: Folding time, value: "4.2", target: "4.0", unit: s}
  - {id: P1, category: param, label: Motor power, value: "35", unit: W}
  - {id: P2, category: param, label: Gear ratio}
  - {id: M, category: model, label: Simulation}
edges:
  - {id: K-P1, source: K, target: P1}
  - {id: K-P2, source: K, target: P2}
  - {id: P1-M, source: P1, target: M}
  - {id: P2-M, source: P2, target: M}
layout:
  K: {x: 0, y: 100}
  P1: {x: 250, y: 0}
  P2: {x: 250, y: 200}
  M: {x: 500, y: 100}
`

// CompileScenario parses and compiles ScenarioYAML.
func CompileScenario(t testing.TB) *dataset.Compiled {
	t.Helper()
	return Compile(t, ScenarioYAML)
}

// Compile parses and compiles a YAML dataset.
func Compile(t testing.TB, yaml string) *dataset.Compiled {
	t.Helper()
	d, err := dataset.Parse([]byte(yaml))
	require.NoError(t, err)
	c, err := d.Compile()
	require.NoError(t, err)
	return c
}

// WriteDataset writes yaml to a file in a temp dir and returns its path.
func WriteDataset(t testing.TB, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))
	return path
}
