// Package dataset loads the traceability content: nodes, edges and the
// default layout table. Datasets are YAML documents; a built-in dataset
// describes the folding steering wheel workflow.
package dataset

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/simtrace/internal/dag"
	"github.com/leapstack-labs/simtrace/internal/trace"
)

// Spacing used when a node has no entry in the layout table.
const (
	ColumnSpacing = 320.0
	RowSpacing    = 110.0
)

// BuiltinName is the name used to refer to the built-in dataset.
const BuiltinName = "builtin"

//go:embed builtin.yaml
var builtinYAML []byte

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Dataset is the on-disk description of a traceability graph.
type Dataset struct {
	Name        string                    `yaml:"name" validate:"required"`
	Description string                    `yaml:"description"`
	Nodes       []NodeSpec                `yaml:"nodes" validate:"required,min=1,dive"`
	Edges       []EdgeSpec                `yaml:"edges" validate:"dive"`
	Layout      map[string]trace.Position `yaml:"layout"`
}

// NodeSpec describes one node.
type NodeSpec struct {
	ID          string `yaml:"id" validate:"required"`
	Category    string `yaml:"category" validate:"required,oneof=kpi param model"`
	Label       string `yaml:"label" validate:"required"`
	Value       string `yaml:"value"`
	Target      string `yaml:"target"`
	Unit        string `yaml:"unit"`
	Description string `yaml:"description"`
}

// EdgeSpec describes one directed edge. The id defaults to "source->target".
type EdgeSpec struct {
	ID     string `yaml:"id"`
	Source string `yaml:"source" validate:"required"`
	Target string `yaml:"target" validate:"required"`
}

// EdgeID returns the explicit id or the derived one.
func (e EdgeSpec) EdgeID() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Source + "->" + e.Target
}

// Compiled is a dataset turned into a graph and a complete default layout.
type Compiled struct {
	Name     string
	Graph    *trace.Graph
	Layout   map[string]trace.Position
	Warnings []string
}

// Builtin returns the built-in dataset.
func Builtin() *Dataset {
	d, err := Parse(builtinYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in dataset is invalid: %v", err))
	}
	return d
}

// Load reads a dataset from path. The name "builtin" or an empty path selects
// the built-in dataset.
func Load(path string) (*Dataset, error) {
	if path == "" || path == BuiltinName {
		return Builtin(), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from user config
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return d, nil
}

// Parse decodes and validates a YAML dataset.
func Parse(data []byte) (*Dataset, error) {
	var d Dataset
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks required fields and categories.
func (d *Dataset) Validate() error {
	if err := validate.Struct(d); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// Compile builds the graph and the default layout. Edges that reference a
// missing node fail the build. Cycles and layout gaps only produce warnings.
func (d *Dataset) Compile() (*Compiled, error) {
	nodes := make([]trace.Node, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		category, err := trace.ParseCategory(n.Category)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
		nodes = append(nodes, trace.Node{
			ID:       n.ID,
			Category: category,
			Payload: trace.Payload{
				Label:       n.Label,
				Value:       n.Value,
				Target:      n.Target,
				Unit:        n.Unit,
				Description: n.Description,
			},
		})
	}

	edges := make([]trace.Edge, 0, len(d.Edges))
	for _, e := range d.Edges {
		edges = append(edges, trace.Edge{ID: e.EdgeID(), Source: e.Source, Target: e.Target})
	}

	g, err := trace.NewGraph(nodes, edges)
	if err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}

	c := &Compiled{
		Name:   d.Name,
		Graph:  g,
		Layout: make(map[string]trace.Position, g.Len()),
	}

	topology := dag.FromTrace(g)
	if hasCycle, path := topology.HasCycle(); hasCycle {
		c.Warnings = append(c.Warnings, fmt.Sprintf("graph has a cycle: %s", strings.Join(path, " -> ")))
	}

	var unknown []string
	for id := range d.Layout {
		if !g.Has(id) {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		c.Warnings = append(c.Warnings, fmt.Sprintf("layout entry %q does not name a node", id))
	}

	fallback := fallbackLayout(g, topology)
	var missing []string
	for _, n := range nodes {
		if p, ok := d.Layout[n.ID]; ok {
			c.Layout[n.ID] = p
			continue
		}
		c.Layout[n.ID] = fallback[n.ID]
		missing = append(missing, n.ID)
	}
	if len(missing) > 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("layout has no position for %s; placed by dependency level", strings.Join(missing, ", ")))
	}

	return c, nil
}

// fallbackLayout places nodes in columns by dependency level and rows by
// authoring order. A cyclic graph has no levels, so columns follow category
// instead.
func fallbackLayout(g *trace.Graph, topology *dag.Graph) map[string]trace.Position {
	positions := make(map[string]trace.Position, g.Len())

	levels, err := topology.Levels()
	if err != nil {
		levels = categoryColumns(g)
	}

	for col, ids := range levels {
		for row, id := range ids {
			positions[id] = trace.Position{X: float64(col) * ColumnSpacing, Y: float64(row) * RowSpacing}
		}
	}
	return positions
}

func categoryColumns(g *trace.Graph) [][]string {
	columns := make([][]string, len(trace.Categories()))
	for _, n := range g.Nodes() {
		for i, c := range trace.Categories() {
			if n.Category == c {
				columns[i] = append(columns[i], n.ID)
			}
		}
	}
	return columns
}

// formatValidationError turns validator output into one error listing every
// failed field.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := strings.TrimPrefix(e.Namespace(), "Dataset.")
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s: field is required", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s: must have at least %s entries", field, e.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s: must be one of %s, got %q", field, e.Param(), e.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return fmt.Errorf("invalid dataset: %s", strings.Join(msgs, "; "))
}
