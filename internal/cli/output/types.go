package output

import "github.com/leapstack-labs/simtrace/internal/trace"

// TraceOutput is the JSON output of the trace command.
type TraceOutput struct {
	Dataset    string           `json:"dataset"`
	Selected   string           `json:"selected"`
	Upstream   []string         `json:"upstream"`
	Downstream []string         `json:"downstream"`
	Nodes      []trace.NodeView `json:"nodes"`
	Edges      []trace.EdgeView `json:"edges"`
	Hint       string           `json:"hint"`
}

// GraphOutput is the JSON output of the graph command.
type GraphOutput struct {
	Dataset    string       `json:"dataset"`
	Levels     []GraphLevel `json:"levels"`
	TotalNodes int          `json:"total_nodes"`
	TotalEdges int          `json:"total_edges"`
	Roots      []string     `json:"roots"`
	Leaves     []string     `json:"leaves"`
	Warnings   []string     `json:"warnings,omitempty"`
}

// GraphLevel groups nodes at one dependency depth.
type GraphLevel struct {
	Level int         `json:"level"`
	Nodes []GraphNode `json:"nodes"`
}

// GraphNode is one node with its direct neighbours.
type GraphNode struct {
	ID        string         `json:"id"`
	Category  trace.Category `json:"category"`
	Label     string         `json:"label"`
	DependsOn []string       `json:"depends_on"`
	UsedBy    []string       `json:"used_by"`
}

// ValidateOutput is the JSON output of the validate command.
type ValidateOutput struct {
	Dataset  string   `json:"dataset"`
	Valid    bool     `json:"valid"`
	Nodes    int      `json:"nodes"`
	Edges    int      `json:"edges"`
	Warnings []string `json:"warnings"`
	Error    string   `json:"error,omitempty"`
}
