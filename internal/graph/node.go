package graph

// Kind discriminates the two kinds of graph nodes.
type Kind string

const (
	KindSource Kind = "source"
	KindCalc   Kind = "calc"
)

// Node is a vertex in the computation graph. A source node holds a fixed
// literal; a calc node holds an operation name and the ordered names of its
// upstream arguments. Nodes are immutable once added.
type Node struct {
	Name     string   `json:"name"`
	Kind     Kind     `json:"kind"`
	Value    string   `json:"value,omitempty"`    // source literal
	Op       string   `json:"op,omitempty"`       // calc operation
	Upstream []string `json:"upstream,omitempty"` // ordered operation arguments

	seq int // insertion order; scheduling tie-break
}
