package graph

import (
	"fmt"
	"strings"

	"github.com/strgraph/strgraph/internal/op"
)

// Graph owns a set of named nodes and their result cache. Construction is
// append-only: a calc node may only reference nodes that already exist, so
// the dependency relation is acyclic by construction and no cycle-detection
// pass is ever needed at evaluation time.
//
// A Graph is not safe for concurrent use; callers that share one across
// goroutines must serialize access (see service.Store).
type Graph struct {
	reg   *op.Registry
	nodes map[string]*Node
	order []string // insertion order
	cache map[string]string
}

// New allocates an empty Graph bound to the given operation registry.
// Each Graph carries its own registry value so independent graphs and test
// substitution of fake operations need no global state.
func New(reg *op.Registry) *Graph {
	return &Graph{
		reg:   reg,
		nodes: make(map[string]*Node),
		cache: make(map[string]string),
	}
}

// AddSource adds a node holding a fixed literal value.
func (g *Graph) AddSource(name, value string) error {
	if _, exists := g.nodes[name]; exists {
		return fmt.Errorf("add source %s: %w", name, ErrDuplicateName)
	}
	g.insert(&Node{Name: name, Kind: KindSource, Value: value})
	return nil
}

// AddCalc adds a node computed by applying operation to the named upstream
// nodes, in order. Every upstream name must already exist, which makes
// self-reference and cycles unrepresentable.
func (g *Graph) AddCalc(name, operation string, upstream []string) error {
	if _, exists := g.nodes[name]; exists {
		return fmt.Errorf("add calc %s: %w", name, ErrDuplicateName)
	}
	o, ok := g.reg.Lookup(operation)
	if !ok {
		return fmt.Errorf("add calc %s: operation %q: %w", name, operation, ErrUnknownOperation)
	}
	if len(upstream) != o.Arity {
		return fmt.Errorf("add calc %s: operation %q wants %d args, got %d: %w",
			name, operation, o.Arity, len(upstream), ErrArityMismatch)
	}
	for _, u := range upstream {
		if _, ok := g.nodes[u]; !ok {
			return fmt.Errorf("add calc %s: upstream %q: %w", name, u, ErrUnknownUpstream)
		}
	}
	g.insert(&Node{
		Name:     name,
		Kind:     KindCalc,
		Op:       operation,
		Upstream: append([]string(nil), upstream...),
	})
	return nil
}

func (g *Graph) insert(n *Node) {
	n.seq = len(g.order)
	g.nodes[n.Name] = n
	g.order = append(g.order, n.Name)
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// Names returns all node names in insertion order.
func (g *Graph) Names() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Node returns a copy of the named node.
func (g *Graph) Node(name string) (Node, bool) {
	n, ok := g.nodes[name]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Value returns the cached value of a node, if it has been computed.
func (g *Graph) Value(name string) (string, bool) {
	v, ok := g.cache[name]
	return v, ok
}

// Values returns a snapshot of all cached node values.
func (g *Graph) Values() map[string]string {
	out := make(map[string]string, len(g.cache))
	for k, v := range g.cache {
		out[k] = v
	}
	return out
}

// Cached returns how many node values are currently cached.
func (g *Graph) Cached() int {
	return len(g.cache)
}

// Reset discards all cached values. The next Evaluate recomputes from scratch.
func (g *Graph) Reset() {
	g.cache = make(map[string]string, len(g.nodes))
}

// Info returns a human-readable dump of the graph for debugging.
func (g *Graph) Info() string {
	var b strings.Builder
	fmt.Fprintf(&b, "graph: %d nodes\n", len(g.order))
	for _, name := range g.order {
		n := g.nodes[name]
		switch n.Kind {
		case KindSource:
			fmt.Fprintf(&b, "  %s: source %q", name, n.Value)
		case KindCalc:
			fmt.Fprintf(&b, "  %s: calc %s(%s)", name, n.Op, strings.Join(n.Upstream, ", "))
		}
		if v, ok := g.cache[name]; ok {
			fmt.Fprintf(&b, " = %q", v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
