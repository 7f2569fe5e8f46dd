package graph

import (
	"fmt"

	"github.com/strgraph/strgraph/internal/config"
	"github.com/strgraph/strgraph/internal/op"
)

// Build constructs a Graph from a validated GraphDef. Sources are added
// first, then calcs in declaration order, so declaration order doubles as
// construction order and every upstream reference is checked against nodes
// that already exist.
func Build(def *config.GraphDef, reg *op.Registry) (*Graph, error) {
	g := New(reg)
	for _, s := range def.Sources {
		if err := g.AddSource(s.Name, s.Value); err != nil {
			return nil, fmt.Errorf("graph %s: %w", def.Name, err)
		}
	}
	for _, c := range def.Calcs {
		if err := g.AddCalc(c.Name, c.Op, c.Upstream); err != nil {
			return nil, fmt.Errorf("graph %s: %w", def.Name, err)
		}
	}
	return g, nil
}
