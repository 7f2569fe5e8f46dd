package graph

import (
	"fmt"
	"sort"
)

// Evaluate computes the named target nodes and returns their values.
//
// Only the uncached ancestors of the targets are scheduled: a node that is
// already cached is treated as a leaf, since its own dependencies were
// satisfied when its value was written. Scheduled nodes run in insertion
// order, which is a valid topological order because construction forbids
// forward references; the tie-break between independent nodes is therefore
// deterministic across runs.
//
// Each computed value is written to the cache immediately, so a node shared
// by several downstream consumers is computed exactly once. On an operation
// failure the remaining work is abandoned and an *OpError identifying the
// failing node is returned; values cached before the failure stay cached.
func (g *Graph) Evaluate(targets ...string) (map[string]string, error) {
	for _, t := range targets {
		if _, ok := g.nodes[t]; !ok {
			return nil, fmt.Errorf("evaluate %s: %w", t, ErrUnknownNode)
		}
	}

	pending := make(map[string]struct{})
	var mark func(name string)
	mark = func(name string) {
		if _, cached := g.cache[name]; cached {
			return
		}
		if _, seen := pending[name]; seen {
			return
		}
		pending[name] = struct{}{}
		for _, u := range g.nodes[name].Upstream {
			mark(u)
		}
	}
	for _, t := range targets {
		mark(t)
	}

	sched := make([]*Node, 0, len(pending))
	for name := range pending {
		sched = append(sched, g.nodes[name])
	}
	sort.Slice(sched, func(i, j int) bool { return sched[i].seq < sched[j].seq })

	for _, n := range sched {
		switch n.Kind {
		case KindSource:
			g.cache[n.Name] = n.Value
		case KindCalc:
			args := make([]string, len(n.Upstream))
			for i, u := range n.Upstream {
				args[i] = g.cache[u]
			}
			v, err := g.reg.Invoke(n.Op, args)
			if err != nil {
				return nil, &OpError{Node: n.Name, Op: n.Op, Err: err}
			}
			g.cache[n.Name] = v
		}
	}

	out := make(map[string]string, len(targets))
	for _, t := range targets {
		out[t] = g.cache[t]
	}
	return out, nil
}
