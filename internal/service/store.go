package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/strgraph/strgraph/internal/config"
	"github.com/strgraph/strgraph/internal/graph"
	"github.com/strgraph/strgraph/internal/metrics"
	"github.com/strgraph/strgraph/internal/op"
)

var (
	ErrGraphExists   = errors.New("graph already exists")
	ErrGraphNotFound = errors.New("graph not found")
)

// instance wraps a graph with the lock that serializes construction and
// evaluation calls against it. The lock spans each full call, never
// individual nodes; graphs do their own bookkeeping single-threaded.
type instance struct {
	mu sync.Mutex
	g  *graph.Graph
}

// Store holds named graph instances, all sharing one operation registry.
type Store struct {
	mu     sync.RWMutex
	graphs map[string]*instance
	reg    *op.Registry
}

// NewStore creates an empty Store backed by reg.
func NewStore(reg *op.Registry) *Store {
	return &Store{graphs: make(map[string]*instance), reg: reg}
}

// Registry returns the operation registry shared by all graphs.
func (s *Store) Registry() *op.Registry {
	return s.reg
}

// Create adds a new empty graph under name.
func (s *Store) Create(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.graphs[name]; exists {
		return fmt.Errorf("create %s: %w", name, ErrGraphExists)
	}
	s.graphs[name] = &instance{g: graph.New(s.reg)}
	metrics.GraphCount.Set(float64(len(s.graphs)))
	return nil
}

// Delete removes a graph and its cached values.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.graphs[name]; !exists {
		return fmt.Errorf("delete %s: %w", name, ErrGraphNotFound)
	}
	delete(s.graphs, name)
	metrics.GraphCount.Set(float64(len(s.graphs)))
	return nil
}

// List returns all graph names, sorted.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.graphs))
	for k := range s.graphs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *Store) get(name string) (*instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.graphs[name]
	if !ok {
		return nil, fmt.Errorf("graph %s: %w", name, ErrGraphNotFound)
	}
	return inst, nil
}

// AddSource adds a source node to the named graph.
func (s *Store) AddSource(graphName, node, value string) error {
	inst, err := s.get(graphName)
	if err != nil {
		return err
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if err := inst.g.AddSource(node, value); err != nil {
		return err
	}
	metrics.NodesAdded.WithLabelValues(string(graph.KindSource)).Inc()
	return nil
}

// AddCalc adds a calc node to the named graph.
func (s *Store) AddCalc(graphName, node, operation string, upstream []string) error {
	inst, err := s.get(graphName)
	if err != nil {
		return err
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if err := inst.g.AddCalc(node, operation, upstream); err != nil {
		return err
	}
	metrics.NodesAdded.WithLabelValues(string(graph.KindCalc)).Inc()
	return nil
}

// Evaluate computes the given targets on the named graph.
func (s *Store) Evaluate(graphName string, targets []string) (map[string]string, error) {
	inst, err := s.get(graphName)
	if err != nil {
		return nil, err
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()

	hits := 0
	for _, t := range targets {
		if _, ok := inst.g.Value(t); ok {
			hits++
		}
	}

	start := time.Now()
	before := inst.g.Cached()
	values, err := inst.g.Evaluate(targets...)
	metrics.EvaluationDuration.Observe(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.Evaluations.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.Evaluations.WithLabelValues("success").Inc()
	metrics.CacheHits.Add(float64(hits))
	metrics.NodesComputed.Add(float64(inst.g.Cached() - before))
	return values, nil
}

// Description is a point-in-time snapshot of a graph.
type Description struct {
	Name   string            `json:"name"`
	Nodes  []graph.Node      `json:"nodes"`
	Values map[string]string `json:"values"`
}

// Describe returns the named graph's nodes (in insertion order) and all
// currently cached values.
func (s *Store) Describe(graphName string) (*Description, error) {
	inst, err := s.get(graphName)
	if err != nil {
		return nil, err
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()

	d := &Description{
		Name:   graphName,
		Nodes:  make([]graph.Node, 0, inst.g.Len()),
		Values: inst.g.Values(),
	}
	for _, name := range inst.g.Names() {
		n, _ := inst.g.Node(name)
		d.Nodes = append(d.Nodes, n)
	}
	return d, nil
}

// Reset discards the named graph's cached values.
func (s *Store) Reset(graphName string) error {
	inst, err := s.get(graphName)
	if err != nil {
		return err
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.g.Reset()
	return nil
}

// LoadDefs builds every declared graph and installs it, replacing any
// existing graph with the same name. Used at startup and on hot reload;
// a build failure leaves previously installed graphs untouched.
func (s *Store) LoadDefs(defs []config.GraphDef) error {
	built := make(map[string]*graph.Graph, len(defs))
	for i := range defs {
		g, err := graph.Build(&defs[i], s.reg)
		if err != nil {
			return err
		}
		built[defs[i].Name] = g
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, g := range built {
		s.graphs[name] = &instance{g: g}
	}
	metrics.GraphCount.Set(float64(len(s.graphs)))
	return nil
}
