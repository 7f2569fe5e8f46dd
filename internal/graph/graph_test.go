package graph_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/strgraph/strgraph/internal/graph"
	"github.com/strgraph/strgraph/internal/op"
)

func newGraph(t *testing.T) *graph.Graph {
	t.Helper()
	return graph.New(op.Builtins())
}

func TestAddSource(t *testing.T) {
	g := newGraph(t)
	if err := g.AddSource("A", "x"); err != nil {
		t.Fatalf("AddSource error: %v", err)
	}
	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1", g.Len())
	}
	n, ok := g.Node("A")
	if !ok || n.Kind != graph.KindSource || n.Value != "x" {
		t.Errorf("Node(A) = %+v, %v", n, ok)
	}
}

func TestAddSourceDuplicateKeepsFirst(t *testing.T) {
	g := newGraph(t)
	if err := g.AddSource("A", "x"); err != nil {
		t.Fatalf("AddSource error: %v", err)
	}
	err := g.AddSource("A", "y")
	if !errors.Is(err, graph.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	n, _ := g.Node("A")
	if n.Value != "x" {
		t.Errorf("first definition should survive, got value %q", n.Value)
	}
	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1", g.Len())
	}
}

func TestAddCalcValidation(t *testing.T) {
	tests := []struct {
		name     string
		calcName string
		o        string
		upstream []string
		want     error
	}{
		{"duplicate name", "A", "upper", []string{"A"}, graph.ErrDuplicateName},
		{"unknown operation", "C", "frobnicate", []string{"A"}, graph.ErrUnknownOperation},
		{"arity too few", "C", "concat", []string{"A"}, graph.ErrArityMismatch},
		{"arity too many", "C", "upper", []string{"A", "B"}, graph.ErrArityMismatch},
		{"unknown upstream", "C", "upper", []string{"Z"}, graph.ErrUnknownUpstream},
		{"self reference", "C", "upper", []string{"C"}, graph.ErrUnknownUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGraph(t)
			if err := g.AddSource("A", "x"); err != nil {
				t.Fatalf("AddSource error: %v", err)
			}
			if err := g.AddSource("B", "y"); err != nil {
				t.Fatalf("AddSource error: %v", err)
			}
			err := g.AddCalc(tt.calcName, tt.o, tt.upstream)
			if !errors.Is(err, tt.want) {
				t.Errorf("AddCalc = %v, want %v", err, tt.want)
			}
			// A failed add must not grow the graph.
			if g.Len() != 2 {
				t.Errorf("Len() = %d, want 2", g.Len())
			}
		})
	}
}

func TestNamesInsertionOrder(t *testing.T) {
	g := newGraph(t)
	for _, name := range []string{"B", "A", "D"} {
		if err := g.AddSource(name, name); err != nil {
			t.Fatalf("AddSource error: %v", err)
		}
	}
	if err := g.AddCalc("C", "concat", []string{"B", "A"}); err != nil {
		t.Fatalf("AddCalc error: %v", err)
	}
	got := strings.Join(g.Names(), ",")
	if got != "B,A,D,C" {
		t.Errorf("Names() = %s, want B,A,D,C", got)
	}
}

func TestInfo(t *testing.T) {
	g := newGraph(t)
	if err := g.AddSource("A", "hi"); err != nil {
		t.Fatalf("AddSource error: %v", err)
	}
	if err := g.AddCalc("B", "upper", []string{"A"}); err != nil {
		t.Fatalf("AddCalc error: %v", err)
	}
	if _, err := g.Evaluate("B"); err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	info := g.Info()
	for _, want := range []string{"2 nodes", `source "hi"`, "upper(A)", `"HI"`} {
		if !strings.Contains(info, want) {
			t.Errorf("Info() missing %q:\n%s", want, info)
		}
	}
}
