package incremental

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"
)

// chainGraph builds main.arc -> lib.arc -> core.arc ("X depends on Y").
func chainGraph() *DependencyGraphBuilder {
	builder := NewDependencyGraphBuilder()
	for _, path := range []string{"core.arc", "lib.arc", "main.arc"} {
		builder.AddNode(DependencyNode{FilePath: path, NodeType: NodeTypeSourceFile})
	}
	builder.AddEdge(DependencyEdge{From: "lib.arc", To: "core.arc", EdgeType: EdgeTypeImport})
	builder.AddEdge(DependencyEdge{From: "main.arc", To: "lib.arc", EdgeType: EdgeTypeImport})
	return builder
}

func TestDependencyGraph_DirectQueries(t *testing.T) {
	graph := chainGraph().Build()

	deps := graph.GetDependencies("lib.arc")
	if !reflect.DeepEqual(deps, []string{"core.arc"}) {
		t.Errorf("Expected [core.arc], got %v", deps)
	}

	dependents := graph.GetDependents("lib.arc")
	if !reflect.DeepEqual(dependents, []string{"main.arc"}) {
		t.Errorf("Expected [main.arc], got %v", dependents)
	}

	if graph.HasSelfLoop("lib.arc") {
		t.Error("Did not expect a self-loop")
	}
}

func TestGetTransitiveDependencies(t *testing.T) {
	builder := chainGraph()

	deps := builder.GetTransitiveDependencies("main.arc")
	expected := []string{"core.arc", "lib.arc"}
	if !reflect.DeepEqual(sortedKeys(deps), expected) {
		t.Errorf("Expected %v, got %v", expected, sortedKeys(deps))
	}

	if len(builder.GetTransitiveDependencies("core.arc")) != 0 {
		t.Error("Expected core.arc to have no dependencies")
	}
}

func TestGetTransitiveDependents(t *testing.T) {
	builder := chainGraph()

	dependents := builder.GetTransitiveDependents("core.arc")
	expected := []string{"lib.arc", "main.arc"}
	if !reflect.DeepEqual(sortedKeys(dependents), expected) {
		t.Errorf("Expected %v, got %v", expected, sortedKeys(dependents))
	}

	if len(builder.GetTransitiveDependents("main.arc")) != 0 {
		t.Error("Expected main.arc to have no dependents")
	}
}

func TestComputeCompilationOrder_TopologicalValidity(t *testing.T) {
	builder := chainGraph()

	order, err := builder.ComputeCompilationOrder()
	if err != nil {
		t.Fatalf("ComputeCompilationOrder failed: %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("Expected 3 units, got %d: %v", len(order), order)
	}

	position := make(map[string]int, len(order))
	for i, path := range order {
		position[path] = i
	}

	// For every edge From -> To, To must be compiled before From.
	for _, edge := range builder.Build().Edges {
		if position[edge.To] >= position[edge.From] {
			t.Errorf("Edge %s -> %s violated: order %v", edge.From, edge.To, order)
		}
	}
}

func TestComputeCompilationOrder_Cycle(t *testing.T) {
	builder := NewDependencyGraphBuilder()
	for _, path := range []string{"a.arc", "b.arc", "c.arc"} {
		builder.AddNode(DependencyNode{FilePath: path, NodeType: NodeTypeSourceFile})
	}
	builder.AddEdge(DependencyEdge{From: "a.arc", To: "b.arc", EdgeType: EdgeTypeImport})
	builder.AddEdge(DependencyEdge{From: "b.arc", To: "c.arc", EdgeType: EdgeTypeImport})
	builder.AddEdge(DependencyEdge{From: "c.arc", To: "a.arc", EdgeType: EdgeTypeImport})

	_, err := builder.ComputeCompilationOrder()
	if err == nil {
		t.Fatal("Expected a cycle error")
	}

	var cycleErr *CyclicDependencyError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("Expected CyclicDependencyError, got %T", err)
	}
}

func TestFindStronglyConnectedComponents_Cycle(t *testing.T) {
	builder := NewDependencyGraphBuilder()
	for _, path := range []string{"a.arc", "b.arc", "c.arc", "d.arc"} {
		builder.AddNode(DependencyNode{FilePath: path, NodeType: NodeTypeSourceFile})
	}
	builder.AddEdge(DependencyEdge{From: "a.arc", To: "b.arc", EdgeType: EdgeTypeImport})
	builder.AddEdge(DependencyEdge{From: "b.arc", To: "c.arc", EdgeType: EdgeTypeImport})
	builder.AddEdge(DependencyEdge{From: "c.arc", To: "a.arc", EdgeType: EdgeTypeImport})
	builder.AddEdge(DependencyEdge{From: "d.arc", To: "a.arc", EdgeType: EdgeTypeImport})

	components := builder.FindStronglyConnectedComponents()
	if len(components) != 1 {
		t.Fatalf("Expected exactly one cyclic component, got %d: %v", len(components), components)
	}

	members := append([]string(nil), components[0]...)
	sort.Strings(members)
	expected := []string{"a.arc", "b.arc", "c.arc"}
	if !reflect.DeepEqual(members, expected) {
		t.Errorf("Expected component %v, got %v", expected, members)
	}
}

func TestFindStronglyConnectedComponents_SelfLoop(t *testing.T) {
	builder := NewDependencyGraphBuilder()
	builder.AddNode(DependencyNode{FilePath: "loop.arc", NodeType: NodeTypeSourceFile})
	builder.AddEdge(DependencyEdge{From: "loop.arc", To: "loop.arc", EdgeType: EdgeTypeImport})

	components := builder.FindStronglyConnectedComponents()
	if len(components) != 1 {
		t.Fatalf("Expected a self-loop component, got %v", components)
	}
	if !reflect.DeepEqual(components[0], []string{"loop.arc"}) {
		t.Errorf("Expected [loop.arc], got %v", components[0])
	}
}

func TestFindStronglyConnectedComponents_Acyclic(t *testing.T) {
	components := chainGraph().FindStronglyConnectedComponents()
	if len(components) != 0 {
		t.Errorf("Expected no cyclic components in a chain, got %v", components)
	}
}

func TestExportToDOT(t *testing.T) {
	dot := chainGraph().ExportToDOT()

	if !strings.HasPrefix(dot, "digraph Dependencies {") {
		t.Errorf("Unexpected DOT prefix: %q", dot[:40])
	}
	for _, fragment := range []string{
		`"main.arc" [label="main.arc", style=filled, fillcolor=lightblue];`,
		`"main.arc" -> "lib.arc" [color=black];`,
		`"lib.arc" -> "core.arc" [color=black];`,
	} {
		if !strings.Contains(dot, fragment) {
			t.Errorf("DOT output missing %q:\n%s", fragment, dot)
		}
	}
}

func TestAnalyzeImpact(t *testing.T) {
	result := chainGraph().AnalyzeImpact([]string{"core.arc"})

	if !reflect.DeepEqual(result.DirectlyAffected, []string{"core.arc"}) {
		t.Errorf("Expected direct [core.arc], got %v", result.DirectlyAffected)
	}
	if !reflect.DeepEqual(result.TransitivelyAffected, []string{"lib.arc", "main.arc"}) {
		t.Errorf("Expected transitive [lib.arc main.arc], got %v", result.TransitivelyAffected)
	}
	if result.TotalAffected != 3 {
		t.Errorf("Expected 3 affected, got %d", result.TotalAffected)
	}
	if result.ImpactPercentage != 100.0 {
		t.Errorf("Expected 100%% impact, got %.1f", result.ImpactPercentage)
	}
}

func TestFindCriticalFiles(t *testing.T) {
	critical := chainGraph().FindCriticalFiles()

	if len(critical) != 2 {
		t.Fatalf("Expected 2 critical files, got %d: %v", len(critical), critical)
	}

	// core.arc: 1 direct dependent, 2 transitive => score 4.
	if critical[0].FilePath != "core.arc" || critical[0].CriticalityScore != 4.0 {
		t.Errorf("Expected core.arc with score 4.0 first, got %+v", critical[0])
	}
	// lib.arc: 1 direct dependent, 1 transitive => score 3.
	if critical[1].FilePath != "lib.arc" || critical[1].CriticalityScore != 3.0 {
		t.Errorf("Expected lib.arc with score 3.0 second, got %+v", critical[1])
	}
}
