package incremental

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// DependencyGraphBuilder builds and queries a dependency graph: transitive
// reachability, topological compilation order, Tarjan SCC cycle detection,
// and Graphviz export.
type DependencyGraphBuilder struct {
	graph *DependencyGraph
}

// NewDependencyGraphBuilder creates a builder over an empty graph.
func NewDependencyGraphBuilder() *DependencyGraphBuilder {
	return &DependencyGraphBuilder{graph: NewDependencyGraph()}
}

// NewDependencyGraphBuilderFor creates a builder over an existing graph.
func NewDependencyGraphBuilderFor(graph *DependencyGraph) *DependencyGraphBuilder {
	return &DependencyGraphBuilder{graph: graph}
}

// AddNode adds or replaces a node in the graph.
func (b *DependencyGraphBuilder) AddNode(node DependencyNode) {
	b.graph.Nodes[node.FilePath] = node
}

// AddEdge appends a directed edge to the graph.
func (b *DependencyGraphBuilder) AddEdge(edge DependencyEdge) {
	b.graph.Edges = append(b.graph.Edges, edge)
}

// Build returns the underlying graph.
func (b *DependencyGraphBuilder) Build() *DependencyGraph {
	return b.graph
}

// GetTransitiveDependencies returns every unit reachable from file by
// following edges forward (breadth-first).
func (b *DependencyGraphBuilder) GetTransitiveDependencies(file string) map[string]struct{} {
	adj := b.graph.successors()
	return reachable(file, adj)
}

// GetTransitiveDependents returns every unit that can reach file by
// following edges backward (breadth-first). Dependents drive invalidation
// propagation.
func (b *DependencyGraphBuilder) GetTransitiveDependents(file string) map[string]struct{} {
	adj := b.graph.predecessors()
	return reachable(file, adj)
}

func reachable(start string, adj map[string][]string) map[string]struct{} {
	found := make(map[string]struct{})
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range adj[current] {
			if _, seen := found[next]; seen {
				continue
			}
			found[next] = struct{}{}
			queue = append(queue, next)
		}
	}

	return found
}

// DFS visitation states for the topological sort.
const (
	colorUnvisited = iota
	colorVisiting
	colorVisited
)

type dfsFrame struct {
	node string
	next int
}

// ComputeCompilationOrder returns every unit in dependency-first order: for
// an edge A -> B ("A depends on B"), B precedes A in the result. Implemented
// with an explicit work stack so deep dependency chains cannot exhaust the
// call stack. A cycle fails with CyclicDependencyError naming a unit on the
// cycle.
func (b *DependencyGraphBuilder) ComputeCompilationOrder() ([]string, error) {
	adj := b.graph.successors()
	for _, targets := range adj {
		sort.Strings(targets)
	}

	roots := make([]string, 0, len(b.graph.Nodes))
	for path := range b.graph.Nodes {
		roots = append(roots, path)
	}
	sort.Strings(roots)

	state := make(map[string]int)
	order := make([]string, 0, len(roots))

	for _, root := range roots {
		if state[root] != colorUnvisited {
			continue
		}

		state[root] = colorVisiting
		stack := []dfsFrame{{node: root}}

		for len(stack) > 0 {
			frame := &stack[len(stack)-1]
			targets := adj[frame.node]

			if frame.next < len(targets) {
				child := targets[frame.next]
				frame.next++

				switch state[child] {
				case colorVisiting:
					return nil, &CyclicDependencyError{Unit: child}
				case colorUnvisited:
					state[child] = colorVisiting
					stack = append(stack, dfsFrame{node: child})
				}
				continue
			}

			state[frame.node] = colorVisited
			order = append(order, frame.node)
			stack = stack[:len(stack)-1]
		}
	}

	return order, nil
}

// FindStronglyConnectedComponents runs Tarjan's algorithm (iterative,
// O(V+E)) and returns every component with more than one member or with a
// self-loop. These are the cyclic clusters reported as diagnostics.
func (b *DependencyGraphBuilder) FindStronglyConnectedComponents() [][]string {
	adj := b.graph.successors()
	for _, targets := range adj {
		sort.Strings(targets)
	}

	roots := make([]string, 0, len(b.graph.Nodes))
	for path := range b.graph.Nodes {
		roots = append(roots, path)
	}
	sort.Strings(roots)

	index := 0
	indices := make(map[string]int)
	lowlinks := make(map[string]int)
	onStack := make(map[string]bool)
	tarjanStack := make([]string, 0)
	components := make([][]string, 0)

	visit := func(node string) {
		indices[node] = index
		lowlinks[node] = index
		index++
		tarjanStack = append(tarjanStack, node)
		onStack[node] = true
	}

	for _, root := range roots {
		if _, done := indices[root]; done {
			continue
		}

		visit(root)
		stack := []dfsFrame{{node: root}}

		for len(stack) > 0 {
			frame := &stack[len(stack)-1]
			targets := adj[frame.node]

			if frame.next < len(targets) {
				succ := targets[frame.next]
				frame.next++

				if _, seen := indices[succ]; !seen {
					visit(succ)
					stack = append(stack, dfsFrame{node: succ})
				} else if onStack[succ] {
					if indices[succ] < lowlinks[frame.node] {
						lowlinks[frame.node] = indices[succ]
					}
				}
				continue
			}

			if lowlinks[frame.node] == indices[frame.node] {
				component := make([]string, 0)
				for {
					w := tarjanStack[len(tarjanStack)-1]
					tarjanStack = tarjanStack[:len(tarjanStack)-1]
					onStack[w] = false
					component = append(component, w)
					if w == frame.node {
						break
					}
				}
				if len(component) > 1 || b.graph.HasSelfLoop(frame.node) {
					components = append(components, component)
				}
			}

			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				parent := stack[len(stack)-1].node
				if lowlinks[frame.node] < lowlinks[parent] {
					lowlinks[parent] = lowlinks[frame.node]
				}
			}
		}
	}

	return components
}

// ExportToDOT renders the graph as Graphviz text for diagnostics. Node fill
// encodes the node type, edge color encodes the edge type. Write-only: no
// parse contract.
func (b *DependencyGraphBuilder) ExportToDOT() string {
	var dot strings.Builder

	dot.WriteString("digraph Dependencies {\n")
	dot.WriteString("    rankdir=LR;\n")
	dot.WriteString("    node [shape=box];\n\n")

	paths := make([]string, 0, len(b.graph.Nodes))
	for path := range b.graph.Nodes {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		node := b.graph.Nodes[path]

		var color string
		switch node.NodeType {
		case NodeTypeSourceFile:
			color = "lightblue"
		case NodeTypeGeneratedFile:
			color = "lightgreen"
		default:
			color = "lightgray"
		}

		label := filepath.Base(path)
		fmt.Fprintf(&dot, "    %q [label=%q, style=filled, fillcolor=%s];\n", path, label, color)
	}

	dot.WriteString("\n")

	for _, edge := range b.graph.Edges {
		var color string
		switch edge.EdgeType {
		case EdgeTypeImport:
			color = "black"
		case EdgeTypeTraces:
			color = "blue"
		case EdgeTypeIncludes:
			color = "green"
		default:
			color = "red"
		}

		fmt.Fprintf(&dot, "    %q -> %q [color=%s];\n", edge.From, edge.To, color)
	}

	dot.WriteString("}\n")

	return dot.String()
}

// ImpactAnalysisResult splits the fallout of a change set into the files
// changed directly and those only reached through the dependency graph.
type ImpactAnalysisResult struct {
	DirectlyAffected     []string
	TransitivelyAffected []string
	TotalAffected        int
	ImpactPercentage     float64
}

// AnalyzeImpact reports which units a change set touches and how much of
// the model that represents.
func (b *DependencyGraphBuilder) AnalyzeImpact(changedFiles []string) ImpactAnalysisResult {
	direct := make(map[string]struct{})
	transitive := make(map[string]struct{})

	for _, file := range changedFiles {
		direct[file] = struct{}{}
		for dependent := range b.GetTransitiveDependents(file) {
			transitive[dependent] = struct{}{}
		}
	}

	for file := range direct {
		delete(transitive, file)
	}

	totalFiles := len(b.graph.Nodes)
	affected := len(direct) + len(transitive)
	percentage := 0.0
	if totalFiles > 0 {
		percentage = float64(affected) / float64(totalFiles) * 100.0
	}

	return ImpactAnalysisResult{
		DirectlyAffected:     sortedKeys(direct),
		TransitivelyAffected: sortedKeys(transitive),
		TotalAffected:        affected,
		ImpactPercentage:     percentage,
	}
}

// CriticalFile ranks a unit by how much of the model depends on it.
type CriticalFile struct {
	FilePath         string
	DependentCount   int
	CriticalityScore float64
}

// FindCriticalFiles returns every unit with at least one dependent, ranked
// by criticality score (direct dependents weighted double).
func (b *DependencyGraphBuilder) FindCriticalFiles() []CriticalFile {
	critical := make([]CriticalFile, 0)

	for path := range b.graph.Nodes {
		directCount := len(b.graph.GetDependents(path))
		if directCount == 0 {
			continue
		}

		transitiveCount := len(b.GetTransitiveDependents(path))
		critical = append(critical, CriticalFile{
			FilePath:         path,
			DependentCount:   directCount,
			CriticalityScore: float64(directCount)*2.0 + float64(transitiveCount),
		})
	}

	sort.Slice(critical, func(i, j int) bool {
		if critical[i].CriticalityScore != critical[j].CriticalityScore {
			return critical[i].CriticalityScore > critical[j].CriticalityScore
		}
		return critical[i].FilePath < critical[j].FilePath
	})

	return critical
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
