package incremental

// NodeType classifies a dependency graph node.
type NodeType int

const (
	NodeTypeSourceFile NodeType = iota
	NodeTypeGeneratedFile
	NodeTypeExternalDependency
)

// String returns a human-readable name for the node type.
func (nt NodeType) String() string {
	switch nt {
	case NodeTypeSourceFile:
		return "SourceFile"
	case NodeTypeGeneratedFile:
		return "GeneratedFile"
	case NodeTypeExternalDependency:
		return "ExternalDependency"
	default:
		return "Unknown"
	}
}

// EdgeType classifies a directed dependency edge.
type EdgeType int

const (
	EdgeTypeImport EdgeType = iota
	EdgeTypeTraces
	EdgeTypeIncludes
	EdgeTypeDerives
)

// String returns a human-readable name for the edge type.
func (et EdgeType) String() string {
	switch et {
	case EdgeTypeImport:
		return "Import"
	case EdgeTypeTraces:
		return "Traces"
	case EdgeTypeIncludes:
		return "Includes"
	case EdgeTypeDerives:
		return "Derives"
	default:
		return "Unknown"
	}
}

// DependencyNode is one compilation unit in the dependency graph.
type DependencyNode struct {
	FilePath         string
	ContentHash      string
	NodeType         NodeType
	ExportedElements []string
}

// DependencyEdge is a directed edge: From depends on To.
// Self-loops are representable; cycle detection reports them, the graph
// never silently rejects them.
type DependencyEdge struct {
	From     string
	To       string
	EdgeType EdgeType
}

// DependencyGraph holds the persisted node and edge sets of the cache.
// It is a plain data aggregate: all mutation happens on the orchestrator
// thread via CacheManager, queries are read-only.
type DependencyGraph struct {
	Nodes map[string]DependencyNode
	Edges []DependencyEdge
}

// NewDependencyGraph creates an empty dependency graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		Nodes: make(map[string]DependencyNode),
	}
}

// GetDependencies returns the direct dependencies of the given unit.
func (g *DependencyGraph) GetDependencies(file string) []string {
	deps := make([]string, 0)
	for _, edge := range g.Edges {
		if edge.From == file {
			deps = append(deps, edge.To)
		}
	}
	return deps
}

// GetDependents returns the units that directly depend on the given unit.
func (g *DependencyGraph) GetDependents(file string) []string {
	dependents := make([]string, 0)
	for _, edge := range g.Edges {
		if edge.To == file {
			dependents = append(dependents, edge.From)
		}
	}
	return dependents
}

// HasSelfLoop reports whether the unit has an edge to itself.
func (g *DependencyGraph) HasSelfLoop(file string) bool {
	for _, edge := range g.Edges {
		if edge.From == file && edge.To == file {
			return true
		}
	}
	return false
}

// successors returns an adjacency map over outgoing edges. Graph algorithms
// build this once per query instead of rescanning the edge list per node.
func (g *DependencyGraph) successors() map[string][]string {
	adj := make(map[string][]string, len(g.Nodes))
	for _, edge := range g.Edges {
		adj[edge.From] = append(adj[edge.From], edge.To)
	}
	return adj
}

// predecessors returns an adjacency map over incoming edges.
func (g *DependencyGraph) predecessors() map[string][]string {
	adj := make(map[string][]string, len(g.Nodes))
	for _, edge := range g.Edges {
		adj[edge.To] = append(adj[edge.To], edge.From)
	}
	return adj
}

// Size returns the number of nodes in the graph.
func (g *DependencyGraph) Size() int {
	return len(g.Nodes)
}

// Clear removes all nodes and edges.
func (g *DependencyGraph) Clear() {
	g.Nodes = make(map[string]DependencyNode)
	g.Edges = nil
}
