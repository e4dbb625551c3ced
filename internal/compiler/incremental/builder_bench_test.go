package incremental

import (
	"fmt"
	"testing"
)

// deepChainBuilder builds a linear chain of n units, unit i depending on
// unit i+1.
func deepChainBuilder(n int) *DependencyGraphBuilder {
	builder := NewDependencyGraphBuilder()
	for i := 0; i < n; i++ {
		builder.AddNode(DependencyNode{
			FilePath: fmt.Sprintf("unit_%05d.arc", i),
			NodeType: NodeTypeSourceFile,
		})
	}
	for i := 0; i < n-1; i++ {
		builder.AddEdge(DependencyEdge{
			From:     fmt.Sprintf("unit_%05d.arc", i),
			To:       fmt.Sprintf("unit_%05d.arc", i+1),
			EdgeType: EdgeTypeImport,
		})
	}
	return builder
}

// The explicit work stack must survive chains far deeper than Go's default
// goroutine stack would allow with recursion.
func BenchmarkComputeCompilationOrder_DeepChain(b *testing.B) {
	builder := deepChainBuilder(10000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := builder.ComputeCompilationOrder(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFindStronglyConnectedComponents_DeepChain(b *testing.B) {
	builder := deepChainBuilder(10000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		builder.FindStronglyConnectedComponents()
	}
}

func BenchmarkGetTransitiveDependents(b *testing.B) {
	builder := deepChainBuilder(10000)
	leaf := fmt.Sprintf("unit_%05d.arc", 9999)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		builder.GetTransitiveDependents(leaf)
	}
}

func BenchmarkHashContent(b *testing.B) {
	hasher := NewContentHasher()
	content := make([]byte, 64*1024)
	b.SetBytes(int64(len(content)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		hasher.HashContent(content)
	}
}
