package incremental

import (
	"strings"
	"testing"
)

// chainCache models main.arc -> lib.arc -> core.arc with cache entries and
// a matching graph.
func chainCache() *CompilationCache {
	cache := NewCompilationCache()

	add := func(path string, deps ...string) {
		cache.Entries[path] = &CacheEntry{
			FilePath:     path,
			ContentHash:  "hash-" + path,
			Dependencies: deps,
		}
		cache.DependencyGraph.Nodes[path] = DependencyNode{
			FilePath: path, NodeType: NodeTypeSourceFile,
		}
		for _, dep := range deps {
			cache.DependencyGraph.Edges = append(cache.DependencyGraph.Edges, DependencyEdge{
				From: path, To: dep, EdgeType: EdgeTypeImport,
			})
		}
	}

	add("core.arc")
	add("lib.arc", "core.arc")
	add("main.arc", "lib.arc")
	return cache
}

func TestParseInvalidationStrategy(t *testing.T) {
	cases := []struct {
		name     string
		expected InvalidationStrategy
	}{
		{"conservative", StrategyConservative},
		{"Aggressive", StrategyAggressive},
		{"SELECTIVE", StrategySelective},
	}
	for _, tc := range cases {
		strategy, err := ParseInvalidationStrategy(tc.name)
		if err != nil {
			t.Errorf("ParseInvalidationStrategy(%q) failed: %v", tc.name, err)
		}
		if strategy != tc.expected {
			t.Errorf("ParseInvalidationStrategy(%q) = %v, expected %v", tc.name, strategy, tc.expected)
		}
	}

	if _, err := ParseInvalidationStrategy("eager"); err == nil {
		t.Error("Expected an error for an unknown strategy name")
	}
}

func TestInvalidationStrategy_StringRoundTrip(t *testing.T) {
	for _, strategy := range []InvalidationStrategy{StrategyConservative, StrategyAggressive, StrategySelective} {
		parsed, err := ParseInvalidationStrategy(strategy.String())
		if err != nil {
			t.Errorf("Round trip failed for %v: %v", strategy, err)
		}
		if parsed != strategy {
			t.Errorf("Round trip changed %v into %v", strategy, parsed)
		}
	}
}

func TestConservativeInvalidation_ChainSoundness(t *testing.T) {
	cache := chainCache()
	engine := NewInvalidationEngine(StrategyConservative)

	invalidated := engine.ComputeInvalidationSet(cache, []string{"core.arc"})

	for _, path := range []string{"core.arc", "lib.arc", "main.arc"} {
		if _, ok := invalidated[path]; !ok {
			t.Errorf("Expected %s in the invalidation set, got %v", path, sortedKeys(invalidated))
		}
	}
}

func TestConservativeInvalidation_LeafChange(t *testing.T) {
	cache := chainCache()
	engine := NewInvalidationEngine(StrategyConservative)

	// main.arc has no dependents, so only it recompiles.
	invalidated := engine.ComputeInvalidationSet(cache, []string{"main.arc"})
	if len(invalidated) != 1 {
		t.Errorf("Expected only main.arc, got %v", sortedKeys(invalidated))
	}
}

func TestAggressiveInvalidation_MatchesConservative(t *testing.T) {
	cache := chainCache()

	conservative := NewInvalidationEngine(StrategyConservative).ComputeInvalidationSet(cache, []string{"core.arc"})
	aggressive := NewInvalidationEngine(StrategyAggressive).ComputeInvalidationSet(cache, []string{"core.arc"})

	if len(conservative) != len(aggressive) {
		t.Fatalf("Strategies disagree: conservative %v, aggressive %v",
			sortedKeys(conservative), sortedKeys(aggressive))
	}
	for path := range conservative {
		if _, ok := aggressive[path]; !ok {
			t.Errorf("Aggressive set missing %s", path)
		}
	}
}

func TestSelectiveInvalidation_OnlyChangedFile(t *testing.T) {
	cache := chainCache()
	engine := NewInvalidationEngine(StrategySelective)

	invalidated := engine.ComputeInvalidationSet(cache, []string{"core.arc"})
	if len(invalidated) != 1 {
		t.Errorf("Expected only core.arc, got %v", sortedKeys(invalidated))
	}
	if _, ok := invalidated["core.arc"]; !ok {
		t.Error("Changed file missing from its own invalidation set")
	}
}

func TestInvalidation_UncachedChangedFile(t *testing.T) {
	cache := chainCache()
	engine := NewInvalidationEngine(StrategyConservative)

	invalidated := engine.ComputeInvalidationSet(cache, []string{"brand-new.arc"})
	if _, ok := invalidated["brand-new.arc"]; !ok {
		t.Error("A changed file outside the cache must still be invalidated")
	}
}

func TestGenerateInvalidationReport(t *testing.T) {
	cache := chainCache()

	report := GenerateInvalidationReport(
		[]string{"core.arc"},
		[]string{"core.arc", "lib.arc", "main.arc"},
		cache,
	)

	for _, fragment := range []string{
		"Changed Files: 1",
		"Invalidated Files: 3",
		"Invalidation Ratio: 3.00x",
		"lib.arc (depends on: core.arc)",
		"main.arc (transitive dependency)",
	} {
		if !strings.Contains(report, fragment) {
			t.Errorf("Report missing %q:\n%s", fragment, report)
		}
	}
}
