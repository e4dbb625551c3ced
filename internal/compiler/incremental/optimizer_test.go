package incremental

import (
	"reflect"
	"testing"
	"time"
)

// diamondCache models top.arc -> {left.arc, right.arc} -> base.arc.
func diamondCache() *CompilationCache {
	cache := NewCompilationCache()
	cache.Entries["base.arc"] = &CacheEntry{FilePath: "base.arc"}
	cache.Entries["left.arc"] = &CacheEntry{FilePath: "left.arc", Dependencies: []string{"base.arc"}}
	cache.Entries["right.arc"] = &CacheEntry{FilePath: "right.arc", Dependencies: []string{"base.arc"}}
	cache.Entries["top.arc"] = &CacheEntry{FilePath: "top.arc", Dependencies: []string{"left.arc", "right.arc"}}
	return cache
}

func TestOptimizeBuildOrder(t *testing.T) {
	optimizer := NewIncrementalOptimizer()
	cache := diamondCache()

	ordered := optimizer.OptimizeBuildOrder([]string{"top.arc", "left.arc", "base.arc"}, cache)
	expected := []string{"base.arc", "left.arc", "top.arc"}
	if !reflect.DeepEqual(ordered, expected) {
		t.Errorf("Expected %v, got %v", expected, ordered)
	}
}

func TestOptimizeBuildOrder_StableForTies(t *testing.T) {
	optimizer := NewIncrementalOptimizer()
	cache := diamondCache()

	// left and right both have one dependency; input order must hold.
	ordered := optimizer.OptimizeBuildOrder([]string{"right.arc", "left.arc"}, cache)
	if !reflect.DeepEqual(ordered, []string{"right.arc", "left.arc"}) {
		t.Errorf("Tie order not preserved: %v", ordered)
	}
}

func TestIdentifyParallelBatches_Diamond(t *testing.T) {
	optimizer := NewIncrementalOptimizer()
	cache := diamondCache()

	batches := optimizer.IdentifyParallelBatches(
		[]string{"base.arc", "left.arc", "right.arc", "top.arc"}, cache)

	expected := [][]string{
		{"base.arc"},
		{"left.arc", "right.arc"},
		{"top.arc"},
	}
	if !reflect.DeepEqual(batches, expected) {
		t.Errorf("Expected batches %v, got %v", expected, batches)
	}
}

func TestIdentifyParallelBatches_UncachedFilesAreReady(t *testing.T) {
	optimizer := NewIncrementalOptimizer()
	cache := NewCompilationCache()

	batches := optimizer.IdentifyParallelBatches([]string{"new1.arc", "new2.arc"}, cache)
	if len(batches) != 1 {
		t.Fatalf("Expected one batch, got %v", batches)
	}
	if !reflect.DeepEqual(batches[0], []string{"new1.arc", "new2.arc"}) {
		t.Errorf("Unexpected batch %v", batches[0])
	}
}

func TestIdentifyParallelBatches_StallsOnCycle(t *testing.T) {
	optimizer := NewIncrementalOptimizer()
	cache := NewCompilationCache()
	cache.Entries["a.arc"] = &CacheEntry{FilePath: "a.arc", Dependencies: []string{"b.arc"}}
	cache.Entries["b.arc"] = &CacheEntry{FilePath: "b.arc", Dependencies: []string{"a.arc"}}

	batches := optimizer.IdentifyParallelBatches([]string{"a.arc", "b.arc"}, cache)
	if len(batches) != 0 {
		t.Errorf("Expected no batches for a cyclic set, got %v", batches)
	}
}

func TestEstimateCompilationTime(t *testing.T) {
	optimizer := NewIncrementalOptimizer()
	cache := NewCompilationCache()
	cache.Entries["cached.arc"] = &CacheEntry{FilePath: "cached.arc"}

	estimate := optimizer.EstimateCompilationTime([]string{"cached.arc", "fresh.arc"}, cache)
	if estimate != 600*time.Millisecond {
		t.Errorf("Expected 600ms, got %v", estimate)
	}
}
