package incremental

import (
	"sort"
	"time"
)

// Per-file compile cost heuristics used only for telemetry, never for
// scheduling correctness.
const (
	estimateCachedPerFile   = 100 * time.Millisecond
	estimateUncachedPerFile = 500 * time.Millisecond
)

// IncrementalOptimizer orders pending work heuristically and partitions it
// into dependency-respecting parallel batches.
type IncrementalOptimizer struct{}

// NewIncrementalOptimizer creates an optimizer.
func NewIncrementalOptimizer() *IncrementalOptimizer {
	return &IncrementalOptimizer{}
}

// OptimizeBuildOrder sorts files ascending by recorded dependency count,
// front-loading likely leaves. A heuristic only: true execution order still
// follows the real topological sort.
func (io *IncrementalOptimizer) OptimizeBuildOrder(files []string, cache *CompilationCache) []string {
	ordered := append([]string(nil), files...)

	depCount := func(file string) int {
		if entry, ok := cache.Entries[file]; ok {
			return len(entry.Dependencies)
		}
		return 0
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return depCount(ordered[i]) < depCount(ordered[j])
	})

	return ordered
}

// IdentifyParallelBatches repeatedly peels off the subset of remaining
// files whose recorded dependencies all lie outside the remaining set. It
// stops when the set is empty or no file qualifies; the latter leaves files
// unscheduled rather than erroring.
func (io *IncrementalOptimizer) IdentifyParallelBatches(files []string, cache *CompilationCache) [][]string {
	remaining := make(map[string]struct{}, len(files))
	for _, file := range files {
		remaining[file] = struct{}{}
	}

	batches := make([][]string, 0)

	for len(remaining) > 0 {
		batch := make([]string, 0)

		for file := range remaining {
			entry, ok := cache.Entries[file]
			if !ok {
				batch = append(batch, file)
				continue
			}

			ready := true
			for _, dep := range entry.Dependencies {
				if _, pending := remaining[dep]; pending {
					ready = false
					break
				}
			}
			if ready {
				batch = append(batch, file)
			}
		}

		if len(batch) == 0 {
			break
		}

		sort.Strings(batch)
		for _, file := range batch {
			delete(remaining, file)
		}
		batches = append(batches, batch)
	}

	return batches
}

// EstimateCompilationTime returns a constant-per-file estimate of the work
// ahead, cheaper for files already cached.
func (io *IncrementalOptimizer) EstimateCompilationTime(files []string, cache *CompilationCache) time.Duration {
	var total time.Duration
	for _, file := range files {
		if _, ok := cache.Entries[file]; ok {
			total += estimateCachedPerFile
		} else {
			total += estimateUncachedPerFile
		}
	}
	return total
}
