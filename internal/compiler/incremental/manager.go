package incremental

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// CacheManager performs all mutation of a CompilationCache: entry updates,
// invalidation, clearing, and size-budget eviction. It runs on the
// orchestrator thread only.
type CacheManager struct {
	config Config
}

// NewCacheManager creates a cache manager with the given engine config.
func NewCacheManager(config Config) *CacheManager {
	return &CacheManager{config: config}
}

// UpdateCache replaces the cache entry and the outgoing graph edges for
// every compiled unit. Entry and edges are swapped together, never leaving
// a half-updated node/edge pair, then the size budget is enforced.
func (cm *CacheManager) UpdateCache(cache *CompilationCache, units []*CompiledUnit) error {
	for _, unit := range units {
		if len(unit.Artifacts) == 0 {
			return &InvalidCacheEntryError{
				Path:    unit.FilePath,
				Message: "compiled unit has no artifacts",
			}
		}

		now := time.Now()
		cache.Entries[unit.FilePath] = &CacheEntry{
			FilePath:        unit.FilePath,
			ContentHash:     unit.ContentHash,
			RecordedAt:      now,
			CompiledAt:      now,
			Artifacts:       unit.Artifacts,
			Dependencies:    unit.Dependencies,
			SymbolsExported: unit.SymbolsExported,
			SymbolsImported: unit.SymbolsImported,
		}

		cm.replaceGraphEntry(cache.DependencyGraph, unit)
	}

	cm.EnforceCacheSizeLimit(cache)

	return nil
}

// replaceGraphEntry swaps the node and outgoing edges for one unit. Stale
// edges for removed dependencies are dropped, new ones added.
func (cm *CacheManager) replaceGraphEntry(graph *DependencyGraph, unit *CompiledUnit) {
	graph.Nodes[unit.FilePath] = DependencyNode{
		FilePath:         unit.FilePath,
		ContentHash:      unit.ContentHash,
		NodeType:         NodeTypeSourceFile,
		ExportedElements: unit.SymbolsExported,
	}

	kept := graph.Edges[:0]
	for _, edge := range graph.Edges {
		if edge.From != unit.FilePath {
			kept = append(kept, edge)
		}
	}
	graph.Edges = kept

	for _, dep := range unit.Dependencies {
		graph.Edges = append(graph.Edges, DependencyEdge{
			From:     unit.FilePath,
			To:       dep,
			EdgeType: EdgeTypeImport,
		})
	}
}

// GetCachedArtifact is a pure lookup of an artifact by (unit, type). It
// performs no validity check; the caller must have confirmed validity.
func (cm *CacheManager) GetCachedArtifact(cache *CompilationCache, file string, artifactType ArtifactType) ([]byte, bool) {
	entry, ok := cache.Entries[file]
	if !ok {
		return nil, false
	}
	for _, artifact := range entry.Artifacts {
		if artifact.ArtifactType == artifactType {
			return artifact.Data, true
		}
	}
	return nil, false
}

// InvalidateFile removes the entry for file and, transitively, every
// current dependent. Conservative on purpose: soundness over cache reuse.
// Graph edges for removed entries are retained for provenance. Returns the
// removed unit paths.
func (cm *CacheManager) InvalidateFile(cache *CompilationCache, file string) []string {
	builder := NewDependencyGraphBuilderFor(cache.DependencyGraph)

	removed := make([]string, 0)
	if _, ok := cache.Entries[file]; ok {
		delete(cache.Entries, file)
		removed = append(removed, file)
	}

	for dependent := range builder.GetTransitiveDependents(file) {
		if _, ok := cache.Entries[dependent]; ok {
			delete(cache.Entries, dependent)
			removed = append(removed, dependent)
		}
	}

	sort.Strings(removed)
	return removed
}

// ClearCache empties entries and graph, resets the last full build marker,
// and deletes the persisted cache directory.
func (cm *CacheManager) ClearCache(cache *CompilationCache) error {
	cache.Entries = make(map[string]*CacheEntry)
	cache.DependencyGraph.Clear()
	cache.LastFullBuild = nil

	if _, err := os.Stat(cm.config.CacheDir); err == nil {
		if err := os.RemoveAll(cm.config.CacheDir); err != nil {
			return &CacheSaveError{Reason: err}
		}
	}

	return nil
}

// EnforceCacheSizeLimit evicts entries, oldest CompiledAt first, until the
// summed artifact bytes fit the configured budget or no eligible entries
// remain. Best effort: it never errors; under-eviction shows up in stats.
func (cm *CacheManager) EnforceCacheSizeLimit(cache *CompilationCache) {
	totalBytes := 0
	for _, entry := range cache.Entries {
		totalBytes += entry.ArtifactSize()
	}

	budgetBytes := cm.config.MaxCacheSizeMB * 1024 * 1024
	if totalBytes <= budgetBytes {
		return
	}

	byAge := make([]*CacheEntry, 0, len(cache.Entries))
	for _, entry := range cache.Entries {
		byAge = append(byAge, entry)
	}
	sort.Slice(byAge, func(i, j int) bool {
		if !byAge[i].CompiledAt.Equal(byAge[j].CompiledAt) {
			return byAge[i].CompiledAt.Before(byAge[j].CompiledAt)
		}
		return byAge[i].FilePath < byAge[j].FilePath
	})

	for _, entry := range byAge {
		if totalBytes <= budgetBytes {
			break
		}
		totalBytes -= entry.ArtifactSize()
		delete(cache.Entries, entry.FilePath)
	}
}

// CacheStats is a read-only aggregation over the cache.
type CacheStats struct {
	TotalEntries   int
	TotalSizeMB    float64
	ArtifactCounts map[ArtifactType]int
	OldestEntry    *time.Time
	NewestEntry    *time.Time
	LastFullBuild  *time.Time
	OverBudget     bool
}

// GetCacheStats aggregates entry counts, artifact sizes, per-artifact-type
// counts, and compile-time extremes.
func (cm *CacheManager) GetCacheStats(cache *CompilationCache) CacheStats {
	stats := CacheStats{
		TotalEntries:   len(cache.Entries),
		ArtifactCounts: make(map[ArtifactType]int),
		LastFullBuild:  cache.LastFullBuild,
	}

	totalBytes := 0
	for _, entry := range cache.Entries {
		totalBytes += entry.ArtifactSize()
		for _, artifact := range entry.Artifacts {
			stats.ArtifactCounts[artifact.ArtifactType]++
		}

		compiledAt := entry.CompiledAt
		if stats.OldestEntry == nil || compiledAt.Before(*stats.OldestEntry) {
			t := compiledAt
			stats.OldestEntry = &t
		}
		if stats.NewestEntry == nil || compiledAt.After(*stats.NewestEntry) {
			t := compiledAt
			stats.NewestEntry = &t
		}
	}

	stats.TotalSizeMB = float64(totalBytes) / (1024.0 * 1024.0)
	stats.OverBudget = totalBytes > cm.config.MaxCacheSizeMB*1024*1024

	return stats
}

// FormatCacheReport renders the human-readable cache report.
func (cm *CacheManager) FormatCacheReport(cache *CompilationCache) string {
	stats := cm.GetCacheStats(cache)

	utilization := 0.0
	if cm.config.MaxCacheSizeMB > 0 {
		utilization = stats.TotalSizeMB / float64(cm.config.MaxCacheSizeMB) * 100.0
	}

	var report strings.Builder
	report.WriteString("ArcLang Compilation Cache Report\n")
	report.WriteString("=================================\n\n")
	fmt.Fprintf(&report, "Total Entries: %d\n", stats.TotalEntries)
	fmt.Fprintf(&report, "Total Size: %.2f MB\n", stats.TotalSizeMB)
	fmt.Fprintf(&report, "Max Cache Size: %d MB\n", cm.config.MaxCacheSizeMB)
	fmt.Fprintf(&report, "Cache Utilization: %.1f%%\n\n", utilization)

	report.WriteString("Artifact Breakdown:\n")
	types := make([]ArtifactType, 0, len(stats.ArtifactCounts))
	for artifactType := range stats.ArtifactCounts {
		types = append(types, artifactType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, artifactType := range types {
		fmt.Fprintf(&report, "  %s: %d\n", artifactType, stats.ArtifactCounts[artifactType])
	}
	report.WriteString("\n")

	fmt.Fprintf(&report, "Oldest Entry: %s\n", formatTimestamp(stats.OldestEntry, "N/A"))
	fmt.Fprintf(&report, "Newest Entry: %s\n", formatTimestamp(stats.NewestEntry, "N/A"))
	fmt.Fprintf(&report, "Last Full Build: %s\n", formatTimestamp(stats.LastFullBuild, "Never"))

	return report.String()
}

// ExportCacheReport writes the cache report to the given path.
func (cm *CacheManager) ExportCacheReport(cache *CompilationCache, outputPath string) error {
	report := cm.FormatCacheReport(cache)
	if err := os.WriteFile(outputPath, []byte(report), 0644); err != nil {
		return &CacheSaveError{Reason: err}
	}
	return nil
}

func formatTimestamp(t *time.Time, fallback string) string {
	if t == nil {
		return fallback
	}
	return t.Format(time.RFC3339)
}
