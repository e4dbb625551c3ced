package incremental

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"
)

// CacheVersion is stamped into every persisted snapshot. There is no
// migration path across versions; a mismatched snapshot is rejected on load.
const CacheVersion = "1"

// cacheFileName is the single versioned blob under the cache directory.
const cacheFileName = "compilation_cache.bin"

// ArtifactType discriminates the closed set of cached compilation
// byproducts. Callers look artifacts up by (unit, type).
type ArtifactType int

const (
	ArtifactAST ArtifactType = iota
	ArtifactSemanticModel
	ArtifactTypeInfo
	ArtifactTraceabilityGraph
	ArtifactMetadata
)

// String returns a human-readable name for the artifact type.
func (at ArtifactType) String() string {
	switch at {
	case ArtifactAST:
		return "AST"
	case ArtifactSemanticModel:
		return "SemanticModel"
	case ArtifactTypeInfo:
		return "TypeInfo"
	case ArtifactTraceabilityGraph:
		return "TraceabilityGraph"
	case ArtifactMetadata:
		return "Metadata"
	default:
		return "Unknown"
	}
}

// Artifact is one typed, serialized byproduct of compiling a unit.
type Artifact struct {
	ArtifactType ArtifactType
	ContentHash  string
	SizeBytes    int
	Data         []byte
}

// CacheEntry records the cached outputs of one compilation unit.
// ContentHash reflects the unit's content at the time Artifacts were
// produced; a successful compile never leaves an entry with no artifacts.
type CacheEntry struct {
	FilePath        string
	ContentHash     string
	RecordedAt      time.Time
	CompiledAt      time.Time
	Artifacts       []Artifact
	Dependencies    []string
	SymbolsExported []string
	SymbolsImported []string
}

// ArtifactSize sums the artifact bytes recorded for this entry.
func (e *CacheEntry) ArtifactSize() int {
	total := 0
	for _, artifact := range e.Artifacts {
		total += artifact.SizeBytes
	}
	return total
}

// CompilationCache is the single mutable, persisted aggregate of the
// engine. It is loaded (or created fresh) at startup, mutated only by
// CacheManager on the orchestrator thread, and persisted as one versioned
// snapshot at the end of each successful pass.
type CompilationCache struct {
	Version         string
	Entries         map[string]*CacheEntry
	DependencyGraph *DependencyGraph
	LastFullBuild   *time.Time
}

// NewCompilationCache creates an empty cache at the current version.
func NewCompilationCache() *CompilationCache {
	return &CompilationCache{
		Version:         CacheVersion,
		Entries:         make(map[string]*CacheEntry),
		DependencyGraph: NewDependencyGraph(),
	}
}

// LoadOrCreateCache reads the persisted snapshot under cacheDir. A missing
// snapshot means "no cache yet" and yields a fresh empty cache; an
// unreadable or undecodable snapshot fails with CacheLoadError.
func LoadOrCreateCache(cacheDir string) (*CompilationCache, error) {
	cacheFile := filepath.Join(cacheDir, cacheFileName)

	file, err := os.Open(cacheFile)
	if err != nil {
		if os.IsNotExist(err) {
			return NewCompilationCache(), nil
		}
		return nil, &CacheLoadError{Reason: err}
	}
	defer file.Close()

	var cache CompilationCache
	if err := gob.NewDecoder(file).Decode(&cache); err != nil {
		return nil, &CacheLoadError{Reason: err}
	}

	if cache.Version != CacheVersion {
		return nil, &CacheLoadError{Reason: &InvalidCacheEntryError{
			Path:    cacheFile,
			Message: "snapshot version " + cache.Version + " does not match " + CacheVersion,
		}}
	}

	if cache.Entries == nil {
		cache.Entries = make(map[string]*CacheEntry)
	}
	if cache.DependencyGraph == nil {
		cache.DependencyGraph = NewDependencyGraph()
	}
	if cache.DependencyGraph.Nodes == nil {
		cache.DependencyGraph.Nodes = make(map[string]DependencyNode)
	}

	return &cache, nil
}

// Save persists the cache as one snapshot under cacheDir. The snapshot is
// written to a temporary file then renamed, so the on-disk cache always
// reflects a complete, self-consistent pass.
func (c *CompilationCache) Save(cacheDir string) error {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return &CacheSaveError{Reason: err}
	}

	cacheFile := filepath.Join(cacheDir, cacheFileName)
	tmpFile := cacheFile + ".tmp"

	file, err := os.Create(tmpFile)
	if err != nil {
		return &CacheSaveError{Reason: err}
	}

	if err := gob.NewEncoder(file).Encode(c); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return &CacheSaveError{Reason: err}
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpFile)
		return &CacheSaveError{Reason: err}
	}

	if err := os.Rename(tmpFile, cacheFile); err != nil {
		os.Remove(tmpFile)
		return &CacheSaveError{Reason: err}
	}

	return nil
}
