package incremental

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Mbaroudi/arclang-sub001/internal/compiler/frontend"
)

// CacheStrategy is accepted from the caller and persisted in config for
// forward compatibility. Invalidation logic does not consult it.
type CacheStrategy int

const (
	CacheStrategyContentBased CacheStrategy = iota
	CacheStrategyTimestampBased
	CacheStrategyHybrid
)

// Config is the engine configuration accepted from the caller.
type Config struct {
	CacheDir             string
	MaxCacheSizeMB       int
	EnableParallel       bool
	NumThreads           int
	CacheStrategy        CacheStrategy
	InvalidationStrategy InvalidationStrategy
}

// DefaultConfig returns the engine defaults used by the CLI.
func DefaultConfig() Config {
	return Config{
		CacheDir:             filepath.Join(".arclang", "cache"),
		MaxCacheSizeMB:       100,
		EnableParallel:       false,
		NumThreads:           runtime.NumCPU(),
		CacheStrategy:        CacheStrategyContentBased,
		InvalidationStrategy: StrategyConservative,
	}
}

// CompiledUnit is the output of compiling one unit, ready to become a
// cache entry.
type CompiledUnit struct {
	FilePath        string
	ContentHash     string
	Artifacts       []Artifact
	Dependencies    []string
	SymbolsExported []string
	SymbolsImported []string
}

// IncrementalCompileResult summarizes one incremental pass.
type IncrementalCompileResult struct {
	PassID            string
	Success           bool
	CompiledFiles     []string
	CachedFiles       []string
	InvalidatedFiles  []string
	CompilationTimeMS int64
	CacheHitRatio     float64
}

// IncrementalCompiler orchestrates an incremental pass: invalidation,
// dependency ordering, sequential or batch-parallel compilation, cache
// update, and persistence. It is the only engine component with external
// side effects. All cache mutation happens on the caller's goroutine,
// strictly after parallel work has completed.
type IncrementalCompiler struct {
	config       Config
	cache        *CompilationCache
	manager      *CacheManager
	invalidation *InvalidationEngine
	optimizer    *IncrementalOptimizer
	hasher       *ContentHasher
	frontEnd     frontend.FrontEnd
}

// NewIncrementalCompiler loads (or creates) the persisted cache under the
// configured directory and wires the engine components together.
func NewIncrementalCompiler(config Config, fe frontend.FrontEnd) (*IncrementalCompiler, error) {
	cache, err := LoadOrCreateCache(config.CacheDir)
	if err != nil {
		return nil, err
	}

	if config.NumThreads < 1 {
		config.NumThreads = 1
	}

	return &IncrementalCompiler{
		config:       config,
		cache:        cache,
		manager:      NewCacheManager(config),
		invalidation: NewInvalidationEngine(config.InvalidationStrategy),
		optimizer:    NewIncrementalOptimizer(),
		hasher:       NewContentHasher(),
		frontEnd:     fe,
	}, nil
}

// Cache exposes the in-memory cache aggregate for read-only inspection.
func (ic *IncrementalCompiler) Cache() *CompilationCache {
	return ic.cache
}

// Config returns the engine configuration.
func (ic *IncrementalCompiler) Config() Config {
	return ic.config
}

// Manager exposes the cache manager for explicit maintenance operations
// (clear, report, stats) driven by the CLI.
func (ic *IncrementalCompiler) Manager() *CacheManager {
	return ic.manager
}

// GraphBuilder returns a builder over the cached dependency graph for
// diagnostics (DOT export, impact analysis, SCC listing).
func (ic *IncrementalCompiler) GraphBuilder() *DependencyGraphBuilder {
	return NewDependencyGraphBuilderFor(ic.cache.DependencyGraph)
}

// CompileIncremental runs one incremental pass over the changed files.
// A failure in any unit aborts the pass; units already compiled this pass
// are discarded rather than partially merged, so the previous on-disk
// cache stays authoritative until a fully successful pass completes.
func (ic *IncrementalCompiler) CompileIncremental(changedFiles []string) (*IncrementalCompileResult, error) {
	start := time.Now()
	passID := uuid.NewString()

	if len(changedFiles) == 0 {
		return &IncrementalCompileResult{
			PassID:            passID,
			Success:           true,
			CompiledFiles:     []string{},
			CachedFiles:       ic.cachedPaths(nil),
			InvalidatedFiles:  []string{},
			CompilationTimeMS: time.Since(start).Milliseconds(),
			CacheHitRatio:     1.0,
		}, nil
	}

	invalidatedSet, err := ic.computeInvalidationSet(changedFiles)
	if err != nil {
		return nil, err
	}

	ordered, err := ic.orderByDependencies(invalidatedSet)
	if err != nil {
		return nil, err
	}

	var compiled []*CompiledUnit
	if ic.config.EnableParallel {
		compiled, err = ic.compileParallel(ordered)
	} else {
		compiled, err = ic.compileSequential(ordered)
	}
	if err != nil {
		return nil, err
	}

	if err := ic.manager.UpdateCache(ic.cache, compiled); err != nil {
		return nil, err
	}

	if len(compiled) > 0 && len(compiled) == len(ic.cache.Entries) {
		now := time.Now()
		ic.cache.LastFullBuild = &now
	}

	if err := ic.cache.Save(ic.config.CacheDir); err != nil {
		return nil, err
	}

	compiledPaths := make([]string, 0, len(compiled))
	compiledSet := make(map[string]struct{}, len(compiled))
	for _, unit := range compiled {
		compiledPaths = append(compiledPaths, unit.FilePath)
		compiledSet[unit.FilePath] = struct{}{}
	}

	cachedPaths := ic.cachedPaths(compiledSet)
	total := len(ic.cache.Entries)
	hitRatio := 0.0
	if total > 0 {
		hitRatio = float64(len(cachedPaths)) / float64(total)
	}

	return &IncrementalCompileResult{
		PassID:            passID,
		Success:           true,
		CompiledFiles:     compiledPaths,
		CachedFiles:       cachedPaths,
		InvalidatedFiles:  sortedKeys(invalidatedSet),
		CompilationTimeMS: time.Since(start).Milliseconds(),
		CacheHitRatio:     hitRatio,
	}, nil
}

// computeInvalidationSet confirms via content hash that each changed file
// actually differs from its cached hash before letting the strategy
// propagate to dependents. The result always contains the changed files
// themselves.
func (ic *IncrementalCompiler) computeInvalidationSet(changedFiles []string) (map[string]struct{}, error) {
	confirmed := make([]string, 0, len(changedFiles))
	for _, file := range changedFiles {
		entry, ok := ic.cache.Entries[file]
		if !ok {
			confirmed = append(confirmed, file)
			continue
		}

		currentHash, err := ic.hasher.HashFile(file)
		if err != nil {
			return nil, err
		}
		if currentHash != entry.ContentHash {
			confirmed = append(confirmed, file)
		}
	}

	invalidated := ic.invalidation.ComputeInvalidationSet(ic.cache, confirmed)
	for _, file := range changedFiles {
		invalidated[file] = struct{}{}
	}

	return invalidated, nil
}

// orderByDependencies emits the invalidation set in dependency-first order
// using the recorded dependency lists. Traversal follows dependencies
// outside the set too (they fix the relative order and can expose cycles)
// but only set members appear in the result. A cycle touching any reachable
// unit aborts with CyclicDependencyError.
func (ic *IncrementalCompiler) orderByDependencies(set map[string]struct{}) ([]string, error) {
	roots := sortedKeys(set)
	state := make(map[string]int)
	ordered := make([]string, 0, len(roots))

	for _, root := range roots {
		if state[root] != colorUnvisited {
			continue
		}

		state[root] = colorVisiting
		stack := []dfsFrame{{node: root}}

		for len(stack) > 0 {
			frame := &stack[len(stack)-1]

			var deps []string
			if entry, ok := ic.cache.Entries[frame.node]; ok {
				deps = entry.Dependencies
			}

			if frame.next < len(deps) {
				dep := deps[frame.next]
				frame.next++

				switch state[dep] {
				case colorVisiting:
					return nil, &CyclicDependencyError{Unit: dep}
				case colorUnvisited:
					state[dep] = colorVisiting
					stack = append(stack, dfsFrame{node: dep})
				}
				continue
			}

			state[frame.node] = colorVisited
			if _, member := set[frame.node]; member {
				ordered = append(ordered, frame.node)
			}
			stack = stack[:len(stack)-1]
		}
	}

	return ordered, nil
}

func (ic *IncrementalCompiler) compileSequential(files []string) ([]*CompiledUnit, error) {
	compiled := make([]*CompiledUnit, 0, len(files))
	for _, file := range files {
		unit, err := ic.compileSingleFile(file)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, unit)
	}
	return compiled, nil
}

// compileParallel dispatches each ready batch onto a bounded worker group
// and joins before the next batch starts, so a dependency always finishes
// before any of its dependents begin. Workers only read committed cache
// state; nothing is merged until every batch has succeeded.
func (ic *IncrementalCompiler) compileParallel(files []string) ([]*CompiledUnit, error) {
	batches := ic.optimizer.IdentifyParallelBatches(files, ic.cache)

	scheduled := make(map[string]struct{})
	units := make(map[string]*CompiledUnit, len(files))

	for _, batch := range batches {
		var group errgroup.Group
		group.SetLimit(ic.config.NumThreads)

		results := make([]*CompiledUnit, len(batch))
		for i, file := range batch {
			i, file := i, file
			scheduled[file] = struct{}{}
			group.Go(func() error {
				unit, err := ic.compileSingleFile(file)
				if err != nil {
					return err
				}
				results[i] = unit
				return nil
			})
		}

		if err := group.Wait(); err != nil {
			return nil, err
		}

		for _, unit := range results {
			units[unit.FilePath] = unit
		}
	}

	// Batch peeling can leave files unscheduled when recorded dependency
	// lists stall the ready set. Finish those sequentially in topological
	// order instead of dropping them.
	for _, file := range files {
		if _, done := scheduled[file]; done {
			continue
		}
		unit, err := ic.compileSingleFile(file)
		if err != nil {
			return nil, err
		}
		units[file] = unit
	}

	ordered := make([]*CompiledUnit, 0, len(units))
	for _, file := range files {
		if unit, ok := units[file]; ok {
			ordered = append(ordered, unit)
		}
	}

	return ordered, nil
}

// compileSingleFile reads, hashes, and hands the unit to the front end,
// then wraps the parsed file and its semantic model as typed artifacts.
func (ic *IncrementalCompiler) compileSingleFile(file string) (*CompiledUnit, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, &FileReadError{Path: file, Reason: err}
	}

	contentHash := ic.hasher.HashContent(content)

	parsed, err := ic.frontEnd.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	info, err := ic.frontEnd.Analyze(parsed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	dependencies := make([]string, 0)
	for _, dep := range ic.frontEnd.ExtractDependencies(parsed) {
		dependencies = append(dependencies, resolveDependency(file, dep))
	}

	astData, err := parsed.Encode()
	if err != nil {
		return nil, &SerializationError{Reason: err}
	}

	var semanticBuf bytes.Buffer
	if err := gob.NewEncoder(&semanticBuf).Encode(info); err != nil {
		return nil, &SerializationError{Reason: err}
	}
	semanticData := semanticBuf.Bytes()

	return &CompiledUnit{
		FilePath:    file,
		ContentHash: contentHash,
		Artifacts: []Artifact{
			{
				ArtifactType: ArtifactAST,
				ContentHash:  contentHash,
				SizeBytes:    len(astData),
				Data:         astData,
			},
			{
				ArtifactType: ArtifactSemanticModel,
				ContentHash:  contentHash,
				SizeBytes:    len(semanticData),
				Data:         semanticData,
			},
		},
		Dependencies:    dependencies,
		SymbolsExported: info.ExportedSymbols,
		SymbolsImported: info.ImportedSymbols,
	}, nil
}

// resolveDependency maps an import path to a unit id relative to the
// importing file's directory, leaving absolute paths alone.
func resolveDependency(fromFile, dep string) string {
	if filepath.IsAbs(dep) {
		return dep
	}
	return filepath.Join(filepath.Dir(fromFile), dep)
}

// cachedPaths lists every cache entry path not in the exclude set, sorted.
func (ic *IncrementalCompiler) cachedPaths(exclude map[string]struct{}) []string {
	paths := make([]string, 0, len(ic.cache.Entries))
	for path := range ic.cache.Entries {
		if _, skip := exclude[path]; skip {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
