package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Mbaroudi/arclang-sub001/internal/cli/config"
	"github.com/Mbaroudi/arclang-sub001/internal/compiler/frontend"
	"github.com/Mbaroudi/arclang-sub001/internal/compiler/incremental"
)

// loadToolchain loads arclang.yml and opens the incremental compiler over
// the configured cache directory.
func loadToolchain() (*config.Config, *incremental.IncrementalCompiler, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return nil, nil, err
	}

	compiler, err := incremental.NewIncrementalCompiler(engineCfg, frontend.New())
	if err != nil {
		return nil, nil, err
	}

	return cfg, compiler, nil
}

// findArcFiles returns every .arc file under dir, sorted.
func findArcFiles(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s/ directory not found - are you in an ArcLang project?", dir)
	}

	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".arc" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// detectChangedFiles compares each file's content hash against its cache
// entry and returns the files that are new or differ.
func detectChangedFiles(compiler *incremental.IncrementalCompiler, files []string) ([]string, error) {
	hasher := incremental.NewContentHasher()
	cache := compiler.Cache()

	changed := make([]string, 0)
	for _, file := range files {
		entry, ok := cache.Entries[file]
		if !ok {
			changed = append(changed, file)
			continue
		}

		hash, err := hasher.HashFile(file)
		if err != nil {
			return nil, err
		}
		if hash != entry.ContentHash {
			changed = append(changed, file)
		}
	}

	return changed, nil
}
