package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mbaroudi/arclang-sub001/internal/compiler/incremental"
)

// chdir moves into dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	previous, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(previous)
	})
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "model", cfg.SourceDir)
	assert.Equal(t, filepath.Join(".arclang", "cache"), cfg.Cache.Dir)
	assert.Equal(t, 100, cfg.Cache.MaxSizeMB)
	assert.Equal(t, "content", cfg.Cache.Strategy)
	assert.False(t, cfg.Build.Parallel)
	assert.Equal(t, runtime.NumCPU(), cfg.Build.Threads)
	assert.Equal(t, "conservative", cfg.Build.InvalidationStrategy)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `project_name: flight-control
source_dir: src

cache:
  dir: .build/cache
  max_size_mb: 50
  strategy: content

build:
  parallel: true
  threads: 2
  invalidation_strategy: selective
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "arclang.yml"), []byte(content), 0644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "flight-control", cfg.ProjectName)
	assert.Equal(t, "src", cfg.SourceDir)
	assert.Equal(t, ".build/cache", cfg.Cache.Dir)
	assert.Equal(t, 50, cfg.Cache.MaxSizeMB)
	assert.True(t, cfg.Build.Parallel)
	assert.Equal(t, 2, cfg.Build.Threads)
	assert.Equal(t, "selective", cfg.Build.InvalidationStrategy)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{
			name:    "zero cache size",
			content: "cache:\n  max_size_mb: 0\n",
		},
		{
			name:    "zero threads",
			content: "build:\n  threads: 0\n",
		},
		{
			name:    "unknown invalidation strategy",
			content: "build:\n  invalidation_strategy: eager\n",
		},
		{
			name:    "unknown cache strategy",
			content: "cache:\n  strategy: mtime\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "arclang.yml"), []byte(tc.content), 0644))
			chdir(t, dir)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestEngineConfig(t *testing.T) {
	cfg := &Config{
		SourceDir: "model",
		Cache: CacheConfig{
			Dir:       ".arclang/cache",
			MaxSizeMB: 64,
			Strategy:  "hybrid",
		},
		Build: BuildConfig{
			Parallel:             true,
			Threads:              8,
			InvalidationStrategy: "aggressive",
		},
	}

	engineCfg, err := cfg.EngineConfig()
	require.NoError(t, err)

	assert.Equal(t, ".arclang/cache", engineCfg.CacheDir)
	assert.Equal(t, 64, engineCfg.MaxCacheSizeMB)
	assert.True(t, engineCfg.EnableParallel)
	assert.Equal(t, 8, engineCfg.NumThreads)
	assert.Equal(t, incremental.CacheStrategyHybrid, engineCfg.CacheStrategy)
	assert.Equal(t, incremental.StrategyAggressive, engineCfg.InvalidationStrategy)
}

func TestInProject(t *testing.T) {
	empty := t.TempDir()
	chdir(t, empty)
	assert.False(t, InProject())

	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, "arclang.yml"), []byte("project_name: x\n"), 0644))
	chdir(t, project)
	assert.True(t, InProject())
}
