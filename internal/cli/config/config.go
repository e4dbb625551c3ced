// Package config loads toolchain configuration from arclang.yml with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"

	"github.com/Mbaroudi/arclang-sub001/internal/compiler/incremental"
)

// Config represents the ArcLang toolchain configuration.
type Config struct {
	ProjectName string      `mapstructure:"project_name"`
	SourceDir   string      `mapstructure:"source_dir"`
	Cache       CacheConfig `mapstructure:"cache"`
	Build       BuildConfig `mapstructure:"build"`
}

// CacheConfig configures the incremental compilation cache.
type CacheConfig struct {
	Dir       string `mapstructure:"dir"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
	Strategy  string `mapstructure:"strategy"`
}

// BuildConfig configures how incremental passes execute.
type BuildConfig struct {
	Parallel             bool   `mapstructure:"parallel"`
	Threads              int    `mapstructure:"threads"`
	InvalidationStrategy string `mapstructure:"invalidation_strategy"`
}

// Load loads the configuration from arclang.yml or arclang.yaml in the
// current directory, falling back to defaults when no file exists.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("source_dir", "model")
	v.SetDefault("cache.dir", filepath.Join(".arclang", "cache"))
	v.SetDefault("cache.max_size_mb", 100)
	v.SetDefault("cache.strategy", "content")
	v.SetDefault("build.parallel", false)
	v.SetDefault("build.threads", runtime.NumCPU())
	v.SetDefault("build.invalidation_strategy", "conservative")

	v.SetConfigName("arclang")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ARCLANG")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// EngineConfig translates the file configuration into the engine's Config.
func (c *Config) EngineConfig() (incremental.Config, error) {
	strategy, err := incremental.ParseInvalidationStrategy(c.Build.InvalidationStrategy)
	if err != nil {
		return incremental.Config{}, err
	}

	cacheStrategy, err := parseCacheStrategy(c.Cache.Strategy)
	if err != nil {
		return incremental.Config{}, err
	}

	return incremental.Config{
		CacheDir:             c.Cache.Dir,
		MaxCacheSizeMB:       c.Cache.MaxSizeMB,
		EnableParallel:       c.Build.Parallel,
		NumThreads:           c.Build.Threads,
		CacheStrategy:        cacheStrategy,
		InvalidationStrategy: strategy,
	}, nil
}

func parseCacheStrategy(name string) (incremental.CacheStrategy, error) {
	switch name {
	case "", "content":
		return incremental.CacheStrategyContentBased, nil
	case "timestamp":
		return incremental.CacheStrategyTimestampBased, nil
	case "hybrid":
		return incremental.CacheStrategyHybrid, nil
	default:
		return incremental.CacheStrategyContentBased, fmt.Errorf("unknown cache strategy: %q", name)
	}
}

// InProject checks if the current directory is an ArcLang project.
func InProject() bool {
	if _, err := os.Stat("arclang.yml"); err == nil {
		return true
	}
	if _, err := os.Stat("arclang.yaml"); err == nil {
		return true
	}
	if _, err := os.Stat("model"); err == nil {
		return true
	}
	return false
}

// validateConfig validates the configuration values.
func validateConfig(cfg *Config) error {
	if cfg.Cache.MaxSizeMB <= 0 {
		return fmt.Errorf("cache.max_size_mb must be positive, got: %d", cfg.Cache.MaxSizeMB)
	}
	if cfg.Build.Threads < 1 {
		return fmt.Errorf("build.threads must be at least 1, got: %d", cfg.Build.Threads)
	}
	if _, err := incremental.ParseInvalidationStrategy(cfg.Build.InvalidationStrategy); err != nil {
		return err
	}
	if _, err := parseCacheStrategy(cfg.Cache.Strategy); err != nil {
		return err
	}
	return nil
}
