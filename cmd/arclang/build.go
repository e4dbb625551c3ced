package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mbaroudi/arclang-sub001/internal/cli/config"
	"github.com/Mbaroudi/arclang-sub001/internal/cli/ui"
	"github.com/Mbaroudi/arclang-sub001/internal/compiler/frontend"
	"github.com/Mbaroudi/arclang-sub001/internal/compiler/incremental"
)

var (
	buildJSON     bool
	buildVerbose  bool
	buildParallel bool
	buildStrategy string
	buildFull     bool
)

func init() {
	buildCmd.Flags().BoolVar(&buildJSON, "json", false, "Output the pass result in JSON format")
	buildCmd.Flags().BoolVar(&buildVerbose, "verbose", false, "Show detailed build output")
	buildCmd.Flags().BoolVar(&buildParallel, "parallel", false, "Compile independent units in parallel batches")
	buildCmd.Flags().StringVar(&buildStrategy, "strategy", "", "Invalidation strategy: conservative, aggressive, selective")
	buildCmd.Flags().BoolVar(&buildFull, "full", false, "Treat every model file as changed")
}

var buildCmd = &cobra.Command{
	Use:   "build [files...]",
	Short: "Incrementally compile the model",
	Long: `Compile .arc files incrementally. With file arguments, those files are
treated as the change set; without arguments, changed files are detected by
comparing content hashes against the cache.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if buildParallel {
			cfg.Build.Parallel = true
		}
		if buildStrategy != "" {
			cfg.Build.InvalidationStrategy = buildStrategy
		}

		engineCfg, err := cfg.EngineConfig()
		if err != nil {
			return err
		}

		compiler, err := incremental.NewIncrementalCompiler(engineCfg, frontend.New())
		if err != nil {
			return err
		}

		changed := args
		if len(changed) == 0 {
			files, err := findArcFiles(cfg.SourceDir)
			if err != nil {
				return err
			}
			if buildFull {
				changed = files
			} else {
				changed, err = detectChangedFiles(compiler, files)
				if err != nil {
					return err
				}
			}
		}

		if buildVerbose {
			fmt.Printf("Changed files: %d\n", len(changed))
		}

		result, err := compiler.CompileIncremental(changed)
		if err != nil {
			ui.Failure(os.Stderr, "build failed: %v", err)
			return fmt.Errorf("compilation failed")
		}

		if buildJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		}

		ui.Success(os.Stdout, "Build successful in %dms", result.CompilationTimeMS)
		ui.Detail(os.Stdout, "compiled: %d  cached: %d  invalidated: %d  hit ratio: %.2f",
			len(result.CompiledFiles), len(result.CachedFiles),
			len(result.InvalidatedFiles), result.CacheHitRatio)

		if buildVerbose {
			for _, file := range result.CompiledFiles {
				ui.Detail(os.Stdout, "compiled %s", file)
			}
		}

		return nil
	},
}
