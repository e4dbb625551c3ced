package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mbaroudi/arclang-sub001/internal/cli/ui"
	"github.com/Mbaroudi/arclang-sub001/internal/compiler/incremental"
)

var cacheReportOutput string

func init() {
	cacheReportCmd.Flags().StringVarP(&cacheReportOutput, "output", "o", "", "Write the report to a file instead of stdout")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheReportCmd)
	cacheCmd.AddCommand(cacheValidateCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the compilation cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts and size",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, compiler, err := loadToolchain()
		if err != nil {
			return err
		}

		stats := compiler.Manager().GetCacheStats(compiler.Cache())

		table := ui.NewTable(os.Stdout, "METRIC", "VALUE")
		table.AddRow("entries", fmt.Sprintf("%d", stats.TotalEntries))
		table.AddRow("size", fmt.Sprintf("%.2f MB", stats.TotalSizeMB))
		for artifactType, count := range stats.ArtifactCounts {
			table.AddRow(fmt.Sprintf("artifacts (%s)", artifactType), fmt.Sprintf("%d", count))
		}
		if stats.OldestEntry != nil {
			table.AddRow("oldest entry", stats.OldestEntry.Format("2006-01-02 15:04:05"))
		}
		if stats.NewestEntry != nil {
			table.AddRow("newest entry", stats.NewestEntry.Format("2006-01-02 15:04:05"))
		}
		if stats.LastFullBuild != nil {
			table.AddRow("last full build", stats.LastFullBuild.Format("2006-01-02 15:04:05"))
		}
		table.Render()

		if stats.OverBudget {
			ui.Failure(os.Stdout, "cache exceeds the configured size budget")
		}
		return nil
	},
}

var cacheReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a human-readable cache report",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, compiler, err := loadToolchain()
		if err != nil {
			return err
		}

		if cacheReportOutput != "" {
			if err := compiler.Manager().ExportCacheReport(compiler.Cache(), cacheReportOutput); err != nil {
				return err
			}
			ui.Success(os.Stdout, "report written to %s", cacheReportOutput)
			return nil
		}

		fmt.Print(compiler.Manager().FormatCacheReport(compiler.Cache()))
		return nil
	},
}

var cacheValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the cache against the filesystem and the dependency graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, compiler, err := loadToolchain()
		if err != nil {
			return err
		}

		engineCfg, err := cfg.EngineConfig()
		if err != nil {
			return err
		}

		validator := incremental.NewCacheValidator(engineCfg)
		result := validator.ValidateCache(compiler.Cache())
		ui.RenderValidation(os.Stdout, result)

		if !result.Valid {
			return fmt.Errorf("cache validation failed")
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cache entries and the cache directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, compiler, err := loadToolchain()
		if err != nil {
			return err
		}

		if err := compiler.Manager().ClearCache(compiler.Cache()); err != nil {
			return err
		}

		ui.Success(os.Stdout, "cache cleared")
		return nil
	},
}
