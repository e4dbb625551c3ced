package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Mbaroudi/arclang-sub001/internal/cli/ui"
)

var cleanCache bool

func init() {
	cleanCmd.Flags().BoolVar(&cleanCache, "cache", false, "Also clear the compilation cache")
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove generated build state",
	Long:  "Remove the arclang-lsp.log file and, with --cache, the compilation cache.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.Remove("arclang-lsp.log"); err != nil && !os.IsNotExist(err) {
			return err
		}

		if cleanCache {
			_, compiler, err := loadToolchain()
			if err != nil {
				return err
			}
			if err := compiler.Manager().ClearCache(compiler.Cache()); err != nil {
				return err
			}
			ui.Success(os.Stdout, "cache cleared")
		}

		ui.Success(os.Stdout, "project cleaned")
		return nil
	},
}
