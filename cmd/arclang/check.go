package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mbaroudi/arclang-sub001/internal/cli/config"
	"github.com/Mbaroudi/arclang-sub001/internal/cli/ui"
	"github.com/Mbaroudi/arclang-sub001/internal/compiler/frontend"
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Parse and analyze model files without compiling",
	Long: `Check .arc files for syntax and reference problems. With no arguments,
every file in the configured source directory is checked. Nothing is
written to the cache.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		files := args
		if len(files) == 0 {
			files, err = findArcFiles(cfg.SourceDir)
			if err != nil {
				return err
			}
		}

		fe := frontend.New()
		failed := 0
		for _, file := range files {
			content, err := os.ReadFile(file)
			if err != nil {
				ui.Failure(os.Stderr, "%s: %v", file, err)
				failed++
				continue
			}

			parsed, err := fe.Parse(content)
			if err != nil {
				ui.Failure(os.Stderr, "%s: %v", file, err)
				failed++
				continue
			}

			if _, err := fe.Analyze(parsed); err != nil {
				ui.Failure(os.Stderr, "%s: %v", file, err)
				failed++
				continue
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d file(s) failed", failed, len(files))
		}

		ui.Success(os.Stdout, "%d file(s) checked", len(files))
		return nil
	},
}
