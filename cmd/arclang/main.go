package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "arclang",
		Short: "ArcLang systems-engineering model compiler and tooling",
		Long: `ArcLang is a domain-specific language for systems-engineering models:
requirements, architecture, and traceability. The toolchain compiles .arc
files incrementally, recompiling only the units an edit invalidates.`,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(lspCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
