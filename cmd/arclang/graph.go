package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mbaroudi/arclang-sub001/internal/cli/ui"
)

var graphExportOutput string

func init() {
	graphExportCmd.Flags().StringVarP(&graphExportOutput, "output", "o", "", "Write DOT output to a file instead of stdout")

	graphCmd.AddCommand(graphExportCmd)
	graphCmd.AddCommand(graphImpactCmd)
	graphCmd.AddCommand(graphCriticalCmd)
	graphCmd.AddCommand(graphCyclesCmd)
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect the cached dependency graph",
}

var graphExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the dependency graph in Graphviz DOT format",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, compiler, err := loadToolchain()
		if err != nil {
			return err
		}

		dot := compiler.GraphBuilder().ExportToDOT()
		if graphExportOutput != "" {
			if err := os.WriteFile(graphExportOutput, []byte(dot), 0644); err != nil {
				return err
			}
			ui.Success(os.Stdout, "graph written to %s", graphExportOutput)
			return nil
		}

		fmt.Print(dot)
		return nil
	},
}

var graphImpactCmd = &cobra.Command{
	Use:   "impact <files...>",
	Short: "Show which units a change to the given files would affect",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, compiler, err := loadToolchain()
		if err != nil {
			return err
		}

		result := compiler.GraphBuilder().AnalyzeImpact(args)

		fmt.Printf("Impact of changing %s:\n", strings.Join(args, ", "))
		fmt.Printf("  directly affected:     %d\n", len(result.DirectlyAffected))
		fmt.Printf("  transitively affected: %d\n", len(result.TransitivelyAffected))
		fmt.Printf("  total:                 %d (%.1f%% of the model)\n",
			result.TotalAffected, result.ImpactPercentage)

		for _, file := range result.TransitivelyAffected {
			ui.Detail(os.Stdout, "%s", file)
		}
		return nil
	},
}

var graphCriticalCmd = &cobra.Command{
	Use:   "critical",
	Short: "Rank units by how much of the model depends on them",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, compiler, err := loadToolchain()
		if err != nil {
			return err
		}

		critical := compiler.GraphBuilder().FindCriticalFiles()
		if len(critical) == 0 {
			fmt.Println("no unit has dependents")
			return nil
		}

		table := ui.NewTable(os.Stdout, "FILE", "DIRECT DEPENDENTS", "SCORE")
		for _, file := range critical {
			table.AddRow(file.FilePath,
				fmt.Sprintf("%d", file.DependentCount),
				fmt.Sprintf("%.1f", file.CriticalityScore))
		}
		table.Render()
		return nil
	},
}

var graphCyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "List dependency cycles in the cached graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, compiler, err := loadToolchain()
		if err != nil {
			return err
		}

		components := compiler.GraphBuilder().FindStronglyConnectedComponents()
		if len(components) == 0 {
			ui.Success(os.Stdout, "no dependency cycles")
			return nil
		}

		for i, component := range components {
			ui.Failure(os.Stdout, "cycle %d: %s", i+1, strings.Join(component, " -> "))
		}
		return fmt.Errorf("%d dependency cycle(s) found", len(components))
	},
}
