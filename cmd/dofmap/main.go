package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dofmap",
	Short: "Inspect shared dof layouts on in-memory meshes",
	Long: `dofmap builds the shared dof-layout structures (global numbering,
entity node lists, boundary node subsets) for a mesh and element described
in a yaml problem file, and prints them for inspection.`,
}

func main() {
	rootCmd.AddCommand(inspectCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
}
