package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tk",
	Short: "Tempura task tracker CLI",
	Long: `A CLI for the Tempura task store: a shared backlog of work items
persisted as a flat, human-readable JSON document.`,
}

// Global flags
var (
	jsonOutput bool
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log store operations to stderr")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitGeneralError)
	}
}
