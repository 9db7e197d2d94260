package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tempura/tempura/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Initialize a new tempura project",
	Long: `Create a tempura.toml configuration file in the current directory and
an empty task store at the configured location (.tasks/tasks.json by
default).

Running init against an existing task store is a no-op: populated
documents are never overwritten.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tasksFile, _ := cmd.Flags().GetString("tasks-file")

		if err := runInit(args[0], tasksFile); err != nil {
			handleError(err)
		}

		printSuccess(os.Stdout, fmt.Sprintf("Initialized project '%s'", args[0]), jsonOutput)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("tasks-file", "", "Task store location (relative to the project root)")
}

// runInit creates the tempura.toml configuration file and the task store
func runInit(name, tasksFile string) error {
	if name == "" {
		return fmt.Errorf("project name is required")
	}

	// Check if config already exists
	if _, err := os.Stat(config.ConfigFileName); err == nil {
		return fmt.Errorf("%s already exists in this directory", config.ConfigFileName)
	}

	// Build config content
	content := fmt.Sprintf("project = %q\n", name)
	if tasksFile != "" {
		content += fmt.Sprintf("\n[tasks]\nfile = %q\n", tasksFile)
	}

	if err := os.WriteFile(config.ConfigFileName, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.ConfigFileName, err)
	}

	st, err := getStore()
	if err != nil {
		return err
	}
	return st.Init()
}
