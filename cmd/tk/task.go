package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tempura/tempura/internal/store"
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a new task",
	Long: `Add a task to the backlog. A component is required; everything else
falls back to its default: priority medium, status pending, created set
to today's date.

Priority is stored as given. The known levels are critical, high, medium
and low; anything else sorts after them in listings.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		component, _ := cmd.Flags().GetString("component")
		description, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetString("priority")
		tags, _ := cmd.Flags().GetStringSlice("tag")
		notes, _ := cmd.Flags().GetString("notes")
		acceptance, _ := cmd.Flags().GetStringArray("acceptance")

		st, err := getStore()
		if err != nil {
			handleError(err)
		}

		id, err := st.Add(store.AddInput{
			Title:       args[0],
			Description: description,
			Component:   component,
			Priority:    priority,
			Tags:        tags,
			Notes:       notes,
			Acceptance:  acceptance,
		})
		if err != nil {
			handleError(err)
		}

		task, err := st.Find(id)
		if err != nil {
			handleError(err)
		}

		printTask(os.Stdout, task, jsonOutput)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show task details",
	Long:  `Display detailed information about a task.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseTaskID(args[0])
		if err != nil {
			handleError(err)
		}

		st, err := getStore()
		if err != nil {
			handleError(err)
		}

		task, err := st.Find(id)
		if err != nil {
			handleError(err)
		}

		printTask(os.Stdout, task, jsonOutput)
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task",
	Long: `Edit fields of a task. Only the flags you pass are changed; every
other field keeps its value.

--set accepts arbitrary key=value pairs, including fields outside the
canonical schema; such fields are stored and survive round trips. Values
that parse as JSON are stored typed, anything else as a string.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseTaskID(args[0])
		if err != nil {
			handleError(err)
		}

		setPairs, _ := cmd.Flags().GetStringArray("set")
		updates, err := parseSetFlags(setPairs)
		if err != nil {
			handleError(err)
		}

		for _, field := range []string{"title", "description", "component", "priority", "status", "notes"} {
			if cmd.Flags().Changed(field) {
				value, _ := cmd.Flags().GetString(field)
				updates[field] = value
			}
		}
		if cmd.Flags().Changed("tag") {
			tags, _ := cmd.Flags().GetStringSlice("tag")
			updates["tags"] = tags
		}

		if len(updates) == 0 {
			handleError(&invalidInputError{msg: "nothing to update: pass at least one field flag or --set"})
		}

		st, err := getStore()
		if err != nil {
			handleError(err)
		}

		if err := st.Update(id, updates); err != nil {
			handleError(err)
		}

		task, err := st.Find(id)
		if err != nil {
			handleError(err)
		}

		printTask(os.Stdout, task, jsonOutput)
	},
}

var startCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Mark a task as started",
	Long:  `Record the current time in the task's started field.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseTaskID(args[0])
		if err != nil {
			handleError(err)
		}

		st, err := getStore()
		if err != nil {
			handleError(err)
		}

		updates := map[string]any{"started": time.Now().Format(time.RFC3339)}
		if err := st.Update(id, updates); err != nil {
			handleError(err)
		}

		task, err := st.Find(id)
		if err != nil {
			handleError(err)
		}

		printTask(os.Stdout, task, jsonOutput)
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a task",
	Long:  `Remove a task from the backlog and print the removed record.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseTaskID(args[0])
		if err != nil {
			handleError(err)
		}

		st, err := getStore()
		if err != nil {
			handleError(err)
		}

		task, err := st.Remove(id)
		if err != nil {
			handleError(err)
		}

		if jsonOutput {
			printTask(os.Stdout, task, jsonOutput)
			return
		}
		printSuccess(os.Stdout, fmt.Sprintf("Removed task %d: %s", task.ID, task.Title), jsonOutput)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks matching every supplied filter, sorted by priority
(critical first) then creation date.`,
	Run: func(cmd *cobra.Command, args []string) {
		component, _ := cmd.Flags().GetString("component")
		tag, _ := cmd.Flags().GetString("tag")
		status, _ := cmd.Flags().GetString("status")
		priority, _ := cmd.Flags().GetString("priority")

		st, err := getStore()
		if err != nil {
			handleError(err)
		}

		tasks, err := st.Filter(store.FilterOptions{
			Component: component,
			Tag:       tag,
			Status:    status,
			Priority:  priority,
		})
		if err != nil {
			handleError(err)
		}

		printTaskList(os.Stdout, tasks, jsonOutput)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(listCmd)

	// Add command flags
	addCmd.Flags().StringP("component", "c", "", "Component the task belongs to (required)")
	addCmd.Flags().StringP("description", "d", "", "Task description")
	addCmd.Flags().StringP("priority", "p", "", "Task priority (critical, high, medium, low)")
	addCmd.Flags().StringSlice("tag", nil, "Tag to attach (repeatable)")
	addCmd.Flags().String("notes", "", "Free-form notes")
	addCmd.Flags().StringArray("acceptance", nil, "Acceptance criterion (repeatable)")

	// Edit command flags
	editCmd.Flags().StringP("title", "t", "", "New title")
	editCmd.Flags().StringP("description", "d", "", "New description")
	editCmd.Flags().StringP("component", "c", "", "New component")
	editCmd.Flags().StringP("priority", "p", "", "New priority")
	editCmd.Flags().String("status", "", "New status")
	editCmd.Flags().String("notes", "", "New notes")
	editCmd.Flags().StringSlice("tag", nil, "Replace the tag list (repeatable)")
	editCmd.Flags().StringArray("set", nil, "Set an arbitrary field: key=value (repeatable)")

	// List command flags
	listCmd.Flags().StringP("component", "c", "", "Filter by component")
	listCmd.Flags().String("tag", "", "Filter by tag membership")
	listCmd.Flags().String("status", "", "Filter by status")
	listCmd.Flags().StringP("priority", "p", "", "Filter by priority")
}
