package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/tempura/tempura/internal/domain"
)

// printTask prints a single task to the writer
func printTask(w io.Writer, task *domain.Task, jsonOutput bool) {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(task)
		return
	}

	// Table format
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", task.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", task.Title)
	fmt.Fprintf(tw, "Component:\t%s\n", task.Component)
	fmt.Fprintf(tw, "Priority:\t%s\n", task.Priority)
	fmt.Fprintf(tw, "Status:\t%s\n", task.Status)
	fmt.Fprintf(tw, "Created:\t%s\n", task.Created)
	if task.Started != nil {
		fmt.Fprintf(tw, "Started:\t%v\n", task.Started)
	}
	if len(task.Tags) > 0 {
		fmt.Fprintf(tw, "Tags:\t%s\n", strings.Join(task.Tags, ", "))
	}
	if task.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", task.Description)
	}
	if task.Notes != "" {
		fmt.Fprintf(tw, "Notes:\t%s\n", task.Notes)
	}
	for i, criterion := range task.Acceptance {
		if i == 0 {
			fmt.Fprintf(tw, "Acceptance:\t%s\n", criterion)
		} else {
			fmt.Fprintf(tw, "\t%s\n", criterion)
		}
	}
	tw.Flush()
}

// printTaskList prints a list of tasks
func printTaskList(w io.Writer, tasks []*domain.Task, jsonOutput bool) {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(tasks)
		return
	}

	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found")
		return
	}

	// Table format
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tTITLE\tCOMPONENT\tPRIORITY\tSTATUS\tCREATED\n")
	fmt.Fprintf(tw, "--\t-----\t---------\t--------\t------\t-------\n")
	for _, task := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			task.ID, truncate(task.Title, 40), task.Component,
			task.Priority, task.Status, task.Created)
	}
	tw.Flush()
}

// printError prints an error message
func printError(w io.Writer, err error, jsonOutput bool) {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"message": err.Error(),
			},
		})
		return
	}

	fmt.Fprintf(w, "Error: %s\n", err.Error())
}

// printSuccess prints a success message
func printSuccess(w io.Writer, message string, jsonOutput bool) {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(map[string]interface{}{
			"message": message,
		})
		return
	}

	fmt.Fprintln(w, message)
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
