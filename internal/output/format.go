// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"nztodo/internal/service"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"

	// CheckDone and CheckOpen mark a task's state.
	CheckDone = "[x]"
	CheckOpen = "[ ]"
)

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {NAME}  {ID}\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s  %s\n", num, check(task.Completed), normalizeName(task.Name), task.ID)
}

// FormatTaskIndented formats a task line inside a list section.
// Format: "    " + FormatTask line
func FormatTaskIndented(w io.Writer, num int, task service.Task) {
	fmt.Fprint(w, "    ")
	FormatTask(w, num, task)
}

// FormatListHeader formats a list section header with the list id and, when
// present, its description.
func FormatListHeader(w io.Writer, list service.List) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintf(w, "%s  %s\n", normalizeName(list.Name), list.ID)
	if desc := strings.TrimSpace(list.Description); desc != "" {
		fmt.Fprintln(w, singleLine(desc))
	}
	fmt.Fprintln(w, ListSeparator)
}

// FormatList formats a list section: header, then its tasks numbered from 1.
func FormatList(w io.Writer, list service.List) {
	FormatListHeader(w, list)
	for i, task := range list.Tasks {
		FormatTaskIndented(w, i+1, task)
	}
}

// FormatListLine formats a list summary for the lists command.
// Format: "{ID}  {NAME}  ({OPEN}/{TOTAL} open)\n"
func FormatListLine(w io.Writer, list service.List) {
	fmt.Fprintf(w, "%s  %s  (%d/%d open)\n",
		list.ID, normalizeName(list.Name), len(list.OpenTasks()), len(list.Tasks))
}

// FormatTaskDetail formats a single task for the task command.
func FormatTaskDetail(w io.Writer, task service.Task) {
	status := "open"
	if task.Completed {
		status = "completed"
	}
	fmt.Fprintf(w, "id:     %s\n", task.ID)
	fmt.Fprintf(w, "name:   %s\n", normalizeName(task.Name))
	fmt.Fprintf(w, "status: %s\n", status)
}

func check(completed bool) string {
	if completed {
		return CheckDone
	}
	return CheckOpen
}

// normalizeName normalizes a list or task name for display.
// - Empty or whitespace-only names become "(untitled)"
// - Newlines are replaced with spaces
func normalizeName(name string) string {
	name = singleLine(name)
	if strings.TrimSpace(name) == "" {
		return "(untitled)"
	}
	return name
}

func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
