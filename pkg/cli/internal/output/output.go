// Package output formats user-facing CLI messages.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Warn prints a warning line.
func Warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "Warning: "+format+"\n", args...)
}

// Error prints an error message. Multi-line messages keep their layout.
func Error(w io.Writer, msg string) {
	fmt.Fprintf(w, "Error: %s\n", strings.TrimRight(msg, "\n"))
}

// Suggestions renders a bulleted list of follow-up commands.
func Suggestions(items ...string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nSuggestions:")
	for _, item := range items {
		b.WriteString("\n  • ")
		b.WriteString(item)
	}
	return b.String()
}
