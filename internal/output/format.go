// Package output provides terminal output formatting utilities for the
// releasekit CLI. This package is designed to have minimal dependencies to
// avoid import cycles.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// PrintHeader prints a bold title followed by a divider line, marking the
// start of a bump or extraction run.
func PrintHeader(out io.Writer, title string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintln(out, bold(title))
	PrintDivider(out)
}

// PrintDivider prints a horizontal divider sized to the terminal, capped at
// the traditional 50 columns.
func PrintDivider(out io.Writer) {
	width := GetTerminalWidth()
	if width > 50 {
		width = 50
	}
	fmt.Fprintln(out, strings.Repeat("=", width))
}

// PrintSuccess prints a green checkmark line for a completed file edit.
func PrintSuccess(out io.Writer, format string, args ...any) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

// PrintWarning prints a yellow warning line for a skipped or degraded step.
func PrintWarning(out io.Writer, format string, args ...any) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", yellow("⚠"), fmt.Sprintf(format, args...))
}

// PrintFailure prints a red cross line for a failed file edit.
func PrintFailure(out io.Writer, format string, args ...any) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", red("✗"), fmt.Sprintf(format, args...))
}

// PrintDetail prints an indented dim detail line under a status line.
func PrintDetail(out io.Writer, format string, args ...any) {
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "  %s\n", dim(fmt.Sprintf(format, args...)))
}
