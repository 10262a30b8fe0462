// Package observability provides logging setup and formatted CLI output.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// boxWidth is the default width for formatted output boxes
const boxWidth = 60

// Printer handles formatted output for CLI commands
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// MigrationStatus is the schema state reported by the migrate command.
type MigrationStatus struct {
	Provider string
	Table    string
	Current  uint
	Latest   uint
	Dirty    bool
}

// PrintMigrationStatus outputs the applied and available schema versions.
func (p *Printer) PrintMigrationStatus(status MigrationStatus) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Provider: %s\n", status.Provider))
	sb.WriteString(fmt.Sprintf("Table:    %s\n", status.Table))
	sb.WriteString(fmt.Sprintf("Current:  %d\n", status.Current))
	sb.WriteString(fmt.Sprintf("Latest:   %d\n", status.Latest))

	switch {
	case status.Dirty:
		sb.WriteString("State:    DIRTY, fix manually before migrating")
	case status.Current < status.Latest:
		sb.WriteString(fmt.Sprintf("State:    %d migration(s) pending", status.Latest-status.Current))
	default:
		sb.WriteString("State:    up to date")
	}

	p.printBox("SCHEMA MIGRATIONS", sb.String())
}

// PrintSettings outputs key/value settings sorted by key. Values of keys
// listed in secret are masked.
func (p *Printer) PrintSettings(title string, settings map[string]string, secret ...string) {
	if len(settings) == 0 {
		return
	}
	masked := make(map[string]bool, len(secret))
	for _, k := range secret {
		masked[k] = true
	}

	keys := make([]string, 0, len(settings))
	width := 0
	for k := range settings {
		keys = append(keys, k)
		width = max(width, len(k))
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		v := settings[k]
		if masked[k] && v != "" {
			v = "********"
		}
		sb.WriteString(fmt.Sprintf("%-*s  %s\n", width, k, v))
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}
