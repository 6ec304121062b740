// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/job-tracker/internal/extract"
	"github.com/jonathan/job-tracker/internal/names"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// PrintJob outputs a summary of a job extracted from pageURL by the named
// strategy.
func (p *Printer) PrintJob(pageURL, source string, job *extract.JobRecord) {
	if job == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Title:    %s\n", job.JobTitle)
	writeField(&sb, "Company:  ", job.Company)
	writeField(&sb, "Location: ", job.Location)
	writeField(&sb, "Salary:   ", job.Salary)
	fmt.Fprintf(&sb, "Status:   %s\n", job.Status)
	writeField(&sb, "Notes:    ", job.Notes)
	if job.JobDescription != "" {
		fmt.Fprintf(&sb, "Description: %d chars\n", utf8.RuneCountInString(job.JobDescription))
	}
	fmt.Fprintf(&sb, "\nSource: %s (%s)", source, pageURL)

	p.printBox("EXTRACTED JOB", sb.String())
}

// PrintProfile outputs a profile scrape with its first connections and how
// the modal scrape ended.
func (p *Printer) PrintProfile(result *extract.ScrapeResult) {
	if result == nil || result.Profile == nil {
		return
	}
	profile := result.Profile

	var sb strings.Builder
	writeField(&sb, "Name:     ", profile.Name)
	writeField(&sb, "Headline: ", profile.Headline)
	fmt.Fprintf(&sb, "URL:      %s\n\n", profile.LinkedInURL)

	fmt.Fprintf(&sb, "Mutual connections: %d\n", len(profile.MutualConnections))
	writeList(&sb, profile.MutualConnections)

	if result.Stats.ModalOpened {
		stats := result.Stats
		fmt.Fprintf(&sb, "\nModal: %d polls, %d scroll steps", stats.Polls, stats.ScrollSteps)
		switch {
		case stats.ModalTimeout:
			sb.WriteString(", timed out")
		case stats.Stabilized:
			sb.WriteString(", list complete")
		}
	}

	p.printBox("LINKEDIN PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMerge outputs the outcome of reconciling a batch of names.
func (p *Printer) PrintMerge(result names.MergeResult) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Added: %d\n", len(result.Added))
	writeList(&sb, result.Added)
	fmt.Fprintf(&sb, "Already known: %d\n", len(result.AlreadyExisted))
	writeList(&sb, result.AlreadyExisted)
	fmt.Fprintf(&sb, "Total: %d", len(result.Merged))

	p.printBox("CONNECTION MERGE", sb.String())
}

func writeField(sb *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(sb, "%s%s\n", label, value)
	}
}

func writeList(sb *strings.Builder, items []string) {
	count := min(len(items), maxItemsToShow)
	for _, item := range items[:count] {
		fmt.Fprintf(sb, "  • %s\n", item)
	}
	if len(items) > maxItemsToShow {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-maxItemsToShow)
	}
}
