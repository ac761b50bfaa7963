package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/pevans/factfed/store"
)

// Column widths in terminal cells. CJK characters take two cells each.
const (
	titleWidth   = 60
	summaryWidth = 100
)

// printListTable prints reports in human-readable table format
func printListTable(w io.Writer, records []store.Record, total, offset int) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No reports to display.")
		return
	}

	fmt.Fprintf(w, "Showing %d-%d of %d reports\n\n", offset+1, offset+len(records), total)

	for _, record := range records {
		number := record.ReportNumber
		if number == "" {
			number = "-"
		}

		fmt.Fprintf(w, "#%s %s %s\n", number, padDisplay(displayVerdict(record.CheckResult), 8), truncateDisplay(record.Title, titleWidth))
		fmt.Fprintf(w, "   Published: %s | Updated: %s", orDash(record.PublishDate), orDash(record.UpdateDate))
		if len(record.Categories) > 0 {
			fmt.Fprintf(w, " | %s", strings.Join(record.Categories, ", "))
		}
		fmt.Fprintln(w)
		if summary := truncateDisplay(record.ProcessedContent, summaryWidth); summary != "" {
			fmt.Fprintf(w, "   %s\n", summary)
		}
		fmt.Fprintf(w, "   URL: %s\n", record.ContentURL)
		fmt.Fprintf(w, "   ID: %s\n", record.ID.String())
		fmt.Fprintln(w)
	}
}

// printListJSON prints reports in JSON format
func printListJSON(w io.Writer, records []store.Record, total int) error {
	return printJSON(w, map[string]any{
		"reports": records,
		"total":   total,
	})
}

// printListCompact prints reports in compact format
func printListCompact(w io.Writer, records []store.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No reports to display.")
		return
	}

	for _, record := range records {
		// Truncate ID to first 8 characters
		shortID := record.ID.String()[:8]
		fmt.Fprintf(w, "%s %s %s\n", shortID, padDisplay(displayVerdict(record.CheckResult), 8), truncateDisplay(record.Title, titleWidth))
	}
}

// printJSON writes v as indented JSON without escaping HTML characters.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

// truncateDisplay shortens s to at most width terminal cells. Newlines are
// folded into spaces first.
func truncateDisplay(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, width, "...")
}

// padDisplay pads s with spaces to width terminal cells.
func padDisplay(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func displayVerdict(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
