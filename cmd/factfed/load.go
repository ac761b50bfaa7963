package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/pevans/factfed/logging"
	"github.com/pevans/factfed/report"
	"github.com/spf13/cobra"
)

// DocumentsFile is the default output of the load command.
const DocumentsFile = "tfc_documents.json"

func (a *app) newLoadCmd() *cobra.Command {
	var (
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "load [archive]",
		Short: "Prepare archived reports for indexing",
		Long: `Read a sorted archive, keep the newest reports that have a title and a
body, and write them as documents ready for a retrieval index. Verdict and
category statistics are printed afterwards.

The archive defaults to tfc_reports_sorted.json in the output directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(a.cfg.Output.Dir, report.SortedFile)
			if len(args) > 0 {
				path = args[0]
			}
			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.Load.Limit
			}
			if output == "" {
				output = filepath.Join(a.cfg.Output.Dir, DocumentsFile)
			}

			reports, err := report.Load(path)
			if err != nil {
				return err
			}

			prepared := report.Prepare(reports, limit)
			for _, skipped := range prepared.Skipped {
				a.logger.Warn("record skipped for missing title or content", logging.String("record", skipped))
			}

			if err := report.WriteJSON(output, prepared.Documents, "  "); err != nil {
				return err
			}

			a.logger.Info("documents written",
				logging.String("path", output),
				logging.Int("documents", len(prepared.Documents)),
				logging.Int("skipped", len(prepared.Skipped)))

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Loaded %d records from %s\n", len(reports), path)
			fmt.Fprintf(w, "Wrote %d documents to %s (%d skipped)\n\n", len(prepared.Documents), output, len(prepared.Skipped))
			printStats(w, report.ComputeStats(prepared.Documents))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", report.DefaultLoadLimit, "number of newest records to take")
	cmd.Flags().StringVarP(&output, "output", "o", "", "documents file (default tfc_documents.json in the output directory)")

	return cmd
}

// printStats prints verdict and category distributions.
func printStats(w io.Writer, stats report.Stats) {
	fmt.Fprintf(w, "Total: %d\n", stats.Total)

	fmt.Fprintln(w, "Check results:")
	for _, c := range stats.CheckResults {
		fmt.Fprintf(w, "  %s %d\n", padDisplay(displayVerdict(c.Value), 10), c.Count)
	}

	fmt.Fprintln(w, "Top categories:")
	for _, c := range stats.TopCategories {
		fmt.Fprintf(w, "  %s %d\n", padDisplay(c.Value, 10), c.Count)
	}

	if stats.NonCanonical > 0 {
		fmt.Fprintf(w, "Non-canonical verdicts: %d\n", stats.NonCanonical)
	}
}
