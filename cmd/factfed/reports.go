package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pevans/factfed/logging"
	"github.com/pevans/factfed/report"
	"github.com/pevans/factfed/store"
	"github.com/spf13/cobra"
)

func (a *app) newReportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Inspect the report store",
	}

	cmd.AddCommand(
		a.newReportsListCmd(),
		a.newReportsShowCmd(),
		a.newReportsStatsCmd(),
		a.newReportsImportCmd(),
		a.newReportsDeleteCmd(),
	)

	return cmd
}

func (a *app) newReportsListCmd() *cobra.Command {
	var (
		filter store.ReportFilter
		format string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" && format != "compact" {
				return fmt.Errorf("--format must be table, json or compact")
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			result, err := st.List(filter)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch format {
			case "json":
				return printListJSON(w, result.Records, result.Total)
			case "compact":
				printListCompact(w, result.Records)
			default:
				printListTable(w, result.Records, result.Total, filter.Offset)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.CheckResult, "check-result", "", "only reports with this verdict")
	cmd.Flags().StringVar(&filter.Category, "category", "", "only reports in this category")
	cmd.Flags().IntVar(&filter.Limit, "limit", 20, "maximum number of reports, 0 for all")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "number of reports to skip")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, json or compact")

	return cmd
}

func (a *app) newReportsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <report-id|url>",
		Short: "Show one stored report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			var record *store.Record
			if id, parseErr := uuid.Parse(args[0]); parseErr == nil {
				record, err = st.Get(id)
			} else {
				record, err = st.GetByURL(args[0])
			}
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), record)
		},
	}
}

func (a *app) newReportsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show verdict and category counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.Stats()
			if err != nil {
				return err
			}

			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}
}

func (a *app) newReportsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <archive>",
		Short: "Index the reports of an archive file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := report.Load(args[0])
			if err != nil {
				return err
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			imported := 0
			for _, rep := range reports {
				if err := st.Add(rep); err != nil {
					a.logger.Warn("failed to import report",
						logging.String("url", rep.ContentURL),
						logging.Error(err))
					continue
				}
				imported++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d of %d reports\n", imported, len(reports))
			return nil
		},
	}
}

func (a *app) newReportsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <report-id>",
		Short: "Delete a stored report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid report ID: %w", err)
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted report: %s\n", id)
			return nil
		},
	}
}
