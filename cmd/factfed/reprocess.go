package main

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/pevans/factfed/discovery"
	"github.com/pevans/factfed/logging"
	"github.com/pevans/factfed/report"
	"github.com/pevans/factfed/scraper"
	"github.com/pevans/factfed/store"
	"github.com/spf13/cobra"
)

// ReprocessedFile is the default output when reprocessing an archive.
const ReprocessedFile = "tfc_reports_reprocessed.json"

func (a *app) newReprocessCmd() *cobra.Command {
	var (
		concurrency int
		output      string
	)

	cmd := &cobra.Command{
		Use:   "reprocess [archive]",
		Short: "Re-run extraction over stored raw text",
		Long: `Re-run metadata extraction over reports that were already crawled,
without fetching anything. With an archive argument the archive is read and
the rebuilt reports are written, sorted, to a new file. Without one every
report in the store is rebuilt in place.

A verdict or category that came from page markup is kept when the text
yields none, since the markup is not archived.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("concurrency") {
				concurrency = a.cfg.Batch.Concurrency
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			if len(args) == 0 {
				return a.reprocessStore(ctx, cmd, concurrency)
			}

			if output == "" {
				output = filepath.Join(a.cfg.Output.Dir, ReprocessedFile)
			}

			reports, err := report.Load(args[0])
			if err != nil {
				return err
			}

			rebuilt, changed, err := rebuild(ctx, reports, concurrency, a.logger)
			if err != nil {
				return err
			}

			report.SortByReportNumber(rebuilt)
			for i := range rebuilt {
				rebuilt[i] = rebuilt[i].Trimmed()
			}
			if err := report.WriteJSON(output, rebuilt, "    "); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Reprocessed %d reports (%d changed) into %s\n", len(rebuilt), changed, output)
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", report.DefaultConcurrency, "extractions to run at once")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file for archive input")

	return cmd
}

func (a *app) reprocessStore(ctx context.Context, cmd *cobra.Command, concurrency int) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := st.List(store.ReportFilter{})
	if err != nil {
		return err
	}

	reports := make([]report.FactCheckReport, len(result.Records))
	for i, r := range result.Records {
		reports[i] = r.FactCheckReport
	}

	rebuilt, changed, err := rebuild(ctx, reports, concurrency, a.logger)
	if err != nil {
		return err
	}

	for _, rep := range rebuilt {
		if err := st.Add(rep); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Reprocessed %d stored reports (%d changed)\n", len(rebuilt), changed)
	return nil
}

// rebuild runs extraction again over the raw content of reports. It returns
// the new reports in input order and how many differ from the old ones.
func rebuild(ctx context.Context, reports []report.FactCheckReport, concurrency int, logger logging.Logger) ([]report.FactCheckReport, int, error) {
	articles := make([]report.RawArticle, len(reports))
	for i, rep := range reports {
		articles[i] = report.RawArticle{
			URL:     rep.ContentURL,
			Title:   rep.Title,
			RawText: rep.Content,
			Source:  rep.Source,
		}
	}

	batch, err := report.BuildBatch(ctx, articles, concurrency)
	if err != nil {
		return nil, 0, err
	}
	for _, e := range batch.Errors {
		logger.Error("extraction failed", logging.String("url", e.URL), logging.Error(e.Err))
	}

	unchecked := scraper.DefaultTFCConfig().ArticleConfig.UncheckedCategory
	changed := 0
	for i := range batch.Reports {
		batch.Reports[i] = keepMarkupFields(reports[i], batch.Reports[i], unchecked)
		if !sameMetadata(reports[i], batch.Reports[i]) {
			changed++
		}
	}

	return batch.Reports, changed, nil
}

// keepMarkupFields carries over the verdict and categories of old when the
// rebuilt report found none in the text. Categories go through the same
// resolution as a crawl, so a lone unchecked placeholder becomes empty.
func keepMarkupFields(old, rebuilt report.FactCheckReport, unchecked string) report.FactCheckReport {
	if rebuilt.CheckResult == "" {
		rebuilt.CheckResult = old.CheckResult
	}
	rebuilt.Categories = discovery.ResolveCategories(rebuilt.Categories, old.Categories, unchecked)
	return rebuilt
}

func sameMetadata(a, b report.FactCheckReport) bool {
	return slices.Equal(a.Categories, b.Categories) &&
		a.CheckResult == b.CheckResult &&
		a.PublishDate == b.PublishDate &&
		a.UpdateDate == b.UpdateDate &&
		a.ReportNumber == b.ReportNumber &&
		a.Reporter == b.Reporter &&
		a.Editor == b.Editor &&
		a.ProcessedContent == b.ProcessedContent
}
