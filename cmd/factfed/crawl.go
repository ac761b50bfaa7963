package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pevans/factfed/discovery"
	"github.com/pevans/factfed/logging"
	"github.com/pevans/factfed/report"
	"github.com/pevans/factfed/scraper"
	"github.com/spf13/cobra"
)

func (a *app) newCrawlCmd() *cobra.Command {
	var (
		outDir    string
		noStore   bool
		skipKnown bool
		fromFeed  bool
	)

	cmd := &cobra.Command{
		Use:   "crawl [start] [end] | crawl <article-url>",
		Short: "Crawl fact-check reports",
		Long: `Crawl the fact-check listing and build a report for every article.

With no arguments every listing page is crawled, up to the page count the
site advertises. One number N crawls pages 1 to N, two numbers crawl an
inclusive range, and a URL crawls a single article.

Reports are written to tfc_reports_unsorted.json as they arrive and to
tfc_reports_sorted.json when the crawl ends. They are also indexed in the
report store unless --no-store is given.

Examples:
  # Crawl everything
  factfed crawl

  # Crawl listing pages 3 to 5
  factfed crawl 3 5

  # Crawl only the articles in the site feed that are not stored yet
  factfed crawl --feed --skip-known`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				outDir = a.cfg.Output.Dir
			}
			if !cmd.Flags().Changed("skip-known") {
				skipKnown = a.cfg.Crawl.SkipKnown
			}
			if noStore && skipKnown {
				return errors.New("--skip-known needs the report store")
			}
			return a.runCrawl(cmd, args, outDir, !noStore, skipKnown, fromFeed)
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory for archive files (default from config)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "only write archive files")
	cmd.Flags().BoolVar(&skipKnown, "skip-known", false, "skip articles already in the report store")
	cmd.Flags().BoolVar(&fromFeed, "feed", false, "crawl the articles listed in the site feed")

	return cmd
}

func (a *app) runCrawl(cmd *cobra.Command, args []string, outDir string, useStore, skipKnown, fromFeed bool) error {
	var pages discovery.PageRange
	if !fromFeed {
		var err error
		pages, err = discovery.ParsePageArgs(args)
		if err != nil {
			return err
		}
	} else if len(args) > 0 {
		return errors.New("--feed takes no arguments")
	}

	site := scraper.DefaultTFCConfig()
	a.cfg.Crawl.ApplyTo(&site)

	archive, err := report.NewArchive(outDir, a.logger)
	if err != nil {
		return err
	}

	sinks := report.MultiSink{archive}
	opts := []discovery.Option{discovery.WithLogger(a.logger)}

	if useStore {
		st, err := a.openStore()
		if err != nil {
			archive.Close()
			return err
		}
		defer st.Close()

		sinks = append(sinks, st)
		if skipKnown {
			opts = append(opts, discovery.WithKnownURLs(st))
		}
	}

	crawler, err := discovery.NewCrawler(site, sinks, opts...)
	if err != nil {
		archive.Close()
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	var result *discovery.CrawlResult
	var crawlErr error
	if fromFeed {
		urls, err := discovery.FetchFeedURLs(ctx, site.FeedURL, site.ListConfig.ArticlePathMatch)
		if err != nil {
			archive.Close()
			return err
		}
		a.logger.Info("feed fetched", logging.String("feed", site.FeedURL), logging.Int("articles", len(urls)))
		result, crawlErr = crawler.CrawlURLs(ctx, urls)
	} else {
		a.logger.Info("crawl requested", logging.String("pages", pages.String()))
		result, crawlErr = crawler.Crawl(ctx, pages)
	}

	if err := archive.Close(); err != nil {
		return errors.Join(crawlErr, err)
	}

	if result != nil {
		printCrawlSummary(cmd.OutOrStdout(), result, archive)
	}
	return crawlErr
}

func printCrawlSummary(w io.Writer, result *discovery.CrawlResult, archive *report.Archive) {
	fmt.Fprintln(w, "Crawl completed:")
	fmt.Fprintf(w, "  Run ID: %s\n", result.RunID)
	fmt.Fprintf(w, "  Listing pages: %d\n", result.Pages)
	fmt.Fprintf(w, "  Reports: %d\n", result.Reports)
	fmt.Fprintf(w, "  Skipped: %d\n", result.Skipped)
	fmt.Fprintf(w, "  Failed: %d\n", len(result.Errors))
	fmt.Fprintf(w, "  Archive write errors: %d\n", len(archive.Errors()))
	fmt.Fprintf(w, "  Duration: %s\n", result.Duration.Round(time.Millisecond))

	if len(result.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Errors:")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  - %s\n", e.Error())
		}
	}
}
