package main

import (
	"errors"
	"fmt"

	"github.com/pevans/factfed/discovery"
	"github.com/pevans/factfed/report"
	"github.com/pevans/factfed/scraper"
	"github.com/spf13/cobra"
)

func (a *app) newWatchCmd() *cobra.Command {
	var (
		interval  string
		threshold int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the site feed and index new reports",
		Long: `Poll the site feed and crawl every article that is not in the report
store yet. The feed is polled once at startup and then once per interval,
until interrupted.

The interval accepts Go durations plus d (days) and w (weeks), such as
30m, 6h or 1d.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := discovery.WatchConfig{FailureThreshold: threshold}
			if interval != "" {
				d, err := parseDuration(interval)
				if err != nil {
					return err
				}
				config.Interval = d
			} else {
				config.Interval = a.cfg.Crawl.WatchInterval
			}

			site := scraper.DefaultTFCConfig()
			a.cfg.Crawl.ApplyTo(&site)

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			crawler, err := discovery.NewCrawler(site, report.MultiSink{st},
				discovery.WithLogger(a.logger),
				discovery.WithKnownURLs(st))
			if err != nil {
				return err
			}

			watcher, err := discovery.NewWatcher(crawler, config)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			err = watcher.Run(ctx)
			if errors.Is(err, ctx.Err()) {
				fmt.Fprintln(cmd.OutOrStdout(), "Watcher stopped.")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&interval, "interval", "", "time between polls (default from config, else 1h)")
	cmd.Flags().IntVar(&threshold, "failure-threshold", 0, "consecutive failures before giving up (default 10)")

	return cmd
}
