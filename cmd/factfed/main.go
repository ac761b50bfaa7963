// Command factfed crawls TFC fact-check reports, extracts their metadata and
// serves the resulting index.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pevans/factfed/config"
	"github.com/pevans/factfed/logging"
	"github.com/pevans/factfed/store"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.FileConfig
	logger logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "factfed",
		Short: "Fact-check report crawler and metadata extractor",
		Long: `factfed collects fact-check reports from the Taiwan FactCheck Center,
extracts their verdict, dates, report number and credits, and keeps them in
JSON archives and a local SQLite index.

Environment Variables:
  FACTFED_DB          Path to the report index (default: reports.db)
  FACTFED_OUTPUT_DIR  Directory for archive files (default: .)
  FACTFED_LOG_LEVEL   debug, info, warn or error (default: info)
  FACTFED_ADDR        Listen address for serve (default: :8080)`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.factfed/config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level, overrides config and environment")

	root.AddCommand(
		a.newCrawlCmd(),
		a.newExtractCmd(),
		a.newLoadCmd(),
		a.newReportsCmd(),
		a.newReprocessCmd(),
		a.newServeCmd(),
		a.newWatchCmd(),
	)

	return root
}

// init resolves configuration and builds the logger.
func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) openStore() (*store.ReportStore, error) {
	st, err := store.NewReportStore(a.cfg.Storage.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open report store: %w", err)
	}
	return st, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
