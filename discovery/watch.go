package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/pevans/factfed/logging"
)

// ErrWatchFailing is returned by Watcher.Run once the feed has failed
// FailureThreshold times in a row.
var ErrWatchFailing = errors.New("feed keeps failing")

// WatchConfig holds configuration for a Watcher.
type WatchConfig struct {
	// Time between feed polls
	Interval time.Duration
	// Consecutive transient failures before Run gives up
	FailureThreshold int
}

// DefaultWatchConfig returns the default polling configuration.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		Interval:         1 * time.Hour,
		FailureThreshold: 10,
	}
}

// Watcher polls the site feed and crawls every article it has not handled
// yet.
type Watcher struct {
	crawler *Crawler
	config  WatchConfig
	logger  logging.Logger

	mu   sync.Mutex
	seen map[string]bool

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher around crawler. Zero config values take the
// defaults.
func NewWatcher(crawler *Crawler, config WatchConfig) (*Watcher, error) {
	if crawler.site.FeedURL == "" {
		return nil, errors.New("site has no feed URL")
	}

	defaults := DefaultWatchConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = defaults.FailureThreshold
	}

	return &Watcher{
		crawler:  crawler,
		config:   config,
		logger:   crawler.logger.With(logging.String("feed", crawler.site.FeedURL)),
		seen:     map[string]bool{},
		stopChan: make(chan struct{}),
	}, nil
}

// Run polls immediately and then once per interval. It runs until Stop is
// called, the context is cancelled, the feed fails permanently, or it fails
// FailureThreshold times in a row.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watcher starting", logging.Duration("interval", w.config.Interval))

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	failures := 0
	for {
		_, err := w.Poll(ctx)
		switch {
		case err == nil:
			failures = 0
		case ctx.Err() != nil:
			return ctx.Err()
		case isPermanentError(err):
			w.logger.Error("feed failed permanently", logging.Error(err))
			return err
		default:
			failures++
			w.logger.Warn("feed poll failed",
				logging.Int("consecutive_failures", failures),
				logging.Error(err))
			if failures >= w.config.FailureThreshold {
				return fmt.Errorf("%w: %d consecutive failures: %w", ErrWatchFailing, failures, err)
			}
		}

		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopping (context cancelled)")
			return ctx.Err()
		case <-w.stopChan:
			w.logger.Info("watcher stopping")
			return nil
		case <-ticker.C:
		}
	}
}

// Stop signals Run to return after the current poll.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
}

// Poll fetches the feed once and crawls the articles not handled by an
// earlier poll. Articles that could not be fetched or stored are retried on
// the next poll; one whose extraction failed but whose substitute report was
// stored is not.
func (w *Watcher) Poll(ctx context.Context) (*CrawlResult, error) {
	site := w.crawler.site
	urls, err := FetchFeedURLs(ctx, site.FeedURL, site.ListConfig.ArticlePathMatch)
	if err != nil {
		return nil, err
	}

	fresh := w.unseen(urls)
	if len(fresh) == 0 {
		w.logger.Debug("no new articles in feed")
		return &CrawlResult{}, nil
	}

	result, err := w.crawler.CrawlURLs(ctx, fresh)
	if result != nil {
		w.markSeen(fresh, result.Errors)
	}
	return result, err
}

func (w *Watcher) unseen(urls []string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var fresh []string
	for _, u := range urls {
		if !w.seen[u] {
			fresh = append(fresh, u)
		}
	}
	return fresh
}

func (w *Watcher) markSeen(urls []string, failed []ArticleError) {
	skip := map[string]bool{}
	for _, e := range failed {
		if !e.Stored {
			skip[e.URL] = true
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, u := range urls {
		if !skip[u] {
			w.seen[u] = true
		}
	}
}

// isPermanentError reports feed errors that polling again will not fix: a
// missing feed or a document that is not a feed.
func isPermanentError(err error) bool {
	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusNotFound || httpErr.StatusCode == http.StatusGone
	}
	return errors.Is(err, gofeed.ErrFeedTypeNotDetected)
}
