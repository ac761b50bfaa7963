package discovery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	colly "github.com/gocolly/colly/v2"
	"github.com/google/uuid"
	"github.com/pevans/factfed/logging"
	"github.com/pevans/factfed/report"
	"github.com/pevans/factfed/scraper"
)

const requestTimeout = 30 * time.Second

// KnownURLs reports whether a report for the URL is already stored. The
// crawler skips such articles when one is configured.
type KnownURLs interface {
	HasURL(ctx context.Context, url string) (bool, error)
}

// ArticleError describes a failure on a single page. Stored is set when a
// substitute report with empty metadata still reached the sink.
type ArticleError struct {
	URL    string
	Err    error
	Stored bool
}

func (e *ArticleError) Error() string {
	return fmt.Sprintf("%s: %v", e.URL, e.Err)
}

func (e *ArticleError) Unwrap() error {
	return e.Err
}

// CrawlResult summarises one crawl.
type CrawlResult struct {
	RunID    uuid.UUID
	Pages    int
	Reports  int
	Skipped  int
	Errors   []ArticleError
	Duration time.Duration
}

// Crawler walks the listing pages of a site and turns every article it finds
// into a report.
type Crawler struct {
	site   scraper.SiteConfig
	sink   report.Sink
	known  KnownURLs
	logger logging.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithLogger sets the crawler's logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// WithKnownURLs makes the crawler skip articles that are already stored.
func WithKnownURLs(known KnownURLs) Option {
	return func(c *Crawler) {
		c.known = known
	}
}

// NewCrawler creates a crawler that sends reports to sink.
func NewCrawler(site scraper.SiteConfig, sink report.Sink, opts ...Option) (*Crawler, error) {
	if err := site.Validate(); err != nil {
		return nil, fmt.Errorf("invalid site config: %w", err)
	}
	if sink == nil {
		return nil, fmt.Errorf("sink is nil")
	}

	c := &Crawler{
		site:   site,
		sink:   sink,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// run holds the state of one crawl. Callbacks run on colly's goroutines.
type run struct {
	id      uuid.UUID
	started time.Time
	logger  logging.Logger

	mu       sync.Mutex
	pages    int
	reports  int
	skipped  int
	errors   []ArticleError
	lastPage int
}

func (c *Crawler) newRun() *run {
	id := uuid.New()
	return &run{
		id:      id,
		started: time.Now(),
		logger:  c.logger.With(logging.String("run_id", id.String())),
	}
}

func (r *run) fail(url string, err error) {
	r.record(ArticleError{URL: url, Err: err})
}

func (r *run) record(e ArticleError) {
	r.mu.Lock()
	r.errors = append(r.errors, e)
	r.mu.Unlock()
	r.logger.Warn("page failed",
		logging.String("url", e.URL),
		logging.Bool("stored", e.Stored),
		logging.Error(e.Err))
}

func (r *run) count(field *int) {
	r.mu.Lock()
	*field++
	r.mu.Unlock()
}

func (r *run) result() *CrawlResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &CrawlResult{
		RunID:    r.id,
		Pages:    r.pages,
		Reports:  r.reports,
		Skipped:  r.skipped,
		Errors:   append([]ArticleError(nil), r.errors...),
		Duration: time.Since(r.started),
	}
}

// newCollector builds an async collector with the site's politeness rules.
func (c *Crawler) newCollector(ctx context.Context) (*colly.Collector, error) {
	p := c.site.Politeness

	opts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.Async(true),
	}
	if p.UserAgent != "" {
		opts = append(opts, colly.UserAgent(p.UserAgent))
	} else {
		opts = append(opts, colly.UserAgent(scraper.DefaultUserAgent))
	}
	if len(c.site.AllowedDomains) > 0 {
		opts = append(opts, colly.AllowedDomains(c.site.AllowedDomains...))
	}

	collector := colly.NewCollector(opts...)
	collector.IgnoreRobotsTxt = !p.ObeyRobots
	collector.SetRequestTimeout(requestTimeout)

	parallelism := p.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       p.Delay,
		RandomDelay: p.RandomDelay,
		Parallelism: parallelism,
	}); err != nil {
		return nil, fmt.Errorf("failed to set rate limit: %w", err)
	}

	return collector, nil
}

// articleCollector returns a collector that turns each visited page into a
// report.
func (c *Crawler) articleCollector(ctx context.Context, r *run) (*colly.Collector, error) {
	articles, err := c.newCollector(ctx)
	if err != nil {
		return nil, err
	}

	articles.OnHTML("html", func(e *colly.HTMLElement) {
		c.handleArticle(r, e.Request.URL.String(), e.DOM)
	})
	articles.OnError(func(resp *colly.Response, err error) {
		r.fail(resp.Request.URL.String(), err)
	})

	return articles, nil
}

func (c *Crawler) handleArticle(r *run, url string, root *goquery.Selection) {
	article := ExtractArticle(root, c.site.ArticleConfig, url)

	rep, buildErr := ToReport(article, c.site)

	if err := c.sink.Add(rep); err != nil {
		r.fail(url, errors.Join(buildErr, fmt.Errorf("failed to store report: %w", err)))
		return
	}
	if buildErr != nil {
		r.record(ArticleError{URL: url, Err: buildErr, Stored: true})
	}

	r.count(&r.reports)
	r.logger.Debug("report built",
		logging.String("url", url),
		logging.String("report_number", rep.ReportNumber),
		logging.String("check_result", rep.CheckResult))
}

// Crawl visits the listing pages in the range one after another and every
// article linked from them. Per-page failures are recorded in the result and
// never stop the crawl. The error is non-nil only when the crawl could not
// start or ctx was cancelled.
func (c *Crawler) Crawl(ctx context.Context, pages PageRange) (*CrawlResult, error) {
	if pages.ArticleURL != "" {
		return c.CrawlURLs(ctx, []string{pages.ArticleURL})
	}
	if pages.Start < 1 {
		pages.Start = 1
	}

	r := c.newRun()
	r.lastPage = pages.End
	r.logger.Info("crawl started", logging.String("pages", pages.String()))

	listing, err := c.newCollector(ctx)
	if err != nil {
		return nil, err
	}
	articles, err := c.articleCollector(ctx, r)
	if err != nil {
		return nil, err
	}

	listing.OnHTML("html", func(e *colly.HTMLElement) {
		c.handleListing(ctx, r, e, listing, articles)
	})
	listing.OnError(func(resp *colly.Response, err error) {
		r.fail(resp.Request.URL.String(), err)
	})

	startURL, err := c.site.PageURL(pages.Start)
	if err != nil {
		return nil, err
	}
	if err := listing.Visit(startURL); err != nil {
		return nil, fmt.Errorf("failed to visit listing page: %w", err)
	}

	listing.Wait()
	articles.Wait()

	return c.finish(ctx, r)
}

func (c *Crawler) handleListing(ctx context.Context, r *run, e *colly.HTMLElement, listing, articles *colly.Collector) {
	pageURL := e.Request.URL.String()
	page := CurrentPage(pageURL, c.site.ListConfig.PageParam)
	r.count(&r.pages)

	links := ArticleLinks(e.DOM, c.site.ListConfig)
	r.logger.Info("listing page parsed",
		logging.Int("page", page),
		logging.Int("articles", len(links)))

	for _, link := range links {
		abs := e.Request.AbsoluteURL(link)
		if abs == "" {
			continue
		}
		if c.isKnown(ctx, r, abs) {
			r.count(&r.skipped)
			continue
		}
		if err := articles.Visit(abs); err != nil && !isExpectedVisitError(err) {
			r.fail(abs, err)
		}
	}

	last := c.resolveLastPage(r, page, e.DOM)
	if page >= last {
		return
	}

	next, err := c.site.PageURL(page + 1)
	if err != nil {
		r.fail(pageURL, err)
		return
	}
	if err := listing.Visit(next); err != nil && !isExpectedVisitError(err) {
		r.fail(next, err)
	}
}

// resolveLastPage fixes the last page of an open-ended crawl from the first
// listing page parsed. Without a page-count marker only that page is
// crawled.
func (c *Crawler) resolveLastPage(r *run, page int, root *goquery.Selection) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lastPage > 0 {
		return r.lastPage
	}

	if n, ok := MaxPages(root, c.site.ListConfig.MaxPagesAttr); ok {
		r.lastPage = n
		r.logger.Info("last page discovered", logging.Int("last_page", n))
	} else {
		r.lastPage = page
		r.logger.Warn("page count marker missing, crawling this page only",
			logging.Int("page", page))
	}
	return r.lastPage
}

func (c *Crawler) isKnown(ctx context.Context, r *run, url string) bool {
	if c.known == nil {
		return false
	}

	known, err := c.known.HasURL(ctx, url)
	if err != nil {
		r.logger.Warn("failed to check stored URL", logging.String("url", url), logging.Error(err))
		return false
	}
	return known
}

// CrawlURLs builds reports for the given article URLs.
func (c *Crawler) CrawlURLs(ctx context.Context, urls []string) (*CrawlResult, error) {
	r := c.newRun()
	r.logger.Info("article crawl started", logging.Int("urls", len(urls)))

	articles, err := c.articleCollector(ctx, r)
	if err != nil {
		return nil, err
	}

	for _, u := range urls {
		if err := articles.Visit(u); err != nil && !isExpectedVisitError(err) {
			r.fail(u, err)
		}
	}
	articles.Wait()

	return c.finish(ctx, r)
}

func (c *Crawler) finish(ctx context.Context, r *run) (*CrawlResult, error) {
	result := r.result()
	r.logger.Info("crawl finished",
		logging.Int("pages", result.Pages),
		logging.Int("reports", result.Reports),
		logging.Int("skipped", result.Skipped),
		logging.Int("errors", len(result.Errors)),
		logging.Duration("duration", result.Duration))

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("crawl cancelled: %w", err)
	}
	return result, nil
}

// isExpectedVisitError reports colly's refusals to revisit a URL, which are
// not failures.
func isExpectedVisitError(err error) bool {
	var visited *colly.AlreadyVisitedError
	return errors.As(err, &visited)
}
