package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	colly "github.com/gocolly/colly/v2"
	"github.com/pevans/factfed/extract"
	"github.com/pevans/factfed/report"
	"github.com/pevans/factfed/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySink collects reports in memory.
type memorySink struct {
	mu      sync.Mutex
	reports []report.FactCheckReport
	failOn  string
}

func (s *memorySink) Add(rep report.FactCheckReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && strings.HasSuffix(rep.ContentURL, s.failOn) {
		return errors.New("sink rejected report")
	}
	s.reports = append(s.reports, rep)
	return nil
}

func (s *memorySink) numbers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, r := range s.reports {
		out = append(out, r.ReportNumber)
	}
	sort.Strings(out)
	return out
}

// testSite serves a small paginated listing. Page N links to articles N1 and
// N2. Article 0 carries no verdict text and relies on its class names.
type testSite struct {
	pages       int
	withMarker  bool
	brokenPaths map[string]bool
}

func (s testSite) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/fact-check-reports-all/", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("pg"))
		if page < 1 {
			page = 1
		}

		var b strings.Builder
		b.WriteString("<html><body><ul>")
		for i := 1; i <= 2; i++ {
			fmt.Fprintf(&b, `<li class="kb-query-item"><a class="kb-section-link-overlay" href="/fact-check-reports/%d%d">x</a></li>`, page, i)
		}
		b.WriteString(`<li class="kb-query-item"><a class="kb-section-link-overlay" href="/about/">about</a></li>`)
		b.WriteString("</ul>")
		if s.withMarker {
			fmt.Fprintf(&b, `<div class="pagination" data-max-num-pages="%d"></div>`, s.pages)
		}
		b.WriteString("</body></html>")
		w.Write([]byte(b.String()))
	})

	mux.HandleFunc("/fact-check-reports/", func(w http.ResponseWriter, r *http.Request) {
		if s.brokenPaths[r.URL.Path] {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}

		number := strings.TrimPrefix(r.URL.Path, "/fact-check-reports/")
		fmt.Fprintf(w, `<html><head><title>報告%s - 看見真實，才能打造美好台灣</title></head><body>
<div class="entry-taxonomies"><span class="category-links"><a>未勾選屬性</a></span></div>
<div class="post-content">
<p>正確 健康 發佈：2022-01-01 報告編號：%s 記者：甲 責任編輯：乙</p>
<p>%s</p><p>內文%s</p>
</div></body></html>`, number, number, extract.ShareAnchor, number)
	})

	mux.HandleFunc("/no-verdict", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>無標記</title></head><body class="x">
<div class="entry-taxonomies"><span class="category-links"><a>未勾選屬性</a></span></div>
<div class="verdict-partial"></div>
<div class="post-content"><p>沒有任何標記</p></div></body></html>`))
	})

	return mux
}

func testSiteConfig(serverURL string) scraper.SiteConfig {
	site := scraper.DefaultTFCConfig()
	site.ListConfig.URL = serverURL + "/fact-check-reports-all/"
	site.AllowedDomains = nil
	site.Politeness.Delay = 0
	site.Politeness.RandomDelay = 0
	site.Politeness.Parallelism = 4
	site.Politeness.ObeyRobots = false
	return site
}

func newTestCrawler(t *testing.T, site testSite, opts ...Option) (*Crawler, *memorySink, *httptest.Server) {
	server := httptest.NewServer(site.handler())
	t.Cleanup(server.Close)

	sink := &memorySink{}
	crawler, err := NewCrawler(testSiteConfig(server.URL), sink, opts...)
	require.NoError(t, err)
	return crawler, sink, server
}

// TestCrawl_DiscoversLastPage verifies an open-ended crawl follows the
// page-count marker
func TestCrawl_DiscoversLastPage(t *testing.T) {
	crawler, sink, _ := newTestCrawler(t, testSite{pages: 3, withMarker: true})

	result, err := crawler.Crawl(context.Background(), PageRange{Start: 1})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, 6, result.Reports)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"11", "12", "21", "22", "31", "32"}, sink.numbers())
}

// TestCrawl_ExplicitRange verifies only the requested pages are visited
func TestCrawl_ExplicitRange(t *testing.T) {
	crawler, sink, _ := newTestCrawler(t, testSite{pages: 5, withMarker: true})

	result, err := crawler.Crawl(context.Background(), PageRange{Start: 2, End: 3})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, []string{"21", "22", "31", "32"}, sink.numbers())
}

// TestCrawl_MissingMarker verifies an open-ended crawl without a page count
// stops after the first page
func TestCrawl_MissingMarker(t *testing.T) {
	crawler, sink, _ := newTestCrawler(t, testSite{pages: 3})

	result, err := crawler.Crawl(context.Background(), PageRange{Start: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Pages)
	assert.Equal(t, []string{"11", "12"}, sink.numbers())
}

// TestCrawl_ArticleFieldsAndFilters verifies reports carry extracted fields
// and the unchecked category placeholder is never used
func TestCrawl_ArticleFieldsAndFilters(t *testing.T) {
	crawler, sink, server := newTestCrawler(t, testSite{pages: 1, withMarker: true})

	_, err := crawler.Crawl(context.Background(), PageRange{Start: 1, End: 1})
	require.NoError(t, err)
	require.Len(t, sink.reports, 2)

	for _, rep := range sink.reports {
		assert.True(t, strings.HasPrefix(rep.ContentURL, server.URL+"/fact-check-reports/"))
		assert.Equal(t, "正確", rep.CheckResult)
		assert.Equal(t, []string{"健康"}, rep.Categories)
		assert.Equal(t, "2022-01-01", rep.UpdateDate)
		assert.Equal(t, "甲", rep.Reporter)
		assert.Equal(t, "乙", rep.Editor)
		assert.Equal(t, "內文"+rep.ReportNumber, rep.ProcessedContent)
		assert.Equal(t, "報告"+rep.ReportNumber, rep.Title)
	}
}

// TestCrawl_ArticleFailuresAreRecorded verifies a failing article or sink
// does not stop the crawl
func TestCrawl_ArticleFailuresAreRecorded(t *testing.T) {
	site := testSite{pages: 2, withMarker: true, brokenPaths: map[string]bool{"/fact-check-reports/12": true}}
	crawler, sink, _ := newTestCrawler(t, site)
	sink.failOn = "/21"

	result, err := crawler.Crawl(context.Background(), PageRange{Start: 1})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Reports)
	assert.Equal(t, []string{"11", "22"}, sink.numbers())
	require.Len(t, result.Errors, 2)

	var failed []string
	for _, e := range result.Errors {
		failed = append(failed, e.URL[strings.LastIndex(e.URL, "/"):])
		assert.False(t, e.Stored, "%s never reached the sink", e.URL)
	}
	sort.Strings(failed)
	assert.Equal(t, []string{"/12", "/21"}, failed)
}

type knownSet map[string]bool

func (k knownSet) HasURL(_ context.Context, url string) (bool, error) {
	return k[url[strings.LastIndex(url, "/")+1:]], nil
}

// TestCrawl_SkipsKnownURLs verifies stored articles are not fetched again
func TestCrawl_SkipsKnownURLs(t *testing.T) {
	crawler, sink, _ := newTestCrawler(t, testSite{pages: 1, withMarker: true},
		WithKnownURLs(knownSet{"11": true}))

	result, err := crawler.Crawl(context.Background(), PageRange{Start: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []string{"12"}, sink.numbers())
}

// TestCrawlURLs_ClassNameFallback verifies article mode and the class-name
// verdict fallback
func TestCrawlURLs_ClassNameFallback(t *testing.T) {
	crawler, sink, server := newTestCrawler(t, testSite{})

	result, err := crawler.Crawl(context.Background(), PageRange{ArticleURL: server.URL + "/no-verdict"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Reports)
	require.Len(t, sink.reports, 1)

	rep := sink.reports[0]
	assert.Equal(t, "部分錯誤", rep.CheckResult)
	assert.Equal(t, []string{}, rep.Categories)
	assert.Equal(t, "無標記", rep.Title)
	assert.NotEqual(t, "", result.RunID.String())
}

// TestCrawl_Cancelled verifies a cancelled context is reported
func TestCrawl_Cancelled(t *testing.T) {
	crawler, _, _ := newTestCrawler(t, testSite{pages: 1, withMarker: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := crawler.Crawl(ctx, PageRange{Start: 1})
	if err == nil {
		t.Fatal("expected an error for a cancelled crawl")
	}
	if result != nil {
		assert.Zero(t, result.Reports)
	}
}

// TestNewCrawler_Validation verifies invalid construction is rejected
func TestNewCrawler_Validation(t *testing.T) {
	_, err := NewCrawler(scraper.SiteConfig{}, &memorySink{})
	assert.Error(t, err)

	_, err = NewCrawler(scraper.DefaultTFCConfig(), nil)
	assert.Error(t, err)
}

// TestIsExpectedVisitError verifies only colly's revisit refusal is ignored
func TestIsExpectedVisitError(t *testing.T) {
	visited := &colly.AlreadyVisitedError{Destination: &url.URL{Scheme: "https", Host: "example.org"}}

	assert.True(t, isExpectedVisitError(visited))
	assert.True(t, isExpectedVisitError(fmt.Errorf("visit: %w", visited)))
	assert.False(t, isExpectedVisitError(errors.New("page already visited")))
	assert.False(t, isExpectedVisitError(colly.ErrForbiddenDomain))
}
