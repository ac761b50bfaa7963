package discovery

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/factfed/scraper"
)

// ErrInvalidPageArgs is returned for page arguments that cannot be parsed.
var ErrInvalidPageArgs = errors.New("invalid page arguments")

// PageRange selects what a crawl visits: listing pages Start through End, or
// a single article when ArticleURL is set. End of zero means the last page
// the site reports.
type PageRange struct {
	Start      int
	End        int
	ArticleURL string
}

// OpenEnded reports whether the last page must be discovered from the site.
func (r PageRange) OpenEnded() bool {
	return r.ArticleURL == "" && r.End == 0
}

func (r PageRange) String() string {
	switch {
	case r.ArticleURL != "":
		return r.ArticleURL
	case r.OpenEnded():
		return fmt.Sprintf("%d-last", r.Start)
	default:
		return fmt.Sprintf("%d-%d", r.Start, r.End)
	}
}

// ParsePageArgs turns crawl arguments into a range:
//
//	(none)       every page from 1 to the last
//	N            pages 1 to N
//	START END    pages START to END
//	URL          that article only
func ParsePageArgs(args []string) (PageRange, error) {
	switch len(args) {
	case 0:
		return PageRange{Start: 1}, nil
	case 1:
		if isArticleURL(args[0]) {
			return PageRange{ArticleURL: args[0]}, nil
		}
		end, err := parsePage(args[0])
		if err != nil {
			return PageRange{}, err
		}
		return PageRange{Start: 1, End: end}, nil
	case 2:
		start, err := parsePage(args[0])
		if err != nil {
			return PageRange{}, err
		}
		end, err := parsePage(args[1])
		if err != nil {
			return PageRange{}, err
		}
		if start > end {
			return PageRange{}, fmt.Errorf("%w: start page %d is after end page %d", ErrInvalidPageArgs, start, end)
		}
		return PageRange{Start: start, End: end}, nil
	default:
		return PageRange{}, fmt.Errorf("%w: expected at most 2 arguments, got %d", ErrInvalidPageArgs, len(args))
	}
}

func isArticleURL(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}

func parsePage(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a page number", ErrInvalidPageArgs, arg)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: page %d must be at least 1", ErrInvalidPageArgs, n)
	}
	return n, nil
}

// CurrentPage reads the page number from a listing URL. A missing or
// malformed parameter means page 1.
func CurrentPage(rawURL, param string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 1
	}

	n, err := strconv.Atoi(u.Query().Get(param))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// MaxPages reads the total page count from the element carrying attr. ok is
// false when the marker is absent or not a positive integer.
func MaxPages(root *goquery.Selection, attr string) (int, bool) {
	if attr == "" {
		return 0, false
	}

	value, exists := root.Find("[" + attr + "]").First().Attr(attr)
	if !exists {
		return 0, false
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ArticleLinks returns the article hrefs on a listing page that match the
// configured path, in page order.
func ArticleLinks(root *goquery.Selection, config scraper.ListConfig) []string {
	var links []string
	root.Find(config.ArticleSelector).Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		if config.ArticlePathMatch != "" && !strings.Contains(href, config.ArticlePathMatch) {
			return
		}
		links = append(links, href)
	})
	return links
}
