// Package discovery finds fact-check report pages, reads them and hands the
// finished reports to a sink.
package discovery

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/factfed/report"
	"github.com/pevans/factfed/scraper"
	"golang.org/x/net/html"
)

// fetchTimeout bounds a single FetchHTML call.
const fetchTimeout = 10 * time.Second

// ScrapedArticle holds what was read from an article page before extraction.
type ScrapedArticle struct {
	URL     string
	Title   string
	RawText string
	// Classes are the class attributes found under <body>, used when the
	// text carries no verdict.
	Classes []string
	// Categories are the taxonomy link texts, used when the text carries no
	// category.
	Categories []string
}

// FetchHTML fetches and parses a page.
func FetchHTML(ctx context.Context, url, userAgent string) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if userAgent == "" {
		userAgent = scraper.DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}

// ExtractArticle reads an article page. root is the document or its <html>
// element.
func ExtractArticle(root *goquery.Selection, config scraper.ArticleConfig, articleURL string) *ScrapedArticle {
	article := &ScrapedArticle{
		URL:        articleURL,
		Title:      CleanTitle(root.Find("title").First().Text(), config.TitleSuffix),
		Categories: []string{},
	}

	for _, selector := range config.ContentSelectors {
		content := root.Find(selector)
		if content.Length() > 0 {
			article.RawText = FlattenText(content)
			break
		}
	}

	root.Find("body [class]").Each(func(_ int, s *goquery.Selection) {
		if class := strings.TrimSpace(s.AttrOr("class", "")); class != "" {
			article.Classes = append(article.Classes, class)
		}
	})

	if config.CategorySelector != "" {
		root.Find(config.CategorySelector).Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				article.Categories = append(article.Categories, text)
			}
		})
	}

	return article
}

// CleanTitle removes the site suffix and surrounding whitespace.
func CleanTitle(title, suffix string) string {
	if suffix != "" {
		title = strings.ReplaceAll(title, suffix, "")
	}
	return strings.TrimSpace(title)
}

// FlattenText joins the text nodes under the selection in document order.
// Each fragment is trimmed, blank fragments are dropped and script and style
// contents are skipped.
func FlattenText(sel *goquery.Selection) string {
	var parts []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}

	return strings.Join(parts, " ")
}

// ClassifyByClassNames guesses a verdict from page class names. It is only
// consulted when the text gave no verdict.
func ClassifyByClassNames(classes []string) string {
	all := strings.Join(classes, " ")

	switch {
	case strings.Contains(all, "incorrect") || strings.Contains(all, "error"):
		return "錯誤"
	case strings.Contains(all, "partial"):
		return "部分錯誤"
	case strings.Contains(all, "clarification"):
		return "事實釐清"
	case strings.Contains(all, "correct"):
		return "正確"
	}
	return ""
}

// ResolveCategories picks the categories for a report: the extracted ones,
// else the page's taxonomy links. A lone unchecked placeholder means none.
func ResolveCategories(extracted, links []string, unchecked string) []string {
	categories := extracted
	if len(categories) == 0 {
		categories = []string{}
		for _, c := range links {
			if c = strings.TrimSpace(c); c != "" {
				categories = append(categories, c)
			}
		}
	}

	if unchecked != "" && len(categories) == 1 && categories[0] == unchecked {
		return []string{}
	}
	return categories
}

// ToReport runs extraction over a scraped article and applies the page-level
// fallbacks. The report is always usable; err is set when extraction failed
// and the metadata is empty.
func ToReport(article *ScrapedArticle, site scraper.SiteConfig) (report.FactCheckReport, error) {
	rep, err := report.Build(report.RawArticle{
		URL:     article.URL,
		Title:   article.Title,
		RawText: article.RawText,
		Source:  site.Source,
	})

	if rep.CheckResult == "" {
		rep.CheckResult = ClassifyByClassNames(article.Classes)
	}
	rep.Categories = ResolveCategories(rep.Categories, article.Categories, site.ArticleConfig.UncheckedCategory)

	return rep, err
}

// ScrapeArticle fetches one article page and builds its report.
func ScrapeArticle(ctx context.Context, url string, site scraper.SiteConfig) (report.FactCheckReport, error) {
	doc, err := FetchHTML(ctx, url, site.Politeness.UserAgent)
	if err != nil {
		return report.FactCheckReport{}, fmt.Errorf("failed to fetch HTML: %w", err)
	}

	return ToReport(ExtractArticle(doc.Selection, site.ArticleConfig, url), site)
}
