// Package scraper describes where things live on a fact-check site: listing
// and article URLs, CSS selectors and the crawl politeness settings.
package scraper

import (
	"fmt"
	"net/url"
	"time"
)

// SiteConfig defines how to discover and read reports on one site.
type SiteConfig struct {
	Name           string         `json:"name" yaml:"name"`
	Source         string         `json:"source" yaml:"source"`
	ListConfig     ListConfig     `json:"list_config" yaml:"list_config"`
	ArticleConfig  ArticleConfig  `json:"article_config" yaml:"article_config"`
	AllowedDomains []string       `json:"allowed_domains" yaml:"allowed_domains"`
	FeedURL        string         `json:"feed_url,omitempty" yaml:"feed_url,omitempty"`
	Politeness     PolitenessRule `json:"politeness" yaml:"politeness"`
}

// ListConfig defines how to walk the paginated report listing.
type ListConfig struct {
	URL              string `json:"url" yaml:"url"`
	PageParam        string `json:"page_param" yaml:"page_param"`
	ArticleSelector  string `json:"article_selector" yaml:"article_selector"`
	ArticlePathMatch string `json:"article_path_match" yaml:"article_path_match"`
	MaxPagesAttr     string `json:"max_pages_attr" yaml:"max_pages_attr"`
}

// ArticleConfig defines how to read a single report page.
type ArticleConfig struct {
	// ContentSelectors are tried in order; the first one present wins.
	ContentSelectors []string `json:"content_selectors" yaml:"content_selectors"`
	TitleSuffix      string   `json:"title_suffix" yaml:"title_suffix"`
	CategorySelector string   `json:"category_selector" yaml:"category_selector"`
	// UncheckedCategory is the placeholder the site shows when no category
	// was ticked.
	UncheckedCategory string `json:"unchecked_category" yaml:"unchecked_category"`
}

// PolitenessRule bounds the request rate against the site.
type PolitenessRule struct {
	Parallelism int           `json:"parallelism" yaml:"parallelism"`
	Delay       time.Duration `json:"delay" yaml:"delay"`
	RandomDelay time.Duration `json:"random_delay" yaml:"random_delay"`
	UserAgent   string        `json:"user_agent" yaml:"user_agent"`
	ObeyRobots  bool          `json:"obey_robots" yaml:"obey_robots"`
}

// DefaultUserAgent identifies the crawler to the site.
const DefaultUserAgent = "factfed/1.0 (fact-check report crawler)"

// DefaultTFCConfig returns the configuration for tfc-taiwan.org.tw.
func DefaultTFCConfig() SiteConfig {
	return SiteConfig{
		Name:   "Taiwan FactCheck Center",
		Source: "TFC",
		ListConfig: ListConfig{
			URL:              "https://tfc-taiwan.org.tw/fact-check-reports-all/",
			PageParam:        "pg",
			ArticleSelector:  "li.kb-query-item a.kb-section-link-overlay",
			ArticlePathMatch: "/fact-check-reports/",
			MaxPagesAttr:     "data-max-num-pages",
		},
		ArticleConfig: ArticleConfig{
			ContentSelectors:  []string{".post-content", ".single-content"},
			TitleSuffix:       " - 看見真實，才能打造美好台灣",
			CategorySelector:  ".entry-taxonomies .category-links a",
			UncheckedCategory: "未勾選屬性",
		},
		AllowedDomains: []string{"tfc-taiwan.org.tw"},
		FeedURL:        "https://tfc-taiwan.org.tw/feed/",
		Politeness: PolitenessRule{
			Parallelism: 32,
			Delay:       200 * time.Millisecond,
			RandomDelay: 100 * time.Millisecond,
			UserAgent:   DefaultUserAgent,
			ObeyRobots:  true,
		},
	}
}

// PageURL returns the listing URL for the given page number.
func (c SiteConfig) PageURL(page int) (string, error) {
	u, err := url.Parse(c.ListConfig.URL)
	if err != nil {
		return "", fmt.Errorf("invalid listing URL: %w", err)
	}

	q := u.Query()
	q.Set(c.ListConfig.PageParam, fmt.Sprint(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Validate reports configuration that would make a crawl impossible.
func (c SiteConfig) Validate() error {
	if c.ListConfig.URL == "" {
		return fmt.Errorf("listing URL is empty")
	}
	if _, err := url.Parse(c.ListConfig.URL); err != nil {
		return fmt.Errorf("invalid listing URL: %w", err)
	}
	if c.ListConfig.PageParam == "" {
		return fmt.Errorf("page parameter is empty")
	}
	if c.ListConfig.ArticleSelector == "" {
		return fmt.Errorf("article selector is empty")
	}
	if len(c.ArticleConfig.ContentSelectors) == 0 {
		return fmt.Errorf("no content selectors")
	}
	return nil
}
