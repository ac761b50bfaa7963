package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// FetchFeedURLs returns the item links of an RSS or Atom feed that contain
// match, in feed order and without duplicates. An empty match keeps every
// link. It is a cheap way to pick up reports published since the last crawl.
func FetchFeedURLs(ctx context.Context, feedURL, match string) ([]string, error) {
	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	return FeedItemURLs(feed, match), nil
}

// FeedItemURLs extracts the matching item links from a parsed feed.
func FeedItemURLs(feed *gofeed.Feed, match string) []string {
	urls := []string{}
	seen := map[string]bool{}

	for _, item := range feed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" || seen[link] {
			continue
		}
		if match != "" && !strings.Contains(link, match) {
			continue
		}
		seen[link] = true
		urls = append(urls, link)
	}

	return urls
}
