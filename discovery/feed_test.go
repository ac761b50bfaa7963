package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>台灣事實查核中心</title>
  <link>https://tfc-taiwan.org.tw</link>
  <item><title>報告一</title><link>https://tfc-taiwan.org.tw/fact-check-reports/101</link></item>
  <item><title>活動</title><link>https://tfc-taiwan.org.tw/events/5</link></item>
  <item><title>報告二</title><link> https://tfc-taiwan.org.tw/fact-check-reports/102 </link></item>
  <item><title>重複</title><link>https://tfc-taiwan.org.tw/fact-check-reports/101</link></item>
</channel>
</rss>`

// TestFetchFeedURLs verifies matching links are returned in feed order
func TestFetchFeedURLs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	defer server.Close()

	urls, err := FetchFeedURLs(context.Background(), server.URL, "/fact-check-reports/")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://tfc-taiwan.org.tw/fact-check-reports/101",
		"https://tfc-taiwan.org.tw/fact-check-reports/102",
	}, urls)
}

// TestFetchFeedURLs_Error verifies unreachable or invalid feeds are errors
func TestFetchFeedURLs_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a feed"))
	}))
	defer server.Close()

	_, err := FetchFeedURLs(context.Background(), server.URL, "")
	assert.Error(t, err)
}

// TestFeedItemURLs_NoFilter verifies an empty match keeps every link
func TestFeedItemURLs_NoFilter(t *testing.T) {
	feed := &gofeed.Feed{Items: []*gofeed.Item{
		{Link: "https://a/1"},
		{Link: ""},
		{Link: "https://a/2"},
	}}

	assert.Equal(t, []string{"https://a/1", "https://a/2"}, FeedItemURLs(feed, ""))
	assert.Equal(t, []string{}, FeedItemURLs(&gofeed.Feed{}, ""))
}
