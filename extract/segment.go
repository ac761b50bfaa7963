package extract

import "strings"

// ShareAnchor is the social share button text that precedes every article
// body once the page has been flattened.
const ShareAnchor = "Share on Facebook Share on Threads Share on Pinterest Share on LINE Email this Page Print this Page"

// Segment drops the page chrome in front of the article body. When the share
// anchor is missing the text is returned unchanged.
func Segment(rawText string) string {
	idx := strings.Index(rawText, ShareAnchor)
	if idx < 0 {
		return rawText
	}
	return strings.TrimSpace(rawText[idx+len(ShareAnchor):])
}
