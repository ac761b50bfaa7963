package extract

import (
	"regexp"
	"strings"
)

// cleanupPatterns strip header fragments that survive segmentation. The
// line-anchored patterns stay on one line; the others may span lines.
var cleanupPatterns = []*regexp.Regexp{
	mustCompile(`(?ms)【報告將隨時更新[^】]*】\s*`),
	mustCompile(`(?m)^事實查核報告#\d+\s+.*?發布日期／\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2}\s*`),
	mustCompile(`(?m)^【[^】]+】.*?發布日期／\d{4}-\d{2}-\d{2}.*$`),
	mustCompile(`(?ms)事實查核報告#\d+\s+【[^】]+】[^【]*【報告將隨時更新[^】]*】\s*`),
	mustCompile(`(?ms)事實查核報告#\d+\s+【[^】]+】[^一二三四五六七八九十]*?發布日期／\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2}\s*`),
}

// Clean removes residual metadata headers from an article body and trims the
// result. Removing one header can expose another (a line start after
// trimming, or two fragments joined together), so the pattern sequence is
// repeated until nothing changes. Clean(Clean(x)) == Clean(x) for any x.
func Clean(body string) string {
	out := strings.TrimSpace(body)
	for {
		next := cleanOnce(out)
		if next == out {
			return out
		}
		out = next
	}
}

func cleanOnce(s string) string {
	for _, re := range cleanupPatterns {
		s = re.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}
