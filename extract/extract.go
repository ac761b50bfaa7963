// Package extract recovers structured metadata from the flattened text of a
// TFC fact-check article. The site has used several incompatible header
// layouts over the years, so extraction is layered: a cascade of whole-record
// patterns first, then independent per-field patterns, then the title.
//
// Every function in this package is pure and safe for concurrent use.
package extract

// Verdict labels as they appear on the site.
const (
	VerdictIncorrect          = "錯誤"
	VerdictPartiallyIncorrect = "部分錯誤"
	VerdictClarification      = "事實釐清"
	VerdictCorrect            = "正確"
	VerdictEasilyMisleading   = "易生誤解"
	VerdictInsufficient       = "證據不足"
)

// Metadata holds the fields recovered from one article. Every field defaults
// to its zero value; absence is never an error.
type Metadata struct {
	CheckResult  string   `json:"check_result"`
	PublishDate  string   `json:"publish_date"`
	UpdateDate   string   `json:"update_date"`
	Categories   []string `json:"categories"`
	ReportNumber string   `json:"report_number"`
	Reporter     string   `json:"reporter"`
	Editor       string   `json:"editor"`
}

// Result is the output of the extraction pipeline.
type Result struct {
	Metadata
	ProcessedContent string `json:"processed_content"`
	// Matched names the composite pattern that produced the metadata. It is
	// empty when the per-field fallback ran instead.
	Matched string `json:"matched,omitempty"`
}

// defaultUpdateDate copies the publish date into an empty update date.
func (m *Metadata) defaultUpdateDate() {
	if m.UpdateDate == "" && m.PublishDate != "" {
		m.UpdateDate = m.PublishDate
	}
}

// headRunes returns at most the first n characters of s.
func headRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}

	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
