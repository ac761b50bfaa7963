package extract

import (
	"regexp"
	"strings"
)

// bareVerdictWindow bounds the bare-tag search. Deeper in the body the same
// words show up inside quotations.
const bareVerdictWindow = 1000

var (
	publishDatePatterns = []*regexp.Regexp{
		mustCompile(`發佈：?\s*(\d{4}-\d{2}-\d{2})`),
		mustCompile(`發布日期／(\d{4}-\d{2}-\d{2})`),
	}

	updateDatePattern = mustCompile(`更新：?\s*(\d{4}-\d{2}-\d{2})`)

	reportNumberPatterns = []*regexp.Regexp{
		mustCompile(`事實查核報告#(\d+)`),
		mustCompile(`報告編號\s*：?\s*(\d+)`),
	}

	creditsPattern  = mustCompile(`（記者：([^；]+)；責任編輯：([^）]+)）`)
	reporterPattern = mustCompile(`(?:查核)?記者：?\s*([^責任編輯]+?)(?:\s*責任編輯|$)`)
	editorPattern   = mustCompile(`責任編輯：?\s*([^\s內容背景查核]+)`)
)

// ExtractFields recovers each field independently. It is used when no
// composite layout matched; a field that no pattern finds stays empty.
func ExtractFields(rawText string) Metadata {
	var meta Metadata
	if rawText == "" {
		return meta
	}

	meta.CheckResult = findVerdict(rawText)
	meta.PublishDate = firstSubmatch(rawText, publishDatePatterns)
	if m := updateDatePattern.FindStringSubmatch(rawText); m != nil {
		meta.UpdateDate = m[1]
	}
	meta.defaultUpdateDate()
	meta.ReportNumber = firstSubmatch(rawText, reportNumberPatterns)
	meta.Reporter, meta.Editor = findCredits(rawText)

	return meta
}

// findVerdict prefers a bracketed tag anywhere in the text and falls back to
// a bare tag near the top of the article.
func findVerdict(text string) string {
	if m := bracketedVerdict.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := bareVerdict.FindStringSubmatch(headRunes(text, bareVerdictWindow)); m != nil {
		return m[1]
	}
	return ""
}

// findCredits returns the reporter and editor. The parenthesised form that
// names both is tried before the separate patterns.
func findCredits(text string) (reporter, editor string) {
	if m := creditsPattern.FindStringSubmatch(text); m != nil {
		return trimReporter(m[1]), strings.TrimSpace(m[2])
	}

	if m := reporterPattern.FindStringSubmatch(text); m != nil {
		reporter = trimReporter(m[1])
	}
	if m := editorPattern.FindStringSubmatch(text); m != nil {
		editor = strings.TrimSpace(m[1])
	}
	return reporter, editor
}

func firstSubmatch(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}
