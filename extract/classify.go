package extract

// verdictTags is the vocabulary accepted by the bracketed tag patterns.
const verdictTags = `錯誤|部分錯誤|事實釐清|正確|易生誤解|證據不足`

var (
	// bracketedVerdict matches tags such as 【錯誤】 in a title or body.
	bracketedVerdict = mustCompile(`【(` + verdictTags + `)】`)

	// bareVerdict matches a tag standing on its own between whitespace.
	bareVerdict = mustCompile(`(?:^|\s)(` + verdictTags + `)(?:\s|$)`)
)

var canonicalVerdicts = map[string]bool{
	VerdictIncorrect:          true,
	VerdictPartiallyIncorrect: true,
	VerdictClarification:      true,
	VerdictCorrect:            true,
}

// ClassifyTitle looks for a bracketed verdict tag in an article title. Some
// migrated articles carry their verdict only in the headline.
func ClassifyTitle(title string) string {
	if title == "" {
		return ""
	}
	if m := bracketedVerdict.FindStringSubmatch(title); m != nil {
		return m[1]
	}
	return ""
}

// NormalizeClassification folds 易生誤解 into 錯誤. Every other value,
// including the empty string, passes through unchanged.
func NormalizeClassification(v string) string {
	if v == VerdictEasilyMisleading {
		return VerdictIncorrect
	}
	return v
}

// IsCanonical reports whether v is one of the four verdicts used after
// normalization.
func IsCanonical(v string) bool {
	return canonicalVerdicts[v]
}
