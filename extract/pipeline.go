package extract

// Extract runs the full extraction pipeline over one article. The order is
// fixed:
//
//  1. segment the body out of the page chrome
//  2. try the composite cascade on the raw text
//  3. fall back to per-field patterns when no layout matched
//  4. fall back to the title when the verdict is still unknown
//  5. normalize the verdict
//  6. clean the segmented body
//
// The title is passed in explicitly; Extract keeps no state between calls.
func Extract(rawText, title string) Result {
	body := Segment(rawText)

	meta, matched, ok := MatchCascade(rawText)
	if !ok {
		meta = ExtractFields(rawText)
	}

	if meta.CheckResult == "" {
		meta.CheckResult = ClassifyTitle(title)
	}
	meta.CheckResult = NormalizeClassification(meta.CheckResult)

	if meta.Categories == nil {
		meta.Categories = []string{}
	}

	return Result{
		Metadata:         meta,
		ProcessedContent: Clean(body),
		Matched:          matched,
	}
}
