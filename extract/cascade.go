package extract

import (
	"regexp"
	"strings"
)

// Names of the composite layouts, most fully specified first.
const (
	PatternLegacyComplete      = "legacy_complete"
	PatternNewFormatWithUpdate = "new_format_with_update"
	PatternOldFactCheckFormat  = "old_fact_check_format"
)

type field int

const (
	fieldCheckResult field = iota
	fieldCategories
	fieldPublishDate
	fieldUpdateDate
	fieldReportNumber
	fieldReporter
	fieldEditor
)

type fieldGroup struct {
	field field
	group int
}

// compositePattern captures a whole metadata header in one match. Each one
// corresponds to a template the site used at some point in its history.
type compositePattern struct {
	name   string
	re     *regexp.Regexp
	groups []fieldGroup
	fixup  func(*Metadata)
}

// cascade is tried in order and the first match wins. Later entries are
// looser and would steal text that an earlier entry should own.
var cascade = []compositePattern{
	{
		name: PatternLegacyComplete,
		re: mustCompile(
			`(錯誤|部分錯誤|事實釐清|正確)\s+(.*?)\s+發佈：?\s*(\d{4}-\d{2}-\d{2})\s*` +
				`(?:更新：?\s*(\d{4}-\d{2}-\d{2}))?\s*報告編號\s*：?\s*(\d+)\s*` +
				`(?:查核)?記者：?\s*([^責]+?)\s*責任編輯：?\s*([^\s內容背景查核]+)`),
		groups: []fieldGroup{
			{fieldCheckResult, 1},
			{fieldCategories, 2},
			{fieldPublishDate, 3},
			{fieldUpdateDate, 4},
			{fieldReportNumber, 5},
			{fieldReporter, 6},
			{fieldEditor, 7},
		},
	},
	{
		name: PatternNewFormatWithUpdate,
		re: mustCompile(
			`事實查核報告#(\d+)\s+【([^】]+)】.*?發布日期／(\d{4}-\d{2}-\d{2})\s+\d{2}:\d{2}:\d{2}\s+` +
				`【報告將隨時更新\s+(\d{4}/\d{2}/\d{2})版】`),
		groups: []fieldGroup{
			{fieldReportNumber, 1},
			{fieldCheckResult, 2},
			{fieldPublishDate, 3},
			{fieldUpdateDate, 4},
		},
		fixup: func(m *Metadata) {
			m.UpdateDate = strings.ReplaceAll(m.UpdateDate, "/", "-")
		},
	},
	{
		name: PatternOldFactCheckFormat,
		re: mustCompile(
			`事實查核報告#(\d+)\s+【([^】]+)】[^發]*?發布日期／(\d{4}-\d{2}-\d{2})\s+\d{2}:\d{2}:\d{2}`),
		groups: []fieldGroup{
			{fieldReportNumber, 1},
			{fieldCheckResult, 2},
			{fieldPublishDate, 3},
		},
	},
}

// MatchCascade tries each composite layout against rawText. It returns the
// recovered metadata, the name of the layout that matched and whether any
// layout matched at all.
func MatchCascade(rawText string) (Metadata, string, bool) {
	var meta Metadata
	if rawText == "" {
		return meta, "", false
	}

	for _, p := range cascade {
		groups := p.re.FindStringSubmatch(rawText)
		if groups == nil {
			continue
		}

		for _, fg := range p.groups {
			if fg.group < len(groups) && groups[fg.group] != "" {
				meta.set(fg.field, groups[fg.group])
			}
		}

		if p.fixup != nil {
			p.fixup(&meta)
		}
		meta.defaultUpdateDate()

		return meta, p.name, true
	}

	return meta, "", false
}

// set stores a captured value into the matching field.
func (m *Metadata) set(f field, value string) {
	value = strings.TrimSpace(value)

	switch f {
	case fieldCheckResult:
		m.CheckResult = value
	case fieldCategories:
		if value != "" {
			m.Categories = []string{value}
		}
	case fieldPublishDate:
		m.PublishDate = value
	case fieldUpdateDate:
		m.UpdateDate = value
	case fieldReportNumber:
		m.ReportNumber = value
	case fieldReporter:
		m.Reporter = trimReporter(value)
	case fieldEditor:
		m.Editor = value
	}
}

// trimReporter removes trailing enumeration commas left over when several
// reporters are listed.
func trimReporter(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "、")
}
