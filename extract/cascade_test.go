package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMatchCascade_LegacyComplete verifies the fully specified legacy header
func TestMatchCascade_LegacyComplete(t *testing.T) {
	raw := "首頁 查核報告 錯誤 國際 發佈：2021-03-05 更新：2021-03-06 報告編號：102 記者：王小明 責任編輯：陳小華"

	meta, name, ok := MatchCascade(raw)

	require.True(t, ok, "legacy header should match")
	assert.Equal(t, PatternLegacyComplete, name)
	assert.Equal(t, "錯誤", meta.CheckResult)
	assert.Equal(t, []string{"國際"}, meta.Categories)
	assert.Equal(t, "2021-03-05", meta.PublishDate)
	assert.Equal(t, "2021-03-06", meta.UpdateDate)
	assert.Equal(t, "102", meta.ReportNumber)
	assert.Equal(t, "王小明", meta.Reporter)
	assert.Equal(t, "陳小華", meta.Editor)
}

// TestMatchCascade_LegacyWithoutUpdate verifies update date defaults to the
// publish date and trailing reporter separators are dropped
func TestMatchCascade_LegacyWithoutUpdate(t *testing.T) {
	raw := "部分錯誤 健康 發佈：2020-05-01 報告編號 ： 3456 查核記者：林大同、 責任編輯：張美玲 內容說明"

	meta, name, ok := MatchCascade(raw)

	require.True(t, ok)
	assert.Equal(t, PatternLegacyComplete, name)
	assert.Equal(t, "部分錯誤", meta.CheckResult)
	assert.Equal(t, "2020-05-01", meta.PublishDate)
	assert.Equal(t, "2020-05-01", meta.UpdateDate, "update date should copy publish date")
	assert.Equal(t, "3456", meta.ReportNumber)
	assert.Equal(t, "林大同", meta.Reporter, "trailing 、 should be stripped")
	assert.Equal(t, "張美玲", meta.Editor, "editor should stop before whitespace")
}

// TestMatchCascade_NewFormatWithUpdate verifies slash dates are converted
func TestMatchCascade_NewFormatWithUpdate(t *testing.T) {
	raw := "事實查核報告#3001 【部分錯誤】 網傳影片 發布日期／2024-04-01 12:00:00 【報告將隨時更新 2024/04/03版】 一、背景"

	meta, name, ok := MatchCascade(raw)

	require.True(t, ok)
	assert.Equal(t, PatternNewFormatWithUpdate, name)
	assert.Equal(t, "3001", meta.ReportNumber)
	assert.Equal(t, "部分錯誤", meta.CheckResult)
	assert.Equal(t, "2024-04-01", meta.PublishDate)
	assert.Equal(t, "2024-04-03", meta.UpdateDate)
	assert.Empty(t, meta.Categories)
	assert.Empty(t, meta.Reporter)
	assert.Empty(t, meta.Editor)
}

// TestMatchCascade_OldFactCheckFormat verifies the loosest layout
func TestMatchCascade_OldFactCheckFormat(t *testing.T) {
	raw := "事實查核報告#1500 【錯誤】 網傳訊息稱 發布日期／2018-07-07 09:30:00 內容"

	meta, name, ok := MatchCascade(raw)

	require.True(t, ok)
	assert.Equal(t, PatternOldFactCheckFormat, name)
	assert.Equal(t, "1500", meta.ReportNumber)
	assert.Equal(t, "錯誤", meta.CheckResult)
	assert.Equal(t, "2018-07-07", meta.PublishDate)
	assert.Equal(t, "2018-07-07", meta.UpdateDate)
}

// TestMatchCascade_Priority verifies the most specific layout wins when
// several layouts match the same text
func TestMatchCascade_Priority(t *testing.T) {
	raw := "事實查核報告#2001 【錯誤】 發布日期／2022-01-02 10:11:12 " +
		"錯誤 健康 發佈：2022-01-03 報告編號：1999 記者：甲 責任編輯：乙"

	// Sanity check: the looser layout matches on its own.
	require.True(t, cascade[2].re.MatchString(raw))

	meta, name, ok := MatchCascade(raw)

	require.True(t, ok)
	assert.Equal(t, PatternLegacyComplete, name)
	assert.Equal(t, "1999", meta.ReportNumber, "legacy report number should win")
	assert.Equal(t, "2022-01-03", meta.PublishDate)
	assert.Equal(t, []string{"健康"}, meta.Categories)
	assert.Equal(t, "甲", meta.Reporter)
	assert.Equal(t, "乙", meta.Editor)
}

// TestMatchCascade_NoMatch verifies unmatched text reports no match
func TestMatchCascade_NoMatch(t *testing.T) {
	tests := []string{
		"",
		"這是一段沒有任何報告標頭的文字",
		"錯誤 發佈：2020-01-01",
		"事實查核報告#12 沒有標籤 發布日期／2020-01-01 10:00:00",
	}

	for _, raw := range tests {
		meta, name, ok := MatchCascade(raw)
		assert.False(t, ok, "should not match %q", raw)
		assert.Empty(t, name)
		assert.Equal(t, Metadata{}, meta)
	}
}

// TestMatchCascade_UnicodeSeparators verifies headers separated by
// ideographic or no-break spaces still match
func TestMatchCascade_UnicodeSeparators(t *testing.T) {
	tests := []struct {
		name string
		sep  string
	}{
		{"ideographic space", "\u3000"},
		{"no-break space", "\u00a0"},
		{"mixed", "\u3000\u00a0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := strings.Join([]string{
				"錯誤", "國際", "發佈：2021-03-05", "報告編號：102", "記者：王小明", "責任編輯：陳小華", "內容",
			}, tt.sep)

			meta, name, ok := MatchCascade(raw)

			require.True(t, ok)
			assert.Equal(t, PatternLegacyComplete, name)
			assert.Equal(t, "錯誤", meta.CheckResult)
			assert.Equal(t, []string{"國際"}, meta.Categories)
			assert.Equal(t, "102", meta.ReportNumber)
			assert.Equal(t, "王小明", meta.Reporter)
			assert.Equal(t, "陳小華", meta.Editor)
		})
	}
}

// TestMustCompile_WidensSpace verifies \s covers Unicode separators both as
// an atom and inside a negated class
func TestMustCompile_WidensSpace(t *testing.T) {
	re := mustCompile(`a\s+([^\s]+)`)

	m := re.FindStringSubmatch("a\u3000bc\u00a0d")
	require.NotNil(t, m)
	assert.Equal(t, "bc", m[1])

	assert.True(t, mustCompile(`^\d\]$`).MatchString("1]"), "other escapes are kept")
}
