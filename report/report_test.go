package report

import (
	"context"
	"errors"
	"testing"

	"github.com/pevans/factfed/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyText = "錯誤 國際 發佈：2021-03-05 報告編號：102 記者：王小明 責任編輯：陳小華 " +
	extract.ShareAnchor + " 背景 網傳訊息"

// TestBuild_Complete verifies article fields and metadata are combined
func TestBuild_Complete(t *testing.T) {
	rep, err := Build(RawArticle{
		URL:     "https://tfc-taiwan.org.tw/fact-check-reports/102",
		Title:   "網傳某事",
		RawText: legacyText,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://tfc-taiwan.org.tw/fact-check-reports/102", rep.ContentURL)
	assert.Equal(t, SourceTFC, rep.Source, "source should default to TFC")
	assert.Equal(t, "網傳某事", rep.Title)
	assert.Equal(t, legacyText, rep.Content)
	assert.Equal(t, "背景 網傳訊息", rep.ProcessedContent)
	assert.Equal(t, "錯誤", rep.CheckResult)
	assert.Equal(t, []string{"國際"}, rep.Categories)
	assert.Equal(t, "102", rep.ReportNumber)
	assert.Equal(t, "王小明", rep.Reporter)
	assert.Equal(t, "陳小華", rep.Editor)
}

// TestBuild_EmptyArticle verifies an empty page yields an empty but valid
// report
func TestBuild_EmptyArticle(t *testing.T) {
	rep, err := Build(RawArticle{URL: "https://example.com/a", Source: "custom"})
	require.NoError(t, err)

	assert.Equal(t, "custom", rep.Source)
	assert.NotNil(t, rep.Categories)
	assert.Empty(t, rep.CheckResult)
	assert.Empty(t, rep.ProcessedContent)
}

// TestTrimmed verifies every string field is trimmed
func TestTrimmed(t *testing.T) {
	rep := FactCheckReport{
		ContentURL:   " https://example.com ",
		Title:        "\n標題\t",
		CheckResult:  " 正確 ",
		ReportNumber: " 7 ",
		Categories:   []string{" 國際 ", "健康"},
	}

	trimmed := rep.Trimmed()

	assert.Equal(t, "https://example.com", trimmed.ContentURL)
	assert.Equal(t, "標題", trimmed.Title)
	assert.Equal(t, "正確", trimmed.CheckResult)
	assert.Equal(t, "7", trimmed.ReportNumber)
	assert.Equal(t, []string{"國際", "健康"}, trimmed.Categories)
	assert.Equal(t, " 國際 ", rep.Categories[0], "original should be untouched")
}

type recordingSink struct {
	reports []FactCheckReport
	err     error
}

func (s *recordingSink) Add(rep FactCheckReport) error {
	s.reports = append(s.reports, rep)
	return s.err
}

// TestMultiSink verifies every sink receives the report and errors are joined
func TestMultiSink(t *testing.T) {
	errFull := errors.New("full")
	a := &recordingSink{}
	b := &recordingSink{err: errFull}
	c := &recordingSink{}

	err := MultiSink{a, b, c}.Add(FactCheckReport{Title: "x"})

	require.Error(t, err)
	assert.ErrorIs(t, err, errFull)
	assert.Len(t, a.reports, 1)
	assert.Len(t, b.reports, 1)
	assert.Len(t, c.reports, 1, "later sinks should still be called after an error")

	assert.NoError(t, MultiSink{a}.Add(FactCheckReport{}))
}

// TestBuildBatch_PreservesOrder verifies reports come back in input order
func TestBuildBatch_PreservesOrder(t *testing.T) {
	articles := []RawArticle{
		{URL: "u1", RawText: legacyText},
		{URL: "u2", RawText: "說明 【正確】 內容"},
		{URL: "u3", Title: "【部分錯誤】標題"},
	}

	result, err := BuildBatch(context.Background(), articles, 2)
	require.NoError(t, err)
	require.Len(t, result.Reports, 3)
	assert.Empty(t, result.Errors)

	assert.Equal(t, "u1", result.Reports[0].ContentURL)
	assert.Equal(t, "錯誤", result.Reports[0].CheckResult)
	assert.Equal(t, "u2", result.Reports[1].ContentURL)
	assert.Equal(t, "正確", result.Reports[1].CheckResult)
	assert.Equal(t, "u3", result.Reports[2].ContentURL)
	assert.Equal(t, "部分錯誤", result.Reports[2].CheckResult)
}

// TestBuildBatch_Cancelled verifies a cancelled context aborts the batch
func TestBuildBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildBatch(ctx, []RawArticle{{URL: "u1"}, {URL: "u2"}}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestBuildBatch_Empty verifies an empty batch is not an error
func TestBuildBatch_Empty(t *testing.T) {
	result, err := BuildBatch(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, result.Reports)
}
