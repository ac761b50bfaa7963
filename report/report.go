// Package report assembles fact-check records from scraped articles and moves
// them between the crawler, the archive files and the dataset loader.
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pevans/factfed/extract"
)

// SourceTFC is the source tag written on every record.
const SourceTFC = "TFC"

// RawArticle is one scraped article page before extraction.
type RawArticle struct {
	URL     string
	Title   string
	RawText string
	Source  string
}

// FactCheckReport is the finished record for one article. Field names match
// the archive files consumed downstream.
type FactCheckReport struct {
	ContentURL       string   `json:"content_url"`
	Source           string   `json:"source"`
	Title            string   `json:"title"`
	Content          string   `json:"content"`
	ProcessedContent string   `json:"processed_content"`
	CheckResult      string   `json:"check_result"`
	PublishDate      string   `json:"publish_date"`
	UpdateDate       string   `json:"update_date"`
	Categories       []string `json:"categories"`
	ReportNumber     string   `json:"report_number"`
	Reporter         string   `json:"reporter"`
	Editor           string   `json:"editor"`
}

// Build runs extraction over the article and assembles the report. A panic
// inside extraction is recovered: the returned report then carries empty
// metadata and err describes the panic. The report is usable either way.
func Build(article RawArticle) (rep FactCheckReport, err error) {
	source := article.Source
	if source == "" {
		source = SourceTFC
	}

	rep = FactCheckReport{
		ContentURL: article.URL,
		Source:     source,
		Title:      article.Title,
		Content:    article.RawText,
		Categories: []string{},
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extraction panicked for %s: %v", article.URL, r)
		}
	}()

	res := extract.Extract(article.RawText, article.Title)
	rep.Apply(res)

	return rep, nil
}

// Apply copies an extraction result into the report, replacing any previous
// metadata.
func (r *FactCheckReport) Apply(res extract.Result) {
	r.ProcessedContent = res.ProcessedContent
	r.CheckResult = res.CheckResult
	r.PublishDate = res.PublishDate
	r.UpdateDate = res.UpdateDate
	r.ReportNumber = res.ReportNumber
	r.Reporter = res.Reporter
	r.Editor = res.Editor
	r.Categories = res.Categories
	if r.Categories == nil {
		r.Categories = []string{}
	}
}

// Trimmed returns a copy with surrounding whitespace removed from every
// string field.
func (r FactCheckReport) Trimmed() FactCheckReport {
	r.ContentURL = strings.TrimSpace(r.ContentURL)
	r.Source = strings.TrimSpace(r.Source)
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	r.ProcessedContent = strings.TrimSpace(r.ProcessedContent)
	r.CheckResult = strings.TrimSpace(r.CheckResult)
	r.PublishDate = strings.TrimSpace(r.PublishDate)
	r.UpdateDate = strings.TrimSpace(r.UpdateDate)
	r.ReportNumber = strings.TrimSpace(r.ReportNumber)
	r.Reporter = strings.TrimSpace(r.Reporter)
	r.Editor = strings.TrimSpace(r.Editor)

	categories := make([]string, len(r.Categories))
	for i, c := range r.Categories {
		categories[i] = strings.TrimSpace(c)
	}
	r.Categories = categories

	return r
}

// Sink accepts finished reports. Implementations must be safe for
// concurrent use.
type Sink interface {
	Add(rep FactCheckReport) error
}

// MultiSink fans a report out to several sinks. Every sink sees every report;
// the errors are joined.
type MultiSink []Sink

// Add implements Sink.
func (m MultiSink) Add(rep FactCheckReport) error {
	var errs []error
	for _, s := range m {
		if err := s.Add(rep); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
