package report

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pevans/factfed/extract"
)

// DefaultLoadLimit is the number of records Prepare takes when no limit is
// given.
const DefaultLoadLimit = 1000

// Document is a report reduced to the fields a retrieval index needs.
type Document struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	ProcessedContent string   `json:"processed_content"`
	CheckResult      string   `json:"check_result"`
	Categories       []string `json:"categories"`
	PublishDate      string   `json:"publish_date"`
	ContentURL       string   `json:"content_url"`
	Source           string   `json:"source"`
}

// Load reads an archive file written by Archive.
func Load(path string) ([]FactCheckReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}

	var reports []FactCheckReport
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("failed to unmarshal archive: %w", err)
	}

	return reports, nil
}

// PrepareResult holds the prepared documents and the indices of the records
// that were skipped for missing a title or body.
type PrepareResult struct {
	Documents []Document
	Skipped   []string
}

// Prepare turns the first limit reports into documents. The archive is
// sorted newest first, so this keeps the most recent reports. A limit of zero
// or less means DefaultLoadLimit.
func Prepare(reports []FactCheckReport, limit int) PrepareResult {
	if limit <= 0 {
		limit = DefaultLoadLimit
	}
	if len(reports) > limit {
		reports = reports[:limit]
	}

	result := PrepareResult{Documents: []Document{}}
	for i, rep := range reports {
		id := documentID(rep, i)
		if rep.Title == "" || rep.ProcessedContent == "" {
			result.Skipped = append(result.Skipped, id)
			continue
		}

		source := rep.Source
		if source == "" {
			source = SourceTFC
		}

		categories := []string{}
		for _, c := range rep.Categories {
			if strings.TrimSpace(c) != "" {
				categories = append(categories, c)
			}
		}

		result.Documents = append(result.Documents, Document{
			ID:               id,
			Title:            rep.Title,
			ProcessedContent: rep.ProcessedContent,
			CheckResult:      rep.CheckResult,
			Categories:       categories,
			PublishDate:      rep.PublishDate,
			ContentURL:       rep.ContentURL,
			Source:           source,
		})
	}

	return result
}

func documentID(rep FactCheckReport, index int) string {
	if rep.ReportNumber != "" {
		return "tfc_" + rep.ReportNumber
	}
	return "tfc_" + strconv.Itoa(index)
}

// Count is one entry of a distribution.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Stats summarises a set of documents.
type Stats struct {
	Total         int     `json:"total"`
	CheckResults  []Count `json:"check_results"`
	TopCategories []Count `json:"top_categories"`
	// NonCanonical counts documents whose verdict is outside the four
	// canonical labels, including empty ones.
	NonCanonical int `json:"non_canonical"`
}

// TopCategoryCount is the number of categories reported in Stats.
const TopCategoryCount = 5

// ComputeStats counts verdicts and categories. Distributions are ordered by
// count descending, then by value.
func ComputeStats(docs []Document) Stats {
	results := map[string]int{}
	categories := map[string]int{}
	stats := Stats{Total: len(docs)}

	for _, d := range docs {
		results[d.CheckResult]++
		if !extract.IsCanonical(d.CheckResult) {
			stats.NonCanonical++
		}
		for _, c := range d.Categories {
			categories[c]++
		}
	}

	stats.CheckResults = sortedCounts(results)
	stats.TopCategories = sortedCounts(categories)
	if len(stats.TopCategories) > TopCategoryCount {
		stats.TopCategories = stats.TopCategories[:TopCategoryCount]
	}

	return stats
}

func sortedCounts(m map[string]int) []Count {
	counts := make([]Count, 0, len(m))
	for v, n := range m {
		counts = append(counts, Count{Value: v, Count: n})
	}
	slices.SortFunc(counts, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Value, b.Value)
	})
	return counts
}
