package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCompareReportNumbers verifies numeric ordering and the rank of
// non-numeric values
func TestCompareReportNumbers(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"10", "9", 1},
		{"9", "10", -1},
		{"007", "7", 0},
		{" 12 ", "12", 0},
		{"0", "", 1},
		{"", "0", -1},
		{"", "", 0},
		{"abc", "", 0},
		{"12a", "1", -1},
		{"99999999999999999999999", "99999999999999999999998", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CompareReportNumbers(tt.a, tt.b), "compare %q %q", tt.a, tt.b)
	}
}

// TestSortByReportNumber verifies descending order with unnumbered reports
// last in their original order
func TestSortByReportNumber(t *testing.T) {
	reports := []FactCheckReport{
		{Title: "a", ReportNumber: ""},
		{Title: "b", ReportNumber: "5"},
		{Title: "c", ReportNumber: "x1"},
		{Title: "d", ReportNumber: "100"},
		{Title: "e", ReportNumber: "5"},
		{Title: "f", ReportNumber: "20"},
	}

	SortByReportNumber(reports)

	titles := make([]string, len(reports))
	for i, r := range reports {
		titles[i] = r.Title
	}
	assert.Equal(t, []string{"d", "f", "b", "e", "a", "c"}, titles)
}
