package report

import (
	"slices"
	"strings"
)

// SortByReportNumber orders reports newest first by report number. Reports
// without a numeric report number sort last and keep their relative order.
func SortByReportNumber(reports []FactCheckReport) {
	slices.SortStableFunc(reports, func(a, b FactCheckReport) int {
		return CompareReportNumbers(b.ReportNumber, a.ReportNumber)
	})
}

// CompareReportNumbers compares two report numbers as integers. Empty or
// non-numeric values rank below every number and equal to each other. The
// comparison works on the digit strings so arbitrarily long numbers never
// overflow.
func CompareReportNumbers(a, b string) int {
	da, okA := digitKey(a)
	db, okB := digitKey(b)

	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}

	if len(da) != len(db) {
		if len(da) < len(db) {
			return -1
		}
		return 1
	}
	return strings.Compare(da, db)
}

// digitKey trims the value and strips leading zeros. ok is false unless the
// trimmed value is a non-empty run of ASCII digits.
func digitKey(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", false
		}
	}

	s = strings.TrimLeft(s, "0")
	if s == "" {
		s = "0"
	}
	return s, true
}
