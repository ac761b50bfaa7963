// Package store indexes fact-check reports in SQLite and serves them over
// HTTP.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pevans/factfed/extract"
	"github.com/pevans/factfed/report"
)

// Custom errors for report operations
var (
	ErrReportNotFound = errors.New("report not found")
	ErrEmptyURL       = errors.New("report has no content URL")
)

// ReportStore keeps one row per report URL.
type ReportStore struct {
	db *sql.DB
}

// Record is a stored report.
type Record struct {
	ID uuid.UUID `json:"id"`
	report.FactCheckReport
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReportFilter represents filtering options for listing reports. Results are
// ordered by report number, newest first.
type ReportFilter struct {
	CheckResult string // Exact verdict match
	Category    string // Report must carry this category
	Limit       int    // Pagination limit, zero for all
	Offset      int    // Pagination offset
}

// ListResult holds one page of reports and the number of matches overall.
type ListResult struct {
	Records []Record
	Total   int
}

// NewReportStore opens (or creates) the database at dbPath.
func NewReportStore(dbPath string) (*ReportStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer; crawler callbacks add concurrently.
	db.SetMaxOpenConns(1)

	store := &ReportStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the reports table if it doesn't exist.
func (s *ReportStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		report_id TEXT PRIMARY KEY,
		content_url TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		processed_content TEXT NOT NULL,
		check_result TEXT NOT NULL,
		publish_date TEXT NOT NULL,
		update_date TEXT NOT NULL,
		categories TEXT NOT NULL,
		report_number TEXT NOT NULL,
		reporter TEXT NOT NULL,
		editor TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reports_check_result ON reports (check_result);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *ReportStore) Close() error {
	return s.db.Close()
}

var _ report.Sink = (*ReportStore)(nil)

// Add implements report.Sink.
func (s *ReportStore) Add(rep report.FactCheckReport) error {
	_, err := s.Upsert(rep)
	return err
}

// Upsert stores the report, replacing the row with the same URL. A replaced
// row keeps its ID and creation time.
func (s *ReportStore) Upsert(rep report.FactCheckReport) (*Record, error) {
	rep = rep.Trimmed()
	if rep.ContentURL == "" {
		return nil, ErrEmptyURL
	}

	categories, err := json.Marshal(rep.Categories)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal categories: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	record := &Record{
		ID:              uuid.New(),
		FactCheckReport: rep,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var idStr, createdAtStr string
	err = tx.QueryRow("SELECT report_id, created_at FROM reports WHERE content_url = ?", rep.ContentURL).
		Scan(&idStr, &createdAtStr)
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.Exec(`
			INSERT INTO reports (
				report_id, content_url, source, title, content, processed_content,
				check_result, publish_date, update_date, categories, report_number,
				reporter, editor, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			record.ID.String(), rep.ContentURL, rep.Source, rep.Title, rep.Content, rep.ProcessedContent,
			rep.CheckResult, rep.PublishDate, rep.UpdateDate, string(categories), rep.ReportNumber,
			rep.Reporter, rep.Editor, formatTime(record.CreatedAt), formatTime(record.UpdatedAt),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert report: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to query report: %w", err)
	default:
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse report ID: %w", err)
		}
		record.ID = id
		record.CreatedAt = parseTime(createdAtStr)

		_, err = tx.Exec(`
			UPDATE reports SET
				source = ?, title = ?, content = ?, processed_content = ?,
				check_result = ?, publish_date = ?, update_date = ?, categories = ?,
				report_number = ?, reporter = ?, editor = ?, updated_at = ?
			WHERE report_id = ?
		`,
			rep.Source, rep.Title, rep.Content, rep.ProcessedContent,
			rep.CheckResult, rep.PublishDate, rep.UpdateDate, string(categories),
			rep.ReportNumber, rep.Reporter, rep.Editor, formatTime(record.UpdatedAt),
			idStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update report: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit report: %w", err)
	}

	return record, nil
}

const selectColumns = `
	SELECT report_id, content_url, source, title, content, processed_content,
	       check_result, publish_date, update_date, categories, report_number,
	       reporter, editor, created_at, updated_at
	FROM reports
`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord parses one row selected with selectColumns.
func scanRecord(row rowScanner) (*Record, error) {
	var idStr, categoriesJSON, createdAtStr, updatedAtStr string
	var rep report.FactCheckReport

	err := row.Scan(
		&idStr, &rep.ContentURL, &rep.Source, &rep.Title, &rep.Content, &rep.ProcessedContent,
		&rep.CheckResult, &rep.PublishDate, &rep.UpdateDate, &categoriesJSON, &rep.ReportNumber,
		&rep.Reporter, &rep.Editor, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report ID: %w", err)
	}

	rep.Categories = []string{}
	if err := json.Unmarshal([]byte(categoriesJSON), &rep.Categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
	}
	if rep.Categories == nil {
		rep.Categories = []string{}
	}

	return &Record{
		ID:              id,
		FactCheckReport: rep,
		CreatedAt:       parseTime(createdAtStr),
		UpdatedAt:       parseTime(updatedAtStr),
	}, nil
}

// Get retrieves a report by ID.
func (s *ReportStore) Get(id uuid.UUID) (*Record, error) {
	return s.getWhere("report_id = ?", id.String())
}

// GetByURL retrieves a report by its article URL.
func (s *ReportStore) GetByURL(url string) (*Record, error) {
	return s.getWhere("content_url = ?", url)
}

func (s *ReportStore) getWhere(clause string, arg any) (*Record, error) {
	record, err := scanRecord(s.db.QueryRow(selectColumns+" WHERE "+clause, arg))
	if err == sql.ErrNoRows {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	return record, nil
}

// HasURL reports whether a report for the URL is stored. It lets the
// crawler skip articles it already has.
func (s *ReportStore) HasURL(ctx context.Context, url string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports WHERE content_url = ?", url).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query report: %w", err)
	}
	return n > 0, nil
}

// List returns the reports matching filter, newest report number first.
func (s *ReportStore) List(filter ReportFilter) (*ListResult, error) {
	query := selectColumns

	var whereClauses []string
	var args []any

	if filter.CheckResult != "" {
		whereClauses = append(whereClauses, "check_result = ?")
		args = append(args, filter.CheckResult)
	}
	if filter.Category != "" {
		whereClauses = append(whereClauses, "EXISTS (SELECT 1 FROM json_each(reports.categories) WHERE json_each.value = ?)")
		args = append(args, filter.Category)
	}

	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reports: %w", err)
	}

	// Report numbers are compared as arbitrary-length integers, which SQL
	// ordering on a TEXT column cannot do.
	slices.SortStableFunc(records, func(a, b Record) int {
		return report.CompareReportNumbers(b.ReportNumber, a.ReportNumber)
	})

	total := len(records)
	if filter.Offset > 0 {
		records = records[min(filter.Offset, len(records)):]
	}
	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[:filter.Limit]
	}

	return &ListResult{Records: records, Total: total}, nil
}

// Delete removes a report.
func (s *ReportStore) Delete(id uuid.UUID) error {
	result, err := s.db.Exec("DELETE FROM reports WHERE report_id = ?", id.String())
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrReportNotFound
	}

	return nil
}

// Stats summarises the stored reports.
func (s *ReportStore) Stats() (report.Stats, error) {
	stats := report.Stats{CheckResults: []report.Count{}, TopCategories: []report.Count{}}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM reports").Scan(&stats.Total); err != nil {
		return stats, fmt.Errorf("failed to count reports: %w", err)
	}

	results, err := s.counts(`
		SELECT check_result, COUNT(*) AS n FROM reports
		GROUP BY check_result ORDER BY n DESC, check_result ASC
	`)
	if err != nil {
		return stats, err
	}
	stats.CheckResults = results

	for _, c := range results {
		if !extract.IsCanonical(c.Value) {
			stats.NonCanonical += c.Count
		}
	}

	categories, err := s.counts(fmt.Sprintf(`
		SELECT json_each.value, COUNT(*) AS n FROM reports, json_each(reports.categories)
		GROUP BY json_each.value ORDER BY n DESC, json_each.value ASC LIMIT %d
	`, report.TopCategoryCount))
	if err != nil {
		return stats, err
	}
	stats.TopCategories = categories

	return stats, nil
}

func (s *ReportStore) counts(query string) ([]report.Count, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query counts: %w", err)
	}
	defer rows.Close()

	counts := []report.Count{}
	for rows.Next() {
		var c report.Count
		if err := rows.Scan(&c.Value, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Helper functions for time formatting
func formatTime(t time.Time) string {
	// Strip monotonic clock for consistent storage and comparisons
	return t.Truncate(0).Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
