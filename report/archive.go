package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/pevans/factfed/logging"
)

// Archive file names inside the output directory.
const (
	UnsortedFile = "tfc_reports_unsorted.json"
	SortedFile   = "tfc_reports_sorted.json"
)

// WriteError describes a failure to write a single report.
type WriteError struct {
	URL string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.URL, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Archive writes reports to a pair of JSON files. The unsorted file grows as
// reports arrive so a crashed crawl keeps everything written so far; the
// sorted file is written once on Close.
type Archive struct {
	dir    string
	logger logging.Logger

	mu      sync.Mutex
	file    *os.File
	first   bool
	closed  bool
	reports []FactCheckReport
	errors  []WriteError
}

// NewArchive creates the output directory and truncates the unsorted file.
func NewArchive(dir string, logger logging.Logger) (*Archive, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, UnsortedFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create unsorted archive: %w", err)
	}
	if _, err := f.WriteString("[\n"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write unsorted archive: %w", err)
	}

	return &Archive{
		dir:    dir,
		logger: logger.With(logging.String("component", "archive")),
		file:   f,
		first:  true,
	}, nil
}

// Add implements Sink. The report is kept for the sorted file even when the
// incremental write fails; the failure is logged and recorded.
func (a *Archive) Add(rep FactCheckReport) error {
	rep = rep.Trimmed()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return fmt.Errorf("archive is closed")
	}

	a.reports = append(a.reports, rep)

	if err := a.appendLocked(rep); err != nil {
		a.errors = append(a.errors, WriteError{URL: rep.ContentURL, Err: err})
		a.logger.Error("failed to append report",
			logging.String("url", rep.ContentURL),
			logging.Error(err))
		return &WriteError{URL: rep.ContentURL, Err: err}
	}

	a.logger.Debug("appended report",
		logging.String("url", rep.ContentURL),
		logging.Int("count", len(a.reports)))
	return nil
}

func (a *Archive) appendLocked(rep FactCheckReport) error {
	data, err := marshalIndent(rep, "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if !a.first {
		data = append([]byte(",\n"), data...)
	}
	if _, err := a.file.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	a.first = false
	return nil
}

// Len returns the number of reports accepted so far.
func (a *Archive) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.reports)
}

// Errors returns the per-report write failures collected so far.
func (a *Archive) Errors() []WriteError {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]WriteError(nil), a.errors...)
}

// Close terminates the unsorted array and writes the sorted file. When no
// report was added the sorted file is not written.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	_, werr := a.file.WriteString("\n]")
	cerr := a.file.Close()
	if werr != nil {
		return fmt.Errorf("failed to finish unsorted archive: %w", werr)
	}
	if cerr != nil {
		return fmt.Errorf("failed to close unsorted archive: %w", cerr)
	}

	if len(a.reports) == 0 {
		a.logger.Info("no reports to write")
		return nil
	}

	sorted := slices.Clone(a.reports)
	SortByReportNumber(sorted)

	if err := WriteJSON(filepath.Join(a.dir, SortedFile), sorted, "    "); err != nil {
		return err
	}

	a.logger.Info("archive written",
		logging.Int("reports", len(sorted)),
		logging.Int("write_errors", len(a.errors)),
		logging.String("dir", a.dir))
	return nil
}

// WriteJSON marshals v with the given indent and writes it to path.
func WriteJSON(path string, v any, indent string) error {
	data, err := marshalIndent(v, indent)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// marshalIndent is json.MarshalIndent without HTML escaping, so article text
// containing & or < is written as-is.
func marshalIndent(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
