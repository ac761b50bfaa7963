package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds BuildBatch when no limit is given.
const DefaultConcurrency = 8

// BuildError records an article whose extraction failed inside a batch.
type BuildError struct {
	Index int
	URL   string
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("article %d (%s): %v", e.Index, e.URL, e.Err)
}

// BatchResult holds the reports of a batch in input order. Failed articles
// still have a report with empty metadata at their index.
type BatchResult struct {
	Reports []FactCheckReport
	Errors  []BuildError
}

// BuildBatch builds reports for many articles with at most concurrency
// extractions running at once. Only cancellation of ctx returns an error.
func BuildBatch(ctx context.Context, articles []RawArticle, concurrency int) (*BatchResult, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	reports := make([]FactCheckReport, len(articles))
	errs := make([]error, len(articles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, article := range articles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i], errs[i] = Build(article)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}

	result := &BatchResult{Reports: reports}
	for i, err := range errs {
		if err != nil {
			result.Errors = append(result.Errors, BuildError{Index: i, URL: articles[i].URL, Err: err})
		}
	}

	return result, nil
}
