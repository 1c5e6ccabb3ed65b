package collector

import (
	"context"
	"fmt"

	"github.com/fakeyudi/lineprof/internal/report"
)

// Collector gathers one category of data that enriches a finished report.
type Collector interface {
	// Collect runs the collection logic and returns its contribution to the report.
	// Warnings are returned as non-fatal issues in CollectorResult.Warnings.
	Collect(ctx context.Context, r *report.Report) (CollectorResult, error)
}

// CollectorResult holds the output of a single collector.
type CollectorResult struct {
	Sources  map[string][]string // populated by SourceCollector, keyed by report path
	GitInfo  *report.GitInfo     // populated by GitCollector
	Warnings []string            // non-fatal issues encountered
}

// Enrich runs every collector in order and merges the results into r.
func Enrich(ctx context.Context, r *report.Report, collectors ...Collector) error {
	for _, c := range collectors {
		if err := ctx.Err(); err != nil {
			return err
		}
		result, err := c.Collect(ctx, r)
		if err != nil {
			return fmt.Errorf("collector error: %w", err)
		}
		for i := range r.Files {
			if src, ok := result.Sources[r.Files[i].Path]; ok {
				r.Files[i].Source = src
			}
		}
		if result.GitInfo != nil {
			r.Git = result.GitInfo
		}
		r.Warnings = append(r.Warnings, result.Warnings...)
	}
	return nil
}
