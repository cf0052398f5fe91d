// Package source produces job postings from job boards, posting files and
// the built-in sample dataset. Every source yields a finite ordered posting
// slice; callers stay agnostic to provenance.
package source

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"jobfinder/internal/job"
)

// Source is one provider of job postings.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]job.Posting, error)
}

// FetchAll runs the sources in order and merges their postings,
// deduplicating by URL across sources. A failing source contributes nothing
// and its error is collected; only context cancellation aborts the whole
// fetch. Postings without a URL are never deduplicated against each other.
func FetchAll(ctx context.Context, log *zap.Logger, sources ...Source) ([]job.Posting, []error) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		merged  []job.Posting
		errs    []error
		seenURL = make(map[string]bool)
	)

	for _, src := range sources {
		if ctx.Err() != nil {
			return merged, append(errs, ctx.Err())
		}

		log.Info("fetching postings", zap.String("source", src.Name()))

		postings, err := src.Fetch(ctx)
		if err != nil {
			log.Warn("source failed",
				zap.String("source", src.Name()),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}

		added := 0
		for _, p := range postings {
			if p.URL != "" {
				if seenURL[p.URL] {
					continue
				}
				seenURL[p.URL] = true
			}
			merged = append(merged, p)
			added++
		}

		log.Info("source done",
			zap.String("source", src.Name()),
			zap.Int("postings", added),
			zap.Int("duplicates", len(postings)-added),
		)
	}

	log.Info("total unique postings", zap.Int("count", len(merged)))

	return merged, errs
}
