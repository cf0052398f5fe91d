package classify

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jobfinder/internal/job"
	"jobfinder/internal/resume"
)

// defaultWorkers bounds batch classification concurrency when the caller
// does not.
const defaultWorkers = 8

// Batch classifies postings concurrently, preserving input order in the
// returned results. Individual malformed postings are collected into the
// second return value and do not stop the batch; a missing resume profile or
// a canceled context aborts the whole run.
func (c *Classifier) Batch(ctx context.Context, profile *resume.Profile, postings []job.Posting, workers int) (Results, []error, error) {
	if profile == nil || strings.TrimSpace(profile.RawText) == "" {
		return nil, nil, errors.New("resume profile has no text")
	}
	if len(postings) == 0 {
		return nil, nil, nil
	}
	if workers <= 0 {
		workers = defaultWorkers
	}

	slots := make([]*Result, len(postings))
	failures := make([]error, len(postings))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, posting := range postings {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := c.Classify(profile, posting)
			if err != nil {
				failures[i] = err
				return nil
			}
			slots[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	results := make(Results, 0, len(postings))
	for _, r := range slots {
		if r != nil {
			results = append(results, r)
		}
	}
	var errs []error
	for _, err := range failures {
		if err != nil {
			errs = append(errs, err)
		}
	}

	c.log.Info("batch classification finished",
		zap.Int("postings", len(postings)),
		zap.Int("classified", len(results)),
		zap.Int("failed", len(errs)),
	)

	return results, errs, nil
}
