package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobfinder/internal/classify"
)

const includeSeenFlagMsg = "include-seen flag is set"

type minScoreFilter struct {
	threshold float64
}

// NewMinScore creates a filter that drops postings scoring below the
// configured match threshold.
func NewMinScore() Filter {
	return &minScoreFilter{threshold: DefaultMinScore}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Disable(string) {}

func (f *minScoreFilter) IsEnabled() bool { return true }

func (f *minScoreFilter) Validate(cfg *Config) error {
	f.threshold = DefaultMinScore
	if cfg != nil {
		f.threshold = cfg.MinScore
	}
	if f.threshold < 0 || f.threshold > 100 {
		return fmt.Errorf("min score %.2f is outside [0, 100]", f.threshold)
	}
	return nil
}

func (f *minScoreFilter) Apply(_ context.Context, deps Deps, results classify.Results) (classify.Results, Step, error) {
	initial := results.Len()

	kept := make(classify.Results, 0, initial)
	excluded := make([]string, 0)
	for _, r := range results {
		if r.Score >= f.threshold {
			kept = append(kept, r)
			continue
		}
		excluded = append(excluded, r.Posting.Key())
	}

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding postings below match threshold",
			zap.Float64("min_score", f.threshold),
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", kept.Len()),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(excluded), Left: kept.Len()}, nil
}

func (f *minScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: true,
		Details: map[string]string{"min_score": fmt.Sprintf("%.2f", f.threshold)},
	}
}

type companiesFilter struct {
	companies []string
}

// NewCompanies creates a filter that removes postings from companies
// configured as excluded.
func NewCompanies() Filter {
	return &companiesFilter{}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Disable(string) {}

func (f *companiesFilter) IsEnabled() bool { return true }

func (f *companiesFilter) Validate(cfg *Config) error {
	f.companies = nil
	if cfg == nil {
		return nil
	}
	for _, company := range cfg.Companies {
		company = strings.ToLower(strings.TrimSpace(company))
		if company == "" {
			continue
		}
		f.companies = append(f.companies, company)
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, deps Deps, results classify.Results) (classify.Results, Step, error) {
	initial := results.Len()
	if len(f.companies) == 0 {
		return results, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept := make(classify.Results, 0, initial)
	excluded := make([]string, 0)
	for _, r := range results {
		if f.excluded(r.Posting.Company) {
			excluded = append(excluded, r.Posting.Key())
			continue
		}
		kept = append(kept, r)
	}

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding postings by company",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", kept.Len()),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(excluded), Left: kept.Len()}, nil
}

func (f *companiesFilter) excluded(company string) bool {
	company = strings.ToLower(strings.TrimSpace(company))
	for _, candidate := range f.companies {
		if company == candidate {
			return true
		}
	}
	return false
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type seenFilter struct {
	ignore   bool
	disabled bool
	reason   string
}

// NewSeen creates a filter that removes postings recorded by earlier runs.
func NewSeen(cmd *cobra.Command) Filter {
	ignore := false
	if cmd != nil {
		flag := cmd.Flag("include-seen")
		if flag != nil && strings.EqualFold(flag.Value.String(), "true") {
			ignore = true
		}
	}
	return &seenFilter{ignore: ignore}
}

func (f *seenFilter) Name() string { return "seen" }

func (f *seenFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *seenFilter) IsEnabled() bool { return !f.disabled }

func (f *seenFilter) Validate(*Config) error { return nil }

func (f *seenFilter) Apply(ctx context.Context, deps Deps, results classify.Results) (classify.Results, Step, error) {
	initial := results.Len()
	if f.ignore {
		if deps.Logger != nil {
			deps.Logger.Info("keeping already reported postings", zap.String("reason", includeSeenFlagMsg))
		}
		return results, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	if deps.History == nil {
		if deps.Logger != nil {
			deps.Logger.Info("history store is not configured; skipping seen filter")
		}
		return results, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept := make(classify.Results, 0, initial)
	excluded := make([]string, 0)
	for _, r := range results {
		seen, err := deps.History.Seen(ctx, r.Posting.Key())
		if err != nil {
			return nil, Step{}, fmt.Errorf("checking history: %w", err)
		}
		if seen {
			excluded = append(excluded, r.Posting.Key())
			continue
		}
		kept = append(kept, r)
	}

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding postings reported by earlier runs",
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", kept.Len()),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(excluded), Left: kept.Len()}, nil
}

func (f *seenFilter) Status() Status {
	details := map[string]string{
		"exclude_seen": strconv.FormatBool(!f.ignore),
	}
	reason := f.reason
	if f.ignore && reason == "" {
		reason = "skip requested via flag"
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: reason, Details: details}
}
