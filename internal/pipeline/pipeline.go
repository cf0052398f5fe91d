// Package pipeline ties one job-finder pass together: load the resume,
// fetch postings, classify and filter them, then hand the qualified
// results to the reporting sinks.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"jobfinder/internal/ai"
	"jobfinder/internal/classify"
	"jobfinder/internal/filtering"
	"jobfinder/internal/history"
	"jobfinder/internal/job"
	"jobfinder/internal/match"
	"jobfinder/internal/report"
	"jobfinder/internal/resume"
	"jobfinder/internal/source"
	"jobfinder/internal/vocab"
)

// defaultTopJobs caps the matches carried into the run summary.
const defaultTopJobs = 10

// Sheet logs qualified postings to the spreadsheet.
type Sheet interface {
	Log(ctx context.Context, results classify.Results) (int, error)
}

// Backup appends qualified postings to the local CSV file.
type Backup interface {
	Append(results classify.Results) (int, error)
}

// Notifier emails the run report.
type Notifier interface {
	Notify(ctx context.Context, results classify.Results, summary *report.RunSummary) (bool, error)
}

// Recorder persists reported postings and run statistics across runs, and
// backs the seen filter.
type Recorder interface {
	filtering.SeenChecker
	Record(ctx context.Context, p *job.Posting, score float64) (bool, error)
	RecordRun(ctx context.Context, rec history.RunRecord) error
}

// ExecLogger appends the human-readable run block to the execution log.
type ExecLogger interface {
	Append(summary *report.RunSummary) error
}

// Config carries the per-run settings.
type Config struct {
	ResumePath string
	MinScore   float64
	Companies  []string
	Weights    match.Weights
	Workers    int
	TopJobs    int
}

// Deps wires the pipeline to its collaborators. Sinks left nil are skipped
// instead of failing the run.
type Deps struct {
	Logger   *zap.Logger
	Vocab    *vocab.Vocabulary
	Sources  []source.Source
	Filters  []filtering.Filter
	History  Recorder
	Sheet    Sheet
	Backup   Backup
	Notifier Notifier
	ExecLog  ExecLogger
	Adviser  ai.Adviser
}

// Collection is everything a run gathered before reporting: the resume
// profile, the raw postings and the qualified results.
type Collection struct {
	Profile   *resume.Profile
	Postings  []job.Posting
	Qualified classify.Results
	Skipped   int
	Sources   []string
	Errors    []string
	Started   time.Time
}

type Pipeline struct {
	cfg  Config
	deps Deps
	now  func() time.Time
}

func New(cfg Config, deps Deps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.TopJobs <= 0 {
		cfg.TopJobs = defaultTopJobs
	}
	if cfg.Weights == (match.Weights{}) {
		cfg.Weights = match.DefaultWeights()
	}
	return &Pipeline{cfg: cfg, deps: deps, now: time.Now}
}

// Collect runs the gathering half of the pipeline: resume, postings,
// classification and filtering. A missing resume is fatal; source and
// per-posting failures degrade to collected errors.
func (p *Pipeline) Collect(ctx context.Context) (*Collection, error) {
	log := p.deps.Logger
	c := &Collection{Started: p.now()}

	profile, err := resume.Load(p.cfg.ResumePath, p.deps.Vocab)
	if err != nil {
		return nil, fmt.Errorf("loading resume: %w", err)
	}
	c.Profile = profile
	log.Info("resume profile ready",
		zap.Int("technical_skills", len(profile.TechnicalSkills)),
		zap.Int("soft_skills", len(profile.SoftSkills)),
	)

	for _, s := range p.deps.Sources {
		c.Sources = append(c.Sources, s.Name())
	}
	postings, fetchErrs := source.FetchAll(ctx, log, p.deps.Sources...)
	for _, ferr := range fetchErrs {
		c.Errors = append(c.Errors, ferr.Error())
	}
	c.Postings = postings
	if len(postings) == 0 {
		log.Info("no postings fetched, nothing to classify")
		return c, ctx.Err()
	}

	classifier, err := classify.New(p.deps.Vocab, p.cfg.Weights, log)
	if err != nil {
		return nil, err
	}
	results, failures, err := classifier.Batch(ctx, profile, postings, p.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("classifying postings: %w", err)
	}
	c.Skipped = len(failures)
	for _, ferr := range failures {
		c.Errors = append(c.Errors, ferr.Error())
	}

	results.SortByScore()

	fcfg := &filtering.Config{MinScore: p.cfg.MinScore, Companies: p.cfg.Companies}
	fdeps := filtering.Deps{Logger: log}
	if p.deps.History != nil {
		fdeps.History = p.deps.History
	}
	qualified, err := filtering.Run(ctx, fcfg, fdeps, p.deps.Filters, results)
	if err != nil {
		return nil, fmt.Errorf("filtering: %w", err)
	}
	c.Qualified = qualified

	log.Info("postings qualified",
		zap.Int("scraped", len(postings)),
		zap.Int("skipped", c.Skipped),
		zap.Int("qualified", qualified.Len()),
	)

	return c, nil
}

// Report drives the reporting half over a collection: advice, sheet, CSV
// backup, email, history and the execution log. Sink failures are
// collected into the summary, never fatal.
func (p *Pipeline) Report(ctx context.Context, c *Collection) *report.RunSummary {
	log := p.deps.Logger
	qualified := c.Qualified

	summary := &report.RunSummary{
		RunTime:        c.Started,
		Sources:        c.Sources,
		TotalScraped:   len(c.Postings),
		Skipped:        c.Skipped,
		AboveThreshold: qualified.Len(),
		Threshold:      p.cfg.MinScore,
		TopJobs:        qualified.Top(p.cfg.TopJobs),
		Errors:         append([]string(nil), c.Errors...),
	}

	if p.deps.Adviser != nil && qualified.Len() > 0 {
		tips, err := p.deps.Adviser.Advise(ctx, c.Profile, qualified)
		if err != nil {
			log.Warn("advice generation failed", zap.Error(err))
			summary.Errors = append(summary.Errors, fmt.Sprintf("advice: %v", err))
		}
		for _, t := range tips {
			summary.Advice = append(summary.Advice, report.Advice{
				Title:   t.Title,
				Company: t.Company,
				Tip:     t.Advice,
			})
		}
	}

	switch {
	case p.deps.Sheet == nil:
		log.Info("sheets sink is not configured, skipping")
	case qualified.Len() == 0:
	default:
		n, err := p.deps.Sheet.Log(ctx, qualified)
		if err != nil {
			log.Warn("sheet logging failed", zap.Error(err))
			summary.Errors = append(summary.Errors, fmt.Sprintf("sheet: %v", err))
		}
		summary.LoggedToSheet = n
	}

	if p.deps.Backup != nil && qualified.Len() > 0 {
		if n, err := p.deps.Backup.Append(qualified); err != nil {
			log.Warn("csv backup failed", zap.Error(err))
			summary.Errors = append(summary.Errors, fmt.Sprintf("csv backup: %v", err))
		} else {
			log.Info("csv backup written", zap.Int("rows", n))
		}
	}

	if p.deps.Notifier != nil {
		sent, err := p.deps.Notifier.Notify(ctx, qualified, summary)
		if err != nil {
			log.Warn("email notification failed", zap.Error(err))
			summary.Errors = append(summary.Errors, fmt.Sprintf("email: %v", err))
		}
		summary.EmailSent = sent
	}

	reported := 0
	if p.deps.History != nil {
		for _, r := range qualified {
			added, err := p.deps.History.Record(ctx, &r.Posting, r.Score)
			if err != nil {
				log.Warn("recording posting failed",
					zap.Error(err),
					zap.String("key", r.Posting.Key()),
				)
				summary.Errors = append(summary.Errors, fmt.Sprintf("history: %v", err))
				break
			}
			if added {
				reported++
			}
		}
	}

	summary.Duration = p.now().Sub(c.Started)

	if p.deps.ExecLog != nil {
		if err := p.deps.ExecLog.Append(summary); err != nil {
			log.Warn("execution log append failed", zap.Error(err))
			summary.Errors = append(summary.Errors, fmt.Sprintf("execution log: %v", err))
		}
	}

	if p.deps.History != nil {
		rec := history.RunRecord{
			StartedAt: c.Started,
			Total:     summary.TotalScraped,
			Skipped:   summary.Skipped,
			Qualified: summary.AboveThreshold,
			Reported:  reported,
			EmailSent: summary.EmailSent,
			Errors:    len(summary.Errors),
			Duration:  summary.Duration,
		}
		if err := p.deps.History.RecordRun(ctx, rec); err != nil {
			log.Warn("recording run failed", zap.Error(err))
		}
	}

	log.Info("run complete",
		zap.Int("scraped", summary.TotalScraped),
		zap.Int("qualified", summary.AboveThreshold),
		zap.Int("logged_to_sheet", summary.LoggedToSheet),
		zap.Bool("email_sent", summary.EmailSent),
		zap.Duration("duration", summary.Duration),
		zap.Int("errors", len(summary.Errors)),
	)

	return summary
}

// Run executes the full pipeline without interaction.
func (p *Pipeline) Run(ctx context.Context) (*report.RunSummary, error) {
	c, err := p.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return p.Report(ctx, c), nil
}
