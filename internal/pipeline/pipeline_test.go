package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jobfinder/internal/ai"
	"jobfinder/internal/classify"
	"jobfinder/internal/filtering"
	"jobfinder/internal/history"
	"jobfinder/internal/job"
	"jobfinder/internal/report"
	"jobfinder/internal/resume"
	"jobfinder/internal/source"
	"jobfinder/internal/vocab"
)

type stubSource struct {
	name     string
	postings []job.Posting
	err      error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(context.Context) ([]job.Posting, error) {
	return s.postings, s.err
}

type stubSheet struct {
	logged classify.Results
	calls  int
	err    error
}

func (s *stubSheet) Log(_ context.Context, results classify.Results) (int, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	s.logged = results
	return results.Len(), nil
}

type stubBackup struct {
	rows int
	err  error
}

func (s *stubBackup) Append(results classify.Results) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.rows += results.Len()
	return results.Len(), nil
}

type stubNotifier struct {
	results classify.Results
	summary *report.RunSummary
	sent    bool
	err     error
}

func (s *stubNotifier) Notify(_ context.Context, results classify.Results, summary *report.RunSummary) (bool, error) {
	s.results = results
	s.summary = summary
	if s.err != nil {
		return false, s.err
	}
	return s.sent, nil
}

type stubRecorder struct {
	seen      map[string]bool
	recorded  []string
	runs      []history.RunRecord
	recordErr error
}

func (s *stubRecorder) Seen(_ context.Context, key string) (bool, error) {
	return s.seen[key], nil
}

func (s *stubRecorder) Record(_ context.Context, p *job.Posting, _ float64) (bool, error) {
	if s.recordErr != nil {
		return false, s.recordErr
	}
	s.recorded = append(s.recorded, p.Key())
	return true, nil
}

func (s *stubRecorder) RecordRun(_ context.Context, rec history.RunRecord) error {
	s.runs = append(s.runs, rec)
	return nil
}

type stubExecLog struct {
	summaries []*report.RunSummary
	err       error
}

func (s *stubExecLog) Append(summary *report.RunSummary) error {
	if s.err != nil {
		return s.err
	}
	s.summaries = append(s.summaries, summary)
	return nil
}

type stubAdviser struct {
	tips  []ai.Tip
	calls int
	err   error
}

func (s *stubAdviser) Advise(context.Context, *resume.Profile, classify.Results) ([]ai.Tip, error) {
	s.calls++
	return s.tips, s.err
}

func writeResume(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "resume.txt")
	content := "Seasoned data scientist with 5 years of experience. " +
		"Core tools: Python, SQL, pandas, numpy. " +
		"Known for clear communication and dependable teamwork.\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing resume fixture: %v", err)
	}
	return path
}

func testVocabulary(t *testing.T) *vocab.Vocabulary {
	t.Helper()

	v, err := vocab.Load("")
	if err != nil {
		t.Fatalf("loading vocabulary: %v", err)
	}
	return v
}

// goodPosting mirrors the fixture resume closely enough that full keyword
// overlap alone keeps it above the test threshold.
func goodPosting() job.Posting {
	return job.Posting{
		Title:    "Data Scientist",
		Company:  "Acme Analytics",
		Location: "Remote",
		Description: "Acme Analytics is hiring a data scientist. The day to day " +
			"relies on Python and SQL plus pandas and numpy. Strong communication " +
			"and teamwork keep our projects on track. Visa sponsorship available.",
		URL:    "https://boards.example/acme/ds-1",
		Source: "demo board",
	}
}

func junkPosting() job.Posting {
	return job.Posting{
		Title:       "Line Cook",
		Company:     "Greasy Spoon Diner",
		Description: "Prepare breakfast orders, keep the kitchen tidy and restock produce before the morning rush.",
		URL:         "https://diner.example/cook",
	}
}

func malformedPosting() job.Posting {
	return job.Posting{Description: "confidential client, details after screening"}
}

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{ResumePath: writeResume(t), MinScore: 20, TopJobs: 5}
}

func containsError(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestRunHappyPath(t *testing.T) {
	sheet := &stubSheet{}
	backup := &stubBackup{}
	notifier := &stubNotifier{sent: true}
	recorder := &stubRecorder{seen: map[string]bool{}}
	execLog := &stubExecLog{}
	adviser := &stubAdviser{tips: []ai.Tip{
		{Company: "Acme Analytics", Title: "Data Scientist", Advice: "Lead with the pandas work."},
	}}

	p := New(testConfig(t), Deps{
		Vocab: testVocabulary(t),
		Sources: []source.Source{
			&stubSource{name: "demo board", postings: []job.Posting{
				goodPosting(), junkPosting(), malformedPosting(),
			}},
		},
		Filters:  []filtering.Filter{filtering.NewMinScore()},
		History:  recorder,
		Sheet:    sheet,
		Backup:   backup,
		Notifier: notifier,
		ExecLog:  execLog,
		Adviser:  adviser,
	})

	base := time.Date(2025, time.June, 2, 9, 30, 0, 0, time.UTC)
	calls := 0
	p.now = func() time.Time {
		calls++
		if calls == 1 {
			return base
		}
		return base.Add(3 * time.Second)
	}

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.TotalScraped != 3 {
		t.Fatalf("expected 3 scraped postings, got %d", summary.TotalScraped)
	}
	if summary.Skipped != 1 {
		t.Fatalf("expected 1 skipped posting, got %d", summary.Skipped)
	}
	if summary.AboveThreshold != 1 {
		t.Fatalf("expected 1 qualified posting, got %d", summary.AboveThreshold)
	}
	if summary.LoggedToSheet != 1 {
		t.Fatalf("expected 1 posting logged to sheet, got %d", summary.LoggedToSheet)
	}
	if !summary.EmailSent {
		t.Fatalf("expected email to be sent")
	}
	if summary.Threshold != 20 {
		t.Fatalf("expected threshold 20, got %v", summary.Threshold)
	}
	if !summary.RunTime.Equal(base) || summary.Duration != 3*time.Second {
		t.Fatalf("expected run time %v and duration 3s, got %v / %v", base, summary.RunTime, summary.Duration)
	}
	if len(summary.TopJobs) != 1 || summary.TopJobs[0].Posting.Company != "Acme Analytics" {
		t.Fatalf("unexpected top jobs: %+v", summary.TopJobs)
	}
	if len(summary.Errors) != 1 || !containsError(summary.Errors, "classifying") {
		t.Fatalf("expected the malformed posting error, got %v", summary.Errors)
	}
	if len(summary.Advice) != 1 || summary.Advice[0].Tip != "Lead with the pandas work." {
		t.Fatalf("unexpected advice: %+v", summary.Advice)
	}

	if sheet.logged.Len() != 1 {
		t.Fatalf("expected 1 result logged to sheet, got %d", sheet.logged.Len())
	}
	if backup.rows != 1 {
		t.Fatalf("expected 1 backup row, got %d", backup.rows)
	}
	if notifier.summary != summary || notifier.results.Len() != 1 {
		t.Fatalf("notifier saw wrong summary or results")
	}
	if len(notifier.summary.Advice) != 1 {
		t.Fatalf("expected advice to be attached before notification")
	}
	if len(recorder.recorded) != 1 || recorder.recorded[0] != "acme analytics|data scientist" {
		t.Fatalf("unexpected recorded keys: %v", recorder.recorded)
	}
	if len(execLog.summaries) != 1 {
		t.Fatalf("expected 1 execution log entry, got %d", len(execLog.summaries))
	}

	if len(recorder.runs) != 1 {
		t.Fatalf("expected 1 run record, got %d", len(recorder.runs))
	}
	rec := recorder.runs[0]
	if !rec.StartedAt.Equal(base) || rec.Total != 3 || rec.Skipped != 1 ||
		rec.Qualified != 1 || rec.Reported != 1 || !rec.EmailSent ||
		rec.Errors != 1 || rec.Duration != 3*time.Second {
		t.Fatalf("unexpected run record: %+v", rec)
	}
}

func TestRunResumeMissing(t *testing.T) {
	cfg := Config{ResumePath: filepath.Join(t.TempDir(), "missing.txt"), MinScore: 20}
	p := New(cfg, Deps{Vocab: testVocabulary(t)})

	_, err := p.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "loading resume") {
		t.Fatalf("expected resume load failure, got %v", err)
	}
}

func TestRunSourceFailure(t *testing.T) {
	p := New(testConfig(t), Deps{
		Vocab: testVocabulary(t),
		Sources: []source.Source{
			&stubSource{name: "busted board", err: errors.New("blocked by board")},
			&stubSource{name: "demo board", postings: []job.Posting{goodPosting()}},
		},
		Filters: []filtering.Filter{filtering.NewMinScore()},
	})

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalScraped != 1 || summary.AboveThreshold != 1 {
		t.Fatalf("expected the working source to survive, got %+v", summary)
	}
	if !containsError(summary.Errors, "busted board") {
		t.Fatalf("expected the failing source in errors, got %v", summary.Errors)
	}
}

func TestRunWithoutSinks(t *testing.T) {
	p := New(testConfig(t), Deps{
		Vocab:   testVocabulary(t),
		Sources: []source.Source{&stubSource{name: "demo board", postings: []job.Posting{goodPosting()}}},
		Filters: []filtering.Filter{filtering.NewMinScore()},
	})

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.AboveThreshold != 1 || summary.LoggedToSheet != 0 || summary.EmailSent {
		t.Fatalf("unexpected summary without sinks: %+v", summary)
	}
	if len(summary.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", summary.Errors)
	}
}

func TestRunSheetFailure(t *testing.T) {
	sheet := &stubSheet{err: errors.New("api quota exhausted")}
	notifier := &stubNotifier{sent: true}

	p := New(testConfig(t), Deps{
		Vocab:    testVocabulary(t),
		Sources:  []source.Source{&stubSource{name: "demo board", postings: []job.Posting{goodPosting()}}},
		Filters:  []filtering.Filter{filtering.NewMinScore()},
		Sheet:    sheet,
		Notifier: notifier,
	})

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !containsError(summary.Errors, "sheet:") {
		t.Fatalf("expected sheet error to be collected, got %v", summary.Errors)
	}
	if summary.LoggedToSheet != 0 {
		t.Fatalf("expected nothing logged, got %d", summary.LoggedToSheet)
	}
	if !summary.EmailSent {
		t.Fatalf("expected notification despite sheet failure")
	}
}

func TestRunSeenPostings(t *testing.T) {
	recorder := &stubRecorder{seen: map[string]bool{"acme analytics|data scientist": true}}
	sheet := &stubSheet{}
	adviser := &stubAdviser{}

	p := New(testConfig(t), Deps{
		Vocab:   testVocabulary(t),
		Sources: []source.Source{&stubSource{name: "demo board", postings: []job.Posting{goodPosting()}}},
		Filters: []filtering.Filter{filtering.NewMinScore(), filtering.NewSeen(nil)},
		History: recorder,
		Sheet:   sheet,
		Adviser: adviser,
	})

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.AboveThreshold != 0 {
		t.Fatalf("expected the seen posting to be dropped, got %d", summary.AboveThreshold)
	}
	if sheet.calls != 0 {
		t.Fatalf("expected no sheet call for an empty run")
	}
	if adviser.calls != 0 {
		t.Fatalf("expected no advice call for an empty run")
	}
	if len(recorder.recorded) != 0 {
		t.Fatalf("expected nothing recorded, got %v", recorder.recorded)
	}
	if len(recorder.runs) != 1 || recorder.runs[0].Qualified != 0 {
		t.Fatalf("expected a zero-qualified run record, got %+v", recorder.runs)
	}
}

func TestRunAdviserFailure(t *testing.T) {
	adviser := &stubAdviser{err: errors.New("model unavailable")}
	notifier := &stubNotifier{sent: true}

	p := New(testConfig(t), Deps{
		Vocab:    testVocabulary(t),
		Sources:  []source.Source{&stubSource{name: "demo board", postings: []job.Posting{goodPosting()}}},
		Filters:  []filtering.Filter{filtering.NewMinScore()},
		Notifier: notifier,
		Adviser:  adviser,
	})

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !containsError(summary.Errors, "advice:") {
		t.Fatalf("expected advice error to be collected, got %v", summary.Errors)
	}
	if len(summary.Advice) != 0 {
		t.Fatalf("expected no advice, got %+v", summary.Advice)
	}
	if !summary.EmailSent {
		t.Fatalf("expected notification despite advice failure")
	}
}

func TestRunRecordFailure(t *testing.T) {
	recorder := &stubRecorder{seen: map[string]bool{}, recordErr: errors.New("disk full")}

	p := New(testConfig(t), Deps{
		Vocab:   testVocabulary(t),
		Sources: []source.Source{&stubSource{name: "demo board", postings: []job.Posting{goodPosting()}}},
		Filters: []filtering.Filter{filtering.NewMinScore()},
		History: recorder,
	})

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !containsError(summary.Errors, "history:") {
		t.Fatalf("expected history error to be collected, got %v", summary.Errors)
	}
	if len(recorder.runs) != 1 || recorder.runs[0].Reported != 0 {
		t.Fatalf("expected a run record with nothing reported, got %+v", recorder.runs)
	}
}

func TestRunNoPostings(t *testing.T) {
	sheet := &stubSheet{}
	recorder := &stubRecorder{seen: map[string]bool{}}

	p := New(testConfig(t), Deps{
		Vocab:   testVocabulary(t),
		History: recorder,
		Sheet:   sheet,
	})

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalScraped != 0 || summary.AboveThreshold != 0 {
		t.Fatalf("expected an empty run, got %+v", summary)
	}
	if sheet.calls != 0 {
		t.Fatalf("expected no sheet call without postings")
	}
	if len(recorder.runs) != 1 || recorder.runs[0].Total != 0 {
		t.Fatalf("expected a zero run record, got %+v", recorder.runs)
	}
}

func TestCollectReportSplit(t *testing.T) {
	p := New(testConfig(t), Deps{
		Vocab: testVocabulary(t),
		Sources: []source.Source{
			&stubSource{name: "demo board", postings: []job.Posting{goodPosting(), junkPosting()}},
		},
		Filters: []filtering.Filter{filtering.NewMinScore()},
	})

	c, err := p.Collect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Profile == nil || len(c.Profile.TechnicalSkills) == 0 {
		t.Fatalf("expected a parsed resume profile, got %+v", c.Profile)
	}
	if len(c.Postings) != 2 || c.Qualified.Len() != 1 {
		t.Fatalf("expected 2 postings and 1 qualified, got %d / %d", len(c.Postings), c.Qualified.Len())
	}
	if len(c.Sources) != 1 || c.Sources[0] != "demo board" {
		t.Fatalf("unexpected sources: %v", c.Sources)
	}
	if c.Started.IsZero() {
		t.Fatalf("expected the start time to be set")
	}

	summary := p.Report(context.Background(), c)
	if summary.TotalScraped != 2 || summary.AboveThreshold != 1 {
		t.Fatalf("summary does not match the collection: %+v", summary)
	}
	if summary.Sources[0] != "demo board" {
		t.Fatalf("unexpected summary sources: %v", summary.Sources)
	}
}
