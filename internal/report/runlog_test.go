package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestExecutionLogAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "execution_log.txt")
	log := NewExecutionLog(path)
	log.now = func() time.Time { return time.Date(2025, 6, 2, 9, 30, 15, 0, time.UTC) }

	summary := sampleRunSummary()
	summary.Skipped = 1
	summary.AboveThreshold = 2
	summary.LoggedToSheet = 2
	summary.EmailSent = true
	summary.Duration = 3140 * time.Millisecond
	summary.TopJobs = sampleReportResults()
	summary.Errors = []string{"indeed search failed"}

	if err := log.Append(summary); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		strings.Repeat("=", 70),
		"RUN  : 2025-06-02 09:30:15",
		"Source(s)        : Demo, Indeed",
		"Total scraped    : 12",
		"Skipped          : 1",
		"Above threshold  : 2 (>= 72%)",
		"Logged to Sheet  : 2",
		"Email sent       : true",
		"Duration (s)     : 3.14",
		"Top matches:",
		"  91.3%  Senior Data Scientist  @  Stripe",
		"  84.5%  ML Engineer  @  Meta",
		"Errors:",
		"  - indeed search failed",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("log missing %q:\n%s", want, content)
		}
	}
}

func TestExecutionLogAppendsBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "execution_log.txt")
	log := NewExecutionLog(path)

	for i := 0; i < 2; i++ {
		if err := log.Append(sampleRunSummary()); err != nil {
			t.Fatalf("Append #%d returned error: %v", i+1, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if got := strings.Count(string(data), strings.Repeat("=", 70)); got != 2 {
		t.Fatalf("expected 2 run blocks, got %d", got)
	}
}

func TestExecutionLogCapsTopMatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "execution_log.txt")
	log := NewExecutionLog(path)

	summary := sampleRunSummary()
	for i := 0; i < 4; i++ {
		summary.TopJobs = append(summary.TopJobs, sampleReportResults()...)
	}

	if err := log.Append(summary); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if got := strings.Count(string(data), "  @  "); got != 5 {
		t.Fatalf("expected 5 top-match lines, got %d", got)
	}
}

func TestExecutionLogEmptySources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "execution_log.txt")
	log := NewExecutionLog(path)

	summary := sampleRunSummary()
	summary.Sources = nil
	summary.Errors = nil

	if err := log.Append(summary); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "Source(s)        : N/A") {
		t.Fatalf("expected N/A sources line:\n%s", content)
	}
	if strings.Contains(content, "Errors:") {
		t.Fatal("errors section written for error-free run")
	}
}
