package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ExecutionLog appends a human-readable record of every run to a plain
// text file, one block per run.
type ExecutionLog struct {
	path string
	now  func() time.Time
}

func NewExecutionLog(path string) *ExecutionLog {
	return &ExecutionLog{path: path, now: time.Now}
}

// Append writes one run block. The file and its directory are created on
// first use.
func (l *ExecutionLog) Append(summary *RunSummary) error {
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
	}

	sources := strings.Join(summary.Sources, ", ")
	if sources == "" {
		sources = "N/A"
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("=", 70) + "\n")
	fmt.Fprintf(&b, "RUN  : %s\n", l.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Source(s)        : %s\n", sources)
	fmt.Fprintf(&b, "Total scraped    : %d\n", summary.TotalScraped)
	fmt.Fprintf(&b, "Skipped          : %d\n", summary.Skipped)
	fmt.Fprintf(&b, "Above threshold  : %d (>= %s%%)\n", summary.AboveThreshold, formatThreshold(summary.Threshold))
	fmt.Fprintf(&b, "Logged to Sheet  : %d\n", summary.LoggedToSheet)
	fmt.Fprintf(&b, "Email sent       : %t\n", summary.EmailSent)
	fmt.Fprintf(&b, "Duration (s)     : %.2f\n", summary.Duration.Seconds())
	b.WriteString("\nTop matches:\n")
	for _, r := range summary.TopJobs.Top(5) {
		fmt.Fprintf(&b, "  %.1f%%  %s  @  %s\n", r.Score, r.Posting.Title, r.Posting.Company)
	}
	if len(summary.Errors) > 0 {
		b.WriteString("\nErrors:\n")
		for _, e := range summary.Errors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}
	b.WriteString("\n")

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening execution log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("writing execution log: %w", err)
	}
	return nil
}
