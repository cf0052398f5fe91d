package report

import (
	"strconv"
	"time"

	"jobfinder/internal/classify"
)

// RunSummary is the compiled outcome of one pipeline run, shared by the
// notification email and the execution log.
type RunSummary struct {
	RunTime        time.Time
	Sources        []string
	TotalScraped   int
	Skipped        int
	AboveThreshold int
	LoggedToSheet  int
	EmailSent      bool
	Duration       time.Duration
	Threshold      float64
	TopJobs        classify.Results
	Advice         []Advice
	Errors         []string
}

// Advice is one AI-generated application tip attached to the email report.
type Advice struct {
	Title   string
	Company string
	Tip     string
}

func formatThreshold(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}
