// Package report delivers qualified postings to the reporting sinks: the
// Google Sheet, the local CSV backup, the notification email and the
// execution log.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"jobfinder/internal/classify"
)

const timestampFormat = "2006-01-02 15:04"

var csvHeader = []string{
	"date", "title", "company", "match_pct",
	"h1b_sponsor", "is_maang", "is_fortune500",
	"portal", "location", "source", "url",
	"key_skills", "ats_keywords", "posted_date",
}

// CSVBackup appends classified postings to a local CSV file, writing the
// header row when the file does not exist yet.
type CSVBackup struct {
	path string
	now  func() time.Time
}

// NewCSVBackup creates the CSV sink for the given path.
func NewCSVBackup(path string) *CSVBackup {
	return &CSVBackup{path: path, now: time.Now}
}

// Append writes one row per result and returns the number of rows written.
func (b *CSVBackup) Append(results classify.Results) (int, error) {
	if results.Len() == 0 {
		return 0, nil
	}

	_, statErr := os.Stat(b.path)
	writeHeader := os.IsNotExist(statErr)

	fh, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("opening csv backup: %w", err)
	}
	defer fh.Close()

	w := csv.NewWriter(fh)
	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			return 0, fmt.Errorf("writing csv header: %w", err)
		}
	}

	date := b.now().Format(timestampFormat)
	for _, r := range results {
		row := []string{
			date,
			r.Posting.Title,
			r.Posting.Company,
			strconv.FormatFloat(r.Score, 'f', 2, 64),
			string(r.Sponsorship),
			strconv.FormatBool(r.NotableEmployer),
			strconv.FormatBool(r.LargeCompany),
			r.Portal,
			r.Posting.Location,
			r.Posting.Source,
			r.Posting.URL,
			strings.Join(r.MatchedSkills, "; "),
			strings.Join(r.Suggestions, "; "),
			r.Posting.Posted,
		}
		if err := w.Write(row); err != nil {
			return 0, fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flushing csv backup: %w", err)
	}

	return results.Len(), nil
}
