package classify

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"jobfinder/internal/job"
)

// Sponsorship is the tri-state outcome of the visa-sponsorship detector.
// Ambiguous but well-formed text maps to unknown rather than an error.
type Sponsorship string

const (
	SponsorshipYes     Sponsorship = "confirmed-yes"
	SponsorshipNo      Sponsorship = "confirmed-no"
	SponsorshipUnknown Sponsorship = "unknown"
)

// PortalUnknown is returned when no application-platform pattern matches.
const PortalUnknown = "Unknown"

// Result is one posting annotated with everything the classifier derives
// from it.
type Result struct {
	Posting job.Posting `json:"posting"`

	// Score is the blended match percentage in [0,100], two decimals.
	// Similarity and Overlap are its raw components in [0,1].
	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
	Overlap    float64 `json:"overlap"`

	Sponsorship     Sponsorship `json:"sponsorship"`
	NotableEmployer bool        `json:"notable_employer"`
	LargeCompany    bool        `json:"large_company"`
	Portal          string      `json:"portal"`

	// MatchedSkills are resume skills found in the posting, sorted.
	// Suggestions are vocabulary skills the posting wants and the resume
	// lacks, most frequent first.
	MatchedSkills []string `json:"matched_skills,omitempty"`
	Suggestions   []string `json:"suggestions,omitempty"`
}

// Results is an ordered collection of classification results.
type Results []*Result

func (rs Results) Len() int { return len(rs) }

// SortByScore orders results by descending score, keeping the incoming
// order for ties.
func (rs Results) SortByScore() {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].Score > rs[j].Score
	})
}

// AboveScore returns the results with a score of at least min.
func (rs Results) AboveScore(min float64) Results {
	var out Results
	for _, r := range rs {
		if r.Score >= min {
			out = append(out, r)
		}
	}
	return out
}

// Top returns the first n results, or all of them when fewer exist.
func (rs Results) Top(n int) Results {
	if n < 0 {
		n = 0
	}
	if n > len(rs) {
		n = len(rs)
	}
	return rs[:n]
}

// DumpToTmpFile writes the results as indented JSON to a temp file and
// returns its name.
func (rs Results) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "results_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rs); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByCompany groups a short summary of each result under its company
// name, for interactive inspection before anything is persisted.
func (rs Results) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, r := range rs {
		key := r.Posting.Company
		if key == "" {
			key = "(no company)"
		}
		report[key] = append(report[key], map[string]string{
			"title":       r.Posting.Title,
			"url":         r.Posting.URL,
			"location":    r.Posting.Location,
			"score":       fmt.Sprintf("%.2f", r.Score),
			"sponsorship": string(r.Sponsorship),
			"portal":      r.Portal,
		})
	}
	return report
}
