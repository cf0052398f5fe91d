// Package resume turns raw resume text into a structured profile of skills,
// titles and education that the classifier scores against job postings.
package resume

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"jobfinder/internal/text"
	"jobfinder/internal/vocab"
)

// Profile is the structured view of one resume. RawText keeps the original
// document for similarity scoring and is deliberately left out of JSON dumps.
type Profile struct {
	TechnicalSkills []string `json:"technical_skills"`
	SoftSkills      []string `json:"soft_skills"`
	Skills          []string `json:"all_keywords"`
	Titles          []string `json:"job_titles,omitempty"`
	Education       []string `json:"education,omitempty"`
	YearsExperience int      `json:"years_experience,omitempty"`
	RawText         string   `json:"-"`
}

// ExtractionError reports why a resume could not be turned into a profile.
// No partial profile is ever returned alongside it.
type ExtractionError struct {
	Source string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	src := e.Source
	if src == "" {
		src = "resume"
	}
	if e.Err != nil {
		return fmt.Sprintf("extracting %s: %s: %v", src, e.Reason, e.Err)
	}
	return fmt.Sprintf("extracting %s: %s", src, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// knownTitles are role names worth surfacing from a resume, matched as plain
// substrings of the collapsed text.
var knownTitles = []string{
	"data scientist", "data analyst", "machine learning engineer",
	"ml engineer", "ai engineer", "data engineer",
	"research scientist", "applied scientist",
	"business intelligence", "analytics engineer",
	"quantitative analyst", "statistician",
	"software engineer", "software developer",
}

var degreePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bbachelor(?:'s)?(?:\s+of)?(?:\s+(?:science|arts|engineering|technology))?`),
	regexp.MustCompile(`\bmaster(?:'s)?(?:\s+of)?(?:\s+(?:science|arts|engineering|technology))?`),
	regexp.MustCompile(`\bph\.?d\b\.?`),
	regexp.MustCompile(`\bb\.?sc?\b\.?`),
	regexp.MustCompile(`\bm\.?sc?\b\.?`),
	regexp.MustCompile(`\bmba\b`),
}

var yearsPattern = regexp.MustCompile(`(\d+)\+?\s*(?:years?|yrs?)\s+(?:of\s+)?(?:experience|exp)`)

// Extract builds a Profile from raw resume text against the given
// vocabulary. Skill matching runs on fully normalized text so hyphenated and
// punctuated terms line up with how job descriptions are matched later.
func Extract(raw string, v *vocab.Vocabulary) (*Profile, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ExtractionError{Reason: "resume text is empty"}
	}

	norm := text.Normalize(raw)
	tech := matchSkills(v.TechSkills, norm)
	soft := matchSkills(v.SoftSkills, norm)

	// lowercase with collapsed whitespace but punctuation kept, for the
	// regex-based heuristics below
	collapsed := strings.Join(strings.Fields(strings.ToLower(raw)), " ")

	var titles []string
	for _, title := range knownTitles {
		if strings.Contains(collapsed, title) {
			titles = append(titles, title)
		}
	}

	var education []string
	seen := make(map[string]struct{})
	for _, p := range degreePatterns {
		m := strings.TrimSpace(p.FindString(collapsed))
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		education = append(education, m)
	}

	years := 0
	if m := yearsPattern.FindStringSubmatch(collapsed); m != nil {
		years, _ = strconv.Atoi(m[1])
	}

	return &Profile{
		TechnicalSkills: tech,
		SoftSkills:      soft,
		Skills:          dedupe(append(append([]string{}, tech...), soft...)),
		Titles:          titles,
		Education:       education,
		YearsExperience: years,
		RawText:         raw,
	}, nil
}

// matchSkills returns the vocabulary entries found in the normalized text,
// sorted alphabetically.
func matchSkills(skills []string, norm string) []string {
	var found []string
	for _, skill := range skills {
		phrase := text.Normalize(skill)
		if phrase == "" {
			continue
		}
		if text.ContainsWord(norm, phrase) {
			found = append(found, skill)
		}
	}
	sort.Strings(found)
	return found
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
