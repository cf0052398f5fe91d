// Package ai holds the optional advice layer: a language model looks at
// the top matches and suggests how to pitch each application. Scores and
// classification never depend on it.
package ai

import (
	"context"

	"jobfinder/internal/classify"
	"jobfinder/internal/resume"
)

// Tip is a short application hint for one posting.
type Tip struct {
	Company string `json:"company"`
	Title   string `json:"title"`
	Advice  string `json:"tip"`
}

// Adviser produces application tips for the highest scoring postings.
type Adviser interface {
	Advise(ctx context.Context, profile *resume.Profile, results classify.Results) ([]Tip, error)
}
