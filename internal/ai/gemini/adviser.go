package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"jobfinder/internal/ai"
	"jobfinder/internal/classify"
	"jobfinder/internal/logger"
	"jobfinder/internal/resume"
)

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200

	// maxAdviceJobs bounds the postings sent to the model per run.
	maxAdviceJobs = 3

	// maxDescriptionRunes caps how much posting text goes into the prompt.
	maxDescriptionRunes = 600
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Adviser asks Gemini for one short application tip per top match.
type Adviser struct {
	generator contentGenerator
	maxJobs   int
	maxLogLen int
	log       *zap.Logger
}

func NewAdviser(generator contentGenerator, log *zap.Logger) *Adviser {
	return &Adviser{
		generator: generator,
		maxJobs:   maxAdviceJobs,
		maxLogLen: defaultMaxLogLength,
		log:       logger.WithModel(log, "gemini", generator.Model()),
	}
}

func (a *Adviser) Advise(ctx context.Context, profile *resume.Profile, results classify.Results) ([]ai.Tip, error) {
	if profile == nil {
		return nil, fmt.Errorf("resume profile is required")
	}

	top := results.Top(a.maxJobs)
	if top.Len() == 0 {
		return nil, nil
	}

	prompt, err := buildPrompt(profile, top)
	if err != nil {
		return nil, err
	}

	a.log.Debug("gemini advice request",
		zap.Int("postings", top.Len()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	a.log.Debug("gemini advice response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	return parseTips(raw)
}

func buildPrompt(profile *resume.Profile, results classify.Results) (string, error) {
	resumeJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal resume payload: %w", err)
	}

	jobs := make([]map[string]any, 0, results.Len())
	for _, r := range results {
		jobs = append(jobs, map[string]any{
			"company":        r.Posting.Company,
			"title":          r.Posting.Title,
			"match_pct":      r.Score,
			"missing_skills": r.Suggestions,
			"description":    logger.TruncateForLog(r.Posting.Description, maxDescriptionRunes),
		})
	}

	jobsJSON, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal postings payload: %w", err)
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Resume:\n{{RESUME_JSON}}\n\nPostings:\n{{JOBS_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{RESUME_JSON}}", string(resumeJSON))
	prompt = strings.ReplaceAll(prompt, "{{JOBS_JSON}}", string(jobsJSON))
	return prompt, nil
}

func parseTips(raw string) ([]ai.Tip, error) {
	cleaned := extractJSON(raw)

	var tips []ai.Tip
	if err := json.Unmarshal([]byte(cleaned), &tips); err != nil {
		var wrapper struct {
			Tips []ai.Tip `json:"tips"`
		}
		if err2 := json.Unmarshal([]byte(cleaned), &wrapper); err2 != nil {
			return nil, fmt.Errorf("parse gemini response: %w", err)
		}
		tips = wrapper.Tips
	}

	out := make([]ai.Tip, 0, len(tips))
	for _, t := range tips {
		t.Company = strings.TrimSpace(t.Company)
		t.Title = strings.TrimSpace(t.Title)
		t.Advice = strings.TrimSpace(t.Advice)
		if t.Advice == "" {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
