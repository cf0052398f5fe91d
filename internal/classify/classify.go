// Package classify applies the scorer and every rule-based detector to job
// postings, producing annotated results for filtering and reporting.
package classify

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"jobfinder/internal/job"
	"jobfinder/internal/match"
	"jobfinder/internal/resume"
	"jobfinder/internal/text"
	"jobfinder/internal/vocab"
)

const (
	// brandScanRunes limits how far into a description the notable-employer
	// detector looks; brands mentioned deep in boilerplate are noise.
	brandScanRunes = 500
	// portalScanRunes bounds the portal detector's scan window.
	portalScanRunes = 1000
	// maxSuggestions caps the keyword-suggestion list per posting.
	maxSuggestions = 20
)

// ClassificationError marks a posting that could not be classified. The
// posting is skipped; the error is reported in the run summary instead of
// failing the batch.
type ClassificationError struct {
	Title   string
	Company string
	Reason  string
}

func (e *ClassificationError) Error() string {
	label := e.Title
	if label == "" {
		label = "(untitled)"
	}
	if e.Company != "" {
		label += " @ " + e.Company
	}
	return fmt.Sprintf("classifying %s: %s", label, e.Reason)
}

// phrase pairs a vocabulary entry with its normalized form so per-posting
// classification does not re-normalize the whole vocabulary.
type phrase struct {
	raw  string
	norm string
}

func normalizeAll(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if n := text.Normalize(e); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Classifier annotates postings against one resume profile using the
// reference vocabulary. It is safe for concurrent use.
type Classifier struct {
	vocab   *vocab.Vocabulary
	weights match.Weights
	log     *zap.Logger

	aliases   []string
	companies []string
	negative  []string
	positive  []string
	skills    []phrase
}

// New builds a Classifier. A nil logger disables classification logging.
func New(v *vocab.Vocabulary, weights match.Weights, log *zap.Logger) (*Classifier, error) {
	if v == nil {
		return nil, errors.New("vocabulary is required")
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	all := v.AllSkills()
	skills := make([]phrase, 0, len(all))
	for _, s := range all {
		if n := text.Normalize(s); n != "" {
			skills = append(skills, phrase{raw: s, norm: n})
		}
	}

	return &Classifier{
		vocab:     v,
		weights:   weights,
		log:       log,
		aliases:   normalizeAll(v.EmployerAliases()),
		companies: normalizeAll(v.LargeCompanies),
		negative:  normalizeAll(v.SponsorshipNegative),
		positive:  normalizeAll(v.SponsorshipPositive),
		skills:    skills,
	}, nil
}

// Classify scores and annotates a single posting. A posting missing both
// title and company is malformed; an empty description is fine and simply
// scores zero.
func (c *Classifier) Classify(profile *resume.Profile, posting job.Posting) (*Result, error) {
	if profile == nil || strings.TrimSpace(profile.RawText) == "" {
		return nil, &ClassificationError{
			Title:   posting.Title,
			Company: posting.Company,
			Reason:  "resume profile has no text",
		}
	}
	if strings.TrimSpace(posting.Title) == "" && strings.TrimSpace(posting.Company) == "" {
		return nil, &ClassificationError{Reason: "posting has neither title nor company"}
	}

	desc := posting.Description
	similarity := match.Similarity(profile.RawText, desc)
	overlap, matched := match.Overlap(profile.Skills, desc)
	score := match.Combine(similarity, overlap, c.weights)

	normDesc := text.Normalize(desc)

	res := &Result{
		Posting:         posting,
		Score:           score,
		Similarity:      similarity,
		Overlap:         overlap,
		Sponsorship:     c.sponsorship(normDesc),
		NotableEmployer: c.notableEmployer(posting.Company, desc),
		LargeCompany:    c.largeCompany(posting.Company),
		Portal:          c.portal(posting.URL, desc),
		MatchedSkills:   matched,
		Suggestions:     c.suggestions(normDesc, profile.Skills),
	}

	c.log.Debug("classified posting",
		zap.String("title", posting.Title),
		zap.String("company", posting.Company),
		zap.Float64("score", score),
		zap.String("sponsorship", string(res.Sponsorship)),
		zap.Bool("notable_employer", res.NotableEmployer),
		zap.Bool("large_company", res.LargeCompany),
		zap.String("portal", res.Portal),
	)

	return res, nil
}

// sponsorship scans the normalized description for the configured phrase
// lists. An explicit negative wins even when positive language appears.
func (c *Classifier) sponsorship(normDesc string) Sponsorship {
	for _, p := range c.negative {
		if strings.Contains(normDesc, p) {
			return SponsorshipNo
		}
	}
	for _, p := range c.positive {
		if strings.Contains(normDesc, p) {
			return SponsorshipYes
		}
	}
	return SponsorshipUnknown
}

// notableEmployer checks the company field plus the head of the description,
// since postings often carry the brand only in legal-entity boilerplate.
func (c *Classifier) notableEmployer(company, desc string) bool {
	corpus := text.Normalize(company + " " + text.Prefix(desc, brandScanRunes))
	if corpus == "" {
		return false
	}
	for _, alias := range c.aliases {
		if text.ContainsWord(corpus, alias) {
			return true
		}
	}
	return false
}

// largeCompany matches the company name against the reference list in both
// directions, so "JPMorgan Chase & Co." still hits "jpmorgan".
func (c *Classifier) largeCompany(company string) bool {
	name := text.Normalize(company)
	if name == "" {
		return false
	}
	for _, known := range c.companies {
		if strings.Contains(name, known) || strings.Contains(known, name) {
			return true
		}
	}
	return false
}

// portal returns the first recognized platform in the URL or the head of the
// description. The vocabulary order defines precedence.
func (c *Classifier) portal(url, desc string) string {
	searchText := strings.ToLower(url + " " + text.Prefix(desc, portalScanRunes))
	for _, p := range c.vocab.Portals {
		for _, pattern := range p.Patterns {
			if pattern != "" && strings.Contains(searchText, strings.ToLower(pattern)) {
				return p.Name
			}
		}
	}
	return PortalUnknown
}

// suggestions lists vocabulary skills the posting mentions but the resume
// lacks, ordered by frequency in the posting and then alphabetically.
func (c *Classifier) suggestions(normDesc string, resumeSkills []string) []string {
	if normDesc == "" {
		return nil
	}

	have := make(map[string]struct{}, len(resumeSkills))
	for _, s := range resumeSkills {
		have[s] = struct{}{}
	}

	type hit struct {
		skill string
		count int
	}
	var hits []hit
	for _, sk := range c.skills {
		if _, ok := have[sk.raw]; ok {
			continue
		}
		if n := text.CountWord(normDesc, sk.norm); n > 0 {
			hits = append(hits, hit{skill: sk.raw, count: n})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].count != hits[j].count {
			return hits[i].count > hits[j].count
		}
		return hits[i].skill < hits[j].skill
	})

	if len(hits) > maxSuggestions {
		hits = hits[:maxSuggestions]
	}
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.skill)
	}
	return out
}
