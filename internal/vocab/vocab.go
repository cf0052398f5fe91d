// Package vocab loads the reference vocabulary that drives skill extraction
// and rule-based classification: known skills, employer aliases, sponsorship
// phrases and application-portal patterns.
package vocab

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed vocab.yaml
var embedded []byte

// Portal is one recognizable application platform. Patterns are matched as
// substrings against the posting URL and text.
type Portal struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// Vocabulary is the full reference data set. All entries are expected in
// lowercase except portal names, which are display values.
type Vocabulary struct {
	TechSkills          []string            `yaml:"tech_skills"`
	SoftSkills          []string            `yaml:"soft_skills"`
	NotableEmployers    map[string][]string `yaml:"notable_employers"`
	LargeCompanies      []string            `yaml:"large_companies"`
	SponsorshipPositive []string            `yaml:"sponsorship_positive"`
	SponsorshipNegative []string            `yaml:"sponsorship_negative"`
	Portals             []Portal            `yaml:"portals"`
}

// Load reads a vocabulary from path, or returns the embedded default when
// path is empty.
func Load(path string) (*Vocabulary, error) {
	data := embedded
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading vocabulary file: %w", err)
		}
	}

	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing vocabulary: %w", err)
	}

	if err := v.Validate(); err != nil {
		if path == "" {
			return nil, fmt.Errorf("embedded vocabulary: %w", err)
		}
		return nil, fmt.Errorf("vocabulary file %s: %w", path, err)
	}

	return &v, nil
}

// Validate checks that the sections needed for scoring are present.
func (v *Vocabulary) Validate() error {
	if len(v.TechSkills) == 0 {
		return fmt.Errorf("tech_skills must not be empty")
	}
	if len(v.SoftSkills) == 0 {
		return fmt.Errorf("soft_skills must not be empty")
	}
	for name, aliases := range v.NotableEmployers {
		if len(aliases) == 0 {
			return fmt.Errorf("notable employer %q has no aliases", name)
		}
	}
	for i, p := range v.Portals {
		if p.Name == "" {
			return fmt.Errorf("portal %d has no name", i)
		}
		if len(p.Patterns) == 0 {
			return fmt.Errorf("portal %q has no patterns", p.Name)
		}
	}
	return nil
}

// AllSkills returns the technical and soft skills as one list, technical
// first, preserving file order.
func (v *Vocabulary) AllSkills() []string {
	out := make([]string, 0, len(v.TechSkills)+len(v.SoftSkills))
	out = append(out, v.TechSkills...)
	out = append(out, v.SoftSkills...)
	return out
}

// EmployerAliases flattens the notable-employer map into a deterministic
// list, sorted by canonical name with each group's aliases in file order.
func (v *Vocabulary) EmployerAliases() []string {
	names := make([]string, 0, len(v.NotableEmployers))
	for name := range v.NotableEmployers {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		out = append(out, v.NotableEmployers[name]...)
	}
	return out
}
