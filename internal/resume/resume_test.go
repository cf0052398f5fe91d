package resume

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfinder/internal/vocab"
)

const sampleResume = `
Jane Doe
Senior Data Scientist

SUMMARY
Data scientist with 6 years of experience building machine-learning systems.

SKILLS
Python, SQL, scikit-learn, TensorFlow, Spark, AWS, Docker, Tableau.
Strong communication and stakeholder management. CI/CD pipelines with Jenkins.

EDUCATION
Master of Science in Computer Science
B.S. in Mathematics
`

func testVocab(t *testing.T) *vocab.Vocabulary {
	t.Helper()
	v, err := vocab.Load("")
	require.NoError(t, err)
	return v
}

func TestExtract(t *testing.T) {
	t.Parallel()

	profile, err := Extract(sampleResume, testVocab(t))
	require.NoError(t, err)

	for _, skill := range []string{"python", "sql", "scikit-learn", "tensorflow", "spark", "aws", "docker", "tableau", "ci/cd", "jenkins"} {
		assert.Contains(t, profile.TechnicalSkills, skill)
	}
	assert.Contains(t, profile.SoftSkills, "communication")
	assert.Contains(t, profile.SoftSkills, "stakeholder management")

	assert.NotContains(t, profile.TechnicalSkills, "java", "substring of nothing present")
	assert.NotContains(t, profile.TechnicalSkills, "go")

	assert.Contains(t, profile.Titles, "data scientist")
	assert.Equal(t, 6, profile.YearsExperience)
	assert.NotEmpty(t, profile.Education)

	assert.IsIncreasing(t, profile.TechnicalSkills)
	assert.Equal(t, sampleResume, profile.RawText)

	// combined list covers both categories without duplicates
	seen := make(map[string]int)
	for _, s := range profile.Skills {
		seen[s]++
	}
	for s, n := range seen {
		assert.Equal(t, 1, n, "skill %q appears %d times", s, n)
	}
	assert.Len(t, profile.Skills, len(profile.TechnicalSkills)+len(profile.SoftSkills))
}

func TestExtractHyphenVariants(t *testing.T) {
	t.Parallel()

	profile, err := Extract("Served as ML engineer. Built models with scikit-learn and ran A/B testing.", testVocab(t))
	require.NoError(t, err)

	assert.Contains(t, profile.TechnicalSkills, "scikit-learn")
	assert.Contains(t, profile.TechnicalSkills, "a/b testing")
	assert.Contains(t, profile.Titles, "ml engineer")
}

func TestExtractEmptyText(t *testing.T) {
	t.Parallel()

	tests := []string{"", "   ", "\n\t\n"}
	for _, raw := range tests {
		profile, err := Extract(raw, testVocab(t))
		assert.Nil(t, profile, "no partial profile on failure")

		var exErr *ExtractionError
		assert.ErrorAs(t, err, &exErr)
	}
}

func TestLoadPlainText(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleResume), 0o644))

	profile, err := Load(path, testVocab(t))
	require.NoError(t, err)
	assert.Contains(t, profile.TechnicalSkills, "python")
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"), testVocab(t))

	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := Load(path, testVocab(t))

	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, path, exErr.Source)
}
