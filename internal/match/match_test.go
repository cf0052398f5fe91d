package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	t.Parallel()

	t.Run("identical documents", func(t *testing.T) {
		doc := "python machine learning engineer building data pipelines"
		assert.InDelta(t, 1.0, Similarity(doc, doc), 1e-9)
	})

	t.Run("disjoint documents", func(t *testing.T) {
		assert.Zero(t, Similarity("python pandas numpy", "golang kubernetes docker"))
	})

	t.Run("partial overlap stays between bounds", func(t *testing.T) {
		sim := Similarity(
			"python sql statistics and data modeling",
			"python sql dashboards and reporting",
		)
		assert.Greater(t, sim, 0.0)
		assert.Less(t, sim, 1.0)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := "python sql spark airflow"
		b := "sql snowflake dbt airflow"
		assert.InDelta(t, Similarity(a, b), Similarity(b, a), 1e-12)
	})

	t.Run("empty sides", func(t *testing.T) {
		assert.Zero(t, Similarity("", "python engineer"))
		assert.Zero(t, Similarity("python engineer", ""))
	})

	t.Run("stopword-only document", func(t *testing.T) {
		assert.Zero(t, Similarity("the and with you will", "python engineer"))
	})

	t.Run("deterministic", func(t *testing.T) {
		a := "senior data scientist python sql aws sagemaker"
		b := "data scientist role python required sql preferred"
		first := Similarity(a, b)
		for range 10 {
			assert.Equal(t, first, Similarity(a, b))
		}
	})
}

func TestOverlap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		skills      []string
		jobText     string
		wantRatio   float64
		wantMatched []string
	}{
		{
			name:        "all skills present",
			skills:      []string{"python", "sql"},
			jobText:     "Seeking engineer with Python and SQL experience.",
			wantRatio:   1.0,
			wantMatched: []string{"python", "sql"},
		},
		{
			name:        "half present",
			skills:      []string{"python", "rust"},
			jobText:     "Python shop, no systems work.",
			wantRatio:   0.5,
			wantMatched: []string{"python"},
		},
		{
			name:      "none present",
			skills:    []string{"tableau", "looker"},
			jobText:   "Backend Go services only.",
			wantRatio: 0,
		},
		{
			name:      "empty skill set",
			skills:    nil,
			jobText:   "Anything at all.",
			wantRatio: 0,
		},
		{
			name:        "multi-word skill",
			skills:      []string{"machine learning", "sql"},
			jobText:     "Strong machine learning background required.",
			wantRatio:   0.5,
			wantMatched: []string{"machine learning"},
		},
		{
			name:        "no partial token matches",
			skills:      []string{"java"},
			jobText:     "JavaScript and TypeScript front end.",
			wantRatio:   0,
			wantMatched: nil,
		},
		{
			name:        "punctuated skill",
			skills:      []string{"ci/cd", "c++"},
			jobText:     "We run CI/CD pipelines for our C++ services.",
			wantRatio:   1.0,
			wantMatched: []string{"c++", "ci/cd"},
		},
		{
			name:        "duplicates count once",
			skills:      []string{"python", "python"},
			jobText:     "Python only.",
			wantRatio:   1.0,
			wantMatched: []string{"python"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratio, matched := Overlap(tt.skills, tt.jobText)
			assert.InDelta(t, tt.wantRatio, ratio, 1e-9)
			assert.Equal(t, tt.wantMatched, matched)
		})
	}
}

func TestCombine(t *testing.T) {
	t.Parallel()

	w := DefaultWeights()

	tests := []struct {
		name       string
		similarity float64
		overlap    float64
		want       float64
	}{
		{"both perfect", 1.0, 1.0, 100},
		{"both zero", 0, 0, 0},
		{"weighted blend", 0.5, 0.5, 50},
		{"default weights applied", 0, 1.0, 35},
		{"rounded to two decimals", 1.0 / 3.0, 0, 21.67},
		{"clamped high", 1.5, 1.5, 100},
		{"clamped low", -0.5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Combine(tt.similarity, tt.overlap, w), 1e-9)
		})
	}

	t.Run("custom weights", func(t *testing.T) {
		got := Combine(1.0, 0, Weights{Similarity: 0.8, Overlap: 0.2})
		assert.InDelta(t, 80.0, got, 1e-9)
	})
}

func TestWeightsValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DefaultWeights().Validate())
	assert.NoError(t, Weights{Similarity: 0.7, Overlap: 0.3}.Validate())
	assert.Error(t, Weights{Similarity: 0.5, Overlap: 0.6}.Validate())
	assert.Error(t, Weights{Similarity: 1.2, Overlap: -0.2}.Validate())
}
