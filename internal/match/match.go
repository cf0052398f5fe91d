// Package match implements the lexical scoring pipeline: TF-IDF cosine
// similarity between resume and job text, skill keyword overlap, and the
// weighted blend of the two into a match percentage.
package match

import (
	"fmt"
	"math"
	"sort"

	"jobfinder/internal/text"
)

// Weights control how the similarity and overlap components blend into the
// final score. They must sum to 1.
type Weights struct {
	Similarity float64 `mapstructure:"similarity"`
	Overlap    float64 `mapstructure:"overlap"`
}

// DefaultWeights favor similarity over direct keyword overlap, which keeps
// boilerplate-heavy postings from drowning out skill mentions entirely.
func DefaultWeights() Weights {
	return Weights{Similarity: 0.65, Overlap: 0.35}
}

func (w Weights) Validate() error {
	if w.Similarity < 0 || w.Overlap < 0 {
		return fmt.Errorf("score weights must not be negative: similarity=%v overlap=%v", w.Similarity, w.Overlap)
	}
	if sum := w.Similarity + w.Overlap; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("score weights must sum to 1, got %v", sum)
	}
	return nil
}

// Similarity computes the TF-IDF cosine similarity between two documents in
// [0,1]. The corpus is just the two documents, with smoothed IDF so terms
// unique to one side weigh more than shared ones. If either document has no
// informative tokens left after stopword removal the similarity is 0.
func Similarity(a, b string) float64 {
	ta := text.Tokenize(a)
	tb := text.Tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	idf := idfWeights(ta, tb)
	return cosine(tfidfVector(ta, idf), tfidfVector(tb, idf))
}

// idfWeights computes smoothed inverse document frequencies over the corpus:
// idf(t) = ln((N+1)/(df(t)+1)) + 1.
func idfWeights(docs ...[]string) map[string]float64 {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, t := range doc {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for t, count := range df {
		idf[t] = math.Log((n+1)/float64(count+1)) + 1
	}
	return idf
}

// term is one entry of a sparse document vector.
type term struct {
	token  string
	weight float64
}

// tfidfVector builds the sparse vector for one document, sorted by token.
// Sorting keeps the floating-point accumulation order fixed, so identical
// inputs always produce the identical score.
func tfidfVector(tokens []string, idf map[string]float64) []term {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}

	total := float64(len(tokens))
	vec := make([]term, 0, len(counts))
	for t, c := range counts {
		vec = append(vec, term{token: t, weight: float64(c) / total * idf[t]})
	}
	sort.Slice(vec, func(i, j int) bool { return vec[i].token < vec[j].token })
	return vec
}

// cosine merge-joins two sorted sparse vectors.
func cosine(a, b []term) float64 {
	var dot float64
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i].token == b[j].token:
			dot += a[i].weight * b[j].weight
			i++
			j++
		case a[i].token < b[j].token:
			i++
		default:
			j++
		}
	}
	if dot == 0 {
		return 0
	}

	magA := magnitude(a)
	magB := magnitude(b)
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (magA * magB)
}

func magnitude(vec []term) float64 {
	var sum float64
	for _, t := range vec {
		sum += t.weight * t.weight
	}
	return math.Sqrt(sum)
}

// Overlap returns the fraction of skills found in jobText as word-boundary
// matches, along with the matched skills sorted alphabetically. Duplicate
// skills count once. An empty skill set yields 0, not an error.
func Overlap(skills []string, jobText string) (float64, []string) {
	norm := text.Normalize(jobText)

	seen := make(map[string]struct{}, len(skills))
	total := 0
	var matched []string
	for _, skill := range skills {
		if _, dup := seen[skill]; dup {
			continue
		}
		seen[skill] = struct{}{}
		total++

		phrase := text.Normalize(skill)
		if phrase == "" {
			continue
		}
		if text.ContainsWord(norm, phrase) {
			matched = append(matched, skill)
		}
	}

	if total == 0 {
		return 0, nil
	}
	sort.Strings(matched)
	return float64(len(matched)) / float64(total), matched
}

// Combine blends the two component scores into a percentage, clamped to
// [0,100] and rounded to two decimals.
func Combine(similarity, overlap float64, w Weights) float64 {
	score := w.Similarity*similarity + w.Overlap*overlap
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return math.Round(score*10000) / 100
}
