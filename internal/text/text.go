// Package text holds the shared normalization and tokenization helpers used
// by the scoring and classification code. Everything here operates on plain
// strings so the callers decide what is a resume and what is a job posting.
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// stopwords are high-frequency words that carry no signal when comparing a
// resume against a job description. The last group covers job-posting
// boilerplate that would otherwise dominate term frequencies.
var stopwords = map[string]struct{}{
	"an": {}, "the": {}, "and": {}, "but": {}, "or": {}, "nor": {},
	"if": {}, "so": {}, "as": {}, "than": {}, "too": {}, "very": {},
	"just": {}, "only": {}, "of": {}, "in": {}, "to": {}, "at": {},
	"on": {}, "by": {}, "for": {}, "with": {}, "from": {}, "into": {},
	"about": {}, "between": {}, "through": {}, "during": {}, "before": {},
	"after": {}, "above": {}, "below": {}, "up": {}, "down": {}, "out": {},
	"off": {}, "over": {}, "under": {}, "we": {}, "you": {}, "your": {},
	"our": {}, "their": {}, "they": {}, "them": {}, "it": {}, "its": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "what": {},
	"which": {}, "who": {}, "whom": {}, "am": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "being": {}, "have": {},
	"has": {}, "had": {}, "having": {}, "do": {}, "does": {}, "did": {},
	"doing": {}, "will": {}, "would": {}, "can": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "must": {}, "shall": {},
	"get": {}, "set": {}, "use": {}, "using": {}, "used": {}, "not": {},
	"no": {}, "all": {}, "any": {}, "both": {}, "each": {}, "few": {},
	"more": {}, "most": {}, "other": {}, "some": {}, "such": {},
	"when": {}, "where": {}, "why": {}, "how": {}, "here": {},
	"there": {}, "then": {}, "once": {}, "again": {}, "also": {},
	"well": {}, "able": {}, "new": {}, "good": {}, "high": {},
	"work": {}, "team": {}, "role": {}, "job": {}, "join": {},
}

// isTokenRune reports whether r may appear inside a token. Dots, pluses,
// hashes and underscores stay so that terms like node.js, c++ and c# survive
// tokenization in one piece.
func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		r == '.' || r == '+' || r == '#' || r == '_'
}

// isIdentRune reports whether r counts as a word character for boundary
// checks. Unlike isTokenRune it excludes dots, pluses and hashes, otherwise
// "c++" would never match at the end of a token.
func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// Normalize lowercases s, replaces every rune outside the token alphabet with
// a space and collapses whitespace runs. The result is trimmed, so matching
// helpers can assume tokens are separated by single spaces.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range strings.ToLower(s) {
		if !isTokenRune(r) {
			pending = true
			continue
		}
		if pending && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pending = false
		b.WriteRune(r)
	}
	return b.String()
}

// Tokenize splits s into lowercase tokens, dropping stopwords and anything
// shorter than two characters. Trailing dots are trimmed so a sentence ending
// in "aws." yields the token "aws" while "node.js" stays intact.
func Tokenize(s string) []string {
	var (
		tokens []string
		b      strings.Builder
	)
	flush := func() {
		if b.Len() == 0 {
			return
		}
		w := strings.TrimRight(b.String(), ".")
		b.Reset()
		if len(w) < 2 {
			return
		}
		if _, ok := stopwords[w]; ok {
			return
		}
		tokens = append(tokens, w)
	}
	for _, r := range strings.ToLower(s) {
		if isTokenRune(r) {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// Prefix returns the first n runes of s. Classifiers scan only the head of a
// description, and cutting on bytes could split a multibyte rune.
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// ContainsWord reports whether phrase occurs in s delimited by word
// boundaries. Both arguments must already be normalized. A boundary is any
// position not flanked by a letter, digit or underscore, which keeps "go"
// from matching inside "golang" while still matching "c++" before a space.
func ContainsWord(s, phrase string) bool {
	return indexWord(s, phrase, 0) >= 0
}

// CountWord returns the number of non-overlapping boundary-delimited
// occurrences of phrase in s. Both arguments must already be normalized.
func CountWord(s, phrase string) int {
	n := 0
	for i := 0; ; {
		j := indexWord(s, phrase, i)
		if j < 0 {
			return n
		}
		n++
		i = j + len(phrase)
	}
}

func indexWord(s, phrase string, from int) int {
	if phrase == "" || from > len(s) {
		return -1
	}
	for {
		j := strings.Index(s[from:], phrase)
		if j < 0 {
			return -1
		}
		j += from
		if boundaryBefore(s, j) && boundaryAfter(s, j+len(phrase)) {
			return j
		}
		from = j + 1
	}
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isIdentRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isIdentRune(r)
}
