// Package fuzzy does typo- and accent-tolerant matching of short search
// queries against names and addresses.
package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LevenshteinDistance calculates the edit distance between two strings
// after normalization: the number of single-rune insertions, deletions or
// substitutions needed to turn one into the other.
func LevenshteinDistance(s1, s2 string) int {
	return distance([]rune(Normalize(s1)), []rune(Normalize(s2)))
}

func distance(r1, r2 []rune) int {
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

// Threshold is the edit distance tolerated for query: 1 for very short
// queries, 3 for long ones, 2 otherwise.
func Threshold(query string) int {
	n := len([]rune(Normalize(query)))
	switch {
	case n <= 3:
		return 1
	case n >= 8:
		return 3
	}
	return 2
}

// Match checks if query fuzzy-matches text within threshold.
func Match(query, text string, threshold int) bool {
	query = Normalize(query)
	text = Normalize(text)
	if query == "" {
		return true
	}

	// If query is contained in text, it's a match
	if strings.Contains(text, query) {
		return true
	}

	q := []rune(query)
	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, query) || distance(q, []rune(word)) <= threshold {
			return true
		}
	}

	// Whole-text distance only makes sense for short texts
	if len(text) < 50 {
		return distance(q, []rune(text)) <= threshold+len(q)/5
	}
	return false
}

// Score ranks how well query matches fields. Earlier fields weigh more;
// zero means no match at all.
func Score(query string, fields ...string) float64 {
	query = Normalize(query)
	if query == "" {
		return 0
	}
	q := []rune(query)

	score := 0.0
	weight := 1.0
	for _, field := range fields {
		text := Normalize(field)
		switch {
		case containsWord(text, query):
			score += 150 * weight
		case strings.Contains(text, query):
			score += 100 * weight
		default:
			for _, word := range strings.Fields(text) {
				if strings.HasPrefix(word, query) {
					score += 40 * weight
				}
				if d := distance(q, []rune(word)); d <= 2 {
					score += (50 - float64(d)*15) * weight
				}
			}
		}
		weight *= 0.6
	}
	return score
}

// Normalize lowercases s, strips diacritics and collapses whitespace, so
// "Abarrotes  Doña Lupe" and "abarrotes dona lupe" compare equal.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// containsWord checks if text contains query as a whole word
func containsWord(text, query string) bool {
	for _, word := range strings.Fields(text) {
		if word == query {
			return true
		}
	}
	return false
}
