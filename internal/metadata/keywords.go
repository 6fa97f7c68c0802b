package metadata

import (
	"regexp"
	"sort"
	"strings"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "if": {}, "then": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"to": {}, "of": {}, "in": {}, "on": {}, "at": {}, "for": {}, "with": {}, "by": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "it": {}, "its": {}, "as": {},
	"you": {}, "your": {}, "i": {}, "we": {}, "they": {}, "he": {}, "she": {},
	"do": {}, "does": {}, "did": {}, "have": {}, "has": {}, "had": {}, "not": {},
}

var (
	wordPattern      = regexp.MustCompile(`[A-Za-z']+`)
	actionVerbs      = regexp.MustCompile(`(?i)\b(discover|learn|build|create|fix|avoid|master|transform|unlock|boost|stop|start)\w*\b`)
	whWords          = regexp.MustCompile(`(?i)\b(what|why|how|who|when|where|which)\b`)
	superlativeWords = regexp.MustCompile(`(?i)\b(best|worst|most|biggest|smallest|fastest|easiest)\b`)
	digitToken       = regexp.MustCompile(`\b\w*\d\w*\b`)
	capitalizedToken = regexp.MustCompile(`\b[A-Z][a-zA-Z]+\b`)
)

// extractKeywords implements spec.md §4.6's keyword extraction: the union of
// high-frequency non-stop-word terms (>=2 occurrences), regex-captured
// action verbs/WH-words/superlatives/digits/capitalized tokens, deduplicated
// case-insensitively, filtered to length>=3, sorted by length desc then
// alphabetically, capped at 10. No NLP entity model is resident, so that
// source of the union is simply empty here.
func extractKeywords(text string) []string {
	seen := make(map[string]string) // lowercase -> original casing of first sighting
	add := func(term string) {
		term = strings.TrimSpace(term)
		if len(term) < 3 {
			return
		}
		lower := strings.ToLower(term)
		if _, stop := stopWords[lower]; stop {
			return
		}
		if _, exists := seen[lower]; !exists {
			seen[lower] = term
		}
	}

	for term, count := range frequentTerms(text) {
		if count >= 2 {
			add(term)
		}
	}
	for _, m := range actionVerbs.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range whWords.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range superlativeWords.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range digitToken.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range capitalizedToken.FindAllString(text, -1) {
		add(m)
	}

	terms := make([]string, 0, len(seen))
	for _, original := range seen {
		terms = append(terms, original)
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return strings.ToLower(terms[i]) < strings.ToLower(terms[j])
	})
	if len(terms) > maxKeywords {
		terms = terms[:maxKeywords]
	}
	return terms
}

func frequentTerms(text string) map[string]int {
	counts := make(map[string]int)
	for _, w := range wordPattern.FindAllString(text, -1) {
		lower := strings.ToLower(w)
		if _, stop := stopWords[lower]; stop {
			continue
		}
		if len(w) < 3 {
			continue
		}
		counts[w]++
	}
	return counts
}
