package embedding

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

const maxTFIDFFeatures = 1000

var tokenPattern = regexp.MustCompile(`[a-z0-9']+`)

// englishStopWords is a standard short stop-word list, matching the scope
// ("English stop-words") spec.md §4.2 calls for.
var englishStopWords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "after": {}, "again": {}, "all": {}, "am": {}, "an": {}, "and": {},
	"any": {}, "are": {}, "as": {}, "at": {}, "be": {}, "because": {}, "been": {}, "before": {}, "being": {},
	"below": {}, "between": {}, "both": {}, "but": {}, "by": {}, "could": {}, "did": {}, "do": {}, "does": {},
	"doing": {}, "down": {}, "during": {}, "each": {}, "few": {}, "for": {}, "from": {}, "further": {}, "had": {},
	"has": {}, "have": {}, "having": {}, "he": {}, "her": {}, "here": {}, "hers": {}, "herself": {}, "him": {},
	"himself": {}, "his": {}, "how": {}, "i": {}, "if": {}, "in": {}, "into": {}, "is": {}, "it": {}, "its": {},
	"itself": {}, "me": {}, "more": {}, "most": {}, "my": {}, "myself": {}, "no": {}, "nor": {}, "not": {},
	"of": {}, "off": {}, "on": {}, "once": {}, "only": {}, "or": {}, "other": {}, "our": {}, "ours": {},
	"ourselves": {}, "out": {}, "over": {}, "own": {}, "same": {}, "she": {}, "should": {}, "so": {}, "some": {},
	"such": {}, "than": {}, "that": {}, "the": {}, "their": {}, "theirs": {}, "them": {}, "themselves": {},
	"then": {}, "there": {}, "these": {}, "they": {}, "this": {}, "those": {}, "through": {}, "to": {}, "too": {},
	"under": {}, "until": {}, "up": {}, "very": {}, "was": {}, "we": {}, "were": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "while": {}, "who": {}, "whom": {}, "why": {}, "with": {}, "would": {}, "you": {},
	"your": {}, "yours": {}, "yourself": {}, "yourselves": {},
}

// tfidfFallback generates dense, deterministic, normalized vectors from the
// sentence texts when all transformer candidates fail: TF-IDF over
// unigrams+bigrams, document-frequency clipped to [1, 0.95*n], truncated to
// d = min(384, features, n) via SVD, then L2-normalized (spec.md §4.2).
func tfidfFallback(texts []string) ([][]float32, error) {
	n := len(texts)
	docs := make([][]string, n)
	for i, text := range texts {
		docs[i] = ngrams(text)
	}

	vocab, df := buildVocabulary(docs, n)
	terms := rankTerms(vocab, df, n)
	if len(terms) > maxTFIDFFeatures {
		terms = terms[:maxTFIDFFeatures]
	}
	termIndex := make(map[string]int, len(terms))
	for i, t := range terms {
		termIndex[t] = i
	}

	tfidf := mat.NewDense(n, len(terms), nil)
	for i, doc := range docs {
		counts := make(map[string]int)
		for _, tok := range doc {
			counts[tok]++
		}
		for tok, count := range counts {
			j, ok := termIndex[tok]
			if !ok {
				continue
			}
			tf := float64(count) / float64(len(doc))
			idf := math.Log(float64(n+1)/float64(df[tok]+1)) + 1
			tfidf.Set(i, j, tf*idf)
		}
	}

	d := minInt(384, minInt(len(terms), n))
	if d == 0 {
		// Degenerate input (no extractable terms): return zero vectors of
		// dimension 1 so downstream stages still receive n rows.
		out := make([][]float32, n)
		for i := range out {
			out[i] = []float32{0}
		}
		return out, nil
	}

	reduced, err := truncatedSVD(tfidf, d)
	if err != nil {
		return nil, err
	}

	out := make([][]float32, n)
	for i := 0; i < n; i++ {
		row := make([]float32, d)
		var norm float64
		for j := 0; j < d; j++ {
			v := reduced.At(i, j)
			row[j] = float32(v)
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm > 0 {
			for j := range row {
				row[j] = float32(float64(row[j]) / norm)
			}
		}
		out[i] = row
	}
	return out, nil
}

func ngrams(text string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	filtered := tokens[:0]
	for _, t := range tokens {
		if _, stop := englishStopWords[t]; stop {
			continue
		}
		filtered = append(filtered, t)
	}
	out := make([]string, 0, len(filtered)*2)
	out = append(out, filtered...)
	for i := 0; i+1 < len(filtered); i++ {
		out = append(out, filtered[i]+" "+filtered[i+1])
	}
	return out
}

func buildVocabulary(docs [][]string, n int) (map[string]struct{}, map[string]int) {
	vocab := make(map[string]struct{})
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range doc {
			vocab[tok] = struct{}{}
			if _, ok := seen[tok]; !ok {
				df[tok]++
				seen[tok] = struct{}{}
			}
		}
	}
	maxDF := int(0.95 * float64(n))
	if maxDF < 1 {
		maxDF = 1
	}
	for term, count := range df {
		if count < 1 || count > maxDF {
			delete(vocab, term)
		}
	}
	return vocab, df
}

func rankTerms(vocab map[string]struct{}, df map[string]int, n int) []string {
	terms := make([]string, 0, len(vocab))
	for t := range vocab {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		si, sj := termScore(terms[i], df, n), termScore(terms[j], df, n)
		if si != sj {
			return si > sj
		}
		return terms[i] < terms[j]
	})
	return terms
}

func termScore(term string, df map[string]int, n int) float64 {
	return math.Log(float64(n+1) / float64(df[term]+1))
}

func truncatedSVD(m *mat.Dense, d int) (*mat.Dense, error) {
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDThin) {
		return nil, errSVDFailed
	}
	var u mat.Dense
	svd.UTo(&u)
	values := svd.Values(nil)

	rows, _ := u.Dims()
	out := mat.NewDense(rows, d, nil)
	for j := 0; j < d && j < len(values); j++ {
		sv := values[j]
		for i := 0; i < rows; i++ {
			out.Set(i, j, u.At(i, j)*sv)
		}
	}
	return out, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
