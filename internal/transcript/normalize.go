package transcript

import (
	"regexp"
	"strings"
)

// fillerPrefix matches leading filler interjections the original Python
// transcript cleaner stripped before sentence alignment (original_source's
// src/utils/transcript_cleaner.py). Carried forward as a pre-pass: spec.md
// §4.1 assumes reasonably clean word tokens but never forbids normalizing
// them first.
var fillerPrefix = regexp.MustCompile(`(?i)^(um+|uh+|erm+|hmm+)[,.]?\s*$`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Clean normalizes whitespace in word text and drops isolated filler tokens,
// returning a copy; it never removes punctuation used for sentence boundary
// detection by internal/sentence.
func Clean(words []Word) []Word {
	cleaned := make([]Word, 0, len(words))
	for _, w := range words {
		text := whitespaceRun.ReplaceAllString(strings.TrimSpace(w.Text), " ")
		if text == "" {
			continue
		}
		if fillerPrefix.MatchString(text) {
			continue
		}
		w.Text = text
		cleaned = append(cleaned, w)
	}
	return cleaned
}

// Words extracts a flat, validated, time-ordered Word list from a Transcript,
// synthesizing per-word timing from RawSegments when per-word timing is
// absent (spec.md §4.1: "dividing a parent segment's duration uniformly
// across its words and mark confidence = 0.5").
func Words(t Transcript) []Word {
	if len(t.Words) > 0 {
		return fromRawWords(t.Words)
	}
	var out []Word
	for _, seg := range t.Segments {
		out = append(out, wordsFromSegment(seg)...)
	}
	return out
}

func fromRawWords(raw []RawWord) []Word {
	out := make([]Word, 0, len(raw))
	for _, rw := range raw {
		text := strings.TrimSpace(rw.Text)
		if text == "" {
			continue
		}
		var start, end float64
		if rw.StartS != nil {
			start = *rw.StartS
		}
		if rw.EndS != nil {
			end = *rw.EndS
		}
		if end < start {
			end = start
		}
		confidence := 1.0
		if rw.Confidence != nil {
			confidence = *rw.Confidence
		} else if rw.Probability != nil {
			confidence = *rw.Probability
		}
		w, err := FromRaw(text, start, end, confidence)
		if err != nil {
			continue
		}
		out = append(out, w)
	}
	return out
}

func wordsFromSegment(seg RawSegment) []Word {
	if len(seg.Words) > 0 {
		hasTiming := true
		for _, rw := range seg.Words {
			if rw.StartS == nil || rw.EndS == nil {
				hasTiming = false
				break
			}
		}
		if hasTiming {
			return fromRawWords(seg.Words)
		}
	}

	tokens := strings.Fields(seg.Text)
	if len(tokens) == 0 {
		return nil
	}
	duration := seg.EndS - seg.StartS
	if duration < 0 {
		duration = 0
	}
	per := duration / float64(len(tokens))
	out := make([]Word, 0, len(tokens))
	for i, token := range tokens {
		start := seg.StartS + per*float64(i)
		end := start + per
		w, err := FromRaw(token, start, end, 0.5)
		if err != nil {
			continue
		}
		out = append(out, w)
	}
	return out
}
