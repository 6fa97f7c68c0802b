// Package sentence implements C1, the Sentence Aligner: merging word tokens
// into sentences and attaching speakers from diarization (spec.md §4.1).
package sentence

import "github.com/five82/clipreel/internal/transcript"

// Sentence is a contiguous group of words bounded by punctuation or a long
// inter-word gap. Immutable once constructed except for the speaker field,
// which may be attached in a post-pass.
type Sentence struct {
	Text       string
	StartMS    int64
	EndMS      int64
	Words      []transcript.Word
	Speaker    string
	Confidence float64
}

// Duration returns the sentence's span in milliseconds.
func (s Sentence) Duration() int64 {
	return s.EndMS - s.StartMS
}

func newSentence(words []transcript.Word) Sentence {
	if len(words) == 0 {
		return Sentence{}
	}
	var sum float64
	parts := make([]string, len(words))
	for i, w := range words {
		sum += w.Confidence
		parts[i] = w.Text
	}
	return Sentence{
		Text:       joinWords(parts),
		StartMS:    secondsToMS(words[0].StartS),
		EndMS:      secondsToMS(words[len(words)-1].EndS),
		Words:      append([]transcript.Word(nil), words...),
		Confidence: sum / float64(len(words)),
	}
}

func secondsToMS(s float64) int64 {
	return int64(s*1000 + 0.5)
}

func joinWords(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += " " + p
	}
	return out
}
