package sentence

import (
	"regexp"

	"github.com/five82/clipreel/internal/transcript"
)

const defaultMaxGapMS = 2200
const weakBoundaryGapMS = 1000

var (
	strongBoundary = regexp.MustCompile(`[.!?]+$`)
	weakBoundary   = regexp.MustCompile(`[,:;]$`)
)

// Options tunes the aligner's boundary thresholds; zero values fall back to
// spec.md §4.1 defaults.
type Options struct {
	MaxGapMS int
}

func (o Options) maxGapMS() int {
	if o.MaxGapMS > 0 {
		return o.MaxGapMS
	}
	return defaultMaxGapMS
}

// Align walks a time-ordered word list and emits sentences covering the same
// interval, with no overlap and no gaps in sentence-index order (spec.md
// §4.1). An empty input yields an empty result; alignment never fails on
// alignment data alone.
func Align(words []transcript.Word, opts Options) []Sentence {
	if len(words) == 0 {
		return nil
	}

	var sentences []Sentence
	buffer := make([]transcript.Word, 0, 16)

	for i, w := range words {
		buffer = append(buffer, w)

		isLast := i == len(words)-1
		emit := isLast
		if !emit && strongBoundary.MatchString(w.Text) {
			emit = true
		}
		if !emit {
			gapMS := int((words[i+1].StartS - w.EndS) * 1000)
			if gapMS > opts.maxGapMS() {
				emit = true
			} else if weakBoundary.MatchString(w.Text) && gapMS > weakBoundaryGapMS {
				emit = true
			}
		}

		if emit {
			sentences = append(sentences, newSentence(buffer))
			buffer = buffer[:0]
		}
	}

	return sentences
}
