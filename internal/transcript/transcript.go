// Package transcript defines the word-timed input contract clipreel's core
// pipeline consumes from the (external) transcription collaborator, per
// spec.md §6.
package transcript

import (
	"fmt"
	"strings"
)

// Word is a single timed token. Invariant: StartS <= EndS.
type Word struct {
	Text       string
	StartS     float64
	EndS       float64
	Confidence float64
}

// FromRaw validates and constructs a Word from untrusted input, rejecting
// empty text and non-monotonic timings (spec.md §4.1 "Normalize to Word
// objects (reject empty text)").
func FromRaw(text string, startS, endS, confidence float64) (Word, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Word{}, fmt.Errorf("empty word text")
	}
	if endS < startS {
		return Word{}, fmt.Errorf("word %q: end_s %.3f before start_s %.3f", trimmed, endS, startS)
	}
	return Word{Text: trimmed, StartS: startS, EndS: endS, Confidence: confidence}, nil
}

// DiarizationSegment is one labeled speaker interval.
type DiarizationSegment struct {
	StartS  float64
	EndS    float64
	Speaker string
}

// Valid reports whether the interval is monotonic, has positive duration and
// carries a non-empty speaker label, per spec.md §4.1 "invalid diarization intervals... are skipped".
func (d DiarizationSegment) Valid() bool {
	return d.EndS > d.StartS && strings.TrimSpace(d.Speaker) != ""
}

// Diarization carries the optional speaker-labeled intervals for an episode.
type Diarization struct {
	Segments []DiarizationSegment
}

// RawSegment is a larger speech segment used to synthesize per-word timing
// when the transcription collaborator didn't provide it (spec.md §4.1).
type RawSegment struct {
	StartS float64
	EndS   float64
	Text   string
	Words  []RawWord
}

// RawWord is the duck-typed word shape the transcription collaborator may
// send: some fields optional, confidence under either name.
type RawWord struct {
	Text        string
	StartS      *float64
	EndS        *float64
	Confidence  *float64
	Probability *float64
}

// Transcript is the full input contract for one episode (spec.md §6).
type Transcript struct {
	Text        string
	Words       []RawWord
	Segments    []RawSegment
	Diarization *Diarization
}

// IsEmpty reports whether the transcript carries no usable word or segment
// data, the InputError condition from spec.md §7.
func (t Transcript) IsEmpty() bool {
	return len(t.Words) == 0 && len(t.Segments) == 0
}
