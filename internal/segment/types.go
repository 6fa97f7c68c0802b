// Package segment implements C3, the Topic Segmenter: change-point boundary
// detection over sentence embeddings followed by duration-policy enforcement
// (spec.md §4.3).
package segment

import "github.com/five82/clipreel/internal/sentence"

// TopicSegment is a contiguous run of sentences bounded by detected (or
// fallback) topic boundaries, with its time span pinned to its first and
// last sentence.
type TopicSegment struct {
	Sentences []sentence.Sentence
	StartMS   int64
	EndMS     int64
}

// DurationMS returns the segment's span in milliseconds.
func (s TopicSegment) DurationMS() int64 {
	return s.EndMS - s.StartMS
}

func newSegment(sentences []sentence.Sentence) TopicSegment {
	return TopicSegment{
		Sentences: sentences,
		StartMS:   sentences[0].StartMS,
		EndMS:     sentences[len(sentences)-1].EndMS,
	}
}

// Options configures segmentation thresholds; zero-valued fields fall back
// to spec.md §4.3 defaults.
type Options struct {
	MinDurationMS int64
	MaxDurationMS int64
}

const (
	defaultMinDurationMS = 20000
	defaultMaxDurationMS = 120000
)

func (o Options) minDurationMS() int64 {
	if o.MinDurationMS > 0 {
		return o.MinDurationMS
	}
	return defaultMinDurationMS
}

func (o Options) maxDurationMS() int64 {
	if o.MaxDurationMS > 0 {
		return o.MaxDurationMS
	}
	return defaultMaxDurationMS
}
