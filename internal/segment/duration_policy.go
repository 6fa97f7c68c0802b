package segment

import (
	"regexp"
	"strings"

	"github.com/five82/clipreel/internal/sentence"
)

const (
	splitTargetRatio = 0.75
	forceSplitRatio  = 0.9
	silenceGapMS     = 2000
)

var sentenceEndPunctuation = regexp.MustCompile(`[.!?]\s*$`)

// enforceDurationPolicy runs merge-short then split-long, per spec.md §4.3.
func enforceDurationPolicy(segments []TopicSegment, opts Options) []TopicSegment {
	segments = mergeShort(segments, opts)
	segments = splitLong(segments, opts)
	return segments
}

// mergeShort repeatedly folds under-duration segments into a neighbor,
// left to right, until no further progress can be made.
func mergeShort(segments []TopicSegment, opts Options) []TopicSegment {
	minMS := opts.minDurationMS()
	maxMS := opts.maxDurationMS()

	for {
		progressed := false
		i := 0
		for i < len(segments) {
			if segments[i].DurationMS() >= minMS {
				i++
				continue
			}
			if i+1 < len(segments) && combinedDuration(segments[i], segments[i+1]) <= maxMS {
				segments = replaceWithMerge(segments, i, i+1)
				progressed = true
				continue
			}
			if i+2 < len(segments) && combinedDurationN(segments[i:i+3]) <= maxMS {
				segments = replaceWithMerge(segments, i, i+2)
				progressed = true
				continue
			}
			if i > 0 {
				segments = replaceWithMerge(segments, i-1, i)
				progressed = true
				continue
			}
			// No legal merge target: keep as-is and move on.
			i++
		}
		if !progressed {
			break
		}
	}
	return segments
}

func combinedDuration(a, b TopicSegment) int64 {
	return b.EndMS - a.StartMS
}

func combinedDurationN(segs []TopicSegment) int64 {
	return segs[len(segs)-1].EndMS - segs[0].StartMS
}

// replaceWithMerge merges segments[lo..hi] (inclusive) into one segment.
func replaceWithMerge(segments []TopicSegment, lo, hi int) []TopicSegment {
	var merged []sentence.Sentence
	for i := lo; i <= hi; i++ {
		merged = append(merged, segments[i].Sentences...)
	}
	out := make([]TopicSegment, 0, len(segments)-(hi-lo))
	out = append(out, segments[:lo]...)
	out = append(out, newSegment(merged))
	out = append(out, segments[hi+1:]...)
	return out
}

// splitLong breaks over-duration segments at natural points, preferring a
// split near 0.75*max and forcing one by 0.9*max even without a natural
// point. Any resulting short tail is folded back into the previous piece.
func splitLong(segments []TopicSegment, opts Options) []TopicSegment {
	maxMS := opts.maxDurationMS()
	minMS := opts.minDurationMS()
	targetMS := int64(float64(maxMS) * splitTargetRatio)
	forceMS := int64(float64(maxMS) * forceSplitRatio)

	out := make([]TopicSegment, 0, len(segments))
	for _, seg := range segments {
		out = append(out, splitOne(seg, minMS, maxMS, targetMS, forceMS)...)
	}
	return out
}

func splitOne(seg TopicSegment, minMS, maxMS, targetMS, forceMS int64) []TopicSegment {
	if seg.DurationMS() <= maxMS {
		return []TopicSegment{seg}
	}

	sentences := seg.Sentences
	splitIdx := findSplitIndex(sentences, targetMS, forceMS)
	if splitIdx <= 0 || splitIdx >= len(sentences) {
		return []TopicSegment{seg}
	}

	head := newSegment(sentences[:splitIdx])
	tail := sentences[splitIdx:]

	var rest []TopicSegment
	if len(tail) > 0 {
		tailSeg := newSegment(tail)
		rest = splitOne(tailSeg, minMS, maxMS, targetMS, forceMS)
	}

	result := append([]TopicSegment{head}, rest...)
	return foldShortTail(result, minMS)
}

// findSplitIndex returns the sentence index (exclusive end of the head) at
// the best natural split point at or before targetMS, falling back to the
// first natural point at or before forceMS, finally forcing a split at
// forceMS with no natural-point requirement.
func findSplitIndex(sentences []sentence.Sentence, targetMS, forceMS int64) int {
	start := sentences[0].StartMS
	bestAtTarget := -1
	bestAtForce := -1
	forcedIdx := -1

	for i := 1; i < len(sentences); i++ {
		elapsed := sentences[i].StartMS - start
		natural := isNaturalSplitPoint(sentences, i)
		if elapsed <= targetMS && natural {
			bestAtTarget = i
		}
		if elapsed <= forceMS {
			if natural {
				bestAtForce = i
			}
			forcedIdx = i
		}
	}

	if bestAtTarget >= 0 {
		return bestAtTarget
	}
	if bestAtForce >= 0 {
		return bestAtForce
	}
	return forcedIdx
}

// isNaturalSplitPoint reports whether a boundary before sentences[i] is a
// natural one: speaker change, a silence gap > 2000ms, or the previous
// sentence ends with terminal punctuation.
func isNaturalSplitPoint(sentences []sentence.Sentence, i int) bool {
	prev := sentences[i-1]
	cur := sentences[i]
	if prev.Speaker != "" && cur.Speaker != "" && prev.Speaker != cur.Speaker {
		return true
	}
	if cur.StartMS-prev.EndMS > silenceGapMS {
		return true
	}
	return sentenceEndPunctuation.MatchString(strings.TrimSpace(prev.Text))
}

// foldShortTail merges a too-short final piece back into its predecessor.
func foldShortTail(segments []TopicSegment, minMS int64) []TopicSegment {
	if len(segments) < 2 {
		return segments
	}
	last := len(segments) - 1
	if segments[last].DurationMS() >= minMS {
		return segments
	}
	return replaceWithMerge(segments, last-1, last)
}
