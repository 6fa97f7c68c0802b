package segment

import (
	"testing"

	"github.com/five82/clipreel/internal/sentence"
)

// spanSentences builds contiguous sentences covering [startMS, endMS) in
// stepMS increments, all attributed to speaker.
func spanSentences(startMS, endMS, stepMS int64, speaker string) []sentence.Sentence {
	var out []sentence.Sentence
	for t := startMS; t < endMS; t += stepMS {
		end := t + stepMS
		if end > endMS {
			end = endMS
		}
		out = append(out, sentence.Sentence{
			Text:    "speech continues without pause",
			StartMS: t,
			EndMS:   end,
			Speaker: speaker,
		})
	}
	return out
}

func TestMergeShortFoldsForwardIntoNextSegment(t *testing.T) {
	opts := Options{MinDurationMS: 20000, MaxDurationMS: 120000}
	segments := []TopicSegment{
		newSegment(spanSentences(0, 12000, 4000, "")),
		newSegment(spanSentences(12000, 52000, 4000, "")),
	}

	merged := mergeShort(segments, opts)
	if len(merged) != 1 {
		t.Fatalf("expected one merged segment, got %d", len(merged))
	}
	if merged[0].StartMS != 0 || merged[0].EndMS != 52000 {
		t.Errorf("merged bounds [%d, %d], want [0, 52000]", merged[0].StartMS, merged[0].EndMS)
	}
}

func TestMergeShortPrefersNextOverPrevious(t *testing.T) {
	opts := Options{MinDurationMS: 20000, MaxDurationMS: 60000}
	segments := []TopicSegment{
		newSegment(spanSentences(0, 55000, 5000, "")),
		newSegment(spanSentences(55000, 65000, 5000, "")),
		newSegment(spanSentences(65000, 100000, 5000, "")),
	}

	merged := mergeShort(segments, opts)
	// The 10s middle segment merges forward into the 35s follower (45s
	// combined, within max); merging backward would overrun 60s.
	if len(merged) != 2 {
		t.Fatalf("expected two segments, got %d", len(merged))
	}
	if merged[0].EndMS != 55000 {
		t.Errorf("first segment end %d, want 55000 (untouched)", merged[0].EndMS)
	}
	if merged[1].StartMS != 55000 || merged[1].EndMS != 100000 {
		t.Errorf("second segment [%d, %d], want [55000, 100000]", merged[1].StartMS, merged[1].EndMS)
	}
}

func TestSplitLongAtSpeakerChange(t *testing.T) {
	opts := Options{MinDurationMS: 20000, MaxDurationMS: 120000}
	sentences := append(
		spanSentences(0, 95000, 5000, "A"),
		spanSentences(95000, 200000, 5000, "B")...,
	)
	segments := splitLong([]TopicSegment{newSegment(sentences)}, opts)

	if len(segments) != 2 {
		t.Fatalf("expected two segments after split, got %d", len(segments))
	}
	if segments[0].EndMS != 95000 || segments[1].StartMS != 95000 {
		t.Errorf("split at [%d, %d], want the 95s speaker change", segments[0].EndMS, segments[1].StartMS)
	}
	for i, seg := range segments {
		if seg.DurationMS() < 20000 {
			t.Errorf("segment %d duration %d below minimum", i, seg.DurationMS())
		}
	}
}

func TestSplitOneFoldsShortTailBack(t *testing.T) {
	opts := Options{MinDurationMS: 20000, MaxDurationMS: 120000}
	// 126s with no natural break: the forced split at 108s leaves an 18s
	// tail, which is under the minimum and folds back, so the segment stays
	// whole.
	sentences := spanSentences(0, 126000, 6000, "")

	segments := splitLong([]TopicSegment{newSegment(sentences)}, opts)
	if len(segments) != 1 {
		t.Fatalf("expected tail folded back into one segment, got %d", len(segments))
	}
	if segments[0].StartMS != 0 || segments[0].EndMS != 126000 {
		t.Errorf("segment bounds [%d, %d], want [0, 126000]", segments[0].StartMS, segments[0].EndMS)
	}
}
