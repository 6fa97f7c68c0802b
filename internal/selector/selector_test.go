package selector

import (
	"testing"

	"github.com/five82/clipreel/internal/scoring"
	"github.com/five82/clipreel/internal/segment"
	"github.com/five82/clipreel/internal/sentence"
)

func makeScored(finalScore float64, sentenceDurMS int64, count int) scoring.ScoredSegment {
	sentences := make([]sentence.Sentence, count)
	var t int64
	for i := 0; i < count; i++ {
		sentences[i] = sentence.Sentence{StartMS: t, EndMS: t + sentenceDurMS}
		t += sentenceDurMS
	}
	seg := segment.TopicSegment{Sentences: sentences, StartMS: sentences[0].StartMS, EndMS: sentences[len(sentences)-1].EndMS}
	return scoring.ScoredSegment{Segment: seg, FinalScore: finalScore}
}

func TestSelectDropsLowScoreSegments(t *testing.T) {
	policy := DefaultPolicy()
	low := makeScored(0.1, 5000, 4) // 20s, below threshold regardless of fit
	clips := Select([]scoring.ScoredSegment{low}, policy)
	if len(clips) != 0 {
		t.Errorf("expected no clips from below-threshold segment, got %d", len(clips))
	}
}

func TestSelectDirectBucketMatch(t *testing.T) {
	policy := DefaultPolicy()
	// 8 sentences * 2500ms = 20000ms, fits short_hook [15000,30000].
	s := makeScored(0.8, 2500, 8)
	clips := Select([]scoring.ScoredSegment{s}, policy)
	if len(clips) == 0 {
		t.Fatal("expected at least one clip from direct bucket match")
	}
	found := false
	for _, c := range clips {
		if c.BucketName == "short_hook" {
			found = true
		}
	}
	if !found {
		t.Error("expected a short_hook bucket clip")
	}
}

func TestSelectSubClipSearchOnLongSegment(t *testing.T) {
	policy := DefaultPolicy()
	// 60 sentences * 3000ms = 180000ms, longer than every bucket's max.
	s := makeScored(0.9, 3000, 60)
	clips := Select([]scoring.ScoredSegment{s}, policy)
	if len(clips) == 0 {
		t.Fatal("expected sub-clip search to produce candidates")
	}
	for _, c := range clips {
		if c.DurationMS < 15000-1000 { // padding may widen slightly
			t.Errorf("clip duration %d too short for any bucket", c.DurationMS)
		}
	}
}

func TestSelectRespectsEpisodeCap(t *testing.T) {
	policy := DefaultPolicy()
	policy.MaxClipsPerEpisode = 3
	var scored []scoring.ScoredSegment
	for i := 0; i < 10; i++ {
		scored = append(scored, makeScored(0.5+float64(i)*0.01, 2500, 8))
	}
	clips := Select(scored, policy)
	if len(clips) > 3 {
		t.Errorf("expected at most 3 clips, got %d", len(clips))
	}
}

func TestSafePaddingWidensClip(t *testing.T) {
	policy := DefaultPolicy()
	s := makeScored(0.8, 2500, 8)
	clips := Select([]scoring.ScoredSegment{s}, policy)
	if len(clips) == 0 {
		t.Fatal("expected a clip")
	}
	c := clips[0]
	if c.StartMS > c.SourceSegmentBounds.StartMS {
		t.Errorf("expected padded start <= source bounds start, got %d > %d", c.StartMS, c.SourceSegmentBounds.StartMS)
	}
	if c.EndMS < c.SourceSegmentBounds.EndMS {
		t.Errorf("expected padded end >= source bounds end, got %d < %d", c.EndMS, c.SourceSegmentBounds.EndMS)
	}
}

func TestPlatformPresetOverridesAspectRatios(t *testing.T) {
	p := PlatformPreset(PlatformTikTok)
	if len(p.AspectRatios) != 1 || p.AspectRatios[0] != "9x16" {
		t.Errorf("expected tiktok preset to restrict to 9x16, got %v", p.AspectRatios)
	}
}

func TestPlatformPresetUnknownFallsBackToDefault(t *testing.T) {
	p := PlatformPreset("not-a-real-platform")
	d := DefaultPolicy()
	if len(p.Buckets) != len(d.Buckets) {
		t.Errorf("expected unknown preset to fall back to default buckets")
	}
}
