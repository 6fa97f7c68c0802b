// Package selector implements C5, the Clip Selector: duration-bucket
// matching, sub-clip window search, per-episode/per-bucket caps, and safe
// padding (spec.md §4.5).
package selector

import (
	"github.com/google/uuid"
)

// DurationBucket is a named clip-length target.
type DurationBucket struct {
	Name      string
	MinMS     int64
	MaxMS     int64
	OptimalMS int64
}

// Policy configures selection: duration buckets, aspect ratios, and the
// scoring/capacity thresholds from spec.md §4.5. A platform preset is just a
// different Policy value.
type Policy struct {
	Buckets            []DurationBucket
	AspectRatios       []string
	MinScoreThreshold  float64
	MaxClipsPerSegment int
	MaxClipsPerEpisode int
	SafePaddingMS      int64
}

// DefaultPolicy returns spec.md §4.5's default selection policy.
func DefaultPolicy() Policy {
	return Policy{
		Buckets: []DurationBucket{
			{Name: "short_hook", MinMS: 15000, MaxMS: 30000, OptimalMS: 20000},
			{Name: "standard", MinMS: 30000, MaxMS: 60000, OptimalMS: 45000},
			{Name: "long", MinMS: 60000, MaxMS: 120000, OptimalMS: 90000},
		},
		AspectRatios:       []string{"9x16", "16x9"},
		MinScoreThreshold:  0.3,
		MaxClipsPerSegment: 2,
		MaxClipsPerEpisode: 8,
		SafePaddingMS:      500,
	}
}

// SegmentBounds preserves a clip's pre-padding source bounds.
type SegmentBounds struct {
	StartMS int64
	EndMS   int64
}

// ClipSpec is a candidate short-form clip derived from a scored segment.
type ClipSpec struct {
	ID                  string
	BucketName          string
	AspectRatios        []string
	StartMS             int64
	EndMS               int64
	DurationMS          int64
	Score               float64
	SourceSegmentBounds SegmentBounds
	Sentences           []int // indices into the originating segment's Sentences, for metadata generation
}

func newClipID() string {
	return uuid.NewString()
}

// candidateWindow is an internal sub-clip search result before ranking.
type candidateWindow struct {
	startIdx int
	endIdx   int // exclusive
	score    float64
	startMS  int64
	endMS    int64
}
