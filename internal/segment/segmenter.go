package segment

import (
	"math"

	"github.com/five82/clipreel/internal/sentence"
)

const (
	minTargetSegments = 6
	maxTargetSegments = 20
	pelMinSize        = 2
	targetSecondsStep = 180.0
)

var primaryMultipliers = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0, 3.0}

// forceMoreMultipliers and forceFewerMultipliers are the widened search
// ranges spec.md §4.3 calls for when the primary pass produces too few or too
// many segments.
var forceMoreMultipliers = []float64{0.1, 0.2, 0.3, 0.4, 0.5}
var forceFewerMultipliers = []float64{2, 3, 4, 5, 6, 7, 8, 9, 10}

// Build detects topic boundaries over sentences using their embeddings, then
// enforces the min/max duration policy (spec.md §4.3). embeddings must align
// 1:1 with sentences; pass nil to force the uniform-partition fallback.
func Build(sentences []sentence.Sentence, embeddings [][]float32, opts Options) []TopicSegment {
	if len(sentences) == 0 {
		return nil
	}
	n := len(sentences)

	var boundaries []int
	if embeddings == nil || len(embeddings) != n || n < pelMinSize {
		boundaries = uniformBoundaries(n, targetSegmentCount(sentences))
	} else {
		boundaries = detectBoundaries(sentences, embeddings)
	}

	segments := segmentsFromBoundaries(sentences, boundaries)
	segments = enforceDurationPolicy(segments, opts)
	return segments
}

// targetSegmentCount implements clamp(round(total_duration_s / 180), 6, 20).
func targetSegmentCount(sentences []sentence.Sentence) int {
	totalS := float64(sentences[len(sentences)-1].EndMS-sentences[0].StartMS) / 1000
	target := int(math.Round(totalS / targetSecondsStep))
	if target < minTargetSegments {
		target = minTargetSegments
	}
	if target > maxTargetSegments {
		target = maxTargetSegments
	}
	return target
}

// detectBoundaries runs the fixed penalty-search order from spec.md §4.3:
// primary multipliers first (exact hit short-circuits, otherwise the closest
// to target), then force-more / force-fewer widened ranges, finally a
// uniform-partition fallback if nothing lands in [6,20].
func detectBoundaries(sentences []sentence.Sentence, embeddings [][]float32) []int {
	n := len(sentences)
	target := targetSegmentCount(sentences)

	dist := cosineDistanceMatrix(embeddings)
	kernel := kernelMatrix(dist)

	basePenalty := (float64(n) / float64(target)) * 2.0
	if n < 50 {
		basePenalty *= 0.5
	} else if n > 200 {
		basePenalty *= 1.5
	}

	best, bestDiff, found := searchMultipliers(kernel, basePenalty, target, primaryMultipliers)
	if found && bestDiff == 0 {
		return best
	}

	produced := 0
	if best != nil {
		produced = len(best)
	}

	if produced < minTargetSegments {
		if more, moreDiff, ok := searchMultipliers(kernel, basePenalty, target, forceMoreMultipliers); ok {
			if best == nil || moreDiff < bestDiff {
				best, bestDiff = more, moreDiff
			}
		}
	} else if produced > maxTargetSegments {
		if fewer, fewerDiff, ok := searchMultipliers(kernel, basePenalty, target, forceFewerMultipliers); ok {
			if best == nil || fewerDiff < bestDiff {
				best, bestDiff = fewer, fewerDiff
			}
		}
	}

	if best == nil || len(best) < minTargetSegments || len(best) > maxTargetSegments {
		return uniformBoundaries(n, target)
	}
	return best
}

// searchMultipliers tries each multiplier in order, tracking the run whose
// produced segment count is closest to target; ties keep the first (hence
// lowest-multiplier) result, preserving determinism.
func searchMultipliers(kernel [][]float64, basePenalty float64, target int, multipliers []float64) ([]int, int, bool) {
	var best []int
	bestDiff := math.MaxInt32
	found := false
	for _, mult := range multipliers {
		penalty := basePenalty * mult
		breaks := pelt(kernel, pelMinSize, penalty)
		diff := abs(len(breaks) - target)
		if !found || diff < bestDiff {
			best = breaks
			bestDiff = diff
			found = true
		}
		if diff == 0 {
			return best, 0, true
		}
	}
	return best, bestDiff, found
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// uniformBoundaries splits n items into target roughly-equal buckets.
func uniformBoundaries(n, target int) []int {
	if target < 1 {
		target = 1
	}
	if target > n {
		target = n
	}
	base := n / target
	remainder := n % target
	boundaries := make([]int, 0, target)
	pos := 0
	for i := 0; i < target; i++ {
		size := base
		if i < remainder {
			size++
		}
		pos += size
		boundaries = append(boundaries, pos)
	}
	return boundaries
}

func segmentsFromBoundaries(sentences []sentence.Sentence, boundaries []int) []TopicSegment {
	segments := make([]TopicSegment, 0, len(boundaries))
	start := 0
	for _, end := range boundaries {
		if end <= start {
			continue
		}
		segments = append(segments, newSegment(sentences[start:end]))
		start = end
	}
	return segments
}
