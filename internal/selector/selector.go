package selector

import (
	"math"
	"sort"

	"github.com/five82/clipreel/internal/scoring"
)

// Select implements spec.md §4.5's algorithm: drop low-score segments, match
// or sub-clip-search each duration bucket independently, then merge, rank,
// cap, and safe-pad the final clip list.
func Select(scored []scoring.ScoredSegment, policy Policy) []ClipSpec {
	eligible := make([]scoring.ScoredSegment, 0, len(scored))
	for _, s := range scored {
		if s.FinalScore >= policy.MinScoreThreshold {
			eligible = append(eligible, s)
		}
	}

	var candidates []ClipSpec
	for _, bucket := range policy.Buckets {
		for _, s := range eligible {
			candidates = append(candidates, candidatesForBucket(s, bucket, policy)...)
		}
	}

	return finalizeSelection(candidates, policy)
}

// candidatesForBucket handles one (scored segment, bucket) pair: direct
// match, skip-if-shorter, or sub-clip search if longer.
func candidatesForBucket(s scoring.ScoredSegment, bucket DurationBucket, policy Policy) []ClipSpec {
	seg := s.Segment
	durationMS := seg.DurationMS()

	if durationMS >= bucket.MinMS && durationMS <= bucket.MaxMS {
		return []ClipSpec{clipFromWindow(s, bucket, policy, 0, len(seg.Sentences), s.FinalScore)}
	}
	if durationMS < bucket.MinMS {
		return nil
	}
	return subClipSearch(s, bucket, policy)
}

// subClipSearch enumerates contiguous sentence windows whose duration falls
// within the bucket, scores each by segment.final_score * (window/total)
// sentence-count ratio, and keeps the top max_clips_per_segment (capped at
// 2) by score.
func subClipSearch(s scoring.ScoredSegment, bucket DurationBucket, policy Policy) []ClipSpec {
	sentences := s.Segment.Sentences
	n := len(sentences)
	if n == 0 {
		return nil
	}

	var windows []candidateWindow
	for a := 0; a < n; a++ {
		for b := a + 1; b <= n; b++ {
			startMS := sentences[a].StartMS
			endMS := sentences[b-1].EndMS
			duration := endMS - startMS
			if duration < bucket.MinMS {
				continue
			}
			if duration > bucket.MaxMS {
				break // widening b only grows duration further
			}
			ratio := float64(b-a) / float64(n)
			windows = append(windows, candidateWindow{
				startIdx: a, endIdx: b,
				score:   s.FinalScore * ratio,
				startMS: startMS, endMS: endMS,
			})
		}
	}

	sort.SliceStable(windows, func(i, j int) bool { return windows[i].score > windows[j].score })

	limit := policy.MaxClipsPerSegment
	if limit <= 0 || limit > 2 {
		limit = 2
	}
	if limit > len(windows) {
		limit = len(windows)
	}

	out := make([]ClipSpec, 0, limit)
	for i := 0; i < limit; i++ {
		w := windows[i]
		out = append(out, clipFromWindow(s, bucket, policy, w.startIdx, w.endIdx, w.score))
	}
	return out
}

func clipFromWindow(s scoring.ScoredSegment, bucket DurationBucket, policy Policy, startIdx, endIdx int, score float64) ClipSpec {
	sentences := s.Segment.Sentences[startIdx:endIdx]
	startMS := sentences[0].StartMS
	endMS := sentences[len(sentences)-1].EndMS

	indices := make([]int, len(sentences))
	for i := range indices {
		indices[i] = startIdx + i
	}

	return ClipSpec{
		ID:           newClipID(),
		BucketName:   bucket.Name,
		AspectRatios: policy.AspectRatios,
		StartMS:      startMS,
		EndMS:        endMS,
		DurationMS:   endMS - startMS,
		Score:        score,
		SourceSegmentBounds: SegmentBounds{
			StartMS: s.Segment.StartMS,
			EndMS:   s.Segment.EndMS,
		},
		Sentences: indices,
	}
}

// finalizeSelection sorts all candidates by score descending (ties broken
// by start time ascending), applies the global max_clips_per_episode cap
// and a per-bucket fairness cap of ceil(max_clips_per_episode /
// bucket_count), then applies safe padding.
func finalizeSelection(candidates []ClipSpec, policy Policy) []ClipSpec {
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].StartMS < candidates[j].StartMS
	})

	bucketCount := len(policy.Buckets)
	if bucketCount == 0 {
		bucketCount = 1
	}
	perBucketCap := int(math.Ceil(float64(policy.MaxClipsPerEpisode) / float64(bucketCount)))

	episodeCap := policy.MaxClipsPerEpisode
	if episodeCap <= 0 {
		episodeCap = len(candidates)
	}

	bucketCounts := make(map[string]int)
	selected := make([]ClipSpec, 0, episodeCap)
	for _, c := range candidates {
		if len(selected) >= episodeCap {
			break
		}
		if perBucketCap > 0 && bucketCounts[c.BucketName] >= perBucketCap {
			continue
		}
		selected = append(selected, c)
		bucketCounts[c.BucketName]++
	}

	return applySafePadding(selected, policy.SafePaddingMS)
}

// applySafePadding widens each chosen clip by safe_padding_ms on both ends
// (clamped to >= 0 at the start), recomputing duration; the pre-padded
// segment bounds are preserved in SourceSegmentBounds already.
func applySafePadding(clips []ClipSpec, paddingMS int64) []ClipSpec {
	out := make([]ClipSpec, len(clips))
	for i, c := range clips {
		start := c.StartMS - paddingMS
		if start < 0 {
			start = 0
		}
		end := c.EndMS + paddingMS
		out[i] = c
		out[i].StartMS = start
		out[i].EndMS = end
		out[i].DurationMS = end - start
	}
	return out
}
