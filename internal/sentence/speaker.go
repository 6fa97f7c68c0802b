package sentence

import (
	"math"
	"sort"

	"github.com/five82/clipreel/internal/transcript"
)

const (
	strongOverlapRatio   = 0.5
	moderateOverlapRatio = 0.3
	moderateWeighted     = 0.4
	singleCandidateRatio = 0.1
	nearestNeighborMaxS  = 5.0
	secondPassGapS       = 3.0
	commonSpeakerWindowS = 10.0
)

type candidate struct {
	speaker       string
	overlapS      float64
	sentenceRatio float64
	intervalRatio float64
	weighted      float64
	centerDistS   float64
}

// AttachSpeakers assigns a Speaker to each sentence using diarization
// intervals, applying the ordered decision rules from spec.md §4.1. Invalid
// intervals (non-monotonic or non-positive duration) are skipped. A second
// pass fills remaining unset sentences from neighbors or the locally common
// speaker.
func AttachSpeakers(sentences []Sentence, diarization *transcript.Diarization) []Sentence {
	if len(sentences) == 0 {
		return sentences
	}
	out := append([]Sentence(nil), sentences...)
	if diarization == nil || len(diarization.Segments) == 0 {
		return out
	}

	valid := make([]transcript.DiarizationSegment, 0, len(diarization.Segments))
	for _, seg := range diarization.Segments {
		if seg.Valid() {
			valid = append(valid, seg)
		}
	}
	if len(valid) == 0 {
		return out
	}

	for i := range out {
		out[i].Speaker = assignSpeaker(out[i], valid)
	}

	fillFromNeighbors(out)
	return out
}

func assignSpeaker(s Sentence, intervals []transcript.DiarizationSegment) string {
	sentStartS := float64(s.StartMS) / 1000
	sentEndS := float64(s.EndMS) / 1000
	sentDuration := sentEndS - sentStartS
	if sentDuration <= 0 {
		return ""
	}
	sentCenter := (sentStartS + sentEndS) / 2

	candidates := make([]candidate, 0, len(intervals))
	for _, iv := range intervals {
		overlapS := overlap(sentStartS, sentEndS, iv.StartS, iv.EndS)
		intervalDuration := iv.EndS - iv.StartS
		sentenceRatio := overlapS / sentDuration
		intervalRatio := 0.0
		if intervalDuration > 0 {
			intervalRatio = overlapS / intervalDuration
		}
		weighted := 0.7*sentenceRatio + 0.3*intervalRatio
		intervalCenter := (iv.StartS + iv.EndS) / 2
		candidates = append(candidates, candidate{
			speaker:       iv.Speaker,
			overlapS:      overlapS,
			sentenceRatio: sentenceRatio,
			intervalRatio: intervalRatio,
			weighted:      weighted,
			centerDistS:   math.Abs(sentCenter - intervalCenter),
		})
	}

	best := bestByRatio(candidates)

	// Rule 1: best sentence-overlap-ratio >= 0.5.
	if best.sentenceRatio >= strongOverlapRatio {
		return best.speaker
	}
	// Rule 2: ratio >= 0.3 and weighted >= 0.4.
	if best.sentenceRatio >= moderateOverlapRatio && best.weighted >= moderateWeighted {
		return best.speaker
	}

	withOverlap := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.overlapS > 0 && c.sentenceRatio >= singleCandidateRatio {
			withOverlap = append(withOverlap, c)
		}
	}
	// Rule 3: exactly one candidate with overlap >= 0.1.
	if len(withOverlap) == 1 {
		return withOverlap[0].speaker
	}
	// Rule 4: multiple candidates -> largest absolute overlap duration.
	if len(withOverlap) > 1 {
		sort.SliceStable(withOverlap, func(i, j int) bool { return withOverlap[i].overlapS > withOverlap[j].overlapS })
		return withOverlap[0].speaker
	}

	// Rule 5: nearest-neighbor by interval center, within 5s.
	nearest := bestByCenterDistance(candidates)
	if nearest.speaker != "" && nearest.centerDistS <= nearestNeighborMaxS {
		return nearest.speaker
	}

	// Rule 6: leave unset for the second pass.
	return ""
}

func bestByRatio(candidates []candidate) candidate {
	var best candidate
	for i, c := range candidates {
		if i == 0 || c.sentenceRatio > best.sentenceRatio {
			best = c
		}
	}
	return best
}

func bestByCenterDistance(candidates []candidate) candidate {
	var best candidate
	for i, c := range candidates {
		if i == 0 || c.centerDistS < best.centerDistS {
			best = c
		}
	}
	return best
}

func overlap(aStart, aEnd, bStart, bEnd float64) float64 {
	start := math.Max(aStart, bStart)
	end := math.Min(aEnd, bEnd)
	if end <= start {
		return 0
	}
	return end - start
}

// fillFromNeighbors implements spec.md §4.1 rule 6's second pass: use the
// previous or next sentence's speaker if the time gap is < 3s, otherwise the
// most common speaker within a +/-10s window.
func fillFromNeighbors(sentences []Sentence) {
	for i := range sentences {
		if sentences[i].Speaker != "" {
			continue
		}
		if prev := previousSpeaker(sentences, i); prev != "" {
			sentences[i].Speaker = prev
			continue
		}
		if next := nextSpeaker(sentences, i); next != "" {
			sentences[i].Speaker = next
			continue
		}
		sentences[i].Speaker = commonSpeakerInWindow(sentences, i)
	}
}

func previousSpeaker(sentences []Sentence, idx int) string {
	if idx == 0 {
		return ""
	}
	prev := sentences[idx-1]
	if prev.Speaker == "" {
		return ""
	}
	gapS := float64(sentences[idx].StartMS-prev.EndMS) / 1000
	if gapS < secondPassGapS {
		return prev.Speaker
	}
	return ""
}

func nextSpeaker(sentences []Sentence, idx int) string {
	if idx == len(sentences)-1 {
		return ""
	}
	next := sentences[idx+1]
	if next.Speaker == "" {
		return ""
	}
	gapS := float64(next.StartMS-sentences[idx].EndMS) / 1000
	if gapS < secondPassGapS {
		return next.Speaker
	}
	return ""
}

func commonSpeakerInWindow(sentences []Sentence, idx int) string {
	center := (sentences[idx].StartMS + sentences[idx].EndMS) / 2
	windowMS := int64(commonSpeakerWindowS * 1000)
	counts := make(map[string]int)
	for j, s := range sentences {
		if j == idx || s.Speaker == "" {
			continue
		}
		sCenter := (s.StartMS + s.EndMS) / 2
		if absInt64(sCenter-center) <= windowMS {
			counts[s.Speaker]++
		}
	}
	var best string
	var bestCount int
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > bestCount {
			best = k
			bestCount = counts[k]
		}
	}
	return best
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
