// Package scoring implements C4, the Highlight Scorer: a weighted heuristic
// signal blend with an optional LLM re-rank pass over the top candidates
// (spec.md §4.4).
package scoring

import "github.com/five82/clipreel/internal/segment"

// Weights are the five heuristic signal weights, spec.md §4.4 defaults
// {hook 0.30, entity 0.20, sentiment 0.20, qa 0.20, compression 0.10}.
type Weights struct {
	Hook        float64
	Entity      float64
	Sentiment   float64
	QA          float64
	Compression float64
}

// DefaultWeights returns spec.md §4.4's default weight set.
func DefaultWeights() Weights {
	return Weights{Hook: 0.30, Entity: 0.20, Sentiment: 0.20, QA: 0.20, Compression: 0.10}
}

// Signals holds the five raw heuristic component scores, each in [0,1].
type Signals struct {
	Hook        float64
	Entity      float64
	Sentiment   float64
	QA          float64
	Compression float64
}

// ScoredSegment pairs a TopicSegment with its heuristic/LLM/final scores.
type ScoredSegment struct {
	Segment       segment.TopicSegment
	Signals       Signals
	HeuristicScore float64
	LLMScore      *float64
	FinalScore    float64
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
