package scoring

import (
	"context"
	"fmt"
	"sort"

	"github.com/five82/clipreel/internal/segment"
	"github.com/five82/clipreel/internal/services/llm"
)

const defaultRerankTopK = 10

// Gate limits concurrent access to the LLM slot; implemented by
// internal/resourcegate.
type Gate interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// Generator issues a single scalar-score completion request.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts llm.GenerationOptions) (string, error)
}

// Scorer computes heuristic scores for every segment and, when an LLM
// generator is configured, re-ranks the top-K by heuristic score.
type Scorer struct {
	Weights    Weights
	LLM        Generator
	Gate       Gate
	RerankTopK int
}

// NewScorer builds a Scorer. llmGen and gate may both be nil to disable the
// re-rank pass entirely (heuristic-only mode).
func NewScorer(weights Weights, llmGen Generator, gate Gate, rerankTopK int) *Scorer {
	if rerankTopK <= 0 {
		rerankTopK = defaultRerankTopK
	}
	return &Scorer{Weights: weights, LLM: llmGen, Gate: gate, RerankTopK: rerankTopK}
}

// Score computes heuristic (and, if enabled, LLM-reranked) scores for every
// segment, returning them sorted by FinalScore descending. LLM failures
// never fail the call; they simply leave the heuristic score in place
// (spec.md §4.4).
func (s *Scorer) Score(ctx context.Context, segments []segment.TopicSegment) []ScoredSegment {
	scored := make([]ScoredSegment, len(segments))
	for i, seg := range segments {
		signals := computeSignals(seg)
		heuristic := weightedScore(signals, s.Weights)
		scored[i] = ScoredSegment{
			Segment:        seg,
			Signals:        signals,
			HeuristicScore: heuristic,
			FinalScore:     heuristic,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].HeuristicScore > scored[j].HeuristicScore })

	if s.LLM != nil {
		s.rerank(ctx, scored)
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].FinalScore > scored[j].FinalScore })
	return scored
}

// rerank requests an LLM scalar score for the top-K heuristic candidates
// (scored is already heuristic-sorted descending) and blends per spec.md
// §4.4: final = 0.6*llm + 0.4*heuristic when an LLM score was obtained.
func (s *Scorer) rerank(ctx context.Context, scored []ScoredSegment) {
	k := s.RerankTopK
	if k > len(scored) {
		k = len(scored)
	}
	for i := 0; i < k; i++ {
		llmScore, ok := s.requestScore(ctx, scored[i].Segment)
		if !ok {
			continue
		}
		scored[i].LLMScore = &llmScore
		scored[i].FinalScore = clip01(0.6*llmScore + 0.4*scored[i].HeuristicScore)
	}
}

func (s *Scorer) requestScore(ctx context.Context, seg segment.TopicSegment) (float64, bool) {
	if s.Gate != nil {
		release, err := s.Gate.Acquire(ctx)
		if err != nil {
			return 0, false
		}
		defer release()
	}

	prompt := buildScorePrompt(segmentText(seg))
	response, err := s.LLM.Generate(ctx, prompt, llm.GenerationOptions{Temperature: 0.1, MaxTokens: 16})
	if err != nil {
		return 0, false
	}
	return llm.ParseScalarScore(response)
}

func buildScorePrompt(text string) string {
	return fmt.Sprintf(
		"Rate how compelling this transcript excerpt would be as a short-form social video clip, on a scale from 0 to 1. Respond with only the number.\n\n%s",
		text,
	)
}
