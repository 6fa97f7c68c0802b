package scoring

import (
	"testing"

	"github.com/five82/clipreel/internal/segment"
	"github.com/five82/clipreel/internal/sentence"
)

func seg(texts ...string) segment.TopicSegment {
	sentences := make([]sentence.Sentence, len(texts))
	var t int64
	for i, txt := range texts {
		sentences[i] = sentence.Sentence{Text: txt, StartMS: t, EndMS: t + 2000}
		t += 2500
	}
	return segment.TopicSegment{Sentences: sentences, StartMS: sentences[0].StartMS, EndMS: sentences[len(sentences)-1].EndMS}
}

func TestScoreHookDetectsImperativeAndNumeric(t *testing.T) {
	s := seg("You need to see these statistics show 90% improvement.")
	score := scoreHook(s)
	if score <= 0.5 {
		t.Errorf("expected strong hook score, got %f", score)
	}
}

func TestScoreHookNeutralText(t *testing.T) {
	s := seg("The weather today is mild with a light breeze.")
	score := scoreHook(s)
	if score > 0.2 {
		t.Errorf("expected low hook score for neutral text, got %f", score)
	}
}

func TestScoreCompressionStepFunction(t *testing.T) {
	short := seg("one two three four five")
	if got := scoreCompression(short); got != 0.6 {
		t.Errorf("expected 0.6 for <=50 words, got %f", got)
	}
}

func TestScoreQARewardsQuestionAnswerPair(t *testing.T) {
	s := seg("Why does this happen?", "The answer is simple: momentum.")
	score := scoreQA(s)
	if score <= 0 {
		t.Errorf("expected positive QA score for question/answer pair, got %f", score)
	}
}

func TestWeightedScoreClippedToUnitRange(t *testing.T) {
	signals := Signals{Hook: 1, Entity: 1, Sentiment: 1, QA: 1, Compression: 1}
	w := DefaultWeights()
	got := weightedScore(signals, w)
	if got > 1.0001 {
		t.Errorf("expected weighted score clipped to <=1, got %f", got)
	}
}
