package segment

import (
	"testing"

	"github.com/five82/clipreel/internal/sentence"
)

func makeSentences(n int, stepMS int64) []sentence.Sentence {
	out := make([]sentence.Sentence, n)
	var t int64
	for i := 0; i < n; i++ {
		out[i] = sentence.Sentence{StartMS: t, EndMS: t + stepMS - 100, Text: "sentence text here."}
		t += stepMS
	}
	return out
}

func TestBuildUniformFallbackWithoutEmbeddings(t *testing.T) {
	sentences := makeSentences(40, 3000)
	segments := Build(sentences, nil, Options{})
	if len(segments) == 0 {
		t.Fatal("expected at least one segment")
	}
	var total int
	for _, seg := range segments {
		total += len(seg.Sentences)
	}
	if total != len(sentences) {
		t.Errorf("expected all sentences covered, got %d of %d", total, len(sentences))
	}
}

func TestBuildRespectsMinDuration(t *testing.T) {
	sentences := makeSentences(60, 3000)
	segments := Build(sentences, nil, Options{MinDurationMS: 20000, MaxDurationMS: 120000})
	for i, seg := range segments {
		if i < len(segments)-1 && seg.DurationMS() < 20000 {
			t.Errorf("segment %d duration %d below minimum", i, seg.DurationMS())
		}
	}
}

func TestBuildSplitsOverlongSegments(t *testing.T) {
	sentences := makeSentences(100, 3000) // ~300s; the uniform fallback yields six ~50s segments
	segments := Build(sentences, nil, Options{MinDurationMS: 20000, MaxDurationMS: 60000})
	for i, seg := range segments {
		if seg.DurationMS() > 60000*2 { // allow some slack for forced splits without natural points
			t.Errorf("segment %d duration %d exceeds expected bound", i, seg.DurationMS())
		}
	}
}

func TestBuildEmptyInput(t *testing.T) {
	if got := Build(nil, nil, Options{}); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestUniformBoundariesCoversAllItems(t *testing.T) {
	boundaries := uniformBoundaries(17, 5)
	if boundaries[len(boundaries)-1] != 17 {
		t.Errorf("expected final boundary 17, got %d", boundaries[len(boundaries)-1])
	}
	prev := 0
	for _, b := range boundaries {
		if b <= prev {
			t.Fatalf("boundaries must be strictly increasing: %v", boundaries)
		}
		prev = b
	}
}

func TestPELTDetectsObviousBoundary(t *testing.T) {
	embeddings := make([][]float32, 20)
	for i := 0; i < 10; i++ {
		embeddings[i] = []float32{1, 0}
	}
	for i := 10; i < 20; i++ {
		embeddings[i] = []float32{0, 1}
	}
	kernel := kernelMatrix(cosineDistanceMatrix(embeddings))
	breaks := pelt(kernel, 2, 1.0)
	if len(breaks) == 0 {
		t.Fatal("expected at least one segment")
	}
	if breaks[len(breaks)-1] != 20 {
		t.Errorf("expected final breakpoint 20, got %d", breaks[len(breaks)-1])
	}
}
