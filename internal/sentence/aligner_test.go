package sentence

import (
	"testing"

	"github.com/five82/clipreel/internal/transcript"
)

func word(t *testing.T, text string, start, end float64) transcript.Word {
	t.Helper()
	w, err := transcript.FromRaw(text, start, end, 0.9)
	if err != nil {
		t.Fatalf("FromRaw(%q): %v", text, err)
	}
	return w
}

func TestAlignSplitsOnStrongPunctuation(t *testing.T) {
	words := []transcript.Word{
		word(t, "Hello", 0, 0.5),
		word(t, "world.", 0.5, 1.0),
		word(t, "Second", 1.1, 1.5),
		word(t, "sentence.", 1.5, 2.0),
	}
	sentences := Align(words, Options{})
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(sentences))
	}
	if sentences[0].Text != "Hello world." {
		t.Errorf("unexpected first sentence text: %q", sentences[0].Text)
	}
	if sentences[0].EndMS <= sentences[0].StartMS {
		t.Errorf("sentence duration must be positive")
	}
}

func TestAlignSplitsOnLongGap(t *testing.T) {
	words := []transcript.Word{
		word(t, "First", 0, 0.5),
		word(t, "part", 0.5, 1.0),
		word(t, "Second", 4.0, 4.5), // 3s gap > 2200ms default
		word(t, "part", 4.5, 5.0),
	}
	sentences := Align(words, Options{})
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences from long gap split, got %d", len(sentences))
	}
}

func TestAlignEmptyInput(t *testing.T) {
	if got := Align(nil, Options{}); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestAlignIsGaplessAndNonOverlapping(t *testing.T) {
	words := []transcript.Word{
		word(t, "One.", 0, 0.4),
		word(t, "Two.", 0.5, 0.9),
		word(t, "Three.", 1.0, 1.4),
	}
	sentences := Align(words, Options{})
	for i := 1; i < len(sentences); i++ {
		if sentences[i].StartMS < sentences[i-1].EndMS {
			t.Fatalf("sentence %d overlaps previous", i)
		}
	}
}

func TestAttachSpeakersStrongOverlap(t *testing.T) {
	sentences := []Sentence{
		{StartMS: 0, EndMS: 10000},
		{StartMS: 140000, EndMS: 160000},
	}
	diar := &transcript.Diarization{Segments: []transcript.DiarizationSegment{
		{StartS: 0, EndS: 150, Speaker: "A"},
		{StartS: 150, EndS: 300, Speaker: "B"},
	}}
	out := AttachSpeakers(sentences, diar)
	if out[0].Speaker != "A" {
		t.Errorf("expected speaker A for fully-contained sentence, got %q", out[0].Speaker)
	}
}

func TestAttachSpeakersSkipsInvalidIntervals(t *testing.T) {
	sentences := []Sentence{{StartMS: 0, EndMS: 10000}}
	diar := &transcript.Diarization{Segments: []transcript.DiarizationSegment{
		{StartS: 5, EndS: 5, Speaker: "A"}, // zero duration, invalid
	}}
	out := AttachSpeakers(sentences, diar)
	if out[0].Speaker != "" {
		t.Errorf("expected no speaker assigned from invalid interval, got %q", out[0].Speaker)
	}
}

func TestAttachSpeakersNoOverlapBeyondRange(t *testing.T) {
	sentences := []Sentence{{StartMS: 0, EndMS: 1000}}
	diar := &transcript.Diarization{Segments: []transcript.DiarizationSegment{
		{StartS: 100, EndS: 120, Speaker: "A"},
	}}
	out := AttachSpeakers(sentences, diar)
	if out[0].Speaker != "" {
		t.Errorf("expected unset speaker for distant interval, got %q", out[0].Speaker)
	}
}
