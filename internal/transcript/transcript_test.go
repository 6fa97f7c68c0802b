package transcript

import (
	"strings"
	"testing"
)

func TestDecodeWordLevelTranscript(t *testing.T) {
	payload := `{
		"text": "hello world",
		"words": [
			{"word": "hello", "start": 0.0, "end": 0.5, "probability": 0.9},
			{"text": "world", "start": 0.6, "end": 1.0, "confidence": 0.8}
		],
		"diarization": {"segments": [{"start": 0, "end": 1, "speaker": "A"}]}
	}`

	tr, err := Decode(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	words := Words(tr)
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if words[0].Text != "hello" || words[0].Confidence != 0.9 {
		t.Errorf("first word = %+v", words[0])
	}
	if words[1].Text != "world" || words[1].Confidence != 0.8 {
		t.Errorf("second word = %+v", words[1])
	}
	if tr.Diarization == nil || len(tr.Diarization.Segments) != 1 {
		t.Fatal("expected one diarization segment")
	}
	if tr.Diarization.Segments[0].Speaker != "A" {
		t.Errorf("speaker = %q", tr.Diarization.Segments[0].Speaker)
	}
}

func TestWordsSynthesizesTimingFromSegments(t *testing.T) {
	tr := Transcript{
		Segments: []RawSegment{
			{StartS: 0, EndS: 4, Text: "four words in here"},
		},
	}
	words := Words(tr)
	if len(words) != 4 {
		t.Fatalf("expected 4 words, got %d", len(words))
	}
	for i, w := range words {
		if w.Confidence != 0.5 {
			t.Errorf("word %d: synthesized confidence = %f, want 0.5", i, w.Confidence)
		}
		if w.EndS-w.StartS != 1.0 {
			t.Errorf("word %d: span %f, want uniform 1s", i, w.EndS-w.StartS)
		}
	}
	if words[3].EndS != 4.0 {
		t.Errorf("last word ends at %f, want 4.0", words[3].EndS)
	}
}

func TestCleanDropsFillerAndEmptyTokens(t *testing.T) {
	words := []Word{
		{Text: "um,", StartS: 0, EndS: 1},
		{Text: "  actual  ", StartS: 1, EndS: 2},
		{Text: "Uhh", StartS: 2, EndS: 3},
		{Text: "content.", StartS: 3, EndS: 4},
	}
	cleaned := Clean(words)
	if len(cleaned) != 2 {
		t.Fatalf("expected 2 words after cleaning, got %d", len(cleaned))
	}
	if cleaned[0].Text != "actual" || cleaned[1].Text != "content." {
		t.Errorf("cleaned = %v", cleaned)
	}
}

func TestFromRawRejectsInvalidWords(t *testing.T) {
	if _, err := FromRaw("", 0, 1, 1); err == nil {
		t.Error("expected error for empty text")
	}
	if _, err := FromRaw("word", 2, 1, 1); err == nil {
		t.Error("expected error for end before start")
	}
}
