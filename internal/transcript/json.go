package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// jsonWord mirrors the duck-typed word shape transcription tools emit: the
// token under either "text" or "word", confidence under either "probability"
// or "confidence".
type jsonWord struct {
	Text        string   `json:"text"`
	Word        string   `json:"word"`
	Start       *float64 `json:"start"`
	End         *float64 `json:"end"`
	Probability *float64 `json:"probability"`
	Confidence  *float64 `json:"confidence"`
}

type jsonSegment struct {
	Start float64    `json:"start"`
	End   float64    `json:"end"`
	Text  string     `json:"text"`
	Words []jsonWord `json:"words"`
}

type jsonDiarizationSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

type jsonDiarization struct {
	Segments []jsonDiarizationSegment `json:"segments"`
}

type jsonTranscript struct {
	Text        string           `json:"text"`
	Words       []jsonWord       `json:"words"`
	Segments    []jsonSegment    `json:"segments"`
	Diarization *jsonDiarization `json:"diarization"`
}

// Decode parses a transcript JSON document (spec.md §6's input contract)
// into the validated Transcript struct the pipeline consumes.
func Decode(r io.Reader) (Transcript, error) {
	var raw jsonTranscript
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&raw); err != nil {
		return Transcript{}, fmt.Errorf("decode transcript: %w", err)
	}
	return fromJSON(raw), nil
}

// LoadFile reads and decodes a transcript JSON file.
func LoadFile(path string) (Transcript, error) {
	file, err := os.Open(path)
	if err != nil {
		return Transcript{}, fmt.Errorf("open transcript: %w", err)
	}
	defer file.Close()
	return Decode(file)
}

func fromJSON(raw jsonTranscript) Transcript {
	t := Transcript{Text: raw.Text}

	for _, w := range raw.Words {
		t.Words = append(t.Words, rawWordFromJSON(w))
	}
	for _, seg := range raw.Segments {
		rs := RawSegment{StartS: seg.Start, EndS: seg.End, Text: seg.Text}
		for _, w := range seg.Words {
			rs.Words = append(rs.Words, rawWordFromJSON(w))
		}
		t.Segments = append(t.Segments, rs)
	}
	if raw.Diarization != nil {
		d := &Diarization{}
		for _, seg := range raw.Diarization.Segments {
			d.Segments = append(d.Segments, DiarizationSegment{
				StartS:  seg.Start,
				EndS:    seg.End,
				Speaker: seg.Speaker,
			})
		}
		t.Diarization = d
	}
	return t
}

func rawWordFromJSON(w jsonWord) RawWord {
	text := w.Text
	if text == "" {
		text = w.Word
	}
	return RawWord{
		Text:        text,
		StartS:      w.Start,
		EndS:        w.End,
		Confidence:  w.Confidence,
		Probability: w.Probability,
	}
}
