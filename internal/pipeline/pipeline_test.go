package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/clipreel/internal/config"
	"github.com/five82/clipreel/internal/logging"
	"github.com/five82/clipreel/internal/transcript"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = dir
	cfg.CacheDir = filepath.Join(dir, "cache", "embeddings")
	cfg.ModelDir = filepath.Join(dir, "models")
	cfg.LogDir = filepath.Join(dir, "logs")
	cfg.LLMEnabled = false
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// syntheticTranscript builds a word-timed transcript covering durationS
// seconds: one word per second, a repeating 27-word cycle whose sentences
// end every three to seven words, and 3s pauses at the listed offsets.
func syntheticTranscript(durationS int, pausesAt ...int) transcript.Transcript {
	pauses := make(map[int]bool, len(pausesAt))
	for _, p := range pausesAt {
		pauses[p] = true
	}

	cycle := []string{
		"Here's", "what", "nobody", "tells", "you", "about", "Apple.",
		"Statistics", "show", "75%", "growth", "every", "single", "year.",
		"Why", "did", "markets", "crash?",
		"Because", "the", "truth", "is", "incredibly", "simple.",
		"Sarah", "explained", "everything.",
	}
	var words []transcript.RawWord
	offset := 0.0
	for i := 0; i < durationS; i++ {
		text := cycle[i%len(cycle)]
		start := float64(i) + offset
		end := start + 0.9
		conf := 0.95
		words = append(words, transcript.RawWord{
			Text:       text,
			StartS:     &start,
			EndS:       &end,
			Confidence: &conf,
		})
		if pauses[i] {
			offset += 3.0
		}
	}
	return transcript.Transcript{Words: words}
}

func TestDiscoverHappyPathWithoutLLM(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, logging.New("console", "error"), nil)
	defer p.Close()

	tr := syntheticTranscript(600, 120, 240)
	clips, err := p.Discover(context.Background(), "ep-happy", tr, Options{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(clips) == 0 {
		t.Fatal("expected at least one clip")
	}
	if len(clips) > cfg.MaxClipsPerEpisode {
		t.Fatalf("expected at most %d clips, got %d", cfg.MaxClipsPerEpisode, len(clips))
	}

	for i, c := range clips {
		if c.StartMS < 0 || c.StartMS >= c.EndMS {
			t.Errorf("clip %d: invalid bounds [%d, %d]", i, c.StartMS, c.EndMS)
		}
		if c.DurationMS != c.EndMS-c.StartMS {
			t.Errorf("clip %d: duration %d != end-start %d", i, c.DurationMS, c.EndMS-c.StartMS)
		}
		if c.Score < 0 || c.Score > 1 {
			t.Errorf("clip %d: score %f out of range", i, c.Score)
		}
		if c.ID == "" {
			t.Errorf("clip %d: missing id", i)
		}
		if c.EpisodeID != "ep-happy" {
			t.Errorf("clip %d: wrong episode id %q", i, c.EpisodeID)
		}
		if got := len([]rune(c.Title)); got > cfg.MaxTitleLength {
			t.Errorf("clip %d: title length %d exceeds %d", i, got, cfg.MaxTitleLength)
		}
		if len(c.Hashtags) > cfg.MaxHashtags {
			t.Errorf("clip %d: %d hashtags exceeds %d", i, len(c.Hashtags), cfg.MaxHashtags)
		}
		for _, ratio := range c.AspectRatios {
			switch ratio {
			case "9x16", "16x9", "1x1":
			default:
				t.Errorf("clip %d: unexpected aspect ratio %q", i, ratio)
			}
		}
	}

	sidecarFile := SidecarPath(cfg.DataDir, "ep-happy")
	payload, err := os.ReadFile(sidecarFile)
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	var doc Sidecar
	if err := json.Unmarshal(payload, &doc); err != nil {
		t.Fatalf("unmarshal sidecar: %v", err)
	}
	if doc.EpisodeID != "ep-happy" {
		t.Errorf("sidecar episode id %q", doc.EpisodeID)
	}
	if doc.ClipsCount != len(clips) {
		t.Errorf("sidecar clips_count %d != %d", doc.ClipsCount, len(clips))
	}
	for _, c := range doc.Clips {
		if c.Status != "pending" {
			t.Errorf("sidecar clip status %q, want pending", c.Status)
		}
	}
}

func TestDiscoverEmptyTranscriptWritesNoSidecar(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, logging.New("console", "error"), nil)
	defer p.Close()

	clips, err := p.Discover(context.Background(), "ep-empty", transcript.Transcript{}, Options{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if clips != nil {
		t.Fatalf("expected nil clips, got %d", len(clips))
	}
	if _, statErr := os.Stat(SidecarPath(cfg.DataDir, "ep-empty")); !os.IsNotExist(statErr) {
		t.Error("expected no sidecar for empty transcript")
	}
}

func TestDiscoverShortEpisodeWritesEmptySidecar(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, logging.New("console", "error"), nil)
	defer p.Close()

	// 10s of speech: one whole-episode segment, too short for any bucket.
	tr := syntheticTranscript(10)
	clips, err := p.Discover(context.Background(), "ep-short", tr, Options{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(clips) != 0 {
		t.Fatalf("expected no clips for a 10s episode, got %d", len(clips))
	}

	payload, err := os.ReadFile(SidecarPath(cfg.DataDir, "ep-short"))
	if err != nil {
		t.Fatalf("expected empty-success sidecar: %v", err)
	}
	var doc Sidecar
	if err := json.Unmarshal(payload, &doc); err != nil {
		t.Fatalf("unmarshal sidecar: %v", err)
	}
	if doc.ClipsCount != 0 {
		t.Errorf("expected clips_count 0, got %d", doc.ClipsCount)
	}
}

func TestDiscoverDeterministicWithoutLLM(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, logging.New("console", "error"), nil)
	defer p.Close()

	tr := syntheticTranscript(600, 120, 240)
	first, err := p.Discover(context.Background(), "ep-det", tr, Options{})
	if err != nil {
		t.Fatalf("first Discover: %v", err)
	}
	second, err := p.Discover(context.Background(), "ep-det", tr, Options{})
	if err != nil {
		t.Fatalf("second Discover: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("clip counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.StartMS != b.StartMS || a.EndMS != b.EndMS {
			t.Errorf("clip %d bounds differ: [%d,%d] vs [%d,%d]", i, a.StartMS, a.EndMS, b.StartMS, b.EndMS)
		}
		if a.Score != b.Score {
			t.Errorf("clip %d scores differ: %f vs %f", i, a.Score, b.Score)
		}
		if a.Title != b.Title || a.Caption != b.Caption {
			t.Errorf("clip %d metadata differs", i)
		}
		if fmt.Sprint(a.Hashtags) != fmt.Sprint(b.Hashtags) {
			t.Errorf("clip %d hashtags differ", i)
		}
	}
}

func TestDiscoverPlatformOverride(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, logging.New("console", "error"), nil)
	defer p.Close()

	tr := syntheticTranscript(600, 120, 240)
	clips, err := p.Discover(context.Background(), "ep-tiktok", tr, Options{Platform: "tiktok"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(clips) > 6 {
		t.Fatalf("tiktok preset caps at 6 clips, got %d", len(clips))
	}
	for i, c := range clips {
		if len(c.AspectRatios) != 1 || c.AspectRatios[0] != "9x16" {
			t.Errorf("clip %d: tiktok preset should force 9x16, got %v", i, c.AspectRatios)
		}
	}
}

func TestPolicyOverrides(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, logging.New("console", "error"), nil)
	defer p.Close()

	policy := p.policy(Options{MaxClips: 3, ScoreThreshold: 0.5, AspectRatios: []string{"1x1"}})
	if policy.MaxClipsPerEpisode != 3 {
		t.Errorf("MaxClipsPerEpisode = %d, want 3", policy.MaxClipsPerEpisode)
	}
	if policy.MinScoreThreshold != 0.5 {
		t.Errorf("MinScoreThreshold = %f, want 0.5", policy.MinScoreThreshold)
	}
	if len(policy.AspectRatios) != 1 || policy.AspectRatios[0] != "1x1" {
		t.Errorf("AspectRatios = %v, want [1x1]", policy.AspectRatios)
	}
}

func TestPlatformPolicyNameAliases(t *testing.T) {
	cases := []struct {
		name       string
		wantRatios []string
	}{
		{"instagram_reels", []string{"9x16"}},
		{"youtube_shorts", []string{"9x16"}},
		{"linkedin", []string{"16x9"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			policy := platformPolicy(tc.name)
			if len(policy.AspectRatios) != len(tc.wantRatios) {
				t.Fatalf("AspectRatios = %v, want %v", policy.AspectRatios, tc.wantRatios)
			}
			for i := range tc.wantRatios {
				if policy.AspectRatios[i] != tc.wantRatios[i] {
					t.Errorf("AspectRatios = %v, want %v", policy.AspectRatios, tc.wantRatios)
				}
			}
		})
	}
}
