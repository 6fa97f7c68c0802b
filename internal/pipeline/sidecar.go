package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// sidecarClip is one clip row in the JSON sidecar, spec.md §6's persisted
// output shape. Status is always "pending" at discovery time; the renderer
// advances it later through the database.
type sidecarClip struct {
	ID         string    `json:"id"`
	EpisodeID  string    `json:"episode_id"`
	StartMS    int64     `json:"start_ms"`
	EndMS      int64     `json:"end_ms"`
	DurationMS int64     `json:"duration_ms"`
	Score      float64   `json:"score"`
	Title      string    `json:"title"`
	Caption    string    `json:"caption"`
	Hashtags   []string  `json:"hashtags"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// Sidecar is the per-episode JSON document written to
// data/meta/{episode_id}_clips.json.
type Sidecar struct {
	EpisodeID   string        `json:"episode_id"`
	ClipsCount  int           `json:"clips_count"`
	Clips       []sidecarClip `json:"clips"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// SidecarPath returns where the clip sidecar for an episode lives under
// dataDir.
func SidecarPath(dataDir, episodeID string) string {
	return filepath.Join(dataDir, "meta", episodeID+"_clips.json")
}

func statsPath(dataDir, episodeID string) string {
	return filepath.Join(dataDir, "meta", episodeID+"_stats.json")
}

func buildSidecar(episodeID string, clips []Clip, now time.Time) Sidecar {
	doc := Sidecar{
		EpisodeID:   episodeID,
		ClipsCount:  len(clips),
		Clips:       make([]sidecarClip, 0, len(clips)),
		GeneratedAt: now,
	}
	for _, c := range clips {
		hashtags := c.Hashtags
		if hashtags == nil {
			hashtags = []string{}
		}
		doc.Clips = append(doc.Clips, sidecarClip{
			ID:         c.ID,
			EpisodeID:  c.EpisodeID,
			StartMS:    c.StartMS,
			EndMS:      c.EndMS,
			DurationMS: c.DurationMS,
			Score:      c.Score,
			Title:      c.Title,
			Caption:    c.Caption,
			Hashtags:   hashtags,
			Status:     "pending",
			CreatedAt:  now,
		})
	}
	return doc
}

// writeJSONFile marshals doc and writes it via a temp-file rename so a
// crashed run never leaves a truncated sidecar behind.
func writeJSONFile(path string, doc any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create meta directory: %w", err)
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}
	payload = append(payload, '\n')

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp sidecar: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write sidecar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close sidecar: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("finalize sidecar: %w", err)
	}
	return nil
}
