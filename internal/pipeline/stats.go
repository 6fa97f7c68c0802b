package pipeline

import "time"

// Stats is a lightweight per-run counter bundle, adapted from the original
// Python implementation's analytics_tracker.py: not full analytics (spec.md
// §1's Non-goals exclude that), just the counts the pipeline already
// computes, persisted alongside the clip sidecar for later inspection.
type Stats struct {
	EpisodeID       string                   `json:"episode_id"`
	SentenceCount   int                      `json:"sentence_count"`
	SegmentCount    int                      `json:"segment_count"`
	ScoredCount     int                      `json:"scored_count"`
	ClipCount       int                      `json:"clip_count"`
	StageDurationsMS map[string]int64        `json:"stage_durations_ms"`
	FallbackPaths   []string                 `json:"fallback_paths,omitempty"`
	GeneratedAt     time.Time                `json:"generated_at"`
}

func newStats(episodeID string) *Stats {
	return &Stats{
		EpisodeID:        episodeID,
		StageDurationsMS: make(map[string]int64),
	}
}

func (s *Stats) recordStage(name string, d time.Duration) {
	if s == nil {
		return
	}
	s.StageDurationsMS[name] = d.Milliseconds()
}

func (s *Stats) noteFallback(path string) {
	if s == nil {
		return
	}
	s.FallbackPaths = append(s.FallbackPaths, path)
}
