// Package embedding implements C2, the Embedding Service: dense sentence
// embeddings with filesystem caching, a local-transformer-first strategy,
// and a deterministic TF-IDF+SVD fallback (spec.md §4.2).
package embedding

import "time"

// Vector is a single dense embedding.
type Vector []float32

// Matrix holds one embedding row per sentence, f32[n, d].
type Matrix struct {
	Rows [][]float32
	Dim  int
}

// CacheEntry is the persisted, validated unit stored under cache_dir, keyed
// on SHA-256 of (episode_id || model_name || concatenated sentence texts).
type CacheEntry struct {
	ModelName           string
	SentenceCount       int
	SampleSentenceTexts []string
	Embeddings          [][]float32
	GeneratedAt         time.Time
}
