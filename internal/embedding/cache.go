package embedding

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const sampleTextLimit = 10

// cacheKey returns the SHA-256 hex digest of episode_id || ":" || model_name
// || ":" || joined sentence texts, per spec.md §4.2.
func cacheKey(episodeID, modelName string, sentenceTexts []string) string {
	joined := strings.Join(sentenceTexts, "␟")
	sum := sha256.Sum256([]byte(episodeID + ":" + modelName + ":" + joined))
	return hex.EncodeToString(sum[:])
}

func cachePath(cacheDir, episodeID, key string) string {
	key16 := key
	if len(key16) > 16 {
		key16 = key16[:16]
	}
	return filepath.Join(cacheDir, fmt.Sprintf("%s_%s.cache", episodeID, key16))
}

// loadCache attempts to load and validate a cache entry for the given
// episode/model/sentence set. A cache miss or validation failure returns
// (nil, false) so the caller regenerates; I/O errors are also treated
// as a miss (cache reads are best-effort).
func loadCache(cacheDir, episodeID, modelName string, sentenceTexts []string) (*CacheEntry, bool) {
	key := cacheKey(episodeID, modelName, sentenceTexts)
	path := cachePath(cacheDir, episodeID, key)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry CacheEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry); err != nil {
		return nil, false
	}

	if !validateCache(entry, modelName, sentenceTexts) {
		return nil, false
	}
	return &entry, true
}

// validateCache implements spec.md §4.2's validation rules: model name
// equal, sentence count equal, first <=10 texts equal, embedding first-dim
// equal.
func validateCache(entry CacheEntry, modelName string, sentenceTexts []string) bool {
	if entry.ModelName != modelName {
		return false
	}
	if entry.SentenceCount != len(sentenceTexts) {
		return false
	}
	sampleLen := sampleTextLimit
	if sampleLen > len(sentenceTexts) {
		sampleLen = len(sentenceTexts)
	}
	if len(entry.SampleSentenceTexts) != sampleLen {
		return false
	}
	for i := 0; i < sampleLen; i++ {
		if entry.SampleSentenceTexts[i] != sentenceTexts[i] {
			return false
		}
	}
	if len(entry.Embeddings) != len(sentenceTexts) {
		return false
	}
	return true
}

// saveCache persists entry to cache_dir/<episode_id>_<key16>.cache. Write
// failures are non-fatal (spec.md §4.2 "persist-on-best-effort"); the caller
// only logs a warning.
func saveCache(cacheDir, episodeID, modelName string, sentenceTexts []string, embeddings [][]float32) error {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return err
	}
	sampleLen := sampleTextLimit
	if sampleLen > len(sentenceTexts) {
		sampleLen = len(sentenceTexts)
	}
	entry := CacheEntry{
		ModelName:           modelName,
		SentenceCount:       len(sentenceTexts),
		SampleSentenceTexts: append([]string(nil), sentenceTexts[:sampleLen]...),
		Embeddings:          embeddings,
		GeneratedAt:         time.Now().UTC(),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	key := cacheKey(episodeID, modelName, sentenceTexts)
	path := cachePath(cacheDir, episodeID, key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return os.Rename(tmp, path)
}
