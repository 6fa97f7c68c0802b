package embedding

import (
	"path/filepath"
	"testing"
)

func TestSaveCacheThenLoadCacheRoundTrips(t *testing.T) {
	dir := t.TempDir()
	texts := []string{"first sentence", "second sentence", "third sentence"}
	embeddings := [][]float32{{0.1, 0.2}, {0.3, 0.4}, {0.5, 0.6}}

	if err := saveCache(dir, "ep1", "model-a", texts, embeddings); err != nil {
		t.Fatalf("saveCache: %v", err)
	}

	entry, ok := loadCache(dir, "ep1", "model-a", texts)
	if !ok {
		t.Fatal("expected cache hit after save")
	}
	if entry.ModelName != "model-a" {
		t.Errorf("unexpected model name: %q", entry.ModelName)
	}
	if len(entry.Embeddings) != 3 {
		t.Errorf("expected 3 embeddings, got %d", len(entry.Embeddings))
	}
}

func TestLoadCacheMissesOnModelMismatch(t *testing.T) {
	dir := t.TempDir()
	texts := []string{"one", "two"}
	if err := saveCache(dir, "ep1", "model-a", texts, [][]float32{{1}, {2}}); err != nil {
		t.Fatalf("saveCache: %v", err)
	}
	if _, ok := loadCache(dir, "ep1", "model-b", texts); ok {
		t.Error("expected cache miss for different model name")
	}
}

func TestLoadCacheMissesOnTextChange(t *testing.T) {
	dir := t.TempDir()
	texts := []string{"one", "two"}
	if err := saveCache(dir, "ep1", "model-a", texts, [][]float32{{1}, {2}}); err != nil {
		t.Fatalf("saveCache: %v", err)
	}
	changed := []string{"one", "two-changed"}
	if _, ok := loadCache(dir, "ep1", "model-a", changed); ok {
		t.Error("expected cache miss when sentence text changes")
	}
}

func TestLoadCacheMissesWhenFileAbsent(t *testing.T) {
	dir := t.TempDir()
	if _, ok := loadCache(dir, "ep-missing", "model-a", []string{"x"}); ok {
		t.Error("expected cache miss for nonexistent file")
	}
}

func TestCachePathUsesTruncatedKey(t *testing.T) {
	key := cacheKey("ep1", "model-a", []string{"x"})
	path := cachePath("/tmp/cache", "ep1", key)
	expectedPrefix := filepath.Join("/tmp/cache", "ep1_"+key[:16]+".cache")
	if path != expectedPrefix {
		t.Errorf("unexpected cache path: got %q want %q", path, expectedPrefix)
	}
}
