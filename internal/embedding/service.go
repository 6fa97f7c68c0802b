package embedding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/five82/clipreel/internal/logging"
	"github.com/five82/clipreel/internal/svcerr"
)

const stageName = "embedding"

// Gate limits concurrent access to a constrained resource (here, the
// embedding slot). Implemented by internal/resourcegate; declared locally so
// this package does not depend on it.
type Gate interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// Service generates sentence embeddings with a cache-first, transformer-
// first, TF-IDF-fallback strategy (spec.md §4.2).
type Service struct {
	CacheDir string
	ModelDir string
	Gate     Gate

	// Logger receives best-effort warnings (cache write failures); nil
	// falls back to slog's default logger.
	Logger *slog.Logger

	// BatchSize bounds how many sentences are pushed through the model per
	// chunk; zero or negative means the spec default of 32. Callers may lower
	// it under memory pressure before a batch starts.
	BatchSize int

	model   *transformerModel
	checked bool
}

const defaultBatchSize = 32

func (s *Service) batchSize() int {
	if s.BatchSize > 0 {
		return s.BatchSize
	}
	return defaultBatchSize
}

// NewService constructs a Service. modelDir may be empty, in which case the
// transformer stage is always skipped and TF-IDF is used directly.
func NewService(cacheDir, modelDir string, gate Gate) *Service {
	return &Service{CacheDir: cacheDir, ModelDir: modelDir, Gate: gate}
}

// Embed returns one normalized embedding per sentence text, in order. It
// checks the filesystem cache first, then a local transformer model, then
// falls back to TF-IDF+SVD. Only a double failure (transformer unavailable
// or erroring AND TF-IDF erroring) or a failure to acquire the embedding
// slot returns a non-nil error.
func (s *Service) Embed(ctx context.Context, episodeID, modelName string, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if entry, ok := loadCache(s.CacheDir, episodeID, modelName, texts); ok {
		return entry.Embeddings, nil
	}

	if s.Gate != nil {
		release, err := s.Gate.Acquire(ctx)
		if err != nil {
			return nil, svcerr.Wrap(svcerr.ErrTransient, stageName, "acquire_gate", "embedding slot unavailable", err)
		}
		defer release()
	}

	vectors, _, err := s.generate(ctx, modelName, texts)
	if err != nil {
		return nil, svcerr.Wrap(svcerr.ErrEmbedding, stageName, "generate", "embedding generation failed", err)
	}

	// The cache is keyed on the requested model name so a later call with
	// the same inputs hits it even when generation fell through to a
	// lighter candidate or the TF-IDF path.
	if saveErr := saveCache(s.CacheDir, episodeID, modelName, texts, vectors); saveErr != nil {
		// Persistence is best-effort.
		s.logger().Warn("embedding cache write failed",
			logging.String(logging.FieldEpisodeID, episodeID),
			logging.Error(saveErr))
	}
	return vectors, nil
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Service) generate(ctx context.Context, modelName string, texts []string) ([][]float32, string, error) {
	if model := s.transformer(); model != nil {
		vectors, err := s.embedBatched(ctx, model, texts)
		if err == nil {
			return vectors, model.name, nil
		}
	}

	vectors, err := tfidfFallback(texts)
	if err != nil {
		return nil, "", fmt.Errorf("tfidf fallback: %w", err)
	}
	return vectors, "tfidf-svd-fallback", nil
}

// embedBatched feeds texts through the model one batch at a time so
// cancellation is observed between chunks and a caller-lowered batch size
// takes effect immediately.
func (s *Service) embedBatched(ctx context.Context, model *transformerModel, texts []string) ([][]float32, error) {
	size := s.batchSize()
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := model.embedAll(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// transformer lazily loads the local model on first use and caches the
// negative result too, so repeated calls don't re-probe the filesystem.
func (s *Service) transformer() *transformerModel {
	if s.checked {
		return s.model
	}
	s.checked = true
	if model, ok := loadTransformer(s.ModelDir); ok {
		s.model = model
	}
	return s.model
}

// Close releases any loaded ONNX session resources.
func (s *Service) Close() {
	if s.model != nil {
		s.model.Close()
		s.model = nil
	}
}
