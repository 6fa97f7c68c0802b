package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/five82/clipreel/internal/config"
	"github.com/five82/clipreel/internal/embedding"
	"github.com/five82/clipreel/internal/logging"
	"github.com/five82/clipreel/internal/metadata"
	"github.com/five82/clipreel/internal/queue"
	"github.com/five82/clipreel/internal/resourcegate"
	"github.com/five82/clipreel/internal/scoring"
	"github.com/five82/clipreel/internal/segment"
	"github.com/five82/clipreel/internal/selector"
	"github.com/five82/clipreel/internal/sentence"
	"github.com/five82/clipreel/internal/services/llm"
	"github.com/five82/clipreel/internal/svcerr"
	"github.com/five82/clipreel/internal/transcript"
)

const lockRetryDelay = 250 * time.Millisecond

// Pipeline wires the clip-discovery stages together with their shared
// resource gates. Construct once per process; Discover may be called for
// multiple episodes.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	gates    *resourcegate.ResourceGate
	memory   *resourcegate.MemoryMonitor
	embedder *embedding.Service
	scorer   *scoring.Scorer
	meta     *metadata.Generator
	store    *queue.Store
}

// New assembles a Pipeline from configuration. store may be nil to skip
// database persistence (the JSON sidecar is still written). The LLM client
// is only constructed when llm_enabled is set; a nil client puts scoring and
// metadata into their deterministic fallback modes.
func New(cfg *config.Config, logger *slog.Logger, store *queue.Store) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	gates := resourcegate.New(
		cfg.MaxFFmpegConcurrent,
		cfg.MaxLLMConcurrent,
		time.Duration(cfg.FFmpegAcquireTimeoutS)*time.Second,
		time.Duration(cfg.LLMAcquireTimeoutS)*time.Second,
	)

	var llmClient *llm.Client
	if cfg.LLMEnabled {
		llmClient = llm.NewClient(cfg.LLMBaseURL, cfg.LLMModel, time.Duration(cfg.LLMTimeoutS)*time.Second, 2)
	}

	embedder := embedding.NewService(cfg.CacheDir, cfg.ModelDir, gates.Embedding)
	embedder.BatchSize = cfg.EmbeddingBatchSize
	embedder.Logger = logger

	weights := scoring.Weights{
		Hook:        cfg.ScorerWeights.Hook,
		Entity:      cfg.ScorerWeights.Entity,
		Sentiment:   cfg.ScorerWeights.Sentiment,
		QA:          cfg.ScorerWeights.QA,
		Compression: cfg.ScorerWeights.Compression,
	}

	var scorerLLM scoring.Generator
	var metaLLM metadata.LLMClient
	if llmClient != nil {
		scorerLLM = llmClient
		metaLLM = llmClient
	}

	return &Pipeline{
		cfg:      cfg,
		logger:   logger,
		gates:    gates,
		memory:   resourcegate.NewMemoryMonitor(cfg.MaxEmbeddingMemoryMB),
		embedder: embedder,
		scorer:   scoring.NewScorer(weights, scorerLLM, gates.LLM, cfg.LLMRerankTopK),
		meta: metadata.NewGenerator(metaLLM, gates.LLM, metadata.Options{
			MaxTitleLength: cfg.MaxTitleLength,
			MaxHashtags:    cfg.MaxHashtags,
		}),
		store: store,
	}
}

// Close releases resources held across Discover calls (the resident
// embedding model session).
func (p *Pipeline) Close() {
	if p.embedder != nil {
		p.embedder.Close()
	}
}

// Discover runs the full clip-discovery sequence for one episode: sentences,
// embeddings, topic segments, scores, clip selection, metadata, then the
// JSON sidecar and database rows. It returns a possibly empty clip list, or
// a single structured error naming the failing stage; per-item problems
// degrade internally and never surface here.
func (p *Pipeline) Discover(ctx context.Context, episodeID string, tr transcript.Transcript, opts Options) ([]Clip, error) {
	ctx = logging.WithEpisodeID(ctx, episodeID)
	logger := logging.WithContext(ctx, p.logger)
	stats := newStats(episodeID)

	if tr.IsEmpty() {
		logger.Info("transcript empty, nothing to discover",
			logging.String(logging.FieldEventType, "discover_empty"))
		return nil, nil
	}

	// C1: sentence alignment.
	var sentences []sentence.Sentence
	p.runStage(ctx, logger, stats, "align", func(context.Context) error {
		words := transcript.Clean(transcript.Words(tr))
		sentences = sentence.Align(words, sentence.Options{})
		if tr.Diarization != nil {
			sentences = sentence.AttachSpeakers(sentences, tr.Diarization)
		}
		return nil
	})
	stats.SentenceCount = len(sentences)
	if len(sentences) == 0 {
		logger.Info("no sentences after alignment",
			logging.String(logging.FieldEventType, "discover_empty"))
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// C2: embeddings, under a per-episode cache lock so two runs over the
	// same episode never interleave cache writes.
	texts := make([]string, len(sentences))
	for i, s := range sentences {
		texts[i] = s.Text
	}
	var vectors [][]float32
	err := p.runStage(ctx, logger, stats, "embed", func(stageCtx context.Context) error {
		if p.memory.UnderPressure() {
			clamped := p.memory.ClampBatchSize(p.cfg.EmbeddingBatchSize)
			p.embedder.BatchSize = clamped
			logger.Warn("memory pressure detected, reducing embedding batch size",
				logging.Int("batch_size", clamped),
				logging.Int("configured_batch_size", p.cfg.EmbeddingBatchSize))
			stats.noteFallback("embedding_batch_clamped")
		}

		lock := flock.New(filepath.Join(p.cfg.CacheDir, episodeID+".lock"))
		if locked, lockErr := lock.TryLockContext(stageCtx, lockRetryDelay); lockErr == nil && locked {
			defer func() { _ = lock.Unlock() }()
		}

		var embedErr error
		vectors, embedErr = p.embedder.Embed(stageCtx, episodeID, p.cfg.EmbeddingModelName, texts)
		return embedErr
	})
	if err != nil {
		return nil, svcerr.Wrap(svcerr.ErrEmbedding, "embed", "generate",
			fmt.Sprintf("episode %s: embedding generation failed", episodeID), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// C3: topic segmentation.
	segOpts := segment.Options{
		MinDurationMS: int64(p.cfg.MinDurationMS),
		MaxDurationMS: int64(p.cfg.MaxDurationMS),
	}
	if opts.MinDurationMS > 0 {
		segOpts.MinDurationMS = int64(opts.MinDurationMS)
	}
	if opts.MaxDurationMS > 0 {
		segOpts.MaxDurationMS = int64(opts.MaxDurationMS)
	}
	var segments []segment.TopicSegment
	p.runStage(ctx, logger, stats, "segment", func(context.Context) error {
		segments = segment.Build(sentences, vectors, segOpts)
		return nil
	})
	stats.SegmentCount = len(segments)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// C4: scoring.
	var scored []scoring.ScoredSegment
	p.runStage(ctx, logger, stats, "score", func(stageCtx context.Context) error {
		scored = p.scorer.Score(stageCtx, segments)
		return nil
	})
	stats.ScoredCount = len(scored)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// C5: selection.
	policy := p.policy(opts)
	var specs []selector.ClipSpec
	p.runStage(ctx, logger, stats, "select", func(context.Context) error {
		specs = selector.Select(scored, policy)
		return nil
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// C6: metadata, merged into the final clip list.
	clips := make([]Clip, 0, len(specs))
	p.runStage(ctx, logger, stats, "metadata", func(stageCtx context.Context) error {
		for _, spec := range specs {
			md := p.meta.Generate(stageCtx, clipSentenceTexts(spec, scored))
			clips = append(clips, Clip{
				ClipSpec:  spec,
				EpisodeID: episodeID,
				Title:     md.Title,
				Caption:   md.Caption,
				Hashtags:  md.Hashtags,
			})
		}
		return nil
	})
	stats.ClipCount = len(clips)

	now := time.Now().UTC()
	if err := p.persist(ctx, logger, episodeID, clips, stats, now); err != nil {
		return nil, err
	}

	logger.Info("clip discovery completed",
		logging.String(logging.FieldEventType, "discover_complete"),
		logging.Int("sentences", stats.SentenceCount),
		logging.Int("segments", stats.SegmentCount),
		logging.Int("clips", stats.ClipCount))
	return clips, nil
}

// runStage executes one pipeline stage with spindle-style start/complete/
// failure events and duration accounting.
func (p *Pipeline) runStage(ctx context.Context, logger *slog.Logger, stats *Stats, name string, fn func(context.Context) error) error {
	stageCtx := logging.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, logger)

	stageLogger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
	start := time.Now()
	err := fn(stageCtx)
	elapsed := time.Since(start)
	stats.recordStage(name, elapsed)

	if err != nil {
		stageLogger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Duration("elapsed", elapsed),
			logging.Error(err))
		return err
	}
	stageLogger.Debug("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", elapsed))
	return nil
}

// policy resolves the effective selection policy: platform preset or config
// buckets, then per-call overrides.
func (p *Pipeline) policy(opts Options) selector.Policy {
	var policy selector.Policy
	if opts.Platform != "" {
		policy = platformPolicy(opts.Platform)
	} else {
		policy = selector.Policy{
			Buckets:            make([]selector.DurationBucket, 0, len(p.cfg.DurationBuckets)),
			AspectRatios:       p.cfg.AspectRatios,
			MinScoreThreshold:  p.cfg.MinScoreThreshold,
			MaxClipsPerSegment: p.cfg.MaxClipsPerSegment,
			MaxClipsPerEpisode: p.cfg.MaxClipsPerEpisode,
			SafePaddingMS:      int64(p.cfg.SafePaddingMS),
		}
		for _, b := range p.cfg.DurationBuckets {
			policy.Buckets = append(policy.Buckets, selector.DurationBucket{
				Name:      b.Name,
				MinMS:     int64(b.MinMS),
				MaxMS:     int64(b.MaxMS),
				OptimalMS: int64(b.OptimalMS),
			})
		}
	}

	if opts.MaxClips > 0 {
		policy.MaxClipsPerEpisode = opts.MaxClips
	}
	if len(opts.AspectRatios) > 0 {
		policy.AspectRatios = opts.AspectRatios
	}
	if opts.ScoreThreshold > 0 {
		policy.MinScoreThreshold = opts.ScoreThreshold
	}
	return policy
}

// clipSentenceTexts recovers the sentence texts behind a clip by locating
// its source segment (bounds are preserved pre-padding) and applying the
// clip's sentence-index window.
func clipSentenceTexts(spec selector.ClipSpec, scored []scoring.ScoredSegment) []string {
	for _, s := range scored {
		if s.Segment.StartMS != spec.SourceSegmentBounds.StartMS || s.Segment.EndMS != spec.SourceSegmentBounds.EndMS {
			continue
		}
		texts := make([]string, 0, len(spec.Sentences))
		for _, idx := range spec.Sentences {
			if idx >= 0 && idx < len(s.Segment.Sentences) {
				texts = append(texts, s.Segment.Sentences[idx].Text)
			}
		}
		return texts
	}
	return nil
}

// persist writes the JSON sidecar, the run stats, and (when a store is
// attached) the clips rows. Sidecar failure is fatal; stats and database
// problems are logged and degrade.
func (p *Pipeline) persist(ctx context.Context, logger *slog.Logger, episodeID string, clips []Clip, stats *Stats, now time.Time) error {
	doc := buildSidecar(episodeID, clips, now)
	sidecarFile := SidecarPath(p.cfg.DataDir, episodeID)
	if err := writeJSONFile(sidecarFile, doc); err != nil {
		return svcerr.Wrap(svcerr.ErrTransient, "persist", "sidecar",
			fmt.Sprintf("episode %s: write sidecar", episodeID), err)
	}

	stats.GeneratedAt = now
	if err := writeJSONFile(statsPath(p.cfg.DataDir, episodeID), stats); err != nil {
		logger.Warn("failed to write run stats", logging.Error(err))
	}

	if p.store == nil {
		return nil
	}
	for _, c := range clips {
		row := queue.Clip{
			ID:         c.ID,
			EpisodeID:  c.EpisodeID,
			StartMS:    c.StartMS,
			EndMS:      c.EndMS,
			DurationMS: c.DurationMS,
			Score:      c.Score,
			Title:      c.Title,
			Caption:    c.Caption,
			Status:     queue.StatusPending,
			CreatedAt:  now,
		}
		if err := p.store.InsertClip(ctx, row, c.Hashtags); err != nil {
			logger.Warn("failed to persist clip row",
				logging.String("clip_id", c.ID),
				logging.Error(err))
		}
	}
	return nil
}
