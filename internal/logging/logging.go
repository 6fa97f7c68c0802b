// Package logging wraps log/slog with the small set of helpers and context
// propagation conventions clipreel's stages share.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"
)

type Attr = slog.Attr

// Field name constants shared by every stage's structured events.
const (
	FieldEventType  = "event_type"
	FieldStage      = "stage"
	FieldEpisodeID  = "episode_id"
	FieldAlert      = "alert"
)

func String(key, value string) Attr            { return slog.String(key, value) }
func Int(key string, value int) Attr            { return slog.Int(key, value) }
func Int64(key string, value int64) Attr        { return slog.Int64(key, value) }
func Float64(key string, value float64) Attr    { return slog.Float64(key, value) }
func Bool(key string, value bool) Attr          { return slog.Bool(key, value) }
func Duration(key string, d time.Duration) Attr { return slog.Duration(key, d) }
func Any(key string, value any) Attr            { return slog.Any(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func Group(key string, attrs ...Attr) Attr {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return slog.Group(key, args...)
}

type ctxKey string

const (
	ctxStage     ctxKey = "stage"
	ctxEpisodeID ctxKey = "episode_id"
)

// WithStage annotates the context with the active pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, ctxStage, stage)
}

// StageFromContext returns the stage name previously attached by WithStage.
func StageFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(ctxStage).(string)
	return value, ok
}

// WithEpisodeID annotates the context with the episode identifier being processed.
func WithEpisodeID(ctx context.Context, episodeID string) context.Context {
	return context.WithValue(ctx, ctxEpisodeID, episodeID)
}

// EpisodeIDFromContext returns the episode id previously attached by WithEpisodeID.
func EpisodeIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(ctxEpisodeID).(string)
	return value, ok
}

// WithContext returns a logger enriched with any stage/episode values found on ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if stage, ok := StageFromContext(ctx); ok && stage != "" {
		logger = logger.With(String(FieldStage, stage))
	}
	if episodeID, ok := EpisodeIDFromContext(ctx); ok && episodeID != "" {
		logger = logger.With(String(FieldEpisodeID, episodeID))
	}
	return logger
}

// New builds the process-wide logger honoring the "console"/"json" format and
// a slog level name, matching spindle's internal/logging configuration.
func New(format, level string) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
