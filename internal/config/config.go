// Package config loads and validates clipreel's runtime configuration,
// following the same Load/normalize/Validate/CreateSample shape spindle's
// internal/config package uses for its TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ScorerWeights are the five heuristic signal weights from spec.md §4.4.
type ScorerWeights struct {
	Hook        float64 `toml:"hook"`
	Entity      float64 `toml:"entity"`
	Sentiment   float64 `toml:"sentiment"`
	QA          float64 `toml:"qa"`
	Compression float64 `toml:"compression"`
}

// DurationBucket is a named clip-length target, spec.md §3.
type DurationBucket struct {
	Name      string `toml:"name"`
	MinMS     int    `toml:"min_ms"`
	MaxMS     int    `toml:"max_ms"`
	OptimalMS int    `toml:"optimal_ms"`
}

// Config encapsulates every knob recognized by the clip-discovery pipeline
// (spec.md §6 "Configuration knobs"), plus the ambient knobs (logging,
// storage locations) every clipreel component needs.
type Config struct {
	DataDir   string `toml:"data_dir"`
	CacheDir  string `toml:"cache_dir"`
	LogDir    string `toml:"log_dir"`
	LogFormat string `toml:"log_format"`
	LogLevel  string `toml:"log_level"`

	// Embedding (C2)
	EmbeddingModelName     string   `toml:"model_name"`
	EmbeddingFallbackNames []string `toml:"embedding_fallback_models"`
	EmbeddingBatchSize     int      `toml:"embedding_batch_size"`
	ModelDir               string   `toml:"model_dir"`

	// Segmentation (C3)
	MinDurationMS int `toml:"min_duration_ms"`
	MaxDurationMS int `toml:"max_duration_ms"`

	// Scoring (C4)
	ScorerWeights  ScorerWeights `toml:"weights"`
	LLMEnabled     bool          `toml:"llm_enabled"`
	LLMModel       string        `toml:"llm_model"`
	LLMTimeoutS    int           `toml:"llm_timeout_s"`
	LLMBaseURL     string        `toml:"llm_base_url"`
	LLMRerankTopK  int           `toml:"llm_rerank_top_k"`

	// Selection (C5)
	DurationBuckets      []DurationBucket `toml:"duration_buckets"`
	AspectRatios         []string         `toml:"aspect_ratios"`
	MinScoreThreshold    float64          `toml:"min_score_threshold"`
	MaxClipsPerSegment   int              `toml:"max_clips_per_segment"`
	MaxClipsPerEpisode   int              `toml:"max_clips_per_episode"`
	SafePaddingMS        int              `toml:"safe_padding_ms"`

	// Metadata (C6)
	MaxTitleLength int `toml:"max_title_length"`
	MaxHashtags    int `toml:"max_hashtags"`

	// Resource gate (C7)
	MaxFFmpegConcurrent    int `toml:"max_ffmpeg_concurrent"`
	MaxLLMConcurrent       int `toml:"max_llm_concurrent"`
	MaxEmbeddingMemoryMB   int `toml:"max_embedding_memory_mb"`
	FFmpegAcquireTimeoutS  int `toml:"ffmpeg_acquire_timeout_s"`
	LLMAcquireTimeoutS     int `toml:"llm_acquire_timeout_s"`
}

const (
	defaultDataDir    = "~/.local/share/clipreel"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"
	defaultLLMBaseURL = "http://localhost:11434"
)

// Default returns a Config populated with spec.md's documented defaults.
func Default() Config {
	return Config{
		DataDir:   defaultDataDir,
		LogFormat: defaultLogFormat,
		LogLevel:  defaultLogLevel,

		EmbeddingModelName:     "all-MiniLM-L6-v2",
		EmbeddingFallbackNames: []string{"all-MiniLM-L12-v2", "paraphrase-MiniLM-L3-v2"},
		EmbeddingBatchSize:     32,

		MinDurationMS: 20000,
		MaxDurationMS: 120000,

		ScorerWeights: ScorerWeights{Hook: 0.30, Entity: 0.20, Sentiment: 0.20, QA: 0.20, Compression: 0.10},
		LLMEnabled:    false,
		LLMModel:      "llama3.1",
		LLMTimeoutS:   30,
		LLMBaseURL:    defaultLLMBaseURL,
		LLMRerankTopK: 10,

		DurationBuckets: []DurationBucket{
			{Name: "short_hook", MinMS: 15000, MaxMS: 30000, OptimalMS: 20000},
			{Name: "standard", MinMS: 30000, MaxMS: 60000, OptimalMS: 45000},
			{Name: "long", MinMS: 60000, MaxMS: 120000, OptimalMS: 90000},
		},
		AspectRatios:       []string{"9x16", "16x9"},
		MinScoreThreshold:  0.3,
		MaxClipsPerSegment: 2,
		MaxClipsPerEpisode: 8,
		SafePaddingMS:      500,

		MaxTitleLength: 60,
		MaxHashtags:    6,

		MaxFFmpegConcurrent:   2,
		MaxLLMConcurrent:      1,
		MaxEmbeddingMemoryMB:  2048,
		FFmpegAcquireTimeoutS: 60,
		LLMAcquireTimeoutS:    30,
	}
}

// DefaultConfigPath returns the conventional location clipreel looks for a
// configuration file absent an explicit --config flag.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipreel/config.toml")
}

// Load locates, parses, normalizes and validates a configuration file. When
// path is empty the default user path (falling back to ./clipreel.toml) is
// probed, matching spindle's resolveConfigPath behavior.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("clipreel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.DataDir, err = expandPath(c.DataDir); err != nil {
		return fmt.Errorf("data_dir: %w", err)
	}
	if strings.TrimSpace(c.CacheDir) == "" {
		c.CacheDir = filepath.Join(c.DataDir, "cache", "embeddings")
	}
	if c.CacheDir, err = expandPath(c.CacheDir); err != nil {
		return fmt.Errorf("cache_dir: %w", err)
	}
	if strings.TrimSpace(c.LogDir) == "" {
		c.LogDir = filepath.Join(c.DataDir, "logs")
	}
	if c.LogDir, err = expandPath(c.LogDir); err != nil {
		return fmt.Errorf("log_dir: %w", err)
	}
	if strings.TrimSpace(c.ModelDir) == "" {
		c.ModelDir = filepath.Join(c.DataDir, "models")
	}
	if c.ModelDir, err = expandPath(c.ModelDir); err != nil {
		return fmt.Errorf("model_dir: %w", err)
	}

	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	switch c.LogFormat {
	case "":
		c.LogFormat = defaultLogFormat
	case "console", "json":
	default:
		return fmt.Errorf("log_format: unsupported value %q", c.LogFormat)
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}

	if strings.TrimSpace(c.LLMBaseURL) == "" {
		c.LLMBaseURL = defaultLLMBaseURL
	}
	c.LLMBaseURL = strings.TrimSpace(c.LLMBaseURL)

	if len(c.DurationBuckets) == 0 {
		c.DurationBuckets = Default().DurationBuckets
	}
	if len(c.AspectRatios) == 0 {
		c.AspectRatios = Default().AspectRatios
	}
	if len(c.EmbeddingFallbackNames) == 0 {
		c.EmbeddingFallbackNames = Default().EmbeddingFallbackNames
	}

	return nil
}

// Validate ensures the loaded configuration is internally consistent.
func (c *Config) Validate() error {
	if c.MinDurationMS <= 0 || c.MaxDurationMS <= 0 {
		return errors.New("min_duration_ms and max_duration_ms must be positive")
	}
	if c.MinDurationMS >= c.MaxDurationMS {
		return errors.New("min_duration_ms must be less than max_duration_ms")
	}
	if c.EmbeddingBatchSize <= 0 {
		return errors.New("embedding_batch_size must be positive")
	}
	for _, bucket := range c.DurationBuckets {
		if bucket.MinMS >= bucket.OptimalMS || bucket.OptimalMS > bucket.MaxMS {
			return fmt.Errorf("duration bucket %q: require min_ms < optimal_ms <= max_ms", bucket.Name)
		}
	}
	if c.MinScoreThreshold < 0 || c.MinScoreThreshold > 1 {
		return errors.New("min_score_threshold must be between 0 and 1")
	}
	if c.MaxClipsPerSegment <= 0 {
		return errors.New("max_clips_per_segment must be positive")
	}
	if c.MaxClipsPerEpisode <= 0 {
		return errors.New("max_clips_per_episode must be positive")
	}
	if c.SafePaddingMS < 0 {
		return errors.New("safe_padding_ms must be zero or positive")
	}
	if c.MaxTitleLength <= 0 {
		return errors.New("max_title_length must be positive")
	}
	if c.MaxHashtags <= 0 {
		return errors.New("max_hashtags must be positive")
	}
	weightSum := c.ScorerWeights.Hook + c.ScorerWeights.Entity + c.ScorerWeights.Sentiment +
		c.ScorerWeights.QA + c.ScorerWeights.Compression
	if weightSum <= 0 {
		return errors.New("scorer weights must sum to a positive value")
	}
	if c.MaxFFmpegConcurrent <= 0 || c.MaxLLMConcurrent <= 0 {
		return errors.New("resource gate concurrency limits must be positive")
	}
	return nil
}

// EnsureDirectories creates the directories clipreel writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.DataDir, c.CacheDir, c.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes path expansion for other packages (e.g. CLI flags).
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes an annotated sample configuration file to path.
func CreateSample(path string) error {
	sample := `# Clipreel Configuration
# =======================

# Storage
data_dir = "~/.local/share/clipreel"
cache_dir = "~/.local/share/clipreel/cache/embeddings"
log_dir = "~/.local/share/clipreel/logs"
log_format = "console"                 # "console" or "json"
log_level = "info"

# Embedding (C2)
model_name = "all-MiniLM-L6-v2"
model_dir = "~/.local/share/clipreel/models"
embedding_fallback_models = ["all-MiniLM-L12-v2", "paraphrase-MiniLM-L3-v2"]
embedding_batch_size = 32

# Segmentation (C3)
min_duration_ms = 20000
max_duration_ms = 120000

# Scoring (C4)
llm_enabled = false
llm_model = "llama3.1"
llm_timeout_s = 30
llm_base_url = "http://localhost:11434"
llm_rerank_top_k = 10

[weights]
hook = 0.30
entity = 0.20
sentiment = 0.20
qa = 0.20
compression = 0.10

# Selection (C5)
aspect_ratios = ["9x16", "16x9"]
min_score_threshold = 0.3
max_clips_per_segment = 2
max_clips_per_episode = 8
safe_padding_ms = 500

[[duration_buckets]]
name = "short_hook"
min_ms = 15000
max_ms = 30000
optimal_ms = 20000

[[duration_buckets]]
name = "standard"
min_ms = 30000
max_ms = 60000
optimal_ms = 45000

[[duration_buckets]]
name = "long"
min_ms = 60000
max_ms = 120000
optimal_ms = 90000

# Metadata (C6)
max_title_length = 60
max_hashtags = 6

# Resource gate (C7)
max_ffmpeg_concurrent = 2
max_llm_concurrent = 1
max_embedding_memory_mb = 2048
ffmpeg_acquire_timeout_s = 60
llm_acquire_timeout_s = 30
`
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
