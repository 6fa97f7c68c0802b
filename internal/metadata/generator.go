package metadata

import (
	"context"

	"github.com/five82/clipreel/internal/services/llm"
)

// Gate limits concurrent access to the LLM slot; implemented by
// internal/resourcegate. Declared locally so this package does not depend
// on it, matching internal/scoring's own Gate interface.
type Gate interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// LLMClient issues a single completion request. Satisfied by
// internal/services/llm.Client.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, opts llm.GenerationOptions) (string, error)
}

// Options configures the metadata generator's limits, mirroring spec.md §6's
// metadata knobs (max_title_length=60, max_hashtags=6).
type Options struct {
	MaxTitleLength int
	MaxHashtags    int
}

func (o Options) maxTitleLength() int {
	if o.MaxTitleLength > 0 {
		return o.MaxTitleLength
	}
	return maxTitleLength
}

func (o Options) maxHashtags() int {
	if o.MaxHashtags > 0 {
		return o.MaxHashtags
	}
	return maxHashtags
}

// Generator produces title/caption/hashtag metadata for a clip's source
// text, LLM-first with a fully deterministic fallback path (spec.md §4.6).
// LLM may be left nil to force fallback-only generation.
type Generator struct {
	LLM     LLMClient
	Gate    Gate
	Options Options
}

// NewGenerator builds a Generator. llmClient and gate may both be nil to
// disable the LLM path entirely (keyword-fallback-only mode).
func NewGenerator(llmClient LLMClient, gate Gate, opts Options) *Generator {
	return &Generator{LLM: llmClient, Gate: gate, Options: opts}
}

// Generate derives a Metadata bundle from a clip's sentence texts, in
// sentence order. Title, caption and hashtags are each produced
// independently so an LLM failure on one never blocks the others.
func (g *Generator) Generate(ctx context.Context, sentenceTexts []string) Metadata {
	text := joinSentences(sentenceTexts)
	keywords := extractKeywords(text)

	return Metadata{
		Title:    g.buildTitle(ctx, text, sentenceTexts, keywords),
		Caption:  g.buildCaption(ctx, text, sentenceTexts),
		Hashtags: buildHashtags(text, keywords, g.Options.maxHashtags()),
		Keywords: keywords,
	}
}

func (g *Generator) callLLM(ctx context.Context, prompt string) (string, bool) {
	if g.LLM == nil {
		return "", false
	}
	if g.Gate != nil {
		release, err := g.Gate.Acquire(ctx)
		if err != nil {
			return "", false
		}
		defer release()
	}
	response, err := g.LLM.Generate(ctx, prompt, llm.GenerationOptions{Temperature: 0.4, TopP: 0.9, MaxTokens: 120})
	if err != nil {
		return "", false
	}
	return response, true
}

func joinSentences(texts []string) string {
	out := ""
	for i, t := range texts {
		if i > 0 {
			out += " "
		}
		out += t
	}
	return out
}
