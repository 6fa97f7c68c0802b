// Package metadata implements C6, the Metadata Generator: LLM-first
// title/caption/hashtag generation with deterministic fallbacks
// (spec.md §4.6).
package metadata

// Metadata is the generated title/caption/hashtag bundle merged into a
// ClipSpec.
type Metadata struct {
	Title    string
	Caption  string
	Hashtags []string
	Keywords []string
}

const (
	maxTitleLength = 60
	maxHashtags    = 6
	maxKeywords    = 10
)
