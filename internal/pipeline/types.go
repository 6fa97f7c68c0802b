// Package pipeline composes the five clip-discovery stages (sentence
// alignment, embedding, topic segmentation, scoring, selection) plus
// metadata generation into the top-level Discover operation, and persists
// its JSON sidecar and database rows.
package pipeline

import (
	"strings"

	"github.com/five82/clipreel/internal/selector"
)

// Options are the per-call overrides Discover accepts (spec.md §6's opts
// contract). Zero-valued fields fall back to configuration.
type Options struct {
	MaxClips       int
	MinDurationMS  int
	MaxDurationMS  int
	AspectRatios   []string
	ScoreThreshold float64
	Platform       string
}

// Clip is a fully assembled clip specification: the selector's cut plus the
// episode binding and generated metadata.
type Clip struct {
	selector.ClipSpec
	EpisodeID string
	Title     string
	Caption   string
	Hashtags  []string
}

// platformPolicy maps spec.md §6's platform names onto the selector's preset
// table; the CLI-facing names and the preset constants differ for the two
// platforms whose products are commonly written out in full.
func platformPolicy(name string) selector.Policy {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tiktok":
		return selector.PlatformPreset(selector.PlatformTikTok)
	case "instagram_reels", "reels":
		return selector.PlatformPreset(selector.PlatformReels)
	case "youtube_shorts", "shorts":
		return selector.PlatformPreset(selector.PlatformShorts)
	case "twitter":
		return selector.PlatformPreset(selector.PlatformTwitter)
	case "linkedin":
		return selector.PlatformPreset(selector.PlatformLinkedIn)
	case "facebook":
		return selector.PlatformPreset(selector.PlatformFacebook)
	default:
		return selector.DefaultPolicy()
	}
}
