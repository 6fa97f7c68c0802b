package selector

// Platform preset names recognized by config and the CLI.
const (
	PlatformTikTok   = "tiktok"
	PlatformReels    = "reels"
	PlatformShorts   = "shorts"
	PlatformTwitter  = "twitter"
	PlatformLinkedIn = "linkedin"
	PlatformFacebook = "facebook"
)

// PlatformPreset returns the policy override for a named platform, applied
// over DefaultPolicy's bucket/aspect-ratio/cap fields; unknown names return
// DefaultPolicy unchanged (spec.md §4.5: presets override buckets, aspect
// ratios, and max_clips_per_episode, otherwise subject to the same
// algorithm). These snapshots are deliberately not unified into one "ideal"
// shape — each reflects what that platform actually favors, inconsistencies
// included.
func PlatformPreset(name string) Policy {
	base := DefaultPolicy()
	switch name {
	case PlatformTikTok:
		base.Buckets = []DurationBucket{
			{Name: "short_hook", MinMS: 15000, MaxMS: 34000, OptimalMS: 21000},
			{Name: "standard", MinMS: 34000, MaxMS: 60000, OptimalMS: 45000},
		}
		base.AspectRatios = []string{"9x16"}
		base.MaxClipsPerEpisode = 6
	case PlatformReels:
		base.Buckets = []DurationBucket{
			{Name: "short_hook", MinMS: 15000, MaxMS: 30000, OptimalMS: 20000},
			{Name: "standard", MinMS: 30000, MaxMS: 90000, OptimalMS: 60000},
		}
		base.AspectRatios = []string{"9x16"}
		base.MaxClipsPerEpisode = 6
	case PlatformShorts:
		base.Buckets = []DurationBucket{
			{Name: "short_hook", MinMS: 15000, MaxMS: 60000, OptimalMS: 30000},
		}
		base.AspectRatios = []string{"9x16"}
		base.MaxClipsPerEpisode = 5
	case PlatformTwitter:
		base.Buckets = []DurationBucket{
			{Name: "short_hook", MinMS: 15000, MaxMS: 30000, OptimalMS: 20000},
			{Name: "standard", MinMS: 30000, MaxMS: 140000, OptimalMS: 60000},
		}
		base.AspectRatios = []string{"16x9", "9x16"}
		base.MaxClipsPerEpisode = 8
	case PlatformLinkedIn:
		base.Buckets = []DurationBucket{
			{Name: "standard", MinMS: 30000, MaxMS: 90000, OptimalMS: 45000},
			{Name: "long", MinMS: 90000, MaxMS: 600000, OptimalMS: 120000},
		}
		base.AspectRatios = []string{"16x9"}
		base.MaxClipsPerEpisode = 4
	case PlatformFacebook:
		base.Buckets = []DurationBucket{
			{Name: "short_hook", MinMS: 15000, MaxMS: 30000, OptimalMS: 20000},
			{Name: "standard", MinMS: 30000, MaxMS: 120000, OptimalMS: 60000},
			{Name: "long", MinMS: 120000, MaxMS: 240000, OptimalMS: 150000},
		}
		base.AspectRatios = []string{"16x9", "9x16"}
		base.MaxClipsPerEpisode = 10
	}
	return base
}
