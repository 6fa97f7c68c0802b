package metadata

import "strings"

// categoryKeywords maps a topic category to the keywords whose presence in
// the source text triggers its hashtag, per spec.md §4.6's "fixed mapping
// such as business/tech/health/...".
var categoryKeywords = map[string][]string{
	"business":  {"business", "startup", "entrepreneur", "revenue", "investor", "market"},
	"tech":      {"technology", "software", "ai", "artificial intelligence", "coding", "app", "device"},
	"health":    {"health", "fitness", "diet", "workout", "wellness", "mental health", "nutrition"},
	"finance":   {"money", "investing", "stock", "finance", "budget", "savings", "crypto"},
	"education": {"learn", "education", "school", "student", "teacher", "study"},
	"lifestyle": {"lifestyle", "travel", "fashion", "relationship", "productivity"},
}

// platformTags is the small fixed set appended to every generated hashtag
// list, per spec.md §4.6.
var platformTags = []string{"#fyp", "#viral", "#trending", "#shorts", "#reels", "#tiktok"}

var alnumOnly = func(r rune) bool {
	return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
}

// buildHashtags unions keyword hashtags, detected topic-category hashtags,
// and the platform tag set, in that order, deduplicating and capping at
// maxHashtags (spec.md §4.6).
func buildHashtags(text string, keywords []string, max int) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(tag string) {
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	for _, k := range keywords {
		tag := hashtagFromKeyword(k)
		if tag != "" {
			add(tag)
		}
	}

	lower := strings.ToLower(text)
	for _, category := range categoryOrder {
		for _, term := range categoryKeywords[category] {
			if strings.Contains(lower, term) {
				add("#" + category)
				break
			}
		}
	}

	for _, tag := range platformTags {
		add(tag)
	}

	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// categoryOrder fixes iteration order over categoryKeywords so hashtag
// output is deterministic regardless of Go's randomized map iteration.
var categoryOrder = []string{"business", "tech", "health", "finance", "education", "lifestyle"}

func hashtagFromKeyword(keyword string) string {
	lower := strings.ToLower(keyword)
	filtered := strings.Map(func(r rune) rune {
		if alnumOnly(r) {
			return -1
		}
		return r
	}, lower)
	if len(filtered) < 3 {
		return ""
	}
	return "#" + filtered
}
