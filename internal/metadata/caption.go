package metadata

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var inlineHashtag = regexp.MustCompile(`#\w+`)

// buildCaption implements spec.md §4.6's caption algorithm: an LLM attempt
// with a fixed prompt, stripped of quotes/prefixes/inline hashtags, else the
// first 1-2 sentences with a discussion prompt appended when no question is
// present.
func (g *Generator) buildCaption(ctx context.Context, text string, sentences []string) string {
	if raw, ok := g.callLLM(ctx, captionPrompt(text)); ok {
		if caption, ok := cleanLLMCaption(raw); ok {
			return caption
		}
	}
	return fallbackCaption(sentences)
}

func captionPrompt(text string) string {
	return fmt.Sprintf(
		"Write a 1-2 sentence social media caption for this clip that would make someone want to watch it. Do not include hashtags. Respond with only the caption.\n\n%s",
		text,
	)
}

func cleanLLMCaption(raw string) (string, bool) {
	cleaned := stripQuotesAndLabel(raw)
	cleaned = inlineHashtag.ReplaceAllString(cleaned, "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return "", false
	}
	return cleaned, true
}

func fallbackCaption(sentences []string) string {
	if len(sentences) == 0 {
		return ""
	}
	n := 2
	if n > len(sentences) {
		n = len(sentences)
	}
	caption := strings.TrimSpace(strings.Join(sentences[:n], " "))
	if strings.Contains(caption, "?") {
		return caption
	}

	keyword := firstNWords(sentences[0], 3)
	if keyword == "" {
		return caption
	}
	return fmt.Sprintf("%s What do you think about %s?", caption, strings.ToLower(keyword))
}
