package metadata

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English, cases.NoLower)

const llmTitleRejectLength = 100

var (
	quotePair       = regexp.MustCompile(`^["'\x{201C}\x{2018}](.*)["'\x{201D}\x{2019}]$`)
	labelPrefix     = regexp.MustCompile(`(?i)^(title|caption)\s*:\s*`)
	titleImperative = regexp.MustCompile(`(?i)\b(you need to|here'?s what|watch this|let me show you|imagine|picture this)\b`)
	titleClaim      = regexp.MustCompile(`(?i)\b(the truth is|the fact is|nobody talks about|in reality)\b`)
)

// buildTitle implements spec.md §4.6's title algorithm: an LLM attempt with
// a fixed prompt, then an ordered deterministic fallback.
func (g *Generator) buildTitle(ctx context.Context, text string, sentences []string, keywords []string) string {
	limit := g.Options.maxTitleLength()

	if raw, ok := g.callLLM(ctx, titlePrompt(text)); ok {
		if title, ok := cleanLLMTitle(raw, limit); ok {
			return title
		}
	}

	return truncateAtWordBoundary(fallbackTitle(sentences, text, keywords), limit)
}

func titlePrompt(text string) string {
	return fmt.Sprintf(
		"Write a single short, attention-grabbing title (no more than 60 characters) for a social media clip based on this transcript excerpt. Respond with only the title, no quotes or labels.\n\n%s",
		text,
	)
}

// cleanLLMTitle strips quotes/label prefixes and rejects responses over
// llmTitleRejectLength chars (spec.md §4.6: "Reject > 100 chars").
func cleanLLMTitle(raw string, limit int) (string, bool) {
	cleaned := stripQuotesAndLabel(raw)
	if cleaned == "" {
		return "", false
	}
	if len([]rune(cleaned)) > llmTitleRejectLength {
		return "", false
	}
	return truncateAtWordBoundary(cleaned, limit), true
}

func stripQuotesAndLabel(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.SplitN(cleaned, "\n", 2)[0]
	cleaned = labelPrefix.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	if m := quotePair.FindStringSubmatch(cleaned); m != nil {
		cleaned = strings.TrimSpace(m[1])
	}
	return cleaned
}

// fallbackTitle implements the deterministic fallback order: first
// question, else a sentence with imperative/claim markers, else a templated
// keyword title, else the first 8 words.
func fallbackTitle(sentences []string, text string, keywords []string) string {
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if strings.HasSuffix(s, "?") {
			return s
		}
	}
	for _, s := range sentences {
		trimmed := strings.TrimSpace(s)
		if titleImperative.MatchString(trimmed) || titleClaim.MatchString(trimmed) {
			return trimmed
		}
	}
	if len(keywords) > 0 {
		top := keywords
		if len(top) > 3 {
			top = top[:3]
		}
		return fmt.Sprintf("What You Need to Know About %s", titleCaser.String(strings.Join(top, ", ")))
	}
	return firstNWords(text, 8)
}

func firstNWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// truncateAtWordBoundary truncates title to at most limit chars, breaking on
// a word boundary and appending an ellipsis when truncation occurred.
func truncateAtWordBoundary(title string, limit int) string {
	title = strings.TrimSpace(title)
	runes := []rune(title)
	if len(runes) <= limit {
		return title
	}
	const ellipsis = "…"
	budget := limit - len([]rune(ellipsis))
	if budget < 1 {
		budget = 1
	}
	truncated := string(runes[:budget])
	if idx := strings.LastIndex(truncated, " "); idx > 0 {
		truncated = truncated[:idx]
	}
	return strings.TrimSpace(truncated) + ellipsis
}
