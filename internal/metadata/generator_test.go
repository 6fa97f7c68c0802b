package metadata

import (
	"context"
	"strings"
	"testing"
)

func TestGenerateFallbackRespectsLimits(t *testing.T) {
	gen := NewGenerator(nil, nil, Options{})
	sentences := []string{
		"The truth is nobody talks about how startups actually raise money from investors.",
		"You need to understand the market before you pitch to any investor.",
		"That is simply put the reason most founders fail in their first year.",
	}

	md := gen.Generate(context.Background(), sentences)

	if len(md.Title) > maxTitleLength {
		t.Errorf("title length %d exceeds %d: %q", len(md.Title), maxTitleLength, md.Title)
	}
	if strings.Contains(md.Caption, "#") {
		t.Errorf("fallback caption must not contain hashtags: %q", md.Caption)
	}
	if len(md.Hashtags) > maxHashtags {
		t.Errorf("hashtags length %d exceeds %d", len(md.Hashtags), maxHashtags)
	}
	for _, h := range md.Hashtags {
		if !strings.HasPrefix(h, "#") {
			t.Errorf("hashtag %q missing # prefix", h)
		}
	}
}

func TestGenerateFallbackQuestionTitle(t *testing.T) {
	gen := NewGenerator(nil, nil, Options{})
	sentences := []string{
		"Why does everyone get this wrong about saving money?",
		"The answer is simpler than you think.",
	}

	md := gen.Generate(context.Background(), sentences)
	if md.Title != sentences[0] {
		t.Errorf("expected first question as title, got %q", md.Title)
	}
}

func TestGenerateFallbackNoQuestionAppendsPrompt(t *testing.T) {
	gen := NewGenerator(nil, nil, Options{})
	sentences := []string{
		"Startups rarely survive their first funding round.",
		"Most founders underestimate how long runway actually lasts.",
	}

	md := gen.Generate(context.Background(), sentences)
	if !strings.Contains(md.Caption, "What do you think about") {
		t.Errorf("expected discussion prompt appended, got %q", md.Caption)
	}
}

func TestTruncateAtWordBoundary(t *testing.T) {
	long := strings.Repeat("word ", 20)
	truncated := truncateAtWordBoundary(long, 20)
	if len([]rune(truncated)) > 20 {
		t.Fatalf("truncated title exceeds limit: %q (%d runes)", truncated, len([]rune(truncated)))
	}
	if !strings.HasSuffix(truncated, "…") {
		t.Fatalf("expected ellipsis suffix, got %q", truncated)
	}
}

func TestBuildHashtagsCapsAndPrefixes(t *testing.T) {
	tags := buildHashtags("this startup raised money from investors in the tech market", []string{"startup", "investors"}, 6)
	if len(tags) != 6 {
		t.Fatalf("expected 6 hashtags, got %d: %v", len(tags), tags)
	}
	for _, tag := range tags {
		if !strings.HasPrefix(tag, "#") {
			t.Errorf("hashtag missing prefix: %q", tag)
		}
	}
}
