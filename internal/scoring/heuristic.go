package scoring

import (
	"regexp"
	"strings"

	"github.com/five82/clipreel/internal/segment"
)

const hookWindowChars = 100

var (
	imperativeMarkers = regexp.MustCompile(`(?i)\b(you need to|here'?s what|let me show you|watch this|listen up|pay attention)\b`)
	claimMarkers      = regexp.MustCompile(`(?i)\b(the truth is|the fact is|in reality|here'?s the truth|nobody talks about)\b`)
	numericMarkers    = regexp.MustCompile(`(?i)(\d+\s?%|statistics show|studies show|\d+x\b)`)
	superlativeMarkers = regexp.MustCompile(`(?i)\b(most|best|worst|never|always|everyone|nobody|everything)\b`)
	controversyMarkers = regexp.MustCompile(`(?i)\b(shocking|unbelievable|incredible|controversial|banned|outrage)\b`)
	digitPattern       = regexp.MustCompile(`\d`)

	capitalizedWord = regexp.MustCompile(`\b[A-Z][a-z]+\b`)

	allCapsToken     = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	wordRun          = regexp.MustCompile(`\w+(?:\s+\w+)*`)
	intensifierWords = regexp.MustCompile(`(?i)\b(very|extremely|incredibly|absolutely|totally|completely)\b`)

	emotionalWords = []string{
		"love", "hate", "fear", "angry", "joy", "excited", "devastated",
		"thrilled", "furious", "heartbroken", "amazed", "terrified",
	}

	questionLeadIn = regexp.MustCompile(`(?i)^(what|why|how|who|when|where|which|do|does|did|is|are|can|could|should|would)\b`)
	definitiveAnswer = regexp.MustCompile(`(?i)\b(the answer is|it'?s because|that'?s because|simply put|the reason)\b`)
)

// segmentText joins a segment's sentence texts with single spaces.
func segmentText(seg segment.TopicSegment) string {
	parts := make([]string, len(seg.Sentences))
	for i, s := range seg.Sentences {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// scoreHook implements spec.md §4.4's hook signal.
func scoreHook(seg segment.TopicSegment) float64 {
	text := segmentText(seg)
	window := text
	if len(window) > hookWindowChars {
		window = window[:hookWindowChars]
	}

	var score float64
	matches := 0
	add := func(matched bool, weight float64) {
		if matched {
			score += weight
			matches++
		}
	}
	add(imperativeMarkers.MatchString(window), 0.40)
	add(claimMarkers.MatchString(window), 0.35)
	add(numericMarkers.MatchString(window), 0.30)
	add(superlativeMarkers.MatchString(window), 0.20)
	add(controversyMarkers.MatchString(window), 0.25)

	if matches >= 2 {
		score += 0.10
	}
	if len(seg.Sentences) > 0 && digitPattern.MatchString(seg.Sentences[0].Text) {
		score += 0.10
	}
	return clip01(score)
}

// scoreEntity implements spec.md §4.4's fallback entity-density signal (no
// NLP model resident): density from capitalized words + digit-bearing
// tokens, base = min(1, density*8). A diversity bonus of min(0.2, kinds*0.05)
// rewards segments that mix both signal kinds.
func scoreEntity(seg segment.TopicSegment) float64 {
	text := segmentText(seg)
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	capCount := len(capitalizedWord.FindAllString(text, -1))
	digitCount := 0
	for _, w := range words {
		if digitPattern.MatchString(w) {
			digitCount++
		}
	}
	density := float64(capCount+digitCount) / float64(len(words))
	base := clip01(density * 8)

	kinds := 0
	if capCount > 0 {
		kinds++
	}
	if digitCount > 0 {
		kinds++
	}
	diversity := float64(kinds) * 0.05
	if diversity > 0.2 {
		diversity = 0.2
	}
	return clip01(base + diversity)
}

// scoreSentiment implements spec.md §4.4's emphasis-regex + curated
// emotional-word fallback (no sentiment analyzer resident).
func scoreSentiment(seg segment.TopicSegment) float64 {
	text := segmentText(seg)

	var score float64
	if allCapsToken.MatchString(text) {
		score += 0.3
	}
	// A word recurring (case-insensitively) with at most two other words
	// between the occurrences counts as repeated-word emphasis.
	repeated := false
	for _, run := range wordRun.FindAllString(strings.ToLower(text), -1) {
		words := strings.Fields(run)
		for i := 0; i < len(words) && !repeated; i++ {
			for j := i + 1; j < len(words) && j <= i+3; j++ {
				repeated = repeated || words[i] == words[j]
			}
		}
	}
	if repeated {
		score += 0.2
	}
	if intensifierWords.MatchString(text) {
		score += 0.25
	}

	lower := strings.ToLower(text)
	emotionalHits := 0
	for _, w := range emotionalWords {
		if strings.Contains(lower, w) {
			emotionalHits++
		}
	}
	if emotionalHits > 0 {
		bonus := 0.1 * float64(emotionalHits)
		if bonus > 0.3 {
			bonus = 0.3
		}
		score += bonus
	}
	return clip01(score)
}

// scoreQA implements spec.md §4.4's question/answer pairing signal.
func scoreQA(seg segment.TopicSegment) float64 {
	sentences := seg.Sentences
	if len(sentences) == 0 {
		return 0
	}

	var score float64
	questionCount := 0
	for i, s := range sentences {
		text := strings.TrimSpace(s.Text)
		isQuestion := strings.HasSuffix(text, "?") || questionLeadIn.MatchString(text)
		if !isQuestion {
			continue
		}
		questionCount++

		if i+1 < len(sentences) {
			next := sentences[i+1].Text
			if definitiveAnswer.MatchString(next) {
				pairScore := 0.3
				if questionLeadIn.MatchString(text) {
					pairScore *= 1.15
				}
				score += pairScore
			} else {
				score += 0.2
			}
		}
	}

	if len(sentences) > 0 {
		first := strings.TrimSpace(sentences[0].Text)
		if strings.HasSuffix(first, "?") {
			score += 0.2
		}
	}
	if questionCount > 1 {
		bonus := float64(questionCount-1) * 0.1
		if bonus > 0.2 {
			bonus = 0.2
		}
		score += bonus
	}
	return clip01(score)
}

// scoreCompression implements spec.md §4.4's word-count step function.
func scoreCompression(seg segment.TopicSegment) float64 {
	n := wordCount(segmentText(seg))
	switch {
	case n <= 50:
		return 0.6
	case n <= 100:
		return 1.0
	case n <= 150:
		return 0.8
	case n <= 200:
		return 0.6
	default:
		return 0.4
	}
}

// computeSignals evaluates all five heuristic signals for a segment.
func computeSignals(seg segment.TopicSegment) Signals {
	return Signals{
		Hook:        scoreHook(seg),
		Entity:      scoreEntity(seg),
		Sentiment:   scoreSentiment(seg),
		QA:          scoreQA(seg),
		Compression: scoreCompression(seg),
	}
}

// weightedScore blends the five signals by weight, clipped to [0,1].
func weightedScore(s Signals, w Weights) float64 {
	return clip01(s.Hook*w.Hook + s.Entity*w.Entity + s.Sentiment*w.Sentiment + s.QA*w.QA + s.Compression*w.Compression)
}
