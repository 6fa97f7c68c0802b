package llm

import (
	"regexp"
	"strconv"
)

var firstNumber = regexp.MustCompile(`-?\d+(\.\d+)?`)

// ParseScalarScore extracts the first numeric substring from an LLM response
// and normalizes it to [0,1], per spec.md §4.4: values already in [0,1] pass
// through; values in (1,10] are divided by 10; anything else is unavailable.
func ParseScalarScore(response string) (float64, bool) {
	match := firstNumber.FindString(response)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	switch {
	case value >= 0 && value <= 1:
		return value, true
	case value > 1 && value <= 10:
		return value / 10, true
	default:
		return 0, false
	}
}
