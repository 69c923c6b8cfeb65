package persist

import (
	"regexp"
	"strings"
)

// adviceLengthThreshold: anything longer than this is treated as substantial
// enough to withhold when it cannot be saved.
const adviceLengthThreshold = 280

var listMarkerPattern = regexp.MustCompile(`(?m)^\s*(?:[-*•]|\d+[.)])\s+`)

// imperativeOpeners are verbs that typically start a piece of actionable
// advice. Checked at sentence starts only.
var imperativeOpeners = []string{
	"try", "start", "set", "avoid", "track", "plan", "schedule",
	"aim", "write", "take", "drink", "swap", "keep", "pick", "make",
}

var sentenceSplitPattern = regexp.MustCompile(`[.!?\n]+`)

// LooksLikeAdvice is the heuristic guarding the "no advice without a save"
// invariant: list markers, imperative sentence openers, or sheer length.
// It is deliberately the same rough check the product has always used —
// tighten it only together with the tests that pin its boundaries.
func LooksLikeAdvice(text string) bool {
	if len(text) > adviceLengthThreshold {
		return true
	}

	if listMarkerPattern.MatchString(text) {
		return true
	}

	for _, sentence := range sentenceSplitPattern.Split(text, -1) {
		words := strings.Fields(strings.ToLower(sentence))
		if len(words) == 0 {
			continue
		}

		for _, opener := range imperativeOpeners {
			if words[0] == opener {
				return true
			}
		}
	}

	return false
}
