// Package filtertext screens raw utterances for junk input before the
// flow engine sees them.
package filtertext

import (
	"strings"
)

// allowedGreetings pass regardless of length.
var allowedGreetings = []string{
	"hello", "hi", "hey", "greetings", "good morning", "good afternoon",
	"good evening", "hi there", "hello there", "hey there",
}

// IsJunk reports whether the utterance looks machine-generated or empty:
// blank input, single characters, or long repeated-character runs.
func IsJunk(text string) bool {
	if text == "" {
		return true
	}

	textLower := strings.ToLower(strings.TrimSpace(text))

	for _, g := range allowedGreetings {
		if textLower == g || strings.HasPrefix(textLower, g) {
			return false
		}
	}

	if len(strings.TrimSpace(text)) < 2 {
		return true
	}

	return hasRepeatedRun(text, 7)
}

// hasRepeatedRun reports whether any rune repeats n or more times in a row.
func hasRepeatedRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run >= n {
			return true
		}
	}
	return false
}
