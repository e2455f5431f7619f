// internal/assistant/parse-intent/models.go
package parseintent

import "listing-assistant/internal/models"

type Input struct {
	Text string `json:"text"`
}

type Output struct {
	Intent        models.Intent `json:"intent"`
	MatchedPhrase string        `json:"matchedPhrase,omitempty"`
	RulePriority  int           `json:"rulePriority,omitempty"`
}
