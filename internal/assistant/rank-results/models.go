// internal/assistant/rank-results/models.go
package rankresults

import "listing-assistant/internal/models"

type Input struct {
	Results []models.OnlineResult `json:"results"`
	// Keyword biases name/category matches when non-empty.
	Keyword string `json:"keyword,omitempty"`
}

type Output struct {
	Ranked []RankedResult `json:"ranked"`
}

type RankedResult struct {
	models.OnlineResult
	FinalScore      float64 `json:"finalScore"`
	RatingScore     float64 `json:"ratingScore"`
	PopularityScore float64 `json:"popularityScore"`
	RelevanceScore  float64 `json:"relevanceScore"`
}
