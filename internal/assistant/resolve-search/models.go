// internal/assistant/resolve-search/models.go
package resolvesearch

import "listing-assistant/internal/models"

type Input struct {
	Query string `json:"query"`
}

type Output struct {
	Results      []models.Listing `json:"results"`
	Keyword      string           `json:"keyword"`
	Location     string           `json:"location"`
	WasCorrected bool             `json:"wasCorrected"`
	Tier         string           `json:"tier,omitempty"`
}
