// internal/assistant/correct-spelling/models.go
package correctspelling

type Input struct {
	Token string `json:"token"`
	// Cutoff overrides the configured ratio when > 0.
	Cutoff float64 `json:"cutoff,omitempty"`
}

type Output struct {
	Result       string   `json:"result"`
	WasCorrected bool     `json:"wasCorrected"`
	Suggestions  []string `json:"suggestions,omitempty"`
}
