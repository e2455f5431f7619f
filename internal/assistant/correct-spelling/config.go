// internal/assistant/correct-spelling/config.go
package correctspelling

type Config struct {
	// Cutoff is the minimum similarity ratio for a correction candidate.
	Cutoff float64
	// MaxSuggestions caps the candidate list for whole-token matching.
	MaxSuggestions int
}

func LoadConfig() *Config {
	return &Config{
		Cutoff:         0.6,
		MaxSuggestions: 3,
	}
}
