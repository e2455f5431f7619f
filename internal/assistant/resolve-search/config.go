// internal/assistant/resolve-search/config.go
package resolvesearch

import "time"

type Config struct {
	Timeout time.Duration
	// DisableSpellCorrection skips the correction pass entirely.
	DisableSpellCorrection bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
