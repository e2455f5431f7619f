// internal/assistant/parse-intent/config.go
package parseintent

import "time"

type Config struct {
	RegistryPath string
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
