// internal/online/websearch/config.go
package websearch

import "time"

type Config struct {
	BaseURL    string
	APIKey     string
	EngineID   string
	MaxResults int
	Timeout    time.Duration
}

func (c *Config) applyDefaults() {
	if c.MaxResults <= 0 {
		c.MaxResults = 5
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}
