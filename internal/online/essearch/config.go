// internal/online/essearch/config.go
package essearch

import "time"

type Config struct {
	Index      string
	MaxResults int
	Timeout    time.Duration
}

func (c *Config) applyDefaults() {
	if c.Index == "" {
		c.Index = "business_listings"
	}
	if c.MaxResults <= 0 {
		c.MaxResults = 5
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
}
