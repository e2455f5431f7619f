// internal/assistant/rank-results/config.go
package rankresults

import "time"

type Config struct {
	Timeout  time.Duration
	MaxItems int
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.MaxItems <= 0 {
		c.MaxItems = 5
	}
}

func LoadConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}
