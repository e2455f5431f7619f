// internal/assistant/respond/config.go
package respond

import "time"

type Config struct {
	// RegistryPath points to a JSON template registry; empty uses the
	// built-in templates.
	RegistryPath string
	CacheTTL     time.Duration
}

func (c *Config) applyDefaults() {
	if c.CacheTTL <= 0 {
		c.CacheTTL = 5 * time.Minute
	}
}

func LoadConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}
