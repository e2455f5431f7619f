// internal/assistant/flow/config.go
package flow

// Config holds tunables for the conversation flow engine.
type Config struct {
	// MaxResults caps how many search results a single reply renders.
	MaxResults int `mapstructure:"max_results"`
	// CategoryLimit caps the popular-category suggestions on guidance prompts.
	CategoryLimit int `mapstructure:"category_limit"`
}

func (c *Config) applyDefaults() {
	if c.MaxResults <= 0 {
		c.MaxResults = 5
	}
	if c.CategoryLimit <= 0 {
		c.CategoryLimit = 8
	}
}
