// internal/assistant/parse-query/config.go
package parsequery

type Config struct {
	// StopWords overrides the default stop-word list when non-empty.
	StopWords []string
}

func LoadConfig() *Config {
	return &Config{}
}
