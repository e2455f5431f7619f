// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig                  `mapstructure:"app"`
	Server     ServerConfig               `mapstructure:"server"`
	Database   DatabaseConfig             `mapstructure:"database"`
	Assistant  AssistantConfig            `mapstructure:"assistant"`
	Components map[string]ComponentConfig `mapstructure:"components"`
	Rules      RulesConfig                `mapstructure:"rules"`
	Template   TemplateConfig             `mapstructure:"template"`
	Session    SessionConfig              `mapstructure:"session"`
	APIs       APIsConfig                 `mapstructure:"apis"`
	Logging    LoggingConfig              `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	MetricsAddress  string `mapstructure:"metrics_address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	Index      string   `mapstructure:"index"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ComponentConfig holds the core settings applicable to every pipeline component.
type ComponentConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Timeout    int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries int  `mapstructure:"max_retries"` // For error handling
}

// --- Assistant Configuration ---

// AssistantConfig holds tuning knobs for the conversation pipeline.
type AssistantConfig struct {
	SpellCutoff        float64 `mapstructure:"spell_cutoff"`
	MaxResults         int     `mapstructure:"max_results"`
	MaxFieldLength     int     `mapstructure:"max_field_length"`
	OnlineLookupAlways bool    `mapstructure:"online_lookup_always"`
	SuggestedLimit     int     `mapstructure:"suggested_limit"`
}

// RulesConfig points at the intent rule registry on disk.
type RulesConfig struct {
	RegistryPath string `mapstructure:"registry_path"`
}

// SessionConfig holds session store settings.
type SessionConfig struct {
	TTL         int `mapstructure:"ttl"`          // seconds
	MaxSessions int `mapstructure:"max_sessions"` // in-memory cap
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	WebSearch struct {
		BaseURL  string `mapstructure:"base_url"`
		APIKey   string `mapstructure:"api_key"`
		EngineID string `mapstructure:"engine_id"`
		Timeout  int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"web_search"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// TemplateConfig holds settings for the response builder.
type TemplateConfig struct {
	RegistryPath string `mapstructure:"registry_path"`
}
