// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Provider ProviderConfig `mapstructure:"provider"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Quota    QuotaConfig    `mapstructure:"quota"`
	Database DatabaseConfig `mapstructure:"database"`
	Identity IdentityConfig `mapstructure:"identity"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ProviderConfig holds the property data provider settings.
type ProviderConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	PropertyType   string `mapstructure:"property_type"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds, per attempt
	MaxAttempts    int    `mapstructure:"max_attempts"`    // total attempts including the first
	InitialBackoff int    `mapstructure:"initial_backoff"` // milliseconds
}

type CacheConfig struct {
	Backend     string `mapstructure:"backend"`       // "memory" or "redis"
	TTL         int    `mapstructure:"ttl"`           // milliseconds
	NotFoundTTL int    `mapstructure:"not_found_ttl"` // milliseconds, 0 disables negative caching
	KeyPrefix   string `mapstructure:"key_prefix"`
}

// QuotaConfig sets the per-user monthly limit. An explicit 0 blocks every
// search; an absent key means DefaultMonthlyLimit.
type QuotaConfig struct {
	MonthlyLimit int `mapstructure:"monthly_limit"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
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

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// IdentityConfig points at the identity provider used for password sign-in.
type IdentityConfig struct {
	URL     string `mapstructure:"url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// AlertsConfig enables quota-exhausted alerts. Each channel is off while its
// target is empty.
type AlertsConfig struct {
	Region      string   `mapstructure:"region"`
	SNSTopicARN string   `mapstructure:"sns_topic_arn"`
	EmailFrom   string   `mapstructure:"email_from"`
	EmailTo     []string `mapstructure:"email_to"`
}
