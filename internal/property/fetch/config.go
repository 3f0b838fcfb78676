// internal/property/fetch/config.go
package fetch

import (
	"time"

	"property-intel/internal/common/config"
)

type Config struct {
	BaseURL        string
	APIKey         string
	PropertyType   string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	CacheTTL       time.Duration
	// NotFoundTTL keeps empty provider answers; zero disables it.
	NotFoundTTL time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		BaseURL:        cfg.Provider.BaseURL,
		APIKey:         cfg.Provider.APIKey,
		PropertyType:   cfg.Provider.PropertyType,
		Timeout:        config.GetDuration(cfg.Provider.Timeout),
		MaxAttempts:    cfg.Provider.MaxAttempts,
		InitialBackoff: config.GetDuration(cfg.Provider.InitialBackoff),
		CacheTTL:       config.GetDuration(cfg.Cache.TTL),
		NotFoundTTL:    config.GetDuration(cfg.Cache.NotFoundTTL),
	}
}
