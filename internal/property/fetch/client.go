// internal/property/fetch/client.go
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"property-intel/internal/common/errors"
	httpclient "property-intel/internal/common/http"
	"property-intel/internal/common/logger"
	"property-intel/internal/common/metrics"
	"property-intel/internal/models"
)

const propertiesPath = "/properties"

// Client looks up property facts from the provider, caching successful
// lookups and retrying transient failures with doubling backoff.
type Client struct {
	config *Config
	http   *httpclient.Client
	cache  Cache
	logger logger.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

type Option func(*Client)

// WithClock overrides the clock used to stamp fetched records.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithSleep overrides how the client waits between attempts.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

// NewClient fails with a configuration error when no API key or base URL is
// set.
func NewClient(cfg *Config, cache Cache, log logger.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.NewConfigurationError("provider API key is not configured")
	}
	if cfg.BaseURL == "" {
		return nil, errors.NewConfigurationError("provider base URL is not configured")
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cache == nil {
		cache = NewMemoryCache()
	}

	c := &Client{
		config: cfg,
		http: httpclient.NewClient(cfg.BaseURL, cfg.Timeout, map[string]string{
			"Accept":    "application/json",
			"X-Api-Key": cfg.APIKey,
		}),
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "fetch-client"}),
		now:    time.Now,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Fetch returns a cached record when one is live, otherwise queries the provider.
func (c *Client) Fetch(ctx context.Context, address, city, state string) Result {
	key := models.NormalizeKey(address, city, state)

	if record, ok := c.lookup(ctx, key); ok {
		if record == nil {
			return Result{Outcome: OutcomeNotFound, CacheHit: true}
		}
		return Result{Outcome: OutcomeFound, Record: record, CacheHit: true}
	}

	params := url.Values{}
	params.Set("address", address)
	params.Set("city", city)
	params.Set("state", state)
	if c.config.PropertyType != "" {
		params.Set("propertyType", c.config.PropertyType)
	}

	delay := c.config.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		data, retryable, err := c.attempt(ctx, params)
		switch {
		case err == nil && data == nil:
			c.logger.Info("No property data found", map[string]interface{}{
				"key":      key,
				"attempts": attempt,
			})
			c.rememberNotFound(ctx, key)
			return Result{Outcome: OutcomeNotFound, Attempts: attempt}
		case err == nil:
			record := c.stamp(parseRecord(data), key, params)
			if cacheErr := c.cache.Set(ctx, key, record, c.config.CacheTTL); cacheErr != nil {
				c.logger.Warn("Failed to cache property record", map[string]interface{}{
					"key":   key,
					"error": cacheErr,
				})
			}
			return Result{Outcome: OutcomeFound, Record: record, Attempts: attempt}
		case !retryable:
			return Result{Outcome: OutcomeFatalError, Err: err, Attempts: attempt}
		}

		lastErr = err
		if attempt == c.config.MaxAttempts {
			break
		}

		c.logger.Warn("Provider call failed, retrying", map[string]interface{}{
			"key":     key,
			"attempt": attempt,
			"delay":   delay.String(),
			"error":   err,
		})
		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			return Result{
				Outcome:  OutcomeTransientError,
				Err:      errors.NewTransientProviderError(attempt, sleepErr),
				Attempts: attempt,
			}
		}
		delay *= 2
	}

	c.logger.Error("Provider retries exhausted", map[string]interface{}{
		"key":      key,
		"attempts": c.config.MaxAttempts,
		"error":    lastErr,
	})
	return Result{
		Outcome:  OutcomeTransientError,
		Err:      errors.NewTransientProviderError(c.config.MaxAttempts, lastErr),
		Attempts: c.config.MaxAttempts,
	}
}

// attempt performs one provider call. A nil map with a nil error means the
// provider returned an empty result.
func (c *Client) attempt(ctx context.Context, params url.Values) (map[string]interface{}, bool, error) {
	start := time.Now()
	resp, err := c.http.Get(ctx, propertiesPath, params)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	class := metrics.StatusClass(status)
	metrics.ProviderAttempts.WithLabelValues(class).Inc()
	metrics.ProviderLatency.WithLabelValues(class).Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, true, fmt.Errorf("provider request: %w", err)
	}

	switch {
	case status == http.StatusOK:
		data, decodeErr := decodeFirst(resp.Body)
		if decodeErr != nil {
			return nil, false, errors.NewProviderRejectedError(status, decodeErr.Error())
		}
		return data, false, nil
	case status == http.StatusUnauthorized:
		return nil, false, errors.NewConfigurationError("provider rejected the API key")
	case status == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("provider rate limit (status %d)", status)
	case status >= 500:
		return nil, true, fmt.Errorf("provider server error (status %d)", status)
	default:
		return nil, false, errors.NewProviderRejectedError(status, string(resp.Body))
	}
}

func (c *Client) rememberNotFound(ctx context.Context, key string) {
	if c.config.NotFoundTTL <= 0 {
		return
	}
	if err := c.cache.Set(ctx, key, nil, c.config.NotFoundTTL); err != nil {
		c.logger.Warn("Failed to cache empty provider result", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
}

// lookup reports ok with a nil record for a cached empty provider result.
func (c *Client) lookup(ctx context.Context, key string) (*models.PropertyRecord, bool) {
	backend := c.cache.Backend()
	record, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Property cache read failed, treating as miss", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		metrics.CacheLookups.WithLabelValues(backend, "error").Inc()
		return nil, false
	}
	if !ok {
		metrics.CacheLookups.WithLabelValues(backend, "miss").Inc()
		return nil, false
	}
	if record == nil {
		metrics.CacheLookups.WithLabelValues(backend, "negative_hit").Inc()
		return nil, true
	}
	metrics.CacheLookups.WithLabelValues(backend, "hit").Inc()
	return record, true
}

func (c *Client) stamp(record *models.PropertyRecord, key string, params url.Values) *models.PropertyRecord {
	record.FetchedAt = c.now().UTC()
	record.CacheKey = key
	record.SearchParams = make(map[string]string, len(params))
	for k := range params {
		record.SearchParams[k] = params.Get(k)
	}
	return record
}

// Ping issues one uncached lookup for a known address to verify
// connectivity and credentials.
func (c *Client) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("address", "123 Main St")
	params.Set("city", "Los Angeles")
	params.Set("state", "CA")
	if c.config.PropertyType != "" {
		params.Set("propertyType", c.config.PropertyType)
	}

	_, retryable, err := c.attempt(ctx, params)
	if err == nil {
		return nil
	}
	if retryable {
		return errors.NewTransientProviderError(1, err)
	}
	return err
}
