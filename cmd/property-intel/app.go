// cmd/property-intel/app.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"property-intel/internal/common/aws"
	"property-intel/internal/common/config"
	"property-intel/internal/common/database"
	"property-intel/internal/common/logger"
	"property-intel/internal/common/observability"
	"property-intel/internal/portfolio"
	"property-intel/internal/property/fetch"
	"property-intel/internal/quota"
	"property-intel/internal/search"
	"property-intel/internal/usage"
)

// app holds the explicitly constructed collaborators for one invocation.
type app struct {
	cfg       *config.Config
	log       logger.Logger
	obs       *observability.Observability
	pg        *database.PostgresClient
	redis     *database.RedisClient
	fetcher   *fetch.Client
	tracker   *quota.Tracker
	recorder  *usage.Recorder
	portfolio *portfolio.PostgresStore
	search    *search.Service
	metrics   *http.Server
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format).
		WithFields(map[string]interface{}{"service": cfg.App.Name})

	a := &app{cfg: cfg, log: log}
	a.obs = observability.New(cfg.App.Name, log)

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		a.close()
		return nil, err
	}
	a.pg = pg
	if err := pg.Ping(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	cache, err := a.newCache(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	fetcher, err := fetch.NewClient(fetch.LoadConfig(cfg), cache, log)
	if err != nil {
		a.close()
		return nil, err
	}
	a.fetcher = fetcher

	usageStore := usage.NewPostgresStore(pg.DB)
	a.tracker = quota.NewTracker(usageStore, cfg.Quota.MonthlyLimit, log)
	if err := a.addAlerts(ctx); err != nil {
		a.close()
		return nil, err
	}
	a.recorder = usage.NewRecorder(usageStore, log)
	a.portfolio = portfolio.NewPostgresStore(pg.DB, log)
	a.search = search.NewService(a.fetcher, a.tracker, a.recorder, a.obs, log)

	if cfg.Metrics.Enabled {
		a.startMetricsServer()
	}
	return a, nil
}

func (a *app) newCache(ctx context.Context) (fetch.Cache, error) {
	if a.cfg.Cache.Backend != "redis" {
		return fetch.NewMemoryCache(), nil
	}

	rc, err := database.NewRedis(a.cfg.Database.Redis)
	if err != nil {
		return nil, err
	}
	a.redis = rc
	if err := rc.Ping(ctx); err != nil {
		return nil, err
	}
	return fetch.NewRedisCache(rc.Client, a.cfg.Cache.KeyPrefix), nil
}

func (a *app) addAlerts(ctx context.Context) error {
	alerts := a.cfg.Alerts
	if alerts.SNSTopicARN != "" {
		n, err := aws.NewSNSNotifier(ctx, alerts.Region, alerts.SNSTopicARN)
		if err != nil {
			return err
		}
		a.tracker.AddNotifier(n)
	}
	if alerts.EmailFrom != "" {
		n, err := aws.NewSESNotifier(ctx, alerts.Region, alerts.EmailFrom, alerts.EmailTo)
		if err != nil {
			return err
		}
		a.tracker.AddNotifier(n)
	}
	return nil
}

func (a *app) startMetricsServer() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"service": a.cfg.App.Name,
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	a.metrics = &http.Server{Addr: a.cfg.Metrics.Address, Handler: mux}
	go func() {
		if err := a.metrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Metrics server failed", map[string]interface{}{"error": err})
		}
	}()
	a.log.Info("Metrics server started", map[string]interface{}{"address": a.cfg.Metrics.Address})
}

func (a *app) close() {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.metrics.Shutdown(ctx)
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.pg != nil {
		a.pg.Close()
	}
	if a.obs != nil {
		a.obs.Shutdown()
	}
}
