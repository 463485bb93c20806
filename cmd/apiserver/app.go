package main

import (
	"io"
	"net/http"
	"time"

	"github.com/turtacn/Continuity-Map/internal/application/continuity"
	"github.com/turtacn/Continuity-Map/internal/application/reporting"
	"github.com/turtacn/Continuity-Map/internal/config"
	"github.com/turtacn/Continuity-Map/internal/domain/facility"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/database/redis"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/geocoding/nominatim"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/storage/minio"
	httpserver "github.com/turtacn/Continuity-Map/internal/interfaces/http"
	"github.com/turtacn/Continuity-Map/internal/interfaces/http/handlers"
	"github.com/turtacn/Continuity-Map/internal/interfaces/http/middleware"
)

const limiterCleanupInterval = 5 * time.Minute

// app holds the wired route tree and everything that must be closed on exit.
type app struct {
	router  http.Handler
	closers []io.Closer
	stops   []func()
	logger  logging.Logger
}

// Close releases infrastructure clients in reverse order of creation.
func (a *app) Close() {
	for i := len(a.stops) - 1; i >= 0; i-- {
		a.stops[i]()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("close failed", logging.Err(err))
		}
	}
}

// buildApp wires the optional backends, the continuity service and the HTTP
// surface.  Redis, MinIO and Kafka are only dialled when configured.
func buildApp(cfg *config.Config, logger logging.Logger) (*app, error) {
	a := &app{logger: logger}
	var checkers []handlers.HealthChecker

	var (
		collector prometheus.MetricsCollector
		metrics   *prometheus.AppMetrics
	)
	if cfg.Metrics.Enabled {
		var err error
		collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			Subsystem:            cfg.Metrics.Subsystem,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return nil, err
		}
		metrics = prometheus.NewAppMetrics(collector)
	}

	registry, err := facility.NewRegistry(cfg.Facilities)
	if err != nil {
		return nil, err
	}
	docOpts, err := reporting.DocumentOptionsFromConfig(cfg.Report)
	if err != nil {
		return nil, err
	}

	store := continuity.NewMemorySessionStore()
	deps := continuity.Dependencies{
		Store:     store,
		Registry:  registry,
		Documents: reporting.NewDocumentRenderer(docOpts, reporting.NewPNGChartRenderer(0, 0), logger.Named("document")),
		Geocoder:  nominatim.NewClient(cfg.Geocoding, logger.Named("geocoder")),
		Metrics:   metrics,
		Logger:    logger.Named("continuity"),
	}

	if cfg.Redis.Addr != "" {
		rc, err := redis.NewClient(&cfg.Redis, logger.Named("redis"))
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, rc)
		cache := redis.NewRedisCache(rc, logger, redis.WithPrefix(cfg.Redis.KeyPrefix))
		deps.Cache = redis.NewDatasetCache(cache, cfg.Ingest.CacheTTL, logger)
		checkers = append(checkers, handlers.NewCheckFunc("redis", rc.Ping))
	} else {
		logger.Info("redis not configured, datasets are not cached")
	}

	if cfg.MinIO.Endpoint != "" {
		mc, err := minio.NewMinIOClient(&cfg.MinIO, logger.Named("minio"))
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, mc)
		deps.Archive = minio.NewReportArchive(mc, logger)
		checkers = append(checkers, handlers.NewCheckFunc("minio", mc.HealthCheck))
	} else {
		logger.Info("minio not configured, exports are not archived")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka, logger.Named("kafka"))
		if err != nil {
			a.Close()
			return nil, err
		}
		publisher := kafka.NewReportPublisher(producer, cfg.Kafka.Topic, logger)
		a.closers = append(a.closers, publisher)
		deps.Publisher = publisher
	} else {
		logger.Info("kafka not configured, report events are not published")
	}

	svc, err := continuity.NewService(deps, continuity.Options{
		MaxRecords:     cfg.Ingest.MaxRecords,
		SampleSeed:     sampleSeed(cfg.Ingest.SampleSeed),
		MaxUploadBytes: cfg.Ingest.MaxUploadBytes,
		PublishTimeout: cfg.Kafka.PublishTimeout,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	limiter := middleware.NewTokenBucketLimiter(cfg.Server.GeocodeRate, cfg.Server.GeocodeBurst, limiterCleanupInterval)
	a.stops = append(a.stops, limiter.Stop)

	sessionOpts := []handlers.SessionHandlerOption{}
	if cfg.Ingest.MaxUploadBytes > 0 {
		sessionOpts = append(sessionOpts, handlers.WithMaxUploadBytes(cfg.Ingest.MaxUploadBytes))
	}

	skip := []string{"/healthz", "/healthz/detail", "/readyz", cfg.Metrics.Path}

	a.router = httpserver.NewRouter(httpserver.RouterConfig{
		SessionHandler:    handlers.NewSessionHandler(svc, logger.Named("http"), sessionOpts...),
		ReferenceHandler:  handlers.NewReferenceHandler(svc, logger.Named("http")),
		HealthHandler:     handlers.NewHealthHandler(version, store, checkers...),
		CORSMiddleware:    middleware.NewCORSMiddleware(middleware.CORSConfigForOrigins(cfg.Server.AllowedOrigins)),
		LoggingMiddleware: middleware.NewLoggingMiddleware(logger.Named("access"), middleware.DefaultLoggingConfig()),
		MetricsMiddleware: middleware.NewMetricsMiddleware(metrics, skip...),
		GeocodeLimiter:    limiter,
		Logger:            logger,
		MetricsCollector:  collector,
		MetricsPath:       cfg.Metrics.Path,
	})

	return a, nil
}

func sampleSeed(seed int64) *int64 {
	if seed == 0 {
		return nil
	}
	return &seed
}

//Personal.AI order the ending
