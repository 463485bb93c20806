// Package config defines the configuration structures for Continuity-Map.
// No I/O lives in this file; only plain data types and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Continuity-Map/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// AllowedOrigins lists browser origins allowed to call the API.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// GeocodeRate bounds geocoding requests per client, per second.
	GeocodeRate  float64 `mapstructure:"geocode_rate"`
	GeocodeBurst int     `mapstructure:"geocode_burst"`
}

// RedisConfig holds Redis connection parameters.  An empty Addr disables the
// dataset cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds the report-event producer parameters.  No brokers means
// events are not published.  PublishTimeout bounds delivery of one event.
type KafkaConfig struct {
	Brokers        []string      `mapstructure:"brokers"`
	Topic          string        `mapstructure:"topic"`
	BatchSize      int           `mapstructure:"batch_size"`
	BatchTimeout   time.Duration `mapstructure:"batch_timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	RequiredAcks   int           `mapstructure:"required_acks"`
	Compression    string        `mapstructure:"compression"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

// MinIOConfig holds object-storage parameters for the export archive.  An
// empty Endpoint disables archiving.
type MinIOConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Bucket        string        `mapstructure:"bucket"`
	Region        string        `mapstructure:"region"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// MetricsConfig controls the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
	Path      string `mapstructure:"path"`
}

// IngestConfig controls upload validation.
type IngestConfig struct {
	// MaxRecords caps the clean dataset; larger sets are uniformly sampled.
	MaxRecords int `mapstructure:"max_records"`
	// CacheTTL is how long a validated dataset stays cached by content hash.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// SampleSeed fixes the sampling RNG when non-zero.
	SampleSeed int64 `mapstructure:"sample_seed"`
	// MaxUploadBytes bounds the raw upload size.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// GeocodingConfig points at a Nominatim-compatible search endpoint.
type GeocodingConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	UserAgent      string        `mapstructure:"user_agent"`
	CountryCode    string        `mapstructure:"country_code"`
	CountryName    string        `mapstructure:"country_name"`
	Timeout        time.Duration `mapstructure:"timeout"`
	SuggestLimit   int           `mapstructure:"suggest_limit"`
	MinQueryLength int           `mapstructure:"min_query_length"`
}

// ReportConfig controls document rendering.
type ReportConfig struct {
	Title         string        `mapstructure:"title"`
	MaxTableRows  int           `mapstructure:"max_table_rows"`
	EventTypes    []string      `mapstructure:"event_types"`
	RenderTimeout time.Duration `mapstructure:"render_timeout"`
	TimeZone      string        `mapstructure:"time_zone"`
}

// FacilityConfig describes one fixed facility location.
type FacilityConfig struct {
	Name      string  `mapstructure:"name"`
	Address   string  `mapstructure:"address"`
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
	Color     string  `mapstructure:"color"`
	Icon      string  `mapstructure:"icon"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig      `mapstructure:"server"`
	Log        logging.LogConfig `mapstructure:"log"`
	Redis      RedisConfig       `mapstructure:"redis"`
	Kafka      KafkaConfig       `mapstructure:"kafka"`
	MinIO      MinIOConfig       `mapstructure:"minio"`
	Metrics    MetricsConfig     `mapstructure:"metrics"`
	Ingest     IngestConfig      `mapstructure:"ingest"`
	Geocoding  GeocodingConfig   `mapstructure:"geocoding"`
	Report     ReportConfig      `mapstructure:"report"`
	Facilities []FacilityConfig  `mapstructure:"facilities"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// Any error is fatal at startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("config: kafka.topic is required when brokers are configured")
	}
	if c.MinIO.Endpoint != "" && c.MinIO.Bucket == "" {
		return fmt.Errorf("config: minio.bucket is required when endpoint is configured")
	}

	if c.Ingest.MaxRecords < 1 {
		return fmt.Errorf("config: ingest.max_records must be ≥ 1, got %d", c.Ingest.MaxRecords)
	}
	if c.Ingest.CacheTTL < 0 {
		return fmt.Errorf("config: ingest.cache_ttl must not be negative")
	}

	if c.Geocoding.BaseURL == "" {
		return fmt.Errorf("config: geocoding.base_url is required")
	}
	if c.Geocoding.Timeout <= 0 {
		return fmt.Errorf("config: geocoding.timeout must be positive")
	}

	if c.Report.MaxTableRows < 1 {
		return fmt.Errorf("config: report.max_table_rows must be ≥ 1, got %d", c.Report.MaxTableRows)
	}
	if len(c.Report.EventTypes) == 0 {
		return fmt.Errorf("config: report.event_types must not be empty")
	}
	if _, err := time.LoadLocation(c.Report.TimeZone); err != nil {
		return fmt.Errorf("config: report.time_zone %q: %w", c.Report.TimeZone, err)
	}

	return ValidateFacilities(c.Facilities)
}

// ValidateFacilities checks the fixed-location set: names must be present and
// unique, coordinates must be in range.
func ValidateFacilities(list []FacilityConfig) error {
	if len(list) == 0 {
		return errors.New(errors.ErrCodeFacilityConfig, "at least one facility is required")
	}
	seen := make(map[string]struct{}, len(list))
	for i, f := range list {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return errors.New(errors.ErrCodeFacilityConfig, "facility name is empty").
				WithDetail(fmt.Sprintf("index=%d", i))
		}
		if _, dup := seen[name]; dup {
			return errors.New(errors.ErrCodeFacilityConfig, "duplicate facility name").WithDetail(name)
		}
		seen[name] = struct{}{}
		if f.Latitude < -90 || f.Latitude > 90 || f.Longitude < -180 || f.Longitude > 180 {
			return errors.New(errors.ErrCodeFacilityConfig, "facility coordinates out of range").
				WithDetail(fmt.Sprintf("%s: (%g, %g)", name, f.Latitude, f.Longitude))
		}
	}
	return nil
}

//Personal.AI order the ending
