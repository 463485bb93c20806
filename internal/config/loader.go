// Package config provides configuration loading, defaults, and validation for
// Continuity-Map.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "CMAP"

// newViper builds a Viper instance with YAML file type, the CMAP_ env prefix,
// automatic env binding and a "." → "_" key replacer so nested keys like
// "ingest.max_records" resolve to "CMAP_INGEST_MAX_RECORDS".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvKeys(v)
	return v
}

// bindEnvKeys registers scalar keys so that AutomaticEnv can populate them
// even when no config file mentions them; viper.Unmarshal only sees keys it
// already knows about.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"server.port", "server.mode", "server.read_timeout", "server.write_timeout",
		"server.max_body_size", "server.shutdown_timeout", "server.allowed_origins",
		"server.geocode_rate", "server.geocode_burst",
		"log.level", "log.format",
		"redis.addr", "redis.password", "redis.db", "redis.key_prefix",
		"kafka.brokers", "kafka.topic", "kafka.publish_timeout",
		"minio.endpoint", "minio.access_key", "minio.secret_key", "minio.bucket", "minio.use_ssl",
		"metrics.enabled", "metrics.namespace",
		"ingest.max_records", "ingest.cache_ttl", "ingest.sample_seed", "ingest.max_upload_bytes",
		"geocoding.base_url", "geocoding.user_agent", "geocoding.country_code",
		"geocoding.country_name", "geocoding.timeout",
		"report.title", "report.max_table_rows", "report.time_zone",
	} {
		_ = v.BindEnv(key)
	}
}

// Load reads the YAML file at configPath, merges CMAP_* environment
// overrides, applies defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from CMAP_* environment variables.
//
//	CMAP_<SECTION>_<FIELD>   e.g.  CMAP_REDIS_ADDR, CMAP_INGEST_MAX_RECORDS
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadOrDefault loads configPath when non-empty and falls back to the
// environment otherwise.  The CLI uses it for its optional --config flag.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// MustLoad wraps Load and panics on any error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
