package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort     = 8080
	DefaultServerMode     = "release"
	DefaultMaxBodySize    = 32 << 20
	DefaultRedisKeyPrefix = "cmap:"
	DefaultKafkaTopic     = "continuity.zone-reports"
	DefaultPublishTimeout = 2 * time.Second
	DefaultMinIOBucket    = "reports"
	DefaultPresignExpiry  = 24 * time.Hour
	DefaultGeocodeRate    = 1.0
	DefaultGeocodeBurst   = 5

	DefaultMetricsNamespace = "cmap"
	DefaultMetricsPath      = "/metrics"

	DefaultMaxRecords     = 3000
	DefaultCacheTTL       = time.Hour
	DefaultMaxUploadBytes = 20 << 20

	DefaultGeocodingURL       = "https://nominatim.openstreetmap.org"
	DefaultGeocodingUserAgent = "continuidad_app"
	DefaultCountryCode        = "co"
	DefaultCountryName        = "Colombia"
	DefaultGeocodingTimeout   = 10 * time.Second
	DefaultSuggestLimit       = 5
	DefaultMinQueryLength     = 4

	DefaultReportTitle   = "REPORTE DE EMERGENCIA - COLMÉDICA"
	DefaultMaxTableRows  = 50
	DefaultRenderTimeout = 10 * time.Second
	DefaultTimeZone      = "America/Bogota"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultEventTypes is the selectable list of emergency event types.
var DefaultEventTypes = []string{
	"Evento Social (Marchas, Protestas)",
	"Evento Climático (Inundaciones, Derrumbe)",
	"Evento de Tráfico (Accidentes, Bloqueos)",
	"Falla de Infraestructura",
	"Otro",
}

// DefaultFacilities returns the built-in facility set used when the
// configuration file does not list any.
func DefaultFacilities() []FacilityConfig {
	site := func(name, addr string, lat, lon float64) FacilityConfig {
		return FacilityConfig{Name: name, Address: addr, Latitude: lat, Longitude: lon, Color: "blue", Icon: "hospital"}
	}
	return []FacilityConfig{
		site("Colmédica Belaire", "Centro Comercial Belaire Plaza, Cl. 153 #6-65, Bogotá", 4.729454000113993, -74.02444216931787),
		site("Colmédica Bulevar Niza", "Centro Comercial Bulevar Niza, Av. Calle 58 #127-59, Bogotá", 4.712693239837536, -74.07140074602322),
		site("Colmédica Calle 185", "Centro Comercial Santafé, Cl. 185 #45-03, Bogotá", 4.763543959141223, -74.04612616931786),
		site("Colmédica Cedritos", "Edificio HHC, Cl. 140 #11-45, Bogotá", 4.718879348342116, -74.03609218650581),
		site("Colmédica Chapinero", "Cr. 7 #52-53, Chapinero, Bogotá", 4.640908410923512, -74.06373898409286),
		site("Colmédica Colina Campestre", "Centro Comercial Sendero de la Colina, Cl. 151 #54-15, Bogotá", 4.73397996072128, -74.05613864417634),
		site("Colmédica Centro Médico Colmédica Country Park", "Autopista Norte No 122 - 96, Bogotá", 4.670067290638234, -74.05758327116473),
		site("Colmédica Metrópolis", "Centro Comercial Metrópolis, Av. Cra. 68 #75A-50, Bogotá", 4.6812256618088615, -74.08315698409288),
		site("Colmédica Multiplaza", "Centro Comercial Multiplaza, Cl. 19A #72-57, Bogotá", 4.652573284106405, -74.12629091534289),
		site("Colmédica Plaza Central", "Centro Comercial Plaza Central, Cra. 65 #11-50, Bogotá", 4.633464230539147, -74.11621916981814),
		site("Colmédica Salitre Capital", "Capital Center II, Av. Cl. 26 #69C-03, Bogotá", 4.660602588141229, -74.10864383068576),
		site("Colmédica Suba", "Alpaso Plaza, Av. Cl. 145 #103B-69, Bogotá", 4.7499608085787575, -74.08737693178564),
		site("Colmédica Centro Médico Torre Santa Bárbara", "Autopista Norte No 122 - 96, Bogotá", 4.70404406297091, -74.053790252428),
		site("Colmédica Unicentro Occidente", "Centro Comercial Unicentro Occidente, Cra. 111C #86-05, Bogotá", 4.724354935414492, -74.11430016931786),
		site("Colmédica Usaquén", "Centro Comercial Usaquén, Cra. 7 #120-20, Bogotá", 4.6985109910547695, -74.03076183068214),
	}
}

// ApplyDefaults fills every zero-value field in cfg with its default.
// Explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Server.GeocodeRate == 0 {
		cfg.Server.GeocodeRate = DefaultGeocodeRate
	}
	if cfg.Server.GeocodeBurst == 0 {
		cfg.Server.GeocodeBurst = DefaultGeocodeBurst
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.PublishTimeout == 0 {
		cfg.Kafka.PublishTimeout = DefaultPublishTimeout
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.PresignExpiry == 0 {
		cfg.MinIO.PresignExpiry = DefaultPresignExpiry
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Ingest ────────────────────────────────────────────────────────────────
	if cfg.Ingest.MaxRecords == 0 {
		cfg.Ingest.MaxRecords = DefaultMaxRecords
	}
	if cfg.Ingest.CacheTTL == 0 {
		cfg.Ingest.CacheTTL = DefaultCacheTTL
	}
	if cfg.Ingest.MaxUploadBytes == 0 {
		cfg.Ingest.MaxUploadBytes = DefaultMaxUploadBytes
	}

	// ── Geocoding ─────────────────────────────────────────────────────────────
	if cfg.Geocoding.BaseURL == "" {
		cfg.Geocoding.BaseURL = DefaultGeocodingURL
	}
	if cfg.Geocoding.UserAgent == "" {
		cfg.Geocoding.UserAgent = DefaultGeocodingUserAgent
	}
	if cfg.Geocoding.CountryCode == "" {
		cfg.Geocoding.CountryCode = DefaultCountryCode
	}
	if cfg.Geocoding.CountryName == "" {
		cfg.Geocoding.CountryName = DefaultCountryName
	}
	if cfg.Geocoding.Timeout == 0 {
		cfg.Geocoding.Timeout = DefaultGeocodingTimeout
	}
	if cfg.Geocoding.SuggestLimit == 0 {
		cfg.Geocoding.SuggestLimit = DefaultSuggestLimit
	}
	if cfg.Geocoding.MinQueryLength == 0 {
		cfg.Geocoding.MinQueryLength = DefaultMinQueryLength
	}

	// ── Report ────────────────────────────────────────────────────────────────
	if cfg.Report.Title == "" {
		cfg.Report.Title = DefaultReportTitle
	}
	if cfg.Report.MaxTableRows == 0 {
		cfg.Report.MaxTableRows = DefaultMaxTableRows
	}
	if len(cfg.Report.EventTypes) == 0 {
		cfg.Report.EventTypes = append([]string(nil), DefaultEventTypes...)
	}
	if cfg.Report.RenderTimeout == 0 {
		cfg.Report.RenderTimeout = DefaultRenderTimeout
	}
	if cfg.Report.TimeZone == "" {
		cfg.Report.TimeZone = DefaultTimeZone
	}

	// ── Facilities ────────────────────────────────────────────────────────────
	if len(cfg.Facilities) == 0 {
		cfg.Facilities = DefaultFacilities()
	}
}

//Personal.AI order the ending
