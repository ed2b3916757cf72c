package cfg

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	CacheBackendPostgres = "postgres"
	CacheBackendRedis    = "redis"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AviationStackConfig struct {
	BaseURL        string
	AccessKey      string
	TimeoutSeconds int
	RateLimitRPS   float64
	RateLimitBurst int
}

type CacheConfig struct {
	Backend                string
	TTLMinutes             int
	CleanupIntervalMinutes int
}

type SearchConfig struct {
	Coalesce         bool
	AvailabilityMode string
}

type ObservabilityConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
	Environment  string
}

type Config struct {
	AppEnv          string
	AppPort         string
	SnowflakeNodeID int64
	Redis           RedisConfig
	Postgres        PostgresConfig
	AviationStack   AviationStackConfig
	Cache           CacheConfig
	Search          SearchConfig
	Observability   ObservabilityConfig
}

func Load() (*Config, error) {
	var errs []error

	// .env is optional; real deployments inject the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.New("failed load cfg: " + err.Error())
	}

	appEnv := mustEnv("APP_ENV", &errs)
	appPort := envOr("APP_PORT", "8080")

	backend := envOr("CACHE_BACKEND", CacheBackendPostgres)
	if backend != CacheBackendPostgres && backend != CacheBackendRedis {
		errs = append(errs, errors.New("invalid env: CACHE_BACKEND must be postgres or redis"))
	}

	var redisCfg RedisConfig
	var pgCfg PostgresConfig
	switch backend {
	case CacheBackendRedis:
		redisCfg = RedisConfig{
			Host:     mustEnv("REDIS_HOST", &errs),
			Port:     mustEnv("REDIS_PORT", &errs),
			Password: os.Getenv("REDIS_PASSWORD"),
		}
	default:
		pgCfg = PostgresConfig{
			Host:     mustEnv("POSTGRES_HOST", &errs),
			Port:     mustEnv("POSTGRES_PORT", &errs),
			User:     mustEnv("POSTGRES_USER", &errs),
			Password: mustEnv("POSTGRES_PASSWORD", &errs),
			DBName:   mustEnv("POSTGRES_DB", &errs),
			SSLMode:  envOr("POSTGRES_SSLMODE", "disable"),
		}
	}

	aviationBaseURL := mustEnv("AVIATIONSTACK_BASE_URL", &errs)
	aviationAccessKey := mustEnv("AVIATIONSTACK_ACCESS_KEY", &errs)

	availabilityMode := envOr("SEAT_AVAILABILITY_MODE", "random")
	if availabilityMode != "random" && availabilityMode != "snapshot" {
		errs = append(errs, errors.New("invalid env: SEAT_AVAILABILITY_MODE must be random or snapshot"))
	}

	config := &Config{
		AppEnv:          appEnv,
		AppPort:         appPort,
		SnowflakeNodeID: int64(intEnv("SNOWFLAKE_NODE_ID", 1, &errs)),
		Redis:           redisCfg,
		Postgres:        pgCfg,
		AviationStack: AviationStackConfig{
			BaseURL:        aviationBaseURL,
			AccessKey:      aviationAccessKey,
			TimeoutSeconds: intEnv("AVIATIONSTACK_TIMEOUT_SECONDS", 10, &errs),
			RateLimitRPS:   floatEnv("AVIATIONSTACK_RATE_LIMIT_RPS", 5, &errs),
			RateLimitBurst: intEnv("AVIATIONSTACK_RATE_LIMIT_BURST", 10, &errs),
		},
		Cache: CacheConfig{
			Backend:                backend,
			TTLMinutes:             intEnv("CACHE_TTL_MINUTES", 30, &errs),
			CleanupIntervalMinutes: intEnv("CACHE_CLEANUP_INTERVAL_MINUTES", 15, &errs),
		},
		Search: SearchConfig{
			Coalesce:         boolEnv("SEARCH_COALESCE", false, &errs),
			AvailabilityMode: availabilityMode,
		},
		Observability: ObservabilityConfig{
			Enabled:      boolEnv("OTEL_ENABLED", false, &errs),
			OTLPEndpoint: envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envOr("OTEL_SERVICE_NAME", "tixgo-flights"),
			Environment:  appEnv,
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return config, nil
}

func mustEnv(key string, errs *[]error) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errs = append(*errs, errors.New("missing env: "+key))
	}
	return value
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int, errs *[]error) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, errors.New("conversion failed env: "+key))
		return fallback
	}
	return n
}

func floatEnv(key string, fallback float64, errs *[]error) float64 {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		*errs = append(*errs, errors.New("conversion failed env: "+key))
		return fallback
	}
	return f
}

func boolEnv(key string, fallback bool, errs *[]error) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, errors.New("conversion failed env: "+key))
		return fallback
	}
	return b
}
