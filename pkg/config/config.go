package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Storage  StorageConfig
	DB       DBConfig
	Redis    RedisConfig
	Session  SessionConfig
	Checkout CheckoutConfig
	Catalog  CatalogConfig
	Metrics  MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects the durable backend. Memory keeps state for the process lifetime only.
type StorageConfig struct {
	Driver         string `envconfig:"STOREFRONT_STORAGE_DRIVER" default:"sqlite"`
	DSN            string `envconfig:"STOREFRONT_STORAGE_DSN" default:"file:storefront.db?cache=shared"`
	Namespace      string `envconfig:"STOREFRONT_STORAGE_NAMESPACE" default:"default"`
	MemoryMaxBytes int    `envconfig:"STOREFRONT_STORAGE_MEMORY_MAX_BYTES" default:"0"`
	AutoMigrate    bool   `envconfig:"STOREFRONT_STORAGE_AUTO_MIGRATE" default:"true"`
}

// UsesSQL reports whether the durable lifetime is backed by a database.
func (s StorageConfig) UsesSQL() bool {
	return s.normalizedDriver() != DriverMemory
}

func (s StorageConfig) normalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(s.Driver))
}

func (s *StorageConfig) validate() error {
	s.Driver = s.normalizedDriver()
	switch s.Driver {
	case DriverMemory:
		return nil
	case DriverSQLite, DriverPostgres:
		if strings.TrimSpace(s.DSN) == "" {
			return fmt.Errorf("%s is required for driver %s", EnvStorageDSN, s.Driver)
		}
		if strings.TrimSpace(s.Namespace) == "" {
			return fmt.Errorf("%s must not be blank", EnvStorageNamespace)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvStorageDriver, s.Driver)
	}
}

type DBConfig struct {
	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig backs the session lifetime. Leaving URL and Address empty keeps sessions in memory.
type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type SessionConfig struct {
	TTL time.Duration `envconfig:"STOREFRONT_SESSION_TTL" default:"30m"`
}

type CheckoutConfig struct {
	// StrictValidation anchors the expiration and CVV patterns to the whole value.
	StrictValidation bool `envconfig:"STOREFRONT_VALIDATION_STRICT" default:"false"`
}

type CatalogConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_CATALOG_BASE_URL" default:"https://dummyjson.com"`
	Timeout time.Duration `envconfig:"STOREFRONT_CATALOG_TIMEOUT" default:"10s"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"STOREFRONT_METRICS_ENABLED" default:"true"`
}
