package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const (
	EnvAppEnv           = "STOREFRONT_APP_ENV"
	EnvPort             = "STOREFRONT_APP_PORT"
	EnvLogLevel         = "STOREFRONT_LOG_LEVEL"
	EnvStorageDriver    = "STOREFRONT_STORAGE_DRIVER"
	EnvStorageDSN       = "STOREFRONT_STORAGE_DSN"
	EnvStorageNamespace = "STOREFRONT_STORAGE_NAMESPACE"
	EnvStorageMaxBytes  = "STOREFRONT_STORAGE_MEMORY_MAX_BYTES"
	EnvRedisURL         = "STOREFRONT_REDIS_URL"
	EnvRedisAddr        = "STOREFRONT_REDIS_ADDR"
	EnvSessionTTL       = "STOREFRONT_SESSION_TTL"
	EnvValidationStrict = "STOREFRONT_VALIDATION_STRICT"
	EnvCatalogBaseURL   = "STOREFRONT_CATALOG_BASE_URL"
	EnvMetricsEnabled   = "STOREFRONT_METRICS_ENABLED"
)
