package config

// EnvPrefix is passed to envconfig; every field also names its full variable.
const EnvPrefix = "CATALOG"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "CATALOG_APP_ENV"
	EnvPort     = "CATALOG_APP_PORT"
	EnvLogLevel = "CATALOG_LOG_LEVEL"

	EnvDBDSN  = "CATALOG_DB_DSN"
	EnvDBHost = "CATALOG_DB_HOST"
	EnvDBUser = "CATALOG_DB_USER"
	EnvDBName = "CATALOG_DB_NAME"

	EnvRedisURL = "CATALOG_REDIS_URL"

	EnvJWTSecret              = "CATALOG_JWT_SECRET"
	EnvJWTIssuer              = "CATALOG_JWT_ISSUER"
	EnvJWTExpMins             = "CATALOG_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "CATALOG_REFRESH_TOKEN_TTL_MINUTES"

	EnvKafkaBrokers    = "CATALOG_KAFKA_BROKERS"
	EnvOutboxRetention = "CATALOG_OUTBOX_RETENTION"

	EnvCORSAllowedOrigins = "CATALOG_CORS_ALLOWED_ORIGINS"

	EnvCronJobs       = "CATALOG_CRON_JOBS"
	EnvCronJobTimeout = "CATALOG_CRON_JOB_TIMEOUT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
