package config

const EnvPrefix = "HANGOUT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "HANGOUT_APP_ENV"
	EnvPort     = "HANGOUT_APP_PORT"
	EnvLogLevel = "HANGOUT_LOG_LEVEL"
	EnvDBDSN    = "HANGOUT_DB_DSN"
	EnvDBHost   = "HANGOUT_DB_HOST"
	EnvDBPort   = "HANGOUT_DB_PORT"
	EnvDBUser   = "HANGOUT_DB_USER"
	EnvDBPass   = "HANGOUT_DB_PASSWORD"
	EnvDBName   = "HANGOUT_DB_NAME"
	EnvDBSSL    = "HANGOUT_DB_SSLMODE"
	EnvRedisURL = "HANGOUT_REDIS_URL"

	EnvJWTSecret  = "HANGOUT_JWT_SECRET"
	EnvJWTIssuer  = "HANGOUT_JWT_ISSUER"
	EnvJWTExpMins = "HANGOUT_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID      = "HANGOUT_GCP_PROJECT_ID"
	EnvGCSBucket         = "HANGOUT_GCS_BUCKET_NAME"
	EnvMaxUploadMB       = "HANGOUT_MAX_UPLOAD_MB"
	EnvPubSubDomainTopic = "HANGOUT_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub   = "HANGOUT_PUBSUB_DOMAIN_SUBSCRIPTION"
	EnvCacheEventTTL     = "HANGOUT_CACHE_EVENT_DETAIL_TTL"
	EnvLedgerLimit       = "HANGOUT_RATE_LIMIT_LEDGER_LIMIT"
	EnvLedgerWindow      = "HANGOUT_RATE_LIMIT_LEDGER_WINDOW"
	EnvCORSOrigins       = "HANGOUT_CORS_ALLOWED_ORIGINS"
	EnvHousekeepingEvery = "HANGOUT_HOUSEKEEPING_INTERVAL"
	EnvOutboxRetention   = "HANGOUT_OUTBOX_RETENTION_DAYS"
)

// legacyDBEnvVars must all be present when no DSN is given.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
