package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Media        MediaConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cache        CacheConfig
	Housekeeping HousekeepingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HANGOUT_APP_ENV" required:"true"`
	Port         string `envconfig:"HANGOUT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HANGOUT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HANGOUT_LOG_WARN_STACK" default:"false"`
	// CORSOrigins is a comma separated allow list.
	CORSOrigins []string `envconfig:"HANGOUT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"HANGOUT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"HANGOUT_DB_DSN"`
	Driver string `envconfig:"HANGOUT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HANGOUT_DB_HOST"`
	LegacyPort     int    `envconfig:"HANGOUT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HANGOUT_DB_USER"`
	LegacyPassword string `envconfig:"HANGOUT_DB_PASSWORD"`
	LegacyName     string `envconfig:"HANGOUT_DB_NAME"`
	LegacySSLMode  string `envconfig:"HANGOUT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HANGOUT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HANGOUT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HANGOUT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HANGOUT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HANGOUT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HANGOUT_REDIS_ADDR"`
	Password     string        `envconfig:"HANGOUT_REDIS_PASSWORD"`
	DB           int           `envconfig:"HANGOUT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HANGOUT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HANGOUT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HANGOUT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HANGOUT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HANGOUT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"HANGOUT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"HANGOUT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"HANGOUT_JWT_EXPIRATION_MINUTES" required:"true"`
}

// AccessTTL returns the access token lifetime.
func (j JWTConfig) AccessTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RateLimitConfig bounds how often one account may hit the ledger endpoints.
type RateLimitConfig struct {
	LedgerWindow time.Duration `envconfig:"HANGOUT_RATE_LIMIT_LEDGER_WINDOW" default:"1m"`
	LedgerLimit  int           `envconfig:"HANGOUT_RATE_LIMIT_LEDGER_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"HANGOUT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"HANGOUT_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"HANGOUT_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"HANGOUT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"HANGOUT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"HANGOUT_GCS_BUCKET_NAME" required:"true"`
	PublicBaseURL string `envconfig:"HANGOUT_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
}

type MediaConfig struct {
	MaxUploadMB   int    `envconfig:"HANGOUT_MAX_UPLOAD_MB" default:"10"`
	EventsPrefix  string `envconfig:"HANGOUT_MEDIA_EVENTS_PREFIX" default:"events"`
	MaxFormImages int    `envconfig:"HANGOUT_MEDIA_MAX_FORM_IMAGES" default:"10"`
}

// MaxUploadBytes converts the configured megabyte limit to bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 0
	}
	return int64(m.MaxUploadMB) << 20
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"HANGOUT_PUBSUB_DOMAIN_TOPIC" required:"true"`
	DomainSubscription string `envconfig:"HANGOUT_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"HANGOUT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"HANGOUT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"HANGOUT_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CacheConfig struct {
	EventDetailTTL time.Duration `envconfig:"HANGOUT_CACHE_EVENT_DETAIL_TTL" default:"30s"`
}

// HousekeepingConfig drives the cron worker.
type HousekeepingConfig struct {
	Interval            time.Duration `envconfig:"HANGOUT_HOUSEKEEPING_INTERVAL" default:"1h"`
	OutboxRetentionDays int           `envconfig:"HANGOUT_OUTBOX_RETENTION_DAYS" default:"30"`
	DLQRetentionDays    int           `envconfig:"HANGOUT_OUTBOX_DLQ_RETENTION_DAYS" default:"90"`
	MetricsPort         string        `envconfig:"HANGOUT_HOUSEKEEPING_METRICS_PORT" default:"9102"`
}

// OutboxRetention converts the configured days to a duration.
func (h HousekeepingConfig) OutboxRetention() time.Duration {
	return days(h.OutboxRetentionDays)
}

func (h HousekeepingConfig) DLQRetention() time.Duration {
	return days(h.DLQRetentionDays)
}

func days(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * 24 * time.Hour
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
