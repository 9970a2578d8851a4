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
	Cart         CartConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"SCENTRA_APP_ENV" required:"true"`
	Port         string `envconfig:"SCENTRA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SCENTRA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SCENTRA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SCENTRA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SCENTRA_DB_DSN"`
	Driver string `envconfig:"SCENTRA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SCENTRA_DB_HOST"`
	LegacyPort     int    `envconfig:"SCENTRA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SCENTRA_DB_USER"`
	LegacyPassword string `envconfig:"SCENTRA_DB_PASSWORD"`
	LegacyName     string `envconfig:"SCENTRA_DB_NAME"`
	LegacySSLMode  string `envconfig:"SCENTRA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SCENTRA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SCENTRA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SCENTRA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SCENTRA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SCENTRA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SCENTRA_REDIS_ADDR"`
	Password     string        `envconfig:"SCENTRA_REDIS_PASSWORD"`
	DB           int           `envconfig:"SCENTRA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SCENTRA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SCENTRA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SCENTRA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SCENTRA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SCENTRA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SCENTRA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SCENTRA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SCENTRA_JWT_EXPIRATION_MINUTES" required:"true"`
}

type CartConfig struct {
	TTL      time.Duration `envconfig:"SCENTRA_CART_TTL" default:"336h"`
	MaxItems int           `envconfig:"SCENTRA_CART_MAX_ITEMS" default:"25"`
}

type RateLimitConfig struct {
	CheckoutWindow    time.Duration `envconfig:"SCENTRA_RATELIMIT_CHECKOUT_WINDOW" default:"1m"`
	CheckoutIPLimit   int           `envconfig:"SCENTRA_RATELIMIT_CHECKOUT_IP_LIMIT" default:"30"`
	CheckoutUserLimit int           `envconfig:"SCENTRA_RATELIMIT_CHECKOUT_USER_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite     bool   `envconfig:"SCENTRA_USE_SQLITE" default:"false"`
	AutoMigrate   bool   `envconfig:"SCENTRA_AUTO_MIGRATE" default:"false"`
	GCSAccessMode string `envconfig:"SCENTRA_GCS_ACCESS_MODE" default:"public"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SCENTRA_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"SCENTRA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SCENTRA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"SCENTRA_GCS_BUCKET_NAME" required:"true"`
	UploadURLExpiry   time.Duration `envconfig:"SCENTRA_GCS_UPLOAD_URL_EXPIRY" required:"true"`
	DownloadURLExpiry time.Duration `envconfig:"SCENTRA_GCS_DOWNLOAD_URL_EXPIRY" required:"true"`
	MaxUploadMB       int           `envconfig:"SCENTRA_GCS_MAX_UPLOAD_MB" default:"25"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"SCENTRA_PUBSUB_DOMAIN_TOPIC" required:"true"`
	DomainSubscription string `envconfig:"SCENTRA_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SCENTRA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SCENTRA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SCENTRA_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
