package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "BULKBRIDGE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "BULKBRIDGE_DB_DSN"
	EnvDBHost = "BULKBRIDGE_DB_HOST"
	EnvDBUser = "BULKBRIDGE_DB_USER"
	EnvDBName = "BULKBRIDGE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Payment PaymentConfig
	Mail    MailConfig
	GCP     GCPConfig
	PubSub  PubSubConfig
	Outbox  OutboxConfig
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
	Env          string `envconfig:"BULKBRIDGE_APP_ENV" required:"true"`
	Port         string `envconfig:"BULKBRIDGE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BULKBRIDGE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BULKBRIDGE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BULKBRIDGE_DB_DSN"`
	Driver string `envconfig:"BULKBRIDGE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BULKBRIDGE_DB_HOST"`
	LegacyPort     int    `envconfig:"BULKBRIDGE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BULKBRIDGE_DB_USER"`
	LegacyPassword string `envconfig:"BULKBRIDGE_DB_PASSWORD"`
	LegacyName     string `envconfig:"BULKBRIDGE_DB_NAME"`
	LegacySSLMode  string `envconfig:"BULKBRIDGE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BULKBRIDGE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BULKBRIDGE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BULKBRIDGE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BULKBRIDGE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"BULKBRIDGE_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BULKBRIDGE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BULKBRIDGE_REDIS_ADDR"`
	Password     string        `envconfig:"BULKBRIDGE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BULKBRIDGE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BULKBRIDGE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BULKBRIDGE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BULKBRIDGE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BULKBRIDGE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BULKBRIDGE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BULKBRIDGE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BULKBRIDGE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BULKBRIDGE_JWT_EXPIRATION_MINUTES" default:"60"`
}

// PaymentConfig points at the opaque payment gateway used to confirm and
// verify bulk-order transactions.
type PaymentConfig struct {
	BaseURL        string        `envconfig:"BULKBRIDGE_PAYMENT_BASE_URL" required:"true"`
	APIKey         string        `envconfig:"BULKBRIDGE_PAYMENT_API_KEY" required:"true"`
	ConfirmTimeout time.Duration `envconfig:"BULKBRIDGE_PAYMENT_CONFIRM_TIMEOUT" default:"10s"`
}

type MailConfig struct {
	APIKey      string `envconfig:"BULKBRIDGE_MAIL_API_KEY"`
	BaseURL     string `envconfig:"BULKBRIDGE_MAIL_BASE_URL" default:"https://api.sendgrid.com"`
	DefaultFrom string `envconfig:"BULKBRIDGE_MAIL_FROM_EMAIL"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BULKBRIDGE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"BULKBRIDGE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"BULKBRIDGE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"BULKBRIDGE_PUBSUB_DOMAIN_TOPIC" default:"bb-domain-events"`
	DomainSubscription string `envconfig:"BULKBRIDGE_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"BULKBRIDGE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"BULKBRIDGE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"BULKBRIDGE_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
