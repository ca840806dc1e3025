package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "FLEETDUTY_DB_DSN"
	EnvDBHost = "FLEETDUTY_DB_HOST"
	EnvDBUser = "FLEETDUTY_DB_USER"
	EnvDBName = "FLEETDUTY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Live         LiveConfig
	Timeline     TimelineConfig
	GCP          GCPConfig
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
	Env          string `envconfig:"FLEETDUTY_APP_ENV" required:"true"`
	Port         string `envconfig:"FLEETDUTY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FLEETDUTY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FLEETDUTY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FLEETDUTY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FLEETDUTY_DB_DSN"`
	Driver string `envconfig:"FLEETDUTY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FLEETDUTY_DB_HOST"`
	LegacyPort     int    `envconfig:"FLEETDUTY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FLEETDUTY_DB_USER"`
	LegacyPassword string `envconfig:"FLEETDUTY_DB_PASSWORD"`
	LegacyName     string `envconfig:"FLEETDUTY_DB_NAME"`
	LegacySSLMode  string `envconfig:"FLEETDUTY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FLEETDUTY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FLEETDUTY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FLEETDUTY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FLEETDUTY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FLEETDUTY_REDIS_URL"`
	Address      string        `envconfig:"FLEETDUTY_REDIS_ADDR"`
	Password     string        `envconfig:"FLEETDUTY_REDIS_PASSWORD"`
	DB           int           `envconfig:"FLEETDUTY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FLEETDUTY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FLEETDUTY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FLEETDUTY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FLEETDUTY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FLEETDUTY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FLEETDUTY_AUTO_MIGRATE" default:"false"`
}

// LiveConfig drives the NATS live trip feed.
type LiveConfig struct {
	NATSURL       string `envconfig:"FLEETDUTY_NATS_URL" default:"nats://127.0.0.1:4222"`
	SubjectPrefix string `envconfig:"FLEETDUTY_NATS_SUBJECT_PREFIX" default:"trips"`
	LogSubjects   bool   `envconfig:"FLEETDUTY_NATS_LOG_SUBJECTS" default:"false"`
}

// TimelineConfig configures the duty board rendering window.
type TimelineConfig struct {
	StartHour int `envconfig:"FLEETDUTY_TIMELINE_START_HOUR" default:"3"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"FLEETDUTY_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"FLEETDUTY_PUBSUB_DOMAIN_TOPIC" default:"fleetduty-domain-events"`
	DomainSubscription string `envconfig:"FLEETDUTY_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"FLEETDUTY_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"FLEETDUTY_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"FLEETDUTY_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
