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
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Sendgrid     SendgridConfig
	Cron         CronConfig
	Engagement   EngagementConfig
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
	Env          string `envconfig:"DDSC_APP_ENV" required:"true"`
	Port         string `envconfig:"DDSC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DDSC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DDSC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DDSC_DB_DSN"`
	Driver string `envconfig:"DDSC_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DDSC_DB_HOST"`
	LegacyPort     int    `envconfig:"DDSC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DDSC_DB_USER"`
	LegacyPassword string `envconfig:"DDSC_DB_PASSWORD"`
	LegacyName     string `envconfig:"DDSC_DB_NAME"`
	LegacySSLMode  string `envconfig:"DDSC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DDSC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DDSC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DDSC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DDSC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DDSC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DDSC_REDIS_ADDR"`
	Password     string        `envconfig:"DDSC_REDIS_PASSWORD"`
	DB           int           `envconfig:"DDSC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DDSC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DDSC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DDSC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DDSC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DDSC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DDSC_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"DDSC_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"DDSC_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"DDSC_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"DDSC_PUBSUB_DOMAIN_TOPIC" default:"ddsc-domain-events"`
	DomainSubscription string `envconfig:"DDSC_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"DDSC_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"DDSC_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"DDSC_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"DDSC_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"DDSC_SENDGRID_FROM_EMAIL"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"DDSC_CRON_INTERVAL" default:"24h"`
	LockKey  string        `envconfig:"DDSC_CRON_LOCK_KEY" default:"ddsc:cron:lock"`
	LockTTL  time.Duration `envconfig:"DDSC_CRON_LOCK_TTL" default:"25h"`
}

type EngagementConfig struct {
	LeaderboardSize int `envconfig:"DDSC_ENGAGEMENT_LEADERBOARD_SIZE" default:"10"`
	ReportDays      int `envconfig:"DDSC_ENGAGEMENT_REPORT_DAYS" default:"30"`
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
