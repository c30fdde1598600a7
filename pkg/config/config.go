package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	// EnvPrefix namespaces every Car+ environment variable.
	EnvPrefix = "CARPLUS"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv   = "CARPLUS_APP_ENV"
	EnvPort     = "CARPLUS_APP_PORT"
	EnvDBDSN    = "CARPLUS_DB_DSN"
	EnvDBHost   = "CARPLUS_DB_HOST"
	EnvDBUser   = "CARPLUS_DB_USER"
	EnvDBName   = "CARPLUS_DB_NAME"
	EnvRedisURL = "CARPLUS_REDIS_URL"
	EnvAsaasKey = "CARPLUS_ASAAS_API_KEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Asaas        AsaasConfig
	Payout       PayoutConfig
	RateLimit    RateLimitConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Payout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARPLUS_APP_ENV" required:"true"`
	Port         string `envconfig:"CARPLUS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CARPLUS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARPLUS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CARPLUS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CARPLUS_DB_DSN"`
	Driver string `envconfig:"CARPLUS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CARPLUS_DB_HOST"`
	LegacyPort     int    `envconfig:"CARPLUS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARPLUS_DB_USER"`
	LegacyPassword string `envconfig:"CARPLUS_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARPLUS_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARPLUS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARPLUS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARPLUS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARPLUS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARPLUS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARPLUS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CARPLUS_REDIS_ADDR"`
	Password     string        `envconfig:"CARPLUS_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARPLUS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARPLUS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARPLUS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARPLUS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARPLUS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARPLUS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type AsaasConfig struct {
	APIKey  string        `envconfig:"CARPLUS_ASAAS_API_KEY" required:"true"`
	Env     string        `envconfig:"CARPLUS_ASAAS_ENV" default:"sandbox"`
	Timeout time.Duration `envconfig:"CARPLUS_ASAAS_TIMEOUT" default:"30s"`
}

// Environment returns the normalized Asaas environment (sandbox/production).
func (a AsaasConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(a.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type PayoutConfig struct {
	// Rate is the share of each order's total transferred to the reseller.
	// Policy value, not a structural constant; 1.0 means the reseller
	// receives 100% of order value.
	Rate string `envconfig:"CARPLUS_PAYOUT_RATE" default:"1.0"`
}

// RateDecimal parses the configured payout rate.
func (p PayoutConfig) RateDecimal() decimal.Decimal {
	rate, err := decimal.NewFromString(p.Rate)
	if err != nil {
		return decimal.NewFromInt(1)
	}
	return rate
}

func (p PayoutConfig) validate() error {
	rate, err := decimal.NewFromString(p.Rate)
	if err != nil {
		return fmt.Errorf("invalid payout rate %q: %w", p.Rate, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("payout rate %q must be within [0, 1]", p.Rate)
	}
	return nil
}

type RateLimitConfig struct {
	Requests int64         `envconfig:"CARPLUS_RATE_LIMIT_REQUESTS" default:"120"`
	Window   time.Duration `envconfig:"CARPLUS_RATE_LIMIT_WINDOW" default:"1m"`
}

type CronConfig struct {
	Interval       time.Duration `envconfig:"CARPLUS_CRON_INTERVAL" default:"1h"`
	ReconcileBatch int           `envconfig:"CARPLUS_CRON_RECONCILE_BATCH" default:"50"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CARPLUS_AUTO_MIGRATE" default:"false"`
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
