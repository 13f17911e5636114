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
	Stripe       StripeConfig
	Marketplace  MarketplaceConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EASYUK_APP_ENV" required:"true"`
	Port         string `envconfig:"EASYUK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"EASYUK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EASYUK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"EASYUK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"EASYUK_DB_DSN"`
	Driver string `envconfig:"EASYUK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"EASYUK_DB_HOST"`
	LegacyPort     int    `envconfig:"EASYUK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EASYUK_DB_USER"`
	LegacyPassword string `envconfig:"EASYUK_DB_PASSWORD"`
	LegacyName     string `envconfig:"EASYUK_DB_NAME"`
	LegacySSLMode  string `envconfig:"EASYUK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EASYUK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EASYUK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EASYUK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EASYUK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EASYUK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"EASYUK_REDIS_ADDR"`
	Password     string        `envconfig:"EASYUK_REDIS_PASSWORD"`
	DB           int           `envconfig:"EASYUK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EASYUK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EASYUK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EASYUK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EASYUK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EASYUK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"EASYUK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"EASYUK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"EASYUK_JWT_EXPIRATION_MINUTES" required:"true"`
}

type StripeConfig struct {
	APIKey              string `envconfig:"EASYUK_STRIPE_API_KEY"`
	Secret              string `envconfig:"EASYUK_STRIPE_SECRET"`
	Env                 string `envconfig:"EASYUK_STRIPE_ENV" default:"test"`
	SubscriptionPriceID string `envconfig:"EASYUK_STRIPE_SUBSCRIPTION_PRICE_ID"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type MarketplaceConfig struct {
	TrialDays      int           `envconfig:"EASYUK_MARKETPLACE_TRIAL_DAYS" default:"14"`
	NearbyRadiusKm float64       `envconfig:"EASYUK_MARKETPLACE_NEARBY_RADIUS_KM" default:"10"`
	BrowseTimeout  time.Duration `envconfig:"EASYUK_MARKETPLACE_BROWSE_TIMEOUT" default:"5s"`
	SweepBatchSize int           `envconfig:"EASYUK_MARKETPLACE_SWEEP_BATCH_SIZE" default:"200"`
	ReconcileLimit int           `envconfig:"EASYUK_MARKETPLACE_RECONCILE_LIMIT" default:"100"`
}

// TrialWindow returns the free-trial duration.
func (m MarketplaceConfig) TrialWindow() time.Duration {
	return time.Duration(m.TrialDays) * 24 * time.Hour
}

type CronConfig struct {
	Interval time.Duration `envconfig:"EASYUK_CRON_INTERVAL" default:"1m"`
	LockTTL  time.Duration `envconfig:"EASYUK_CRON_LOCK_TTL" default:"5m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"EASYUK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"EASYUK_AUTO_MIGRATE" default:"false"`
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
