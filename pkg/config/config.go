package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/eyira/storefront/pkg/enums"
)

const (
	EnvPrefix = "EYIRA"

	EnvAppEnv             = "EYIRA_APP_ENV"
	EnvPort               = "EYIRA_APP_PORT"
	EnvLogLevel           = "EYIRA_LOG_LEVEL"
	EnvPublicDomain       = "EYIRA_PUBLIC_DOMAIN"
	EnvCurrency           = "EYIRA_CURRENCY"
	EnvFreeShipping       = "EYIRA_FREE_SHIPPING_THRESHOLD"
	EnvAllowedCountries   = "EYIRA_SHIPPING_ALLOWED_COUNTRIES"
	EnvStripeAPIKey       = "EYIRA_STRIPE_API_KEY"
	EnvStripeSecret       = "EYIRA_STRIPE_WEBHOOK_SECRET"
	EnvStripeEnv          = "EYIRA_STRIPE_ENV"
	EnvResendAPIKey       = "EYIRA_RESEND_API_KEY"
	EnvIdempotencyBackend = "EYIRA_IDEMPOTENCY_BACKEND"
	EnvRedisURL           = "EYIRA_REDIS_URL"
	EnvDBDSN              = "EYIRA_DB_DSN"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	IdempotencyBackendMemory   = "memory"
	IdempotencyBackendRedis    = "redis"
	IdempotencyBackendPostgres = "postgres"
)

type Config struct {
	App         AppConfig
	Storefront  StorefrontConfig
	Stripe      StripeConfig
	Resend      ResendConfig
	Idempotency IdempotencyConfig
	Redis       RedisConfig
	DB          DBConfig
	CORS        CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storefront.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Idempotency.validate(cfg.Redis, cfg.DB); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EYIRA_APP_ENV" required:"true"`
	Port         string `envconfig:"EYIRA_APP_PORT" default:"4242"`
	LogLevel     string `envconfig:"EYIRA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EYIRA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorefrontConfig carries the merchant-facing constants used to build checkout sessions and emails.
type StorefrontConfig struct {
	PublicDomain          string          `envconfig:"EYIRA_PUBLIC_DOMAIN" default:"http://localhost:3001"`
	Brand                 string          `envconfig:"EYIRA_BRAND" default:"Eyira"`
	Currency              string          `envconfig:"EYIRA_CURRENCY" default:"cad"`
	PickupLocation        string          `envconfig:"EYIRA_PICKUP_LOCATION" default:"Ottawa Kitchen"`
	FreeShippingThreshold decimal.Decimal `envconfig:"EYIRA_FREE_SHIPPING_THRESHOLD" default:"75"`
	StandardShippingCents int64           `envconfig:"EYIRA_STANDARD_SHIPPING_CENTS" default:"1500"`
	AllowedCountries      []string        `envconfig:"EYIRA_SHIPPING_ALLOWED_COUNTRIES" default:"CA,US"`
	PlaceholderImageURL   string          `envconfig:"EYIRA_PLACEHOLDER_IMAGE_URL" default:"https://images.unsplash.com/photo-1596040033229-a9821ebd058d?ixlib=rb-4.0.3&auto=format&fit=crop&w=300&q=80"`
	EmailFrom             string          `envconfig:"EYIRA_EMAIL_FROM" default:"Eyira <orders@eyira.shop>"`
}

func (s StorefrontConfig) validate() error {
	u, err := url.Parse(s.PublicDomain)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute url", EnvPublicDomain)
	}
	if _, err := enums.ParseCurrency(s.Currency); err != nil {
		return fmt.Errorf("%s: %w", EnvCurrency, err)
	}
	if s.FreeShippingThreshold.IsNegative() {
		return fmt.Errorf("%s must be non-negative", EnvFreeShipping)
	}
	if len(s.AllowedCountries) == 0 {
		return fmt.Errorf("%s must list at least one country", EnvAllowedCountries)
	}
	return nil
}

// PublicDomainIsLocal reports whether the storefront runs somewhere the payment provider cannot reach.
func (s StorefrontConfig) PublicDomainIsLocal() bool {
	u, err := url.Parse(s.PublicDomain)
	if err != nil {
		return true
	}
	host := strings.ToLower(u.Hostname())
	return host == "localhost" || host == "127.0.0.1" || host == "0.0.0.0" || host == "::1"
}

type StripeConfig struct {
	APIKey string `envconfig:"EYIRA_STRIPE_API_KEY"`
	Secret string `envconfig:"EYIRA_STRIPE_WEBHOOK_SECRET"`
	Env    string `envconfig:"EYIRA_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type ResendConfig struct {
	APIKey string `envconfig:"EYIRA_RESEND_API_KEY"`
	// breaker trips after this many consecutive send failures
	MaxConsecutiveFailures uint32        `envconfig:"EYIRA_RESEND_BREAKER_FAILURES" default:"5"`
	BreakerCooldown        time.Duration `envconfig:"EYIRA_RESEND_BREAKER_COOLDOWN" default:"30s"`
}

type IdempotencyConfig struct {
	Backend string        `envconfig:"EYIRA_IDEMPOTENCY_BACKEND" default:"memory"`
	TTL     time.Duration `envconfig:"EYIRA_IDEMPOTENCY_TTL" default:"720h"`
}

func (i IdempotencyConfig) validate(redisCfg RedisConfig, dbCfg DBConfig) error {
	switch strings.ToLower(strings.TrimSpace(i.Backend)) {
	case IdempotencyBackendMemory, "":
		return nil
	case IdempotencyBackendRedis:
		if redisCfg.URL == "" && redisCfg.Address == "" {
			return fmt.Errorf("%s=redis requires %s", EnvIdempotencyBackend, EnvRedisURL)
		}
		return nil
	case IdempotencyBackendPostgres:
		if dbCfg.DSN == "" {
			return fmt.Errorf("%s=postgres requires %s", EnvIdempotencyBackend, EnvDBDSN)
		}
		return nil
	default:
		return fmt.Errorf("%s must be one of memory, redis, postgres", EnvIdempotencyBackend)
	}
}

// Kind returns the normalized idempotency backend name.
func (i IdempotencyConfig) Kind() string {
	kind := strings.ToLower(strings.TrimSpace(i.Backend))
	if kind == "" {
		return IdempotencyBackendMemory
	}
	return kind
}

type RedisConfig struct {
	URL          string        `envconfig:"EYIRA_REDIS_URL"`
	Address      string        `envconfig:"EYIRA_REDIS_ADDR"`
	Password     string        `envconfig:"EYIRA_REDIS_PASSWORD"`
	DB           int           `envconfig:"EYIRA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EYIRA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EYIRA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EYIRA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EYIRA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EYIRA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type DBConfig struct {
	DSN             string        `envconfig:"EYIRA_DB_DSN"`
	AutoMigrate     bool          `envconfig:"EYIRA_DB_AUTO_MIGRATE" default:"false"`
	MaxOpenConns    int           `envconfig:"EYIRA_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"EYIRA_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"EYIRA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EYIRA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"EYIRA_CORS_ALLOWED_ORIGINS" default:"http://localhost:3001,http://localhost:5173,https://eyira.shop"`
}
