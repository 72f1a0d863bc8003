package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Authority AuthorityConfig
	Redis     RedisConfig
	Cart      CartConfig
	Checkout  CheckoutConfig
	Promo     PromoConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AuthorityConfig points the engine at the backend of record for stock,
// pricing, merge, and address validation.
type AuthorityConfig struct {
	BaseURL        string        `envconfig:"STOREFRONT_AUTHORITY_BASE_URL" required:"true"`
	RequestTimeout time.Duration `envconfig:"STOREFRONT_AUTHORITY_REQUEST_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CartConfig struct {
	TaxRate      float64       `envconfig:"STOREFRONT_CART_TAX_RATE" default:"0.08"`
	SnapshotPath string        `envconfig:"STOREFRONT_CART_SNAPSHOT_PATH" default:"./data/cart.json"`
	SyncTimeout  time.Duration `envconfig:"STOREFRONT_CART_SYNC_TIMEOUT" default:"10s"`
}

func (c CartConfig) validate() error {
	if c.TaxRate < 0 || c.TaxRate >= 1 {
		return fmt.Errorf("cart tax rate must be in [0,1), got %v", c.TaxRate)
	}
	if c.SyncTimeout <= 0 {
		return fmt.Errorf("cart sync timeout must be positive, got %v", c.SyncTimeout)
	}
	return nil
}

type CheckoutConfig struct {
	SessionTTL                 time.Duration `envconfig:"STOREFRONT_CHECKOUT_SESSION_TTL" default:"30m"`
	FreeShippingThresholdCents int           `envconfig:"STOREFRONT_CHECKOUT_FREE_SHIPPING_THRESHOLD_CENTS" default:"10000"`
}

// PromoConfig gates the simulated client-side promo discount. The real
// server-validated contract is undefined upstream, so the stub stays off by
// default.
type PromoConfig struct {
	StubEnabled bool    `envconfig:"STOREFRONT_PROMO_STUB_ENABLED" default:"false"`
	StubPercent float64 `envconfig:"STOREFRONT_PROMO_STUB_PERCENT" default:"0.10"`
}
