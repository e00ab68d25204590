package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration, read from the environment and an
// optional config file.
type Config struct {
	AppPort          string
	CORSAllowOrigins string

	Shopify  ShopifyConfig
	Checkout CheckoutConfig

	DBDriver    string
	DatabaseDSN string

	RabbitMQURL     string
	RedisURL        string
	CatalogCacheTTL time.Duration

	ResendAPIKey string
	EmailFrom    string

	JWTSecret     string
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// ShopifyConfig is everything needed to reach the store.
type ShopifyConfig struct {
	StoreDomain           string
	AccessToken           string
	StorefrontAccessToken string
	APIVersion            string
	StorefrontAPIVersion  string
	BaseURL               string
	Timeout               time.Duration
}

// CheckoutConfig holds the shop's fixed checkout parameters.
type CheckoutConfig struct {
	LocationID           int64
	DeliveryFeeProductID int64
	PickupAddress1       string
	PickupCity           string
	PickupZip            string
}

// New returns a viper instance with every default registered and environment
// lookup enabled.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")

	v.SetDefault("SHOPIFY_API_VERSION", "2025-01")
	v.SetDefault("SHOPIFY_STOREFRONT_API_VERSION", "2025-01")
	v.SetDefault("SHOPIFY_TIMEOUT", "15s")
	v.SetDefault("SHOPIFY_LOCATION_ID", int64(108441469312))
	v.SetDefault("DELIVERY_FEE_PRODUCT_ID", int64(15259729035648))
	v.SetDefault("PICKUP_ADDRESS1", "Rua das Flores, 123")
	v.SetDefault("PICKUP_CITY", "Ponta Delgada")
	v.SetDefault("PICKUP_ZIP", "9500-445")

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "tupperstock.db")

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CATALOG_CACHE_TTL", "60s")

	v.SetDefault("EMAIL_FROM", "TupperStock <noreply@tupperstock.com>")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_EMAIL", "contacto@tupperstock.com")

	v.AutomaticEnv()
	return v
}

// Load reads the configuration. When CONFIG_FILE is set the file is merged
// under the environment.
func Load(v *viper.Viper) (*Config, error) {
	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		AppPort:          v.GetString("APP_PORT"),
		CORSAllowOrigins: v.GetString("CORS_ALLOW_ORIGINS"),
		Shopify: ShopifyConfig{
			StoreDomain:           firstNonEmpty(v.GetString("SHOPIFY_STORE_DOMAIN"), v.GetString("NEXT_PUBLIC_SHOPIFY_STORE_DOMAIN")),
			AccessToken:           v.GetString("SHOPIFY_ACCESS_TOKEN"),
			StorefrontAccessToken: firstNonEmpty(v.GetString("SHOPIFY_STOREFRONT_ACCESS_TOKEN"), v.GetString("NEXT_PUBLIC_SHOPIFY_STOREFRONT_ACCESS_TOKEN")),
			APIVersion:            v.GetString("SHOPIFY_API_VERSION"),
			StorefrontAPIVersion:  v.GetString("SHOPIFY_STOREFRONT_API_VERSION"),
			BaseURL:               v.GetString("SHOPIFY_BASE_URL"),
			Timeout:               v.GetDuration("SHOPIFY_TIMEOUT"),
		},
		Checkout: CheckoutConfig{
			LocationID:           v.GetInt64("SHOPIFY_LOCATION_ID"),
			DeliveryFeeProductID: v.GetInt64("DELIVERY_FEE_PRODUCT_ID"),
			PickupAddress1:       v.GetString("PICKUP_ADDRESS1"),
			PickupCity:           v.GetString("PICKUP_CITY"),
			PickupZip:            v.GetString("PICKUP_ZIP"),
		},
		DBDriver:        strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		RedisURL:        v.GetString("REDIS_URL"),
		CatalogCacheTTL: v.GetDuration("CATALOG_CACHE_TTL"),
		ResendAPIKey:    v.GetString("RESEND_API_KEY"),
		EmailFrom:       v.GetString("EMAIL_FROM"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		AdminUsername:   v.GetString("ADMIN_USERNAME"),
		AdminEmail:      v.GetString("ADMIN_EMAIL"),
		AdminPassword:   v.GetString("ADMIN_PASSWORD"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or malformed required setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Shopify.StoreDomain == "" && c.Shopify.BaseURL == "" {
		errs = append(errs, errors.New("SHOPIFY_STORE_DOMAIN is required"))
	}
	if c.Shopify.AccessToken == "" {
		errs = append(errs, errors.New("SHOPIFY_ACCESS_TOKEN is required"))
	}
	if c.Shopify.StorefrontAccessToken == "" {
		errs = append(errs, errors.New("SHOPIFY_STOREFRONT_ACCESS_TOKEN is required"))
	}
	if c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver))
	}
	if c.Checkout.LocationID <= 0 {
		errs = append(errs, errors.New("SHOPIFY_LOCATION_ID must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
