package app

import (
	"math"
	"os"
	"strconv"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const (
	defaultAddr        = "0.0.0.0:8080"
	defaultOriginLat   = 17.385
	defaultOriginLng   = 78.4867
	defaultMaxRadiusKm = 5
)

// Config holds the complete application configuration, loadable from
// environment variables (FOODKING_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string `usage:"PostgreSQL connection URL (FOODKING_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	APIKeyPepper string `usage:"HMAC pepper for API key hashing (FOODKING_API_KEY_PEPPER)" flag:"api-key-pepper"`
	Restaurant   RestaurantConfig
	Delivery     DeliveryConfig
	Payment      PaymentConfig
	Orders       OrdersConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// RestaurantConfig describes the single restaurant this server sells for.
type RestaurantConfig struct {
	Name string `default:"FoodKing" usage:"Restaurant display name"`
}

// DeliveryConfig sets the delivery origin and radius.
type DeliveryConfig struct {
	OriginLat     float64 `default:"17.385" usage:"Restaurant latitude (RESTAURANT_LAT)" flag:"origin-lat"`
	OriginLng     float64 `default:"78.4867" usage:"Restaurant longitude (RESTAURANT_LNG)" flag:"origin-lng"`
	MaxRadiusKm   float64 `default:"5" usage:"Delivery radius in km (MAX_DELIVERY_RADIUS)" flag:"max-radius"`
	EstimatedTime string  `default:"30-45 minutes" usage:"Delivery estimate shown after ordering"`
}

// PaymentConfig holds payment gateway credentials. Both are optional; without
// them online payment verification answers with a configuration error.
type PaymentConfig struct {
	KeyID     string `usage:"Payment gateway public key id (RAZORPAY_KEY_ID)" flag:"payment-key-id"`
	KeySecret string `usage:"Payment gateway secret (RAZORPAY_KEY_SECRET)" flag:"payment-key-secret"`
}

// OrdersConfig tunes order handling.
type OrdersConfig struct {
	StrictLifecycle bool `default:"true" usage:"Reject status changes outside the order lifecycle" flag:"strict-lifecycle"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"15m" usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "FOODKING",
		Files:     []string{"config.yaml", "/etc/foodking/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if err := cfg.applyPlatformDefaults(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.DatabaseURL == "":
		return errors.New("database URL is required: set FOODKING_DATABASE_URL or DATABASE_URL")
	case !finite(c.Delivery.OriginLat) || !finite(c.Delivery.OriginLng):
		return errors.New("restaurant location must be a finite number")
	case !finite(c.Delivery.MaxRadiusKm):
		return errors.New("delivery radius must be a finite number")
	case c.Delivery.OriginLat == 0 && c.Delivery.OriginLng == 0:
		return errors.New("restaurant location is required: set RESTAURANT_LAT and RESTAURANT_LNG")
	case c.Delivery.OriginLat < -90 || c.Delivery.OriginLat > 90:
		return errors.Errorf("restaurant latitude %v is out of range", c.Delivery.OriginLat)
	case c.Delivery.OriginLng < -180 || c.Delivery.OriginLng > 180:
		return errors.Errorf("restaurant longitude %v is out of range", c.Delivery.OriginLng)
	case c.Delivery.MaxRadiusKm <= 0:
		return errors.New("delivery radius must be positive")
	case c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0:
		return errors.New("rate limit max and window must be positive")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// applyPlatformDefaults maps platform-provided environment variables that use
// standard names like DATABASE_URL and PORT, plus the restaurant and gateway
// variables of existing deployments, onto the FOODKING_ configuration. A
// platform variable only fills a setting that still holds its default, so
// values set through FOODKING_ variables, flags or files win.
func (c *Config) applyPlatformDefaults(lookup func(string) (string, bool)) error {
	env := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	if c.DatabaseURL == "" {
		c.DatabaseURL = env("DATABASE_URL")
	}
	if port := env("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
	if c.Payment.KeyID == "" {
		c.Payment.KeyID = env("RAZORPAY_KEY_ID")
	}
	if c.Payment.KeySecret == "" {
		c.Payment.KeySecret = env("RAZORPAY_KEY_SECRET")
	}

	for _, f := range []struct {
		key, own string
		def      float64
		dst      *float64
	}{
		{"RESTAURANT_LAT", "FOODKING_DELIVERY_ORIGIN_LAT", defaultOriginLat, &c.Delivery.OriginLat},
		{"RESTAURANT_LNG", "FOODKING_DELIVERY_ORIGIN_LNG", defaultOriginLng, &c.Delivery.OriginLng},
		{"MAX_DELIVERY_RADIUS", "FOODKING_DELIVERY_MAX_RADIUS_KM", defaultMaxRadiusKm, &c.Delivery.MaxRadiusKm},
	} {
		v := env(f.key)
		// A default-valued setting may still have been set explicitly.
		if v == "" || *f.dst != f.def || env(f.own) != "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(err, "parse %s", f.key)
		}
		*f.dst = n
	}
	return nil
}
