package app

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Addr:        defaultAddr,
		DatabaseURL: "postgres://localhost/foodking",
		Delivery: DeliveryConfig{
			OriginLat:   17.385,
			OriginLng:   78.4867,
			MaxRadiusKm: 5,
		},
		RateLimit: RateLimitConfig{Max: 100, Window: 15 * time.Minute},
	}
}

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: "database URL is required"},
		{name: "zero origin", mutate: func(c *Config) { c.Delivery.OriginLat, c.Delivery.OriginLng = 0, 0 }, wantErr: "restaurant location"},
		{name: "latitude out of range", mutate: func(c *Config) { c.Delivery.OriginLat = 91 }, wantErr: "latitude"},
		{name: "longitude out of range", mutate: func(c *Config) { c.Delivery.OriginLng = -181 }, wantErr: "longitude"},
		{name: "zero radius", mutate: func(c *Config) { c.Delivery.MaxRadiusKm = 0 }, wantErr: "radius"},
		{name: "NaN radius", mutate: func(c *Config) { c.Delivery.MaxRadiusKm = math.NaN() }, wantErr: "radius must be a finite number"},
		{name: "infinite radius", mutate: func(c *Config) { c.Delivery.MaxRadiusKm = math.Inf(1) }, wantErr: "radius must be a finite number"},
		{name: "NaN latitude", mutate: func(c *Config) { c.Delivery.OriginLat = math.NaN() }, wantErr: "location must be a finite number"},
		{name: "no rate limit", mutate: func(c *Config) { c.RateLimit.Max = 0 }, wantErr: "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyPlatformDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = ""

	err := cfg.applyPlatformDefaults(lookupFrom(map[string]string{
		"DATABASE_URL":        "postgres://platform/db",
		"PORT":                "5000",
		"RESTAURANT_LAT":      "12.9716",
		"RESTAURANT_LNG":      "77.5946",
		"MAX_DELIVERY_RADIUS": "7.5",
		"RAZORPAY_KEY_ID":     "rzp_test_key",
		"RAZORPAY_KEY_SECRET": "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "postgres://platform/db", cfg.DatabaseURL)
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr)
	assert.Equal(t, 12.9716, cfg.Delivery.OriginLat)
	assert.Equal(t, 77.5946, cfg.Delivery.OriginLng)
	assert.Equal(t, 7.5, cfg.Delivery.MaxRadiusKm)
	assert.Equal(t, "rzp_test_key", cfg.Payment.KeyID)
	assert.Equal(t, "secret", cfg.Payment.KeySecret)
}

func TestApplyPlatformDefaults_OwnSettingsWin(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = "127.0.0.1:9000"
	cfg.Payment.KeySecret = "own"

	err := cfg.applyPlatformDefaults(lookupFrom(map[string]string{
		"DATABASE_URL":                 "postgres://platform/db",
		"PORT":                         "5000",
		"RESTAURANT_LAT":               "12.9716",
		"FOODKING_DELIVERY_ORIGIN_LAT": "17.385",
		"RAZORPAY_KEY_SECRET":          "platform",
	}))
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/foodking", cfg.DatabaseURL)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 17.385, cfg.Delivery.OriginLat)
	assert.Equal(t, "own", cfg.Payment.KeySecret)
}

func TestApplyPlatformDefaults_FileOrFlagWins(t *testing.T) {
	cfg := validConfig()
	cfg.Delivery.OriginLat = 12.9716
	cfg.Delivery.MaxRadiusKm = 3

	err := cfg.applyPlatformDefaults(lookupFrom(map[string]string{
		"RESTAURANT_LAT":      "28.6139",
		"RESTAURANT_LNG":      "77.2090",
		"MAX_DELIVERY_RADIUS": "10",
	}))
	require.NoError(t, err)

	assert.Equal(t, 12.9716, cfg.Delivery.OriginLat)
	assert.Equal(t, 77.2090, cfg.Delivery.OriginLng)
	assert.Equal(t, 3.0, cfg.Delivery.MaxRadiusKm)
}

func TestApplyPlatformDefaults_NaNRadiusRejected(t *testing.T) {
	cfg := validConfig()

	require.NoError(t, cfg.applyPlatformDefaults(lookupFrom(map[string]string{"MAX_DELIVERY_RADIUS": "NaN"})))
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "radius")
}

func TestApplyPlatformDefaults_BadNumber(t *testing.T) {
	cfg := validConfig()

	err := cfg.applyPlatformDefaults(lookupFrom(map[string]string{"MAX_DELIVERY_RADIUS": "five"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_DELIVERY_RADIUS")
}
