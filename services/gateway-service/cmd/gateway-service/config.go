package main

import (
	"fmt"
	"net/url"
	"time"

	"github.com/md-rashed-zaman/barberbook/libs/config"
	otelx "github.com/md-rashed-zaman/barberbook/libs/otel"
)

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"gateway-service"`
	Port        string `envconfig:"PORT" default:"8080"`

	AuthURL    string `envconfig:"AUTH_URL" default:"http://auth-service:8081"`
	ShopURL    string `envconfig:"SHOP_URL" default:"http://shop-service:8082"`
	BookingURL string `envconfig:"BOOKING_URL" default:"http://booking-service:8083"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer string `envconfig:"JWT_ISSUER" default:"barberbook"`

	BodyLimit      int64         `envconfig:"REQUEST_BODY_LIMIT_BYTES" default:"3145728"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`

	RateLimitPerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	RateLimitFailOpen  bool   `envconfig:"RATE_LIMIT_FAIL_OPEN" default:"true"`
	RateLimitPrefix    string `envconfig:"RATE_LIMIT_PREFIX" default:"rl"`
	RedisAddr          string `envconfig:"REDIS_ADDR"`
	RedisPassword      string `envconfig:"REDIS_PASSWORD"`
	RedisDB            int    `envconfig:"REDIS_DB" default:"0"`

	CORSOrigins     string        `envconfig:"CORS_ALLOWED_ORIGINS"`
	CORSMethods     string        `envconfig:"CORS_ALLOWED_METHODS" default:"GET,POST,PUT,DELETE,OPTIONS"`
	CORSHeaders     string        `envconfig:"CORS_ALLOWED_HEADERS" default:"Authorization,Content-Type,X-Request-Id"`
	CORSCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"false"`
	CORSMaxAge      time.Duration `envconfig:"CORS_MAX_AGE" default:"10m"`

	otelx.Config
}

type upstreams struct {
	auth, shop, booking *url.URL
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	if err := config.ValidPort("PORT", cfg.Port); err != nil {
		return Config{}, err
	}
	if cfg.BodyLimit <= 0 {
		return Config{}, fmt.Errorf("REQUEST_BODY_LIMIT_BYTES must be positive (got %d)", cfg.BodyLimit)
	}
	if cfg.RateLimitPerMinute <= 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive (got %d)", cfg.RateLimitPerMinute)
	}
	if _, err := cfg.upstreams(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) upstreams() (upstreams, error) {
	var u upstreams
	for _, p := range []struct {
		name string
		raw  string
		dst  **url.URL
	}{
		{"AUTH_URL", c.AuthURL, &u.auth},
		{"SHOP_URL", c.ShopURL, &u.shop},
		{"BOOKING_URL", c.BookingURL, &u.booking},
	} {
		parsed, err := url.Parse(p.raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return upstreams{}, fmt.Errorf("%s must be an absolute URL (got %q)", p.name, p.raw)
		}
		*p.dst = parsed
	}
	return u, nil
}
