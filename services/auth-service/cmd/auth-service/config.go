package main

import (
	"fmt"
	"time"

	"github.com/md-rashed-zaman/barberbook/libs/config"
	otelx "github.com/md-rashed-zaman/barberbook/libs/otel"
)

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"auth-service"`
	Port        string `envconfig:"PORT" default:"8081"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"5"`
	Migrate     bool   `envconfig:"DB_MIGRATE" default:"true"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer string        `envconfig:"JWT_ISSUER" default:"barberbook"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"12h"`

	otelx.Config
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	if err := config.ValidPort("PORT", cfg.Port); err != nil {
		return Config{}, err
	}
	if len(cfg.JWTSecret) < 16 {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least 16 bytes")
	}
	if cfg.JWTTTL <= 0 {
		return Config{}, fmt.Errorf("JWT_TTL must be positive (got %s)", cfg.JWTTTL)
	}
	return cfg, nil
}
