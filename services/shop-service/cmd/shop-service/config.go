package main

import (
	"time"

	"github.com/md-rashed-zaman/barberbook/libs/config"
	otelx "github.com/md-rashed-zaman/barberbook/libs/otel"
)

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"shop-service"`
	Port        string `envconfig:"PORT" default:"8082"`
	GRPCPort    string `envconfig:"GRPC_PORT" default:"9090"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	Migrate     bool   `envconfig:"DB_MIGRATE" default:"true"`

	// Local logo storage, used when S3_BUCKET is empty.
	LogoDir     string `envconfig:"LOGO_DIR" default:"./data/media"`
	LogoBaseURL string `envconfig:"LOGO_BASE_URL" default:"/media"`

	S3Bucket        string        `envconfig:"S3_BUCKET"`
	S3Region        string        `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint      string        `envconfig:"S3_ENDPOINT"`
	S3AccessKeyID   string        `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey     string        `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3PathStyle     bool          `envconfig:"S3_USE_PATH_STYLE" default:"false"`
	S3PublicBaseURL string        `envconfig:"S3_PUBLIC_BASE_URL"`
	S3PresignTTL    time.Duration `envconfig:"S3_PRESIGN_TTL" default:"168h"`

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
	if err := config.ValidPort("GRPC_PORT", cfg.GRPCPort); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
