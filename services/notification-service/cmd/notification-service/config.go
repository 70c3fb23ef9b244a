package main

import (
	"errors"
	"strings"
	"time"

	"github.com/md-rashed-zaman/barberbook/libs/config"
	otelx "github.com/md-rashed-zaman/barberbook/libs/otel"
)

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"notification-service"`
	Port        string `envconfig:"PORT" default:"8085"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"5"`
	Migrate     bool   `envconfig:"DB_MIGRATE" default:"false"`

	KafkaBrokers string        `envconfig:"KAFKA_BROKERS" required:"true"`
	GroupID      string        `envconfig:"KAFKA_GROUP_ID" default:"notification-service"`
	Topic        string        `envconfig:"KAFKA_CONSUME_TOPIC" default:"booking.appointment.created.v1"`
	MaxAttempts  int           `envconfig:"CONSUMER_MAX_ATTEMPTS" default:"5"`
	RetryDelay   time.Duration `envconfig:"CONSUMER_RETRY_DELAY" default:"1s"`

	SMSProvider     string        `envconfig:"SMS_PROVIDER" default:"noop"`
	SMSWebhookURL   string        `envconfig:"SMS_WEBHOOK_URL"`
	SMSWebhookToken string        `envconfig:"SMS_WEBHOOK_TOKEN"`
	SMSTimeout      time.Duration `envconfig:"SMS_TIMEOUT" default:"5s"`

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
	cfg.SMSProvider = strings.ToLower(strings.TrimSpace(cfg.SMSProvider))
	switch cfg.SMSProvider {
	case "noop":
	case "webhook":
		if cfg.SMSWebhookURL == "" {
			return Config{}, errors.New("SMS_WEBHOOK_URL is required when SMS_PROVIDER=webhook")
		}
	default:
		return Config{}, errors.New("SMS_PROVIDER must be noop or webhook")
	}
	if len(cfg.brokers()) == 0 {
		return Config{}, errors.New("KAFKA_BROKERS must list at least one broker")
	}
	return cfg, nil
}

func (c Config) brokers() []string {
	return config.SplitList(c.KafkaBrokers)
}
