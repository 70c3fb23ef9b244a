package main

import (
	"fmt"
	"time"

	"github.com/md-rashed-zaman/barberbook/libs/config"
	otelx "github.com/md-rashed-zaman/barberbook/libs/otel"
)

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"booking-service"`
	Port        string `envconfig:"PORT" default:"8083"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	Migrate     bool   `envconfig:"DB_MIGRATE" default:"true"`

	RedisAddr string        `envconfig:"REDIS_ADDR"`
	CartTTL   time.Duration `envconfig:"CART_TTL" default:"2h"`

	KafkaBrokers string        `envconfig:"KAFKA_BROKERS"`
	OutboxPoll   time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"2s"`
	OutboxBatch  int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`

	ShopGRPCAddr string `envconfig:"SHOP_GRPC_ADDR"`

	Timezone         string        `envconfig:"BOOKING_TIMEZONE" default:"America/Sao_Paulo"`
	GridOpen         string        `envconfig:"BOOKING_GRID_OPEN" default:"08:00"`
	GridClose        string        `envconfig:"BOOKING_GRID_CLOSE" default:"20:00"`
	SlotStep         time.Duration `envconfig:"BOOKING_SLOT_STEP" default:"30m"`
	ReleaseCancelled bool          `envconfig:"BOOKING_RELEASE_CANCELLED_SLOTS" default:"false"`
	MessagingHost    string        `envconfig:"BOOKING_MESSAGING_HOST" default:"wa.me"`
	CountryPrefix    string        `envconfig:"BOOKING_COUNTRY_PREFIX" default:"55"`

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
	if cfg.CartTTL <= 0 {
		return Config{}, fmt.Errorf("CART_TTL must be positive (got %s)", cfg.CartTTL)
	}
	return cfg, nil
}

func (c Config) brokers() []string {
	return config.SplitList(c.KafkaBrokers)
}
