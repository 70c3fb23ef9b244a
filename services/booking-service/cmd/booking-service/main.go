package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/md-rashed-zaman/barberbook/libs/db"
	"github.com/md-rashed-zaman/barberbook/libs/grpcx"
	"github.com/md-rashed-zaman/barberbook/libs/httpx"
	"github.com/md-rashed-zaman/barberbook/libs/kafkax"
	otelx "github.com/md-rashed-zaman/barberbook/libs/otel"
	"github.com/md-rashed-zaman/barberbook/libs/runtime"
	"github.com/md-rashed-zaman/barberbook/migrations"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/cart"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/directory"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/handlers"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/metrics"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/outbox"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	logger := runtime.NewLogger(cfg.ServiceName)
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, cfg.ServiceName, cfg.Config)
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid BOOKING_TIMEZONE", "value", cfg.Timezone, "err", err)
		os.Exit(1)
	}
	grid, err := availability.NewGrid(cfg.GridOpen, cfg.GridClose, cfg.SlotStep)
	if err != nil {
		logger.Error("invalid booking grid", "err", err)
		os.Exit(1)
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL, db.Options{MaxConns: cfg.DBMaxConns})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	if cfg.Migrate {
		if err := db.Migrate(ctx, pool, migrations.FS, logger); err != nil {
			logger.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}

	checks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}

	var carts cart.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()
		carts = cart.NewRedisStore(rdb, cfg.CartTTL)
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	} else {
		logger.Warn("REDIS_ADDR not set; carts are kept in memory")
		carts = cart.NewMemoryStore(cfg.CartTTL)
	}

	var dir directory.Provider
	if cfg.ShopGRPCAddr != "" {
		conn, err := grpcx.Dial(cfg.ShopGRPCAddr, nil)
		if err != nil {
			logger.Error("shop directory dial failed", "addr", cfg.ShopGRPCAddr, "err", err)
			os.Exit(1)
		}
		defer func() { _ = conn.Close() }()
		dir = directory.NewGRPCProvider(conn)
	} else {
		dir = storage.NewDirectoryRepository(pool)
	}

	outboxRepo := outbox.NewRepository()
	appointments := storage.NewAppointmentRepository(pool, outboxRepo)

	if brokers := cfg.brokers(); len(brokers) > 0 {
		writer := kafkax.NewWriter(brokers)
		defer func() { _ = writer.Close() }()
		publisher := outbox.NewPublisher(pool, outboxRepo, writer, logger, outbox.PublisherConfig{
			PollEvery: cfg.OutboxPoll,
			BatchSize: cfg.OutboxBatch,
		})
		go publisher.Run(ctx)
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	} else {
		logger.Warn("KAFKA_BROKERS not set; outbox events stay unpublished")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := booking.NewService(booking.Config{
		Grid:      grid,
		Location:  loc,
		Policy:    booking.SlotPolicy{ReleaseCancelled: cfg.ReleaseCancelled},
		Messenger: booking.Messenger{Host: cfg.MessagingHost, CountryPrefix: cfg.CountryPrefix},
	}, dir, appointments, carts, metrics.NewBooking(reg), logger)

	mux := runtime.NewBaseMuxWithReady(checks...)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	handlers.NewPublicHandler(svc, logger).Register(mux)
	handlers.NewAdminHandler(svc, logger).Register(mux)

	var handler http.Handler = httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithBodyLimit(1<<20),
	)
	handler = otelhttp.NewHandler(handler, "booking")

	runtime.ServeHTTP(ctx, runtime.NewServer(cfg.Port, handler), logger)
}
