package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/md-rashed-zaman/barberbook/libs/db"
	"github.com/md-rashed-zaman/barberbook/libs/httpx"
	otelx "github.com/md-rashed-zaman/barberbook/libs/otel"
	"github.com/md-rashed-zaman/barberbook/libs/runtime"
	"github.com/md-rashed-zaman/barberbook/migrations"
	"github.com/md-rashed-zaman/barberbook/services/shop-service/internal/blob"
	"github.com/md-rashed-zaman/barberbook/services/shop-service/internal/handlers"
	"github.com/md-rashed-zaman/barberbook/services/shop-service/internal/storage"
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

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
	)

	var blobs blob.Store
	if cfg.S3Bucket != "" {
		s3Store, err := blob.NewS3Store(ctx, blob.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			UsePathStyle:    cfg.S3PathStyle,
			PublicBaseURL:   cfg.S3PublicBaseURL,
			PresignTTL:      cfg.S3PresignTTL,
		})
		if err != nil {
			logger.Error("s3 setup failed", "err", err)
			os.Exit(1)
		}
		blobs = s3Store
	} else {
		local, err := blob.NewLocalStore(cfg.LogoDir, cfg.LogoBaseURL)
		if err != nil {
			logger.Error("logo dir setup failed", "err", err)
			os.Exit(1)
		}
		logger.Warn("S3_BUCKET not set; logos are stored on local disk", "dir", local.Dir())
		mux.Handle("/media/", http.StripPrefix("/media/", http.FileServer(http.Dir(local.Dir()))))
		blobs = local
	}

	repo := storage.NewRepository(pool)
	handlers.New(repo, blobs, logger).Register(mux)

	var handler http.Handler = httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
	)
	handler = otelhttp.NewHandler(handler, "shop")

	if err := startGrpcServer(ctx, logger, cfg.GRPCPort, repo); err != nil {
		logger.Error("grpc server failed to start", "err", err)
	}

	runtime.ServeHTTP(ctx, runtime.NewServer(cfg.Port, handler), logger)
}
