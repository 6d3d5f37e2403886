package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/menuvercel/mitienda-host/internal/config"
	"github.com/menuvercel/mitienda-host/internal/infra"
	"github.com/menuvercel/mitienda-host/internal/middleware"
	"github.com/menuvercel/mitienda-host/internal/router"
	"github.com/menuvercel/mitienda-host/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("service", "mitienda-host").Logger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	} else {
		log.Warn().Msg("REDIS_URL empty, report cache and stock alerts disabled")
	}

	photoCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("s3-fotos"))
	photos, err := infra.NewS3PhotoStore(ctx, cfg, photoCB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure photo store")
	}
	if !photos.Enabled() {
		log.Warn().Msg("S3_BUCKET empty, photo uploads disabled")
	}

	// Low-stock alerts need the queue, an SMTP relay and a recipient.
	mailer := infra.NewMailer(cfg)
	alertas := rdb != nil && mailer.Enabled() && cfg.AlertEmail != ""
	if alertas {
		worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, map[string]worker.JobHandler{
			worker.JobAlertaStock: worker.NewAlertaStockWorker(mailer, cfg.AlertEmail),
		})
	}
	middleware.StartRateLimiterPurge(ctx)

	r := router.New(cfg, router.Deps{
		DB:                 db,
		Rdb:                rdb,
		Photos:             photos,
		PhotoCB:            photoCB,
		AlertasHabilitadas: alertas,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("mitienda-host listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
