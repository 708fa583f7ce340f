package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crmseguros/internal/config"
	"crmseguros/internal/infra"
	"crmseguros/internal/repository"
	"crmseguros/internal/router"
	"crmseguros/internal/service"
	"crmseguros/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger — dev: pretty, prod: JSON
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := infra.NewDatabase(cfg.DatabaseURL, !cfg.IsProduction())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	files, err := infra.NewS3FileStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure object storage")
	}

	// Worker pool for async jobs (commission report PDF, e-mail). Processors
	// are wired here, the composition root, with their own service instances.
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	comisiones := service.NewComisionService(
		repository.NewPolizaRepository(db),
		repository.NewUsuarioRepository(db),
		dispatcher,
	)
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, map[string]worker.Processor{
		worker.JobReporteComision: worker.NewReporteWorker(comisiones, dispatcher, cfg.ReportStoragePath),
		worker.JobEmail:           worker.NewEmailWorker(mailer),
	})

	r := router.New(cfg, router.Deps{
		DB:       db,
		Redis:    rdb,
		Files:    files,
		Reportes: dispatcher,
		DLQ:      dispatcher,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("crmseguros backend listening on :%d", cfg.Port)
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
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("closing redis")
	}
	log.Info().Msg("server exited")
}
