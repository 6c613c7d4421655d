package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/config"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/infra"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/repository"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/router"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/worker"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Env == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Async side of the system: audit trail drain and fiscal emission.
	dispatcher := worker.NewDispatcher(rdb)
	fiscalCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	auditWorker := worker.NewAuditWorker(rdb, repository.NewAuditRepository(db))
	fiscalWorker := worker.NewFacturacionWorker(rdb, &infra.DummyFiscalProvider{}, fiscalCB)
	pool := worker.NewPool(rdb, auditWorker, fiscalWorker)
	pool.Start(ctx, cfg.WorkerPoolSize)

	r := router.New(db, rdb, cfg, dispatcher, fiscalCB)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	cancel() // stop workers

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
