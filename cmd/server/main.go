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

	"github.com/nagarik-sewa/backend/internal/config"
	"github.com/nagarik-sewa/backend/internal/directory"
	httpapi "github.com/nagarik-sewa/backend/internal/http"
	"github.com/nagarik-sewa/backend/internal/store"
	"github.com/nagarik-sewa/backend/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "sewa-backend").Logger()

	ctx := context.Background()

	var visitStore store.VisitStore
	if cfg.DatabaseURL == "" {
		visitStore = store.NewMemoryStore()
		logger.Info().Msg("using in-memory visit store")
	} else {
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		visitStore = pg
	}
	defer visitStore.Close()

	var dir *directory.Directory
	if cfg.DirectoryPath == "" {
		dir = directory.Seed()
		logger.Info().Int("offices", dir.Len()).Msg("using built-in office directory")
	} else {
		dir, err = directory.Load(cfg.DirectoryPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.DirectoryPath).Msg("failed to load office directory")
		}
		logger.Info().Int("offices", dir.Len()).Msg("office directory loaded")
	}

	router := httpapi.Router(cfg, visitStore, dir, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
