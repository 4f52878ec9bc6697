package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/couchsync/couchsync/internal/adapters/http"
	wssignal "github.com/couchsync/couchsync/internal/adapters/signal"
	"github.com/couchsync/couchsync/internal/app"
	"github.com/couchsync/couchsync/internal/config"
	"github.com/couchsync/couchsync/internal/core"
	"github.com/couchsync/couchsync/internal/tasks"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	store := core.NewRoomStore()
	presence := core.NewPresenceTracker(store)
	registry := app.NewRegistry()
	broadcaster := core.NewRouter(store, registry)
	coord := core.NewSessionCoordinator(store, presence, broadcaster, registry, app.PolicyFor(cfg.Policy))

	reaper := tasks.NewReaper(coord, cfg.RoomTTL)
	if err := reaper.Start(cfg.ReapSpec); err != nil {
		log.Error().Err(err).Msg("failed to start room reaper")
	}
	defer reaper.Stop()

	ctrl := wssignal.NewWatchWSController(coord, registry, cfg)
	r := router.SetupRouter(ctx, cfg, store, ctrl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("couchsync server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
