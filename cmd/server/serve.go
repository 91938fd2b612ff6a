package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"radio-broadcast/internal/api"
	"radio-broadcast/internal/broadcast"
	"radio-broadcast/internal/hub"
	"radio-broadcast/internal/media"
	"radio-broadcast/internal/platform/config"
	"radio-broadcast/internal/platform/logger"
	"radio-broadcast/internal/platform/metrics"
	"radio-broadcast/internal/session"
	"radio-broadcast/internal/storage"
	"radio-broadcast/internal/track"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the broadcast server (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	clock := clockwork.NewRealClock()

	disk, err := storage.NewDisk(cfg.UploadDir, clock)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	accounts, err := session.ParseAccounts(cfg.Moderators, cfg.Listeners)
	if err != nil {
		return fmt.Errorf("accounts: %w", err)
	}

	met := metrics.New()
	sessions := session.NewStore()
	tracks := track.NewRegistry()

	station := broadcast.NewStation(broadcast.Identity{Name: cfg.StationName, Frequency: cfg.StationFrequency})
	live := hub.New(station, log, hub.Config{Clock: clock, OnCount: met.SetListeners})
	station.Observe(func(ev broadcast.Event, s broadcast.PublicState) {
		met.IncTransition(string(ev))
		live.Publish(s)
	})

	h := api.NewHandler(api.Deps{
		Station:        station,
		Sessions:       sessions,
		Accounts:       accounts,
		Throttle:       session.NewThrottle(cfg.LoginRate, cfg.LoginBurst),
		Tracks:         tracks,
		Disk:           disk,
		Media:          media.NewServer(tracks, log, met),
		Live:           live,
		Log:            log,
		Metrics:        met,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", met.Handler(func() { met.SetSessions(sessions.Len()) }).ServeHTTP)
	r.Mount("/", h.Routes())
	if cfg.StaticDir != "" {
		r.NotFound(http.FileServer(http.Dir(cfg.StaticDir)).ServeHTTP)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := storage.NewSweeper(disk.Dir(), cfg.Retention, cfg.SweepInterval, clock, log, met.AddFilesPurged)
	go sweeper.Run(ctx)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info("server starting",
		slog.String("port", cfg.Port),
		slog.String("upload_dir", disk.Dir()),
		slog.String("station", cfg.StationName),
		slog.Duration("retention", cfg.Retention),
		slog.String("log_level", cfg.LogLevel),
	)

	select {
	case err := <-errCh:
		live.Close()
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	live.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
