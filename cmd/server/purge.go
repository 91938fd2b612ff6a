package main

import (
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"radio-broadcast/internal/platform/config"
	"radio-broadcast/internal/platform/logger"
	"radio-broadcast/internal/storage"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete uploads older than RETENTION once and exit",
	RunE:  runPurge,
}

func runPurge(cmd *cobra.Command, args []string) error {
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

	n := storage.NewSweeper(disk.Dir(), cfg.Retention, cfg.SweepInterval, clock, log, nil).Sweep()
	log.Info("purge finished", slog.String("upload_dir", disk.Dir()), slog.Int("removed", n))
	return nil
}
