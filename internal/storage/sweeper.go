package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
)

// Sweeper periodically deletes files older than the retention window from a
// directory, whether or not anything still references them.
type Sweeper struct {
	dir       string
	retention time.Duration
	interval  time.Duration
	clock     clockwork.Clock
	log       *slog.Logger
	onRemoved func(n int)
}

// NewSweeper returns a Sweeper for dir. onRemoved, when non-nil, receives the
// count of files removed by each pass.
func NewSweeper(dir string, retention, interval time.Duration, clock clockwork.Clock, log *slog.Logger, onRemoved func(int)) *Sweeper {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sweeper{
		dir:       dir,
		retention: retention,
		interval:  interval,
		clock:     clock,
		log:       log,
		onRemoved: onRemoved,
	}
}

// Run sweeps once per interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.Sweep()
		}
	}
}

// Sweep removes every regular file whose modification time is older than the
// retention window and returns how many were removed. Failures are logged and
// skipped.
func (s *Sweeper) Sweep() int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Debug("retention sweep: read dir", slog.String("dir", s.dir), slog.String("error", err.Error()))
		return 0
	}

	cutoff := s.clock.Now().Add(-s.retention)
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			s.log.Debug("retention sweep: remove", slog.String("file", e.Name()), slog.String("error", err.Error()))
			continue
		}
		removed++
	}

	if removed > 0 {
		s.log.Info("retention sweep removed files", slog.Int("count", removed))
	}
	if s.onRemoved != nil {
		s.onRemoved(removed)
	}
	return removed
}
