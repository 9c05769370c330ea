package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper deletes aged generated artifacts from the public directory. It only
// touches files carrying the artifact prefix, so catalog tiles and renders
// are never collected.
type Sweeper struct {
	dir    string
	prefix string
	maxAge time.Duration
	logger zerolog.Logger
}

// NewSweeper builds a sweeper over dir for files starting with prefix.
func NewSweeper(dir, prefix string, maxAge time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{dir: dir, prefix: prefix, maxAge: maxAge, logger: logger}
}

// Run sweeps on the given interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.SweepOnce(time.Now())
			if err != nil {
				s.logger.Warn().Err(err).Msg("artifact sweep failed")
				continue
			}
			if removed > 0 {
				s.logger.Info().Int("removed", removed).Msg("swept aged artifacts")
			}
		}
	}
}

// SweepOnce removes matching files whose modification time is older than the
// configured age and returns how many were deleted.
func (s *Sweeper) SweepOnce(now time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	cutoff := now.Add(-s.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), s.prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
