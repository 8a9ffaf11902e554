// Package testevents writes synthetic input tables for local runs and tests.
package testevents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/okian/topskim/internal/adapters/source"
	"github.com/okian/topskim/pkg/logger"
)

// ErrInvalidConfig is returned for unusable fixture settings.
var ErrInvalidConfig = errors.New("invalid fixture config")

// Run generates cfg.NumEvents events into cfg.OutDir and writes a manifest
// next to the tables.
func Run(ctx context.Context, cfg *Config) (Stats, error) {
	if cfg.OutDir == "" {
		return Stats{}, fmt.Errorf("%w: empty output directory", ErrInvalidConfig)
	}
	if cfg.NumEvents < 0 {
		return Stats{}, fmt.Errorf("%w: negative event count %d", ErrInvalidConfig, cfg.NumEvents)
	}

	stats := Stats{
		FixtureID: uuid.NewString(),
		Seed:      cfg.Seed,
		PP:        cfg.PP,
		MC:        cfg.MC,
		StartTime: time.Now(),
	}
	log := logger.Get().Named("testevents")
	log.Info(ctx, "generating fixture",
		logger.String("fixture_id", stats.FixtureID),
		logger.String("dir", cfg.OutDir),
		logger.Int("events", cfg.NumEvents),
		logger.Int64("seed", int64(cfg.Seed)), //nolint:gosec // seeds are logged as-is
		logger.Bool("pp", cfg.PP),
	)

	if err := os.MkdirAll(cfg.OutDir, directoryPermission); err != nil {
		return stats, fmt.Errorf("failed to create directory: %w", err)
	}
	w, err := source.Create(cfg.OutDir, cfg.PP)
	if err != nil {
		return stats, err
	}

	gen := NewGenerator(cfg.Seed, cfg.PP, cfg.MC)
	for i := 0; i < cfg.NumEvents; i++ {
		if err := ctx.Err(); err != nil {
			_ = w.Close()
			return stats, err
		}
		dup := cfg.DuplicateEvery > 0 && i > 0 && i%cfg.DuplicateEvery == 0
		ev := gen.Event(dup)
		if err := w.Write(ev); err != nil {
			_ = w.Close()
			return stats, err
		}
		stats.Events++
		stats.TotalWeight += ev.Global.Weight
		if dup {
			stats.Duplicates++
		}
		if len(ev.Muons)+len(ev.Electrons) >= 2 {
			stats.Dileptons++
		}
	}
	if err := w.Close(); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(stats.StartTime)
	if err := writeManifest(cfg.OutDir, stats); err != nil {
		return stats, err
	}

	log.Info(ctx, "fixture written",
		logger.String("fixture_id", stats.FixtureID),
		logger.Int("events", stats.Events),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("dileptons", stats.Dileptons),
		logger.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// writeManifest records how the fixture was produced.
func writeManifest(dir string, stats Stats) error { //nolint:gocritic // hugeParam: written once
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestName), append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
