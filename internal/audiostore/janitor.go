package audiostore

import (
	"context"
	"log/slog"
	"time"

	"ytmp3/internal/logging"
	"ytmp3/internal/services"
)

// Janitor periodically removes files that were converted but never downloaded.
type Janitor struct {
	store    *Store
	interval time.Duration
	maxAge   time.Duration
	logger   *slog.Logger
}

// NewJanitor creates a janitor that sweeps store every interval, removing
// files older than maxAge.
func NewJanitor(store *Store, interval, maxAge time.Duration, logger *slog.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Janitor{
		store:    store,
		interval: interval,
		maxAge:   maxAge,
		logger:   logging.NewComponentLogger(logger, "janitor"),
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (j *Janitor) Run(ctx context.Context) error {
	j.logger.Info("janitor started",
		logging.Duration("interval", j.interval),
		logging.Duration("max_age", j.maxAge),
		logging.String("dir", j.store.Dir()),
	)
	j.Sweep(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Debug("janitor stopped")
			return nil
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep performs one cleanup pass.
func (j *Janitor) Sweep(ctx context.Context) CleanStaleResult {
	ctx = services.WithOperation(ctx, "sweep")
	logger := logging.WithContext(ctx, j.logger)

	start := time.Now()
	result := j.store.CleanStale(ctx, j.maxAge, logger)

	attrs := []logging.Attr{
		logging.Int("removed", len(result.Removed)),
		logging.Int("errors", len(result.Errors)),
		logging.Duration("elapsed", time.Since(start)),
	}
	if len(result.Errors) > 0 {
		logging.WarnWithContext(logger, "sweep finished with errors", "sweep_complete",
			append(attrs,
				logging.String(logging.FieldErrorHint, "check downloads_dir permissions"),
				logging.String(logging.FieldImpact, "some expired files remain on disk"),
			)...,
		)
		return result
	}
	attrs = append(attrs, logging.String(logging.FieldEventType, "sweep_complete"))
	if len(result.Removed) > 0 {
		logger.Info("sweep finished", logging.Args(attrs...)...)
	} else {
		logger.Debug("sweep finished", logging.Args(attrs...)...)
	}
	return result
}
