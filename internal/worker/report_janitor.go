package worker

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/campusworks/review-portal/internal/config"
	"github.com/campusworks/review-portal/internal/repository"
	"github.com/rs/zerolog"
)

// sweepInterval is how often the janitor looks for stale PDFs.
const sweepInterval = time.Hour

// ReportJanitor removes generated PDFs past their retention age, together
// with their log rows. Sheets are cheap to regenerate, so the report
// directory never needs to grow without bound.
type ReportJanitor struct {
	cfg     *config.Config
	reports *repository.ReportRepository
	log     zerolog.Logger
}

// NewReportJanitor creates a new ReportJanitor.
func NewReportJanitor(cfg *config.Config, reports *repository.ReportRepository, log zerolog.Logger) *ReportJanitor {
	return &ReportJanitor{
		cfg:     cfg,
		reports: reports,
		log:     log.With().Str("component", "report_janitor").Logger(),
	}
}

// Start begins the sweep loop. Call in a goroutine.
func (w *ReportJanitor) Start(ctx context.Context) {
	w.log.Info().Dur("max_age", w.cfg.ReportMaxAge).Msg("janitor started")

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("janitor stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ReportJanitor) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-w.cfg.ReportMaxAge)
	files, err := w.reports.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		w.log.Error().Err(err).Msg("prune log rows failed")
		return
	}

	removed := 0
	for _, f := range files {
		path := filepath.Join(w.cfg.ReportDir, f)
		if err := os.Remove(path); err != nil {
			if !os.IsNotExist(err) {
				w.log.Warn().Err(err).Str("file", f).Msg("unlink failed")
			}
			continue
		}
		removed++
	}
	if len(files) > 0 {
		w.log.Info().Int("pruned", len(files)).Int("unlinked", removed).Msg("stale reports swept")
	}
}
