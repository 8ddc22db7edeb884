package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"dossiers/internal/relance"
)

// ReminderWorker runs the reminder batch on a fixed interval
type ReminderWorker struct {
	dispatcher   *relance.Dispatcher
	lookup       relance.MissingItemsLookup
	cooldownDays int
	interval     time.Duration
	logger       zerolog.Logger
	now          func() time.Time
}

// NewReminderWorker creates a worker running dispatcher every interval
func NewReminderWorker(dispatcher *relance.Dispatcher, lookup relance.MissingItemsLookup, cooldownDays int, interval time.Duration, logger zerolog.Logger) *ReminderWorker {
	return &ReminderWorker{
		dispatcher:   dispatcher,
		lookup:       lookup,
		cooldownDays: cooldownDays,
		interval:     interval,
		logger:       logger.With().Str("component", "reminder_worker").Logger(),
		now:          time.Now,
	}
}

// Start runs the worker in the background until ctx is done
func (w *ReminderWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *ReminderWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Dur("interval", w.interval).Msg("Reminder worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Reminder worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce runs a single batch and logs its outcome
func (w *ReminderWorker) RunOnce(ctx context.Context) *relance.BatchSummary {
	summary, err := w.dispatcher.RunBatch(ctx, w.now(), w.cooldownDays, w.lookup)
	switch {
	case errors.Is(err, relance.ErrRunInProgress):
		w.logger.Info().Msg("Previous batch still running, skipping tick")
	case err != nil:
		w.logger.Error().Err(err).Msg("Reminder batch failed")
	}
	return summary
}
