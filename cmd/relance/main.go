package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"dossiers/internal/app"
	"dossiers/internal/config"
	"dossiers/internal/logging"
	"dossiers/internal/relance"
	"dossiers/internal/services"
)

// Runs one reminder batch. Meant to be triggered by cron or another job runner;
// exits 0 once the batch completed, whatever the per-folder outcomes, and also
// when another batch already holds the lock.
func main() {
	os.Exit(run(os.Args[1:]))
}

// batch is what a run needs from the wired application
type batch struct {
	dispatcher *relance.Dispatcher
	lookup     relance.MissingItemsLookup
	close      func() error
}

// newBatch is replaced in tests
var newBatch = func(cfg *config.Config, logger zerolog.Logger) (*batch, error) {
	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &batch{dispatcher: a.Dispatcher, lookup: a.Items.MissingItems, close: a.Close}, nil
}

func run(args []string) int {
	flags := flag.NewFlagSet("relance", flag.ContinueOnError)
	configPath := flags.String("config", os.Getenv("CONFIG_PATH"), "optional YAML config file")
	cooldownDays := flags.Int("cooldown-days", -1, "override the cooldown between two reminders, in days")
	dryRun := flags.Bool("dry-run", false, "evaluate folders without sending or recording anything")
	reportPath := flags.String("report", "", "write the batch summary to this .xlsx file")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := logging.Configure(logging.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})

	days := cfg.Relance.CooldownDays
	if *cooldownDays >= 0 {
		days = *cooldownDays
	}

	b, err := newBatch(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize")
		return 1
	}
	defer func() {
		if err := b.close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close resources")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := b.dispatcher
	if *dryRun {
		dispatcher = dispatcher.DryRun()
	}

	summary, err := dispatcher.RunBatch(ctx, time.Now(), days, b.lookup)
	if errors.Is(err, relance.ErrRunInProgress) {
		// overlapping cron ticks are expected, the running batch covers this one
		logger.Warn().Msg("Another reminder batch is running, nothing done")
		return 0
	}
	if err != nil {
		logger.Error().Err(err).Msg("Reminder batch aborted")
		return 1
	}

	if *reportPath != "" {
		if err := services.WriteSummaryReport(summary, *reportPath); err != nil {
			logger.Error().Err(err).Msg("Failed to write report")
		} else {
			logger.Info().Str("path", *reportPath).Msg("Report written")
		}
	}
	return 0
}
