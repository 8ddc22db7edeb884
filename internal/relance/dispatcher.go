package relance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dossiers/internal/models"
)

// DefaultSendTimeout bounds a single call to the mailer
const DefaultSendTimeout = 30 * time.Second

// FolderRepository is the storage the dispatcher reads folders from and appends history to
type FolderRepository interface {
	ListIncompleteFolders(ctx context.Context) ([]models.Folder, error)
	MostRecentReminder(ctx context.Context, folderID uint) (*time.Time, error)
	AppendReminderRecord(ctx context.Context, folderID uint, message string, itemsSnapshot []string) (uint, error)
}

// Mailer delivers one HTML email. Any non-nil error is a failed send.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// MissingItemsLookup returns the labels of the items still missing from a folder
type MissingItemsLookup func(ctx context.Context, folderID uint) ([]string, error)

// Locker serializes batch runs across processes.
// TryLock returns ErrRunInProgress when the lock is already held.
type Locker interface {
	TryLock(ctx context.Context) (unlock func(context.Context) error, err error)
}

// Dispatcher runs reminder batches over the incomplete folders
type Dispatcher struct {
	repo        FolderRepository
	mailer      Mailer
	composer    *Composer
	logger      zerolog.Logger
	locker      Locker
	sendTimeout time.Duration
	dryRun      bool
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithSendTimeout overrides DefaultSendTimeout
func WithSendTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.sendTimeout = d
		}
	}
}

// WithLocker makes every run hold l for its whole duration
func WithLocker(l Locker) Option {
	return func(disp *Dispatcher) { disp.locker = l }
}

// NewDispatcher wires a dispatcher from its collaborators
func NewDispatcher(repo FolderRepository, mailer Mailer, composer *Composer, logger zerolog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		repo:        repo,
		mailer:      mailer,
		composer:    composer,
		logger:      logger.With().Str("component", "relance").Logger(),
		sendTimeout: DefaultSendTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DryRun returns a copy of d that composes reminders but never sends or records them
func (d *Dispatcher) DryRun() *Dispatcher {
	c := *d
	c.dryRun = true
	return &c
}

// RunBatch sends a reminder to every eligible incomplete folder.
// Folders are processed one at a time; a folder's failure is recorded in the
// summary and never stops the batch. Only failing to list the folders (or to
// take the run lock) is returned as an error.
func (d *Dispatcher) RunBatch(ctx context.Context, now time.Time, cooldownDays int, lookup MissingItemsLookup) (*BatchSummary, error) {
	if d.locker != nil {
		unlock, err := d.locker.TryLock(ctx)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := unlock(context.Background()); err != nil {
				d.logger.Warn().Err(err).Msg("Failed to release run lock")
			}
		}()
	}

	started := time.Now()
	folders, err := d.repo.ListIncompleteFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomplete folders: %w", err)
	}

	summary := newBatchSummary(now, cooldownDays, d.dryRun)
	for _, folder := range folders {
		summary.record(d.processFolder(ctx, folder, now, cooldownDays, lookup))
	}
	summary.Elapsed = time.Since(started)

	d.logger.Info().
		Int("folders", len(folders)).
		Int("failures", summary.Failures()).
		Bool("dry_run", d.dryRun).
		Msg(summary.String())
	return summary, nil
}

func (d *Dispatcher) processFolder(ctx context.Context, folder models.Folder, now time.Time, cooldownDays int, lookup MissingItemsLookup) FolderResult {
	result := FolderResult{FolderID: folder.ID}
	log := d.logger.With().Uint("folder_id", folder.ID).Logger()

	to, ok := ResolveRecipient(folder)
	if !ok {
		log.Debug().Msg("No contact address, skipping")
		result.Outcome = OutcomeSkippedNoEmail
		return result
	}
	result.Recipient = to

	last, err := d.repo.MostRecentReminder(ctx, folder.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read reminder history")
		result.Outcome = OutcomeFailedPersist
		result.Error = err.Error()
		return result
	}
	if !IsEligible(last, now, cooldownDays) {
		log.Debug().Time("last_sent_at", *last).Msg("Reminded recently, skipping")
		result.Outcome = OutcomeSkippedCooldown
		return result
	}

	var items []string
	if lookup != nil {
		if items, err = lookup(ctx, folder.ID); err != nil {
			log.Warn().Err(err).Msg("Missing items lookup failed, sending generic reminder")
			items = nil
		}
	}
	msg := d.composer.Compose(folder.ID, DisplayName(folder), items)

	if d.dryRun {
		result.Outcome = OutcomeDryRun
		return result
	}

	if err := d.send(ctx, to, msg); err != nil {
		log.Warn().Err(err).Str("to", to).Msg("Failed to send reminder")
		result.Outcome = OutcomeFailedSend
		result.Error = err.Error()
		return result
	}

	recordID, err := d.repo.AppendReminderRecord(ctx, folder.ID, summarize(to, msg), items)
	if err != nil {
		// the email is already out: the next run will not see it and may send again early
		log.Error().Err(err).Str("to", to).Msg("Reminder sent but not recorded")
		result.Outcome = OutcomeFailedPersist
		result.Error = err.Error()
		return result
	}

	log.Info().Str("to", to).Uint("record_id", recordID).Msg("Reminder sent")
	result.Outcome = OutcomeSent
	result.RecordID = recordID
	return result
}

// send calls the mailer under the send timeout. A mailer that does not return
// in time, or panics, counts as a failed send.
func (d *Dispatcher) send(ctx context.Context, to string, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("mailer panic: %v", r)
			}
		}()
		done <- d.mailer.Send(ctx, to, msg.Subject, msg.HTMLBody)
	}()

	select {
	case err := <-done:
		if err != nil {
			return &SendError{To: to, Err: err}
		}
		return nil
	case <-ctx.Done():
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("no response after %s: %w", d.sendTimeout, err)
		}
		return &SendError{To: to, Err: err}
	}
}

func summarize(to string, msg Message) string {
	return fmt.Sprintf("%s (to %s)", msg.Subject, to)
}
