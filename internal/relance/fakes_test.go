package relance

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"dossiers/internal/models"
)

var errStorage = errors.New("connection refused")

// memRepository is an in-memory FolderRepository
type memRepository struct {
	mu        sync.Mutex
	folders   []models.Folder
	records   []models.ReminderRecord
	clock     func() time.Time
	listErr   error
	lastErr   error
	appendErr error
}

func newMemRepository(clock func() time.Time, folders ...models.Folder) *memRepository {
	return &memRepository{folders: folders, clock: clock}
}

func (r *memRepository) ListIncompleteFolders(context.Context) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, &PersistenceError{Op: "list incomplete folders", Err: r.listErr}
	}
	out := make([]models.Folder, 0)
	for _, f := range r.folders {
		if !f.IsComplete {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepository) MostRecentReminder(_ context.Context, folderID uint) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastErr != nil {
		return nil, &PersistenceError{Op: "read last reminder", Err: r.lastErr}
	}
	var last *time.Time
	for i := range r.records {
		if r.records[i].FolderID == folderID {
			at := r.records[i].SentAt
			last = &at
		}
	}
	return last, nil
}

func (r *memRepository) AppendReminderRecord(_ context.Context, folderID uint, message string, items []string) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return 0, &PersistenceError{Op: "append reminder record", Err: r.appendErr}
	}
	id := uint(len(r.records) + 1)
	r.records = append(r.records, models.ReminderRecord{ID: id, FolderID: folderID, SentAt: r.clock(), Message: message})
	return id, nil
}

func (r *memRepository) recordsFor(folderID uint) []models.ReminderRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ReminderRecord
	for _, rec := range r.records {
		if rec.FolderID == folderID {
			out = append(out, rec)
		}
	}
	return out
}

type sentMail struct {
	to, subject, html string
}

// fakeMailer records sends; failFor makes sends to an address fail
type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failFor map[string]error
	block   bool
	panics  bool
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, html string) error {
	if m.panics {
		panic("provider exploded")
	}
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[to]; ok {
		return err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, html: html})
	return nil
}

func (m *fakeMailer) sentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.sent {
		out = append(out, s.to)
	}
	return out
}

type stubLocker struct {
	err      error
	released int
}

func (l *stubLocker) TryLock(context.Context) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}
