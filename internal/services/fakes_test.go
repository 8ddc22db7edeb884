package services

import (
	"bytes"
	"context"
	"sync"
	"time"

	"dossiers/internal/models"
)

type bytesBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *bytesBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *bytesBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type stubRepository struct {
	mu      sync.Mutex
	folders []models.Folder
	sent    map[uint]time.Time
}

func (r *stubRepository) ListIncompleteFolders(context.Context) ([]models.Folder, error) {
	return r.folders, nil
}

func (r *stubRepository) MostRecentReminder(_ context.Context, folderID uint) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if at, ok := r.sent[folderID]; ok {
		return &at, nil
	}
	return nil, nil
}

func (r *stubRepository) AppendReminderRecord(_ context.Context, folderID uint, _ string, _ []string) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent == nil {
		r.sent = make(map[uint]time.Time)
	}
	r.sent[folderID] = time.Now()
	return uint(len(r.sent)), nil
}

type countingMailer struct {
	mu sync.Mutex
	n  int
}

func (m *countingMailer) Send(context.Context, string, string, string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	return nil
}

func (m *countingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.n
}
