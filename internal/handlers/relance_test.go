package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dossiers/internal/models"
	"dossiers/internal/relance"
)

type memStore struct {
	mu      sync.Mutex
	folders []models.Folder
	records []models.ReminderRecord
	listErr error
}

func (s *memStore) ListIncompleteFolders(context.Context) ([]models.Folder, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.folders, nil
}

func (s *memStore) MostRecentReminder(_ context.Context, folderID uint) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var last *time.Time
	for _, r := range s.records {
		if r.FolderID == folderID {
			at := r.SentAt
			last = &at
		}
	}
	return last, nil
}

func (s *memStore) AppendReminderRecord(_ context.Context, folderID uint, message string, _ []string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uint(len(s.records) + 1)
	s.records = append(s.records, models.ReminderRecord{ID: id, FolderID: folderID, SentAt: time.Now(), Message: message})
	return id, nil
}

func (s *memStore) ListReminders(_ context.Context, folderID uint) ([]models.ReminderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ReminderRecord, 0)
	for _, r := range s.records {
		if r.FolderID == folderID {
			out = append(out, r)
		}
	}
	return out, nil
}

type okMailer struct{ sent int }

func (m *okMailer) Send(context.Context, string, string, string) error {
	m.sent++
	return nil
}

type busyLocker struct{}

func (busyLocker) TryLock(context.Context) (func(context.Context) error, error) {
	return nil, relance.ErrRunInProgress
}

func setupRouter(store *memStore, mailer relance.Mailer, opts ...relance.Option) *gin.Engine {
	gin.SetMode(gin.TestMode)
	d := relance.NewDispatcher(store, mailer, relance.NewComposer("https://x.org/f/{id}"), zerolog.Nop(), opts...)
	r := gin.New()
	r.GET("/health", HealthHandler)
	NewRelanceHandler(d, store, nil, relance.DefaultCooldownDays, zerolog.Nop()).Register(r)
	return r
}

func perform(r http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	w := perform(setupRouter(&memStore{}, &okMailer{}), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestRelanceHandler_RunBatch(t *testing.T) {
	email := "a@b.com"
	newStore := func() *memStore {
		return &memStore{folders: []models.Folder{{ID: 1, StudentEmail: &email}, {ID: 2}}}
	}

	tests := []struct {
		name       string
		target     string
		opts       []relance.Option
		listErr    error
		wantStatus int
		wantCounts map[relance.Outcome]int
		wantSent   int
	}{
		{name: "runs batch", target: "/relances/run", wantStatus: http.StatusOK,
			wantCounts: map[relance.Outcome]int{relance.OutcomeSent: 1, relance.OutcomeSkippedNoEmail: 1}, wantSent: 1},
		{name: "dry run", target: "/relances/run?dry_run=true", wantStatus: http.StatusOK,
			wantCounts: map[relance.Outcome]int{relance.OutcomeDryRun: 1, relance.OutcomeSkippedNoEmail: 1}},
		{name: "custom cooldown", target: "/relances/run?cooldown_days=0", wantStatus: http.StatusOK,
			wantCounts: map[relance.Outcome]int{relance.OutcomeSent: 1, relance.OutcomeSkippedNoEmail: 1}, wantSent: 1},
		{name: "invalid cooldown", target: "/relances/run?cooldown_days=-1", wantStatus: http.StatusBadRequest},
		{name: "invalid dry run", target: "/relances/run?dry_run=maybe", wantStatus: http.StatusBadRequest},
		{name: "run in progress", target: "/relances/run", opts: []relance.Option{relance.WithLocker(busyLocker{})}, wantStatus: http.StatusConflict},
		{name: "list failure", target: "/relances/run", listErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore()
			store.listErr = tt.listErr
			mailer := &okMailer{}

			w := perform(setupRouter(store, mailer, tt.opts...), http.MethodPost, tt.target)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantSent, mailer.sent)

			if tt.wantCounts != nil {
				var summary relance.BatchSummary
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
				assert.Equal(t, tt.wantCounts, summary.Counts)
				assert.Len(t, summary.Results, 2)
			}
		})
	}
}

func TestRelanceHandler_ListReminders(t *testing.T) {
	store := &memStore{records: []models.ReminderRecord{
		{ID: 1, FolderID: 4, Message: "first"},
		{ID: 2, FolderID: 5, Message: "other"},
		{ID: 3, FolderID: 4, Message: "second"},
	}}
	r := setupRouter(store, &okMailer{})

	w := perform(r, http.MethodGet, "/folders/4/reminders")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		FolderID  uint                    `json:"folder_id"`
		Reminders []models.ReminderRecord `json:"reminders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, uint(4), body.FolderID)
	require.Len(t, body.Reminders, 2)
	assert.Equal(t, "first", body.Reminders[0].Message)
	assert.Equal(t, "second", body.Reminders[1].Message)

	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/folders/abc/reminders").Code)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/folders/0/reminders").Code)
}
