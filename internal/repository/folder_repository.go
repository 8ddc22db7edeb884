package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dossiers/internal/models"
	"dossiers/internal/relance"
)

// FolderRepository reads folders and their reminder history through gorm
type FolderRepository struct {
	db  *gorm.DB
	now func() time.Time
}

var _ relance.FolderRepository = (*FolderRepository)(nil)

// NewFolderRepository creates a repository on db
func NewFolderRepository(db *gorm.DB) *FolderRepository {
	return &FolderRepository{db: db, now: time.Now}
}

// ListIncompleteFolders returns every folder not yet complete, by ascending id
func (r *FolderRepository) ListIncompleteFolders(ctx context.Context) ([]models.Folder, error) {
	folders := make([]models.Folder, 0)
	if err := r.db.WithContext(ctx).
		Where("is_complete = ?", false).
		Order("id ASC").
		Find(&folders).Error; err != nil {
		return nil, &relance.PersistenceError{Op: "list incomplete folders", Err: err}
	}
	return folders, nil
}

// MostRecentReminder returns when the folder was last reminded, nil if never
func (r *FolderRepository) MostRecentReminder(ctx context.Context, folderID uint) (*time.Time, error) {
	var records []models.ReminderRecord
	if err := r.db.WithContext(ctx).
		Where("folder_id = ?", folderID).
		Order("id DESC").
		Limit(1).
		Find(&records).Error; err != nil {
		return nil, &relance.PersistenceError{Op: "read last reminder", Err: err}
	}
	if len(records) == 0 {
		return nil, nil
	}
	sentAt := records[0].SentAt
	return &sentAt, nil
}

// AppendReminderRecord adds an entry to the folder's history and returns its id.
// The folder row is locked for the duration of the insert so appends for one
// folder are serialized and sent_at never goes backwards.
func (r *FolderRepository) AppendReminderRecord(ctx context.Context, folderID uint, message string, itemsSnapshot []string) (uint, error) {
	record := models.ReminderRecord{
		FolderID: folderID,
		SentAt:   r.now().UTC(),
		Message:  message,
	}
	if len(itemsSnapshot) > 0 {
		raw, err := json.Marshal(itemsSnapshot)
		if err != nil {
			return 0, &relance.PersistenceError{Op: "encode items snapshot", Err: err}
		}
		record.ItemsSnapshot = datatypes.JSON(raw)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var folder models.Folder
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&folder, folderID).Error; err != nil {
			return fmt.Errorf("folder %d: %w", folderID, err)
		}

		var last []models.ReminderRecord
		if err := tx.Where("folder_id = ?", folderID).Order("id DESC").Limit(1).Find(&last).Error; err != nil {
			return err
		}
		if len(last) > 0 && record.SentAt.Before(last[0].SentAt) {
			record.SentAt = last[0].SentAt
		}

		return tx.Create(&record).Error
	})
	if err != nil {
		return 0, &relance.PersistenceError{Op: "append reminder record", Err: err}
	}
	return record.ID, nil
}

// ListReminders returns a folder's reminder history in insertion order
func (r *FolderRepository) ListReminders(ctx context.Context, folderID uint) ([]models.ReminderRecord, error) {
	records := make([]models.ReminderRecord, 0)
	if err := r.db.WithContext(ctx).
		Where("folder_id = ?", folderID).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, &relance.PersistenceError{Op: "list reminders", Err: err}
	}
	return records, nil
}
