package models

import (
	"time"

	"gorm.io/datatypes"
)

// ReminderRecord is an append-only entry in a folder's reminder history.
// One row is written per confirmed send, never for skipped or failed attempts.
type ReminderRecord struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	FolderID      uint           `gorm:"not null;index" json:"folder_id"`
	Folder        *Folder        `gorm:"foreignKey:FolderID;constraint:OnDelete:RESTRICT" json:"-"`
	SentAt        time.Time      `gorm:"not null" json:"sent_at"`
	Message       string         `gorm:"type:text;not null" json:"message"`
	ItemsSnapshot datatypes.JSON `json:"items_snapshot"` // missing items at send time, null if none
}
