package models

import "time"

// Folder represents a student's exchange application (dossier)
type Folder struct {
	ID               uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	IsComplete       bool         `gorm:"not null;default:false;index" json:"is_complete"`
	StudentEmail     *string      `gorm:"size:255" json:"student_email"`
	ResponsibleEmail *string      `gorm:"size:255" json:"responsible_email"` // guardian or coordinator
	StudentFirstName string       `gorm:"size:100" json:"student_first_name"`
	StudentLastName  string       `gorm:"size:100" json:"student_last_name"`
	Items            []FolderItem `gorm:"foreignKey:FolderID" json:"items,omitempty"`
	CreatedAt        time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null" json:"updated_at"`
}

// FolderItem is one required piece of a folder's checklist
type FolderItem struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FolderID uint   `gorm:"not null;index" json:"folder_id"`
	Label    string `gorm:"size:255;not null" json:"label"`
	Position int    `gorm:"not null;default:0" json:"position"`
	Provided bool   `gorm:"not null;default:false" json:"provided"`
}
