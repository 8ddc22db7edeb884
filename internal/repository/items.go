package repository

import (
	"context"

	"gorm.io/gorm"

	"dossiers/internal/models"
	"dossiers/internal/relance"
)

// ItemRepository answers which checklist items a folder is still missing
type ItemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates an item repository on db
func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// MissingItems returns the labels of the items not provided yet, in checklist order.
// It has the relance.MissingItemsLookup signature.
func (r *ItemRepository) MissingItems(ctx context.Context, folderID uint) ([]string, error) {
	labels := make([]string, 0)
	if err := r.db.WithContext(ctx).
		Model(&models.FolderItem{}).
		Where("folder_id = ? AND provided = ?", folderID, false).
		Order("position ASC, id ASC").
		Pluck("label", &labels).Error; err != nil {
		return nil, &relance.PersistenceError{Op: "list missing items", Err: err}
	}
	return labels, nil
}

var _ relance.MissingItemsLookup = (*ItemRepository)(nil).MissingItems
