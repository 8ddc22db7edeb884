package repository

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"dossiers/internal/database"
	"dossiers/internal/models"
)

// prepareDB connects to TEST_DATABASE_URL, migrates and empties the tables.
// Tests are skipped when the variable is not set.
func prepareDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, db.Exec(`TRUNCATE reminder_record, folder_item, folder RESTART IDENTITY CASCADE`).Error)

	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func createFolder(t *testing.T, db *gorm.DB, folder models.Folder) models.Folder {
	t.Helper()
	require.NoError(t, db.Create(&folder).Error)
	return folder
}

func strPtr(s string) *string { return &s }
