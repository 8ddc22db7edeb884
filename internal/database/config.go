package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"dossiers/internal/config"
	"dossiers/internal/models"
	"dossiers/internal/utils"
)

// Open connects to postgres, configures the pool and migrates the schema
func Open(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	baseLogger := logger.New(
		utils.NewZerologWriter(log),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLevel(zerolog.GlobalLevel()),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	// The batch lists incomplete folders on every run, keep it out of the logs
	customLogger := utils.NewCustomGormLogger(
		baseLogger,
		`FROM "folder" WHERE is_complete =`,
	)

	gormConfig := &gorm.Config{
		Logger: customLogger,
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		PrepareStmt: true,
	}

	maxRetries := cfg.Database.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	var db *gorm.DB
	var err error
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("Database connection attempt failed")
		if i < maxRetries-1 {
			time.Sleep(cfg.Database.RetryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info().Msg("Database connection established and migrations completed")
	return db, nil
}

// Migrate creates or updates the folder and reminder tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Folder{},
		&models.FolderItem{},
		&models.ReminderRecord{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormLevel(level zerolog.Level) logger.LogLevel {
	switch {
	case level <= zerolog.DebugLevel:
		return logger.Info
	case level <= zerolog.WarnLevel:
		return logger.Warn
	default:
		return logger.Error
	}
}
