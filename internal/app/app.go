package app

import (
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"dossiers/internal/config"
	"dossiers/internal/database"
	"dossiers/internal/relance"
	"dossiers/internal/repository"
	"dossiers/internal/services"
)

// App holds the wired reminder components shared by the batch command and the server
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	DB         *gorm.DB
	Folders    *repository.FolderRepository
	Items      *repository.ItemRepository
	Dispatcher *relance.Dispatcher

	closeLock func() error
}

// New connects to the database and lock store and wires the dispatcher
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	db, err := database.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	locker, closeLock, err := services.NewLocker(cfg.Redis.URL, cfg.Relance.LockKey, cfg.Relance.LockTTL)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	folders := repository.NewFolderRepository(db)
	dispatcher := relance.NewDispatcher(
		folders,
		services.NewMailer(cfg, logger),
		relance.NewComposer(cfg.Relance.BaseURL),
		logger,
		relance.WithSendTimeout(cfg.Relance.SendTimeout),
		relance.WithLocker(locker),
	)

	return &App{
		Config:     cfg,
		Logger:     logger,
		DB:         db,
		Folders:    folders,
		Items:      repository.NewItemRepository(db),
		Dispatcher: dispatcher,
		closeLock:  closeLock,
	}, nil
}

// Close releases the database pool and the lock client
func (a *App) Close() error {
	return errors.Join(a.closeLock(), database.Close(a.DB))
}
