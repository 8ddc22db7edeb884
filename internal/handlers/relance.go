package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"dossiers/internal/models"
	"dossiers/internal/relance"
)

// ReminderHistory lists a folder's reminder records
type ReminderHistory interface {
	ListReminders(ctx context.Context, folderID uint) ([]models.ReminderRecord, error)
}

// RelanceHandler exposes the reminder batch and history over HTTP
type RelanceHandler struct {
	dispatcher   *relance.Dispatcher
	history      ReminderHistory
	lookup       relance.MissingItemsLookup
	cooldownDays int
	logger       zerolog.Logger
	now          func() time.Time
}

// NewRelanceHandler creates the handler; cooldownDays is used when a request does not override it
func NewRelanceHandler(dispatcher *relance.Dispatcher, history ReminderHistory, lookup relance.MissingItemsLookup, cooldownDays int, logger zerolog.Logger) *RelanceHandler {
	return &RelanceHandler{
		dispatcher:   dispatcher,
		history:      history,
		lookup:       lookup,
		cooldownDays: cooldownDays,
		logger:       logger,
		now:          time.Now,
	}
}

// Register mounts the routes on r
func (h *RelanceHandler) Register(r gin.IRoutes) {
	r.POST("/relances/run", h.RunBatch)
	r.GET("/folders/:id/reminders", h.ListReminders)
}

// RunBatch runs one reminder batch and returns its summary.
// Query: cooldown_days (int, optional), dry_run (bool, optional).
func (h *RelanceHandler) RunBatch(c *gin.Context) {
	cooldownDays := h.cooldownDays
	if v := c.Query("cooldown_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cooldown_days must be a non-negative integer"})
			return
		}
		cooldownDays = n
	}

	dispatcher := h.dispatcher
	if v := c.Query("dry_run"); v != "" {
		dryRun, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dry_run must be a boolean"})
			return
		}
		if dryRun {
			dispatcher = dispatcher.DryRun()
		}
	}

	h.logger.Info().Str("client_ip", c.ClientIP()).Int("cooldown_days", cooldownDays).Msg("Manual reminder batch requested")

	summary, err := dispatcher.RunBatch(c.Request.Context(), h.now(), cooldownDays, h.lookup)
	if errors.Is(err, relance.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "Failed to run reminder batch", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListReminders returns the reminder history of one folder
func (h *RelanceHandler) ListReminders(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid folder id"})
		return
	}

	records, err := h.history.ListReminders(c.Request.Context(), uint(id))
	if err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "Failed to load reminder history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"folder_id": id, "reminders": records})
}
