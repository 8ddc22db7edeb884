package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// handleError provides a consistent way to handle and log errors
func handleError(c *gin.Context, log zerolog.Logger, status int, message string, err error) {
	log.Error().Err(err).Str("path", c.FullPath()).Str("client_ip", c.ClientIP()).Msg(message)
	c.JSON(status, gin.H{"error": message})
}

// HomeHandler handles requests to the root path "/"
func HomeHandler(c *gin.Context) {
	c.String(http.StatusOK, "Exchange dossier reminders")
}

// HealthHandler is a simple health check endpoint
func HealthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
