package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/girmmy/gimmyai/internal/domain"
)

// MaintenanceMiddleware sirve la página informativa estática cuando el modo
// mantenimiento está activo. Se lee una vez al arrancar; no hay toggle dinámico.
func MaintenanceMiddleware(enabled bool, scenario string) gin.HandlerFunc {
	notice := domain.MaintenanceNoticeFor(scenario)
	return func(c *gin.Context) {
		if !enabled || c.Request.URL.Path == "/healthz" {
			c.Next()
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"maintenance": notice})
		c.Abort()
	}
}
