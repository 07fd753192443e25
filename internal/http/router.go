package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/girmmy/gimmyai/internal/service"
)

// RouterOptions agrupa lo que necesita el router además de los handlers.
type RouterOptions struct {
	MaintenanceMode     bool
	MaintenanceScenario string
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	chatH *ChatHandler,
	opts RouterOptions,
) *gin.Engine {
	r := gin.New()

	// Middlewares básicos: logging, recovery y modo mantenimiento.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery())
	r.Use(MaintenanceMiddleware(opts.MaintenanceMode, opts.MaintenanceScenario))

	r.GET("/healthz", healthz)

	auth := JWTAuthMiddleware(jwtSvc)

	sessions := r.Group("/sessions", auth)
	sessions.POST("", chatH.OpenSession)
	sessions.DELETE("/:id", chatH.CloseSession)
	sessions.PUT("/:id/conversation", chatH.SelectConversation)

	conversations := r.Group("/conversations", auth)
	conversations.GET("", chatH.ListConversations)
	conversations.POST("", chatH.CreateConversation)
	conversations.DELETE("/:id", chatH.DeleteConversation)
	conversations.GET("/:id/messages", chatH.ListMessages)
	conversations.GET("/:id/stream", chatH.StreamMessages)

	r.POST("/messages", auth, chatH.SubmitMessage)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
