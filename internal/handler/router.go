package handler

import (
	"net/http"
	"time"

	"bedrock-chat/internal/config"
	"bedrock-chat/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin engine with middleware and all routes.
func SetupRouter(cfg *config.Config, chatHandler *ChatHandler) *gin.Engine {
	router := gin.New()

	router.Use(requestLogger())
	router.Use(gin.Recovery())

	if len(cfg.CORS.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     cfg.CORS.AllowedMethods,
			AllowHeaders:     cfg.CORS.AllowedHeaders,
			ExposeHeaders:    cfg.CORS.ExposedHeaders,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
		}))
	}

	router.SetHTMLTemplate(loadTemplates())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})
	router.GET("/", chatHandler.Index)

	api := router.Group("/api")
	{
		chat := api.Group("/chat")
		{
			chat.GET("/state", chatHandler.GetState)
			chat.POST("/prompt", chatHandler.SubmitPrompt)
			chat.POST("/session", chatHandler.CreateSession)
			chat.POST("/session/clear", chatHandler.ClearSessions)
			chat.GET("/session/:session_id", chatHandler.GetSession)
			chat.DELETE("/session/:session_id", chatHandler.DeleteSession)
			chat.PUT("/session/:session_id/current", chatHandler.SetCurrentSession)
			chat.GET("/settings", chatHandler.GetSettings)
			chat.PUT("/settings", chatHandler.UpdateSettings)
			chat.GET("/events", chatHandler.Events)
		}
	}

	return router
}

// requestLogger logs one line per request through the application logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logger.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		}).Debugf("Request handled")
	}
}
