package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/IliaW/lead-hunter/config"
	"github.com/gin-gonic/gin"
)

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 30 * time.Second
	idleTimeout  = 60 * time.Second
	adminHeader  = "X-Admin-Key"
)

func NewServer(cfg *config.Config, h *Handler) *http.Server {
	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	SetupRoutes(router, h, cfg.IntakeSettings.AdminKey)

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

func SetupRoutes(router *gin.Engine, h *Handler, adminKey string) {
	router.GET("/ping", Ping)
	router.POST("/apply", h.Apply)

	admin := router.Group("/admin", RequireAdmin(adminKey))
	admin.GET("/applications", h.ListApplications)
	admin.GET("/applications/download", h.DownloadApplications)
}

// RequireAdmin checks the shared secret from the X-Admin-Key header or the key query
// parameter. An empty configured key locks the admin view.
func RequireAdmin(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(adminHeader)
		if provided == "" {
			provided = c.Query("key")
		}
		if adminKey == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(adminKey)) != 1 {
			slog.Warn("admin access denied.", slog.String("ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("request served.",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)))
	}
}
