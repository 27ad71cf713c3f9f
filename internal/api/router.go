package api

import (
	"log/slog"

	"culligan/internal/api/handlers"
	"culligan/internal/api/middleware"
	"culligan/internal/ayla"

	"github.com/gin-gonic/gin"
)

// RouterConfig holds dependencies for the API router
type RouterConfig struct {
	API     ayla.DeviceAPI
	Session handlers.SessionState // optional, reported by /health
	Poller  handlers.PollerStatus // optional, reported by /health
	APIKey  string                // empty disables the X-Softener-Key check
	Logger  *slog.Logger
}

// NewRouter creates and configures the Gin router
func NewRouter(config RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))

	// Health check (no auth)
	healthHandler := handlers.NewHealthHandler(config.Session, config.Poller)
	router.GET("/health", healthHandler.GetHealth)

	v1 := router.Group("/v1")
	v1.Use(middleware.APIKey(config.APIKey))
	{
		devicesHandler := handlers.NewDevicesHandler(config.API, logger)
		v1.GET("/devices", devicesHandler.ListDevices)
		v1.GET("/devices/:dsn/properties", devicesHandler.GetProperties)
	}

	return router
}
