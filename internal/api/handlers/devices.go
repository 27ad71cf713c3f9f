package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"culligan/internal/api/middleware"
	"culligan/internal/ayla"

	"github.com/gin-gonic/gin"
)

// DevicesHandler serves device data fetched live from the provider
type DevicesHandler struct {
	api    ayla.DeviceAPI
	logger *slog.Logger
}

// NewDevicesHandler creates a new devices handler
func NewDevicesHandler(api ayla.DeviceAPI, logger *slog.Logger) *DevicesHandler {
	return &DevicesHandler{
		api:    api,
		logger: logger,
	}
}

// ListDevices returns all devices of the account
// GET /devices
func (h *DevicesHandler) ListDevices(c *gin.Context) {
	devices, err := h.api.ListDevices(c.Request.Context())
	if err != nil {
		h.writeUpstreamError(c, "Failed to list devices", err)
		return
	}

	if devices == nil {
		devices = []ayla.Device{}
	}
	c.JSON(http.StatusOK, devices)
}

// GetProperties returns the current properties of one device
// GET /devices/:dsn/properties
func (h *DevicesHandler) GetProperties(c *gin.Context) {
	dsn := c.Param("dsn")

	properties, err := h.api.GetProperties(c.Request.Context(), dsn)
	if err != nil {
		h.writeUpstreamError(c, "Failed to get properties", err)
		return
	}

	if properties == nil {
		properties = []ayla.Property{}
	}
	c.JSON(http.StatusOK, gin.H{
		"dsn":        dsn,
		"properties": properties,
	})
}

// writeUpstreamError maps provider failures onto bridge responses
func (h *DevicesHandler) writeUpstreamError(c *gin.Context, msg string, err error) {
	var (
		apiErr *ayla.APIError
		status = http.StatusBadGateway
		body   = gin.H{"error": "Upstream request failed", "code": "UPSTREAM_ERROR"}
	)

	switch {
	case errors.Is(err, ayla.ErrInvalidDSN):
		status = http.StatusBadRequest
		body = gin.H{"error": "Device serial number is required", "code": "INVALID_DSN"}
	case ayla.IsAuthError(err), errors.Is(err, ayla.ErrNotAuthenticated):
		status = http.StatusServiceUnavailable
		body = gin.H{"error": "Provider session is not authenticated", "code": "UPSTREAM_UNAUTHORIZED"}
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		status = http.StatusNotFound
		body = gin.H{"error": "Device not found", "code": "NOT_FOUND"}
	}

	h.logger.Error(msg,
		"component", "api",
		"request_id", c.GetString(middleware.RequestIDKey),
		"status", status,
		"error", err,
	)
	_ = c.Error(err)
	c.JSON(status, body)
}
