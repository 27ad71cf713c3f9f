package handlers

import (
	"net/http"

	"culligan/internal/ayla"
	"culligan/internal/logging"
	"culligan/internal/poller"

	"github.com/carlmjohnson/versioninfo"
	"github.com/gin-gonic/gin"
)

// SessionState reports whether the bridge holds a provider token
type SessionState interface {
	State() ayla.State
}

// PollerStatus reports the outcome of the most recent poll
type PollerStatus interface {
	Status() poller.Status
}

// HealthHandler handles health check requests
type HealthHandler struct {
	session SessionState
	poller  PollerStatus
}

// NewHealthHandler creates a new health handler. Either source may be nil.
func NewHealthHandler(session SessionState, poller PollerStatus) *HealthHandler {
	return &HealthHandler{
		session: session,
		poller:  poller,
	}
}

// GetHealth returns the health status of the service.
// The bridge is UP as long as it serves requests; upstream state is reported alongside.
// GET /health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := gin.H{
		"status":  "UP",
		"service": logging.ServiceName,
		"version": versioninfo.Version,
	}

	if h.session != nil {
		response["session"] = h.session.State()
	}
	if h.poller != nil {
		response["poller"] = h.poller.Status()
	}

	c.JSON(http.StatusOK, response)
}
