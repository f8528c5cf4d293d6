package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"solarfarm-server/ws"
)

// DashboardHandler exposes the observer socket and its stats.
type DashboardHandler struct {
	hub *ws.Hub
}

func NewDashboardHandler(hub *ws.Hub) *DashboardHandler {
	return &DashboardHandler{hub: hub}
}

// HandleDashboardWS GET /ws/dashboard
func (h *DashboardHandler) HandleDashboardWS(c *gin.Context) {
	h.hub.HandleWebSocket(c.Writer, c.Request)
}

// GetConnected GET /api/v1/dashboard/connected
func (h *DashboardHandler) GetConnected(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": h.hub.ClientCount()})
}
