package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"solarfarm-server/repositories"
)

// FleetHandler serves the read-only device and panel views the dashboard
// CRUD layer consumes.
type FleetHandler struct {
	devices repositories.DeviceRepository
	panels  repositories.PanelRepository
}

func NewFleetHandler(devices repositories.DeviceRepository, panels repositories.PanelRepository) *FleetHandler {
	return &FleetHandler{devices: devices, panels: panels}
}

// GetDevices GET /api/v1/devices
func (h *FleetHandler) GetDevices(c *gin.Context) {
	devices, err := h.devices.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve devices"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices, "count": len(devices)})
}

// GetPanels GET /api/v1/panels
func (h *FleetHandler) GetPanels(c *gin.Context) {
	panels, err := h.panels.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve panels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"panels": panels, "count": len(panels)})
}
