package httpHandler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"solarfarm-server/usecases"
)

type ReadingsHandler struct {
	telemetry *usecases.TelemetryUseCase
}

func NewReadingsHandler(telemetry *usecases.TelemetryUseCase) *ReadingsHandler {
	return &ReadingsHandler{telemetry: telemetry}
}

// Pointer fields so a missing key is distinguishable from a zero value;
// non-numeric input fails the bind before anything is persisted.
type readingRequest struct {
	DeviceID *string  `json:"device_id" binding:"required"`
	Voltage  *float64 `json:"voltage" binding:"required"`
	Current  *float64 `json:"current" binding:"required"`
	Power    *float64 `json:"power" binding:"required"`
}

// CreateReading POST /api/v1/readings
// { "device_id": "ESP_01", "voltage": 24.1, "current": 410, "power": 9800 }
func (h *ReadingsHandler) CreateReading(c *gin.Context) {
	var req readingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "device_id, voltage, current and power are required and must be numeric",
			"details": err.Error(),
		})
		return
	}

	result, err := h.telemetry.Ingest(*req.DeviceID, *req.Voltage, *req.Current, *req.Power, time.Now().UTC())
	if err != nil {
		if errors.Is(err, usecases.ErrDeviceNotMapped) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"device":     result.Device,
		"panelCount": result.PanelCount,
		"totalInput": result.TotalInput,
		"perPanel":   result.PerPanel,
		"panels":     result.Panels,
	})
}
