package httpHandler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"solarfarm-server/usecases"
)

type StatusHandler struct {
	status *usecases.StatusUseCase
}

func NewStatusHandler(status *usecases.StatusUseCase) *StatusHandler {
	return &StatusHandler{status: status}
}

// GetLiveStatus GET /api/v1/status/live
func (h *StatusHandler) GetLiveStatus(c *gin.Context) {
	snapshot, err := h.status.Snapshot(time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
