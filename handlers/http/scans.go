package httpHandler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"solarfarm-server/usecases"
)

type ScansHandler struct {
	scans *usecases.ScanUseCase
}

func NewScansHandler(scans *usecases.ScanUseCase) *ScansHandler {
	return &ScansHandler{scans: scans}
}

// GetScans GET /api/v1/scans?limit=20
func (h *ScansHandler) GetScans(c *gin.Context) {
	limit := 20
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	scans, err := h.scans.GetRecent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve scans"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scans": scans, "count": len(scans)})
}

// GetScan GET /api/v1/scans/:id
func (h *ScansHandler) GetScan(c *gin.Context) {
	scan, err := h.scans.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "scan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve scan"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scan": scan})
}

type scanStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateScanStatus PUT /api/v1/scans/:id/status
func (h *ScansHandler) UpdateScanStatus(c *gin.Context) {
	var req scanStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required", "details": err.Error()})
		return
	}
	if err := h.scans.UpdateStatus(c.Param("id"), req.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "scan status updated"})
}
