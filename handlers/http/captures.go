package httpHandler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"solarfarm-server/usecases"
	"solarfarm-server/ws"
)

type CapturesHandler struct {
	devices  *ws.DeviceManager
	captures *usecases.CapturesUseCase
}

func NewCapturesHandler(devices *ws.DeviceManager, captures *usecases.CapturesUseCase) *CapturesHandler {
	return &CapturesHandler{devices: devices, captures: captures}
}

type enqueueReq struct {
	DeviceID string                 `json:"device_id"`
	Command  string                 `json:"command"`
	Params   map[string]interface{} `json:"params"`
}

// Enqueue POST /api/v1/captures
// Queue a capture request and, if the Pi is connected via WS, push immediately
func (h *CapturesHandler) Enqueue(c *gin.Context) {
	var req enqueueReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	cmd, err := h.captures.Enqueue(req.DeviceID, req.Command, req.Params)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := "queued"
	if h.devices != nil && h.devices.IsConnected(req.DeviceID) {
		env := map[string]interface{}{
			"type":       "command",
			"command_id": cmd.ID,
			"command":    cmd.Command,
			"params":     req.Params,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		}
		b, _ := json.Marshal(env)
		if err := h.devices.SendToDevice(req.DeviceID, b); err == nil {
			_ = h.captures.MarkSent([]string{cmd.ID})
			status = "sent"
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": status, "command": cmd})
}

// Poll GET /api/v1/captures/poll?device_id=...&limit=...
// The Pi calls this to fetch pending capture requests when WS isn't available
func (h *CapturesHandler) Poll(c *gin.Context) {
	deviceID := c.Query("device_id")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device_id required"})
		return
	}
	limit := 10
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	cmds, err := h.captures.Poll(deviceID, limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// mark as sent so they aren't re-delivered endlessly
	ids := make([]string, 0, len(cmds))
	out := make([]map[string]interface{}, 0, len(cmds))
	for _, cmd := range cmds {
		ids = append(ids, cmd.ID)
		var p interface{}
		if cmd.Params != "" && json.Valid([]byte(cmd.Params)) {
			_ = json.Unmarshal([]byte(cmd.Params), &p)
		} else {
			p = map[string]interface{}{}
		}
		out = append(out, map[string]interface{}{
			"id":        cmd.ID,
			"type":      "command",
			"command":   cmd.Command,
			"params":    p,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
	_ = h.captures.MarkSent(ids)
	c.JSON(http.StatusOK, gin.H{"commands": out, "count": len(out)})
}

type ackReq struct {
	CommandID string `json:"command_id"`
	Status    string `json:"status"`
	Response  string `json:"response"`
}

// Ack POST /api/v1/capture-responses
func (h *CapturesHandler) Ack(c *gin.Context) {
	var req ackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	if err := h.captures.Ack(req.CommandID, req.Status, req.Response); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "acknowledged"})
}
