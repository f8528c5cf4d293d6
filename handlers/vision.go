package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"solarfarm-server/usecases"
	"solarfarm-server/ws"
)

// WebSocket message envelopes
type incomingMessage struct {
	Type string `json:"type"` // vision_result | heartbeat
}

type visionEvent struct {
	Type string `json:"type"`
	usecases.VisionPayload
}

type visionAck struct {
	Success bool   `json:"success"`
	ScanID  string `json:"scanId,omitempty"`
	Error   string `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// VisionHandler owns the Pi-facing socket: inbound vision results with
// per-event acks, outbound capture commands.
type VisionHandler struct {
	devices *ws.DeviceManager
	scans   *usecases.ScanUseCase
}

func NewVisionHandler(devices *ws.DeviceManager, scans *usecases.ScanUseCase) *VisionHandler {
	return &VisionHandler{devices: devices, scans: scans}
}

// HandleVisionWS upgrades to websocket and reads vision events from the Pi.
// GET /ws/vision?id=<device_id>
func (h *VisionHandler) HandleVisionWS(c *gin.Context) {
	deviceID := c.Query("id")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing device id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorf("websocket upgrade failed: %v", err)
		return
	}
	h.devices.Register(deviceID, conn)
	log.Infof("vision device connected: %s", deviceID)

	defer func() {
		h.devices.Unregister(deviceID)
		log.Infof("vision device disconnected: %s", deviceID)
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Infof("vision device %s closed connection", deviceID)
			} else {
				log.Errorf("read error from %s: %v", deviceID, err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		// Peek type
		var base incomingMessage
		if err := json.Unmarshal(message, &base); err != nil {
			log.Errorf("invalid json from %s: %v", deviceID, err)
			continue
		}

		switch base.Type {
		case "vision_result":
			h.handleVisionResult(conn, deviceID, message)
		case "heartbeat":
			// No-op; liveness for the vision path is connection-level
		default:
			log.Warnf("unknown message type from %s: %s", deviceID, base.Type)
		}
	}
}

// handleVisionResult ingests one event and writes the ack. An ingestion
// failure acks {success:false} and keeps the connection alive; one bad event
// must not take down the stream.
func (h *VisionHandler) handleVisionResult(conn *websocket.Conn, deviceID string, message []byte) {
	var event visionEvent
	if err := json.Unmarshal(message, &event); err != nil {
		h.writeAck(conn, visionAck{Success: false, Error: "invalid vision_result payload"})
		return
	}
	if event.DeviceID == "" {
		event.DeviceID = deviceID
	}

	result, err := h.scans.Ingest(&event.VisionPayload, time.Now().UTC())
	if err != nil {
		log.WithFields(log.Fields{"device": deviceID, "capture": event.CaptureID}).Errorf("vision ingest failed: %v", err)
		h.writeAck(conn, visionAck{Success: false, Error: err.Error()})
		return
	}
	h.writeAck(conn, visionAck{Success: true, ScanID: result.Scan.ID})
}

func (h *VisionHandler) writeAck(conn *websocket.Conn, ack visionAck) {
	b, _ := json.Marshal(ack)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Errorf("ack write failed: %v", err)
	}
}
