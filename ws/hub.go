package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Message is the envelope every dashboard client receives.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub maintains the set of connected dashboard clients and fans newly
// ingested scan results out to them. It also keeps a bounded in-memory
// backlog of the most recent results, replayed newest-first to clients that
// connect later. The backlog is not a source of truth — the database is —
// and is lost on restart.
type Hub struct {
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu         sync.RWMutex // guards clients and backlog
	clients    map[*Client]bool
	backlog    [][]byte
	backlogCap int
}

// Client represents one dashboard websocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string
}

func NewHub(backlogCap int) *Hub {
	if backlogCap < 1 {
		backlogCap = 1
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		backlogCap: backlogCap,
	}
}

// Run starts the hub loop. Call once in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.WithFields(log.Fields{"client": client.id, "total": total}).Info("dashboard client connected")

			// Replay the backlog newest-first so the new client has content
			// before its first poll completes. The send channel is closed at
			// most once, so replay stops at the first overflow.
			for _, msg := range h.ReplaySnapshot() {
				select {
				case client.send <- msg:
					continue
				default:
				}
				h.dropClient(client)
				break
			}

		case client := <-h.unregister:
			if h.dropClient(client) {
				log.WithFields(log.Fields{"client": client.id, "total": h.ClientCount()}).Info("dashboard client disconnected")
			}

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// PushResult appends a scan result to the backlog and broadcasts it. Only the
// vision intake path calls this.
func (h *Hub) PushResult(result interface{}) {
	msg, err := json.Marshal(Message{Type: "scan_result", Data: result, Timestamp: time.Now().UTC()})
	if err != nil {
		log.Errorf("marshal scan result: %v", err)
		return
	}

	h.mu.Lock()
	h.backlog = append(h.backlog, msg)
	if len(h.backlog) > h.backlogCap {
		h.backlog = h.backlog[len(h.backlog)-h.backlogCap:]
	}
	h.mu.Unlock()

	h.send(msg)
}

// Notify broadcasts a lightweight event without touching the backlog.
func (h *Hub) Notify(eventType string, data interface{}) {
	msg, err := json.Marshal(Message{Type: eventType, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		log.Errorf("marshal %s event: %v", eventType, err)
		return
	}
	h.send(msg)
}

func (h *Hub) send(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
		log.Warn("broadcast channel full, dropping message")
	}
}

// ReplaySnapshot returns the backlog newest-first.
func (h *Hub) ReplaySnapshot() [][]byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([][]byte, 0, len(h.backlog))
	for i := len(h.backlog) - 1; i >= 0; i-- {
		out = append(out, h.backlog[i])
	}
	return out
}

// dropClient removes the client and closes its send channel at most once.
func (h *Hub) dropClient(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return false
	}
	delete(h.clients, client)
	close(client.send)
	return true
}

// ClientCount returns the number of connected dashboard clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and attaches the client to the hub.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("websocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
		id:   uuid.New().String(),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Errorf("dashboard read error: %v", err)
			}
			return
		}
		// Dashboards are read-only observers; inbound frames are ignored.
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
