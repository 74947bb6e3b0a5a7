package handlers

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"table-games-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHub fans wheel animation frames out to connected sessions. It
// implements services.Broadcaster.
type WebSocketHub struct {
	mu      sync.RWMutex
	clients map[string]*websocket.Conn
}

type SpinMessage struct {
	Type        string              `json:"type"`
	SpinID      string              `json:"spin_id"`
	Rotation    int                 `json:"rotation,omitempty"`
	Revolutions int                 `json:"revolutions,omitempty"`
	Outcome     *models.PlayOutcome `json:"outcome,omitempty"`
}

func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{clients: make(map[string]*websocket.Conn)}
}

func (h *WebSocketHub) BroadcastSpinFrame(sessionID, spinID string, rotation, revolutions int) {
	h.send(sessionID, &SpinMessage{
		Type:        "spin_frame",
		SpinID:      spinID,
		Rotation:    rotation,
		Revolutions: revolutions,
	})
}

func (h *WebSocketHub) BroadcastSpinResult(sessionID, spinID string, outcome *models.PlayOutcome) {
	h.send(sessionID, &SpinMessage{
		Type:    "spin_result",
		SpinID:  spinID,
		Outcome: outcome,
	})
}

func (h *WebSocketHub) send(sessionID string, msg *SpinMessage) {
	h.mu.RLock()
	conn, ok := h.clients[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("Dropping websocket client %s: %v", sessionID, err)
		h.mu.Lock()
		delete(h.clients, sessionID)
		h.mu.Unlock()
		conn.Close()
	}
}

type WebSocketHandler struct {
	hub *WebSocketHub
}

func NewWebSocketHandler(hub *WebSocketHub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleWebSocket upgrades the connection and registers it for the session's
// spin frames. The read loop exists only to detect disconnects.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	sessionID := c.GetString("session_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	h.hub.mu.Lock()
	if old, ok := h.hub.clients[sessionID]; ok {
		old.Close()
	}
	h.hub.clients[sessionID] = conn
	h.hub.mu.Unlock()

	defer func() {
		h.hub.mu.Lock()
		if h.hub.clients[sessionID] == conn {
			delete(h.hub.clients, sessionID)
		}
		h.hub.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
