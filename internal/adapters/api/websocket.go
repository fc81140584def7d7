package api

import (
	"encoding/json"
	"sync"
	"time"

	"gamefilter/internal/application/admission"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	wsSendBuffer   = 32
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// ChangeHub fans filter changes out to connected admin dashboards.
type ChangeHub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

// NewChangeHub creates an empty hub
func NewChangeHub() *ChangeHub {
	return &ChangeHub{clients: make(map[*wsClient]struct{})}
}

// Register adds a connection to the hub
func (m *ChangeHub) Register(cl *wsClient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[cl] = struct{}{}
	log.Info().Str("remote", cl.conn.RemoteAddr().String()).Msg("WebSocket connection registered")
}

// Unregister removes a connection from the hub
func (m *ChangeHub) Unregister(cl *wsClient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[cl]; ok {
		delete(m.clients, cl)
		close(cl.send)
	}
	log.Info().Str("remote", cl.conn.RemoteAddr().String()).Msg("WebSocket connection unregistered")
}

// Count returns the number of connected clients.
func (m *ChangeHub) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// NotifyFilterChange queues change for every client. It never blocks: a
// client whose buffer is full misses the event.
func (m *ChangeHub) NotifyFilterChange(change admission.Change) {
	data, err := json.Marshal(change)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode filter change")
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for cl := range m.clients {
		select {
		case cl.send <- data:
		default:
			log.Warn().Str("remote", cl.conn.RemoteAddr().String()).Str("change_id", change.ID).Msg("WebSocket client too slow, dropping change")
		}
	}
}

func (cl *wsClient) writePump() {
	for msg := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Error().Err(err).Msg("Failed to send filter change")
			return
		}
	}
}

// HandleWebSocket godoc
//
//	@Summary		Stream filter changes
//	@Description	Upgrades to a websocket that receives one JSON message per filter list change
//	@Tags			filters
//	@Security		BearerAuth
//	@Router			/ws [get]
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}
	cl := &wsClient{conn: conn, send: make(chan []byte, wsSendBuffer)}
	h.hub.Register(cl)
	defer func() {
		h.hub.Unregister(cl)
		conn.Close()
	}()
	go cl.writePump()

	// Keep connection alive and listen for close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Info().Str("remote", conn.RemoteAddr().String()).Msg("WebSocket connection closed")
			return
		}
	}
}
