package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Artfain/dat-exchange/core"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same-process dashboards connect from any origin
	},
}

// Hub fans ledger events out to connected WebSocket clients. It subscribes
// to the exchange's event topic on the bus and broadcasts every event;
// clients that fail a write are dropped.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
	log   zerolog.Logger
}

// Subscriber is the subscribe side of an event bus. Satisfied by
// github.com/asaskevich/EventBus.
type Subscriber interface {
	Subscribe(topic string, fn interface{}) error
}

func NewHub(bus Subscriber, logger zerolog.Logger) (*Hub, error) {
	h := &Hub{
		conns: make(map[*websocket.Conn]bool),
		log:   logger.With().Str("component", "ws").Logger(),
	}
	if err := bus.Subscribe(core.EventTopic, h.Broadcast); err != nil {
		return nil, err
	}
	return h, nil
}

// Handle upgrades the request and keeps the connection registered until the
// peer goes away. Inbound frames are read only to detect disconnection.
func (h *Hub) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast writes the event to every connected client.
func (h *Hub) Broadcast(evt core.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(evt); err != nil {
			h.log.Warn().Err(err).Msg("dropping websocket client")
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
