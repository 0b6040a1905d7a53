package system

import (
	"encoding/json"
	"sync"

	"realty-crm/internal/features/event"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

const clientBuffer = 32

type subscriber struct {
	send chan []byte
}

// CalendarHub pushes calendar changes to connected websocket clients.
// A client that falls behind misses messages instead of blocking writers.
type CalendarHub struct {
	mu      sync.RWMutex
	clients map[*subscriber]struct{}
	logger  *zap.Logger
}

func NewCalendarHub(logger *zap.Logger) *CalendarHub {
	return &CalendarHub{
		clients: make(map[*subscriber]struct{}),
		logger:  logger,
	}
}

func (h *CalendarHub) Publish(change event.Change) {
	msg, err := json.Marshal(change)
	if err != nil {
		h.logger.Warn("Failed to encode calendar change", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.clients {
		select {
		case s.send <- msg:
		default:
			h.logger.Debug("Dropped calendar change for slow subscriber", zap.String("kind", string(change.Kind)))
		}
	}
}

// Subscribers is the number of connected clients
func (h *CalendarHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *CalendarHub) subscribe() *subscriber {
	s := &subscriber{send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	h.clients[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *CalendarHub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	delete(h.clients, s)
	h.mu.Unlock()
	close(s.send)
}

// Serve runs for the life of one websocket connection. Incoming frames are
// read only to notice the client going away.
func (h *CalendarHub) Serve(c *websocket.Conn) {
	s := h.subscribe()
	defer h.unsubscribe(s)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg := <-s.send:
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.Debug("Calendar subscriber write failed", zap.Error(err))
				return
			}
		case <-done:
			return
		}
	}
}
