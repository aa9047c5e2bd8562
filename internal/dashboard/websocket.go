package dashboard

import (
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/angrygoose0/gitvis-sub000/internal/api/contracts"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard binds to loopback; cross-origin pages on the same
	// host are the UI dev server.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans analysis events out to connected websocket clients. Slow
// clients are dropped rather than allowed to stall an analysis run.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan contracts.AnalysisEvent
	closed  bool
	logger  *log.Logger
}

// clientBuffer is how many events may queue per client before it is
// considered stalled.
const clientBuffer = 64

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]chan contracts.AnalysisEvent),
		logger:  log.WithPrefix("dashboard"),
	}
}

// Broadcast queues an event for every connected client.
func (h *Hub) Broadcast(event contracts.AnalysisEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- event:
		default:
			h.logger.Warn("dropping stalled websocket client", "addr", conn.RemoteAddr())
			delete(h.clients, conn)
			close(ch)
		}
	}
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for conn, ch := range h.clients {
		delete(h.clients, conn)
		close(ch)
	}
}

func (h *Hub) add(conn *websocket.Conn) (chan contracts.AnalysisEvent, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	ch := make(chan contracts.AnalysisEvent, clientBuffer)
	h.clients[conn] = ch
	return ch, true
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(ch)
	}
}

// handleAnalysisWebSocket upgrades the connection and streams analysis
// events until the client disconnects.
func (s *Server) handleAnalysisWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ch, ok := s.hub.add(conn)
	if !ok {
		return
	}
	defer s.hub.remove(conn)

	// Drain reads so close/ping frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.remove(conn)
				return
			}
		}
	}()

	for event := range ch {
		if err := conn.WriteJSON(event); err != nil {
			return
		}
	}
}
