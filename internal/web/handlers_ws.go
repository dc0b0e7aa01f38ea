package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"zigbee-things/internal/coordinator"
)

const (
	wsQueueSize    = 256
	wsClientBuffer = 64
	wsWriteTimeout = 10 * time.Second
	wsReadLimit    = 4096
)

// wsFrame is what a client receives for each coordinator event.
type wsFrame struct {
	Type   string `json:"type"`
	Device string `json:"device,omitempty"`
	Data   any    `json:"data"`
}

// WSHub fans coordinator events out to WebSocket clients. A client either
// follows every device or the single device it named on connect.
type WSHub struct {
	clients map[*wsClient]struct{}
	mu      sync.RWMutex
	logger  *slog.Logger

	register   chan *wsClient
	unregister chan *wsClient
	events     chan coordinator.Event

	done     chan struct{}
	stopOnce sync.Once
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	ieee string
}

func (c *wsClient) follows(ieee string) bool {
	return c.ieee == "" || c.ieee == ieee
}

// eventIEEE returns the device an event concerns, if any.
func eventIEEE(msg any) string {
	ev, ok := msg.(coordinator.Event)
	if !ok {
		return ""
	}
	switch data := ev.Data.(type) {
	case coordinator.DeviceInfo:
		return data.IEEE
	case coordinator.PropertyUpdate:
		return data.IEEE
	case coordinator.DeviceEvent:
		return data.IEEE
	}
	return ""
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub(logger *slog.Logger) *WSHub {
	return &WSHub{
		clients:    make(map[*wsClient]struct{}),
		logger:     logger,
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		events:     make(chan coordinator.Event, wsQueueSize),
		done:       make(chan struct{}),
	}
}

// Run starts the hub event loop.
func (h *WSHub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		case ev := <-h.events:
			h.fanOut(ev)
		}
	}
}

func (h *WSHub) add(client *wsClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("ws client connected", "device", client.ieee, "total", total)
}

func (h *WSHub) remove(client *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("ws client disconnected", "device", client.ieee, "total", total)
}

func (h *WSHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *WSHub) fanOut(ev coordinator.Event) {
	ieee := eventIEEE(ev)
	data, err := json.Marshal(wsFrame{Type: ev.Type, Device: ieee, Data: ev.Data})
	if err != nil {
		h.logger.Error("ws marshal", "type", ev.Type, "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if !client.follows(ieee) {
			continue
		}
		select {
		case client.send <- data:
		default:
			// Slow clients are dropped rather than stalling the others.
			delete(h.clients, client)
			close(client.send)
			h.logger.Warn("ws client evicted (too slow)", "device", client.ieee)
		}
	}
}

// Stop signals the hub to shut down. Safe to call multiple times.
func (h *WSHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// Broadcast queues an event for delivery. Events are dropped when the queue
// is full so the coordinator never blocks on the web layer.
func (h *WSHub) Broadcast(ev coordinator.Event) {
	select {
	case h.events <- ev:
	default:
		h.logger.Warn("ws event queue full, dropping", "type", ev.Type)
	}
}

// handleWS streams coordinator events. ?ieee=<addr> limits the stream to one
// device.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{}
	if len(s.allowedOrigins) > 0 {
		opts.OriginPatterns = s.allowedOrigins
	}

	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		s.logger.Error("ws accept", "err", err)
		return
	}
	conn.SetReadLimit(wsReadLimit)

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, wsClientBuffer),
		ieee: r.URL.Query().Get("ieee"),
	}

	select {
	case s.wsHub.register <- client:
	case <-s.wsHub.done:
		conn.Close(websocket.StatusGoingAway, "server shutdown")
		return
	}

	go s.wsWritePump(client)
	s.wsReadPump(client)
}

func (s *Server) wsWritePump(client *wsClient) {
	for msg := range client.send {
		ctx, cancel := context.WithTimeout(context.Background(), wsWriteTimeout)
		err := client.conn.Write(ctx, websocket.MessageText, msg)
		cancel()
		if err != nil {
			return
		}
	}
	client.conn.Close(websocket.StatusNormalClosure, "")
}

// wsReadPump keeps the connection serviced until the client goes away.
// Clients only listen; anything they send is discarded.
func (s *Server) wsReadPump(client *wsClient) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() {
		select {
		case s.wsHub.unregister <- client:
		case <-s.wsHub.done:
			client.conn.Close(websocket.StatusGoingAway, "server shutdown")
		}
	}()

	go func() {
		select {
		case <-s.wsHub.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		if _, _, err := client.conn.Read(ctx); err != nil {
			return
		}
	}
}
