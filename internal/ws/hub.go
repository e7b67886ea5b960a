package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/themclloyd/storefy-pulse/internal/api"
	"github.com/themclloyd/storefy-pulse/internal/breakpoint"
	"github.com/themclloyd/storefy-pulse/internal/store"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16

	// maxInboundBytes bounds client frames — viewport updates are tiny.
	maxInboundBytes = 512

	// defaultViewportWidth is assumed until a client reports its viewport.
	defaultViewportWidth = 1280
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins — callers should apply CORS at the reverse-proxy level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients on every broadcast tick.
type Message struct {
	Event string               `json:"event"`
	Data  api.SnapshotResponse `json:"data"`
}

// clientMessage is the JSON envelope clients send to the server. The only
// supported event is "viewport", carrying the current viewport width.
type clientMessage struct {
	Event string `json:"event"`
	Width int    `json:"width"`
}

// Hub manages WebSocket client connections and broadcasts the current
// dashboard snapshot to all connected clients every interval. Mobile-class
// clients receive the compact payload (cards only, no insights or raw
// inputs).
type Hub struct {
	store    *store.Store
	interval time.Duration

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client represents one connected WebSocket client.
type client struct {
	conn *websocket.Conn
	send chan []byte

	// viewport tracks the client's reported viewport; its class decides
	// between full and compact payloads.
	viewport *breakpoint.Detector
}

// New creates a Hub that reads from st and broadcasts every interval.
func New(st *store.Store, interval time.Duration) *Hub {
	return &Hub{
		store:    st,
		interval: interval,
		clients:  make(map[*client]struct{}),
	}
}

// Run starts the broadcast ticker loop. Run blocks until ctx is cancelled,
// then closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-t.C:
			h.broadcast()
		}
	}
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves the client.
// It sends the current snapshot immediately on connect, then continues to
// receive broadcasts from the ticker loop. Blocks until the connection
// closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		conn:     conn,
		send:     make(chan []byte, sendBufSize),
		viewport: breakpoint.New(defaultViewportWidth),
	}
	h.register(c)
	defer h.unregister(c)

	// Re-send immediately when the client crosses a breakpoint, so a rotated
	// phone doesn't wait a full tick for the right payload shape.
	unsubscribe := c.viewport.Subscribe(func(breakpoint.Class) {
		h.sendCurrent(c)
	})
	defer unsubscribe()

	// Send the current snapshot immediately so the UI has data right away.
	h.sendCurrent(c)

	go c.writePump()
	c.readPump() // blocks until connection closes
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// broadcast sends the current snapshot to every client. The full and compact
// encodings are built at most once per tick, not per client.
func (h *Hub) broadcast() {
	full := api.BuildSnapshot(h.store)

	var fullData, compactData []byte
	var err error
	if fullData, err = json.Marshal(Message{Event: "snapshot", Data: full}); err != nil {
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		data := fullData
		if c.viewport.Current() == breakpoint.ClassMobile {
			if compactData == nil {
				if compactData, err = json.Marshal(Message{Event: "snapshot", Data: full.Compact()}); err != nil {
					continue
				}
			}
			data = compactData
		}
		select {
		case c.send <- data:
		default:
			// Client's outgoing buffer is full — disconnect it.
			h.unregister(c)
		}
	}
}

// sendCurrent pushes one snapshot to a single client, sized to its viewport.
func (h *Hub) sendCurrent(c *client) {
	snap := api.BuildSnapshot(h.store)
	if c.viewport.Current() == breakpoint.ClassMobile {
		snap = snap.Compact()
	}
	data, err := json.Marshal(Message{Event: "snapshot", Data: snap})
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Channel was closed (hub is shutting down or client removed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads frames from the connection: control messages (pong, close)
// keep the connection alive, and viewport events feed the client's
// breakpoint detector. Blocks until the connection closes.
func (c *client) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxInboundBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue // ignore malformed frames
		}
		if msg.Event == "viewport" && msg.Width > 0 {
			c.viewport.Set(msg.Width)
		}
	}
}
