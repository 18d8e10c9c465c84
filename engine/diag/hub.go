// Package diag streams runtime diagnostics (profiler snapshots, program listings) to websocket
// viewers without ever blocking the event loop.
package diag

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Message is the envelope every broadcast is wrapped in.
type Message struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data"`
}

// client is one connected viewer with its own outbound queue.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans diagnostics out to every connected websocket client. Publish never blocks: a client
// whose queue is full misses that message.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
	last    map[string][]byte

	queueSize    int
	writeTimeout time.Duration
	logger       zerolog.Logger
	upgrader     websocket.Upgrader

	server *http.Server
}

// NewHub creates a hub that is not yet listening. Mount it with Handler or start it with
// ListenAndServe.
//
// Parameters:
//   - options: functional options to configure the hub
//
// Returns:
//   - *Hub: the new hub
func NewHub(options ...HubBuilderOption) *Hub {
	h := &Hub{
		clients:      map[*client]bool{},
		last:         map[string][]byte{},
		queueSize:    16,
		writeTimeout: 200 * time.Millisecond,
		logger:       log.Logger.With().Str("component", "diag").Logger(),
		upgrader:     websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

// Handler returns the HTTP handler serving the hub: "/ws" upgrades to a websocket stream and
// "/health" returns the latest message of every type as JSON.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleWS)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

// ListenAndServe starts serving Handler on addr in a background goroutine.
//
// Parameters:
//   - addr: the TCP listen address, e.g. ":7070"
//
// Returns:
//   - string: the bound address (useful with port 0)
//   - error: an error if the address could not be bound
func (h *Hub) ListenAndServe(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	h.server = &http.Server{Handler: h.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error().Err(err).Msg("diagnostics server stopped")
		}
	}()
	h.logger.Info().Str("addr", ln.Addr().String()).Msg("diagnostics listening")
	return ln.Addr().String(), nil
}

// Close stops the server, if any, and disconnects every client.
func (h *Hub) Close(ctx context.Context) error {
	var err error
	if h.server != nil {
		err = h.server.Shutdown(ctx)
	}
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	return err
}

// Publish broadcasts data to every client under the given message type.
//
// Parameters:
//   - kind: the message type, e.g. "profile"
//   - data: a JSON-encodable payload
//
// Returns:
//   - int: the number of clients the message was queued for
func (h *Hub) Publish(kind string, data any) int {
	b, err := json.Marshal(Message{Type: kind, At: time.Now(), Data: data})
	if err != nil {
		h.logger.Warn().Err(err).Str("type", kind).Msg("diagnostics message dropped")
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last[kind] = b
	queued := 0
	for c := range h.clients {
		select {
		case c.send <- b:
			queued++
		default:
		}
	}
	return queued
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWS upgrades the request and streams every subsequent broadcast to the connection.
// The latest message of each type is sent first so a new viewer is not blank until the next tick.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan []byte, h.queueSize)}

	h.mu.Lock()
	for _, b := range h.last {
		select {
		case c.send <- b:
		default:
		}
	}
	h.clients[c] = true
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

// HandleHealth writes the latest message of every type.
func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	resp := make(map[string]json.RawMessage, len(h.last))
	for k, b := range h.last {
		resp[k] = b
	}
	h.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for b := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			h.remove(c)
			return
		}
	}
}

// readPump discards inbound frames and notices when the peer goes away.
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}
