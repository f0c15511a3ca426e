// Package stream publishes simulation snapshots over WebSocket and queues client commands
//
// Network goroutines never touch the simulation: snapshots are handed in by the host after
// each frame and commands wait in a buffered queue until the host drains them before Tick.
package stream

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/lixenwraith/orrery/camera"
	"github.com/lixenwraith/orrery/engine"
)

const (
	writeWait      = 5 * time.Second
	pingInterval   = 30 * time.Second
	clientBuffer   = 16
	commandBacklog = 256
)

// Message types sent to clients
const (
	TypeSnapshot = "snapshot"
	TypeMode     = "mode"
)

// Envelope wraps every outbound message
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ModeEvent is the payload of a TypeMode message
type ModeEvent struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Focus string `json:"focus,omitempty"`
}

// Config tunes a Hub
type Config struct {
	PublishHz      float64 // Snapshot broadcast cap, 0 is unlimited
	CommandsPerSec float64 // Per-client command rate, 0 is unlimited
	CommandBurst   int
	// AllowedOrigins lists accepted Origin headers, empty accepts any origin
	// Requests without an Origin header are non-browser clients and always accepted
	AllowedOrigins []string
	Logger         *log.Logger
}

// Hub fans snapshots out to WebSocket clients and collects their commands
type Hub struct {
	engine.BaseObserver

	upgrader websocket.Upgrader
	logger   *log.Logger
	publish  *rate.Limiter
	cmdLimit rate.Limit
	cmdBurst int

	commands chan Command

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
	once    sync.Once
}

// NewHub creates a hub, serve it with an http.Server
func NewHub(cfg Config) *Hub {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	publish := rate.Inf
	if cfg.PublishHz > 0 {
		publish = rate.Limit(cfg.PublishHz)
	}
	cmdLimit := rate.Inf
	if cfg.CommandsPerSec > 0 {
		cmdLimit = rate.Limit(cfg.CommandsPerSec)
	}
	burst := cfg.CommandBurst
	if burst <= 0 {
		burst = 1
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(cfg.AllowedOrigins),
		},
		logger:   logger,
		publish:  rate.NewLimiter(publish, 1),
		cmdLimit: cmdLimit,
		cmdBurst: burst,
		commands: make(chan Command, commandBacklog),
		clients:  make(map[*client]struct{}),
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeHTTP upgrades the request and runs the client until it disconnects
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("stream: upgrade %s: %v", r.RemoteAddr, err)
		return
	}

	c := &client{
		conn:    conn,
		send:    make(chan []byte, clientBuffer),
		limiter: rate.NewLimiter(h.cmdLimit, h.cmdBurst),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Printf("stream: client %s connected", conn.RemoteAddr())

	go h.writePump(c)
	h.readPump(c)
}

// readPump queues client commands until the connection fails
func (h *Hub) readPump(c *client) {
	defer h.drop(c)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if !c.limiter.Allow() {
			h.logger.Printf("stream: client %s over command rate, dropped", c.conn.RemoteAddr())
			continue
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.logger.Printf("stream: bad command from %s: %v", c.conn.RemoteAddr(), err)
			continue
		}
		select {
		case h.commands <- cmd:
		default:
			h.logger.Printf("stream: command queue full, dropped %q", cmd.Op)
		}
	}
}

func (h *Hub) writePump(c *client) {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drop unregisters a client and closes its send queue once
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		h.logger.Printf("stream: client %s disconnected", c.conn.RemoteAddr())
	}
	c.once.Do(func() { close(c.send) })
}

// Publish broadcasts a snapshot, throttled to the configured rate
// Returns false when the frame was throttled
func (h *Hub) Publish(snap engine.Snapshot) bool {
	if !h.publish.Allow() {
		return false
	}
	h.broadcast(Envelope{Type: TypeSnapshot, Data: snap})
	return true
}

// ModeChanged broadcasts camera mode changes immediately, bypassing the throttle
func (h *Hub) ModeChanged(change camera.ModeChange) {
	h.broadcast(Envelope{Type: TypeMode, Data: ModeEvent{
		From:  change.From.String(),
		To:    change.To.String(),
		Focus: change.Focus,
	}})
}

func (h *Hub) broadcast(env Envelope) {
	msg, err := json.Marshal(env)
	if err != nil {
		h.logger.Printf("stream: encode %s: %v", env.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Slow client, skip this message
		}
	}
}

// Drain passes every queued command to fn without blocking, returns the count
func (h *Hub) Drain(fn func(Command)) int {
	n := 0
	for {
		select {
		case cmd := <-h.commands:
			fn(cmd)
			n++
		default:
			return n
		}
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
}
