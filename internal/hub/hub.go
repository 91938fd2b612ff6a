// Package hub fans broadcast state out to every connected WebSocket listener.
// Delivery is best effort: slow clients skip intermediate states but always
// end up on the latest one.
package hub

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"radio-broadcast/internal/broadcast"
)

// MessageTypeState is the envelope type of state snapshots.
const MessageTypeState = "state"

// maxInboundMessage caps what a listener may send; inbound frames are ignored.
const maxInboundMessage = 4096

// ErrClosed is returned by Subscribe after Close.
var ErrClosed = errors.New("hub closed")

// Message is the envelope written to listeners.
type Message struct {
	Type    string                `json:"type"`
	Payload broadcast.PublicState `json:"payload"`
}

// Source supplies the snapshot a new subscriber starts from.
type Source interface {
	PublicSnapshot() broadcast.PublicState
}

// Config holds optional hub settings.
type Config struct {
	Clock       clockwork.Clock
	CheckOrigin func(r *http.Request) bool
	// OnCount is called with the client count after every change.
	OnCount func(n int)
}

// Hub tracks subscribed clients.
type Hub struct {
	source   Source
	log      *slog.Logger
	clock    clockwork.Clock
	upgrader websocket.Upgrader
	onCount  func(int)

	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool
}

// New returns a hub that seeds new subscribers from source.
func New(source Source, log *slog.Logger, cfg Config) *Hub {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Hub{
		source: source,
		log:    log,
		clock:  clock,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     cfg.CheckOrigin,
		},
		onCount: cfg.OnCount,
		clients: make(map[*Client]struct{}),
	}
}

// Subscribe registers conn and queues the current snapshot for it. The
// snapshot is taken after registration, so no later commit can be missed.
func (h *Hub) Subscribe(conn *websocket.Conn) (*Client, error) {
	c := newClient(conn, h.clock, h.log)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		c.stop()
		return nil, ErrClosed
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.reportCount(n)

	if f, ok := h.encode(h.source.PublicSnapshot()); ok {
		c.box.offer(f)
	}
	return c, nil
}

// Unsubscribe removes c and closes its connection. Safe to call repeatedly.
func (h *Hub) Unsubscribe(c *Client) {
	if c == nil {
		return
	}
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	c.stop()
	if ok {
		h.reportCount(n)
	}
}

// Publish offers s to every client. It never blocks on a connection.
func (h *Hub) Publish(s broadcast.PublicState) {
	f, ok := h.encode(s)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.box.offer(f)
	}
}

// Count returns the number of subscribed clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects everyone and rejects new subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.stop()
	}
	h.reportCount(0)
}

// ServeHTTP upgrades the request and keeps the listener subscribed until the
// connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c, err := h.Subscribe(conn)
	if err != nil {
		return
	}
	defer h.Unsubscribe(c)

	h.log.Debug("listener connected", slog.String("remote_addr", r.RemoteAddr))
	conn.SetReadLimit(maxInboundMessage)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				h.log.Debug("listener read error", slog.String("remote_addr", r.RemoteAddr), slog.String("error", err.Error()))
			}
			break
		}
	}
	h.log.Debug("listener disconnected", slog.String("remote_addr", r.RemoteAddr))
}

func (h *Hub) encode(s broadcast.PublicState) (*frame, bool) {
	data, err := json.Marshal(Message{Type: MessageTypeState, Payload: s})
	if err != nil {
		h.log.Error("encode state", slog.String("error", err.Error()))
		return nil, false
	}
	return &frame{version: s.Version, data: data}, true
}

func (h *Hub) reportCount(n int) {
	if h.onCount != nil {
		h.onCount(n)
	}
}
