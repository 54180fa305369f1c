package realtime

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/logger"
	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20 // 1 MiB

	defaultBufferSize = 64
)

// Message represents a JSON payload delivered on the event channel.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type inboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EventHandler consumes inbound client events and connection drops. Handlers
// run on the connection's read goroutine, so a single connection's events are
// processed strictly in receipt order.
type EventHandler interface {
	HandleEvent(client *Client, event string, data json.RawMessage)
	HandleDisconnect(client *Client)
}

// Hub coordinates per-session fan-out for connected event-channel clients.
// Delivery is at-most-once: clients that fall behind are disconnected and a
// reconnecting client must re-join.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Client]struct{}
	handler  EventHandler
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHub constructs an event-channel hub.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		log:   logger.WithModule("realtime"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Allow same-origin requests and explicit localhost development.
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				originHost := hostWithoutPort(origin)
				requestHost := hostWithoutPort(r.Host)
				return originHost == requestHost || isLoopback(originHost)
			},
		},
	}
}

// SetHandler wires the inbound event dispatcher. Must be called before Serve.
func (h *Hub) SetHandler(handler EventHandler) {
	h.handler = handler
}

// Serve upgrades the HTTP connection to a WebSocket and pumps events until
// the client disconnects. The caller supplies the already-authenticated
// identity; the hub assigns an opaque connection id for the lifetime of the
// socket.
func (h *Hub) Serve(identity, displayName string, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:          h,
		socket:       conn,
		connectionID: uuid.NewString(),
		identity:     identity,
		displayName:  displayName,
		send:         make(chan Message, defaultBufferSize),
	}

	metrics.ConnectedParticipants.Inc()
	go client.writeLoop()
	client.readLoop()
}

// Join registers the client under the session room so broadcasts reach it.
func (h *Hub) Join(client *Client, sessionID string) {
	if client == nil || sessionID == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if room := h.rooms[client.sessionID]; room != nil {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.sessionID)
		}
	}

	if h.rooms[sessionID] == nil {
		h.rooms[sessionID] = make(map[*Client]struct{})
	}
	h.rooms[sessionID][client] = struct{}{}
	client.setSessionID(sessionID)
}

// Leave removes the client from its current session room.
func (h *Hub) Leave(client *Client) {
	if client == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// Broadcast delivers a message to every connection in the session room.
func (h *Hub) Broadcast(sessionID string, message Message) {
	h.BroadcastExcept(sessionID, "", message)
}

// BroadcastExcept delivers a message to every connection in the session room
// except the one identified by excludeConnectionID.
func (h *Hub) BroadcastExcept(sessionID, excludeConnectionID string, message Message) {
	if sessionID == "" {
		return
	}

	h.mu.RLock()
	room, ok := h.rooms[sessionID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	delivered := 0
	var backpressured []*Client
	for client := range room {
		if excludeConnectionID != "" && client.connectionID == excludeConnectionID {
			continue
		}
		if h.enqueue(client, message) {
			delivered++
		} else {
			backpressured = append(backpressured, client)
		}
	}
	h.mu.RUnlock()

	if delivered > 0 {
		metrics.EventsBroadcast.WithLabelValues(message.Event).Add(float64(delivered))
	}

	// close re-enters the hub to deregister the connection, so slow clients
	// are disconnected only after the room lock is released.
	for _, client := range backpressured {
		h.log.Warn("dropping backpressure client",
			zap.String("connection_id", client.connectionID),
			zap.String("identity", client.identity),
		)
		client.close()
	}
}

// RoomSize reports the number of connections registered under the session.
func (h *Hub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// CloseRoom disconnects every client still registered under the session.
func (h *Hub) CloseRoom(sessionID string) {
	h.mu.Lock()
	room := h.rooms[sessionID]
	clients := make([]*Client, 0, len(room))
	for client := range room {
		clients = append(clients, client)
	}
	delete(h.rooms, sessionID)
	h.mu.Unlock()

	for _, client := range clients {
		client.close()
	}
}

func (h *Hub) removeLocked(client *Client) {
	if room, ok := h.rooms[client.sessionID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.sessionID)
		}
	}
	client.setSessionID("")
}

// enqueue reports whether the message was buffered for the client. A false
// return means the send buffer is full; the caller must disconnect the client
// without holding the hub lock, because close re-enters Leave.
func (h *Hub) enqueue(client *Client, message Message) bool {
	client.sendMu.Lock()
	defer client.sendMu.Unlock()

	if client.closed {
		return true
	}

	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// Client is one live event-channel connection. The transport layer keeps the
// socket handle; everything else in the core refers to the connection id only.
type Client struct {
	hub          *Hub
	socket       *websocket.Conn
	connectionID string
	identity     string
	displayName  string
	send         chan Message
	once         sync.Once
	sendMu       sync.Mutex
	closed       bool

	// sessionID is written on whichever goroutine mutates room membership
	// and read from the connection's read goroutine, so it carries its own
	// lock rather than leaning on the hub's.
	stateMu   sync.RWMutex
	sessionID string
}

// Hub returns the hub this connection belongs to.
func (c *Client) Hub() *Hub { return c.hub }

// ConnectionID returns the opaque id assigned at connect time.
func (c *Client) ConnectionID() string { return c.connectionID }

// Identity returns the authenticated caller identity.
func (c *Client) Identity() string { return c.identity }

// DisplayName returns the caller's display name, when provided.
func (c *Client) DisplayName() string { return c.displayName }

// SessionID returns the session this connection has joined, or empty.
func (c *Client) SessionID() string {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.sessionID
}

func (c *Client) setSessionID(sessionID string) {
	c.stateMu.Lock()
	c.sessionID = sessionID
	c.stateMu.Unlock()
}

// Send queues a message for this connection only.
func (c *Client) Send(message Message) {
	if !c.hub.enqueue(c, message) {
		c.hub.log.Warn("dropping backpressure client",
			zap.String("connection_id", c.connectionID),
			zap.String("identity", c.identity),
		)
		c.close()
	}
}

// SendError surfaces a failure to the originating connection. Event-channel
// errors are never broadcast.
func (c *Client) SendError(code, message string) {
	c.Send(Message{Event: EventError, Data: map[string]string{
		"code":    code,
		"message": message,
	}})
}

func (c *Client) readLoop() {
	defer c.close()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("unexpected close",
					zap.String("connection_id", c.connectionID),
					zap.Error(err),
				)
			}
			break
		}

		if len(payload) == 0 {
			continue
		}

		var inbound inboundMessage
		if err := json.Unmarshal(payload, &inbound); err != nil {
			c.SendError("BAD_REQUEST", "invalid event payload")
			continue
		}

		event := strings.ToLower(strings.TrimSpace(inbound.Event))
		if event == "" {
			c.SendError("BAD_REQUEST", "event name is required")
			continue
		}

		if c.hub.handler != nil {
			c.hub.handler.HandleEvent(c, event, inbound.Data)
		}
	}
}

func (c *Client) writeLoop() {
	defer c.close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		// Disconnect is an implicit leave; let the dispatcher observe the
		// session id before the room membership is torn down.
		if c.hub.handler != nil {
			c.hub.handler.HandleDisconnect(c)
		}
		c.hub.Leave(c)

		c.sendMu.Lock()
		c.closed = true
		close(c.send)
		c.sendMu.Unlock()

		if c.socket != nil {
			_ = c.socket.Close()
		}
		metrics.ConnectedParticipants.Dec()
	})
}

func hostWithoutPort(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}

	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		parsed, err := http.NewRequest(http.MethodGet, host, nil)
		if err == nil {
			return hostWithoutPort(parsed.URL.Host)
		}
	}

	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func isLoopback(host string) bool {
	ip := net.ParseIP(host)
	if ip != nil {
		return ip.IsLoopback()
	}
	return strings.EqualFold(host, "localhost")
}
