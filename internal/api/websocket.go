package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/homecontrol-core/internal/auth"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/config"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/mqtt"
)

// WebSocket message types.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"
)

const (
	// ChannelHueStateChanged carries StateEvents for Hue resources.
	ChannelHueStateChanged = "hue.state_changed"

	wsSendBufferSize = 256
	stateQoS         = 1
)

// WSMessage is the envelope for every frame in either direction.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload is the payload of subscribe and unsubscribe messages.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
}

// StateEvent is the payload of a hue.state_changed event. State holds the
// fields that were written, encoded as on the wire.
type StateEvent struct {
	Bridge   string         `json:"bridge"`
	Resource string         `json:"rtype"`
	ID       string         `json:"id"`
	State    map[string]any `json:"state"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by corsMiddleware; the ticket authenticates.
	CheckOrigin: func(*http.Request) bool { return true },
}

// WSClient is one upgraded connection.
type WSClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	user *auth.User

	readLimit    int64
	pingInterval time.Duration
	pongWait     time.Duration
}

func newWSClient(hub *Hub, conn *websocket.Conn, user *auth.User, cfg config.WebSocketConfig) *WSClient {
	return &WSClient{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, wsSendBufferSize),
		user:         user,
		readLimit:    int64(cfg.MaxMessageSize),
		pingInterval: time.Duration(cfg.PingInterval) * time.Second,
		pongWait:     time.Duration(cfg.PongTimeout) * time.Second,
	}
}

// subscribeStateUpdates relays bus state messages to hue.state_changed
// subscribers. It is a no-op without a bus.
func (s *Server) subscribeStateUpdates() error {
	if s.bus == nil {
		return nil
	}
	topic := mqtt.Topics{}.AllStates()
	s.logger.Info("relaying bus state to websocket clients", "topic", topic)
	return s.bus.Subscribe(topic, stateQoS, s.relayState)
}

// relayState turns homecontrol/state/hue/{bridge}/{rtype}/{id} messages into
// StateEvents. Other topics and unparseable payloads are dropped.
func (s *Server) relayState(topic string, payload []byte) error {
	st, ok := mqtt.ParseStateTopic(topic)
	if !ok || st.Source != "hue" || len(st.Path) != 3 {
		s.logger.Debug("ignoring state message", "topic", topic)
		return nil
	}

	var state map[string]any
	if err := json.Unmarshal(payload, &state); err != nil {
		s.logger.Warn("dropping malformed state message", "topic", topic, "error", err)
		return nil
	}

	s.hub.Broadcast(ChannelHueStateChanged, StateEvent{
		Bridge:   st.Path[0],
		Resource: st.Path[1],
		ID:       st.Path[2],
		State:    state,
	})
	return nil
}

// handleWebSocket upgrades the connection. Browsers cannot set headers on a
// WebSocket handshake, so the caller proves its identity with a single-use
// ticket from POST /auth/ws-ticket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ticket := r.URL.Query().Get("ticket")
	if ticket == "" {
		writeUnauthorized(w, "ticket query parameter is required")
		return
	}
	user, ok := s.tickets.redeem(ticket)
	if !ok {
		writeUnauthorized(w, "invalid or expired ticket")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := newWSClient(s.hub, conn, user, s.wsCfg)
	s.hub.Register(client)

	go client.writeLoop()
	go client.readLoop()
}

// readLoop dispatches inbound frames until the connection fails or the
// peer stops answering pings.
func (c *WSClient) readLoop() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	extend := func() error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pingInterval + c.pongWait))
	}
	c.conn.SetReadLimit(c.readLimit)
	extend() //nolint:errcheck // a failed deadline surfaces as a read error
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "user", c.username(), "error", err)
			}
			return
		}
		extend() //nolint:errcheck // a failed deadline surfaces as a read error
		c.handleMessage(data)
	}
}

// writeLoop drains the send buffer and keeps the connection alive with
// pings. It exits when the hub closes the send channel.
func (c *WSClient) writeLoop() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	write := func(kind int, data []byte) error {
		c.conn.SetWriteDeadline(time.Now().Add(c.pongWait)) //nolint:errcheck // write reports it
		return c.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				write(websocket.CloseMessage, nil) //nolint:errcheck // closing anyway
				return
			}
			if err := write(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WSClient) handleMessage(data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.replyError("", "invalid JSON message")
		return
	}

	switch msg.Type {
	case WSTypeSubscribe, WSTypeUnsubscribe:
		c.handleSubscription(msg)
	case WSTypePing:
		c.reply(msg.ID, WSTypePong, nil)
	default:
		c.replyError(msg.ID, "unknown message type: "+msg.Type)
	}
}

// handleSubscription applies a subscribe or unsubscribe request and echoes
// the channels back.
func (c *WSClient) handleSubscription(msg WSMessage) {
	channels, ok := parseChannels(msg.Payload)
	if !ok {
		c.replyError(msg.ID, "invalid "+msg.Type+" payload")
		return
	}

	key := "subscribed"
	if msg.Type == WSTypeSubscribe {
		c.hub.subscribe(c, channels)
		c.hub.logger.Info("websocket client subscribed", "user", c.username(), "channels", channels)
	} else {
		c.hub.unsubscribe(c, channels)
		key = "unsubscribed"
	}
	c.reply(msg.ID, WSTypeResponse, map[string]any{key: channels})
}

// parseChannels re-decodes a generic message payload as a channel list.
func parseChannels(payload any) ([]string, bool) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, false
	}
	var sub WSSubscribePayload
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, false
	}
	return sub.Channels, true
}

// trySend queues data without blocking. Frames for a full buffer are
// dropped, and a send racing with disconnect is absorbed.
func (c *WSClient) trySend(data []byte) {
	defer func() {
		recover() //nolint:errcheck // send on a channel closed by Unregister
	}()

	select {
	case c.send <- data:
	default:
	}
}

func (c *WSClient) reply(id, msgType string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		return
	}
	c.trySend(data)
}

func (c *WSClient) replyError(id, message string) {
	c.reply(id, WSTypeError, map[string]string{"message": message})
}

func (c *WSClient) username() string {
	if c.user == nil {
		return ""
	}
	return c.user.Username
}
