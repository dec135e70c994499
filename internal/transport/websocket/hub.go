package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GridTactics/internal/game/events"
)

const (
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	defaultWriteWait  = 10 * time.Second
	defaultSendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Clients are read-only viewers
		return true
	},
}

// BusLookup finds the event bus of a live game
type BusLookup func(gameID string) (*events.EventBus, bool)

// Options configures a Hub
type Options struct {
	SendBuffer   int
	WriteTimeout time.Duration
	Logger       zerolog.Logger
}

// Client is one websocket viewer of a game
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	gameID string
	bus    *events.EventBus
}

// session is the set of viewers of one game and the bus subscription
// feeding them
type session struct {
	clients    map[*Client]bool
	bus        *events.EventBus
	subscriber *gameSubscriber
}

// Hub fans game events out to websocket clients. All session state is owned
// by the Run goroutine; the engine side only ever does a non-blocking send
// on broadcast.
type Hub struct {
	lookup BusLookup
	logger zerolog.Logger

	sendBuffer int
	writeWait  time.Duration

	sessions map[string]*session

	broadcast  chan *events.Envelope
	register   chan *Client
	unregister chan *Client
	closeGame  chan string
	queries    chan func()
	done       chan struct{}
}

// NewHub creates a new WebSocket hub
func NewHub(lookup BusLookup, opts Options) *Hub {
	h := &Hub{
		lookup:     lookup,
		logger:     opts.Logger.With().Str("component", "WebSocketHub").Logger(),
		sendBuffer: opts.SendBuffer,
		writeWait:  opts.WriteTimeout,
		sessions:   make(map[string]*session),
		broadcast:  make(chan *events.Envelope, defaultSendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		closeGame:  make(chan string),
		queries:    make(chan func()),
		done:       make(chan struct{}),
	}
	if h.sendBuffer <= 0 {
		h.sendBuffer = defaultSendBuffer
	}
	if h.writeWait <= 0 {
		h.writeWait = defaultWriteWait
	}
	return h
}

// Run starts the hub's event loop and blocks until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for gameID := range h.sessions {
				h.closeSession(gameID)
			}
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case env := <-h.broadcast:
			h.broadcastEnvelope(env)

		case gameID := <-h.closeGame:
			h.closeSession(gameID)

		case query := <-h.queries:
			query()
		}
	}
}

// Handler serves /<path>{gameID}. path must end with a slash.
func (h *Hub) Handler(path string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+path+"{gameID}", func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r, r.PathValue("gameID"))
	})
	return mux
}

// ServeWS upgrades the request and streams the events of gameID to it
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, gameID string) {
	bus, ok := h.lookup(gameID)
	if !ok {
		http.Error(w, "unknown game", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("game_id", gameID).Msg("WebSocket upgrade failed")
		return
	}

	client := &Client{
		id:     uuid.NewString(),
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, h.sendBuffer),
		gameID: gameID,
		bus:    bus,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// CloseGame disconnects every viewer of a game
func (h *Hub) CloseGame(gameID string) {
	select {
	case h.closeGame <- gameID:
	case <-h.done:
	}
}

// ClientCount returns the number of viewers of a game. Zero once the hub stopped.
func (h *Hub) ClientCount(gameID string) int {
	reply := make(chan int, 1)
	query := func() {
		n := 0
		if s, ok := h.sessions[gameID]; ok {
			n = len(s.clients)
		}
		reply <- n
	}
	select {
	case h.queries <- query:
		return <-reply
	case <-h.done:
		return 0
	}
}

// registerClient adds a client to a session, subscribing to the game's bus
// for the first one
func (h *Hub) registerClient(client *Client) {
	s, ok := h.sessions[client.gameID]
	if !ok {
		s = &session{
			clients:    make(map[*Client]bool),
			bus:        client.bus,
			subscriber: &gameSubscriber{id: "websocket-" + client.gameID, hub: h},
		}
		h.sessions[client.gameID] = s
		s.bus.Subscribe(s.subscriber)
	}
	s.clients[client] = true

	h.logger.Debug().
		Str("game_id", client.gameID).
		Str("client_id", client.id).
		Int("clients", len(s.clients)).
		Msg("Client registered")
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	s, ok := h.sessions[client.gameID]
	if !ok || !s.clients[client] {
		return
	}
	delete(s.clients, client)
	close(client.send)

	// Clean up empty sessions
	if len(s.clients) == 0 {
		s.bus.Unsubscribe(s.subscriber.ID())
		delete(h.sessions, client.gameID)
	}

	h.logger.Debug().
		Str("game_id", client.gameID).
		Str("client_id", client.id).
		Int("remaining", len(s.clients)).
		Msg("Client unregistered")
}

func (h *Hub) closeSession(gameID string) {
	s, ok := h.sessions[gameID]
	if !ok {
		return
	}
	for client := range s.clients {
		close(client.send)
	}
	s.bus.Unsubscribe(s.subscriber.ID())
	delete(h.sessions, gameID)
	h.logger.Debug().Str("game_id", gameID).Msg("Session closed")
}

// broadcastEnvelope sends an event to all clients of its game. Clients that
// cannot keep up are dropped.
func (h *Hub) broadcastEnvelope(env *events.Envelope) {
	s, ok := h.sessions[env.GameID]
	if !ok {
		return
	}

	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error().Err(err).Str("event_type", env.Type).Msg("Failed to marshal event")
		return
	}

	for client := range s.clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn().Str("client_id", client.id).Msg("Client send buffer full, disconnecting")
			h.unregisterClient(client)
		}
	}
}

// gameSubscriber forwards the events of one game into the hub
type gameSubscriber struct {
	id  string
	hub *Hub
}

func (s *gameSubscriber) ID() string                 { return s.id }
func (s *gameSubscriber) InterestedIn(_ string) bool { return true }

func (s *gameSubscriber) HandleEvent(event events.Event) {
	env, err := events.Wrap(event)
	if err != nil {
		s.hub.logger.Warn().Err(err).Msg("Dropping event that failed to encode")
		return
	}
	select {
	case s.hub.broadcast <- env:
	default:
		s.hub.logger.Warn().Str("event_type", env.Type).Msg("Hub broadcast queue full, dropping event")
	}
}

// readPump keeps the connection alive and notices when the peer leaves.
// Viewers do not send commands.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug().Err(err).Str("client_id", c.id).Msg("WebSocket read error")
			}
			return
		}
	}
}

// writePump sends one text frame per event and pings the peer
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeWait))
			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game closed"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
