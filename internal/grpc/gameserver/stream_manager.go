package gameserver

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/GridTactics/internal/game/events"
)

const streamBufferSize = 256

// streamClient is one WatchGame call. It is subscribed to the game's event
// bus; events are wrapped on the publishing goroutine and picked up by the
// stream goroutine from updates.
type streamClient struct {
	id      string
	gameID  string
	types   map[string]bool
	updates chan *events.Envelope
	done    chan struct{}
	once    sync.Once
}

func (c *streamClient) ID() string { return c.id }

func (c *streamClient) InterestedIn(eventType string) bool {
	return len(c.types) == 0 || c.types[eventType]
}

// HandleEvent never blocks the engine: a slow stream loses events
func (c *streamClient) HandleEvent(event events.Event) {
	env, err := events.Wrap(event)
	if err != nil {
		log.Warn().Err(err).Str("stream_id", c.id).Msg("Dropping event that failed to encode")
		return
	}

	select {
	case <-c.done:
	case c.updates <- env:
	default:
		log.Warn().
			Str("game_id", c.gameID).
			Str("stream_id", c.id).
			Str("event_type", env.Type).
			Msg("Stream update channel full, dropping event")
	}
}

func (c *streamClient) close() {
	c.once.Do(func() { close(c.done) })
}

// StreamManager manages all stream clients for a game
type StreamManager struct {
	gameID    string
	bus       *events.EventBus
	clients   map[string]*streamClient
	clientsMu sync.RWMutex
}

// NewStreamManager creates a stream manager publishing the events of bus
func NewStreamManager(gameID string, bus *events.EventBus) *StreamManager {
	return &StreamManager{
		gameID:  gameID,
		bus:     bus,
		clients: make(map[string]*streamClient),
	}
}

// RegisterClient subscribes a new stream to the game's events
func (sm *StreamManager) RegisterClient(types []string) *streamClient {
	client := &streamClient{
		id:      uuid.NewString(),
		gameID:  sm.gameID,
		updates: make(chan *events.Envelope, streamBufferSize),
		done:    make(chan struct{}),
	}
	if len(types) > 0 {
		client.types = make(map[string]bool, len(types))
		for _, t := range types {
			client.types[t] = true
		}
	}

	sm.clientsMu.Lock()
	sm.clients[client.id] = client
	count := len(sm.clients)
	sm.clientsMu.Unlock()

	sm.bus.Subscribe(client)

	log.Debug().
		Str("game_id", sm.gameID).
		Str("stream_id", client.id).
		Int("total_streams", count).
		Msg("Stream client registered")
	return client
}

// UnregisterClient removes a stream client
func (sm *StreamManager) UnregisterClient(id string) {
	sm.clientsMu.Lock()
	client, exists := sm.clients[id]
	delete(sm.clients, id)
	remaining := len(sm.clients)
	sm.clientsMu.Unlock()

	if !exists {
		return
	}
	sm.bus.Unsubscribe(id)
	client.close()

	log.Debug().
		Str("game_id", sm.gameID).
		Str("stream_id", id).
		Int("remaining_streams", remaining).
		Msg("Stream client unregistered")
}

// CloseAll ends every stream, used when the game is removed
func (sm *StreamManager) CloseAll() {
	sm.clientsMu.RLock()
	ids := make([]string, 0, len(sm.clients))
	for id := range sm.clients {
		ids = append(ids, id)
	}
	sm.clientsMu.RUnlock()

	for _, id := range ids {
		sm.UnregisterClient(id)
	}
}

// GetClientCount returns the number of connected stream clients
func (sm *StreamManager) GetClientCount() int {
	sm.clientsMu.RLock()
	defer sm.clientsMu.RUnlock()
	return len(sm.clients)
}
