package events

import (
	"time"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
)

// Event is something that happened in a game, stamped with the turn it
// happened in and the player it concerns
type Event interface {
	Type() string
	Timestamp() time.Time
	GameID() string
	Turn() int
	// Player is NoPlayer for events about the whole game
	Player() core.PlayerID
}

// BaseEvent holds the fields every event shares
type BaseEvent struct {
	EventType  string        `json:"type"`
	Time       time.Time     `json:"timestamp"`
	Game       string        `json:"game_id"`
	TurnNumber int           `json:"turn"`
	PlayerID   core.PlayerID `json:"player_id"`
}

func newBase(eventType, gameID string, player core.PlayerID, turn int) BaseEvent {
	return BaseEvent{
		EventType:  eventType,
		Time:       time.Now(),
		Game:       gameID,
		TurnNumber: turn,
		PlayerID:   player,
	}
}

func (e BaseEvent) Type() string          { return e.EventType }
func (e BaseEvent) Timestamp() time.Time  { return e.Time }
func (e BaseEvent) GameID() string        { return e.Game }
func (e BaseEvent) Turn() int             { return e.TurnNumber }
func (e BaseEvent) Player() core.PlayerID { return e.PlayerID }

// EventHandler is called by SubscribeFunc registrations
type EventHandler func(Event)

// Subscriber receives the event types it is interested in
type Subscriber interface {
	ID() string
	HandleEvent(Event)
	InterestedIn(eventType string) bool
}
