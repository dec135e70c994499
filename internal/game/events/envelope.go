package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the wire form of an event. Payload holds the full event as
// JSON so remote clients can decode only the types they care about.
type Envelope struct {
	Type      string          `json:"type"`
	GameID    string          `json:"game_id"`
	Timestamp time.Time       `json:"timestamp"`
	Turn      int             `json:"turn"`
	Payload   json.RawMessage `json:"payload"`
}

// Wrap encodes an event into an Envelope
func Wrap(event Event) (*Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", event.Type(), err)
	}
	return &Envelope{
		Type:      event.Type(),
		GameID:    event.GameID(),
		Timestamp: event.Timestamp(),
		Turn:      event.Turn(),
		Payload:   payload,
	}, nil
}

// Decode unmarshals the payload into v
func (e *Envelope) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}
