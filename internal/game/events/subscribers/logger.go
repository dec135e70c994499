package subscribers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GridTactics/internal/game/events"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	// If no filter is set, interested in all events
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Int("turn", event.Turn()).
		Int("player_id", int(event.Player())).
		Time("timestamp", event.Timestamp()).
		Logger()

	// Create the base event log
	var logEvent *zerolog.Event
	switch ls.logLevel {
	case zerolog.DebugLevel:
		logEvent = eventLogger.Debug()
	case zerolog.InfoLevel:
		logEvent = eventLogger.Info()
	case zerolog.WarnLevel:
		logEvent = eventLogger.Warn()
	case zerolog.ErrorLevel:
		logEvent = eventLogger.Error()
	default:
		logEvent = eventLogger.Info()
	}

	// Add event-specific fields based on type
	switch e := event.(type) {
	case *events.GameStartedEvent:
		logEvent.
			Int("map_width", e.MapWidth).
			Int("map_height", e.MapHeight).
			Int("unit_count", e.UnitCount).
			Int("first_player", int(e.FirstPlayer))

	case *events.GameEndedEvent:
		logEvent.
			Int("winner", int(e.Winner)).
			Dur("duration", e.Duration).
			Int("final_turn", e.FinalTurn)

	case *events.GameRestartedEvent:
		logEvent.Int("restarts", e.Restarts)

	case *events.TurnSwitchedEvent:
		logEvent.
			Int("from", int(e.From)).
			Int("to", int(e.To)).
			Bool("is_ai", e.IsAI).
			Int("threat_tiles", e.ThreatTiles)

	case *events.UnitSelectedEvent:
		logEvent.
			Int("unit_id", int(e.UnitID)).
			Str("at", e.At.String()).
			Int("move_tiles", e.MoveTiles).
			Int("attack_tiles", e.AttackTiles).
			Int("enemies_in_range", e.EnemiesInRange)

	case *events.SelectionClearedEvent:
		logEvent.Int("unit_id", int(e.UnitID))

	case *events.UnitMovedEvent:
		logEvent.
			Int("unit_id", int(e.UnitID)).
			Int("from_x", e.From.X).
			Int("from_y", e.From.Y).
			Int("to_x", e.To.X).
			Int("to_y", e.To.Y).
			Int("cost", e.Cost).
			Int("remaining_move", e.RemainingMove)

	case *events.UnitAttackedEvent:
		logEvent.
			Int("attacker_id", int(e.AttackerID)).
			Int("defender_id", int(e.DefenderID)).
			Int("target_x", e.Target.X).
			Int("target_y", e.Target.Y).
			Int("damage", e.Damage).
			Int("defender_health", e.DefenderHealth).
			Bool("destroyed", e.Destroyed)

	case *events.UnitDestroyedEvent:
		logEvent.
			Int("unit_id", int(e.UnitID)).
			Int("owner", int(e.Owner)).
			Int("destroyed_by", int(e.DestroyedBy))

	case *events.ActionRejectedEvent:
		logEvent.
			Str("command", e.Command.String()).
			Str("reason", e.Reason)

	case *events.StateTransitionEvent:
		logEvent.
			Str("from_phase", e.FromPhase).
			Str("to_phase", e.ToPhase).
			Str("reason", e.Reason)
	}

	// In dev mode, also log the full event as JSON
	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	// Send the log
	logEvent.Msg("Game event")
}
