package states

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/game/events"
)

// maxTurnLog bounds the turn log of long AI vs AI games
const maxTurnLog = 500

// TurnRecord is one entry of the turn log
type TurnRecord struct {
	Turn    int
	Player  core.PlayerID
	Phase   GamePhase
	Started time.Time
	Reason  string
}

// Lifecycle drives a game through its phases. A turn only starts through
// BeginTurn, which moves the turn counter and the current player together.
// Transition events are published after the lock is released, so handlers
// may query the lifecycle.
type Lifecycle struct {
	mu       sync.RWMutex
	gameID   string
	phase    GamePhase
	ctx      GameContext
	turns    []TurnRecord
	eventBus *events.EventBus
	logger   zerolog.Logger
	now      func() time.Time
}

// NewLifecycle creates a lifecycle in PhaseInitializing. eventBus may be nil.
func NewLifecycle(gameID string, eventBus *events.EventBus, logger zerolog.Logger) *Lifecycle {
	return &Lifecycle{
		gameID:   gameID,
		phase:    PhaseInitializing,
		ctx:      freshContext(gameID, 0),
		eventBus: eventBus,
		logger:   logger.With().Str("game_id", gameID).Logger(),
		now:      time.Now,
	}
}

func freshContext(gameID string, restarts int) GameContext {
	return GameContext{
		GameID:        gameID,
		CurrentPlayer: core.PlayerOne,
		Winner:        core.NoPlayer,
		Restarts:      restarts,
	}
}

func (l *Lifecycle) Phase() GamePhase {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.phase
}

// Context returns a copy of the game context
func (l *Lifecycle) Context() GameContext {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ctx
}

func (l *Lifecycle) Turn() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ctx.Turn
}

// Elapsed returns the playing time so far, or the length of a finished game
func (l *Lifecycle) Elapsed() time.Duration {
	return l.Context().Elapsed(l.now())
}

// Turns returns a copy of the turn log, oldest first
func (l *Lifecycle) Turns() []TurnRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]TurnRecord(nil), l.turns...)
}

// BeginTurn hands the next turn to player. isAI picks the turn phase.
func (l *Lifecycle) BeginTurn(player core.PlayerID, isAI bool, reason string) error {
	if !player.Valid() {
		return fmt.Errorf("cannot start a turn for player %d", player)
	}
	target := TurnPhase(isAI)

	l.mu.Lock()
	from, err := l.enterLocked(target)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	now := l.now()
	if l.ctx.StartTime.IsZero() {
		l.ctx.StartTime = now
	}
	l.ctx.Turn++
	l.ctx.CurrentPlayer = player
	turn := l.ctx.Turn
	l.turns = append(l.turns, TurnRecord{Turn: turn, Player: player, Phase: target, Started: now, Reason: reason})
	if len(l.turns) > maxTurnLog {
		l.turns = l.turns[len(l.turns)-maxTurnLog:]
	}
	l.mu.Unlock()

	l.logger.Debug().
		Int("turn", turn).
		Int("player", int(player)).
		Str("phase", target.String()).
		Str("reason", reason).
		Msg("Turn started")
	l.publish(player, turn, from, target, reason)
	return nil
}

// End finishes the game in favour of winner. Only a game in a turn can end.
func (l *Lifecycle) End(winner core.PlayerID, reason string) error {
	if !winner.Valid() {
		return fmt.Errorf("game over without a winner")
	}

	l.mu.Lock()
	from, err := l.enterLocked(PhaseGameOver)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	l.ctx.Winner = winner
	l.ctx.EndTime = l.now()
	ctx := l.ctx
	l.mu.Unlock()

	l.logger.Info().
		Int("winner", int(winner)).
		Int("turns", ctx.Turn).
		Dur("duration", ctx.Elapsed(ctx.EndTime)).
		Msg("Game over")
	l.publish(winner, ctx.Turn, from, PhaseGameOver, reason)
	return nil
}

// Reset passes through PhaseReset back to PhaseInitializing. The turn
// counter, the winner and the turn log start over; the restart count grows.
func (l *Lifecycle) Reset(reason string) error {
	l.mu.Lock()
	from, err := l.enterLocked(PhaseReset)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	player, turn := l.ctx.CurrentPlayer, l.ctx.Turn
	l.ctx = freshContext(l.gameID, l.ctx.Restarts+1)
	l.turns = nil
	restarts := l.ctx.Restarts
	if _, err := l.enterLocked(PhaseInitializing); err != nil {
		l.mu.Unlock()
		return err
	}
	l.mu.Unlock()

	l.logger.Info().Int("restarts", restarts).Str("reason", reason).Msg("Resetting game")
	l.publish(player, turn, from, PhaseReset, reason)
	l.publish(core.NoPlayer, 0, PhaseReset, PhaseInitializing, reason)
	return nil
}

func (l *Lifecycle) enterLocked(target GamePhase) (GamePhase, error) {
	from := l.phase
	if !from.CanTransitionTo(target) {
		return from, fmt.Errorf("invalid transition from %s to %s", from, target)
	}
	l.phase = target
	return from, nil
}

func (l *Lifecycle) publish(player core.PlayerID, turn int, from, to GamePhase, reason string) {
	if l.eventBus == nil {
		return
	}
	l.eventBus.Publish(events.NewStateTransitionEvent(l.gameID, player, turn, from.String(), to.String(), reason))
}
