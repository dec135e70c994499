package core

import "fmt"

// CommandKind names an entry of the command surface
type CommandKind string

const (
	CommandSelect     CommandKind = "select"
	CommandDeselect   CommandKind = "deselect"
	CommandRightClick CommandKind = "right_click"
	CommandHover      CommandKind = "hover"
	CommandEndTurn    CommandKind = "end_turn"
	// CommandWait is only produced by the autoplayer while a unit is busy
	CommandWait CommandKind = "wait"
)

// Command is one input to the turn controller. Target is ignored by kinds
// that do not take a tile.
type Command struct {
	Kind   CommandKind `json:"kind"`
	Target Coordinate  `json:"target"`
}

func Select(c Coordinate) Command     { return Command{Kind: CommandSelect, Target: c} }
func RightClick(c Coordinate) Command { return Command{Kind: CommandRightClick, Target: c} }
func Hover(c Coordinate) Command      { return Command{Kind: CommandHover, Target: c} }
func Deselect() Command               { return Command{Kind: CommandDeselect} }
func EndTurn() Command                { return Command{Kind: CommandEndTurn} }
func Wait() Command                   { return Command{Kind: CommandWait} }

// Valid reports whether k is a known command kind
func (k CommandKind) Valid() bool {
	switch k {
	case CommandSelect, CommandDeselect, CommandRightClick, CommandHover, CommandEndTurn, CommandWait:
		return true
	}
	return false
}

func (c Command) String() string {
	switch c.Kind {
	case CommandDeselect, CommandEndTurn, CommandWait:
		return string(c.Kind)
	default:
		return fmt.Sprintf("%s %s", c.Kind, c.Target)
	}
}

// OutcomeKind describes what a command did
type OutcomeKind string

const (
	OutcomeRejected         OutcomeKind = "rejected"
	OutcomeSelected         OutcomeKind = "selected"
	OutcomeDeselected       OutcomeKind = "deselected"
	OutcomePreviewed        OutcomeKind = "previewed"
	OutcomeMoved            OutcomeKind = "moved"
	OutcomeAttacked         OutcomeKind = "attacked"
	OutcomeMovedAndAttacked OutcomeKind = "moved_and_attacked"
	OutcomeTurnSwitched     OutcomeKind = "turn_switched"
	OutcomeWaiting          OutcomeKind = "waiting"
)

// Outcome is the result of a command. Illegal commands are declined with
// OutcomeRejected and a human readable reason; nothing on the board changes.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Reason string      `json:"reason,omitempty"`
}

// Rejected builds a declined outcome
func Rejected(reason string) Outcome { return Outcome{Kind: OutcomeRejected, Reason: reason} }

// Accepted reports whether the command changed anything
func (o Outcome) Accepted() bool { return o.Kind != OutcomeRejected && o.Kind != OutcomeWaiting }

// IsAction reports whether the outcome consumed a unit's move or attack
func (o Outcome) IsAction() bool {
	return o.Kind == OutcomeMoved || o.Kind == OutcomeAttacked || o.Kind == OutcomeMovedAndAttacked
}
