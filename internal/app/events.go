package app

import "wordcircuit/internal/domain"

// EventKind identifies emitted domain events for dispatch by a transport.
type EventKind string

const (
	EventGameStarted   EventKind = "game_started"
	EventHandDealt     EventKind = "hand_dealt"
	EventMoveCommitted EventKind = "move_committed"
	EventTurnPassed    EventKind = "turn_passed"
	EventGameEnded     EventKind = "game_ended"
	EventGameReset     EventKind = "game_reset"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []domain.Side // empty means broadcast
}

type GameStartedPayload struct {
	Modes     domain.Modes
	FirstSide domain.Side
	BagSize   int
}

type HandDealtPayload struct {
	Side domain.Side
	Hand []rune
}

type MoveCommittedPayload struct {
	Side     domain.Side
	Turn     int
	Words    []string
	Base     int
	Cascade  int
	Firings  []domain.Firing
	Active   []int
	Score    int
	NextSide domain.Side
}

type TurnPassedPayload struct {
	Side     domain.Side
	Turn     int
	NextSide domain.Side
}

type GameEndedPayload struct {
	Reason string
	Scores [2]int
	Winner domain.Side
	Draw   bool
}

type GameResetPayload struct {
	Modes domain.Modes
}
