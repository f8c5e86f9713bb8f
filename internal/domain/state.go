package domain

import "fmt"

// Phase represents the lifecycle stage of a match.
type Phase string

const (
	// PhaseLobby indicates the match is waiting for players.
	PhaseLobby Phase = "lobby"
	// PhasePlaying indicates the match is actively in progress.
	PhasePlaying Phase = "playing"
	// PhaseEnded indicates the match has finished.
	PhaseEnded Phase = "ended"
)

// Side identifies one of the two players.
type Side int

const (
	SideA Side = 0
	SideB Side = 1
)

// Other returns the opposing side.
func (s Side) Other() Side {
	return 1 - s
}

func (s Side) String() string {
	if s == SideA {
		return "A"
	}
	return "B"
}

// GameMode selects how strictly committed words may be extended.
type GameMode int

const (
	GameDynamic GameMode = iota
	GameFixed
)

func (m GameMode) String() string {
	switch m {
	case GameFixed:
		return "FIXED"
	default:
		return "DYNAMIC"
	}
}

// PlacementMode selects whether new words must attach to the existing grid.
type PlacementMode int

const (
	PlacementAcrostic PlacementMode = iota
	PlacementGo
)

func (m PlacementMode) String() string {
	switch m {
	case PlacementGo:
		return "GO"
	default:
		return "ACROSTIC"
	}
}

// Modes is the mode configuration of a match. Changing it resets the match.
type Modes struct {
	Game      GameMode
	Placement PlacementMode
}

// ParseModes reads mode names such as "FIXED" and "GO".
func ParseModes(game, placement string) (Modes, error) {
	var m Modes
	switch game {
	case "", "DYNAMIC", "dynamic":
		m.Game = GameDynamic
	case "FIXED", "fixed":
		m.Game = GameFixed
	default:
		return m, fmt.Errorf("unknown game mode %q", game)
	}
	switch placement {
	case "", "ACROSTIC", "acrostic":
		m.Placement = PlacementAcrostic
	case "GO", "go":
		m.Placement = PlacementGo
	default:
		return m, fmt.Errorf("unknown placement mode %q", placement)
	}
	return m, nil
}

// Player holds one side's hand and score.
type Player struct {
	Hand  []rune
	Score int
}

// Placement is one tile put down during the in-progress move.
// Blank marks a wildcard tile; its Letter may be Wildcard until resolved.
type Placement struct {
	Row    int
	Col    int
	Letter rune
	Blank  bool
}

// Game is the authoritative state of a single match. The in-progress move is
// the set of unlocked lettered cells on Board.
type Game struct {
	Phase   Phase
	Board   *Board
	Bag     []rune
	Players [2]Player
	Turn    int
	Current Side
	Modes   Modes
	Passes  int
}

// PendingCells returns the ids of tiles placed but not yet committed.
func (g *Game) PendingCells() []int {
	var ids []int
	for i := range g.Board.Cells {
		c := &g.Board.Cells[i]
		if c.HasLetter() && !c.Locked {
			ids = append(ids, i)
		}
	}
	return ids
}

// Player returns the state for side.
func (g *Game) Player(side Side) *Player {
	return &g.Players[side]
}

// Intent distinguishes the two snapshot messages.
type Intent int

const (
	IntentInit       Intent = 1
	IntentTurnCommit Intent = 2
)

// Snapshot is the whole-state replication payload, expressed from the sender's
// ("mover's") perspective.
type Snapshot struct {
	Intent        Intent
	Board         []Cell
	Bag           []rune
	MoverHand     []rune
	OpponentHand  []rune
	MoverScore    int
	OpponentScore int
	Turn          int
	Modes         Modes
	Passes        int
	Ended         bool
}

// Snapshot captures the full state as seen by mover.
func (g *Game) Snapshot(mover Side, intent Intent) Snapshot {
	return Snapshot{
		Intent:        intent,
		Board:         append([]Cell(nil), g.Board.Cells...),
		Bag:           append([]rune(nil), g.Bag...),
		MoverHand:     append([]rune(nil), g.Players[mover].Hand...),
		OpponentHand:  append([]rune(nil), g.Players[mover.Other()].Hand...),
		MoverScore:    g.Players[mover].Score,
		OpponentScore: g.Players[mover.Other()].Score,
		Turn:          g.Turn,
		Modes:         g.Modes,
		Passes:        g.Passes,
		Ended:         g.Phase == PhaseEnded,
	}
}

// ApplySnapshot replaces the state wholesale with a snapshot sent by the peer.
// local is this instance's own side; the sender is local.Other().
func (g *Game) ApplySnapshot(s Snapshot, local Side) error {
	if len(s.Board) != BoardSize*BoardSize {
		return fmt.Errorf("snapshot board has %d cells, want %d", len(s.Board), BoardSize*BoardSize)
	}
	for i, c := range s.Board {
		if c.ID() != i {
			return fmt.Errorf("snapshot cell %d holds coordinates %d,%d", i, c.Row, c.Col)
		}
		if c.Operator != OperatorAt(c.Row, c.Col) {
			return fmt.Errorf("snapshot cell %d,%d carries operator %s", c.Row, c.Col, c.Operator)
		}
		if c.Letter != 0 && c.Letter != Wildcard && (c.Letter < 'A' || c.Letter > 'Z') {
			return fmt.Errorf("snapshot cell %d,%d carries letter %q", c.Row, c.Col, c.Letter)
		}
	}
	sender := local.Other()

	next := Game{
		Phase:  PhasePlaying,
		Board:  &Board{Cells: append([]Cell(nil), s.Board...)},
		Bag:    append([]rune(nil), s.Bag...),
		Turn:   s.Turn,
		Modes:  s.Modes,
		Passes: s.Passes,
	}
	next.Players[sender] = Player{Hand: append([]rune(nil), s.MoverHand...), Score: s.MoverScore}
	next.Players[local] = Player{Hand: append([]rune(nil), s.OpponentHand...), Score: s.OpponentScore}

	switch s.Intent {
	case IntentInit:
		next.Current = sender
	case IntentTurnCommit:
		next.Current = local
	default:
		return fmt.Errorf("unknown snapshot intent %d", s.Intent)
	}
	if s.Ended {
		next.Phase = PhaseEnded
	}

	*g = next
	return nil
}
