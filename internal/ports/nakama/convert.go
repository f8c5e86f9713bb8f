package nakama

import (
	"fmt"
	"unicode/utf8"

	"wordcircuit/internal/app"
	"wordcircuit/internal/domain"
	"wordcircuit/internal/wire"
)

func decodePlaceTile(data []byte) (domain.Placement, error) {
	var req wire.PlaceTileRequest
	if err := req.Unmarshal(data); err != nil {
		return domain.Placement{}, fmt.Errorf("invalid place request: %w", err)
	}
	p := domain.Placement{Row: req.Row, Col: req.Col, Blank: req.Blank}
	switch utf8.RuneCountInString(req.Letter) {
	case 0:
		if !req.Blank {
			return domain.Placement{}, fmt.Errorf("letter is required")
		}
		p.Letter = domain.Wildcard
	case 1:
		r, _ := utf8.DecodeRuneInString(req.Letter)
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		p.Letter = r
	default:
		return domain.Placement{}, fmt.Errorf("letter %q is not a single tile", req.Letter)
	}
	return p, nil
}

func decodeModes(data []byte) (domain.Modes, error) {
	var req wire.GameModes
	if err := req.Unmarshal(data); err != nil {
		return domain.Modes{}, fmt.Errorf("invalid modes request: %w", err)
	}
	return domain.ParseModes(req.GameMode, req.PlacementMode)
}

func modesToMessage(m domain.Modes) wire.GameModes {
	return wire.GameModes{GameMode: m.Game.String(), PlacementMode: m.Placement.String()}
}

// encodeEvent maps an app event to its op code and protobuf payload.
func encodeEvent(ev app.Event) (int64, []byte, error) {
	var opCode int64
	var payload wire.Message

	switch p := ev.Payload.(type) {
	case app.GameStartedPayload:
		opCode = OpGameStarted
		payload = &wire.GameStartedEvent{Modes: modesToMessage(p.Modes), FirstSeat: int(p.FirstSide), BagSize: p.BagSize}
	case app.HandDealtPayload:
		opCode = OpHandDealt
		payload = &wire.HandDealtEvent{Seat: int(p.Side), Hand: string(p.Hand)}
	case app.MoveCommittedPayload:
		opCode = OpMoveCommitted
		firings := make([]wire.Firing, len(p.Firings))
		for i, f := range p.Firings {
			firings[i] = wire.Firing{Cluster: f.Cluster, Word: f.Word, Trigger: f.Trigger.String(), Points: f.Points}
		}
		payload = &wire.MoveCommittedEvent{
			Seat:        int(p.Side),
			Turn:        p.Turn,
			Words:       p.Words,
			Base:        p.Base,
			Cascade:     p.Cascade,
			Firings:     firings,
			ActiveCells: p.Active,
			Score:       p.Score,
			NextSeat:    int(p.NextSide),
		}
	case app.TurnPassedPayload:
		opCode = OpTurnPassed
		payload = &wire.TurnPassedEvent{Seat: int(p.Side), Turn: p.Turn, NextSeat: int(p.NextSide)}
	case app.GameEndedPayload:
		opCode = OpGameEnded
		msg := &wire.GameEndedEvent{Reason: p.Reason, Scores: p.Scores[:], WinnerSeat: int(p.Winner)}
		if p.Draw {
			msg.WinnerSeat = -1
		}
		payload = msg
	case app.GameResetPayload:
		opCode = OpGameReset
		payload = &wire.GameResetEvent{Modes: modesToMessage(p.Modes)}
	default:
		return 0, nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	return opCode, payload.Marshal(), nil
}

// viewFor builds the snapshot sent to seat. The opponent's hand and the bag are
// withheld, and a seat waiting for the opponent does not see the opponent's
// uncommitted tiles. Applying the result with local=seat reproduces the public
// state with the correct side to move.
func viewFor(game *domain.Game, seat domain.Side) domain.Snapshot {
	var s domain.Snapshot
	if game.Current == seat {
		s = game.Snapshot(seat.Other(), domain.IntentTurnCommit)
	} else {
		s = game.Snapshot(seat.Other(), domain.IntentInit)
		for i := range s.Board {
			if !s.Board[i].Locked {
				s.Board[i].Letter = 0
				s.Board[i].Blank = false
			}
		}
	}
	s.MoverHand = nil
	s.Bag = nil
	return s
}
