// Package wire encodes replication snapshots and Nakama match ops in protobuf
// wire format.
//
// message Snapshot {
//   int32  intent         = 1;
//   repeated Cell board   = 2;
//   string bag            = 3;
//   string mover_hand     = 4;
//   string opponent_hand  = 5;
//   sint32 mover_score    = 6;
//   sint32 opponent_score = 7;
//   int32  turn           = 8;
//   int32  game_mode      = 9;
//   int32  placement_mode = 10;
//   int32  passes         = 11;
//   bool   ended          = 12;
// }
//
// message Cell {
//   int32 row = 1; int32 col = 2; int32 operator = 3; int32 letter = 4;
//   bool locked = 5; bool blank = 6; int32 turn_placed = 7;
// }
package wire

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"wordcircuit/internal/domain"
)

// ErrMalformed is returned for payloads that do not decode as their message.
var ErrMalformed = errors.New("malformed protobuf message")

const (
	fieldIntent        protowire.Number = 1
	fieldBoard         protowire.Number = 2
	fieldBag           protowire.Number = 3
	fieldMoverHand     protowire.Number = 4
	fieldOpponentHand  protowire.Number = 5
	fieldMoverScore    protowire.Number = 6
	fieldOpponentScore protowire.Number = 7
	fieldTurn          protowire.Number = 8
	fieldGameMode      protowire.Number = 9
	fieldPlacementMode protowire.Number = 10
	fieldPasses        protowire.Number = 11
	fieldEnded         protowire.Number = 12
)

const (
	cellRow protowire.Number = iota + 1
	cellCol
	cellOperator
	cellLetter
	cellLocked
	cellBlank
	cellTurnPlaced
)

// MarshalSnapshot encodes s.
func MarshalSnapshot(s domain.Snapshot) []byte {
	var b []byte
	b = appendVarint(b, fieldIntent, uint64(s.Intent))
	var cell []byte
	for _, c := range s.Board {
		cell = marshalCell(cell[:0], c)
		b = protowire.AppendTag(b, fieldBoard, protowire.BytesType)
		b = protowire.AppendBytes(b, cell)
	}
	b = appendString(b, fieldBag, string(s.Bag))
	b = appendString(b, fieldMoverHand, string(s.MoverHand))
	b = appendString(b, fieldOpponentHand, string(s.OpponentHand))
	b = appendVarint(b, fieldMoverScore, protowire.EncodeZigZag(int64(s.MoverScore)))
	b = appendVarint(b, fieldOpponentScore, protowire.EncodeZigZag(int64(s.OpponentScore)))
	b = appendVarint(b, fieldTurn, uint64(s.Turn))
	b = appendVarint(b, fieldGameMode, uint64(s.Modes.Game))
	b = appendVarint(b, fieldPlacementMode, uint64(s.Modes.Placement))
	b = appendVarint(b, fieldPasses, uint64(s.Passes))
	b = appendVarint(b, fieldEnded, protowire.EncodeBool(s.Ended))
	return b
}

// UnmarshalSnapshot decodes a snapshot, skipping unknown fields.
func UnmarshalSnapshot(data []byte) (domain.Snapshot, error) {
	var s domain.Snapshot
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldBoard && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return domain.Snapshot{}, fmt.Errorf("%w: board: %v", ErrMalformed, protowire.ParseError(m))
			}
			c, err := unmarshalCell(v)
			if err != nil {
				return domain.Snapshot{}, err
			}
			s.Board = append(s.Board, c)
			data = data[m:]
		case (num == fieldBag || num == fieldMoverHand || num == fieldOpponentHand) && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return domain.Snapshot{}, fmt.Errorf("%w: tiles: %v", ErrMalformed, protowire.ParseError(m))
			}
			tiles := []rune(string(v))
			switch num {
			case fieldBag:
				s.Bag = tiles
			case fieldMoverHand:
				s.MoverHand = tiles
			default:
				s.OpponentHand = tiles
			}
			data = data[m:]
		case num >= fieldIntent && num <= fieldEnded && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return domain.Snapshot{}, fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(m))
			}
			setSnapshotVarint(&s, num, v)
			data = data[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return domain.Snapshot{}, fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(m))
			}
			data = data[m:]
		}
	}
	return s, nil
}

func setSnapshotVarint(s *domain.Snapshot, num protowire.Number, v uint64) {
	switch num {
	case fieldIntent:
		s.Intent = domain.Intent(v)
	case fieldMoverScore:
		s.MoverScore = int(protowire.DecodeZigZag(v))
	case fieldOpponentScore:
		s.OpponentScore = int(protowire.DecodeZigZag(v))
	case fieldTurn:
		s.Turn = int(v)
	case fieldGameMode:
		s.Modes.Game = domain.GameMode(v)
	case fieldPlacementMode:
		s.Modes.Placement = domain.PlacementMode(v)
	case fieldPasses:
		s.Passes = int(v)
	case fieldEnded:
		s.Ended = protowire.DecodeBool(v)
	}
}

func marshalCell(b []byte, c domain.Cell) []byte {
	b = appendVarint(b, cellRow, uint64(c.Row))
	b = appendVarint(b, cellCol, uint64(c.Col))
	b = appendVarint(b, cellOperator, uint64(c.Operator))
	b = appendVarint(b, cellLetter, uint64(c.Letter))
	b = appendVarint(b, cellLocked, protowire.EncodeBool(c.Locked))
	b = appendVarint(b, cellBlank, protowire.EncodeBool(c.Blank))
	b = appendVarint(b, cellTurnPlaced, uint64(c.TurnPlaced))
	return b
}

func unmarshalCell(data []byte) (domain.Cell, error) {
	var c domain.Cell
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return domain.Cell{}, fmt.Errorf("%w: cell: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]
		if typ != protowire.VarintType {
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return domain.Cell{}, fmt.Errorf("%w: cell: %v", ErrMalformed, protowire.ParseError(m))
			}
			data = data[m:]
			continue
		}
		v, m := protowire.ConsumeVarint(data)
		if m < 0 {
			return domain.Cell{}, fmt.Errorf("%w: cell: %v", ErrMalformed, protowire.ParseError(m))
		}
		data = data[m:]
		switch num {
		case cellRow:
			c.Row = int(v)
		case cellCol:
			c.Col = int(v)
		case cellOperator:
			c.Operator = domain.OperatorKind(v)
		case cellLetter:
			c.Letter = rune(v)
		case cellLocked:
			c.Locked = protowire.DecodeBool(v)
		case cellBlank:
			c.Blank = protowire.DecodeBool(v)
		case cellTurnPlaced:
			c.TurnPlaced = int(v)
		}
	}
	if !domain.InBounds(c.Row, c.Col) {
		return domain.Cell{}, fmt.Errorf("%w: cell %d,%d out of bounds", ErrMalformed, c.Row, c.Col)
	}
	return c, nil
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}
