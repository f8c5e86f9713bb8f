package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Match op messages exchanged with Nakama clients.
//
// message GameModes          { string game_mode = 1; string placement_mode = 2; }
// message PlaceTileRequest   { int32 row = 1; int32 col = 2; string letter = 3; bool blank = 4; }
// message GameStartedEvent   { GameModes modes = 1; int32 first_seat = 2; int32 bag_size = 3; }
// message HandDealtEvent     { int32 seat = 1; string hand = 2; }
// message Firing             { int32 cluster = 1; string word = 2; string trigger = 3; sint32 points = 4; }
// message MoveCommittedEvent {
//   int32 seat = 1; int32 turn = 2; repeated string words = 3; sint32 base = 4;
//   sint32 cascade = 5; repeated Firing firings = 6; repeated int32 active_cells = 7;
//   sint32 score = 8; int32 next_seat = 9;
// }
// message TurnPassedEvent    { int32 seat = 1; int32 turn = 2; int32 next_seat = 3; }
// message GameEndedEvent     { string reason = 1; repeated sint32 scores = 2; sint32 winner_seat = 3; }
// message GameResetEvent     { GameModes modes = 1; }
// message GameErrorEvent     { int32 code = 1; string message = 2; }
// message PlayerState {
//   string user_id = 1; int32 seat = 2; bool is_owner = 3; bool is_bot = 4;
//   string display_name = 5; sint32 score = 6; int32 tiles_remaining = 7;
// }
// message MatchStateSnapshot {
//   repeated string seats = 1; sint32 owner_seat = 2; int64 tick = 3; string phase = 4;
//   GameModes modes = 5; int32 turn = 6; sint32 current_seat = 7; int32 bag_size = 8;
//   repeated PlayerState players = 9;
// }

// Message is implemented by every match op payload.
type Message interface {
	Marshal() []byte
	Unmarshal(data []byte) error
}

// GameModes names a game mode and a placement mode. It is also the SetModes request.
type GameModes struct {
	GameMode      string
	PlacementMode string
}

func (m *GameModes) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.GameMode)
	b = appendString(b, 2, m.PlacementMode)
	return b
}

func (m *GameModes) Unmarshal(data []byte) error {
	*m = GameModes{}
	return walkFields(data, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			m.GameMode = string(f.raw)
		case f.is(2, protowire.BytesType):
			m.PlacementMode = string(f.raw)
		}
		return nil
	})
}

// PlaceTileRequest puts one tile from the hand on the board. An empty Letter
// with Blank set places an unassigned wildcard.
type PlaceTileRequest struct {
	Row    int
	Col    int
	Letter string
	Blank  bool
}

func (m *PlaceTileRequest) Marshal() []byte {
	var b []byte
	b = appendInt(b, 1, m.Row)
	b = appendInt(b, 2, m.Col)
	b = appendString(b, 3, m.Letter)
	b = appendBool(b, 4, m.Blank)
	return b
}

func (m *PlaceTileRequest) Unmarshal(data []byte) error {
	*m = PlaceTileRequest{}
	return walkFields(data, func(f field) error {
		switch {
		case f.is(1, protowire.VarintType):
			m.Row = f.asInt()
		case f.is(2, protowire.VarintType):
			m.Col = f.asInt()
		case f.is(3, protowire.BytesType):
			m.Letter = string(f.raw)
		case f.is(4, protowire.VarintType):
			m.Blank = protowire.DecodeBool(f.v)
		}
		return nil
	})
}

type GameStartedEvent struct {
	Modes     GameModes
	FirstSeat int
	BagSize   int
}

func (m *GameStartedEvent) Marshal() []byte {
	var b []byte
	b = appendMessage(b, 1, &m.Modes)
	b = appendInt(b, 2, m.FirstSeat)
	b = appendInt(b, 3, m.BagSize)
	return b
}

func (m *GameStartedEvent) Unmarshal(data []byte) error {
	*m = GameStartedEvent{}
	return walkFields(data, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			return m.Modes.Unmarshal(f.raw)
		case f.is(2, protowire.VarintType):
			m.FirstSeat = f.asInt()
		case f.is(3, protowire.VarintType):
			m.BagSize = f.asInt()
		}
		return nil
	})
}

// HandDealtEvent carries a seat's hand and is sent to that seat only.
type HandDealtEvent struct {
	Seat int
	Hand string
}

func (m *HandDealtEvent) Marshal() []byte {
	var b []byte
	b = appendInt(b, 1, m.Seat)
	b = appendString(b, 2, m.Hand)
	return b
}

func (m *HandDealtEvent) Unmarshal(data []byte) error {
	*m = HandDealtEvent{}
	return walkFields(data, func(f field) error {
		switch {
		case f.is(1, protowire.VarintType):
			m.Seat = f.asInt()
		case f.is(2, protowire.BytesType):
			m.Hand = string(f.raw)
		}
		return nil
	})
}

type Firing struct {
	Cluster int
	Word    string
	Trigger string
	Points  int
}

func (m *Firing) Marshal() []byte {
	var b []byte
	b = appendInt(b, 1, m.Cluster)
	b = appendString(b, 2, m.Word)
	b = appendString(b, 3, m.Trigger)
	b = appendSint(b, 4, m.Points)
	return b
}

func (m *Firing) Unmarshal(data []byte) error {
	*m = Firing{}
	return walkFields(data, func(f field) error {
		switch {
		case f.is(1, protowire.VarintType):
			m.Cluster = f.asInt()
		case f.is(2, protowire.BytesType):
			m.Word = string(f.raw)
		case f.is(3, protowire.BytesType):
			m.Trigger = string(f.raw)
		case f.is(4, protowire.VarintType):
			m.Points = f.asSint()
		}
		return nil
	})
}

// MoveCommittedEvent reports a scored commit. Score is the mover's running total.
type MoveCommittedEvent struct {
	Seat        int
	Turn        int
	Words       []string
	Base        int
	Cascade     int
	Firings     []Firing
	ActiveCells []int
	Score       int
	NextSeat    int
}

func (m *MoveCommittedEvent) Marshal() []byte {
	var b []byte
	b = appendInt(b, 1, m.Seat)
	b = appendInt(b, 2, m.Turn)
	for _, w := range m.Words {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, w)
	}
	b = appendSint(b, 4, m.Base)
	b = appendSint(b, 5, m.Cascade)
	for i := range m.Firings {
		b = appendMessage(b, 6, &m.Firings[i])
	}
	b = appendPacked(b, 7, m.ActiveCells, func(v int) uint64 { return uint64(int64(v)) })
	b = appendSint(b, 8, m.Score)
	b = appendInt(b, 9, m.NextSeat)
	return b
}

func (m *MoveCommittedEvent) Unmarshal(data []byte) error {
	*m = MoveCommittedEvent{}
	return walkFields(data, func(f field) error {
		switch {
		case f.is(1, protowire.VarintType):
			m.Seat = f.asInt()
		case f.is(2, protowire.VarintType):
			m.Turn = f.asInt()
		case f.is(3, protowire.BytesType):
			m.Words = append(m.Words, string(f.raw))
		case f.is(4, protowire.VarintType):
			m.Base = f.asSint()
		case f.is(5, protowire.VarintType):
			m.Cascade = f.asSint()
		case f.is(6, protowire.BytesType):
			var fr Firing
			if err := fr.Unmarshal(f.raw); err != nil {
				return err
			}
			m.Firings = append(m.Firings, fr)
		case f.num == 7:
			cells, err := f.repeated(m.ActiveCells, field.asInt)
			if err != nil {
				return err
			}
			m.ActiveCells = cells
		case f.is(8, protowire.VarintType):
			m.Score = f.asSint()
		case f.is(9, protowire.VarintType):
			m.NextSeat = f.asInt()
		}
		return nil
	})
}

type TurnPassedEvent struct {
	Seat     int
	Turn     int
	NextSeat int
}

func (m *TurnPassedEvent) Marshal() []byte {
	var b []byte
	b = appendInt(b, 1, m.Seat)
	b = appendInt(b, 2, m.Turn)
	b = appendInt(b, 3, m.NextSeat)
	return b
}

func (m *TurnPassedEvent) Unmarshal(data []byte) error {
	*m = TurnPassedEvent{}
	return walkFields(data, func(f field) error {
		switch {
		case f.is(1, protowire.VarintType):
			m.Seat = f.asInt()
		case f.is(2, protowire.VarintType):
			m.Turn = f.asInt()
		case f.is(3, protowire.VarintType):
			m.NextSeat = f.asInt()
		}
		return nil
	})
}

// GameEndedEvent carries the final scores by seat. WinnerSeat is -1 on a draw.
type GameEndedEvent struct {
	Reason     string
	Scores     []int
	WinnerSeat int
}

func (m *GameEndedEvent) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Reason)
	b = appendPacked(b, 2, m.Scores, func(v int) uint64 { return protowire.EncodeZigZag(int64(v)) })
	b = appendSint(b, 3, m.WinnerSeat)
	return b
}

func (m *GameEndedEvent) Unmarshal(data []byte) error {
	*m = GameEndedEvent{}
	return walkFields(data, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			m.Reason = string(f.raw)
		case f.num == 2:
			scores, err := f.repeated(m.Scores, field.asSint)
			if err != nil {
				return err
			}
			m.Scores = scores
		case f.is(3, protowire.VarintType):
			m.WinnerSeat = f.asSint()
		}
		return nil
	})
}

type GameResetEvent struct {
	Modes GameModes
}

func (m *GameResetEvent) Marshal() []byte {
	return appendMessage(nil, 1, &m.Modes)
}

func (m *GameResetEvent) Unmarshal(data []byte) error {
	*m = GameResetEvent{}
	return walkFields(data, func(f field) error {
		if f.is(1, protowire.BytesType) {
			return m.Modes.Unmarshal(f.raw)
		}
		return nil
	})
}

// GameErrorEvent is sent to the one player whose request was refused.
type GameErrorEvent struct {
	Code    int
	Message string
}

func (m *GameErrorEvent) Marshal() []byte {
	var b []byte
	b = appendInt(b, 1, m.Code)
	b = appendString(b, 2, m.Message)
	return b
}

func (m *GameErrorEvent) Unmarshal(data []byte) error {
	*m = GameErrorEvent{}
	return walkFields(data, func(f field) error {
		switch {
		case f.is(1, protowire.VarintType):
			m.Code = f.asInt()
		case f.is(2, protowire.BytesType):
			m.Message = string(f.raw)
		}
		return nil
	})
}

type PlayerState struct {
	UserID         string
	Seat           int
	IsOwner        bool
	IsBot          bool
	DisplayName    string
	Score          int
	TilesRemaining int
}

func (m *PlayerState) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.UserID)
	b = appendInt(b, 2, m.Seat)
	b = appendBool(b, 3, m.IsOwner)
	b = appendBool(b, 4, m.IsBot)
	b = appendString(b, 5, m.DisplayName)
	b = appendSint(b, 6, m.Score)
	b = appendInt(b, 7, m.TilesRemaining)
	return b
}

func (m *PlayerState) Unmarshal(data []byte) error {
	*m = PlayerState{}
	return walkFields(data, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			m.UserID = string(f.raw)
		case f.is(2, protowire.VarintType):
			m.Seat = f.asInt()
		case f.is(3, protowire.VarintType):
			m.IsOwner = protowire.DecodeBool(f.v)
		case f.is(4, protowire.VarintType):
			m.IsBot = protowire.DecodeBool(f.v)
		case f.is(5, protowire.BytesType):
			m.DisplayName = string(f.raw)
		case f.is(6, protowire.VarintType):
			m.Score = f.asSint()
		case f.is(7, protowire.VarintType):
			m.TilesRemaining = f.asInt()
		}
		return nil
	})
}

// MatchStateSnapshot is the public lobby and scoreboard view broadcast to all
// presences. Seats keeps empty entries so indexes stay seat numbers.
type MatchStateSnapshot struct {
	Seats       []string
	OwnerSeat   int
	Tick        int64
	Phase       string
	Modes       GameModes
	Turn        int
	CurrentSeat int
	BagSize     int
	Players     []PlayerState
}

func (m *MatchStateSnapshot) Marshal() []byte {
	var b []byte
	for _, s := range m.Seats {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}
	b = appendSint(b, 2, m.OwnerSeat)
	b = appendVarint(b, 3, uint64(m.Tick))
	b = appendString(b, 4, m.Phase)
	b = appendMessage(b, 5, &m.Modes)
	b = appendInt(b, 6, m.Turn)
	b = appendSint(b, 7, m.CurrentSeat)
	b = appendInt(b, 8, m.BagSize)
	for i := range m.Players {
		b = appendMessage(b, 9, &m.Players[i])
	}
	return b
}

func (m *MatchStateSnapshot) Unmarshal(data []byte) error {
	*m = MatchStateSnapshot{}
	return walkFields(data, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			m.Seats = append(m.Seats, string(f.raw))
		case f.is(2, protowire.VarintType):
			m.OwnerSeat = f.asSint()
		case f.is(3, protowire.VarintType):
			m.Tick = int64(f.v)
		case f.is(4, protowire.BytesType):
			m.Phase = string(f.raw)
		case f.is(5, protowire.BytesType):
			return m.Modes.Unmarshal(f.raw)
		case f.is(6, protowire.VarintType):
			m.Turn = f.asInt()
		case f.is(7, protowire.VarintType):
			m.CurrentSeat = f.asSint()
		case f.is(8, protowire.VarintType):
			m.BagSize = f.asInt()
		case f.is(9, protowire.BytesType):
			var p PlayerState
			if err := p.Unmarshal(f.raw); err != nil {
				return err
			}
			m.Players = append(m.Players, p)
		}
		return nil
	})
}

// field is one decoded varint or length-delimited field.
type field struct {
	num protowire.Number
	typ protowire.Type
	v   uint64
	raw []byte
}

func (f field) is(num protowire.Number, typ protowire.Type) bool {
	return f.num == num && f.typ == typ
}

// asInt reads an int32 field.
func (f field) asInt() int { return int(int32(f.v)) }

// asSint reads a sint32 field.
func (f field) asSint() int { return int(int32(protowire.DecodeZigZag(f.v & 0xFFFFFFFF))) }

// repeated appends a repeated scalar field to dst, accepting both the packed
// and the unpacked encoding.
func (f field) repeated(dst []int, read func(field) int) ([]int, error) {
	switch f.typ {
	case protowire.VarintType:
		return append(dst, read(f)), nil
	case protowire.BytesType:
		data := f.raw
		for len(data) > 0 {
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: packed field %d: %v", ErrMalformed, f.num, protowire.ParseError(n))
			}
			dst = append(dst, read(field{num: f.num, typ: protowire.VarintType, v: v}))
			data = data[n:]
		}
		return dst, nil
	}
	return dst, nil
}

// walkFields calls fn for every varint and length-delimited field in data and
// skips fields of any other wire type.
func walkFields(data []byte, fn func(field) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(data)
		case protowire.BytesType:
			f.raw, n = protowire.ConsumeBytes(data)
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		data = data[n:]

		if typ != protowire.VarintType && typ != protowire.BytesType {
			continue
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func appendInt(b []byte, num protowire.Number, v int) []byte {
	return appendVarint(b, num, uint64(int64(v)))
}

func appendSint(b []byte, num protowire.Number, v int) []byte {
	return appendVarint(b, num, protowire.EncodeZigZag(int64(v)))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendVarint(b, num, protowire.EncodeBool(v))
}

// appendMessage always writes the field, so an empty nested message still
// decodes as present.
func appendMessage(b []byte, num protowire.Number, m Message) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.Marshal())
}

func appendPacked(b []byte, num protowire.Number, vs []int, enc func(int) uint64) []byte {
	if len(vs) == 0 {
		return b
	}
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, enc(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}
