package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"wordcircuit/internal/domain"
)

// Service contains the turn-gated use-cases operating on domain state.
type Service struct {
	rng  *rand.Rand
	dict domain.Dictionary
	log  zerolog.Logger
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand, dict domain.Dictionary, logger zerolog.Logger) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, dict: dict, log: logger}
}

var (
	ErrNotPlaying       = errors.New("match not in playing phase")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrOutOfBounds      = errors.New("cell out of bounds")
	ErrCellOccupied     = errors.New("cell already occupied")
	ErrTileNotInHand    = errors.New("tile not in hand")
	ErrEmptyMove        = errors.New("no tiles placed")
	ErrInvalidPlacement = errors.New("invalid placement")
	ErrNoResolution     = errors.New("blanks cannot be resolved")
)

// Dictionary returns the word list the service validates against.
func (s *Service) Dictionary() domain.Dictionary {
	return s.dict
}

// NewGame deals a fresh match. Side A moves first on turn 1.
func (s *Service) NewGame(modes domain.Modes) (*domain.Game, []Event) {
	game := &domain.Game{
		Phase:   domain.PhasePlaying,
		Board:   domain.NewBoard(),
		Bag:     domain.GenerateBag(s.rng),
		Turn:    1,
		Current: domain.SideA,
		Modes:   modes,
	}

	events := make([]Event, 0, Seats+1)
	for _, side := range []domain.Side{domain.SideA, domain.SideB} {
		pl := game.Player(side)
		pl.Hand, game.Bag = domain.DrawTiles(nil, game.Bag)
		events = append(events, handDealt(side, pl.Hand))
	}
	events = append(events, Event{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			Modes:     modes,
			FirstSide: game.Current,
			BagSize:   len(game.Bag),
		},
	})

	s.log.Info().
		Str("game_mode", modes.Game.String()).
		Str("placement_mode", modes.Placement.String()).
		Int("bag", len(game.Bag)).
		Msg("game started")
	return game, events
}

// SetModes resets the match when the modes change. It is a no-op otherwise.
func (s *Service) SetModes(game *domain.Game, modes domain.Modes) []Event {
	if game.Modes == modes && game.Phase == domain.PhasePlaying {
		return nil
	}
	fresh, events := s.NewGame(modes)
	*game = *fresh
	return append([]Event{{Kind: EventGameReset, Payload: GameResetPayload{Modes: modes}}}, events...)
}

// PlaceTile moves a tile from the actor's hand onto an empty cell as part of
// the in-progress move. Blank placements consume a wildcard; their letter may
// be left as domain.Wildcard for the resolver.
func (s *Service) PlaceTile(game *domain.Game, actor domain.Side, p domain.Placement) error {
	if err := s.checkTurn(game, actor); err != nil {
		return err
	}
	cell := game.Board.At(p.Row, p.Col)
	if cell == nil {
		return ErrOutOfBounds
	}
	if cell.HasLetter() {
		return ErrCellOccupied
	}

	tile := p.Letter
	if p.Blank || p.Letter == domain.Wildcard {
		tile = domain.Wildcard
	}
	if tile != domain.Wildcard && (tile < 'A' || tile > 'Z') {
		return fmt.Errorf("%w: %q", ErrTileNotInHand, tile)
	}
	pl := game.Player(actor)
	hand, ok := domain.RemoveLetters(pl.Hand, []rune{tile})
	if !ok {
		return fmt.Errorf("%w: %q", ErrTileNotInHand, tile)
	}
	pl.Hand = hand

	cell.Letter = p.Letter
	cell.Blank = tile == domain.Wildcard
	if cell.Blank && (p.Letter < 'A' || p.Letter > 'Z') {
		cell.Letter = domain.Wildcard
	}
	return nil
}

// RecallTiles returns every uncommitted tile on the board to the actor's hand.
func (s *Service) RecallTiles(game *domain.Game, actor domain.Side) error {
	if err := s.checkTurn(game, actor); err != nil {
		return err
	}
	pl := game.Player(actor)
	pl.Hand = append(pl.Hand, liftPending(game.Board)...)
	return nil
}

// CommitMove validates, scores and commits the in-progress move. A failed
// commit leaves the game untouched.
func (s *Service) CommitMove(game *domain.Game, actor domain.Side) ([]Event, error) {
	if err := s.checkTurn(game, actor); err != nil {
		return nil, err
	}
	pending := game.PendingCells()
	if len(pending) == 0 {
		return nil, ErrEmptyMove
	}

	work := game.Board.Clone()
	if len(domain.UnresolvedBlanks(work)) > 0 {
		if !domain.ResolveBlanks(work, game.Modes, s.dict) {
			return nil, ErrNoResolution
		}
	} else if v := domain.CheckPlacement(work, game.Modes, s.dict); !v.OK() {
		s.log.Debug().Str("rule", v.Rule.String()).Str("word", v.Word).Int("turn", game.Turn).Msg("move rejected")
		return nil, fmt.Errorf("%w: %s %s", ErrInvalidPlacement, v.Rule, v.Word)
	}

	for _, id := range pending {
		work.Cells[id].Locked = true
		work.Cells[id].TurnPlaced = game.Turn
	}
	score := domain.EvaluateTurn(work, pending, game.Modes, s.dict, game.Turn)

	pl := game.Player(actor)
	game.Board = work
	pl.Score += score.Total()
	pl.Hand, game.Bag = domain.DrawTiles(pl.Hand, game.Bag)
	game.Passes = 0
	turn := game.Turn
	game.Turn++
	game.Current = actor.Other()

	s.log.Info().
		Int("turn", turn).
		Str("side", actor.String()).
		Strs("words", score.Words).
		Int("base", score.Base).
		Int("cascade", score.Cascade.Points).
		Msg("move committed")

	events := []Event{
		{
			Kind: EventMoveCommitted,
			Payload: MoveCommittedPayload{
				Side:     actor,
				Turn:     turn,
				Words:    score.Words,
				Base:     score.Base,
				Cascade:  score.Cascade.Points,
				Firings:  score.Cascade.Fired,
				Active:   score.Cascade.Active,
				Score:    pl.Score,
				NextSide: game.Current,
			},
		},
		handDealt(actor, pl.Hand),
	}
	if len(game.Bag) == 0 && len(pl.Hand) == 0 {
		events = append(events, s.endGame(game, EndReasonTilesOut))
	}
	return events, nil
}

// ApplyPlacements places and commits a whole move at once. On any failure the
// board and hand are restored to their state before the call.
func (s *Service) ApplyPlacements(game *domain.Game, actor domain.Side, placements []domain.Placement) ([]Event, error) {
	if err := s.checkTurn(game, actor); err != nil {
		return nil, err
	}
	if len(placements) == 0 {
		return nil, ErrEmptyMove
	}
	pl := game.Player(actor)
	savedBoard := game.Board.Clone()
	savedHand := append([]rune(nil), pl.Hand...)
	restore := func() {
		game.Board = savedBoard
		pl.Hand = savedHand
	}

	for _, p := range placements {
		if err := s.PlaceTile(game, actor, p); err != nil {
			restore()
			return nil, err
		}
	}
	events, err := s.CommitMove(game, actor)
	if err != nil {
		restore()
		return nil, err
	}
	return events, nil
}

// PassTurn returns the actor's whole hand, including any uncommitted tiles on
// the board, to the bag, reshuffles and redraws.
func (s *Service) PassTurn(game *domain.Game, actor domain.Side) ([]Event, error) {
	if err := s.checkTurn(game, actor); err != nil {
		return nil, err
	}
	pl := game.Player(actor)
	returned := append(pl.Hand, liftPending(game.Board)...)
	game.Bag = domain.ReturnTiles(game.Bag, returned, s.rng)
	pl.Hand, game.Bag = domain.DrawTiles(nil, game.Bag)

	game.Passes++
	turn := game.Turn
	game.Turn++
	game.Current = actor.Other()

	s.log.Info().Int("turn", turn).Str("side", actor.String()).Int("passes", game.Passes).Msg("turn passed")

	events := []Event{
		{
			Kind: EventTurnPassed,
			Payload: TurnPassedPayload{
				Side:     actor,
				Turn:     turn,
				NextSide: game.Current,
			},
		},
		handDealt(actor, pl.Hand),
	}
	if game.Passes >= domain.MaxConsecutivePasses {
		events = append(events, s.endGame(game, EndReasonPasses))
	}
	return events, nil
}

func (s *Service) checkTurn(game *domain.Game, actor domain.Side) error {
	if game.Phase != domain.PhasePlaying {
		return ErrNotPlaying
	}
	if game.Current != actor {
		return ErrNotYourTurn
	}
	return nil
}

func (s *Service) endGame(game *domain.Game, reason string) Event {
	game.Phase = domain.PhaseEnded
	payload := GameEndedPayload{
		Reason: reason,
		Scores: [2]int{game.Players[domain.SideA].Score, game.Players[domain.SideB].Score},
	}
	switch {
	case payload.Scores[domain.SideA] > payload.Scores[domain.SideB]:
		payload.Winner = domain.SideA
	case payload.Scores[domain.SideB] > payload.Scores[domain.SideA]:
		payload.Winner = domain.SideB
	default:
		payload.Draw = true
	}
	s.log.Info().Str("reason", reason).Ints("scores", payload.Scores[:]).Msg("game ended")
	return Event{Kind: EventGameEnded, Payload: payload}
}

// liftPending clears uncommitted tiles from the board and returns them as hand
// tiles; blanks go back as wildcards.
func liftPending(b *domain.Board) []rune {
	var tiles []rune
	for i := range b.Cells {
		c := &b.Cells[i]
		if !c.HasLetter() || c.Locked {
			continue
		}
		if c.Blank {
			tiles = append(tiles, domain.Wildcard)
		} else {
			tiles = append(tiles, c.Letter)
		}
		c.Letter = 0
		c.Blank = false
	}
	return tiles
}

func handDealt(side domain.Side, hand []rune) Event {
	return Event{
		Kind:       EventHandDealt,
		Payload:    HandDealtPayload{Side: side, Hand: append([]rune(nil), hand...)},
		Recipients: []domain.Side{side},
	}
}
