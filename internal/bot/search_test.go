package bot

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"wordcircuit/internal/domain"
)

func testGame(hand string) *domain.Game {
	g := &domain.Game{
		Phase: domain.PhasePlaying,
		Board: domain.NewBoard(),
		Turn:  1,
	}
	g.Players[domain.SideB].Hand = []rune(hand)
	return g
}

func testDict() *domain.WordList {
	return domain.NewWordList([]string{"CAT", "CATS", "SCAT", "ACT", "AT", "TA", "AS", "TO", "OAT", "OATS", "COAT", "COATS", "TACO", "TACOS"})
}

func runSearch(t *testing.T, game *domain.Game, seed int64, budget int) Move {
	t.Helper()
	brain, err := NewBrain(BotLevelStandard, testDict(), rand.New(rand.NewSource(seed)), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBrain: %v", err)
	}
	task := brain.Begin(game, domain.SideB)
	for steps := 0; !task.Step(budget); steps++ {
		if steps > 1_000_000 {
			t.Fatalf("search did not finish")
		}
	}
	return task.Result()
}

func TestSearchFirstTurn(t *testing.T) {
	move := runSearch(t, testGame("CATSXQZ"), 1, 1000)
	if move.Pass {
		t.Fatalf("expected a move")
	}
	if move.Word != "CATS" && move.Word != "SCAT" {
		t.Fatalf("word = %s, want a four letter word", move.Word)
	}
	if move.Score != 6 || len(move.Placements) != 4 {
		t.Fatalf("move = %+v, want score 6 with 4 tiles", move)
	}
	center := false
	for _, p := range move.Placements {
		if p.Row == domain.Center && p.Col == domain.Center {
			center = true
		}
	}
	if !center {
		t.Fatalf("first move does not cross the center: %+v", move.Placements)
	}
}

func TestSearchPassesWithoutMoves(t *testing.T) {
	if move := runSearch(t, testGame("QQQQXXZ"), 1, 1000); !move.Pass {
		t.Fatalf("expected pass, got %+v", move)
	}
}

func TestSearchIndependentOfSlicing(t *testing.T) {
	game := testGame("OSTACEQ")
	for col, r := range "CAT" {
		c := game.Board.At(domain.Center, domain.Center-1+col)
		c.Letter = r
		c.Locked = true
		c.TurnPlaced = 1
	}
	game.Turn = 2

	whole := runSearch(t, game, 7, 1<<30)
	for _, budget := range []int{1, 3, 17} {
		sliced := runSearch(t, game, 7, budget)
		if !reflect.DeepEqual(whole, sliced) {
			t.Fatalf("budget %d gave %+v, want %+v", budget, sliced, whole)
		}
	}
	if whole.Pass {
		t.Fatalf("expected a move on a seeded board")
	}
}

func TestSearchLeavesGameUntouched(t *testing.T) {
	game := testGame("CATSXQZ")
	before := game.Board.Clone()
	runSearch(t, game, 3, 5)
	for i := range game.Board.Cells {
		if game.Board.Cells[i] != before.Cells[i] {
			t.Fatalf("search mutated cell %d", i)
		}
	}
	if string(game.Players[domain.SideB].Hand) != "CATSXQZ" {
		t.Fatalf("search mutated hand")
	}
}

func TestAgentPlay(t *testing.T) {
	brain, err := NewBrain(BotLevelQuick, testDict(), rand.New(rand.NewSource(1)), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBrain: %v", err)
	}
	agent := NewAgent("bot-1", domain.SideB, brain)

	move, err := agent.Play(context.Background(), testGame("CATSXQZ"))
	if err != nil || move.Pass {
		t.Fatalf("Play = %+v, %v", move, err)
	}
	if agent.Thinking() {
		t.Fatalf("agent still thinking after Play")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := agent.Play(ctx, testGame("CATSXQZ")); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestNewBrainLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		want    BotLevel
		wantErr bool
	}{
		{name: "default", level: "", want: BotLevelStandard},
		{name: "quick", level: "quick", want: BotLevelQuick},
		{name: "easy alias", level: "Easy", want: BotLevelQuick},
		{name: "unknown", level: "god", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBotLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("level = %d, want %d", got, tt.want)
			}
		})
	}
	if _, err := NewBrain(BotLevel(9), nil, nil, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewBrainOptions(t *testing.T) {
	brain, err := NewBrain(BotLevelQuick, testDict(), rand.New(rand.NewSource(1)), zerolog.Nop(), WithMaxAnchors(9), WithSampleSize(0))
	if err != nil {
		t.Fatalf("NewBrain: %v", err)
	}
	s := brain.(*Searcher)
	if s.tuning.MaxAnchors != 9 {
		t.Fatalf("MaxAnchors = %d, want 9", s.tuning.MaxAnchors)
	}
	if s.tuning.FreeSampleSize != QuickTuning.FreeSampleSize {
		t.Fatalf("FreeSampleSize = %d, want level default %d", s.tuning.FreeSampleSize, QuickTuning.FreeSampleSize)
	}
}
