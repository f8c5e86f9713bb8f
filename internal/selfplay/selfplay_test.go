package selfplay

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"wordcircuit/internal/app"
	"wordcircuit/internal/bot"
	"wordcircuit/internal/domain"
)

func loadWords(t *testing.T) *domain.WordList {
	t.Helper()
	f, err := os.Open("../../data/words.txt")
	if err != nil {
		t.Fatalf("open word list: %v", err)
	}
	defer f.Close()
	w, err := domain.LoadWordList(f)
	if err != nil {
		t.Fatalf("LoadWordList: %v", err)
	}
	return w
}

func runGame(t *testing.T, dict domain.Dictionary, cfg Config) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	res, err := NewRunner(dict, cfg, zerolog.Nop()).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func TestRunAlternatesTurns(t *testing.T) {
	dict := loadWords(t)
	modes := []domain.Modes{
		{Game: domain.GameDynamic, Placement: domain.PlacementAcrostic},
		{Game: domain.GameFixed, Placement: domain.PlacementGo},
	}
	for _, m := range modes {
		t.Run(m.Game.String()+"/"+m.Placement.String(), func(t *testing.T) {
			res := runGame(t, dict, Config{Modes: m, Level: bot.BotLevelQuick, Seed: 7, MaxTurns: 8})
			if len(res.Turns) == 0 {
				t.Fatal("no turns were played")
			}
			for i, rec := range res.Turns {
				if rec.Turn != i+1 {
					t.Fatalf("record %d has turn %d", i, rec.Turn)
				}
				want := domain.SideA
				if rec.Turn%2 == 0 {
					want = domain.SideB
				}
				if rec.Side != want {
					t.Fatalf("turn %d played by %s, want %s", rec.Turn, rec.Side, want)
				}
				if rec.Pass && (rec.Points != 0 || len(rec.Words) != 0) {
					t.Fatalf("pass on turn %d carries a score: %+v", rec.Turn, rec)
				}
			}
			last := res.Turns[len(res.Turns)-1]
			if last.Totals != res.Scores {
				t.Fatalf("final totals %v differ from scores %v", last.Totals, res.Scores)
			}
			switch res.Reason {
			case EndReasonTurnLimit:
				if len(res.Turns) != 8 {
					t.Fatalf("turn limit reached after %d turns", len(res.Turns))
				}
			case app.EndReasonPasses, app.EndReasonTilesOut:
			default:
				t.Fatalf("unexpected reason %q", res.Reason)
			}
		})
	}
}

func TestRunIsDeterministic(t *testing.T) {
	dict := loadWords(t)
	cfg := Config{Level: bot.BotLevelQuick, Seed: 42, MaxTurns: 6}
	first := runGame(t, dict, cfg)
	second := runGame(t, dict, cfg)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed produced different games:\n%+v\n%+v", first, second)
	}
}

func TestRunWithoutDictionaryPassesOut(t *testing.T) {
	res := runGame(t, nil, Config{Level: bot.BotLevelQuick, Seed: 1})
	if res.Reason != app.EndReasonPasses {
		t.Fatalf("reason = %q, want %q", res.Reason, app.EndReasonPasses)
	}
	if len(res.Turns) != domain.MaxConsecutivePasses || res.Scores != [app.Seats]int{} {
		t.Fatalf("result = %+v", res)
	}
}

func TestRunReportsEveryTurn(t *testing.T) {
	var seen []int
	r := NewRunner(nil, Config{Level: bot.BotLevelQuick, Seed: 3}, zerolog.Nop())
	r.Report = func(rec TurnRecord) { seen = append(seen, rec.Turn) }
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != len(res.Turns) {
		t.Fatalf("reported %d turns, result has %d", len(seen), len(res.Turns))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(loadWords(t), Config{Seed: 1}, zerolog.Nop()).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunRejectsUnknownLevel(t *testing.T) {
	_, err := NewRunner(nil, Config{Level: bot.BotLevel(9)}, zerolog.Nop()).Run(context.Background())
	if err == nil {
		t.Fatal("expected an error for an unknown bot level")
	}
}

func TestPipeClose(t *testing.T) {
	a, b := NewPipe()
	ctx := context.Background()
	if err := a.Send(ctx, []byte("hi")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got, err := b.Receive(ctx)
	if err != nil || string(got) != "hi" {
		t.Fatalf("Receive = %q, %v", got, err)
	}
	_ = b.Close()
	if _, err := a.Receive(ctx); !errors.Is(err, ErrPipeClosed) {
		t.Fatalf("Receive after close err = %v", err)
	}
}
