package internal

import (
	"math/rand"
	"testing"

	"wordcircuit/internal/domain"
)

var testTuning = SearchTuning{
	MaxAnchors:       12,
	FirstTurnAnchors: 1,
	FreeSampleSize:   100,
	FreeMaxLen:       8,
	MinWordLen:       2,
	MaxWordLen:       9,
	GoFewAnchors:     4,
	GoExtraAnchors:   3,
}

func lockWord(b *domain.Board, row, col int, horizontal bool, word string) {
	for i, r := range word {
		rr, cc := row, col+i
		if !horizontal {
			rr, cc = row+i, col
		}
		c := b.At(rr, cc)
		c.Letter = r
		c.Locked = true
		c.TurnPlaced = 1
	}
}

func TestAnchorsEmptyBoard(t *testing.T) {
	got := Anchors(domain.NewBoard(), domain.Modes{}, rand.New(rand.NewSource(1)), testTuning)
	if len(got) != 1 || got[0] != (Anchor{Row: domain.Center, Col: domain.Center}) {
		t.Fatalf("anchors = %+v, want the free center anchor", got)
	}
}

func TestAnchorsLockedLetters(t *testing.T) {
	tests := []struct {
		name      string
		placement domain.PlacementMode
		want      int
		wantFree  int
	}{
		{name: "acrostic", placement: domain.PlacementAcrostic, want: 2, wantFree: 0},
		{name: "go injects free anchors", placement: domain.PlacementGo, want: 5, wantFree: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := domain.NewBoard()
			lockWord(b, 5, 5, true, "AT")
			got := Anchors(b, domain.Modes{Placement: tt.placement}, rand.New(rand.NewSource(2)), testTuning)
			if len(got) != tt.want {
				t.Fatalf("anchors = %d, want %d", len(got), tt.want)
			}
			free := 0
			for _, a := range got {
				if a.Free() {
					free++
					if b.At(a.Row, a.Col).HasLetter() {
						t.Fatalf("free anchor on a lettered cell %+v", a)
					}
				} else if b.At(a.Row, a.Col).Letter != a.Letter {
					t.Fatalf("anchor letter mismatch %+v", a)
				}
			}
			if free != tt.wantFree {
				t.Fatalf("free anchors = %d, want %d", free, tt.wantFree)
			}
		})
	}
}

func TestAnchorsCapped(t *testing.T) {
	b := domain.NewBoard()
	lockWord(b, 1, 0, true, "ABCDEFGHIJK")
	lockWord(b, 3, 0, true, "ABCDEFGHIJK")
	got := Anchors(b, domain.Modes{}, rand.New(rand.NewSource(3)), testTuning)
	if len(got) != testTuning.MaxAnchors {
		t.Fatalf("anchors = %d, want %d", len(got), testTuning.MaxAnchors)
	}
}

func TestCanMakeWord(t *testing.T) {
	tests := []struct {
		word  string
		hand  string
		fixed rune
		want  bool
	}{
		{word: "CAT", hand: "CATXYZQ", want: true},
		{word: "CAT", hand: "CXYZQ", want: false},
		{word: "CAT", hand: "C?T", want: true},
		{word: "CAT", hand: "CT", fixed: 'A', want: true},
		{word: "TOTE", hand: "OE?", fixed: 'T', want: true},
		{word: "TOTE", hand: "OE", fixed: 'T', want: false},
		{word: "TOTE", hand: "OE??", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.word+"/"+tt.hand, func(t *testing.T) {
			if got := CanMakeWord(tt.word, []rune(tt.hand), tt.fixed); got != tt.want {
				t.Fatalf("CanMakeWord = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPivots(t *testing.T) {
	if got := Pivots("TOTE", Anchor{Row: 5, Col: 5, Letter: 'T'}); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("fixed pivots = %v, want [0 2]", got)
	}
	if got := Pivots("CATS", Anchor{Row: 5, Col: 5}); len(got) != 1 || got[0] != 2 {
		t.Fatalf("free pivots = %v, want [2]", got)
	}
}

func TestCandidatesOrder(t *testing.T) {
	dict := domain.NewWordList([]string{"AT", "CAT", "CATS", "ABSTRACTION", "DOG"})
	got := Candidates(Anchor{Letter: 'A'}, nil, dict, rand.New(rand.NewSource(4)), testTuning)
	want := []string{"CATS", "CAT", "AT"}
	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidates = %v, want %v", got, want)
		}
	}
	if len(dict.WordsWith('A')) != 4 {
		t.Fatalf("candidate filtering modified the dictionary index")
	}
}

func TestCandidatesFreeAnchor(t *testing.T) {
	dict := domain.NewWordList([]string{"AT", "CAT", "DOG", "CATAMARAN"})
	got := Candidates(Anchor{}, []rune("T?"), dict, rand.New(rand.NewSource(5)), testTuning)
	if len(got) != 2 || got[0] != "CAT" || got[1] != "AT" {
		t.Fatalf("free candidates = %v, want [CAT AT]", got)
	}
}

func TestEvaluatePlacement(t *testing.T) {
	dict := domain.NewWordList([]string{"CAT", "AT"})
	tests := []struct {
		name       string
		setup      func(b *domain.Board)
		hand       string
		word       string
		anchor     Anchor
		pivot      int
		horizontal bool
		modes      domain.Modes
		wantOK     bool
		wantScore  int
		wantTiles  int
	}{
		{name: "first word", hand: "CATXYZQ", word: "CAT", anchor: Anchor{Row: 5, Col: 5}, pivot: 1, horizontal: true, wantOK: true, wantScore: 5, wantTiles: 3},
		{name: "vertical", hand: "CATXYZQ", word: "CAT", anchor: Anchor{Row: 5, Col: 5}, pivot: 1, wantOK: true, wantScore: 5, wantTiles: 3},
		{name: "blank substitutes", hand: "C?T", word: "CAT", anchor: Anchor{Row: 5, Col: 5}, pivot: 1, horizontal: true, wantOK: true, wantScore: 4, wantTiles: 3},
		{name: "off board", hand: "CATXYZQ", word: "CAT", anchor: Anchor{Row: 5, Col: 0}, pivot: 1, horizontal: true},
		{name: "missing tile", hand: "CAX", word: "CAT", anchor: Anchor{Row: 5, Col: 5}, pivot: 1, horizontal: true},
		{
			name:  "existing letter mismatch",
			setup: func(b *domain.Board) { lockWord(b, 5, 5, true, "AT") },
			hand:  "COT", word: "COT", anchor: Anchor{Row: 5, Col: 5, Letter: 'A'}, pivot: 1, horizontal: true,
		},
		{
			name:  "no new tiles",
			setup: func(b *domain.Board) { lockWord(b, 5, 5, true, "AT") },
			hand:  "XYZ", word: "AT", anchor: Anchor{Row: 5, Col: 5, Letter: 'A'}, pivot: 0, horizontal: true,
		},
		{
			name:  "dynamic extends committed word",
			setup: func(b *domain.Board) { lockWord(b, 5, 5, true, "AT") },
			hand:  "CXYZ", word: "CAT", anchor: Anchor{Row: 5, Col: 5, Letter: 'A'}, pivot: 1, horizontal: true,
			wantOK: true, wantScore: 5, wantTiles: 1,
		},
		{
			name:  "fixed refuses extension",
			setup: func(b *domain.Board) { lockWord(b, 5, 5, true, "AT") },
			hand:  "CXYZ", word: "CAT", anchor: Anchor{Row: 5, Col: 5, Letter: 'A'}, pivot: 1, horizontal: true,
			modes: domain.Modes{Game: domain.GameFixed},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := domain.NewBoard()
			if tt.setup != nil {
				tt.setup(b)
			}
			before := b.Clone()
			cand, ok := EvaluatePlacement(b, []rune(tt.hand), tt.word, tt.anchor, tt.pivot, tt.horizontal, tt.modes, dict, 2)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			for i := range b.Cells {
				if b.Cells[i] != before.Cells[i] {
					t.Fatalf("board mutated at cell %d", i)
				}
			}
			if !ok {
				return
			}
			if cand.Score() != tt.wantScore || len(cand.Tiles) != tt.wantTiles {
				t.Fatalf("candidate = %+v, want score %d with %d tiles", cand, tt.wantScore, tt.wantTiles)
			}
		})
	}
}
