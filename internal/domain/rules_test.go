package domain

import "testing"

func TestCheckPlacement(t *testing.T) {
	dict := NewWordList([]string{"CAT", "AT", "DOG"})
	dynamicAcrostic := Modes{Game: GameDynamic, Placement: PlacementAcrostic}
	fixedAcrostic := Modes{Game: GameFixed, Placement: PlacementAcrostic}
	dynamicGo := Modes{Game: GameDynamic, Placement: PlacementGo}

	tests := []struct {
		name  string
		setup func(b *Board)
		modes Modes
		dict  Dictionary
		want  Rule
	}{
		{
			name:  "first word",
			setup: func(b *Board) { placeWord(b, 5, 4, true, "CAT", false, 0) },
			modes: dynamicAcrostic,
			dict:  dict,
			want:  RuleNone,
		},
		{
			name:  "nil dictionary fails closed",
			setup: func(b *Board) { placeWord(b, 5, 4, true, "CAT", false, 0) },
			modes: dynamicAcrostic,
			dict:  nil,
			want:  RuleNoDictionary,
		},
		{
			name:  "isolated tile",
			setup: func(b *Board) { placeWord(b, 5, 5, true, "C", false, 0) },
			modes: dynamicAcrostic,
			dict:  dict,
			want:  RuleIsolation,
		},
		{
			name:  "unknown word",
			setup: func(b *Board) { placeWord(b, 5, 4, true, "CAX", false, 0) },
			modes: dynamicAcrostic,
			dict:  dict,
			want:  RuleDictionary,
		},
		{
			name:  "unresolved blank",
			setup: func(b *Board) { placeWord(b, 5, 4, true, "C?T", false, 0) },
			modes: dynamicAcrostic,
			dict:  dict,
			want:  RuleUnresolvedBlank,
		},
		{
			name: "acrostic disconnected move",
			setup: func(b *Board) {
				placeWord(b, 5, 5, true, "AT", true, 1)
				placeWord(b, 8, 5, true, "AT", false, 0)
			},
			modes: dynamicAcrostic,
			dict:  dict,
			want:  RuleConnectivity,
		},
		{
			name: "go allows disconnected move",
			setup: func(b *Board) {
				placeWord(b, 5, 5, true, "AT", true, 1)
				placeWord(b, 8, 5, true, "AT", false, 0)
			},
			modes: dynamicGo,
			dict:  dict,
			want:  RuleNone,
		},
		{
			name: "fixed rejects extending a committed word",
			setup: func(b *Board) {
				placeWord(b, 5, 5, true, "AT", true, 1)
				placeWord(b, 5, 4, true, "C", false, 0)
			},
			modes: fixedAcrostic,
			dict:  dict,
			want:  RuleLockedRun,
		},
		{
			name: "dynamic allows extending a committed word",
			setup: func(b *Board) {
				placeWord(b, 5, 5, true, "AT", true, 1)
				placeWord(b, 5, 4, true, "C", false, 0)
			},
			modes: dynamicAcrostic,
			dict:  dict,
			want:  RuleNone,
		},
		{
			name: "fixed allows hooking a single committed letter",
			setup: func(b *Board) {
				placeWord(b, 4, 5, false, "AT", true, 1)
				placeWord(b, 4, 4, true, "C", false, 0)
				placeWord(b, 4, 6, true, "T", false, 0)
			},
			modes: fixedAcrostic,
			dict:  dict,
			want:  RuleNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard()
			tt.setup(b)
			got := CheckPlacement(b, tt.modes, tt.dict)
			if got.Rule != tt.want {
				t.Fatalf("CheckPlacement rule = %s (word %q), want %s", got.Rule, got.Word, tt.want)
			}
			if ok := ValidatePlacementRules(b, tt.modes, tt.dict); ok != (tt.want == RuleNone) {
				t.Fatalf("ValidatePlacementRules = %v, want %v", ok, tt.want == RuleNone)
			}
		})
	}
}

func TestCheckPlacementReportsWord(t *testing.T) {
	b := NewBoard()
	placeWord(b, 5, 4, true, "CAX", false, 0)
	v := CheckPlacement(b, Modes{}, NewWordList([]string{"CAT"}))
	if v.Word != "CAX" || v.Cell != Index(5, 4) {
		t.Fatalf("verdict = %+v, want word CAX at cell %d", v, Index(5, 4))
	}
}

func TestResolveBlanks(t *testing.T) {
	tests := []struct {
		name      string
		word      string
		dict      []string
		wantOK    bool
		wantWord  string
		wantBlank []bool
	}{
		{name: "single blank", word: "C?T", dict: []string{"CAT"}, wantOK: true, wantWord: "CAT", wantBlank: []bool{false, true, false}},
		{name: "first letter wins", word: "?AT", dict: []string{"CAT", "BAT"}, wantOK: true, wantWord: "BAT", wantBlank: []bool{true, false, false}},
		{name: "two blanks", word: "??T", dict: []string{"CAT"}, wantOK: true, wantWord: "CAT", wantBlank: []bool{true, true, false}},
		{name: "no resolution", word: "?AT", dict: []string{"DOG"}, wantOK: false, wantWord: "?AT", wantBlank: []bool{false, false, false}},
		{name: "no resolution for two blanks", word: "??X", dict: []string{"DOG"}, wantOK: false, wantWord: "??X", wantBlank: []bool{false, false, false}},
		{name: "no blanks validates", word: "CAT", dict: []string{"CAT"}, wantOK: true, wantWord: "CAT", wantBlank: []bool{false, false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard()
			ids := placeWord(b, 5, 4, true, tt.word, false, 0)
			ok := ResolveBlanks(b, Modes{}, NewWordList(tt.dict))
			if ok != tt.wantOK {
				t.Fatalf("ResolveBlanks = %v, want %v", ok, tt.wantOK)
			}
			if got := b.Word(Run{Horizontal: true, Cells: ids}); got != tt.wantWord {
				t.Fatalf("board word = %s, want %s", got, tt.wantWord)
			}
			for i, want := range tt.wantBlank {
				if b.Cells[ids[i]].Blank != want {
					t.Fatalf("cell %d blank = %v, want %v", i, b.Cells[ids[i]].Blank, want)
				}
			}
		})
	}
}

func TestResolveBlanksNilDictionary(t *testing.T) {
	b := NewBoard()
	placeWord(b, 5, 4, true, "C?T", false, 0)
	if ResolveBlanks(b, Modes{}, nil) {
		t.Fatalf("expected failure without a dictionary")
	}
}
