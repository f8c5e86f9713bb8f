package domain

import "testing"

func TestOperatorLayout(t *testing.T) {
	tests := []struct {
		name     string
		row, col int
		want     OperatorKind
	}{
		{name: "top left corner", row: 0, col: 0, want: OpMult},
		{name: "bottom right corner", row: 10, col: 10, want: OpMult},
		{name: "center", row: 5, col: 5, want: OpStart},
		{name: "override 2,8", row: 2, col: 8, want: OpOver},
		{name: "override 4,4", row: 4, col: 4, want: OpIf},
		{name: "override 5,0", row: 5, col: 0, want: OpOver},
		{name: "override 6,6", row: 6, col: 6, want: OpOr},
		{name: "override 5,10", row: 5, col: 10, want: OpIf},
		{name: "override 8,2", row: 8, col: 2, want: OpOr},
		{name: "inner ring corner", row: 2, col: 2, want: OpIf},
		{name: "inner ring corner 8,8", row: 8, col: 8, want: OpIf},
		{name: "inner ring top", row: 2, col: 5, want: OpThen},
		{name: "inner ring left", row: 5, col: 2, want: OpThen},
		{name: "inner ring right", row: 5, col: 8, want: OpThen},
		{name: "inner ring bottom", row: 8, col: 5, want: OpThen},
		{name: "diagonal distance one", row: 4, col: 6, want: OpOver},
		{name: "diagonal distance one low", row: 6, col: 4, want: OpOver},
		{name: "diagonal distance two", row: 3, col: 3, want: OpAnd},
		{name: "diagonal distance four", row: 1, col: 9, want: OpAnd},
		{name: "cross top", row: 1, col: 5, want: OpPlus},
		{name: "cross bottom", row: 9, col: 5, want: OpPlus},
		{name: "cross left", row: 5, col: 1, want: OpMinus},
		{name: "cross right", row: 5, col: 9, want: OpMinus},
		{name: "edge top", row: 0, col: 5, want: OpOr},
		{name: "edge bottom", row: 10, col: 5, want: OpOr},
		{name: "plain", row: 0, col: 3, want: OpNone},
		{name: "plain inner", row: 3, col: 4, want: OpNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OperatorAt(tt.row, tt.col); got != tt.want {
				t.Fatalf("OperatorAt(%d,%d) = %s, want %s", tt.row, tt.col, got, tt.want)
			}
		})
	}
}

func TestNewBoardMatchesLayout(t *testing.T) {
	b := NewBoard()
	if len(b.Cells) != BoardSize*BoardSize {
		t.Fatalf("cells = %d, want %d", len(b.Cells), BoardSize*BoardSize)
	}
	for _, c := range b.Cells {
		if c.Operator != OperatorAt(c.Row, c.Col) {
			t.Fatalf("cell %d,%d operator = %s, want %s", c.Row, c.Col, c.Operator, OperatorAt(c.Row, c.Col))
		}
		if c.HasLetter() || c.Locked {
			t.Fatalf("new board cell %d,%d not empty", c.Row, c.Col)
		}
	}
}

func TestEachRunAndRunThrough(t *testing.T) {
	b := blankBoard()
	placeWord(b, 5, 4, true, "CAT", false, 0)
	placeWord(b, 6, 6, false, "O", false, 0)

	var words []string
	b.EachRun(func(run Run) bool {
		words = append(words, b.Word(run))
		return true
	})
	if len(words) != 2 || words[0] != "CAT" || words[1] != "TO" {
		t.Fatalf("runs = %v, want [CAT TO]", words)
	}

	run := b.RunThrough(Index(5, 5), true)
	if b.Word(run) != "CAT" {
		t.Fatalf("RunThrough = %s, want CAT", b.Word(run))
	}
	if got := b.RunThrough(Index(5, 5), false); len(got.Cells) != 1 {
		t.Fatalf("vertical run through A has %d cells, want 1", len(got.Cells))
	}
}

func TestParseOperatorKind(t *testing.T) {
	for k := OpIf; k <= OpStart; k++ {
		got, ok := ParseOperatorKind(k.String())
		if !ok || got != k {
			t.Fatalf("ParseOperatorKind(%q) = %v,%v", k.String(), got, ok)
		}
	}
	if _, ok := ParseOperatorKind("XOR"); ok {
		t.Fatalf("unexpected parse of XOR")
	}
}
