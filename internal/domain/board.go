package domain

// Cell is a single board square. Letter is zero when the square is empty.
type Cell struct {
	Row        int
	Col        int
	Operator   OperatorKind
	Letter     rune
	Locked     bool
	Blank      bool
	TurnPlaced int
}

// HasLetter reports whether a tile sits on the cell.
func (c Cell) HasLetter() bool {
	return c.Letter != 0
}

// ID is the arena index of the cell.
func (c Cell) ID() int {
	return c.Row*BoardSize + c.Col
}

// Board is a BoardSize x BoardSize arena addressed by cell id (row*BoardSize+col).
type Board struct {
	Cells []Cell
}

var layoutOverrides = map[[2]int]OperatorKind{
	{2, 8}:  OpOver,
	{4, 4}:  OpIf,
	{5, 0}:  OpOver,
	{6, 6}:  OpOr,
	{5, 10}: OpIf,
	{8, 2}:  OpOr,
}

// OperatorAt returns the operator the layout assigns to (row, col). First match wins.
func OperatorAt(row, col int) OperatorKind {
	last := BoardSize - 1
	onEdge := func(v int) bool { return v == 0 || v == last }
	innerRing := func(v int) bool { return v == Center-3 || v == Center+3 }
	crossArm := func(v int) bool { return v == Center-4 || v == Center+4 }

	if onEdge(row) && onEdge(col) {
		return OpMult
	}
	if row == Center && col == Center {
		return OpStart
	}
	if op, ok := layoutOverrides[[2]int{row, col}]; ok {
		return op
	}

	switch {
	case innerRing(row) && innerRing(col):
		return OpIf
	case innerRing(row) && col == Center, row == Center && innerRing(col):
		return OpThen
	}

	dr, dc := abs(row-Center), abs(col-Center)
	if dr == dc && row != Center && col != Center && !onEdge(row) && !onEdge(col) {
		if dr == 1 {
			return OpOver
		}
		return OpAnd
	}

	switch {
	case crossArm(row) && col == Center:
		return OpPlus
	case row == Center && crossArm(col):
		return OpMinus
	case onEdge(row) && col == Center, row == Center && onEdge(col):
		return OpOr
	}
	return OpNone
}

// GenerateLayout returns the operator of every cell, indexed by cell id.
func GenerateLayout() []OperatorKind {
	layout := make([]OperatorKind, BoardSize*BoardSize)
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			layout[Index(row, col)] = OperatorAt(row, col)
		}
	}
	return layout
}

// NewBoard lays the generated operators over an empty grid.
func NewBoard() *Board {
	layout := GenerateLayout()
	b := &Board{Cells: make([]Cell, len(layout))}
	for id, op := range layout {
		b.Cells[id] = Cell{Row: id / BoardSize, Col: id % BoardSize, Operator: op}
	}
	return b
}

// InBounds reports whether (row, col) lies on the board.
func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

// Index converts coordinates to a cell id.
func Index(row, col int) int {
	return row*BoardSize + col
}

// At returns the cell at (row, col) or nil when out of bounds.
func (b *Board) At(row, col int) *Cell {
	if !InBounds(row, col) {
		return nil
	}
	return &b.Cells[row*BoardSize+col]
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	out := &Board{Cells: make([]Cell, len(b.Cells))}
	copy(out.Cells, b.Cells)
	return out
}

// HasLocked reports whether any committed tile is on the board.
func (b *Board) HasLocked() bool {
	for i := range b.Cells {
		if b.Cells[i].Locked && b.Cells[i].HasLetter() {
			return true
		}
	}
	return false
}

// Neighbors returns the ids of the in-bounds orthogonal neighbours of id.
func (b *Board) Neighbors(id int) []int {
	row, col := id/BoardSize, id%BoardSize
	out := make([]int, 0, 4)
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		if r, c := row+d[0], col+d[1]; InBounds(r, c) {
			out = append(out, Index(r, c))
		}
	}
	return out
}

func (b *Board) lettered(row, col int) bool {
	c := b.At(row, col)
	return c != nil && c.HasLetter()
}

func (b *Board) hasLetteredNeighbor(row, col int) bool {
	return b.lettered(row-1, col) || b.lettered(row+1, col) ||
		b.lettered(row, col-1) || b.lettered(row, col+1)
}

// Run is a maximal line of consecutive lettered cells.
type Run struct {
	Horizontal bool
	Cells      []int
}

// RunThrough returns the maximal run through id in the given orientation.
// A cell with no lettered neighbour in that direction yields a run of length one.
func (b *Board) RunThrough(id int, horizontal bool) Run {
	row, col := id/BoardSize, id%BoardSize
	dr, dc := 1, 0
	if horizontal {
		dr, dc = 0, 1
	}
	for b.lettered(row-dr, col-dc) {
		row, col = row-dr, col-dc
	}
	run := Run{Horizontal: horizontal}
	for b.lettered(row, col) {
		run.Cells = append(run.Cells, Index(row, col))
		row, col = row+dr, col+dc
	}
	return run
}

// EachRun visits every maximal run of length two or more, rows first, then columns.
// Iteration stops when fn returns false.
func (b *Board) EachRun(fn func(Run) bool) {
	for _, horizontal := range []bool{true, false} {
		for line := 0; line < BoardSize; line++ {
			var cells []int
			flush := func() bool {
				if len(cells) >= 2 {
					if !fn(Run{Horizontal: horizontal, Cells: cells}) {
						return false
					}
				}
				cells = nil
				return true
			}
			for pos := 0; pos < BoardSize; pos++ {
				row, col := line, pos
				if !horizontal {
					row, col = pos, line
				}
				if b.lettered(row, col) {
					cells = append(cells, Index(row, col))
					continue
				}
				if !flush() {
					return
				}
			}
			if !flush() {
				return
			}
		}
	}
}

// Word spells the letters of a run.
func (b *Board) Word(run Run) string {
	buf := make([]rune, len(run.Cells))
	for i, id := range run.Cells {
		buf[i] = b.Cells[id].Letter
	}
	return string(buf)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
