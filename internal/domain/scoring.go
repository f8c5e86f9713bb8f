package domain

// CellScore is the value of the tile on c; blanks score zero whatever they stand for.
func CellScore(c Cell) int {
	if c.Blank || !c.HasLetter() {
		return 0
	}
	return LetterValue(c.Letter)
}

// FormedRuns returns the distinct runs longer than one tile that pass through
// any of the newly placed cells, keyed by orientation and start cell.
func FormedRuns(b *Board, newly []int) []Run {
	type runKey struct {
		horizontal bool
		start      int
	}
	seen := make(map[runKey]struct{})
	var runs []Run
	for _, id := range newly {
		for _, horizontal := range []bool{true, false} {
			run := b.RunThrough(id, horizontal)
			if len(run.Cells) < 2 {
				continue
			}
			key := runKey{horizontal: horizontal, start: run.Cells[0]}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			runs = append(runs, run)
		}
	}
	return runs
}

// RunScore sums the cell scores of a run.
func RunScore(b *Board, run Run) int {
	total := 0
	for _, id := range run.Cells {
		total += CellScore(b.Cells[id])
	}
	return total
}

// ScrabbleScore is the base score of a turn: every line touched by a new tile,
// counted once, including committed tiles lying in it.
func ScrabbleScore(b *Board, newly []int) int {
	total := 0
	for _, run := range FormedRuns(b, newly) {
		total += RunScore(b, run)
	}
	return total
}

// TurnScore splits a turn's points into its base and cascade parts.
type TurnScore struct {
	Base    int
	Words   []string
	Cascade Payout
}

// Total is the combined score committed for the turn.
func (t TurnScore) Total() int {
	return t.Base + t.Cascade.Points
}

// EvaluateTurn scores a board whose newly placed cells are already locked with turn.
func EvaluateTurn(b *Board, newly []int, modes Modes, dict Dictionary, turn int) TurnScore {
	runs := FormedRuns(b, newly)
	score := TurnScore{}
	for _, run := range runs {
		score.Base += RunScore(b, run)
		score.Words = append(score.Words, b.Word(run))
	}
	score.Cascade = EvaluateTriggers(b, modes.Placement, dict, turn)
	return score
}
