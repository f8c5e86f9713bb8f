package internal

import "wordcircuit/internal/domain"

// Candidate is a fully evaluated legal placement.
type Candidate struct {
	Word       string
	Row        int
	Col        int
	Horizontal bool
	Tiles      []domain.Placement
	Base       int
	Cascade    int
}

// Score is the value the search ranks candidates by.
func (c Candidate) Score() int {
	return c.Base + c.Cascade
}

// EvaluatePlacement lays word across the anchor with letter pivot on it and
// scores the result. ok is false when the placement is infeasible or illegal.
func EvaluatePlacement(b *domain.Board, hand []rune, word string, a Anchor, pivot int, horizontal bool, modes domain.Modes, dict domain.Dictionary, turn int) (Candidate, bool) {
	letters := []rune(word)
	dr, dc := 0, 1
	if !horizontal {
		dr, dc = 1, 0
	}
	row, col := a.Row-dr*pivot, a.Col-dc*pivot
	endRow, endCol := row+dr*(len(letters)-1), col+dc*(len(letters)-1)
	if !domain.InBounds(row, col) || !domain.InBounds(endRow, endCol) {
		return Candidate{}, false
	}

	scratch := b.Clone()
	supply := domain.LetterCounts(hand)
	cand := Candidate{Word: word, Row: row, Col: col, Horizontal: horizontal}
	placed := make([]int, 0, len(letters))
	for i, r := range letters {
		cell := scratch.At(row+dr*i, col+dc*i)
		if cell.HasLetter() {
			if cell.Letter != r {
				return Candidate{}, false
			}
			continue
		}
		blank := false
		switch {
		case supply[r] > 0:
			supply[r]--
		case supply[domain.Wildcard] > 0:
			supply[domain.Wildcard]--
			blank = true
		default:
			return Candidate{}, false
		}
		cell.Letter = r
		cell.Blank = blank
		placed = append(placed, cell.ID())
		cand.Tiles = append(cand.Tiles, domain.Placement{Row: cell.Row, Col: cell.Col, Letter: r, Blank: blank})
	}
	if len(placed) == 0 {
		return Candidate{}, false
	}

	// Validated unlocked, as a pending move, the same way CommitMove sees it.
	if !domain.ValidatePlacementRules(scratch, modes, dict) {
		return Candidate{}, false
	}
	for _, id := range placed {
		scratch.Cells[id].Locked = true
		scratch.Cells[id].TurnPlaced = turn
	}
	score := domain.EvaluateTurn(scratch, placed, modes, dict, turn)
	cand.Base = score.Base
	cand.Cascade = score.Cascade.Points
	return cand, true
}
