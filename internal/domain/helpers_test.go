package domain

// placeWord writes word onto b starting at (row, col) and returns the cell ids.
func placeWord(b *Board, row, col int, horizontal bool, word string, locked bool, turn int) []int {
	ids := make([]int, 0, len(word))
	for i, r := range word {
		rr, cc := row, col+i
		if !horizontal {
			rr, cc = row+i, col
		}
		c := b.At(rr, cc)
		c.Letter = r
		c.Locked = locked
		if locked {
			c.TurnPlaced = turn
		}
		ids = append(ids, c.ID())
	}
	return ids
}

// blankBoard returns a board with every operator cleared.
func blankBoard() *Board {
	b := NewBoard()
	for i := range b.Cells {
		b.Cells[i].Operator = OpNone
	}
	return b
}

func lockCells(b *Board, ids []int, turn int) {
	for _, id := range ids {
		b.Cells[id].Locked = true
		b.Cells[id].TurnPlaced = turn
	}
}
