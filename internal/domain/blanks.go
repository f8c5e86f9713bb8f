package domain

// UnresolvedBlanks returns the ids of uncommitted wildcard cells in row-major order.
func UnresolvedBlanks(b *Board) []int {
	var ids []int
	for i := range b.Cells {
		c := &b.Cells[i]
		if c.Letter == Wildcard && !c.Locked {
			ids = append(ids, i)
		}
	}
	return ids
}

// ResolveBlanks assigns concrete letters to every unresolved wildcard on b,
// trying A..Z depth-first, and keeps the first assignment that validates.
// On failure the wildcards and their blank flags are restored and false is
// returned.
func ResolveBlanks(b *Board, modes Modes, dict Dictionary) bool {
	blanks := UnresolvedBlanks(b)
	if len(blanks) == 0 {
		return ValidatePlacementRules(b, modes, dict)
	}
	if dict == nil || len(blanks) > MaxBlanks {
		return false
	}
	for _, id := range blanks {
		b.Cells[id].Blank = true
	}
	if resolveFrom(b, blanks, 0, modes, dict) {
		return true
	}
	for _, id := range blanks {
		b.Cells[id].Blank = false
	}
	return false
}

func resolveFrom(b *Board, blanks []int, k int, modes Modes, dict Dictionary) bool {
	if k == len(blanks) {
		return ValidatePlacementRules(b, modes, dict)
	}
	id := blanks[k]
	for letter := 'A'; letter <= 'Z'; letter++ {
		b.Cells[id].Letter = letter
		if !completedRunsAreWords(b, id, dict) {
			continue
		}
		if resolveFrom(b, blanks, k+1, modes, dict) {
			return true
		}
	}
	b.Cells[id].Letter = Wildcard
	return false
}

// completedRunsAreWords prunes a partial assignment: every run through id that no
// longer contains a wildcard must already be a word.
func completedRunsAreWords(b *Board, id int, dict Dictionary) bool {
	for _, horizontal := range []bool{true, false} {
		run := b.RunThrough(id, horizontal)
		if len(run.Cells) < 2 {
			continue
		}
		complete := true
		for _, other := range run.Cells {
			if b.Cells[other].Letter == Wildcard {
				complete = false
				break
			}
		}
		if complete && !dict.Contains(b.Word(run)) {
			return false
		}
	}
	return true
}
