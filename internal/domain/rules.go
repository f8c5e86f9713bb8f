package domain

// Rule names the placement rule a board broke.
type Rule int

const (
	RuleNone Rule = iota
	RuleNoDictionary
	RuleUnresolvedBlank
	RuleIsolation
	RuleConnectivity
	RuleDictionary
	RuleLockedRun
)

func (r Rule) String() string {
	switch r {
	case RuleNone:
		return "ok"
	case RuleNoDictionary:
		return "no_dictionary"
	case RuleUnresolvedBlank:
		return "unresolved_blank"
	case RuleIsolation:
		return "isolation"
	case RuleConnectivity:
		return "connectivity"
	case RuleDictionary:
		return "not_a_word"
	case RuleLockedRun:
		return "locked_run"
	}
	return "unknown"
}

// Verdict is the outcome of CheckPlacement. Cell is the first offending cell id
// (or -1) and Word the offending run, when the rule concerns one.
type Verdict struct {
	Rule Rule
	Cell int
	Word string
}

// OK reports whether every rule held.
func (v Verdict) OK() bool {
	return v.Rule == RuleNone
}

// ValidatePlacementRules reports whether the board is a legal position.
// A nil dictionary always fails.
func ValidatePlacementRules(b *Board, modes Modes, dict Dictionary) bool {
	return CheckPlacement(b, modes, dict).OK()
}

// CheckPlacement evaluates the placement rules in a fixed order and returns
// the first violation.
func CheckPlacement(b *Board, modes Modes, dict Dictionary) Verdict {
	if dict == nil {
		return Verdict{Rule: RuleNoDictionary, Cell: -1}
	}

	for i := range b.Cells {
		c := &b.Cells[i]
		if !c.HasLetter() {
			continue
		}
		if c.Letter == Wildcard {
			return Verdict{Rule: RuleUnresolvedBlank, Cell: i}
		}
		if !b.hasLetteredNeighbor(c.Row, c.Col) {
			return Verdict{Rule: RuleIsolation, Cell: i}
		}
	}

	if modes.Placement == PlacementAcrostic && b.HasLocked() {
		for i := range b.Cells {
			c := &b.Cells[i]
			if c.HasLetter() && !c.Locked && !b.touchesLocked(i) {
				return Verdict{Rule: RuleConnectivity, Cell: i}
			}
		}
	}

	verdict := Verdict{Rule: RuleNone, Cell: -1}
	b.EachRun(func(run Run) bool {
		word := b.Word(run)
		if !dict.Contains(word) {
			verdict = Verdict{Rule: RuleDictionary, Cell: run.Cells[0], Word: word}
			return false
		}
		if modes.Game == GameFixed && b.extendsLockedRun(run) {
			verdict = Verdict{Rule: RuleLockedRun, Cell: run.Cells[0], Word: word}
			return false
		}
		return true
	})
	return verdict
}

// touchesLocked reports whether either line through id contains a locked tile.
func (b *Board) touchesLocked(id int) bool {
	for _, horizontal := range []bool{true, false} {
		for _, other := range b.RunThrough(id, horizontal).Cells {
			if b.Cells[other].Locked {
				return true
			}
		}
	}
	return false
}

// extendsLockedRun reports whether a run mixing new and committed tiles holds
// two or more consecutive committed tiles.
func (b *Board) extendsLockedRun(run Run) bool {
	hasUnlocked := false
	lockedStreak, longest := 0, 0
	for _, id := range run.Cells {
		if b.Cells[id].Locked {
			lockedStreak++
			if lockedStreak > longest {
				longest = lockedStreak
			}
			continue
		}
		hasUnlocked = true
		lockedStreak = 0
	}
	return hasUnlocked && longest >= 2
}
