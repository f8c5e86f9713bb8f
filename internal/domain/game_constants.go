package domain

const (
	// BoardSize is the fixed side length of the square board.
	BoardSize = 11
	// Center is the row and column of the START cell.
	Center = BoardSize / 2

	// HandSize is the maximum number of tiles a player holds.
	HandSize = 7

	// Wildcard marks a blank tile whose letter has not been chosen yet.
	Wildcard rune = '?'

	// MaxBlanks bounds how many unresolved blanks a single move may carry.
	MaxBlanks = HandSize

	// MaxConsecutivePasses ends the match once both sides keep passing.
	MaxConsecutivePasses = 4
)
