package bot

import "wordcircuit/internal/domain"

// Move represents the decision made by the AI.
type Move struct {
	Pass       bool
	Placements []domain.Placement
	Word       string
	Score      int
}

// Task is a resumable move search. Step runs at most budget units of work and
// reports whether the search has finished; slicing never changes the result.
type Task interface {
	Step(budget int) bool
	Result() Move
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	Begin(game *domain.Game, side domain.Side) Task
}
