package bot

import (
	"context"
	"runtime"

	"wordcircuit/internal/domain"
)

// DefaultStepBudget is the number of search units run between yields.
const DefaultStepBudget = 64

// Agent represents an autonomous bot player seated on one side.
type Agent struct {
	ID       string
	Name     string
	Side     domain.Side
	Strategy Brain

	task Task
}

// NewAgent seats a brain on side.
func NewAgent(id string, side domain.Side, brain Brain) *Agent {
	return &Agent{ID: id, Name: id, Side: side, Strategy: brain}
}

// Begin starts a search for the current position, replacing any unfinished one.
func (a *Agent) Begin(game *domain.Game) {
	a.task = a.Strategy.Begin(game, a.Side)
}

// Thinking reports whether a search is in progress.
func (a *Agent) Thinking() bool {
	return a.task != nil
}

// Cancel abandons any unfinished search.
func (a *Agent) Cancel() {
	a.task = nil
}

// Step advances the running search. When it finishes the move is returned with
// done set and the agent is ready for the next Begin.
func (a *Agent) Step(budget int) (Move, bool) {
	if a.task == nil {
		return Move{}, false
	}
	if !a.task.Step(budget) {
		return Move{}, false
	}
	move := a.task.Result()
	a.task = nil
	return move, true
}

// Play searches the position to completion, yielding the processor between
// slices. Cancelling ctx abandons the search.
func (a *Agent) Play(ctx context.Context, game *domain.Game) (Move, error) {
	a.Begin(game)
	for {
		if err := ctx.Err(); err != nil {
			a.task = nil
			return Move{}, err
		}
		if move, done := a.Step(DefaultStepBudget); done {
			return move, nil
		}
		runtime.Gosched()
	}
}
