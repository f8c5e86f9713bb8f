package bot

import (
	"math/rand"

	"github.com/rs/zerolog"

	botinternal "wordcircuit/internal/bot/internal"
	"wordcircuit/internal/domain"
)

// Searcher is the anchor-based move search.
type Searcher struct {
	dict   domain.Dictionary
	rng    *rand.Rand
	tuning botinternal.SearchTuning
	log    zerolog.Logger
}

// NewSearcher builds a Searcher. rng must not be shared with another goroutine.
func NewSearcher(dict domain.Dictionary, rng *rand.Rand, tuning botinternal.SearchTuning, logger zerolog.Logger) *Searcher {
	return &Searcher{dict: dict, rng: rng, tuning: tuning, log: logger}
}

// Begin snapshots the position for side and returns a search over it.
func (s *Searcher) Begin(game *domain.Game, side domain.Side) Task {
	task := &SearchTask{
		board: game.Board.Clone(),
		hand:  append([]rune(nil), game.Players[side].Hand...),
		modes: game.Modes,
		dict:  s.dict,
		turn:  game.Turn,
		rng:   s.rng,
		tune:  s.tuning,
		log:   s.log,
	}
	if s.dict == nil || len(task.hand) == 0 {
		task.done = true
		return task
	}
	task.anchors = botinternal.Anchors(task.board, task.modes, s.rng, s.tuning)
	return task
}

// SearchTask walks anchors, candidate words, pivots and both orientations in a
// fixed order, keeping the first best-scoring placement. Its cursor lives in
// the struct so the walk can be suspended between any two units of work.
type SearchTask struct {
	board *domain.Board
	hand  []rune
	modes domain.Modes
	dict  domain.Dictionary
	turn  int
	rng   *rand.Rand
	tune  botinternal.SearchTuning
	log   zerolog.Logger

	anchors []botinternal.Anchor
	anchor  int

	words       []string
	wordsLoaded bool
	word        int

	pivots      []int
	pivotsReady bool
	pivot       int
	vertical    bool

	best      botinternal.Candidate
	found     bool
	evaluated int
	done      bool
}

// Step advances the search by at most budget units and reports completion.
func (t *SearchTask) Step(budget int) bool {
	for ; budget > 0 && !t.done; budget-- {
		t.advance()
	}
	return t.done
}

// Evaluated is the number of placements scored so far.
func (t *SearchTask) Evaluated() int {
	return t.evaluated
}

// Result returns the best placement found, or a pass when there was none.
// It is only meaningful once Step has reported completion.
func (t *SearchTask) Result() Move {
	if !t.found {
		return Move{Pass: true}
	}
	return Move{
		Placements: append([]domain.Placement(nil), t.best.Tiles...),
		Word:       t.best.Word,
		Score:      t.best.Score(),
	}
}

func (t *SearchTask) advance() {
	if t.anchor >= len(t.anchors) {
		t.finish()
		return
	}
	a := t.anchors[t.anchor]

	if !t.wordsLoaded {
		t.words = botinternal.Candidates(a, t.hand, t.dict, t.rng, t.tune)
		t.wordsLoaded = true
		t.word = 0
		return
	}
	if t.word >= len(t.words) {
		t.anchor++
		t.wordsLoaded = false
		t.pivotsReady = false
		return
	}

	w := t.words[t.word]
	if !t.pivotsReady {
		t.pivots = nil
		if botinternal.CanMakeWord(w, t.hand, a.Letter) {
			t.pivots = botinternal.Pivots(w, a)
		}
		t.pivot = 0
		t.vertical = false
		t.pivotsReady = true
		if len(t.pivots) == 0 {
			t.nextWord()
		}
		return
	}

	cand, ok := botinternal.EvaluatePlacement(t.board, t.hand, w, a, t.pivots[t.pivot], !t.vertical, t.modes, t.dict, t.turn)
	t.evaluated++
	if ok && (!t.found || cand.Score() > t.best.Score()) {
		t.best = cand
		t.found = true
	}

	if !t.vertical {
		t.vertical = true
		return
	}
	t.vertical = false
	t.pivot++
	if t.pivot >= len(t.pivots) {
		t.nextWord()
	}
}

func (t *SearchTask) nextWord() {
	t.word++
	t.pivotsReady = false
}

func (t *SearchTask) finish() {
	t.done = true
	ev := t.log.Debug().Int("turn", t.turn).Int("anchors", len(t.anchors)).Int("evaluated", t.evaluated)
	if t.found {
		ev = ev.Str("word", t.best.Word).Int("score", t.best.Score())
	}
	ev.Bool("pass", !t.found).Msg("search finished")
}
