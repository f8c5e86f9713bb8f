package domain

import (
	"sort"
	"strconv"
	"strings"
)

// WordRecord is a dictionary word found on the board during analysis.
type WordRecord struct {
	Text    string
	Score   int
	MaxTurn int
	Cluster int
	Cells   []int
}

// OperatorEntry is one operator cell crossed by a word.
type OperatorEntry struct {
	Kind         OperatorKind
	Turn         int
	Word         string
	Score        int
	Cells        []int
	OperatorCell int
}

// CompiledChain is the instruction sequence of one cluster.
type CompiledChain struct {
	Cluster   int
	Entries   []OperatorEntry
	DataWords []WordRecord
	Outcome   int
}

// Armed reports whether the chain has at least one Trigger and one Action.
func (c *CompiledChain) Armed() bool {
	return hasTriggerAndAction(c.Entries)
}

// Analysis is the result of scanning the board for words and operators.
type Analysis struct {
	Clusters  []int
	Words     []WordRecord
	Entries   []OperatorEntry
	DataWords []WordRecord
}

// Clusters labels each lettered cell with a cluster id; empty cells get 0.
// ACROSTIC boards are a single cluster; GO boards use 4-neighbour components
// numbered in row-major scan order.
func Clusters(b *Board, placement PlacementMode) []int {
	labels := make([]int, len(b.Cells))
	if placement == PlacementAcrostic {
		for i := range b.Cells {
			if b.Cells[i].HasLetter() {
				labels[i] = 1
			}
		}
		return labels
	}

	next := 0
	stack := make([]int, 0, len(b.Cells))
	for start := range b.Cells {
		if !b.Cells[start].HasLetter() || labels[start] != 0 {
			continue
		}
		next++
		labels[start] = next
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, nid := range b.Neighbors(id) {
				if !b.Cells[nid].HasLetter() {
					continue
				}
				if labels[nid] == 0 {
					labels[nid] = next
					stack = append(stack, nid)
				}
			}
		}
	}
	return labels
}

// ExtractWords extracts dictionary words and the operator entries they produce.
func ExtractWords(b *Board, placement PlacementMode, dict Dictionary) Analysis {
	a := Analysis{Clusters: Clusters(b, placement)}
	if dict == nil {
		return a
	}

	seen := make(map[string]struct{})
	b.EachRun(func(run Run) bool {
		text := b.Word(run)
		if !dict.Contains(text) {
			return true
		}
		key := cellKey(run.Cells)
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}

		rec := WordRecord{
			Text:    text,
			Score:   RunScore(b, run),
			Cluster: a.Clusters[run.Cells[0]],
			Cells:   run.Cells,
		}
		crossed := 0
		for _, id := range run.Cells {
			c := &b.Cells[id]
			if c.TurnPlaced > rec.MaxTurn {
				rec.MaxTurn = c.TurnPlaced
			}
			if c.Operator == OpNone || c.Operator == OpStart {
				continue
			}
			crossed++
			a.Entries = append(a.Entries, OperatorEntry{
				Kind:         c.Operator,
				Turn:         c.TurnPlaced,
				Word:         text,
				Score:        rec.Score,
				Cells:        run.Cells,
				OperatorCell: id,
			})
		}
		a.Words = append(a.Words, rec)
		if crossed == 0 {
			a.DataWords = append(a.DataWords, rec)
		}
		return true
	})
	return a
}

func cellKey(cells []int) string {
	parts := make([]string, len(cells))
	for i, id := range cells {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// AssembleChain orders a cluster's entries: earliest IF, every OR, earliest
// THEN, AND and PLUS interleaved, then MINUS, MULT and OVER interleaved.
// Each bucket is ascending by the turn the operator cell was locked.
func AssembleChain(entries []OperatorEntry) []OperatorEntry {
	sorted := append([]OperatorEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Turn < sorted[j].Turn })

	var (
		firstIf, firstThen *OperatorEntry
		ors, adds, rest    []OperatorEntry
	)
	for i := range sorted {
		e := sorted[i]
		switch e.Kind {
		case OpIf:
			if firstIf == nil {
				firstIf = &sorted[i]
			}
		case OpOr:
			ors = append(ors, e)
		case OpThen:
			if firstThen == nil {
				firstThen = &sorted[i]
			}
		case OpAnd, OpPlus:
			adds = append(adds, e)
		case OpMinus, OpMult, OpOver:
			rest = append(rest, e)
		case OpNone, OpStart:
		}
	}

	chain := make([]OperatorEntry, 0, len(sorted))
	if firstIf != nil {
		chain = append(chain, *firstIf)
	}
	chain = append(chain, ors...)
	if firstThen != nil {
		chain = append(chain, *firstThen)
	}
	chain = append(chain, adds...)
	chain = append(chain, rest...)
	return chain
}

func hasTriggerAndAction(chain []OperatorEntry) bool {
	triggers, actions := 0, 0
	for _, e := range chain {
		if e.Kind.IsTrigger() {
			triggers++
		} else {
			actions++
		}
	}
	return triggers > 0 && actions > 0
}

// CascadeOutcome folds a chain's Actions into the value paid when it fires.
// Nothing accumulates until a THEN establishes the outcome.
func CascadeOutcome(chain []OperatorEntry) int {
	if !hasTriggerAndAction(chain) {
		return 0
	}
	outcome := 0
	established := false
	for _, e := range chain {
		switch e.Kind {
		case OpIf, OpOr:
		case OpThen:
			if !established {
				outcome = e.Score
				established = true
			}
		case OpPlus, OpAnd:
			if established {
				outcome += e.Score
			}
		case OpMinus:
			if established {
				outcome -= e.Score
			}
		case OpMult:
			if established {
				outcome *= e.Score
			}
		case OpOver:
			if established && e.Score != 0 {
				outcome = floorDiv(outcome, e.Score)
			}
		case OpNone, OpStart:
		}
	}
	return outcome
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// CompileChains groups the analysis by cluster and assembles each chain.
func CompileChains(a Analysis) map[int]*CompiledChain {
	chains := make(map[int]*CompiledChain)
	get := func(cluster int) *CompiledChain {
		c, ok := chains[cluster]
		if !ok {
			c = &CompiledChain{Cluster: cluster}
			chains[cluster] = c
		}
		return c
	}

	byCluster := make(map[int][]OperatorEntry)
	for _, e := range a.Entries {
		cluster := a.Clusters[e.OperatorCell]
		byCluster[cluster] = append(byCluster[cluster], e)
	}
	for cluster, entries := range byCluster {
		c := get(cluster)
		c.Entries = AssembleChain(entries)
		c.Outcome = CascadeOutcome(c.Entries)
	}
	for _, w := range a.DataWords {
		c := get(w.Cluster)
		c.DataWords = append(c.DataWords, w)
	}
	return chains
}

// Firing records one Trigger replay.
type Firing struct {
	Cluster int
	Word    string
	Trigger OperatorKind
	Points  int
}

// Payout is the cascade bonus of a turn. Active lists the cells to highlight.
type Payout struct {
	Points int
	Fired  []Firing
	Active []int
}

// EvaluateTriggers pays out every cluster whose chain has a Trigger word that was
// formed again this turn. A fresh word pays once for every Trigger entry it matches.
func EvaluateTriggers(b *Board, placement PlacementMode, dict Dictionary, turn int) Payout {
	analysis := ExtractWords(b, placement, dict)
	chains := CompileChains(analysis)

	var payout Payout
	active := make(map[int]struct{})
	for _, w := range analysis.Words {
		if w.MaxTurn != turn {
			continue
		}
		chain, ok := chains[w.Cluster]
		if !ok || !chain.Armed() {
			continue
		}
		for _, e := range chain.Entries {
			if !e.Kind.IsTrigger() || e.Word != w.Text {
				continue
			}
			payout.Points += chain.Outcome
			payout.Fired = append(payout.Fired, Firing{
				Cluster: chain.Cluster,
				Word:    w.Text,
				Trigger: e.Kind,
				Points:  chain.Outcome,
			})
			for _, id := range w.Cells {
				active[id] = struct{}{}
			}
			for _, entry := range chain.Entries {
				for _, id := range entry.Cells {
					active[id] = struct{}{}
				}
			}
		}
	}

	payout.Active = make([]int, 0, len(active))
	for id := range active {
		payout.Active = append(payout.Active, id)
	}
	sort.Ints(payout.Active)
	return payout
}
