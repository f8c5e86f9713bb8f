package internal

import (
	"math/rand"

	"wordcircuit/internal/domain"
)

// Anchor is a cell a candidate word must pass through. Letter is zero for a
// letter-free anchor.
type Anchor struct {
	Row    int
	Col    int
	Letter rune
}

// Free reports whether the anchor is not tied to an existing letter.
func (a Anchor) Free() bool {
	return a.Letter == 0
}

// Anchors lists the anchors to examine this turn, shuffled and capped.
func Anchors(b *domain.Board, modes domain.Modes, rng *rand.Rand, t SearchTuning) []Anchor {
	var anchors []Anchor
	for i := range b.Cells {
		c := &b.Cells[i]
		if c.Locked && c.HasLetter() {
			anchors = append(anchors, Anchor{Row: c.Row, Col: c.Col, Letter: c.Letter})
		}
	}

	if len(anchors) == 0 {
		return capAnchors([]Anchor{{Row: domain.Center, Col: domain.Center}}, t.FirstTurnAnchors)
	}

	if modes.Placement == domain.PlacementGo && len(anchors) < t.GoFewAnchors {
		anchors = append(anchors, randomEmptyAnchors(b, rng, t.GoExtraAnchors)...)
	}

	rng.Shuffle(len(anchors), func(i, j int) { anchors[i], anchors[j] = anchors[j], anchors[i] })
	return capAnchors(anchors, t.MaxAnchors)
}

func randomEmptyAnchors(b *domain.Board, rng *rand.Rand, n int) []Anchor {
	var empty []int
	for i := range b.Cells {
		if !b.Cells[i].HasLetter() {
			empty = append(empty, i)
		}
	}
	rng.Shuffle(len(empty), func(i, j int) { empty[i], empty[j] = empty[j], empty[i] })
	if n > len(empty) {
		n = len(empty)
	}
	out := make([]Anchor, 0, n)
	for _, id := range empty[:n] {
		out = append(out, Anchor{Row: id / domain.BoardSize, Col: id % domain.BoardSize})
	}
	return out
}

func capAnchors(anchors []Anchor, limit int) []Anchor {
	if limit > 0 && len(anchors) > limit {
		return anchors[:limit]
	}
	return anchors
}
