package internal

import (
	"math/rand"
	"sort"

	"wordcircuit/internal/domain"
)

// Candidates returns the words to try at anchor a, longest first with ties in
// random order.
func Candidates(a Anchor, hand []rune, dict domain.Dictionary, rng *rand.Rand, t SearchTuning) []string {
	var words []string
	if a.Free() {
		words = freeCandidates(hand, dict, rng, t)
	} else {
		words = append(words, dict.WordsWith(a.Letter)...)
	}

	out := words[:0]
	for _, w := range words {
		if n := len(w); n >= t.MinWordLen && n <= t.MaxWordLen {
			out = append(out, w)
		}
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

// freeCandidates unions the index lists of every distinct letter in hand.
func freeCandidates(hand []rune, dict domain.Dictionary, rng *rand.Rand, t SearchTuning) []string {
	seenLetter := make(map[rune]bool)
	seenWord := make(map[string]bool)
	var words []string
	for _, r := range hand {
		if r == domain.Wildcard || seenLetter[r] {
			continue
		}
		seenLetter[r] = true
		for _, w := range dict.WordsWith(r) {
			if len(w) > t.FreeMaxLen || seenWord[w] {
				continue
			}
			seenWord[w] = true
			words = append(words, w)
		}
	}
	if t.FreeSampleSize > 0 && len(words) > t.FreeSampleSize {
		rng.Shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })
		words = words[:t.FreeSampleSize]
	}
	return words
}

// CanMakeWord reports whether hand, with wildcards covering any shortfall, can
// supply word. fixed is a letter already on the board and is not drawn from hand.
func CanMakeWord(word string, hand []rune, fixed rune) bool {
	need := make(map[rune]int, len(word))
	for _, r := range word {
		need[r]++
	}
	if fixed != 0 && need[fixed] > 0 {
		need[fixed]--
	}

	have := domain.LetterCounts(hand)
	deficit := 0
	for r, n := range need {
		if short := n - have[r]; short > 0 {
			deficit += short
		}
	}
	return deficit <= have[domain.Wildcard]
}

// Pivots returns the indexes of word that may sit on the anchor cell.
func Pivots(word string, a Anchor) []int {
	letters := []rune(word)
	if a.Free() {
		return []int{len(letters) / 2}
	}
	var pivots []int
	for i, r := range letters {
		if r == a.Letter {
			pivots = append(pivots, i)
		}
	}
	return pivots
}
