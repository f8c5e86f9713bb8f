package domain

import (
	"math/rand"
	"sort"
)

// Distribution is the number of tiles of each letter in a fresh bag.
var Distribution = map[rune]int{
	'A': 9, 'B': 2, 'C': 2, 'D': 4, 'E': 13, 'F': 2, 'G': 3, 'H': 2, 'I': 9,
	'J': 1, 'K': 1, 'L': 4, 'M': 2, 'N': 6, 'O': 8, 'P': 2, 'Q': 1, 'R': 6,
	'S': 4, 'T': 6, 'U': 4, 'V': 2, 'W': 2, 'X': 1, 'Y': 2, 'Z': 1,
	Wildcard: 2,
}

// Values is the point value of each letter. Blanks are worth nothing.
var Values = map[rune]int{
	'A': 1, 'B': 3, 'C': 3, 'D': 2, 'E': 1, 'F': 4, 'G': 2, 'H': 4, 'I': 1,
	'J': 8, 'K': 5, 'L': 1, 'M': 3, 'N': 1, 'O': 1, 'P': 3, 'Q': 10, 'R': 1,
	'S': 1, 'T': 1, 'U': 1, 'V': 4, 'W': 4, 'X': 8, 'Y': 4, 'Z': 10,
	Wildcard: 0,
}

// LetterValue returns the value table entry for r, zero when unknown.
func LetterValue(r rune) int {
	return Values[r]
}

// NewTileSet expands the distribution into an ordered multiset.
func NewTileSet() []rune {
	letters := make([]rune, 0, len(Distribution))
	total := 0
	for r, n := range Distribution {
		letters = append(letters, r)
		total += n
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })

	tiles := make([]rune, 0, total)
	for _, r := range letters {
		for i := 0; i < Distribution[r]; i++ {
			tiles = append(tiles, r)
		}
	}
	return tiles
}

// GenerateBag returns a freshly shuffled bag.
func GenerateBag(rng *rand.Rand) []rune {
	bag := NewTileSet()
	ShuffleTiles(bag, rng)
	return bag
}

// ShuffleTiles applies an in-place Fisher-Yates shuffle.
func ShuffleTiles(tiles []rune, rng *rand.Rand) {
	for i := len(tiles) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		tiles[i], tiles[j] = tiles[j], tiles[i]
	}
}

// DrawTiles tops the hand up to HandSize from the front of the bag.
func DrawTiles(hand, bag []rune) ([]rune, []rune) {
	need := HandSize - len(hand)
	if need <= 0 || len(bag) == 0 {
		return hand, bag
	}
	if need > len(bag) {
		need = len(bag)
	}
	out := make([]rune, 0, len(hand)+need)
	out = append(out, hand...)
	out = append(out, bag[:need]...)
	rest := make([]rune, len(bag)-need)
	copy(rest, bag[need:])
	return out, rest
}

// ReturnTiles puts tiles back into the bag and reshuffles it.
func ReturnTiles(bag, tiles []rune, rng *rand.Rand) []rune {
	out := make([]rune, 0, len(bag)+len(tiles))
	out = append(out, bag...)
	out = append(out, tiles...)
	ShuffleTiles(out, rng)
	return out
}

// RemoveLetters removes one occurrence of each letter from hand.
// It reports false and leaves hand untouched when a letter is missing.
func RemoveLetters(hand []rune, letters []rune) ([]rune, bool) {
	if len(letters) == 0 {
		return hand, true
	}
	removeCounts := make(map[rune]int, len(letters))
	for _, r := range letters {
		removeCounts[r]++
	}

	updated := make([]rune, 0, len(hand))
	for _, r := range hand {
		if count := removeCounts[r]; count > 0 {
			removeCounts[r] = count - 1
			continue
		}
		updated = append(updated, r)
	}
	for _, left := range removeCounts {
		if left > 0 {
			return hand, false
		}
	}
	return updated, true
}

// LetterCounts tallies a multiset of tiles.
func LetterCounts(tiles []rune) map[rune]int {
	counts := make(map[rune]int, len(tiles))
	for _, r := range tiles {
		counts[r]++
	}
	return counts
}
