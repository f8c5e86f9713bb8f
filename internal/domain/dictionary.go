package domain

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Dictionary is the read-only word source shared by validation, the chain
// compiler and the move search.
type Dictionary interface {
	Contains(word string) bool
	// WordsWith lists every word containing letter at least once.
	WordsWith(letter rune) []string
}

// WordList is an in-memory Dictionary with a letter index.
type WordList struct {
	words map[string]struct{}
	index map[rune][]string
}

// NewWordList normalises words to upper case, drops anything non-alphabetic and
// builds the letter index in sorted word order.
func NewWordList(words []string) *WordList {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w == "" || !isAlpha(w) {
			continue
		}
		set[w] = struct{}{}
	}

	sorted := make([]string, 0, len(set))
	for w := range set {
		sorted = append(sorted, w)
	}
	sort.Strings(sorted)

	index := make(map[rune][]string)
	for _, w := range sorted {
		var seen [26]bool
		for _, r := range w {
			if seen[r-'A'] {
				continue
			}
			seen[r-'A'] = true
			index[r] = append(index[r], w)
		}
	}
	return &WordList{words: set, index: index}
}

// LoadWordList reads one word per line.
func LoadWordList(r io.Reader) (*WordList, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	return NewWordList(words), nil
}

// Contains reports dictionary membership of an upper-case word.
func (w *WordList) Contains(word string) bool {
	if w == nil {
		return false
	}
	_, ok := w.words[word]
	return ok
}

// WordsWith returns the shared index slice; callers must not modify it.
func (w *WordList) WordsWith(letter rune) []string {
	if w == nil {
		return nil
	}
	return w.index[letter]
}

// Len is the number of distinct words.
func (w *WordList) Len() int {
	if w == nil {
		return 0
	}
	return len(w.words)
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
