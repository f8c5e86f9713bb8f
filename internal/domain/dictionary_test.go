package domain

import (
	"strings"
	"testing"
)

func TestLoadWordList(t *testing.T) {
	src := "# comment\ncat\n\nDog\nit's\n  zebra  \nCAT\n"
	w, err := LoadWordList(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadWordList returned error: %v", err)
	}
	if w.Len() != 3 {
		t.Fatalf("Len = %d, want 3", w.Len())
	}
	for _, word := range []string{"CAT", "DOG", "ZEBRA"} {
		if !w.Contains(word) {
			t.Fatalf("missing %s", word)
		}
	}
	if w.Contains("ITS") || w.Contains("cat") {
		t.Fatalf("unexpected entries")
	}
}

func TestWordsWith(t *testing.T) {
	w := NewWordList([]string{"TOTE", "AT", "DOG"})
	got := w.WordsWith('T')
	if len(got) != 2 || got[0] != "AT" || got[1] != "TOTE" {
		t.Fatalf("WordsWith(T) = %v, want [AT TOTE]", got)
	}
	if len(w.WordsWith('Q')) != 0 {
		t.Fatalf("WordsWith(Q) should be empty")
	}
}

func TestNilWordList(t *testing.T) {
	var w *WordList
	if w.Contains("CAT") || w.WordsWith('C') != nil || w.Len() != 0 {
		t.Fatalf("nil word list should be empty")
	}
}
