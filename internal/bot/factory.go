package bot

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"

	botinternal "wordcircuit/internal/bot/internal"
	"wordcircuit/internal/domain"
)

// BotLevel selects how much work the search may do per turn.
type BotLevel int

const (
	BotLevelStandard BotLevel = iota
	BotLevelQuick
)

// ParseBotLevel maps a configured difficulty name onto a level.
func ParseBotLevel(name string) (BotLevel, error) {
	switch strings.ToLower(name) {
	case "", "standard", "hard", "medium":
		return BotLevelStandard, nil
	case "quick", "easy":
		return BotLevelQuick, nil
	default:
		return 0, fmt.Errorf("unknown bot level: %q", name)
	}
}

// Option adjusts the search limits of a level.
type Option func(*botinternal.SearchTuning)

// WithMaxAnchors caps the anchors examined per turn. Non-positive values are ignored.
func WithMaxAnchors(n int) Option {
	return func(t *botinternal.SearchTuning) {
		if n > 0 {
			t.MaxAnchors = n
		}
	}
}

// WithSampleSize caps the candidate list of a letter-free anchor. Non-positive values are ignored.
func WithSampleSize(n int) Option {
	return func(t *botinternal.SearchTuning) {
		if n > 0 {
			t.FreeSampleSize = n
		}
	}
}

// NewBrain creates a new AI brain based on the specified level.
// A nil rng is replaced by a time-seeded one.
func NewBrain(level BotLevel, dict domain.Dictionary, rng *rand.Rand, logger zerolog.Logger, opts ...Option) (Brain, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	var tuning botinternal.SearchTuning
	switch level {
	case BotLevelStandard:
		tuning = DefaultTuning
	case BotLevelQuick:
		tuning = QuickTuning
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
	for _, opt := range opts {
		opt(&tuning)
	}
	return NewSearcher(dict, rng, tuning, logger), nil
}
