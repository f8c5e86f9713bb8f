package bot

import botinternal "wordcircuit/internal/bot/internal"

// DefaultTuning examines up to twelve anchors per turn.
var DefaultTuning = botinternal.SearchTuning{
	MaxAnchors:       12,
	FirstTurnAnchors: 1,
	FreeSampleSize:   400,
	FreeMaxLen:       8,
	MinWordLen:       2,
	MaxWordLen:       9,
	GoFewAnchors:     4,
	GoExtraAnchors:   3,
}

// QuickTuning trades strength for a much shorter search.
var QuickTuning = botinternal.SearchTuning{
	MaxAnchors:       4,
	FirstTurnAnchors: 1,
	FreeSampleSize:   80,
	FreeMaxLen:       6,
	MinWordLen:       2,
	MaxWordLen:       6,
	GoFewAnchors:     4,
	GoExtraAnchors:   2,
}
