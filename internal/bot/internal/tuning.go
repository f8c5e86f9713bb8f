package internal

// SearchTuning bounds the cost of one move search.
type SearchTuning struct {
	// MaxAnchors caps how many anchors are examined once the board has letters.
	MaxAnchors int
	// FirstTurnAnchors caps the anchors examined on an empty board.
	FirstTurnAnchors int
	// FreeSampleSize caps the candidate list of a letter-free anchor.
	FreeSampleSize int
	// FreeMaxLen is the longest word tried at a letter-free anchor.
	FreeMaxLen int
	MinWordLen int
	MaxWordLen int
	// GoFewAnchors is the locked-anchor count below which GO mode injects
	// GoExtraAnchors random letter-free anchors.
	GoFewAnchors   int
	GoExtraAnchors int
}
