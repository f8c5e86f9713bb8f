package app

// Seats is the number of sides in a match. Both must be filled before a game starts.
const Seats = 2

// Reasons reported in GameEndedPayload.
const (
	EndReasonTilesOut = "tiles_out"
	EndReasonPasses   = "passes"
)
