package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"
	// RpcPeerToken issues a relay room token for peer-to-peer play.
	RpcPeerToken = "peer_token"

	// MatchNameWordCircuit is the authoritative match handler name registered with Nakama.
	MatchNameWordCircuit = "wordcircuit_match"
	// MatchLabelGame tags our matches in the label so quick match never picks another module's match.
	MatchLabelGame = "wordcircuit"

	// MatchTickRate is the number of MatchLoop calls per second.
	MatchTickRate = 5
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame   int64 = 1
	OpPlaceTile   int64 = 2
	OpRecallTiles int64 = 3
	OpCommitMove  int64 = 4
	OpPassTurn    int64 = 5
	OpSetModes    int64 = 6

	// Server -> Client events
	OpMatchState    int64 = 101
	OpGameStarted   int64 = 103
	OpHandDealt     int64 = 104 // send privately
	OpMoveCommitted int64 = 105
	OpTurnPassed    int64 = 106
	OpGameEnded     int64 = 107
	OpGameReset     int64 = 108
	OpSnapshot      int64 = 109 // protobuf-encoded board snapshot, per seat
	OpGameError     int64 = 110
)
