package nakama

const (
	// RpcFindMatchID is the Nakama RPC id clients call to find or create a match.
	RpcFindMatchID = "find_match"

	// MatchNameGuandan is the authoritative match handler name registered with Nakama.
	MatchNameGuandan = "guandan_match"

	// MatchLabelKeyOpenSeats is the match-label JSON key advertising open seats.
	MatchLabelKeyOpenSeats = "open"
)

// Op codes for client -> server commands and server -> client events.
// Payloads are JSON, not protobuf.
const (
	// Client -> Server
	OpStartGame     int64 = 1
	OpPlayCards     int64 = 2
	OpPassTurn      int64 = 3
	OpSubmitTribute int64 = 4

	// Server -> Client
	OpMatchState   int64 = 101
	OpEngineEvent  int64 = 102
	OpHandSnapshot int64 = 103
)
