package observerproto

import "evolution.game/internal/sim/game"

// Version is the spectator protocol version (separate from the player WS protocol).
const Version = "0.1"

const (
	TypeSubscribe = "SUBSCRIBE"
	TypeTurn      = "TURN"
)

// Client -> Server. First message on the spectator WS connection.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	// FromTurn replays buffered turns starting at this turn number. Zero means
	// only turns played after subscribing.
	FromTurn int `json:"from_turn,omitempty"`
}

// HTTP response for GET /admin/v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string `json:"protocol_version"`
	GameID          string `json:"game_id"`
	Turn            int    `json:"turn"`
	Spectators      int    `json:"spectators"`
}

// Server -> Client. Sent after every turn.
type TurnMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	GameID          string            `json:"game_id"`
	Entry           game.TurnLogEntry `json:"entry"`
}
