package network

import "encoding/json"

// 客户端发来的事件
const (
	EventPing       = "ping"
	EventCreateGame = "create_game"
	EventJoinGame   = "join_game"
	EventSetReady   = "set_ready"
	EventTap        = "tap"
	EventGoAgain    = "go_again"
	EventLeaveGame  = "leave_game"
)

// 服务端推送的事件
const (
	EventGameState = "game_state"
	EventTapUpdate = "tap_update"
	EventError     = "error"
)

// Event is the JSON envelope used in both directions.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type CreateGameRequest struct {
	Name string `json:"name"`
}

type JoinGameRequest struct {
	GameID string `json:"gameId"`
	Name   string `json:"name"`
}

// PlayerState is one roster entry inside GameState.
type PlayerState struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
	Taps  int    `json:"taps"`
}

// GameState is the full room snapshot. IsCreator is framed per recipient.
type GameState struct {
	GameID    string        `json:"gameId"`
	State     string        `json:"state"`
	Players   []PlayerState `json:"players"`
	TimeLeft  int           `json:"timeLeft"`
	IsCreator bool          `json:"isCreator"`
}

// TapUpdate avoids re-serializing the roster on every tap.
type TapUpdate struct {
	PlayerID string `json:"playerId"`
	Taps     int    `json:"taps"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
