// Package gamev1 defines the request and response messages of the game
// service. The same messages travel over gRPC (JSON codec) and HTTP.
package gamev1

import "time"

// ServiceName is the fully qualified gRPC service name
const ServiceName = "gasgrid.game.v1.GameService"

type Tile struct {
	X                int        `json:"x"`
	Y                int        `json:"y"`
	OwnerID          string     `json:"owner_id,omitempty"`
	GasType          string     `json:"gas_type,omitempty"`
	IsVent           bool       `json:"is_vent,omitempty"`
	DefenseBonus     int        `json:"defense_bonus,omitempty"`
	DefenseExpiresAt *time.Time `json:"defense_expires_at,omitempty"`
}

type Player struct {
	PlayerID       string     `json:"player_id"`
	DisplayName    string     `json:"display_name,omitempty"`
	IsBot          bool       `json:"is_bot,omitempty"`
	Gas            int        `json:"gas"`
	TerritoryCount int        `json:"territory_count"`
	TurnOrder      int        `json:"turn_order"`
	LastActionAt   *time.Time `json:"last_action_at,omitempty"`
}

type Game struct {
	ID                  string     `json:"id"`
	Status              string     `json:"status"`
	Width               int        `json:"width"`
	Height              int        `json:"height"`
	MaxPlayers          int        `json:"max_players"`
	DurationSeconds     int        `json:"duration_seconds"`
	CurrentTurnPlayerID string     `json:"current_turn_player_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	StartedAt           *time.Time `json:"started_at,omitempty"`
	EndedAt             *time.Time `json:"ended_at,omitempty"`
	EndReason           string     `json:"end_reason,omitempty"`
}

type Standing struct {
	PlayerID       string `json:"player_id"`
	Placement      int    `json:"placement"`
	TerritoryCount int    `json:"territory_count"`
	Gas            int    `json:"gas"`
	Tokens         int    `json:"tokens"`
	XP             int    `json:"xp"`
}

type ActionLogEntry struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"player_id"`
	Action    string    `json:"action"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	GasSpent  int       `json:"gas_spent"`
	Outcome   string    `json:"outcome"`
	Captured  int       `json:"captured"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateGameRequest struct {
	Width           int `json:"width,omitempty"`
	Height          int `json:"height,omitempty"`
	MaxPlayers      int `json:"max_players,omitempty"`
	DurationSeconds int `json:"duration_seconds,omitempty"`
}

type CreateGameResponse struct {
	Game Game `json:"game"`
}

// RegisterPlayerRequest creates a player. A bot without an id gets a
// generated handle from its display name.
type RegisterPlayerRequest struct {
	PlayerID    string `json:"player_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Bot         bool   `json:"bot,omitempty"`
}

type RegisterPlayerResponse struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name,omitempty"`
	IsBot       bool   `json:"is_bot,omitempty"`
}

type JoinGameRequest struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

type JoinGameResponse struct {
	GameStarted   bool `json:"game_started"`
	AlreadyJoined bool `json:"already_joined,omitempty"`
	TurnOrder     int  `json:"turn_order"`
}

type SubmitActionRequest struct {
	GameID         string `json:"game_id"`
	PlayerID       string `json:"player_id"`
	Action         string `json:"action"`
	X              int    `json:"x"`
	Y              int    `json:"y"`
	GasSpent       int    `json:"gas_spent"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// SubmitActionResponse carries both accepted actions and rejections. A
// rejection has Success false and a Code; a failed attack has Success false,
// Outcome "failed" and no Code.
type SubmitActionResponse struct {
	Success      bool   `json:"success"`
	Code         string `json:"code,omitempty"`
	Message      string `json:"message"`
	Outcome      string `json:"outcome,omitempty"`
	Captured     int    `json:"captured,omitempty"`
	GasRemaining int    `json:"gas_remaining"`
	GameEnded    bool   `json:"game_ended,omitempty"`
	NextPlayerID string `json:"next_player_id,omitempty"`
}

type GetGameStateRequest struct {
	GameID string `json:"game_id"`
}

type GetGameStateResponse struct {
	Game    Game     `json:"game"`
	Players []Player `json:"players"`
	Tiles   []Tile   `json:"tiles"`
}

type RunAISweepRequest struct {
	GameID string `json:"game_id"`
}

type RunAISweepResponse struct {
	ActionsPerformed int  `json:"actions_performed"`
	TurnSkipped      bool `json:"turn_skipped,omitempty"`
}

type EndGameRequest struct {
	GameID string `json:"game_id"`
	Reason string `json:"reason,omitempty"`
}

type EndGameResponse struct {
	NoOp      bool       `json:"no_op"`
	WinnerID  string     `json:"winner_id,omitempty"`
	Standings []Standing `json:"standings"`
}

type RecentActionsRequest struct {
	GameID string `json:"game_id"`
	Limit  int    `json:"limit,omitempty"`
}

type RecentActionsResponse struct {
	Actions []ActionLogEntry `json:"actions"`
}

type GetResultsRequest struct {
	GameID string `json:"game_id"`
}

type GetResultsResponse struct {
	Standings []Standing `json:"standings"`
}

// ErrorResponse is the body of a failed HTTP call
type ErrorResponse struct {
	Code    string `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
