package sqlite

import (
	"time"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
)

// Timestamps are stored as unix milliseconds; 0 is the zero time.
func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type playerRow struct {
	ID          string `db:"id"`
	DisplayName string `db:"display_name"`
	IsBot       int    `db:"is_bot"`
	CreatedAt   int64  `db:"created_at"`
}

func (r playerRow) toCore() *core.Player {
	return &core.Player{ID: r.ID, DisplayName: r.DisplayName, IsBot: r.IsBot != 0, CreatedAt: fromMillis(r.CreatedAt)}
}

type gameRow struct {
	ID                  string `db:"id"`
	Status              string `db:"status"`
	Seed                int64  `db:"seed"`
	Width               int    `db:"width"`
	Height              int    `db:"height"`
	MaxPlayers          int    `db:"max_players"`
	DurationMs          int64  `db:"duration_ms"`
	CurrentTurnPlayerID string `db:"current_turn_player_id"`
	TurnStartedAt       int64  `db:"turn_started_at"`
	CreatedAt           int64  `db:"created_at"`
	StartedAt           int64  `db:"started_at"`
	EndedAt             int64  `db:"ended_at"`
	EndReason           string `db:"end_reason"`
}

func newGameRow(g *core.Game) gameRow {
	return gameRow{
		ID:                  g.ID,
		Status:              string(g.Status),
		Seed:                g.Seed,
		Width:               g.Width,
		Height:              g.Height,
		MaxPlayers:          g.MaxPlayers,
		DurationMs:          g.Duration.Milliseconds(),
		CurrentTurnPlayerID: g.CurrentTurnPlayerID,
		TurnStartedAt:       toMillis(g.TurnStartedAt),
		CreatedAt:           toMillis(g.CreatedAt),
		StartedAt:           toMillis(g.StartedAt),
		EndedAt:             toMillis(g.EndedAt),
		EndReason:           g.EndReason,
	}
}

func (r gameRow) toCore() (*core.Game, error) {
	status, err := core.ParseGameStatus(r.Status)
	if err != nil {
		return nil, err
	}
	return &core.Game{
		ID:                  r.ID,
		Status:              status,
		Seed:                r.Seed,
		Width:               r.Width,
		Height:              r.Height,
		MaxPlayers:          r.MaxPlayers,
		Duration:            time.Duration(r.DurationMs) * time.Millisecond,
		CurrentTurnPlayerID: r.CurrentTurnPlayerID,
		TurnStartedAt:       fromMillis(r.TurnStartedAt),
		CreatedAt:           fromMillis(r.CreatedAt),
		StartedAt:           fromMillis(r.StartedAt),
		EndedAt:             fromMillis(r.EndedAt),
		EndReason:           r.EndReason,
	}, nil
}

type playerStateRow struct {
	GameID         string `db:"game_id"`
	PlayerID       string `db:"player_id"`
	Gas            int    `db:"gas"`
	TerritoryCount int    `db:"territory_count"`
	LastActionAt   int64  `db:"last_action_at"`
	LastRegenAt    int64  `db:"last_regen_at"`
	TurnOrder      int    `db:"turn_order"`
	JoinedAt       int64  `db:"joined_at"`
	DisplayName    string `db:"display_name"`
	IsBot          int    `db:"is_bot"`
}

func (r playerStateRow) toCore() *core.PlayerState {
	return &core.PlayerState{
		GameID:         r.GameID,
		PlayerID:       r.PlayerID,
		Gas:            r.Gas,
		TerritoryCount: r.TerritoryCount,
		LastActionAt:   fromMillis(r.LastActionAt),
		LastRegenAt:    fromMillis(r.LastRegenAt),
		TurnOrder:      r.TurnOrder,
		JoinedAt:       fromMillis(r.JoinedAt),
		DisplayName:    r.DisplayName,
		IsBot:          r.IsBot != 0,
	}
}

type tileRow struct {
	GameID           string `db:"game_id"`
	X                int    `db:"x"`
	Y                int    `db:"y"`
	OwnerID          string `db:"owner_id"`
	GasType          string `db:"gas_type"`
	DefenseBonus     int    `db:"defense_bonus"`
	DefenseExpiresAt int64  `db:"defense_expires_at"`
	IsVent           int    `db:"is_vent"`
}

func (r tileRow) toCore() *core.Tile {
	return &core.Tile{
		GameID:           r.GameID,
		X:                r.X,
		Y:                r.Y,
		OwnerID:          r.OwnerID,
		GasType:          core.GasType(r.GasType),
		DefenseBonus:     r.DefenseBonus,
		DefenseExpiresAt: fromMillis(r.DefenseExpiresAt),
		IsVent:           r.IsVent != 0,
	}
}

type actionRow struct {
	ID        string `db:"id"`
	GameID    string `db:"game_id"`
	PlayerID  string `db:"player_id"`
	Kind      string `db:"kind"`
	X         int    `db:"x"`
	Y         int    `db:"y"`
	GasSpent  int    `db:"gas_spent"`
	Outcome   string `db:"outcome"`
	Captured  int    `db:"captured"`
	CreatedAt int64  `db:"created_at"`
}

func (r actionRow) toCore() *core.ActionRecord {
	return &core.ActionRecord{
		ID:        r.ID,
		GameID:    r.GameID,
		PlayerID:  r.PlayerID,
		Kind:      core.ActionType(r.Kind),
		X:         r.X,
		Y:         r.Y,
		GasSpent:  r.GasSpent,
		Outcome:   core.Outcome(r.Outcome),
		Captured:  r.Captured,
		CreatedAt: fromMillis(r.CreatedAt),
	}
}

type resultRow struct {
	GameID         string `db:"game_id"`
	PlayerID       string `db:"player_id"`
	Placement      int    `db:"placement"`
	TerritoryCount int    `db:"territory_count"`
	Gas            int    `db:"gas"`
	Tokens         int    `db:"tokens"`
	XP             int    `db:"xp"`
	CreatedAt      int64  `db:"created_at"`
}

func (r resultRow) toCore() core.MatchResult {
	return core.MatchResult{
		GameID:         r.GameID,
		PlayerID:       r.PlayerID,
		Placement:      r.Placement,
		TerritoryCount: r.TerritoryCount,
		Gas:            r.Gas,
		Tokens:         r.Tokens,
		XP:             r.XP,
		CreatedAt:      fromMillis(r.CreatedAt),
	}
}
