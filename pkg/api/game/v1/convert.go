package gamev1

import (
	"time"

	"github.com/mitchelldurbincs/gasgrid/internal/game"
	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
)

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// FromGame converts a game row
func FromGame(g *core.Game) Game {
	return Game{
		ID:                  g.ID,
		Status:              string(g.Status),
		Width:               g.Width,
		Height:              g.Height,
		MaxPlayers:          g.MaxPlayers,
		DurationSeconds:     int(g.Duration / time.Second),
		CurrentTurnPlayerID: g.CurrentTurnPlayerID,
		CreatedAt:           g.CreatedAt,
		StartedAt:           optionalTime(g.StartedAt),
		EndedAt:             optionalTime(g.EndedAt),
		EndReason:           g.EndReason,
	}
}

// FromGameState converts a full snapshot. Defense bonuses that expired
// before now are reported as zero.
func FromGameState(gs *game.GameState, now time.Time) GetGameStateResponse {
	resp := GetGameStateResponse{
		Game:    FromGame(gs.Game),
		Players: make([]Player, 0, len(gs.Players)),
		Tiles:   make([]Tile, 0, len(gs.Tiles)),
	}
	for _, ps := range gs.Players {
		resp.Players = append(resp.Players, Player{
			PlayerID:       ps.PlayerID,
			DisplayName:    ps.DisplayName,
			IsBot:          ps.IsBot,
			Gas:            ps.Gas,
			TerritoryCount: ps.TerritoryCount,
			TurnOrder:      ps.TurnOrder,
			LastActionAt:   optionalTime(ps.LastActionAt),
		})
	}
	for _, t := range gs.Tiles {
		tile := Tile{
			X: t.X, Y: t.Y,
			OwnerID: t.OwnerID,
			GasType: string(t.GasType),
			IsVent:  t.IsVent,
		}
		if bonus := t.ActiveDefenseBonus(now); bonus > 0 {
			tile.DefenseBonus = bonus
			tile.DefenseExpiresAt = optionalTime(t.DefenseExpiresAt)
		}
		resp.Tiles = append(resp.Tiles, tile)
	}
	return resp
}

// FromStandings converts match results
func FromStandings(results []core.MatchResult) []Standing {
	out := make([]Standing, 0, len(results))
	for _, r := range results {
		out = append(out, Standing{
			PlayerID:       r.PlayerID,
			Placement:      r.Placement,
			TerritoryCount: r.TerritoryCount,
			Gas:            r.Gas,
			Tokens:         r.Tokens,
			XP:             r.XP,
		})
	}
	return out
}

// FromActions converts action log records
func FromActions(records []*core.ActionRecord) []ActionLogEntry {
	out := make([]ActionLogEntry, 0, len(records))
	for _, r := range records {
		out = append(out, ActionLogEntry{
			ID:        r.ID,
			PlayerID:  r.PlayerID,
			Action:    string(r.Kind),
			X:         r.X,
			Y:         r.Y,
			GasSpent:  r.GasSpent,
			Outcome:   string(r.Outcome),
			Captured:  r.Captured,
			CreatedAt: r.CreatedAt,
		})
	}
	return out
}

// ToActionRequest converts a submission into an engine request
func (r *SubmitActionRequest) ToActionRequest() game.ActionRequest {
	return game.ActionRequest{
		GameID:   r.GameID,
		PlayerID: r.PlayerID,
		Action:   core.ActionType(r.Action),
		Target:   core.Coordinate{X: r.X, Y: r.Y},
		GasSpent: r.GasSpent,
	}
}

// ToGameConfig converts a create request. Zero fields take the rule defaults.
func (r *CreateGameRequest) ToGameConfig() game.GameConfig {
	return game.GameConfig{
		Width:      r.Width,
		Height:     r.Height,
		MaxPlayers: r.MaxPlayers,
		Duration:   time.Duration(r.DurationSeconds) * time.Second,
	}
}

// FromActionResult converts an accepted action
func FromActionResult(res game.ActionResult) SubmitActionResponse {
	return SubmitActionResponse{
		Success:      res.Success(),
		Message:      res.Message,
		Outcome:      string(res.Outcome),
		Captured:     res.Captured,
		GasRemaining: res.GasRemaining,
		GameEnded:    res.GameEnded,
		NextPlayerID: res.NextPlayerID,
	}
}

// Rejection converts a refused action
func Rejection(err error) SubmitActionResponse {
	return SubmitActionResponse{
		Success: false,
		Code:    core.CodeOf(err),
		Message: core.MessageOf(err),
	}
}

// ErrorBody converts any engine error for an HTTP body
func ErrorBody(err error) ErrorResponse {
	return ErrorResponse{
		Code:    core.CodeOf(err),
		Kind:    core.KindOf(err).String(),
		Message: core.MessageOf(err),
	}
}
