package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/store"
)

type tx struct {
	ctx      context.Context
	tx       *sqlx.Tx
	gameID   string
	readOnly bool
}

func (t *tx) write() error {
	if t.readOnly {
		return store.ErrReadOnly
	}
	return nil
}

func (t *tx) Game() (*core.Game, error) {
	var r gameRow
	if err := t.tx.GetContext(t.ctx, &r, "SELECT * FROM games WHERE id = ?", t.gameID); err != nil {
		return nil, err
	}
	return r.toCore()
}

func (t *tx) SaveGame(g *core.Game) error {
	if err := t.write(); err != nil {
		return err
	}
	_, err := t.tx.NamedExecContext(t.ctx, `UPDATE games SET
		status = :status, seed = :seed, width = :width, height = :height, max_players = :max_players,
		duration_ms = :duration_ms, current_turn_player_id = :current_turn_player_id,
		turn_started_at = :turn_started_at, started_at = :started_at, ended_at = :ended_at,
		end_reason = :end_reason
		WHERE id = :id`, newGameRow(g))
	return err
}

func (t *tx) PlayerStates() ([]*core.PlayerState, error) {
	var rows []playerStateRow
	if err := t.tx.SelectContext(t.ctx, &rows, `SELECT
		ps.game_id, ps.player_id, ps.gas, ps.territory_count, ps.last_action_at, ps.last_regen_at,
		ps.turn_order, ps.joined_at, p.display_name, p.is_bot
		FROM player_states ps JOIN players p ON p.id = ps.player_id
		WHERE ps.game_id = ? ORDER BY ps.turn_order`, t.gameID); err != nil {
		return nil, err
	}
	out := make([]*core.PlayerState, len(rows))
	for i, r := range rows {
		out[i] = r.toCore()
	}
	return out, nil
}

func (t *tx) AddPlayerState(ps *core.PlayerState) error {
	if err := t.write(); err != nil {
		return err
	}
	var n int
	if err := t.tx.GetContext(t.ctx, &n, "SELECT COUNT(*) FROM players WHERE id = ?", ps.PlayerID); err != nil {
		return err
	}
	if n == 0 {
		return core.ErrPlayerNotFound.WithMessagef("player %s not found", ps.PlayerID)
	}
	if err := t.tx.GetContext(t.ctx, &n,
		"SELECT COUNT(*) FROM player_states WHERE game_id = ? AND player_id = ?", t.gameID, ps.PlayerID); err != nil {
		return err
	}
	if n > 0 {
		return store.ErrDuplicate
	}
	_, err := t.tx.ExecContext(t.ctx, `INSERT INTO player_states
		(game_id, player_id, gas, territory_count, last_action_at, last_regen_at, turn_order, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.gameID, ps.PlayerID, ps.Gas, ps.TerritoryCount, toMillis(ps.LastActionAt),
		toMillis(ps.LastRegenAt), ps.TurnOrder, toMillis(ps.JoinedAt))
	return err
}

func (t *tx) SavePlayerState(ps *core.PlayerState) error {
	if err := t.write(); err != nil {
		return err
	}
	res, err := t.tx.ExecContext(t.ctx, `UPDATE player_states SET
		gas = ?, territory_count = ?, last_action_at = ?, last_regen_at = ?, turn_order = ?
		WHERE game_id = ? AND player_id = ?`,
		ps.Gas, ps.TerritoryCount, toMillis(ps.LastActionAt), toMillis(ps.LastRegenAt), ps.TurnOrder,
		t.gameID, ps.PlayerID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotParticipant
	}
	return nil
}

func (t *tx) Tiles() ([]*core.Tile, error) {
	var rows []tileRow
	if err := t.tx.SelectContext(t.ctx, &rows,
		"SELECT * FROM tiles WHERE game_id = ? ORDER BY y, x", t.gameID); err != nil {
		return nil, err
	}
	out := make([]*core.Tile, len(rows))
	for i, r := range rows {
		out[i] = r.toCore()
	}
	return out, nil
}

func (t *tx) SaveTiles(tiles []*core.Tile) error {
	if err := t.write(); err != nil {
		return err
	}
	if len(tiles) == 0 {
		return nil
	}
	stmt, err := t.tx.PreparexContext(t.ctx, `INSERT INTO tiles
		(game_id, x, y, owner_id, gas_type, defense_bonus, defense_expires_at, is_vent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id, x, y) DO UPDATE SET
			owner_id = excluded.owner_id,
			gas_type = excluded.gas_type,
			defense_bonus = excluded.defense_bonus,
			defense_expires_at = excluded.defense_expires_at,
			is_vent = excluded.is_vent`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, tile := range tiles {
		if _, err := stmt.ExecContext(t.ctx, t.gameID, tile.X, tile.Y, tile.OwnerID, string(tile.GasType),
			tile.DefenseBonus, toMillis(tile.DefenseExpiresAt), boolInt(tile.IsVent)); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) AppendAction(rec *core.ActionRecord) error {
	if err := t.write(); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(t.ctx, `INSERT INTO actions
		(id, game_id, player_id, kind, x, y, gas_spent, outcome, captured, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, t.gameID, rec.PlayerID, string(rec.Kind), rec.X, rec.Y, rec.GasSpent,
		string(rec.Outcome), rec.Captured, toMillis(rec.CreatedAt))
	return err
}

func (t *tx) RecentActions(limit int) ([]*core.ActionRecord, error) {
	var rows []actionRow
	if err := t.tx.SelectContext(t.ctx, &rows, `SELECT
		id, game_id, player_id, kind, x, y, gas_spent, outcome, captured, created_at
		FROM actions WHERE game_id = ? ORDER BY seq DESC LIMIT ?`,
		t.gameID, store.ClampLimit(limit)); err != nil {
		return nil, err
	}
	out := make([]*core.ActionRecord, len(rows))
	for i, r := range rows {
		out[i] = r.toCore()
	}
	return out, nil
}

func (t *tx) AddResults(results []core.MatchResult) error {
	if err := t.write(); err != nil {
		return err
	}
	var n int
	if err := t.tx.GetContext(t.ctx, &n, "SELECT COUNT(*) FROM match_results WHERE game_id = ?", t.gameID); err != nil {
		return err
	}
	if n > 0 {
		return store.ErrDuplicate
	}
	for _, r := range results {
		if _, err := t.tx.ExecContext(t.ctx, `INSERT INTO match_results
			(game_id, player_id, placement, territory_count, gas, tokens, xp, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.gameID, r.PlayerID, r.Placement, r.TerritoryCount, r.Gas, r.Tokens, r.XP, toMillis(r.CreatedAt)); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) Results() ([]core.MatchResult, error) {
	var rows []resultRow
	if err := t.tx.SelectContext(t.ctx, &rows,
		"SELECT * FROM match_results WHERE game_id = ? ORDER BY placement", t.gameID); err != nil {
		return nil, err
	}
	out := make([]core.MatchResult, len(rows))
	for i, r := range rows {
		out[i] = r.toCore()
	}
	return out, nil
}
