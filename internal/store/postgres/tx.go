package postgres

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/store"
)

type tx struct {
	db       *gorm.DB
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
	var m gameModel
	if err := t.db.Where("id = ?", t.gameID).First(&m).Error; err != nil {
		return nil, err
	}
	return m.toCore()
}

func (t *tx) SaveGame(g *core.Game) error {
	if err := t.write(); err != nil {
		return err
	}
	m := newGameModel(g)
	return t.db.Model(&gameModel{}).Where("id = ?", t.gameID).Updates(map[string]interface{}{
		"status":                 m.Status,
		"seed":                   m.Seed,
		"width":                  m.Width,
		"height":                 m.Height,
		"max_players":            m.MaxPlayers,
		"duration_ms":            m.DurationMs,
		"current_turn_player_id": m.CurrentTurnPlayerID,
		"turn_started_at":        m.TurnStartedAt,
		"started_at":             m.StartedAt,
		"ended_at":               m.EndedAt,
		"end_reason":             m.EndReason,
	}).Error
}

func (t *tx) PlayerStates() ([]*core.PlayerState, error) {
	var rows []playerStateView
	if err := t.db.Table("player_states AS ps").
		Select("ps.game_id, ps.player_id, ps.gas, ps.territory_count, ps.last_action_at, ps.last_regen_at, ps.turn_order, ps.joined_at, p.display_name, p.is_bot").
		Joins("JOIN players p ON p.id = ps.player_id").
		Where("ps.game_id = ?", t.gameID).
		Order("ps.turn_order").
		Scan(&rows).Error; err != nil {
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
	var n int64
	if err := t.db.Model(&playerModel{}).Where("id = ?", ps.PlayerID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return core.ErrPlayerNotFound.WithMessagef("player %s not found", ps.PlayerID)
	}
	if err := t.db.Model(&playerStateModel{}).
		Where("game_id = ? AND player_id = ?", t.gameID, ps.PlayerID).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return store.ErrDuplicate
	}
	m := playerStateModel{
		GameID:         t.gameID,
		PlayerID:       ps.PlayerID,
		Gas:            ps.Gas,
		TerritoryCount: ps.TerritoryCount,
		LastActionAt:   ptrTime(ps.LastActionAt),
		LastRegenAt:    ptrTime(ps.LastRegenAt),
		TurnOrder:      ps.TurnOrder,
		JoinedAt:       ps.JoinedAt.UTC(),
	}
	return t.db.Omit(clause.Associations).Create(&m).Error
}

func (t *tx) SavePlayerState(ps *core.PlayerState) error {
	if err := t.write(); err != nil {
		return err
	}
	res := t.db.Model(&playerStateModel{}).
		Where("game_id = ? AND player_id = ?", t.gameID, ps.PlayerID).
		Updates(map[string]interface{}{
			"gas":             ps.Gas,
			"territory_count": ps.TerritoryCount,
			"last_action_at":  ptrTime(ps.LastActionAt),
			"last_regen_at":   ptrTime(ps.LastRegenAt),
			"turn_order":      ps.TurnOrder,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return core.ErrNotParticipant
	}
	return nil
}

func (t *tx) Tiles() ([]*core.Tile, error) {
	var rows []tileModel
	if err := t.db.Where("game_id = ?", t.gameID).Order("y, x").Find(&rows).Error; err != nil {
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
	rows := make([]tileModel, len(tiles))
	for i, tile := range tiles {
		rows[i] = newTileModel(t.gameID, tile)
	}
	return t.db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_id"}, {Name: "x"}, {Name: "y"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner_id", "gas_type", "defense_bonus", "defense_expires_at", "is_vent"}),
	}).Create(&rows).Error
}

func (t *tx) AppendAction(rec *core.ActionRecord) error {
	if err := t.write(); err != nil {
		return err
	}
	m := actionModel{
		ID:        rec.ID,
		GameID:    t.gameID,
		PlayerID:  rec.PlayerID,
		Kind:      string(rec.Kind),
		X:         rec.X,
		Y:         rec.Y,
		GasSpent:  rec.GasSpent,
		Outcome:   string(rec.Outcome),
		Captured:  rec.Captured,
		CreatedAt: rec.CreatedAt.UTC(),
	}
	return t.db.Create(&m).Error
}

func (t *tx) RecentActions(limit int) ([]*core.ActionRecord, error) {
	var rows []actionModel
	if err := t.db.Where("game_id = ?", t.gameID).
		Order("seq DESC").
		Limit(store.ClampLimit(limit)).
		Find(&rows).Error; err != nil {
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
	var n int64
	if err := t.db.Model(&resultModel{}).Where("game_id = ?", t.gameID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return store.ErrDuplicate
	}
	if len(results) == 0 {
		return nil
	}
	rows := make([]resultModel, len(results))
	for i, r := range results {
		rows[i] = resultModel{
			GameID:         t.gameID,
			PlayerID:       r.PlayerID,
			Placement:      r.Placement,
			TerritoryCount: r.TerritoryCount,
			Gas:            r.Gas,
			Tokens:         r.Tokens,
			XP:             r.XP,
			CreatedAt:      r.CreatedAt.UTC(),
		}
	}
	return t.db.Create(&rows).Error
}

func (t *tx) Results() ([]core.MatchResult, error) {
	var rows []resultModel
	if err := t.db.Where("game_id = ?", t.gameID).Order("placement").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]core.MatchResult, len(rows))
	for i, r := range rows {
		out[i] = r.toCore()
	}
	return out, nil
}
