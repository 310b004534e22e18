package postgres

import (
	"time"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
)

type playerModel struct {
	ID          string    `gorm:"primaryKey"`
	DisplayName string    `gorm:"not null"`
	IsBot       bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (playerModel) TableName() string { return "players" }

type gameModel struct {
	ID                  string `gorm:"primaryKey"`
	Status              string `gorm:"type:varchar(16);index;not null"`
	Seed                int64  `gorm:"not null"`
	Width               int    `gorm:"not null"`
	Height              int    `gorm:"not null"`
	MaxPlayers          int    `gorm:"not null"`
	DurationMs          int64  `gorm:"not null"`
	CurrentTurnPlayerID string
	TurnStartedAt       *time.Time
	CreatedAt           time.Time `gorm:"not null"`
	StartedAt           *time.Time
	EndedAt             *time.Time
	EndReason           string
}

func (gameModel) TableName() string { return "games" }

type playerStateModel struct {
	GameID         string `gorm:"primaryKey"`
	PlayerID       string `gorm:"primaryKey"`
	Gas            int    `gorm:"not null"`
	TerritoryCount int    `gorm:"not null"`
	LastActionAt   *time.Time
	LastRegenAt    *time.Time
	TurnOrder      int       `gorm:"not null"`
	JoinedAt       time.Time `gorm:"not null"`

	Game   gameModel   `gorm:"foreignKey:GameID"`
	Player playerModel `gorm:"foreignKey:PlayerID"`
}

func (playerStateModel) TableName() string { return "player_states" }

type tileModel struct {
	GameID           string `gorm:"primaryKey"`
	X                int    `gorm:"primaryKey;autoIncrement:false"`
	Y                int    `gorm:"primaryKey;autoIncrement:false"`
	OwnerID          string
	GasType          string `gorm:"type:varchar(8)"`
	DefenseBonus     int
	DefenseExpiresAt *time.Time
	IsVent           bool

	Game gameModel `gorm:"foreignKey:GameID"`
}

func (tileModel) TableName() string { return "tiles" }

type actionModel struct {
	Seq       int64     `gorm:"primaryKey;autoIncrement"`
	ID        string    `gorm:"uniqueIndex;not null"`
	GameID    string    `gorm:"index;not null"`
	PlayerID  string    `gorm:"not null"`
	Kind      string    `gorm:"type:varchar(8);not null"`
	X         int       `gorm:"not null"`
	Y         int       `gorm:"not null"`
	GasSpent  int       `gorm:"not null"`
	Outcome   string    `gorm:"type:varchar(16);not null"`
	Captured  int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (actionModel) TableName() string { return "actions" }

type resultModel struct {
	GameID         string    `gorm:"primaryKey"`
	PlayerID       string    `gorm:"primaryKey"`
	Placement      int       `gorm:"not null"`
	TerritoryCount int       `gorm:"not null"`
	Gas            int       `gorm:"not null"`
	Tokens         int       `gorm:"not null"`
	XP             int       `gorm:"column:xp;not null"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (resultModel) TableName() string { return "match_results" }

func ptrTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func valTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

func newGameModel(g *core.Game) gameModel {
	return gameModel{
		ID:                  g.ID,
		Status:              string(g.Status),
		Seed:                g.Seed,
		Width:               g.Width,
		Height:              g.Height,
		MaxPlayers:          g.MaxPlayers,
		DurationMs:          g.Duration.Milliseconds(),
		CurrentTurnPlayerID: g.CurrentTurnPlayerID,
		TurnStartedAt:       ptrTime(g.TurnStartedAt),
		CreatedAt:           g.CreatedAt.UTC(),
		StartedAt:           ptrTime(g.StartedAt),
		EndedAt:             ptrTime(g.EndedAt),
		EndReason:           g.EndReason,
	}
}

func (m gameModel) toCore() (*core.Game, error) {
	status, err := core.ParseGameStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return &core.Game{
		ID:                  m.ID,
		Status:              status,
		Seed:                m.Seed,
		Width:               m.Width,
		Height:              m.Height,
		MaxPlayers:          m.MaxPlayers,
		Duration:            time.Duration(m.DurationMs) * time.Millisecond,
		CurrentTurnPlayerID: m.CurrentTurnPlayerID,
		TurnStartedAt:       valTime(m.TurnStartedAt),
		CreatedAt:           m.CreatedAt.UTC(),
		StartedAt:           valTime(m.StartedAt),
		EndedAt:             valTime(m.EndedAt),
		EndReason:           m.EndReason,
	}, nil
}

// playerStateView is a player_states row joined with its player
type playerStateView struct {
	GameID         string
	PlayerID       string
	Gas            int
	TerritoryCount int
	LastActionAt   *time.Time
	LastRegenAt    *time.Time
	TurnOrder      int
	JoinedAt       time.Time
	DisplayName    string
	IsBot          bool
}

func (v playerStateView) toCore() *core.PlayerState {
	return &core.PlayerState{
		GameID:         v.GameID,
		PlayerID:       v.PlayerID,
		Gas:            v.Gas,
		TerritoryCount: v.TerritoryCount,
		LastActionAt:   valTime(v.LastActionAt),
		LastRegenAt:    valTime(v.LastRegenAt),
		TurnOrder:      v.TurnOrder,
		JoinedAt:       v.JoinedAt.UTC(),
		DisplayName:    v.DisplayName,
		IsBot:          v.IsBot,
	}
}

func newTileModel(gameID string, t *core.Tile) tileModel {
	return tileModel{
		GameID:           gameID,
		X:                t.X,
		Y:                t.Y,
		OwnerID:          t.OwnerID,
		GasType:          string(t.GasType),
		DefenseBonus:     t.DefenseBonus,
		DefenseExpiresAt: ptrTime(t.DefenseExpiresAt),
		IsVent:           t.IsVent,
	}
}

func (m tileModel) toCore() *core.Tile {
	return &core.Tile{
		GameID:           m.GameID,
		X:                m.X,
		Y:                m.Y,
		OwnerID:          m.OwnerID,
		GasType:          core.GasType(m.GasType),
		DefenseBonus:     m.DefenseBonus,
		DefenseExpiresAt: valTime(m.DefenseExpiresAt),
		IsVent:           m.IsVent,
	}
}

func (m actionModel) toCore() *core.ActionRecord {
	return &core.ActionRecord{
		ID:        m.ID,
		GameID:    m.GameID,
		PlayerID:  m.PlayerID,
		Kind:      core.ActionType(m.Kind),
		X:         m.X,
		Y:         m.Y,
		GasSpent:  m.GasSpent,
		Outcome:   core.Outcome(m.Outcome),
		Captured:  m.Captured,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func (m resultModel) toCore() core.MatchResult {
	return core.MatchResult{
		GameID:         m.GameID,
		PlayerID:       m.PlayerID,
		Placement:      m.Placement,
		TerritoryCount: m.TerritoryCount,
		Gas:            m.Gas,
		Tokens:         m.Tokens,
		XP:             m.XP,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}
