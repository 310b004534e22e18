// Package postgres is the production Store. A transaction locks its game row
// with SELECT ... FOR UPDATE, so actions on one game serialize while other
// games proceed in parallel.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/store"
)

// Store persists games in PostgreSQL through gorm
type Store struct {
	DB *gorm.DB
}

var _ store.Store = (*Store)(nil)

// Open connects to dsn and migrates the schema
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s := &Store{DB: db}
	if err := s.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Migrate creates or updates every table
func (s *Store) Migrate() error {
	return s.DB.AutoMigrate(
		&playerModel{},
		&gameModel{},
		&playerStateModel{},
		&tileModel{},
		&actionModel{},
		&resultModel{},
	)
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreateGame(ctx context.Context, g *core.Game) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&gameModel{}).Where("id = ?", g.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return store.ErrDuplicate
		}
		m := newGameModel(g)
		return tx.Create(&m).Error
	})
}

func (s *Store) ListGames(ctx context.Context, status core.GameStatus) ([]*core.Game, error) {
	var rows []gameModel
	if err := s.DB.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*core.Game, 0, len(rows))
	for _, r := range rows {
		g, err := r.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *Store) SavePlayer(ctx context.Context, p *core.Player) error {
	m := playerModel{ID: p.ID, DisplayName: p.DisplayName, IsBot: p.IsBot, CreatedAt: p.CreatedAt.UTC()}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "is_bot"}),
	}).Create(&m).Error
}

func (s *Store) GetPlayer(ctx context.Context, id string) (*core.Player, error) {
	var m playerModel
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrPlayerNotFound.WithMessagef("player %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &core.Player{ID: m.ID, DisplayName: m.DisplayName, IsBot: m.IsBot, CreatedAt: m.CreatedAt.UTC()}, nil
}

func (s *Store) Update(ctx context.Context, gameID string, fn func(tx store.Tx) error) error {
	return s.run(ctx, gameID, "UPDATE", fn)
}

func (s *Store) View(ctx context.Context, gameID string, fn func(tx store.Tx) error) error {
	return s.run(ctx, gameID, "SHARE", fn)
}

func (s *Store) run(ctx context.Context, gameID, strength string, fn func(tx store.Tx) error) error {
	return s.DB.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		var locked gameModel
		err := gtx.Clauses(clause.Locking{Strength: strength}).
			Where("id = ?", gameID).
			First(&locked).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.ErrGameNotFound.WithMessagef("game %s not found", gameID)
		}
		if err != nil {
			return err
		}
		return fn(&tx{db: gtx, gameID: gameID, readOnly: strength != "UPDATE"})
	})
}
