// Package sqlite is a single-node Store backed by an embedded SQLite file.
// All access goes through one connection, so transactions never interleave.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/store"
)

// Store persists games in SQLite
type Store struct {
	conn *sqlx.DB
}

var _ store.Store = (*Store)(nil)

// Open opens or creates a SQLite database at the given path. ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate"
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) CreateGame(ctx context.Context, g *core.Game) error {
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var n int
	if err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM games WHERE id = ?", g.ID); err != nil {
		return err
	}
	if n > 0 {
		return store.ErrDuplicate
	}
	if _, err := tx.NamedExecContext(ctx, `INSERT INTO games
		(id, status, seed, width, height, max_players, duration_ms, current_turn_player_id,
		 turn_started_at, created_at, started_at, ended_at, end_reason)
		VALUES (:id, :status, :seed, :width, :height, :max_players, :duration_ms, :current_turn_player_id,
		 :turn_started_at, :created_at, :started_at, :ended_at, :end_reason)`, newGameRow(g)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) ListGames(ctx context.Context, status core.GameStatus) ([]*core.Game, error) {
	var rows []gameRow
	if err := s.conn.SelectContext(ctx, &rows,
		"SELECT * FROM games WHERE status = ? ORDER BY created_at, id", string(status)); err != nil {
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
	_, err := s.conn.ExecContext(ctx, `INSERT INTO players (id, display_name, is_bot, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name, is_bot = excluded.is_bot`,
		p.ID, p.DisplayName, boolInt(p.IsBot), toMillis(p.CreatedAt))
	return err
}

func (s *Store) GetPlayer(ctx context.Context, id string) (*core.Player, error) {
	var r playerRow
	err := s.conn.GetContext(ctx, &r, "SELECT * FROM players WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrPlayerNotFound.WithMessagef("player %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return r.toCore(), nil
}

func (s *Store) Update(ctx context.Context, gameID string, fn func(tx store.Tx) error) error {
	return s.run(ctx, gameID, false, fn)
}

func (s *Store) View(ctx context.Context, gameID string, fn func(tx store.Tx) error) error {
	return s.run(ctx, gameID, true, fn)
}

func (s *Store) run(ctx context.Context, gameID string, readOnly bool, fn func(tx store.Tx) error) error {
	sqlTx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer sqlTx.Rollback()

	var n int
	if err := sqlTx.GetContext(ctx, &n, "SELECT COUNT(*) FROM games WHERE id = ?", gameID); err != nil {
		return err
	}
	if n == 0 {
		return core.ErrGameNotFound.WithMessagef("game %s not found", gameID)
	}

	if err := fn(&tx{ctx: ctx, tx: sqlTx, gameID: gameID, readOnly: readOnly}); err != nil {
		return err
	}
	if readOnly {
		return nil
	}
	return sqlTx.Commit()
}
