// Package store defines the narrow transactional contract the engine needs.
// Every game is its own unit of mutual exclusion: Update runs the callback with
// exclusive access to one game and commits everything it wrote, or nothing.
package store

import (
	"context"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
)

// MaxRecentActions bounds every action log read
const MaxRecentActions = 50

// Store persists games, players and their per-game state
type Store interface {
	// CreateGame inserts a new game row
	CreateGame(ctx context.Context, g *core.Game) error
	// ListGames returns games in the given status, oldest first
	ListGames(ctx context.Context, status core.GameStatus) ([]*core.Game, error)

	// SavePlayer inserts or updates a player identity
	SavePlayer(ctx context.Context, p *core.Player) error
	// GetPlayer returns core.ErrPlayerNotFound for unknown ids
	GetPlayer(ctx context.Context, id string) (*core.Player, error)

	// Update runs fn with exclusive access to the game. A nil return commits
	// every write made through tx; an error rolls all of them back. Unknown
	// games fail with core.ErrGameNotFound before fn runs.
	Update(ctx context.Context, gameID string, fn func(tx Tx) error) error
	// View runs fn against a consistent snapshot. Writes are discarded.
	View(ctx context.Context, gameID string, fn func(tx Tx) error) error

	Close() error
}

// Tx is the view of one game inside a transaction
type Tx interface {
	Game() (*core.Game, error)
	SaveGame(g *core.Game) error

	// PlayerStates returns the participants ordered by turn order
	PlayerStates() ([]*core.PlayerState, error)
	// AddPlayerState seats a player; a second seat for the same player is rejected
	AddPlayerState(ps *core.PlayerState) error
	SavePlayerState(ps *core.PlayerState) error

	// Tiles returns every tile of the game in row-major order
	Tiles() ([]*core.Tile, error)
	// SaveTiles inserts or updates the given tiles
	SaveTiles(tiles []*core.Tile) error

	AppendAction(rec *core.ActionRecord) error
	// RecentActions returns at most limit records, newest first
	RecentActions(limit int) ([]*core.ActionRecord, error)

	// AddResults writes the final standings; it fails if results already exist
	AddResults(results []core.MatchResult) error
	// Results returns the standings in placement order
	Results() ([]core.MatchResult, error)
}

// ClampLimit bounds an action log limit to 1..MaxRecentActions
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxRecentActions {
		return MaxRecentActions
	}
	return limit
}
