package game

import (
	"context"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/store"
)

// GameState is a full read of one game
type GameState struct {
	Game    *core.Game
	Players []*core.PlayerState
	Tiles   []*core.Tile
}

// Board indexes the state's tiles
func (gs *GameState) Board() *core.Board {
	return core.NewBoard(gs.Game.Width, gs.Game.Height, gs.Tiles)
}

// Player returns the state of one participant, or nil
func (gs *GameState) Player(id string) *core.PlayerState {
	for _, ps := range gs.Players {
		if ps.PlayerID == id {
			return ps
		}
	}
	return nil
}

// snapshot is the working copy of a game inside a transaction. Mutations are
// tracked so only touched rows are written back.
type snapshot struct {
	game    *core.Game
	players []*core.PlayerState
	tiles   []*core.Tile
	board   *core.Board

	dirtyTiles   map[core.Coordinate]*core.Tile
	dirtyPlayers map[string]bool
	dirtyGame    bool
}

func loadSnapshot(tx store.Tx) (*snapshot, error) {
	g, err := tx.Game()
	if err != nil {
		return nil, err
	}
	players, err := tx.PlayerStates()
	if err != nil {
		return nil, err
	}
	tiles, err := tx.Tiles()
	if err != nil {
		return nil, err
	}
	return &snapshot{
		game:         g,
		players:      players,
		tiles:        tiles,
		board:        core.NewBoard(g.Width, g.Height, tiles),
		dirtyTiles:   make(map[core.Coordinate]*core.Tile),
		dirtyPlayers: make(map[string]bool),
	}, nil
}

func (s *snapshot) player(id string) *core.PlayerState {
	for _, ps := range s.players {
		if ps.PlayerID == id {
			return ps
		}
	}
	return nil
}

func (s *snapshot) touchTile(t *core.Tile) { s.dirtyTiles[t.Coord()] = t }
func (s *snapshot) touchPlayer(id string)  { s.dirtyPlayers[id] = true }
func (s *snapshot) touchGame()             { s.dirtyGame = true }
func (s *snapshot) hasBots() bool          { return len(s.bots()) > 0 }

func (s *snapshot) bots() []*core.PlayerState {
	var out []*core.PlayerState
	for _, ps := range s.players {
		if ps.IsBot {
			out = append(out, ps)
		}
	}
	return out
}

// state detaches the snapshot from the transaction
func (s *snapshot) state() *GameState {
	gs := &GameState{
		Game:    s.game.Clone(),
		Players: make([]*core.PlayerState, len(s.players)),
		Tiles:   make([]*core.Tile, len(s.tiles)),
	}
	for i, ps := range s.players {
		gs.Players[i] = ps.Clone()
	}
	for i, t := range s.tiles {
		gs.Tiles[i] = t.Clone()
	}
	return gs
}

// flush writes every touched row back through tx
func (s *snapshot) flush(tx store.Tx) error {
	if len(s.dirtyTiles) > 0 {
		tiles := make([]*core.Tile, 0, len(s.dirtyTiles))
		for _, t := range s.dirtyTiles {
			tiles = append(tiles, t)
		}
		core.SortTiles(tiles)
		if err := tx.SaveTiles(tiles); err != nil {
			return err
		}
	}
	for _, ps := range s.players {
		if !s.dirtyPlayers[ps.PlayerID] {
			continue
		}
		if err := tx.SavePlayerState(ps); err != nil {
			return err
		}
	}
	if s.dirtyGame {
		if err := tx.SaveGame(s.game); err != nil {
			return err
		}
	}
	return nil
}

// GetGameState returns the game with every participant's pending gas
// regeneration applied and persisted first.
func (e *Engine) GetGameState(ctx context.Context, gameID string) (*GameState, error) {
	if gameID == "" {
		return nil, core.ErrMissingField.WithMessagef("game id is required")
	}
	m := e.mech.Load()
	now := e.clock.Now()

	var out *GameState
	err := e.update(ctx, gameID, func(tx store.Tx) error {
		snap, err := loadSnapshot(tx)
		if err != nil {
			return err
		}
		if snap.game.Status == core.StatusActive {
			newProductionManager(m.ledger, e.logger).RegenerateAll(snap, now)
			if err := snap.flush(tx); err != nil {
				return err
			}
		}
		out = snap.state()
		return nil
	})
	if err != nil {
		e.logFailure(err, gameID, "get_game_state")
		return nil, err
	}
	return out, nil
}

// RecentActions returns the newest entries of the action log, newest first.
// limit is clamped to 1..store.MaxRecentActions.
func (e *Engine) RecentActions(ctx context.Context, gameID string, limit int) ([]*core.ActionRecord, error) {
	var out []*core.ActionRecord
	err := e.view(ctx, gameID, func(tx store.Tx) error {
		var err error
		out, err = tx.RecentActions(store.ClampLimit(limit))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
