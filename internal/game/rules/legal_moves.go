package rules

import "github.com/mitchelldurbincs/gasgrid/internal/game/core"

// LegalMoveCalculator decides which tiles a player may target
type LegalMoveCalculator struct{}

// NewLegalMoveCalculator creates a new legal move calculator
func NewLegalMoveCalculator() *LegalMoveCalculator {
	return &LegalMoveCalculator{}
}

// CheckTarget validates the target of an action for the player. firstMove is
// true when a player without territory claims a tile directly with emit.
func (lmc *LegalMoveCalculator) CheckTarget(board *core.Board, playerID string, action core.ActionType, c core.Coordinate) (firstMove bool, err error) {
	tile := board.GetTile(c.X, c.Y)
	if tile == nil {
		return false, core.ErrTileNotFound.WithMessagef("no tile at %s", c)
	}

	if action == core.ActionDefend {
		if !tile.OwnedBy(playerID) {
			return false, core.ErrDefendUnowned
		}
		return false, nil
	}

	if tile.OwnedBy(playerID) {
		return false, core.ErrAlreadyOwned
	}

	if board.CountOwnedBy(playerID) == 0 {
		if action == core.ActionEmit && !tile.IsOwned() && !tile.IsVent {
			return true, nil
		}
		return false, core.ErrNotAdjacent.WithMessagef("first move must emit on an unclaimed non-vent tile")
	}

	if !board.IsAdjacentToOwned(c, playerID) {
		return false, core.ErrNotAdjacent
	}
	return false, nil
}

// FrontierTiles returns every tile the player does not own that touches the
// player's territory, in row-major order.
func (lmc *LegalMoveCalculator) FrontierTiles(board *core.Board, playerID string) []*core.Tile {
	var out []*core.Tile
	for _, t := range board.T {
		if t == nil || t.OwnedBy(playerID) {
			continue
		}
		if board.IsAdjacentToOwned(t.Coord(), playerID) {
			out = append(out, t)
		}
	}
	return out
}

// OpeningTiles returns the tiles a player without territory may claim
func (lmc *LegalMoveCalculator) OpeningTiles(board *core.Board) []*core.Tile {
	var out []*core.Tile
	for _, t := range board.T {
		if t != nil && !t.IsOwned() && !t.IsVent {
			out = append(out, t)
		}
	}
	return out
}
