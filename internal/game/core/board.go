package core

import "sort"

// Board indexes a game's tiles by coordinate. It holds pointers into the
// caller's slice, so mutations through the board are visible to the caller.
type Board struct {
	W, H int
	T    []*Tile // length = W*H (row-major), nil where no tile exists
}

// NewBoard builds a board over the given tiles. Tiles outside the bounds are ignored.
func NewBoard(w, h int, tiles []*Tile) *Board {
	b := &Board{W: w, H: h, T: make([]*Tile, w*h)}
	for _, t := range tiles {
		if b.InBounds(t.X, t.Y) {
			b.T[b.Idx(t.X, t.Y)] = t
		}
	}
	return b
}

func (b *Board) Idx(x, y int) int      { return y*b.W + x }
func (b *Board) XY(idx int) (int, int) { return idx % b.W, idx / b.W }

// InBounds checks if coordinates are within board boundaries
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.W && y >= 0 && y < b.H
}

// GetTile safely returns a tile pointer if coordinates are valid, nil otherwise
func (b *Board) GetTile(x, y int) *Tile {
	if !b.InBounds(x, y) {
		return nil
	}
	return b.T[b.Idx(x, y)]
}

// NeighborTiles returns the existing tiles around c
func (b *Board) NeighborTiles(c Coordinate) []*Tile {
	out := make([]*Tile, 0, 6)
	for _, n := range c.ValidNeighbors(b.W, b.H) {
		if t := b.GetTile(n.X, n.Y); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// OwnedBy returns every tile owned by the player
func (b *Board) OwnedBy(playerID string) []*Tile {
	var out []*Tile
	for _, t := range b.T {
		if t != nil && t.OwnedBy(playerID) {
			out = append(out, t)
		}
	}
	return out
}

// CountOwnedBy returns how many tiles the player owns
func (b *Board) CountOwnedBy(playerID string) int {
	n := 0
	for _, t := range b.T {
		if t != nil && t.OwnedBy(playerID) {
			n++
		}
	}
	return n
}

// VentsOwnedBy returns how many vent tiles the player owns
func (b *Board) VentsOwnedBy(playerID string) int {
	n := 0
	for _, t := range b.T {
		if t != nil && t.IsVent && t.OwnedBy(playerID) {
			n++
		}
	}
	return n
}

// IsAdjacentToOwned reports whether c touches at least one tile owned by the player
func (b *Board) IsAdjacentToOwned(c Coordinate, playerID string) bool {
	for _, t := range b.NeighborTiles(c) {
		if t.OwnedBy(playerID) {
			return true
		}
	}
	return false
}

// AffinityOf returns the gas type of any tile the player owns, defaulting to green
func (b *Board) AffinityOf(playerID string) GasType {
	for _, t := range b.T {
		if t != nil && t.OwnedBy(playerID) && t.GasType != GasUnset {
			return t.GasType
		}
	}
	return GasGreen
}

// OwnedCount returns the number of owned tiles on the board
func (b *Board) OwnedCount() int {
	n := 0
	for _, t := range b.T {
		if t != nil && t.IsOwned() {
			n++
		}
	}
	return n
}

// SortTiles orders tiles row-major, which is the order every store returns them in
func SortTiles(tiles []*Tile) {
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Y != tiles[j].Y {
			return tiles[i].Y < tiles[j].Y
		}
		return tiles[i].X < tiles[j].X
	})
}
