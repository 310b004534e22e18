package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullBoard(w, h int) ([]*Tile, *Board) {
	tiles := make([]*Tile, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tiles = append(tiles, &Tile{GameID: "g", X: x, Y: y})
		}
	}
	return tiles, NewBoard(w, h, tiles)
}

func TestNewBoard(t *testing.T) {
	tiles, board := fullBoard(12, 8)

	assert.Equal(t, 12, board.W)
	assert.Equal(t, 8, board.H)
	require.Len(t, board.T, 96)
	for i, tile := range board.T {
		require.NotNil(t, tile, "tile %d should be indexed", i)
		x, y := board.XY(i)
		assert.Equal(t, x, tile.X)
		assert.Equal(t, y, tile.Y)
	}
	assert.Same(t, tiles[13], board.GetTile(1, 1))
}

func TestBoard_IgnoresOutOfBoundsTiles(t *testing.T) {
	board := NewBoard(2, 2, []*Tile{{X: 5, Y: 5}, {X: 1, Y: 1}})
	assert.Nil(t, board.GetTile(0, 0))
	assert.NotNil(t, board.GetTile(1, 1))
	assert.Nil(t, board.GetTile(5, 5))
}

func TestBoard_InBounds(t *testing.T) {
	_, board := fullBoard(12, 8)

	tests := []struct {
		name     string
		x, y     int
		expected bool
	}{
		{"top-left corner", 0, 0, true},
		{"bottom-right corner", 11, 7, true},
		{"negative x", -1, 2, false},
		{"negative y", 2, -1, false},
		{"x too large", 12, 2, false},
		{"y too large", 2, 8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, board.InBounds(tt.x, tt.y))
		})
	}
}

func TestBoard_Ownership(t *testing.T) {
	_, board := fullBoard(12, 8)
	board.GetTile(2, 2).OwnerID = "alice"
	board.GetTile(2, 2).GasType = GasYellow
	board.GetTile(3, 2).OwnerID = "alice"
	board.GetTile(3, 2).IsVent = true
	board.GetTile(8, 6).OwnerID = "bob"

	assert.Equal(t, 2, board.CountOwnedBy("alice"))
	assert.Len(t, board.OwnedBy("alice"), 2)
	assert.Equal(t, 1, board.VentsOwnedBy("alice"))
	assert.Equal(t, 0, board.VentsOwnedBy("bob"))
	assert.Equal(t, 3, board.OwnedCount())
	assert.Equal(t, GasYellow, board.AffinityOf("alice"))
	assert.Equal(t, GasGreen, board.AffinityOf("bob"), "unset affinity defaults to green")
	assert.Equal(t, GasGreen, board.AffinityOf("nobody"))
}

func TestBoard_IsAdjacentToOwned(t *testing.T) {
	_, board := fullBoard(12, 8)
	board.GetTile(4, 4).OwnerID = "alice"

	assert.True(t, board.IsAdjacentToOwned(Coordinate{5, 4}, "alice"))
	assert.True(t, board.IsAdjacentToOwned(Coordinate{3, 3}, "alice"))
	assert.False(t, board.IsAdjacentToOwned(Coordinate{5, 3}, "alice"))
	assert.False(t, board.IsAdjacentToOwned(Coordinate{4, 4}, "alice"), "a tile is not its own neighbor")
	assert.False(t, board.IsAdjacentToOwned(Coordinate{5, 4}, "bob"))
}

func TestTile_ActiveDefenseBonus(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		tile     Tile
		expected int
	}{
		{"no bonus", Tile{}, 0},
		{"active bonus", Tile{DefenseBonus: 50, DefenseExpiresAt: now.Add(time.Second)}, 50},
		{"expired bonus", Tile{DefenseBonus: 50, DefenseExpiresAt: now.Add(-time.Second)}, 0},
		{"expires exactly now", Tile{DefenseBonus: 50, DefenseExpiresAt: now}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.tile.ActiveDefenseBonus(now))
		})
	}
}

func TestSortTiles(t *testing.T) {
	tiles := []*Tile{{X: 1, Y: 1}, {X: 0, Y: 1}, {X: 5, Y: 0}}
	SortTiles(tiles)
	assert.Equal(t, Coordinate{5, 0}, tiles[0].Coord())
	assert.Equal(t, Coordinate{0, 1}, tiles[1].Coord())
	assert.Equal(t, Coordinate{1, 1}, tiles[2].Coord())
}
