package mapgen

import (
	"math/rand"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
)

// MapConfig holds configuration for map generation
type MapConfig struct {
	Width         int
	Height        int
	VentCount     int
	StartingTiles int
}

// DefaultMapConfig derives the map configuration from the rules
func DefaultMapConfig(r core.Rules) MapConfig {
	return MapConfig{
		Width:         r.BoardWidth,
		Height:        r.BoardHeight,
		VentCount:     r.VentCount,
		StartingTiles: r.StartingTiles,
	}
}

// Generator handles map generation with deterministic RNG
type Generator struct {
	config MapConfig
	rng    *rand.Rand
}

// NewGenerator creates a new map generator
func NewGenerator(config MapConfig, rng *rand.Rand) *Generator {
	return &Generator{
		config: config,
		rng:    rng,
	}
}

// Placement records the starting territory handed to one player
type Placement struct {
	PlayerID string
	Affinity core.GasType
	Coords   []core.Coordinate
}

// GenerateMap creates every tile of the game: vents first, then each player's
// starting tiles with one random affinity per player, then unclaimed filler.
// Tiles are returned in row-major order.
func (g *Generator) GenerateMap(gameID string, playerIDs []string) ([]*core.Tile, []Placement, error) {
	w, h := g.config.Width, g.config.Height
	if w <= 0 || h <= 0 {
		return nil, nil, core.ErrInvariant.WithMessagef("invalid board size %dx%d", w, h)
	}
	need := g.config.VentCount + len(playerIDs)*g.config.StartingTiles
	if need > w*h {
		return nil, nil, core.ErrInvariant.WithMessagef("board %dx%d cannot hold %d vents and %d starting tiles",
			w, h, g.config.VentCount, len(playerIDs)*g.config.StartingTiles)
	}

	tiles := make([]*core.Tile, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tiles[y*w+x] = &core.Tile{GameID: gameID, X: x, Y: y}
		}
	}
	board := core.NewBoard(w, h, tiles)
	taken := make([]bool, w*h)

	for i := 0; i < g.config.VentCount; i++ {
		idx := g.pickFree(board, taken)
		taken[idx] = true
		tiles[idx].IsVent = true
	}

	placements := make([]Placement, 0, len(playerIDs))
	for _, pid := range playerIDs {
		p := Placement{
			PlayerID: pid,
			Affinity: core.AllGasTypes[g.rng.Intn(len(core.AllGasTypes))],
		}
		for i := 0; i < g.config.StartingTiles; i++ {
			idx := g.pickFree(board, taken)
			taken[idx] = true
			tiles[idx].OwnerID = pid
			tiles[idx].GasType = p.Affinity
			p.Coords = append(p.Coords, tiles[idx].Coord())
		}
		placements = append(placements, p)
	}

	return tiles, placements, nil
}

// pickFree draws random coordinates until it finds one not yet taken.
// After a bounded number of collisions it falls back to the first free index.
func (g *Generator) pickFree(b *core.Board, taken []bool) int {
	maxAttempts := b.W * b.H * 4
	for attempts := 0; attempts < maxAttempts; attempts++ {
		idx := b.Idx(g.rng.Intn(b.W), g.rng.Intn(b.H))
		if !taken[idx] {
			return idx
		}
	}
	for idx, t := range taken {
		if !t {
			return idx
		}
	}
	// unreachable: GenerateMap checks capacity up front
	panic("mapgen: no free tile")
}
