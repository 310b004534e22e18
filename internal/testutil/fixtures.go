package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/store"
)

// Seat describes one participant of a fixture game
type Seat struct {
	ID           string
	Bot          bool
	Gas          int
	Affinity     core.GasType
	Owned        []core.Coordinate
	LastActionAt time.Time
}

// ActiveGame describes a game already in progress
type ActiveGame struct {
	ID     string
	Width  int
	Height int
	Seats  []Seat
	Vents  []core.Coordinate
	// Turn defaults to the first seat
	Turn string
	// Start defaults to Epoch
	Start time.Time
	// Duration defaults to 15 minutes
	Duration time.Duration
	// Prepare may adjust tiles before they are written
	Prepare func(b *core.Board)
}

// CreateTestTiles creates a full board of unclaimed tiles in row-major order
func CreateTestTiles(gameID string, width, height int) []*core.Tile {
	tiles := make([]*core.Tile, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			tiles = append(tiles, &core.Tile{GameID: gameID, X: x, Y: y})
		}
	}
	return tiles
}

// CreateTestBoard creates a board of unclaimed tiles
func CreateTestBoard(width, height int) *core.Board {
	return core.NewBoard(width, height, CreateTestTiles("test", width, height))
}

// SeedActiveGame writes an active game exactly as described, with territory
// counts consistent with the owned tiles.
func SeedActiveGame(t testing.TB, s store.Store, f ActiveGame) {
	t.Helper()
	ctx := context.Background()

	if f.Width == 0 {
		f.Width, f.Height = 12, 8
	}
	if f.Start.IsZero() {
		f.Start = Epoch
	}
	if f.Duration == 0 {
		f.Duration = 15 * time.Minute
	}
	if f.Turn == "" && len(f.Seats) > 0 {
		f.Turn = f.Seats[0].ID
	}

	tiles := CreateTestTiles(f.ID, f.Width, f.Height)
	board := core.NewBoard(f.Width, f.Height, tiles)
	for _, v := range f.Vents {
		board.GetTile(v.X, v.Y).IsVent = true
	}
	for _, seat := range f.Seats {
		affinity := seat.Affinity
		if affinity == core.GasUnset {
			affinity = core.GasGreen
		}
		for _, c := range seat.Owned {
			tile := board.GetTile(c.X, c.Y)
			require.NotNil(t, tile, "seat %s owns %s outside the board", seat.ID, c)
			tile.OwnerID = seat.ID
			tile.GasType = affinity
		}
	}
	if f.Prepare != nil {
		f.Prepare(board)
	}

	require.NoError(t, s.CreateGame(ctx, &core.Game{
		ID:         f.ID,
		Status:     core.StatusPending,
		Seed:       1,
		Width:      f.Width,
		Height:     f.Height,
		MaxPlayers: len(f.Seats),
		Duration:   f.Duration,
		CreatedAt:  f.Start,
	}))
	for _, seat := range f.Seats {
		require.NoError(t, s.SavePlayer(ctx, &core.Player{ID: seat.ID, DisplayName: seat.ID, IsBot: seat.Bot, CreatedAt: f.Start}))
	}

	require.NoError(t, s.Update(ctx, f.ID, func(tx store.Tx) error {
		for i, seat := range f.Seats {
			if err := tx.AddPlayerState(&core.PlayerState{
				GameID:         f.ID,
				PlayerID:       seat.ID,
				Gas:            seat.Gas,
				TerritoryCount: board.CountOwnedBy(seat.ID),
				LastActionAt:   seat.LastActionAt,
				LastRegenAt:    f.Start,
				TurnOrder:      i,
				JoinedAt:       f.Start,
			}); err != nil {
				return err
			}
		}
		if err := tx.SaveTiles(tiles); err != nil {
			return err
		}
		g, err := tx.Game()
		if err != nil {
			return err
		}
		g.Status = core.StatusActive
		g.CurrentTurnPlayerID = f.Turn
		g.StartedAt = f.Start
		g.TurnStartedAt = f.Start
		return tx.SaveGame(g)
	}))
}
