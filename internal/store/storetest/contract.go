// Package storetest holds the behavior every store.Store implementation must share.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/store"
)

// Base is a millisecond-aligned instant every store can round-trip
var Base = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// Factory returns a fresh, empty store
type Factory func(t *testing.T) store.Store

// Run exercises the store contract against stores built by newStore
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateGame", func(t *testing.T) { testCreateGame(t, newStore(t)) })
	t.Run("Players", func(t *testing.T) { testPlayers(t, newStore(t)) })
	t.Run("UpdateCommits", func(t *testing.T) { testUpdateCommits(t, newStore(t)) })
	t.Run("UpdateRollsBack", func(t *testing.T) { testUpdateRollsBack(t, newStore(t)) })
	t.Run("UnknownGame", func(t *testing.T) { testUnknownGame(t, newStore(t)) })
	t.Run("ViewIsReadOnly", func(t *testing.T) { testViewIsReadOnly(t, newStore(t)) })
	t.Run("RecentActions", func(t *testing.T) { testRecentActions(t, newStore(t)) })
	t.Run("Results", func(t *testing.T) { testResults(t, newStore(t)) })
	t.Run("ConcurrentUpdates", func(t *testing.T) { testConcurrentUpdates(t, newStore(t)) })
}

// SeedGame creates a pending game with the given players seated in order
func SeedGame(t *testing.T, s store.Store, gameID string, playerIDs ...string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.CreateGame(ctx, &core.Game{
		ID: gameID, Status: core.StatusPending, Seed: 42, Width: 12, Height: 8,
		MaxPlayers: 4, Duration: 15 * time.Minute, CreatedAt: Base,
	}))
	for _, id := range playerIDs {
		require.NoError(t, s.SavePlayer(ctx, &core.Player{ID: id, DisplayName: "name-" + id, CreatedAt: Base}))
	}
	require.NoError(t, s.Update(ctx, gameID, func(tx store.Tx) error {
		for i, id := range playerIDs {
			if err := tx.AddPlayerState(&core.PlayerState{
				GameID: gameID, PlayerID: id, Gas: 100, TurnOrder: i, JoinedAt: Base, LastRegenAt: Base,
			}); err != nil {
				return err
			}
		}
		return nil
	}))
}

func testCreateGame(t *testing.T, s store.Store) {
	ctx := context.Background()
	g := &core.Game{ID: "g1", Status: core.StatusPending, Seed: 7, Width: 12, Height: 8, MaxPlayers: 2, Duration: time.Minute, CreatedAt: Base}
	require.NoError(t, s.CreateGame(ctx, g))
	assert.ErrorIs(t, s.CreateGame(ctx, g), store.ErrDuplicate)

	require.NoError(t, s.CreateGame(ctx, &core.Game{ID: "g2", Status: core.StatusActive, Width: 12, Height: 8, CreatedAt: Base.Add(time.Second)}))

	pending, err := s.ListGames(ctx, core.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "g1", pending[0].ID)
	assert.Equal(t, int64(7), pending[0].Seed)
	assert.Equal(t, time.Minute, pending[0].Duration)
	assert.True(t, pending[0].CreatedAt.Equal(Base))
	assert.True(t, pending[0].StartedAt.IsZero())

	active, err := s.ListGames(ctx, core.StatusActive)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func testPlayers(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.GetPlayer(ctx, "nobody")
	assert.ErrorIs(t, err, core.ErrPlayerNotFound)

	require.NoError(t, s.SavePlayer(ctx, &core.Player{ID: "p1", DisplayName: "first", CreatedAt: Base}))
	require.NoError(t, s.SavePlayer(ctx, &core.Player{ID: "p1", DisplayName: "renamed", IsBot: true, CreatedAt: Base}))

	p, err := s.GetPlayer(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", p.DisplayName)
	assert.True(t, p.IsBot)
}

func testUpdateCommits(t *testing.T, s store.Store) {
	ctx := context.Background()
	SeedGame(t, s, "g1", "b", "a")

	err := s.Update(ctx, "g1", func(tx store.Tx) error {
		g, err := tx.Game()
		if err != nil {
			return err
		}
		g.Status = core.StatusActive
		g.CurrentTurnPlayerID = "b"
		g.StartedAt = Base
		if err := tx.SaveGame(g); err != nil {
			return err
		}
		if err := tx.SaveTiles([]*core.Tile{
			{GameID: "g1", X: 1, Y: 0, OwnerID: "a", GasType: core.GasToxic},
			{GameID: "g1", X: 0, Y: 1, IsVent: true},
			{GameID: "g1", X: 0, Y: 0, DefenseBonus: 50, DefenseExpiresAt: Base.Add(time.Minute)},
		}); err != nil {
			return err
		}
		return tx.SavePlayerState(&core.PlayerState{PlayerID: "a", Gas: 55, TerritoryCount: 1, TurnOrder: 1, LastActionAt: Base})
	})
	require.NoError(t, err)

	err = s.Update(ctx, "g1", func(tx store.Tx) error {
		// upsert over an existing tile
		return tx.SaveTiles([]*core.Tile{{GameID: "g1", X: 0, Y: 0, OwnerID: "b", GasType: core.GasGreen}})
	})
	require.NoError(t, err)

	require.NoError(t, s.View(ctx, "g1", func(tx store.Tx) error {
		g, err := tx.Game()
		require.NoError(t, err)
		assert.Equal(t, core.StatusActive, g.Status)
		assert.Equal(t, "b", g.CurrentTurnPlayerID)
		assert.True(t, g.StartedAt.Equal(Base))

		players, err := tx.PlayerStates()
		require.NoError(t, err)
		require.Len(t, players, 2)
		assert.Equal(t, "b", players[0].PlayerID, "ordered by turn order")
		assert.Equal(t, "a", players[1].PlayerID)
		assert.Equal(t, 55, players[1].Gas)
		assert.Equal(t, 1, players[1].TerritoryCount)
		assert.True(t, players[1].LastActionAt.Equal(Base))
		assert.True(t, players[0].LastActionAt.IsZero())
		assert.Equal(t, "name-a", players[1].DisplayName)

		tiles, err := tx.Tiles()
		require.NoError(t, err)
		require.Len(t, tiles, 3)
		assert.Equal(t, core.Coordinate{X: 0, Y: 0}, tiles[0].Coord(), "row-major order")
		assert.Equal(t, core.Coordinate{X: 1, Y: 0}, tiles[1].Coord())
		assert.Equal(t, core.Coordinate{X: 0, Y: 1}, tiles[2].Coord())
		assert.Equal(t, "b", tiles[0].OwnerID)
		assert.Equal(t, 0, tiles[0].DefenseBonus)
		assert.True(t, tiles[0].DefenseExpiresAt.IsZero())
		assert.Equal(t, core.GasToxic, tiles[1].GasType)
		assert.True(t, tiles[2].IsVent)
		assert.False(t, tiles[2].IsOwned())
		return nil
	}))
}

var errAbort = errors.New("abort")

func testUpdateRollsBack(t *testing.T, s store.Store) {
	ctx := context.Background()
	SeedGame(t, s, "g1", "a")

	err := s.Update(ctx, "g1", func(tx store.Tx) error {
		if err := tx.SavePlayerState(&core.PlayerState{PlayerID: "a", Gas: 1}); err != nil {
			return err
		}
		if err := tx.SaveTiles([]*core.Tile{{GameID: "g1", X: 3, Y: 3, OwnerID: "a"}}); err != nil {
			return err
		}
		if err := tx.AppendAction(&core.ActionRecord{ID: "x1", PlayerID: "a", Kind: core.ActionEmit, Outcome: core.OutcomeClaimed, CreatedAt: Base}); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	require.NoError(t, s.View(ctx, "g1", func(tx store.Tx) error {
		players, err := tx.PlayerStates()
		require.NoError(t, err)
		assert.Equal(t, 100, players[0].Gas)
		tiles, err := tx.Tiles()
		require.NoError(t, err)
		assert.Empty(t, tiles)
		actions, err := tx.RecentActions(10)
		require.NoError(t, err)
		assert.Empty(t, actions)
		return nil
	}))

	err = s.Update(ctx, "g1", func(tx store.Tx) error {
		return tx.AddPlayerState(&core.PlayerState{PlayerID: "a", TurnOrder: 5, JoinedAt: Base})
	})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	err = s.Update(ctx, "g1", func(tx store.Tx) error {
		return tx.AddPlayerState(&core.PlayerState{PlayerID: "ghost", TurnOrder: 5, JoinedAt: Base})
	})
	assert.ErrorIs(t, err, core.ErrPlayerNotFound)

	err = s.Update(ctx, "g1", func(tx store.Tx) error {
		return tx.SavePlayerState(&core.PlayerState{PlayerID: "stranger"})
	})
	assert.ErrorIs(t, err, core.ErrNotParticipant)
}

func testUnknownGame(t *testing.T, s store.Store) {
	called := false
	err := s.Update(context.Background(), "missing", func(tx store.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, core.ErrGameNotFound)
	assert.False(t, called)

	err = s.View(context.Background(), "missing", func(tx store.Tx) error { return nil })
	assert.ErrorIs(t, err, core.ErrGameNotFound)
}

func testViewIsReadOnly(t *testing.T, s store.Store) {
	SeedGame(t, s, "g1", "a")
	err := s.View(context.Background(), "g1", func(tx store.Tx) error {
		return tx.SavePlayerState(&core.PlayerState{PlayerID: "a", Gas: 1})
	})
	assert.ErrorIs(t, err, store.ErrReadOnly)
}

func testRecentActions(t *testing.T, s store.Store) {
	ctx := context.Background()
	SeedGame(t, s, "g1", "a")

	require.NoError(t, s.Update(ctx, "g1", func(tx store.Tx) error {
		for i := 0; i < 60; i++ {
			if err := tx.AppendAction(&core.ActionRecord{
				ID: fmt.Sprintf("act-%02d", i), GameID: "g1", PlayerID: "a", Kind: core.ActionEmit,
				X: i % 12, Y: i / 12, GasSpent: 20, Outcome: core.OutcomeClaimed, Captured: 1,
				CreatedAt: Base.Add(time.Duration(i) * time.Second),
			}); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, s.View(ctx, "g1", func(tx store.Tx) error {
		all, err := tx.RecentActions(500)
		require.NoError(t, err)
		assert.Len(t, all, store.MaxRecentActions)
		assert.Equal(t, "act-59", all[0].ID, "newest first")
		assert.Equal(t, core.ActionEmit, all[0].Kind)
		assert.True(t, all[0].CreatedAt.Equal(Base.Add(59*time.Second)))

		few, err := tx.RecentActions(3)
		require.NoError(t, err)
		require.Len(t, few, 3)
		assert.Equal(t, "act-57", few[2].ID)

		one, err := tx.RecentActions(0)
		require.NoError(t, err)
		assert.Len(t, one, 1)
		return nil
	}))
}

func testResults(t *testing.T, s store.Store) {
	ctx := context.Background()
	SeedGame(t, s, "g1", "a", "b")

	results := []core.MatchResult{
		{GameID: "g1", PlayerID: "b", Placement: 2, TerritoryCount: 3, Tokens: 30, XP: 30, CreatedAt: Base},
		{GameID: "g1", PlayerID: "a", Placement: 1, TerritoryCount: 9, Gas: 40, Tokens: 50, XP: 50, CreatedAt: Base},
	}
	require.NoError(t, s.Update(ctx, "g1", func(tx store.Tx) error { return tx.AddResults(results) }))

	err := s.Update(ctx, "g1", func(tx store.Tx) error { return tx.AddResults(results) })
	assert.ErrorIs(t, err, store.ErrDuplicate)

	require.NoError(t, s.View(ctx, "g1", func(tx store.Tx) error {
		got, err := tx.Results()
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].PlayerID)
		assert.Equal(t, 1, got[0].Placement)
		assert.Equal(t, 40, got[0].Gas)
		assert.Equal(t, 50, got[0].XP)
		return nil
	}))
}

func testConcurrentUpdates(t *testing.T, s store.Store) {
	ctx := context.Background()
	SeedGame(t, s, "g1", "a")

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Update(ctx, "g1", func(tx store.Tx) error {
				players, err := tx.PlayerStates()
				if err != nil {
					return err
				}
				ps := players[0]
				ps.Gas++
				return tx.SavePlayerState(ps)
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.NoError(t, s.View(ctx, "g1", func(tx store.Tx) error {
		players, err := tx.PlayerStates()
		require.NoError(t, err)
		assert.Equal(t, 100+workers, players[0].Gas, "no lost updates")
		return nil
	}))
}
