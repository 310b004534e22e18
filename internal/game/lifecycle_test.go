package game

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/game/events"
	"github.com/mitchelldurbincs/gasgrid/internal/testutil"
)

func TestCreateGame(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	g, err := env.engine.CreateGame(ctx, GameConfig{MaxPlayers: 2})
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, core.StatusPending, g.Status)
	assert.Equal(t, 12, g.Width)
	assert.Equal(t, 8, g.Height)
	assert.Equal(t, 2, g.MaxPlayers)
	assert.Equal(t, 15*time.Minute, g.Duration)
	assert.Equal(t, testutil.Epoch, g.CreatedAt)
	assert.Equal(t, []string{events.TypeGameCreated}, env.events.types())

	_, err = env.engine.CreateGame(ctx, GameConfig{Width: 1, Height: 8})
	assert.ErrorIs(t, err, core.ErrInvalidCoordinates)
	_, err = env.engine.CreateGame(ctx, GameConfig{MaxPlayers: -1})
	assert.ErrorIs(t, err, core.ErrMissingField)
}

func TestProvisionBot(t *testing.T) {
	env := newTestEnv(t)

	bot, err := env.engine.ProvisionBot(context.Background(), "Gas Baron")
	require.NoError(t, err)
	assert.True(t, bot.IsBot)
	assert.True(t, strings.HasPrefix(bot.ID, "bot-gas-baron-"), bot.ID)
	assert.Len(t, bot.ID, len("bot-gas-baron-")+8)
	assert.Equal(t, "Gas Baron", bot.DisplayName)

	anon, err := env.engine.ProvisionBot(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(anon.ID, "bot-bot-"), anon.ID)
	assert.NotEqual(t, bot.ID, anon.ID)

	_, err = env.engine.RegisterPlayer(context.Background(), "", "nobody", false)
	assert.ErrorIs(t, err, core.ErrMissingField)
}

func TestJoinGame_StartsWhenFull(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	g, err := env.engine.CreateGame(ctx, GameConfig{MaxPlayers: 2})
	require.NoError(t, err)
	_, err = env.engine.RegisterPlayer(ctx, "alice", "Alice", false)
	require.NoError(t, err)
	bot, err := env.engine.ProvisionBot(ctx, "Fumes")
	require.NoError(t, err)

	res, err := env.engine.JoinGame(ctx, g.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, JoinResult{TurnOrder: 0}, res)

	res, err = env.engine.JoinGame(ctx, g.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, JoinResult{AlreadyJoined: true, TurnOrder: 0}, res, "rejoining is idempotent")

	env.clock.Advance(time.Minute)
	res, err = env.engine.JoinGame(ctx, g.ID, bot.ID)
	require.NoError(t, err)
	assert.True(t, res.GameStarted)
	assert.Equal(t, 1, res.TurnOrder)

	gs := env.state(t, g.ID)
	assert.Equal(t, core.StatusActive, gs.Game.Status)
	assert.Equal(t, "alice", gs.Game.CurrentTurnPlayerID)
	assert.Equal(t, testutil.Epoch.Add(time.Minute), gs.Game.StartedAt)
	require.Len(t, gs.Tiles, 96)

	board := gs.Board()
	vents := 0
	for _, tile := range board.T {
		require.NotNil(t, tile)
		if tile.IsVent {
			vents++
			assert.False(t, tile.IsOwned(), "vents start unclaimed")
		}
	}
	assert.Equal(t, 5, vents)
	for _, ps := range gs.Players {
		assert.Equal(t, 3, ps.TerritoryCount)
		assert.Equal(t, 100, ps.Gas)
		assert.Equal(t, gs.Game.StartedAt, ps.LastRegenAt)
		affinity := board.OwnedBy(ps.PlayerID)[0].GasType
		for _, tile := range board.OwnedBy(ps.PlayerID) {
			assert.Equal(t, affinity, tile.GasType, "one affinity per player")
		}
	}
	assertInvariants(t, gs)

	started := env.events.last(events.TypeGameStarted).(*events.GameStartedEvent)
	assert.True(t, started.HasBots)
	assert.Equal(t, 2, started.NumPlayers)
	assert.Equal(t, gs.Game.StartedAt.Add(15*time.Minute), started.EndsAt())

	res, err = env.engine.JoinGame(ctx, g.ID, bot.ID)
	require.NoError(t, err)
	assert.Equal(t, JoinResult{GameStarted: true, AlreadyJoined: true, TurnOrder: 1}, res)
}

func TestJoinGame_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	testutil.SeedActiveGame(t, env.store, twoPlayerGame(core.GasGreen))
	_, err := env.engine.RegisterPlayer(ctx, "carol", "", false)
	require.NoError(t, err)

	_, err = env.engine.JoinGame(ctx, "g1", "carol")
	assert.ErrorIs(t, err, core.ErrGameNotJoinable)

	_, err = env.engine.JoinGame(ctx, "g1", "ghost")
	assert.ErrorIs(t, err, core.ErrPlayerNotFound)

	_, err = env.engine.JoinGame(ctx, "nope", "carol")
	assert.ErrorIs(t, err, core.ErrGameNotFound)

	_, err = env.engine.JoinGame(ctx, "", "carol")
	assert.ErrorIs(t, err, core.ErrMissingField)
}

func TestJoinGame_SameSeedSameMap(t *testing.T) {
	layout := func() []core.Tile {
		env := newTestEnv(t)
		ctx := context.Background()
		g, err := env.engine.CreateGame(ctx, GameConfig{MaxPlayers: 3})
		require.NoError(t, err)
		for _, id := range []string{"a", "b", "c"} {
			_, err := env.engine.RegisterPlayer(ctx, id, id, false)
			require.NoError(t, err)
			_, err = env.engine.JoinGame(ctx, g.ID, id)
			require.NoError(t, err)
		}
		out := make([]core.Tile, 0, 96)
		for _, tile := range env.state(t, g.ID).Tiles {
			cp := *tile
			cp.GameID = ""
			out = append(out, cp)
		}
		return out
	}

	assert.Equal(t, layout(), layout())
}

func TestEndGame(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	testutil.SeedActiveGame(t, env.store, testutil.ActiveGame{
		ID: "g1",
		Seats: []testutil.Seat{
			{ID: "alice", Gas: 100, Owned: []core.Coordinate{{X: 4, Y: 4}}},
			{ID: "bob", Gas: 100, Owned: []core.Coordinate{{X: 10, Y: 6}, {X: 9, Y: 6}}},
		},
	})

	env.clock.Advance(15 * time.Minute)
	res, err := env.engine.EndGame(ctx, "g1", ReasonTimeExpired)
	require.NoError(t, err)
	assert.False(t, res.NoOp)
	assert.Equal(t, "bob", res.WinnerID)
	require.Len(t, res.Standings, 2)
	assert.Equal(t, 1, res.Standings[0].Placement)
	assert.Equal(t, 30, res.Standings[1].Tokens)

	gs := env.state(t, "g1")
	assert.Equal(t, core.StatusCompleted, gs.Game.Status)
	assert.Equal(t, ReasonTimeExpired, gs.Game.EndReason)
	assert.Equal(t, testutil.Epoch.Add(15*time.Minute), gs.Game.EndedAt)

	ended := env.events.last(events.TypeGameEnded).(*events.GameEndedEvent)
	assert.Equal(t, 15*time.Minute, ended.Duration)
	env.events.reset()

	again, err := env.engine.EndGame(ctx, "g1", ReasonDominance)
	require.NoError(t, err)
	assert.True(t, again.NoOp)
	assert.Equal(t, res.Standings, again.Standings)
	assert.Equal(t, "bob", again.WinnerID)
	assert.Empty(t, env.events.types(), "a no-op end publishes nothing")

	results, err := env.engine.GetResults(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, res.Standings, results)

	_, err = env.engine.EndGame(ctx, "nope", "")
	assert.ErrorIs(t, err, core.ErrGameNotFound)
}

func TestEndGame_Pending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	g, err := env.engine.CreateGame(ctx, GameConfig{MaxPlayers: 3})
	require.NoError(t, err)
	_, err = env.engine.RegisterPlayer(ctx, "alice", "", false)
	require.NoError(t, err)
	_, err = env.engine.JoinGame(ctx, g.ID, "alice")
	require.NoError(t, err)

	res, err := env.engine.EndGame(ctx, g.ID, ReasonAbandoned)
	require.NoError(t, err)
	require.Len(t, res.Standings, 1)
	assert.Equal(t, "alice", res.WinnerID)

	gs := env.state(t, g.ID)
	assert.Equal(t, core.StatusCompleted, gs.Game.Status)
	assert.True(t, gs.Game.StartedAt.IsZero())
}
