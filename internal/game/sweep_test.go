package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/game/events"
	"github.com/mitchelldurbincs/gasgrid/internal/testutil"
)

func botGame() testutil.ActiveGame {
	return testutil.ActiveGame{
		ID: "g1",
		Seats: []testutil.Seat{
			{ID: "b1", Bot: true, Gas: 100, Owned: []core.Coordinate{{X: 2, Y: 2}, {X: 3, Y: 2}}},
			{ID: "b2", Bot: true, Gas: 100, Owned: []core.Coordinate{{X: 9, Y: 5}, {X: 8, Y: 5}}},
		},
	}
}

func TestRunAISweep_EachBotOncePerSweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	testutil.SeedActiveGame(t, env.store, botGame())

	res, err := env.engine.RunAISweep(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.ActionsPerformed)
	assert.False(t, res.TurnSkipped)

	gs := env.state(t, "g1")
	assert.Equal(t, "b1", gs.Game.CurrentTurnPlayerID)
	for _, ps := range gs.Players {
		assert.Equal(t, testutil.Epoch, ps.LastActionAt)
		assert.Less(t, ps.Gas, 100)
	}
	assertInvariants(t, gs)

	res, err = env.engine.RunAISweep(ctx, "g1")
	require.NoError(t, err)
	assert.Zero(t, res.ActionsPerformed, "bots are cooling down")

	env.clock.Advance(8 * time.Second)
	res, err = env.engine.RunAISweep(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.ActionsPerformed)
}

func TestRunAISweep_HumanTurnIsLeftAlone(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedActiveGame(t, env.store, testutil.ActiveGame{
		ID: "g1",
		Seats: []testutil.Seat{
			{ID: "alice", Gas: 100, Owned: []core.Coordinate{{X: 4, Y: 4}}},
			{ID: "b1", Bot: true, Gas: 100, Owned: []core.Coordinate{{X: 9, Y: 5}}},
		},
	})

	res, err := env.engine.RunAISweep(context.Background(), "g1")
	require.NoError(t, err)
	assert.Zero(t, res.ActionsPerformed)
	assert.Equal(t, "alice", env.state(t, "g1").Game.CurrentTurnPlayerID)
}

func TestRunAISweep_BrokeBotWaits(t *testing.T) {
	env := newTestEnv(t)
	fixture := botGame()
	fixture.Seats[0].Gas = 0
	testutil.SeedActiveGame(t, env.store, fixture)

	res, err := env.engine.RunAISweep(context.Background(), "g1")
	require.NoError(t, err)
	assert.Zero(t, res.ActionsPerformed)
	assert.Equal(t, "b1", env.state(t, "g1").Game.CurrentTurnPlayerID)
}

func TestRunAISweep_SkipsStalledTurn(t *testing.T) {
	r := core.DefaultRules()
	r.TurnTimeout = 30 * time.Second
	env := newTestEnv(t, WithRules(r))
	ctx := context.Background()
	testutil.SeedActiveGame(t, env.store, testutil.ActiveGame{
		ID: "g1",
		Seats: []testutil.Seat{
			{ID: "alice", Gas: 100, Owned: []core.Coordinate{{X: 4, Y: 4}}},
			{ID: "b1", Bot: true, Gas: 100, Owned: []core.Coordinate{{X: 9, Y: 5}}},
		},
	})

	env.clock.Advance(29 * time.Second)
	res, err := env.engine.RunAISweep(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, res.TurnSkipped)

	env.clock.Advance(2 * time.Second)
	res, err = env.engine.RunAISweep(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, res.TurnSkipped)
	assert.Equal(t, 1, res.ActionsPerformed, "the bot plays the turn it was handed")

	actions, err := env.engine.RecentActions(ctx, "g1", 10)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "b1", actions[0].PlayerID)
	assert.Equal(t, core.ActionSkip, actions[1].Kind)
	assert.Equal(t, core.OutcomeSkipped, actions[1].Outcome)
	assert.Equal(t, "alice", actions[1].PlayerID)

	var skipped *events.TurnAdvancedEvent
	for _, e := range env.events.events {
		if ta, ok := e.(*events.TurnAdvancedEvent); ok && ta.Skipped {
			skipped = ta
		}
	}
	require.NotNil(t, skipped)
	assert.Equal(t, "alice", skipped.FromPlayerID)
	assert.Equal(t, "b1", skipped.ToPlayerID)
}

func TestRunAISweep_TimeoutDisabledByDefault(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedActiveGame(t, env.store, twoPlayerGame(core.GasGreen))

	env.clock.Advance(time.Hour)
	res, err := env.engine.RunAISweep(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, res)
}

func TestRunAISweep_InactiveAndMissingGames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	g, err := env.engine.CreateGame(ctx, GameConfig{MaxPlayers: 2})
	require.NoError(t, err)
	res, err := env.engine.RunAISweep(ctx, g.ID)
	require.NoError(t, err)
	assert.Zero(t, res.ActionsPerformed)

	_, err = env.engine.RunAISweep(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrGameNotFound)
}

func TestRunAISweep_ConcurrentSweeps(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedActiveGame(t, env.store, botGame())

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := env.engine.RunAISweep(context.Background(), "g1")
			assert.NoError(t, err)
			mu.Lock()
			total += res.ActionsPerformed
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, total, "each bot acts once per cooldown no matter how many sweeps race")
	assertInvariants(t, env.state(t, "g1"))
}

func TestNextSweepDelay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	testutil.SeedActiveGame(t, env.store, botGame())

	delay, ok, err := env.engine.NextSweepDelay(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, delay)

	_, err = env.engine.RunAISweep(ctx, "g1")
	require.NoError(t, err)
	env.clock.Advance(3 * time.Second)

	delay, ok, err = env.engine.NextSweepDelay(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, delay)
}

// TestBotMatch_Invariants plays a full bot-only match and checks the
// conservation and bounds properties after every sweep.
func TestBotMatch_Invariants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	g, err := env.engine.CreateGame(ctx, GameConfig{MaxPlayers: 4})
	require.NoError(t, err)
	for _, name := range []string{"Ash", "Brine", "Cinder", "Dust"} {
		bot, err := env.engine.ProvisionBot(ctx, name)
		require.NoError(t, err)
		_, err = env.engine.JoinGame(ctx, g.ID, bot.ID)
		require.NoError(t, err)
	}

	actions := 0
	for i := 0; i < 400; i++ {
		res, err := env.engine.RunAISweep(ctx, g.ID)
		require.NoError(t, err)
		actions += res.ActionsPerformed

		gs := env.state(t, g.ID)
		assertInvariants(t, gs)
		if gs.Game.Status == core.StatusCompleted {
			break
		}
		env.clock.Advance(4 * time.Second)
	}
	assert.Greater(t, actions, 0)

	res, err := env.engine.EndGame(ctx, g.ID, ReasonTimeExpired)
	require.NoError(t, err)
	require.Len(t, res.Standings, 4)
	for i, r := range res.Standings {
		assert.Equal(t, i+1, r.Placement)
		if i > 0 {
			assert.GreaterOrEqual(t, res.Standings[i-1].TerritoryCount, r.TerritoryCount)
		}
	}
}
