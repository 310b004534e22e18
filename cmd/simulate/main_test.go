package main

import (
	"context"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/gasgrid/internal/game"
	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/store/memory"
	"github.com/mitchelldurbincs/gasgrid/internal/testutil"
)

func TestRun_PlaysToCompletion(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(testutil.Epoch)
	st := memory.New()
	engine := game.NewEngine(st,
		game.WithClock(clock),
		game.WithRand(testutil.NewTestRNG(7)),
		game.WithLogger(testutil.NopLogger()),
	)

	require.NoError(t, run(ctx, engine, clock, 2, 8, 6, 2, 0, false))

	games, err := st.ListGames(ctx, core.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.NotEmpty(t, games[0].EndReason)

	results, err := engine.GetResults(ctx, games[0].ID)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Placement)

	actions, err := engine.RecentActions(ctx, games[0].ID, 50)
	require.NoError(t, err)
	assert.NotEmpty(t, actions, "bots act during the simulated match")
}
