package states

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to core.GameStatus
		allowed  bool
	}{
		{core.StatusPending, core.StatusActive, true},
		{core.StatusPending, core.StatusCompleted, true},
		{core.StatusActive, core.StatusCompleted, true},
		{core.StatusActive, core.StatusPending, false},
		{core.StatusCompleted, core.StatusActive, false},
		{core.StatusCompleted, core.StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransitionTo(tt.from, tt.to))
		})
	}
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, CanAddPlayers(core.StatusPending))
	assert.False(t, CanAddPlayers(core.StatusActive))
	assert.True(t, CanReceiveActions(core.StatusActive))
	assert.False(t, CanReceiveActions(core.StatusCompleted))
	assert.True(t, IsTerminal(core.StatusCompleted))
	assert.False(t, IsTerminal(core.StatusActive))
}

func TestTransitionTo_Start(t *testing.T) {
	g := &core.Game{Status: core.StatusPending, CurrentTurnPlayerID: "p1"}

	tr, err := TransitionTo(g, core.StatusActive, now, "all players joined")
	require.NoError(t, err)
	assert.Equal(t, core.StatusPending, tr.From)
	assert.Equal(t, core.StatusActive, tr.To)
	assert.Equal(t, core.StatusActive, g.Status)
	assert.Equal(t, now, g.StartedAt)
	assert.Equal(t, now, g.TurnStartedAt)
}

func TestTransitionTo_StartRequiresTurnHolder(t *testing.T) {
	g := &core.Game{Status: core.StatusPending}

	_, err := TransitionTo(g, core.StatusActive, now, "")
	assert.ErrorIs(t, err, core.ErrEmptyTurnOrder)
	assert.Equal(t, core.StatusPending, g.Status)
}

func TestTransitionTo_End(t *testing.T) {
	g := &core.Game{Status: core.StatusActive, CurrentTurnPlayerID: "p1"}

	_, err := TransitionTo(g, core.StatusCompleted, now, "dominance")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, g.Status)
	assert.Equal(t, now, g.EndedAt)
	assert.Equal(t, "dominance", g.EndReason)
	assert.Empty(t, g.CurrentTurnPlayerID)
}

func TestTransitionTo_Invalid(t *testing.T) {
	g := &core.Game{Status: core.StatusCompleted, EndReason: "time_expired"}

	_, err := TransitionTo(g, core.StatusActive, now, "")
	require.Error(t, err)
	assert.Equal(t, core.KindInternal, core.KindOf(err))
	assert.Equal(t, core.StatusCompleted, g.Status)
	assert.Equal(t, "time_expired", g.EndReason)
}
