package game

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/testutil"
)

func renderFixture() *GameState {
	tiles := testutil.CreateTestTiles("g", 4, 2)
	board := core.NewBoard(4, 2, tiles)
	board.GetTile(0, 0).OwnerID = "alice"
	board.GetTile(1, 0).OwnerID = "alice"
	board.GetTile(1, 0).IsVent = true
	board.GetTile(3, 1).OwnerID = "bob"
	board.GetTile(3, 1).DefenseBonus = 50
	board.GetTile(3, 1).DefenseExpiresAt = testutil.Epoch.Add(time.Minute)
	board.GetTile(2, 1).IsVent = true

	return &GameState{
		Game: &core.Game{ID: "g", Width: 4, Height: 2, CurrentTurnPlayerID: "bob"},
		Players: []*core.PlayerState{
			{PlayerID: "alice", TurnOrder: 0, Gas: 80, TerritoryCount: 2},
			{PlayerID: "bob", TurnOrder: 1, Gas: 120, TerritoryCount: 1},
		},
		Tiles: tiles,
	}
}

func TestRenderBoard(t *testing.T) {
	out := RenderBoard(renderFixture(), testutil.Epoch, false)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 6)

	assert.Equal(t, " 0  a  A  ·  ·  ", lines[1])
	assert.Equal(t, " 1   ·  ·  ◆  b+ ", lines[2], "odd rows are offset and defended tiles marked")
	assert.Contains(t, out, "b bob")
	assert.Contains(t, out, "gas=120")
	assert.True(t, strings.HasSuffix(strings.TrimRight(out, "\n"), "<"), "current turn is marked")
	assert.NotContains(t, out, ColorReset)
}

func TestRenderBoard_ExpiredDefenseAndColor(t *testing.T) {
	out := RenderBoard(renderFixture(), testutil.Epoch.Add(2*time.Minute), true)
	assert.NotContains(t, out, "b+")
	assert.Contains(t, out, ColorRed)
	assert.Contains(t, out, ColorBlue)
}

func TestComputeStats(t *testing.T) {
	st := ComputeStats(renderFixture())
	assert.Equal(t, 3, st.Owned)
	assert.Equal(t, 5, st.Unclaimed)
	require.Len(t, st.Players, 2)
	assert.Equal(t, PlayerStats{PlayerID: "alice", Territory: 2, Vents: 1, Gas: 80}, st.Players[0])
	assert.Equal(t, PlayerStats{PlayerID: "bob", Territory: 1, Gas: 120, Defended: 1}, st.Players[1])
}

func TestVerifyTerritory(t *testing.T) {
	gs := renderFixture()
	snap := &snapshot{game: gs.Game, players: gs.Players, tiles: gs.Tiles, board: gs.Board()}
	assert.NoError(t, verifyTerritory(snap))

	gs.Players[1].TerritoryCount = 2
	assert.ErrorIs(t, verifyTerritory(snap), core.ErrInvariant)

	gs.Players[1].TerritoryCount = 1
	snap.board.GetTile(0, 1).OwnerID = "ghost"
	assert.ErrorIs(t, verifyTerritory(snap), core.ErrInvariant, "tiles held by someone not seated")
}
