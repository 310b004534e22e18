package ai

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// scriptedRand returns queued floats (0.99 once drained) and always picks index 0
type scriptedRand struct {
	floats []float64
}

func (s *scriptedRand) Intn(n int) int { return 0 }
func (s *scriptedRand) Int63() int64   { return 1 }
func (s *scriptedRand) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.99
	}
	f := s.floats[0]
	s.floats = s.floats[1:]
	return f
}

func newBoard() *core.Board {
	tiles := make([]*core.Tile, 0, 96)
	for y := 0; y < 8; y++ {
		for x := 0; x < 12; x++ {
			tiles = append(tiles, &core.Tile{GameID: "g", X: x, Y: y})
		}
	}
	return core.NewBoard(12, 8, tiles)
}

func newPolicy(floats ...float64) *Policy {
	return NewPolicy(DefaultConfig(), 200, &scriptedRand{floats: floats}, zerolog.Nop())
}

func bot(gas int) *core.PlayerState {
	return &core.PlayerState{GameID: "g", PlayerID: "bot", Gas: gas, IsBot: true}
}

func TestDecide_OpeningMove(t *testing.T) {
	board := newBoard()
	board.GetTile(0, 0).IsVent = true
	board.GetTile(1, 0).OwnerID = "human"

	d, ok := newPolicy().Decide(board, bot(100), now)
	require.True(t, ok)
	assert.Equal(t, core.ActionEmit, d.Action)
	assert.Equal(t, core.Coordinate{X: 2, Y: 0}, d.Target, "skips vents and owned tiles")
	assert.Equal(t, 20, d.Gas)
}

func TestDecide_OpeningMoveTooPoor(t *testing.T) {
	_, ok := newPolicy().Decide(newBoard(), bot(19), now)
	assert.False(t, ok)
}

func TestDecide_PrefersVent(t *testing.T) {
	tests := []struct {
		name   string
		gas    int
		action core.ActionType
		ok     bool
	}{
		{"bombs when affordable", 30, core.ActionBomb, true},
		{"emits when bomb is too dear", 22, core.ActionEmit, true},
		{"passes when broke", 10, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := newBoard()
			board.GetTile(4, 4).OwnerID = "bot"
			board.GetTile(5, 4).IsVent = true
			board.GetTile(5, 4).OwnerID = "enemy"

			d, ok := newPolicy().Decide(board, bot(tt.gas), now)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.action, d.Action)
				assert.Equal(t, core.Coordinate{X: 5, Y: 4}, d.Target)
			}
		})
	}
}

func TestDecide_DefendRoll(t *testing.T) {
	board := newBoard()
	for _, c := range []core.Coordinate{{X: 4, Y: 4}, {X: 5, Y: 4}, {X: 6, Y: 4}} {
		board.GetTile(c.X, c.Y).OwnerID = "bot"
	}
	board.GetTile(4, 4).DefenseBonus = 50
	board.GetTile(4, 4).DefenseExpiresAt = now.Add(time.Minute)

	d, ok := newPolicy(0.05).Decide(board, bot(100), now)
	require.True(t, ok)
	assert.Equal(t, core.ActionDefend, d.Action)
	assert.Equal(t, core.Coordinate{X: 5, Y: 4}, d.Target, "first weakly defended tile")
	assert.Equal(t, 15, d.Gas)
}

func TestDecide_NoDefendWithTwoTiles(t *testing.T) {
	board := newBoard()
	board.GetTile(4, 4).OwnerID = "bot"
	board.GetTile(5, 4).OwnerID = "bot"

	// a defend roll would consume 0.05 and win; the expand roll at 25 gas never bombs
	d, ok := newPolicy(0.05).Decide(board, bot(25), now)
	require.True(t, ok)
	assert.Equal(t, core.ActionEmit, d.Action)
}

func TestDecide_ExpandBombChance(t *testing.T) {
	board := newBoard()
	board.GetTile(4, 4).OwnerID = "bot"

	// single owned tile skips the defend roll, so the first float is the bomb roll
	d, ok := newPolicy(0.5).Decide(board, bot(200), now)
	require.True(t, ok)
	assert.Equal(t, core.ActionBomb, d.Action)
	assert.Equal(t, 25, d.Gas)

	d, ok = newPolicy(0.0).Decide(board, bot(25), now)
	require.True(t, ok)
	assert.Equal(t, core.ActionEmit, d.Action, "no spare gas means no bomb")
}

func TestExpandBombChance(t *testing.T) {
	p := newPolicy()
	assert.Equal(t, 0.0, p.expandBombChance(10))
	assert.Equal(t, 0.0, p.expandBombChance(25))
	assert.InDelta(t, 0.3, p.expandBombChance(112), 0.01)
	assert.InDelta(t, 0.6, p.expandBombChance(200), 1e-9)
}

func TestDecide_AttacksWeakEnemy(t *testing.T) {
	board := newBoard()
	// bot at (0,0) surrounded by enemy tiles
	board.GetTile(0, 0).OwnerID = "bot"
	board.GetTile(1, 0).OwnerID = "enemy"
	board.GetTile(1, 0).DefenseBonus = 50
	board.GetTile(1, 0).DefenseExpiresAt = now.Add(time.Minute)
	board.GetTile(0, 1).OwnerID = "enemy"

	d, ok := newPolicy(0.2).Decide(board, bot(100), now)
	require.True(t, ok)
	assert.Equal(t, core.ActionBomb, d.Action)
	assert.Equal(t, core.Coordinate{X: 0, Y: 1}, d.Target, "strongly defended tile is skipped")

	d, ok = newPolicy(0.9).Decide(board, bot(100), now)
	require.True(t, ok)
	assert.Equal(t, core.ActionEmit, d.Action)
}

func TestDecide_NoTarget(t *testing.T) {
	board := newBoard()
	board.GetTile(0, 0).OwnerID = "bot"
	board.GetTile(1, 0).OwnerID = "enemy"
	board.GetTile(1, 0).DefenseBonus = 50
	board.GetTile(1, 0).DefenseExpiresAt = now.Add(time.Minute)
	board.GetTile(0, 1).OwnerID = "enemy"
	board.GetTile(0, 1).DefenseBonus = 50
	board.GetTile(0, 1).DefenseExpiresAt = now.Add(time.Minute)

	_, ok := newPolicy().Decide(board, bot(100), now)
	assert.False(t, ok)
}
