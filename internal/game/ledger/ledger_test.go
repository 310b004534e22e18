package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newLedger() Ledger { return New(core.DefaultRules()) }

func TestRegenerate(t *testing.T) {
	tests := []struct {
		name       string
		gas        int
		lastAction time.Time
		lastRegen  time.Time
		vents      int
		now        time.Time
		granted    int
		regenMoved bool
	}{
		{"less than a cycle", 50, time.Time{}, t0, 0, t0.Add(29 * time.Second), 0, false},
		{"one cycle no vents", 50, time.Time{}, t0, 0, t0.Add(30 * time.Second), 3, true},
		{"three cycles two vents", 50, time.Time{}, t0, 2, t0.Add(95 * time.Second), 21, true},
		{"last action is the anchor", 50, t0.Add(60 * time.Second), t0, 0, t0.Add(80 * time.Second), 0, false},
		{"capped at max", 195, time.Time{}, t0, 5, t0.Add(5 * time.Minute), 5, true},
		{"already at max", 200, time.Time{}, t0, 0, t0.Add(time.Minute), 0, true},
		{"clock went backwards", 50, time.Time{}, t0, 0, t0.Add(-time.Minute), 0, false},
		{"never anchored", 50, time.Time{}, time.Time{}, 0, t0, 0, false},
	}

	l := newLedger()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := &core.PlayerState{Gas: tt.gas, LastActionAt: tt.lastAction, LastRegenAt: tt.lastRegen}
			got := l.Regenerate(ps, tt.vents, tt.now)
			assert.Equal(t, tt.granted, got)
			assert.Equal(t, tt.gas+tt.granted, ps.Gas)
			assert.LessOrEqual(t, ps.Gas, 200)
			if tt.regenMoved {
				assert.Equal(t, tt.now, ps.LastRegenAt)
			} else {
				assert.Equal(t, tt.lastRegen, ps.LastRegenAt)
			}
		})
	}
}

func TestRegenerate_Idempotent(t *testing.T) {
	l := newLedger()
	ps := &core.PlayerState{Gas: 10, LastRegenAt: t0}
	now := t0.Add(time.Minute)

	assert.Equal(t, 6, l.Regenerate(ps, 0, now))
	assert.Equal(t, 0, l.Regenerate(ps, 0, now), "a second read at the same instant grants nothing")
	assert.Equal(t, 16, ps.Gas)
}

func TestVentBonus(t *testing.T) {
	l := newLedger()

	ps := &core.PlayerState{Gas: 100}
	assert.Equal(t, 0, l.VentBonus(ps, 0))
	assert.Equal(t, 15, l.VentBonus(ps, 3))
	assert.Equal(t, 115, ps.Gas)

	ps.Gas = 198
	assert.Equal(t, 2, l.VentBonus(ps, 2))
	assert.Equal(t, 200, ps.Gas)
}

func TestSpend(t *testing.T) {
	l := newLedger()
	ps := &core.PlayerState{Gas: 30}

	require.NoError(t, l.Spend(ps, 30))
	assert.Equal(t, 0, ps.Gas)

	err := l.Spend(ps, 1)
	assert.ErrorIs(t, err, core.ErrInsufficientGas)
	assert.Equal(t, 0, ps.Gas)

	assert.ErrorIs(t, l.Spend(ps, 0), core.ErrInvalidGas)
}

func TestClamp(t *testing.T) {
	l := newLedger()
	assert.Equal(t, 0, l.Clamp(-5))
	assert.Equal(t, 120, l.Clamp(120))
	assert.Equal(t, 200, l.Clamp(350))
}
