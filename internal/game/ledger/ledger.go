// Package ledger implements the gas economy: lazy periodic regeneration,
// the per-action vent bonus and spending, all bounded to [0, MaxGas].
package ledger

import (
	"time"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
)

// Ledger applies the gas rules to player states
type Ledger struct {
	MaxGas          int
	RegenInterval   time.Duration
	RegenBase       int
	RegenPerVent    int
	VentActionBonus int
}

// New returns a ledger configured from the rules
func New(r core.Rules) Ledger {
	return Ledger{
		MaxGas:          r.MaxGas,
		RegenInterval:   r.RegenInterval,
		RegenBase:       r.RegenBase,
		RegenPerVent:    r.RegenPerVent,
		VentActionBonus: r.VentActionBonus,
	}
}

// Cycles returns how many whole regeneration cycles have passed since the
// later of the player's last action and last regeneration.
func (l Ledger) Cycles(ps *core.PlayerState, now time.Time) int {
	anchor := ps.LastRegenAt
	if ps.LastActionAt.After(anchor) {
		anchor = ps.LastActionAt
	}
	if anchor.IsZero() || l.RegenInterval <= 0 {
		return 0
	}
	elapsed := now.Sub(anchor)
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed / l.RegenInterval)
}

// Regenerate applies pending cycles to ps and returns the gas actually added.
// The regeneration timestamp moves to now whenever at least one cycle is due,
// even when the cap swallows the whole grant.
func (l Ledger) Regenerate(ps *core.PlayerState, vents int, now time.Time) int {
	cycles := l.Cycles(ps, now)
	if cycles == 0 {
		return 0
	}
	grant := cycles * (l.RegenBase + l.RegenPerVent*vents)
	if grant <= 0 {
		return 0
	}
	before := ps.Gas
	ps.Gas = l.Clamp(ps.Gas + grant)
	ps.LastRegenAt = now
	return ps.Gas - before
}

// VentBonus grants the per-action bonus for each owned vent and returns the gas added
func (l Ledger) VentBonus(ps *core.PlayerState, vents int) int {
	if vents <= 0 {
		return 0
	}
	before := ps.Gas
	ps.Gas = l.Clamp(ps.Gas + vents*l.VentActionBonus)
	return ps.Gas - before
}

// Spend deducts gas, failing with ErrInsufficientGas when the balance is too low
func (l Ledger) Spend(ps *core.PlayerState, gas int) error {
	if gas <= 0 {
		return core.ErrInvalidGas
	}
	if gas > ps.Gas {
		return core.ErrInsufficientGas.WithMessagef("need %d gas, have %d", gas, ps.Gas)
	}
	ps.Gas -= gas
	return nil
}

// Clamp bounds a balance to [0, MaxGas]
func (l Ledger) Clamp(gas int) int {
	if gas < 0 {
		return 0
	}
	if gas > l.MaxGas {
		return l.MaxGas
	}
	return gas
}
