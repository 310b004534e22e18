// Package combat decides whether an attack on a tile captures it.
// Resolution is deterministic: the same inputs always produce the same outcome.
package combat

import (
	"time"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
)

const (
	BombModifier = 1.8
	// SplashFactor scales the gas committed to a bomb when it resolves against neighbors
	SplashFactor = 0.5
)

// Resolver computes attack and defense power under a rule set
type Resolver struct {
	PowerPerGas float64
	BaseDefense float64
}

// NewResolver returns a resolver configured from the rules
func NewResolver(r core.Rules) Resolver {
	return Resolver{PowerPerGas: r.PowerPerGas, BaseDefense: r.BaseDefense}
}

// Result is the outcome of one attack
type Result struct {
	AttackPower  float64
	DefensePower float64
	Captured     bool
}

// AttackModifier is the offensive multiplier of an affinity
func AttackModifier(g core.GasType) float64 {
	switch g {
	case core.GasYellow:
		return 1.5
	case core.GasToxic:
		return 0.8
	default:
		return 1.0
	}
}

// DefenseModifier is the defensive multiplier of an affinity
func DefenseModifier(g core.GasType) float64 {
	switch g {
	case core.GasYellow:
		return 0.7
	case core.GasToxic:
		return 1.3
	default:
		return 1.0
	}
}

// AttackPower is gas × power per gas × affinity modifier, times the bomb modifier for bombs.
// gas is a float so splash resolution can use half of an odd commitment.
func (r Resolver) AttackPower(gas float64, attacker core.GasType, bomb bool) float64 {
	p := gas * r.PowerPerGas * AttackModifier(attacker)
	if bomb {
		p *= BombModifier
	}
	return p
}

// DefensePower includes the tile's defense bonus only while it is active at now
func (r Resolver) DefensePower(t *core.Tile, now time.Time) float64 {
	bonus := float64(t.ActiveDefenseBonus(now))
	return r.BaseDefense * DefenseModifier(t.GasType) * (1 + bonus/100)
}

// Resolve attacks the tile with gas of the attacker's affinity. Capture requires
// attack power strictly greater than defense power.
func (r Resolver) Resolve(gas float64, attacker core.GasType, bomb bool, target *core.Tile, now time.Time) Result {
	res := Result{
		AttackPower:  r.AttackPower(gas, attacker, bomb),
		DefensePower: r.DefensePower(target, now),
	}
	res.Captured = res.AttackPower > res.DefensePower
	return res
}
