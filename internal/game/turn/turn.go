// Package turn holds the single-current-player rotation and the cooldown gate.
package turn

import (
	"sort"
	"time"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
)

// Cooldown gates how often one player may act
type Cooldown struct {
	Human       time.Duration
	Bot         time.Duration
	HealCeiling time.Duration
	AllowSkew   bool
}

// NewCooldown returns the cooldown configured by the rules
func NewCooldown(r core.Rules) Cooldown {
	return Cooldown{
		Human:       r.HumanCooldown,
		Bot:         r.BotCooldown,
		HealCeiling: r.CooldownHealCeiling,
		AllowSkew:   r.AllowClockSkew,
	}
}

func (c Cooldown) durationFor(ps *core.PlayerState) time.Duration {
	if ps.IsBot {
		return c.Bot
	}
	return c.Human
}

// Remaining returns how long ps must still wait. Zero means the player may act.
func (c Cooldown) Remaining(ps *core.PlayerState, now time.Time) time.Duration {
	if ps.LastActionAt.IsZero() {
		return 0
	}
	elapsed := now.Sub(ps.LastActionAt)
	if elapsed < 0 {
		if c.AllowSkew {
			return 0
		}
		return c.durationFor(ps) - elapsed
	}
	if d := c.durationFor(ps); elapsed < d {
		return d - elapsed
	}
	return 0
}

// Check returns ErrOnCooldown while ps is still cooling down
func (c Cooldown) Check(ps *core.PlayerState, now time.Time) error {
	if rem := c.Remaining(ps, now); rem > 0 {
		return core.ErrOnCooldown.WithMessagef("on cooldown for another %s", rem.Round(100*time.Millisecond))
	}
	return nil
}

// SelfHeal clears a stored cooldown that cannot be trusted: one in the future
// or older than the heal ceiling. It reports whether the state changed.
func (c Cooldown) SelfHeal(ps *core.PlayerState, now time.Time) bool {
	if ps.LastActionAt.IsZero() {
		return false
	}
	elapsed := now.Sub(ps.LastActionAt)
	if elapsed < 0 || (c.HealCeiling > 0 && elapsed > c.HealCeiling) {
		ps.LastActionAt = time.Time{}
		return true
	}
	return false
}

// Order returns the players sorted by turn order
func Order(players []*core.PlayerState) []*core.PlayerState {
	out := append([]*core.PlayerState(nil), players...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TurnOrder < out[j].TurnOrder })
	return out
}

// Next returns the player after current in turn order, wrapping to the first.
// An unknown current yields the first player. ok is false for an empty order.
func Next(players []*core.PlayerState, current string) (next string, ok bool) {
	ordered := Order(players)
	if len(ordered) == 0 {
		return "", false
	}
	for i, ps := range ordered {
		if ps.PlayerID == current {
			return ordered[(i+1)%len(ordered)].PlayerID, true
		}
	}
	return ordered[0].PlayerID, true
}

// Advance moves the game's turn pointer to the next player and restarts the
// turn clock. It is a no-op on an empty order and reports whether it moved.
func Advance(g *core.Game, players []*core.PlayerState, now time.Time) bool {
	next, ok := Next(players, g.CurrentTurnPlayerID)
	if !ok {
		return false
	}
	g.CurrentTurnPlayerID = next
	g.TurnStartedAt = now
	return true
}

// CheckTurn returns ErrNotYourTurn unless playerID holds the turn
func CheckTurn(g *core.Game, playerID string) error {
	if g.CurrentTurnPlayerID != playerID {
		return core.ErrNotYourTurn
	}
	return nil
}

// Stalled reports whether the current turn has outlived timeout. A zero timeout never stalls.
func Stalled(g *core.Game, timeout time.Duration, now time.Time) bool {
	if timeout <= 0 || g.TurnStartedAt.IsZero() {
		return false
	}
	return now.Sub(g.TurnStartedAt) >= timeout
}
