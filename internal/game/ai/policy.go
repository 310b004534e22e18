// Package ai chooses actions for bot players. It only proposes; every decision
// goes through the same validation path as a human request.
package ai

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/game/rules"
)

// Config tunes the bot heuristics
type Config struct {
	EmitCost   int
	BombCost   int
	DefendCost int

	// enemy tiles with an active bonus at or above this are left alone
	EnemyDefenseThreshold int
	// owned tiles with an active bonus below this are worth defending
	WeakDefenseThreshold int

	DefendChance      float64
	BombOnEnemyChance float64
	MaxExpandBomb     float64
}

// DefaultConfig returns the reference heuristics
func DefaultConfig() Config {
	return Config{
		EmitCost:              20,
		BombCost:              25,
		DefendCost:            15,
		EnemyDefenseThreshold: 30,
		WeakDefenseThreshold:  20,
		DefendChance:          0.1,
		BombOnEnemyChance:     0.7,
		MaxExpandBomb:         0.6,
	}
}

// Decision is one proposed action
type Decision struct {
	Action core.ActionType
	Target core.Coordinate
	Gas    int
	Reason string
}

// Policy picks bot actions from the visible board
type Policy struct {
	cfg    Config
	maxGas int
	rng    core.Rand
	lmc    *rules.LegalMoveCalculator
	logger zerolog.Logger
}

// NewPolicy creates a policy. rng must be safe for concurrent use.
func NewPolicy(cfg Config, maxGas int, rng core.Rand, logger zerolog.Logger) *Policy {
	return &Policy{
		cfg:    cfg,
		maxGas: maxGas,
		rng:    rng,
		lmc:    rules.NewLegalMoveCalculator(),
		logger: logger.With().Str("component", "ai_policy").Logger(),
	}
}

// Decide returns the bot's action for this cycle, or false when it should pass.
// Branches are tried in priority order and the first one with a target wins.
func (p *Policy) Decide(board *core.Board, bot *core.PlayerState, now time.Time) (Decision, bool) {
	d, ok := p.decide(board, bot, now)
	if ok {
		p.logger.Debug().
			Str("game_id", bot.GameID).
			Str("player_id", bot.PlayerID).
			Str("action", d.Action.String()).
			Str("target", d.Target.String()).
			Str("reason", d.Reason).
			Msg("Bot decided")
	}
	return d, ok
}

func (p *Policy) decide(board *core.Board, bot *core.PlayerState, now time.Time) (Decision, bool) {
	gas := bot.Gas
	owned := board.OwnedBy(bot.PlayerID)

	if len(owned) == 0 {
		open := p.lmc.OpeningTiles(board)
		if len(open) == 0 {
			return Decision{}, false
		}
		return p.afford(core.ActionEmit, p.pick(open), gas, "opening")
	}

	frontier := p.lmc.FrontierTiles(board, bot.PlayerID)

	var vents, unowned, enemies []*core.Tile
	for _, t := range frontier {
		switch {
		case t.IsVent:
			vents = append(vents, t)
		case !t.IsOwned():
			unowned = append(unowned, t)
		case t.ActiveDefenseBonus(now) < p.cfg.EnemyDefenseThreshold:
			enemies = append(enemies, t)
		}
	}

	if len(vents) > 0 {
		target := p.pick(vents)
		if gas >= p.cfg.BombCost {
			return p.afford(core.ActionBomb, target, gas, "vent")
		}
		return p.afford(core.ActionEmit, target, gas, "vent")
	}

	if len(owned) > 2 && p.rng.Float64() < p.cfg.DefendChance {
		var weak []*core.Tile
		for _, t := range owned {
			if t.ActiveDefenseBonus(now) < p.cfg.WeakDefenseThreshold {
				weak = append(weak, t)
			}
		}
		if len(weak) > 0 {
			return p.afford(core.ActionDefend, p.pick(weak), gas, "defend")
		}
	}

	if len(unowned) > 0 {
		target := p.pick(unowned)
		if gas >= p.cfg.BombCost && p.rng.Float64() < p.expandBombChance(gas) {
			return p.afford(core.ActionBomb, target, gas, "expand")
		}
		return p.afford(core.ActionEmit, target, gas, "expand")
	}

	if len(enemies) > 0 {
		target := p.pick(enemies)
		if gas >= p.cfg.BombCost && p.rng.Float64() < p.cfg.BombOnEnemyChance {
			return p.afford(core.ActionBomb, target, gas, "attack")
		}
		return p.afford(core.ActionEmit, target, gas, "attack")
	}

	return Decision{}, false
}

// expandBombChance grows with the gas left over after paying for a bomb
func (p *Policy) expandBombChance(gas int) float64 {
	span := float64(p.maxGas - p.cfg.BombCost)
	if span <= 0 {
		return 0
	}
	f := float64(gas-p.cfg.BombCost) / span
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return f * p.cfg.MaxExpandBomb
}

func (p *Policy) cost(a core.ActionType) int {
	switch a {
	case core.ActionBomb:
		return p.cfg.BombCost
	case core.ActionDefend:
		return p.cfg.DefendCost
	default:
		return p.cfg.EmitCost
	}
}

func (p *Policy) afford(a core.ActionType, t *core.Tile, gas int, reason string) (Decision, bool) {
	c := p.cost(a)
	if gas < c {
		return Decision{}, false
	}
	return Decision{Action: a, Target: t.Coord(), Gas: c, Reason: reason}, true
}

func (p *Policy) pick(tiles []*core.Tile) *core.Tile {
	return tiles[p.rng.Intn(len(tiles))]
}
