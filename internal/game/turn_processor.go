package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/gasgrid/internal/game/combat"
	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/game/events"
	"github.com/mitchelldurbincs/gasgrid/internal/game/turn"
)

// resolution is everything one accepted action changed, kept for the events
// published after commit.
type resolution struct {
	record    *core.ActionRecord
	actor     *core.PlayerState
	captures  []events.Capture
	message   string
	fromTurn  string
	toTurn    string
	standings []core.MatchResult
}

func (r *resolution) result() ActionResult {
	return ActionResult{
		Outcome:      r.record.Outcome,
		Captured:     r.record.Captured,
		GasRemaining: r.actor.Gas,
		Message:      r.message,
		GameEnded:    r.standings != nil,
		NextPlayerID: r.toTurn,
	}
}

// TurnProcessor applies a single action to a snapshot. It runs inside the
// game's transaction; any error leaves the snapshot to be discarded.
type TurnProcessor struct {
	m          *mechanics
	production *ProductionManager
	logger     zerolog.Logger
	now        time.Time
}

func newTurnProcessor(m *mechanics, logger zerolog.Logger, now time.Time) *TurnProcessor {
	return &TurnProcessor{
		m:          m,
		production: newProductionManager(m.ledger, logger),
		logger:     logger,
		now:        now,
	}
}

// Process validates the request against the snapshot and applies it
func (tp *TurnProcessor) Process(snap *snapshot, req ActionRequest) (*resolution, error) {
	if snap.game.Status != core.StatusActive {
		return nil, core.ErrGameNotActive.WithMessagef("game is %s", snap.game.Status)
	}
	actor := snap.player(req.PlayerID)
	if actor == nil {
		return nil, core.ErrNotParticipant
	}
	if err := turn.CheckTurn(snap.game, req.PlayerID); err != nil {
		return nil, err
	}
	if actor.IsBot && tp.m.cooldown.SelfHeal(actor, tp.now) {
		snap.touchPlayer(actor.PlayerID)
		tp.logger.Warn().
			Str("game_id", snap.game.ID).
			Str("player_id", actor.PlayerID).
			Msg("Cleared implausible bot cooldown")
	}
	if err := tp.m.cooldown.Check(actor, tp.now); err != nil {
		return nil, err
	}
	if !snap.board.InBounds(req.Target.X, req.Target.Y) {
		return nil, core.ErrInvalidCoordinates.WithMessagef("target %s is outside the %dx%d board",
			req.Target, snap.game.Width, snap.game.Height)
	}
	firstMove, err := tp.m.moves.CheckTarget(snap.board, req.PlayerID, req.Action, req.Target)
	if err != nil {
		return nil, err
	}

	tp.production.Regenerate(snap, actor, tp.now)
	if err := tp.m.ledger.Spend(actor, req.GasSpent); err != nil {
		return nil, err
	}
	snap.touchPlayer(actor.PlayerID)

	res := &resolution{
		actor: actor,
		record: &core.ActionRecord{
			ID:        uuid.NewString(),
			GameID:    snap.game.ID,
			PlayerID:  actor.PlayerID,
			Kind:      req.Action,
			X:         req.Target.X,
			Y:         req.Target.Y,
			GasSpent:  req.GasSpent,
			CreatedAt: tp.now,
		},
	}

	target := snap.board.GetTile(req.Target.X, req.Target.Y)
	switch {
	case req.Action == core.ActionDefend:
		tp.defend(snap, target, res)
	case firstMove:
		tp.claim(snap, actor, target, snap.board.AffinityOf(actor.PlayerID), res)
		res.record.Outcome = core.OutcomeClaimed
		res.message = fmt.Sprintf("claimed %s", target.Coord())
	default:
		tp.attack(snap, actor, target, req, res)
	}

	if err := verifyTerritory(snap); err != nil {
		return nil, err
	}

	if res.record.Outcome != core.OutcomeFailed {
		tp.production.VentBonus(snap, actor)
	}
	actor.LastActionAt = tp.now

	res.fromTurn = snap.game.CurrentTurnPlayerID
	if tp.m.win.CheckDominance(actor) {
		standings, err := concludeGame(snap, tp.m.win, ReasonDominance, tp.now)
		if err != nil {
			return nil, err
		}
		res.standings = standings
		return res, nil
	}
	if !turn.Advance(snap.game, snap.players, tp.now) {
		return nil, core.ErrEmptyTurnOrder
	}
	snap.touchGame()
	res.toTurn = snap.game.CurrentTurnPlayerID
	return res, nil
}

func (tp *TurnProcessor) defend(snap *snapshot, t *core.Tile, res *resolution) {
	t.DefenseBonus = tp.m.rules.DefendBonus
	t.DefenseExpiresAt = tp.now.Add(tp.m.rules.DefendDuration)
	snap.touchTile(t)
	res.record.Outcome = core.OutcomeDefended
	res.message = fmt.Sprintf("%s defended +%d%% until %s", t.Coord(), t.DefenseBonus, t.DefenseExpiresAt.Format(time.RFC3339))
}

// attack resolves emit and bomb actions, including bomb splash
func (tp *TurnProcessor) attack(snap *snapshot, actor *core.PlayerState, t *core.Tile, req ActionRequest, res *resolution) {
	bomb := req.Action == core.ActionBomb
	affinity := snap.board.AffinityOf(actor.PlayerID)
	primary := tp.m.resolver.Resolve(float64(req.GasSpent), affinity, bomb, t, tp.now)
	if !primary.Captured {
		res.record.Outcome = core.OutcomeFailed
		res.message = fmt.Sprintf("attack on %s failed: %.1f vs %.1f", t.Coord(), primary.AttackPower, primary.DefensePower)
		return
	}

	wasUnclaimed := !t.IsOwned()
	tp.claim(snap, actor, t, affinity, res)
	if wasUnclaimed {
		res.record.Outcome = core.OutcomeClaimed
	} else {
		res.record.Outcome = core.OutcomeCaptured
	}

	if bomb {
		splashGas := float64(req.GasSpent) * combat.SplashFactor
		for _, n := range snap.board.NeighborTiles(t.Coord()) {
			switch {
			case n.OwnedBy(actor.PlayerID):
			case !n.IsOwned():
				if wasUnclaimed {
					tp.claim(snap, actor, n, affinity, res)
				}
			default:
				if tp.m.resolver.Resolve(splashGas, affinity, true, n, tp.now).Captured {
					tp.claim(snap, actor, n, affinity, res)
				}
			}
		}
	}
	res.message = fmt.Sprintf("%s %s, %d tile(s) taken", res.record.Outcome, t.Coord(), res.record.Captured)
}

// claim hands t to actor, keeping both territory counts in step
func (tp *TurnProcessor) claim(snap *snapshot, actor *core.PlayerState, t *core.Tile, affinity core.GasType, res *resolution) {
	prev := t.OwnerID
	if prev != "" {
		if loser := snap.player(prev); loser != nil {
			loser.TerritoryCount--
			snap.touchPlayer(prev)
		}
	}
	t.OwnerID = actor.PlayerID
	t.GasType = affinity
	t.DefenseBonus = 0
	t.DefenseExpiresAt = time.Time{}
	snap.touchTile(t)

	actor.TerritoryCount++
	snap.touchPlayer(actor.PlayerID)
	res.record.Captured++
	res.captures = append(res.captures, events.Capture{Coord: t.Coord(), PreviousOwnerID: prev})
}
