package game

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/game/events"
	"github.com/mitchelldurbincs/gasgrid/internal/game/turn"
	"github.com/mitchelldurbincs/gasgrid/internal/store"
)

// SweepResult reports what one AI sweep did
type SweepResult struct {
	ActionsPerformed int
	TurnSkipped      bool
}

// RunAISweep lets every bot whose turn comes up act at most once. Each bot
// acts through SubmitAction, so a sweep racing another sweep or a human
// simply loses the turn check. A failure for one bot never stops the sweep.
func (e *Engine) RunAISweep(ctx context.Context, gameID string) (SweepResult, error) {
	var out SweepResult

	skipped, err := e.skipStalledTurn(ctx, gameID)
	if err != nil {
		e.logFailure(err, gameID, "turn_timeout")
		return out, err
	}
	out.TurnSkipped = skipped

	evaluated := make(map[string]bool)
	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		var snap *GameState
		err := e.view(ctx, gameID, func(tx store.Tx) error {
			s, err := loadSnapshot(tx)
			if err != nil {
				return err
			}
			snap = s.state()
			return nil
		})
		if err != nil {
			e.logFailure(err, gameID, "ai_sweep")
			return out, err
		}
		if snap.Game.Status != core.StatusActive {
			return out, nil
		}

		bot := snap.Player(snap.Game.CurrentTurnPlayerID)
		if bot == nil || !bot.IsBot || evaluated[bot.PlayerID] {
			return out, nil
		}
		evaluated[bot.PlayerID] = true

		if !e.botAct(ctx, snap, bot) {
			return out, nil
		}
		out.ActionsPerformed++
	}
}

// botAct decides for one bot and submits the decision. It reports whether
// an action was applied.
func (e *Engine) botAct(ctx context.Context, gs *GameState, bot *core.PlayerState) bool {
	m := e.mech.Load()
	now := e.clock.Now()
	log := e.logger.With().Str("game_id", gs.Game.ID).Str("player_id", bot.PlayerID).Logger()

	m.cooldown.SelfHeal(bot, now)
	if rem := m.cooldown.Remaining(bot, now); rem > 0 {
		log.Debug().Dur("remaining", rem).Msg("Bot still cooling down")
		return false
	}

	board := gs.Board()
	m.ledger.Regenerate(bot, board.VentsOwnedBy(bot.PlayerID), now)
	d, ok := m.policy.Decide(board, bot, now)
	if !ok {
		log.Debug().Int("gas", bot.Gas).Msg("Bot found nothing to do")
		return false
	}

	_, err := e.SubmitAction(ctx, ActionRequest{
		GameID:   gs.Game.ID,
		PlayerID: bot.PlayerID,
		Action:   d.Action,
		Target:   d.Target,
		GasSpent: d.Gas,
	})
	if err != nil {
		if core.KindOf(err) == core.KindRuleViolation {
			log.Debug().Err(err).Msg("Bot action lost to a concurrent change")
		} else {
			log.Warn().Err(err).Str("action", d.Action.String()).Msg("Bot action failed")
		}
		return false
	}
	return true
}

// skipStalledTurn passes the turn on when the current player has sat on it
// longer than the turn timeout. It is a no-op while the timeout is zero.
func (e *Engine) skipStalledTurn(ctx context.Context, gameID string) (bool, error) {
	m := e.mech.Load()
	if m.rules.TurnTimeout <= 0 {
		return false, nil
	}
	now := e.clock.Now()

	var (
		rec      *core.ActionRecord
		from, to string
	)
	err := e.update(ctx, gameID, func(tx store.Tx) error {
		snap, err := loadSnapshot(tx)
		if err != nil {
			return err
		}
		if snap.game.Status != core.StatusActive || !turn.Stalled(snap.game, m.rules.TurnTimeout, now) {
			return nil
		}
		from = snap.game.CurrentTurnPlayerID
		if !turn.Advance(snap.game, snap.players, now) {
			return core.ErrEmptyTurnOrder
		}
		snap.touchGame()
		to = snap.game.CurrentTurnPlayerID
		rec = &core.ActionRecord{
			ID:        uuid.NewString(),
			GameID:    gameID,
			PlayerID:  from,
			Kind:      core.ActionSkip,
			Outcome:   core.OutcomeSkipped,
			CreatedAt: now,
		}
		if err := tx.AppendAction(rec); err != nil {
			return err
		}
		return snap.flush(tx)
	})
	if err != nil || rec == nil {
		return false, err
	}

	e.logger.Info().
		Str("game_id", gameID).
		Str("player_id", from).
		Dur("timeout", m.rules.TurnTimeout).
		Msg("Stalled turn skipped")
	e.publisher.Publish(events.NewTurnAdvancedEvent(gameID, from, to, true, now))
	return true, nil
}

// NextSweepDelay returns how long until the current-turn bot may act, or
// zero when it may act now. ok is false when no bot holds the turn.
func (e *Engine) NextSweepDelay(ctx context.Context, gameID string) (delay time.Duration, ok bool, err error) {
	m := e.mech.Load()
	err = e.view(ctx, gameID, func(tx store.Tx) error {
		g, err := tx.Game()
		if err != nil || g.Status != core.StatusActive {
			return err
		}
		players, err := tx.PlayerStates()
		if err != nil {
			return err
		}
		for _, ps := range players {
			if ps.PlayerID == g.CurrentTurnPlayerID && ps.IsBot {
				delay, ok = m.cooldown.Remaining(ps, e.clock.Now()), true
			}
		}
		return nil
	})
	return delay, ok, err
}
