package game

import (
	"context"
	"time"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/game/events"
	"github.com/mitchelldurbincs/gasgrid/internal/store"
)

// ActionRequest is one player's request to act on a tile
type ActionRequest struct {
	GameID   string
	PlayerID string
	Action   core.ActionType
	Target   core.Coordinate
	GasSpent int
}

// ActionResult describes an accepted action. A failed attack is still an
// accepted action: gas is spent and the turn moves on.
type ActionResult struct {
	Outcome      core.Outcome
	Captured     int
	GasRemaining int
	Message      string
	GameEnded    bool
	NextPlayerID string
}

// Success reports whether the action took or held its target
func (r ActionResult) Success() bool {
	return r.Outcome != core.OutcomeFailed
}

func (r ActionRequest) validate() error {
	if r.GameID == "" {
		return core.ErrMissingField.WithMessagef("game id is required")
	}
	if r.PlayerID == "" {
		return core.ErrMissingField.WithMessagef("player id is required")
	}
	if _, err := core.ParseActionType(string(r.Action)); err != nil {
		return err
	}
	if r.Target.X < 0 || r.Target.Y < 0 {
		return core.ErrInvalidCoordinates.WithMessagef("invalid target %s", r.Target)
	}
	if r.GasSpent <= 0 {
		return core.ErrInvalidGas
	}
	return nil
}

// SubmitAction validates and applies one action atomically. Rule violations
// leave the game untouched and are returned as classified errors.
func (e *Engine) SubmitAction(ctx context.Context, req ActionRequest) (ActionResult, error) {
	now := e.clock.Now()
	if err := req.validate(); err != nil {
		e.reject(req, err, now)
		return ActionResult{}, err
	}
	m := e.mech.Load()

	var (
		res   *resolution
		tiles []*core.Tile
		game  *core.Game
	)
	err := e.update(ctx, req.GameID, func(tx store.Tx) error {
		snap, err := loadSnapshot(tx)
		if err != nil {
			return err
		}
		tp := newTurnProcessor(m, e.logger, now)
		r, err := tp.Process(snap, req)
		if err != nil {
			return err
		}
		if err := tx.AppendAction(r.record); err != nil {
			return err
		}
		if r.standings != nil {
			if err := tx.AddResults(r.standings); err != nil {
				return err
			}
			tiles = snap.state().Tiles
		}
		if err := snap.flush(tx); err != nil {
			return err
		}
		res, game = r, snap.game.Clone()
		return nil
	})
	if err != nil {
		e.reject(req, err, now)
		return ActionResult{}, err
	}

	e.logger.Debug().
		Str("game_id", req.GameID).
		Str("player_id", req.PlayerID).
		Str("action", req.Action.String()).
		Str("target", req.Target.String()).
		Str("outcome", string(res.record.Outcome)).
		Int("captured", res.record.Captured).
		Int("gas", res.actor.Gas).
		Msg("Action applied")

	e.publisher.Publish(events.NewActionResolvedEvent(res.record, res.actor.Gas))
	if len(res.captures) > 0 {
		e.publisher.Publish(events.NewTilesCapturedEvent(req.GameID, req.PlayerID, res.captures, now))
	}
	if res.standings != nil {
		e.logger.Info().
			Str("game_id", req.GameID).
			Str("winner", res.standings[0].PlayerID).
			Str("reason", game.EndReason).
			Msg("Game ended")
		e.publisher.Publish(events.NewGameEndedEvent(game, res.standings, tiles, now))
	} else {
		e.publisher.Publish(events.NewTurnAdvancedEvent(req.GameID, res.fromTurn, res.toTurn, false, now))
	}
	return res.result(), nil
}

func (e *Engine) reject(req ActionRequest, err error, now time.Time) {
	e.logFailure(err, req.GameID, "submit_action")
	switch core.KindOf(err) {
	case core.KindValidation, core.KindRuleViolation, core.KindNotFound:
		e.publisher.Publish(events.NewActionRejectedEvent(req.GameID, req.PlayerID, req.Action, req.Target, core.CodeOf(err), now))
	}
}
