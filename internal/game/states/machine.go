package states

import (
	"fmt"
	"time"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
)

// Transition represents a status change of one game
type Transition struct {
	From      core.GameStatus
	To        core.GameStatus
	Timestamp time.Time
	Reason    string
}

// TransitionTo moves g to target, stamping the lifecycle timestamps.
// The game is left untouched when the move is not allowed.
func TransitionTo(g *core.Game, target core.GameStatus, now time.Time, reason string) (Transition, error) {
	if !CanTransitionTo(g.Status, target) {
		return Transition{}, core.ErrInvariant.WithMessagef("invalid transition from %s to %s", g.Status, target)
	}
	if err := validate(g, target); err != nil {
		return Transition{}, fmt.Errorf("target state validation failed: %w", err)
	}

	tr := Transition{From: g.Status, To: target, Timestamp: now, Reason: reason}
	g.Status = target
	switch target {
	case core.StatusActive:
		g.StartedAt = now
		g.TurnStartedAt = now
	case core.StatusCompleted:
		g.EndedAt = now
		g.EndReason = reason
		g.CurrentTurnPlayerID = ""
	}
	return tr, nil
}

func validate(g *core.Game, target core.GameStatus) error {
	if target == core.StatusActive && g.CurrentTurnPlayerID == "" {
		return core.ErrEmptyTurnOrder
	}
	return nil
}
