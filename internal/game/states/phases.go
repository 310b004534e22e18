// Package states defines the game lifecycle: pending, active, completed.
package states

import (
	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
)

// AllowedTransitions returns the statuses a game in status s may move to
func AllowedTransitions(s core.GameStatus) []core.GameStatus {
	switch s {
	case core.StatusPending:
		// a pending game may be ended before it ever starts
		return []core.GameStatus{core.StatusActive, core.StatusCompleted}
	case core.StatusActive:
		return []core.GameStatus{core.StatusCompleted}
	default:
		return nil
	}
}

// CanTransitionTo checks if a transition from one status to the target is allowed
func CanTransitionTo(from, target core.GameStatus) bool {
	for _, s := range AllowedTransitions(from) {
		if s == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the status can never change again
func IsTerminal(s core.GameStatus) bool {
	return s == core.StatusCompleted
}

// CanReceiveActions returns true if the game processes player actions in this status
func CanReceiveActions(s core.GameStatus) bool {
	return s == core.StatusActive
}

// CanAddPlayers returns true if players can join in this status
func CanAddPlayers(s core.GameStatus) bool {
	return s == core.StatusPending
}
