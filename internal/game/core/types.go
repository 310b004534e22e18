package core

import "fmt"

// GasType is the affinity of a tile and, by extension, of the player holding it.
// The zero value means the tile has never been claimed.
type GasType string

const (
	GasUnset  GasType = ""
	GasGreen  GasType = "green"
	GasYellow GasType = "yellow" // offensive
	GasToxic  GasType = "toxic"  // defensive
)

// AllGasTypes lists the claimable affinities
var AllGasTypes = []GasType{GasGreen, GasYellow, GasToxic}

func (g GasType) Valid() bool {
	switch g {
	case GasUnset, GasGreen, GasYellow, GasToxic:
		return true
	}
	return false
}

// ActionType represents the type of action a player requests
type ActionType string

const (
	ActionEmit   ActionType = "emit"
	ActionBomb   ActionType = "bomb"
	ActionDefend ActionType = "defend"
	// ActionSkip is never requested by players; it is recorded when a stalled turn is skipped.
	ActionSkip ActionType = "skip"
)

// ParseActionType validates a requested action kind
func ParseActionType(s string) (ActionType, error) {
	switch ActionType(s) {
	case ActionEmit, ActionBomb, ActionDefend:
		return ActionType(s), nil
	}
	return "", ErrInvalidAction.WithMessagef("unknown action type %q", s)
}

// GameStatus is the lifecycle status of a game instance
type GameStatus string

const (
	StatusPending   GameStatus = "pending"
	StatusActive    GameStatus = "active"
	StatusCompleted GameStatus = "completed"
)

// Outcome describes what an action did, as stored in the action log
type Outcome string

const (
	OutcomeClaimed  Outcome = "claimed"
	OutcomeCaptured Outcome = "captured"
	OutcomeFailed   Outcome = "failed"
	OutcomeDefended Outcome = "defended"
	OutcomeSkipped  Outcome = "skipped"
)

func (a ActionType) String() string { return string(a) }

func (s GameStatus) String() string { return string(s) }

// ParseGameStatus converts a stored status string
func ParseGameStatus(s string) (GameStatus, error) {
	switch GameStatus(s) {
	case StatusPending, StatusActive, StatusCompleted:
		return GameStatus(s), nil
	}
	return "", fmt.Errorf("unknown game status %q", s)
}
