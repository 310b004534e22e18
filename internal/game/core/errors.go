package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindRuleViolation
	KindNotFound
	KindTransient
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindRuleViolation:
		return "RuleViolation"
	case KindNotFound:
		return "NotFoundError"
	case KindTransient:
		return "TransientStoreError"
	default:
		return "InternalInvariantError"
	}
}

// Error is a classified engine error. Two errors match with errors.Is when
// their codes are equal, so a sentinel still matches after WithMessagef.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessagef returns a copy of e carrying a more specific message
func (e *Error) WithMessagef(format string, args ...interface{}) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// Wrap returns a copy of e that wraps cause
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

func newError(kind ErrorKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

var (
	ErrInvalidAction      = newError(KindValidation, "invalid_action", "invalid action type")
	ErrInvalidCoordinates = newError(KindValidation, "invalid_coordinates", "invalid coordinates")
	ErrInvalidGas         = newError(KindValidation, "invalid_gas", "gas spent must be positive")
	ErrMissingField       = newError(KindValidation, "missing_field", "required field missing")
	ErrMalformedRequest   = newError(KindValidation, "malformed_request", "malformed request")

	ErrNotYourTurn     = newError(KindRuleViolation, "not_your_turn", "it is not your turn")
	ErrOnCooldown      = newError(KindRuleViolation, "on_cooldown", "action is on cooldown")
	ErrInsufficientGas = newError(KindRuleViolation, "insufficient_gas", "insufficient gas")
	ErrNotAdjacent     = newError(KindRuleViolation, "not_adjacent", "target is not adjacent to your territory")
	ErrAlreadyOwned    = newError(KindRuleViolation, "already_owned", "you already own this tile")
	ErrDefendUnowned   = newError(KindRuleViolation, "defend_unowned", "you can only defend tiles you own")
	ErrGameNotActive   = newError(KindRuleViolation, "game_not_active", "game is not active")
	ErrNotParticipant  = newError(KindRuleViolation, "not_participant", "player has not joined this game")
	ErrGameFull        = newError(KindRuleViolation, "game_full", "game is full")
	ErrGameNotJoinable = newError(KindRuleViolation, "game_not_joinable", "game is no longer accepting players")

	ErrGameNotFound   = newError(KindNotFound, "game_not_found", "game not found")
	ErrPlayerNotFound = newError(KindNotFound, "player_not_found", "player not found")
	ErrTileNotFound   = newError(KindNotFound, "tile_not_found", "tile not found")

	ErrStoreUnavailable = newError(KindTransient, "store_unavailable", "datastore unavailable")

	ErrEmptyTurnOrder = newError(KindInternal, "empty_turn_order", "turn order is empty")
	ErrInvariant      = newError(KindInternal, "invariant", "internal invariant violated")
)

// KindOf returns the classification of err. Unclassified errors are internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the machine-readable reason for err
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrInvariant.Code
}

// MessageOf returns the human-readable message for err
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// AsTransient classifies an unknown store failure as retryable, leaving
// already-classified errors untouched.
func AsTransient(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return ErrStoreUnavailable.Wrap(err)
}
