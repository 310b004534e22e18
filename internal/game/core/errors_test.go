package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByCode(t *testing.T) {
	detailed := ErrOnCooldown.WithMessagef("wait %ds", 3)

	assert.True(t, errors.Is(detailed, ErrOnCooldown))
	assert.False(t, errors.Is(detailed, ErrNotYourTurn))
	assert.Equal(t, "wait 3s", detailed.Error())
	assert.Equal(t, "action is on cooldown", ErrOnCooldown.Message, "sentinel must not be mutated")
}

func TestError_WrappedThroughFmt(t *testing.T) {
	err := fmt.Errorf("submit: %w", ErrInsufficientGas)

	assert.True(t, errors.Is(err, ErrInsufficientGas))
	assert.Equal(t, KindRuleViolation, KindOf(err))
	assert.Equal(t, "insufficient_gas", CodeOf(err))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{"validation", ErrInvalidCoordinates, KindValidation},
		{"rule violation", ErrNotAdjacent, KindRuleViolation},
		{"not found", ErrGameNotFound, KindNotFound},
		{"transient", ErrStoreUnavailable, KindTransient},
		{"invariant", ErrEmptyTurnOrder, KindInternal},
		{"unclassified", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestAsTransient(t *testing.T) {
	assert.Nil(t, AsTransient(nil))

	cause := errors.New("connection reset")
	wrapped := AsTransient(cause)
	require.Error(t, wrapped)
	assert.Equal(t, KindTransient, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, cause))

	assert.Same(t, ErrGameNotFound, AsTransient(ErrGameNotFound), "classified errors pass through")
}

func TestParseActionType(t *testing.T) {
	for _, s := range []string{"emit", "bomb", "defend"} {
		a, err := ParseActionType(s)
		require.NoError(t, err)
		assert.Equal(t, s, a.String())
	}

	_, err := ParseActionType("skip")
	assert.ErrorIs(t, err, ErrInvalidAction, "skip is internal only")

	_, err = ParseActionType("")
	assert.ErrorIs(t, err, ErrInvalidAction)
}
