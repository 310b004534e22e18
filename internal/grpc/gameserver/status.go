package gameserver

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
)

// codeFor maps an engine error classification onto a gRPC status code
func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	}
	switch core.KindOf(err) {
	case core.KindValidation:
		return codes.InvalidArgument
	case core.KindRuleViolation:
		return codes.FailedPrecondition
	case core.KindNotFound:
		return codes.NotFound
	case core.KindTransient:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// toStatus converts an engine error into a gRPC status error. Internal
// failures hide their cause from the caller.
func toStatus(err error) error {
	code := codeFor(err)
	if code == codes.Internal {
		return status.Error(code, "internal error")
	}
	return status.Errorf(code, "%s: %s", core.CodeOf(err), core.MessageOf(err))
}

// inBand reports whether a SubmitAction error is answered in the response
// body rather than as a status
func inBand(err error) bool {
	switch core.KindOf(err) {
	case core.KindValidation, core.KindRuleViolation:
		return true
	}
	return false
}
