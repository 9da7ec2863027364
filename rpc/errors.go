package rpc

import (
	"errors"

	"gigchain/core"
	"gigchain/native/bounty"
	"gigchain/native/gig"
	"gigchain/native/token"
)

// errorCode maps engine sentinel errors onto the fixed JSON-RPC error codes.
// Unknown errors fall through to the generic server error.
func errorCode(err error) int {
	switch {
	case errors.Is(err, bounty.ErrNotFound), errors.Is(err, gig.ErrNotFound):
		return codeNotFound
	case errors.Is(err, bounty.ErrUnauthorized), errors.Is(err, gig.ErrUnauthorized):
		return codeUnauthorized
	case errors.Is(err, bounty.ErrNotOpen),
		errors.Is(err, bounty.ErrDeadlinePassed),
		errors.Is(err, gig.ErrNotOpen),
		errors.Is(err, gig.ErrProposalWindowClosed),
		errors.Is(err, gig.ErrSelectionPending),
		errors.Is(err, gig.ErrNotStaked):
		return codeInvalidState
	case errors.Is(err, token.ErrInsufficientBalance), errors.Is(err, token.ErrInsufficientAllowance):
		return codeInsufficientFunds
	case errors.Is(err, gig.ErrDuplicateProposal):
		return codeDuplicateProposal
	case errors.Is(err, core.ErrUnrecognizedAction):
		return codeUnrecognizedAction
	case errors.Is(err, core.ErrInvalidArgs),
		errors.Is(err, bounty.ErrInvalidAllocation),
		errors.Is(err, bounty.ErrInvalidDeadline),
		errors.Is(err, gig.ErrInvalidProposal),
		errors.Is(err, token.ErrInvalidAmount):
		return codeInvalidParams
	default:
		return codeServerError
	}
}
