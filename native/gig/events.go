package gig

import (
	"math/big"
	"strconv"

	"gigchain/core/types"
)

const (
	EventTypeGigPosted            = "gig.posted"
	EventTypeGigProposalSubmitted = "gig.proposal_submitted"
	EventTypeGigProposalWithdrawn = "gig.proposal_withdrawn"
	EventTypeGigProposalSelected  = "gig.proposal_selected"
	EventTypeGigSelectionExpired  = "gig.selection_expired"
	EventTypeGigStaked            = "gig.staked"
	EventTypeGigCompleted         = "gig.completed"
	EventTypeGigCancelled         = "gig.cancelled"
)

type marketEvent struct {
	evt *types.Event
}

func (e marketEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e marketEvent) Event() *types.Event { return e.evt }

// NewPostedEvent returns the canonical event payload for a newly posted gig.
func NewPostedEvent(g *Gig) *types.Event { return newGigEvent(EventTypeGigPosted, g) }

// NewProposalSubmittedEvent returns the payload emitted when a proposal
// lands.
func NewProposalSubmittedEvent(g *Gig, p *Proposal) *types.Event {
	return withProposal(newGigEvent(EventTypeGigProposalSubmitted, g), p)
}

// NewProposalWithdrawnEvent returns the payload emitted when a freelancer
// retracts a proposal.
func NewProposalWithdrawnEvent(g *Gig, p *Proposal) *types.Event {
	return withProposal(newGigEvent(EventTypeGigProposalWithdrawn, g), p)
}

// NewProposalSelectedEvent returns the payload emitted when the poster picks
// a proposal and the staking grace window opens.
func NewProposalSelectedEvent(g *Gig, p *Proposal) *types.Event {
	return withProposal(newGigEvent(EventTypeGigProposalSelected, g), p)
}

// NewSelectionExpiredEvent returns the payload emitted when a selection is
// voided because no collateral arrived before the grace deadline.
func NewSelectionExpiredEvent(g *Gig, expiredIndex uint64) *types.Event {
	evt := newGigEvent(EventTypeGigSelectionExpired, g)
	evt.Attributes["expiredProposal"] = strconv.FormatUint(expiredIndex, 10)
	return evt
}

// NewStakedEvent returns the payload emitted when collateral is deposited.
func NewStakedEvent(g *Gig, p *Proposal) *types.Event {
	return withProposal(newGigEvent(EventTypeGigStaked, g), p)
}

// NewCompletedEvent returns the payload emitted on settlement.
func NewCompletedEvent(g *Gig, p *Proposal, fee *big.Int) *types.Event {
	evt := withProposal(newGigEvent(EventTypeGigCompleted, g), p)
	if fee != nil {
		evt.Attributes["fee"] = fee.String()
	}
	return evt
}

// NewCancelledEvent returns the payload emitted when the poster cancels.
func NewCancelledEvent(g *Gig) *types.Event { return newGigEvent(EventTypeGigCancelled, g) }

func withProposal(evt *types.Event, p *Proposal) *types.Event {
	if p != nil {
		evt.Attributes["proposalIndex"] = strconv.FormatUint(p.Index, 10)
		evt.Attributes["freelancer"] = p.Freelancer.Hex()
	}
	return evt
}

func newGigEvent(eventType string, g *Gig) *types.Event {
	attrs := make(map[string]string)
	if g == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	sanitized, err := SanitizeGig(g)
	if err != nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["id"] = strconv.FormatUint(sanitized.ID, 10)
	attrs["poster"] = sanitized.Poster.Hex()
	attrs["title"] = sanitized.Title
	attrs["budget"] = sanitized.Budget.String()
	attrs["stake"] = sanitized.Stake.String()
	attrs["status"] = strconv.FormatUint(uint64(sanitized.Status), 10)
	attrs["selectedProposal"] = strconv.FormatInt(sanitized.SelectedProposal, 10)
	attrs["deadline"] = strconv.FormatInt(sanitized.Deadline, 10)
	attrs["postedAt"] = strconv.FormatInt(sanitized.PostedAt, 10)
	return &types.Event{Type: eventType, Attributes: attrs}
}
