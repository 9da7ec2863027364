package gig

import (
	"fmt"
	"math/big"
	"strings"

	"gigchain/core/types"
)

// Status represents the lifecycle states of a gig. The numeric codes are part
// of the external surface and must not be renumbered. A gig awaiting the
// freelancer's collateral deposit remains StatusOpen with SelectedProposal
// set; the selection field distinguishes the sub-state.
type Status uint8

const (
	StatusOpen Status = iota
	StatusStaked
	StatusCompleted
	StatusCancelled
)

// Valid reports whether the status value is within the supported range.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusStaked, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusStaked:
		return "staked"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// NoSelection marks a gig with no pending proposal selection.
const NoSelection int64 = -1

// Gig captures a single-assignment escrow agreement. The budget is escrowed
// from the poster atomically with creation and leaves the vault only on
// completion (to the freelancer, minus the platform fee) or cancellation
// (refund to the poster). DetailsURI is an opaque metadata pointer.
type Gig struct {
	ID               uint64        `json:"id"`
	Poster           types.Address `json:"poster"`
	Title            string        `json:"title"`
	ShortDescription string        `json:"shortDescription"`
	DetailsURI       string        `json:"detailsUri"`
	Budget           *big.Int      `json:"budget"`
	Stake            *big.Int      `json:"stake"`
	Duration         int64         `json:"duration"`
	ProposalDuration int64         `json:"proposalDuration"`
	Status           Status        `json:"status"`
	ProposalCount    uint64        `json:"proposalCount"`
	SelectedProposal int64         `json:"selectedProposal"`
	SelectedAt       int64         `json:"selectedAt,omitempty"`
	StakedAt         int64         `json:"stakedAt,omitempty"`
	PostedAt         int64         `json:"postedAt"`
	Deadline         int64         `json:"deadline"`
}

// Clone returns a deep copy of the gig.
func (g *Gig) Clone() *Gig {
	if g == nil {
		return nil
	}
	clone := *g
	if g.Budget != nil {
		clone.Budget = new(big.Int).Set(g.Budget)
	} else {
		clone.Budget = big.NewInt(0)
	}
	if g.Stake != nil {
		clone.Stake = new(big.Int).Set(g.Stake)
	} else {
		clone.Stake = big.NewInt(0)
	}
	return &clone
}

// ProposalWindowEnd returns the instant after which proposals are rejected.
func (g *Gig) ProposalWindowEnd() int64 {
	return g.PostedAt + g.ProposalDuration
}

// Proposal records one freelancer bid on a gig. AutoExpired is set when the
// freelancer was selected but failed to deposit collateral before the staking
// grace deadline elapsed.
type Proposal struct {
	GigID       uint64        `json:"gigId"`
	Index       uint64        `json:"index"`
	Freelancer  types.Address `json:"freelancer"`
	ProposalURI string        `json:"proposalUri"`
	SubmittedAt int64         `json:"submittedAt"`
	Withdrawn   bool          `json:"isWithdrawn"`
	AutoExpired bool          `json:"isAutoExpired"`
}

// Clone returns a copy of the proposal.
func (p *Proposal) Clone() *Proposal {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// Active reports whether the proposal can still be selected.
func (p *Proposal) Active() bool {
	return p != nil && !p.Withdrawn && !p.AutoExpired
}

// SanitizeGig validates and normalises a gig definition, returning a cloned
// instance with non-nil amounts. The original value is not mutated.
func SanitizeGig(g *Gig) (*Gig, error) {
	if g == nil {
		return nil, fmt.Errorf("gig: nil gig")
	}
	clone := g.Clone()
	clone.Title = strings.TrimSpace(clone.Title)
	if clone.Title == "" {
		return nil, fmt.Errorf("gig: title required")
	}
	if !clone.Status.Valid() {
		return nil, fmt.Errorf("gig: invalid status: %d", clone.Status)
	}
	if clone.Budget.Sign() < 0 {
		return nil, fmt.Errorf("gig: budget must be non-negative")
	}
	if clone.Stake.Sign() < 0 {
		return nil, fmt.Errorf("gig: stake must be non-negative")
	}
	if clone.SelectedProposal < NoSelection {
		return nil, fmt.Errorf("gig: invalid selection index: %d", clone.SelectedProposal)
	}
	return clone, nil
}
