package sdk

import (
	"context"

	"gigchain/core/types"
)

// Gig is the read model returned by the node for a single-assignment gig.
type Gig struct {
	ID               uint64 `json:"id"`
	Poster           string `json:"poster"`
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	DetailsURI       string `json:"detailsUri"`
	Budget           string `json:"budget"`
	Stake            string `json:"stake"`
	Duration         int64  `json:"duration"`
	ProposalDuration int64  `json:"proposalDuration"`
	Status           uint8  `json:"status"`
	StatusLabel      string `json:"statusLabel"`
	ProposalCount    uint64 `json:"proposalCount"`
	SelectedProposal int64  `json:"selectedProposal"`
	PostedAt         int64  `json:"postedAt"`
	Deadline         int64  `json:"deadline"`
}

// GigProposal is one freelancer bid on a gig.
type GigProposal struct {
	GigID       uint64 `json:"gigId"`
	Index       uint64 `json:"index"`
	Freelancer  string `json:"freelancer"`
	ProposalURI string `json:"proposalUri"`
	SubmittedAt int64  `json:"submittedAt"`
	IsWithdrawn bool   `json:"isWithdrawn"`
	IsExpired   bool   `json:"isAutoExpired"`
}

// PostGigRequest describes a new gig. The budget is escrowed from the poster
// when the action applies; the stake is collected later from the selected
// freelancer.
type PostGigRequest struct {
	Poster           string `json:"poster"`
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	DetailsURI       string `json:"detailsUri"`
	Budget           string `json:"budget"`
	Stake            string `json:"stake"`
	Duration         int64  `json:"duration"`
	ProposalDuration int64  `json:"proposalDuration"`
}

// PostGig escrows the budget and opens a new gig.
func (c *Client) PostGig(ctx context.Context, req PostGigRequest) (*types.Receipt, error) {
	var receipt types.Receipt
	if err := c.call(ctx, "gig_post", req, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// SubmitGigProposal places a freelancer bid while the proposal window is open.
func (c *Client) SubmitGigProposal(ctx context.Context, gigID uint64, freelancer, proposalURI string) (*types.Receipt, error) {
	var receipt types.Receipt
	params := map[string]interface{}{
		"gigId":       gigID,
		"freelancer":  freelancer,
		"proposalUri": proposalURI,
	}
	if err := c.call(ctx, "gig_submitProposal", params, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// WithdrawGigProposal retracts an unselected proposal.
func (c *Client) WithdrawGigProposal(ctx context.Context, gigID, proposalIndex uint64, caller string) (*types.Receipt, error) {
	var receipt types.Receipt
	params := map[string]interface{}{
		"gigId":         gigID,
		"proposalIndex": proposalIndex,
		"caller":        caller,
	}
	if err := c.call(ctx, "gig_withdrawProposal", params, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// SelectGigProposal records the poster's choice and starts the staking grace
// window.
func (c *Client) SelectGigProposal(ctx context.Context, gigID, proposalIndex uint64, caller string) (*types.Receipt, error) {
	var receipt types.Receipt
	params := map[string]interface{}{
		"gigId":         gigID,
		"proposalIndex": proposalIndex,
		"caller":        caller,
	}
	if err := c.call(ctx, "gig_selectProposal", params, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// DepositGigStake locks the assignment by collecting the freelancer's
// collateral.
func (c *Client) DepositGigStake(ctx context.Context, gigID uint64, caller string) (*types.Receipt, error) {
	var receipt types.Receipt
	params := map[string]interface{}{"gigId": gigID, "caller": caller}
	if err := c.call(ctx, "gig_depositStake", params, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// CompleteGig settles the gig: payout to the freelancer minus the platform
// fee, collateral returned in full.
func (c *Client) CompleteGig(ctx context.Context, gigID uint64, caller string) (*types.Receipt, error) {
	var receipt types.Receipt
	params := map[string]interface{}{"gigId": gigID, "caller": caller}
	if err := c.call(ctx, "gig_complete", params, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// CancelGig refunds the escrowed budget to the poster.
func (c *Client) CancelGig(ctx context.Context, gigID uint64, caller string) (*types.Receipt, error) {
	var receipt types.Receipt
	params := map[string]interface{}{"gigId": gigID, "caller": caller}
	if err := c.call(ctx, "gig_cancel", params, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// GetGig fetches a gig snapshot; nil means the identifier is unknown.
func (c *Client) GetGig(ctx context.Context, gigID uint64) (*Gig, error) {
	var g *Gig
	if err := c.call(ctx, "gig_get", map[string]uint64{"gigId": gigID}, &g); err != nil {
		return nil, err
	}
	return g, nil
}

// ListGigProposals returns all proposals on a gig in submission order.
func (c *Client) ListGigProposals(ctx context.Context, gigID uint64) ([]GigProposal, error) {
	var props []GigProposal
	if err := c.call(ctx, "gig_listProposals", map[string]uint64{"gigId": gigID}, &props); err != nil {
		return nil, err
	}
	return props, nil
}

// GigCount returns the number of gigs posted so far.
func (c *Client) GigCount(ctx context.Context) (uint64, error) {
	var count uint64
	if err := c.call(ctx, "gig_count", nil, &count); err != nil {
		return 0, err
	}
	return count, nil
}
