package sdk

import (
	"context"
	"math/big"

	"gigchain/core/types"
)

// Bounty is the read model returned by the node for a competitive bounty.
type Bounty struct {
	ID              uint64 `json:"id"`
	Creator         string `json:"creator"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Category        uint8  `json:"category"`
	Deadline        int64  `json:"deadline"`
	TotalReward     string `json:"totalReward"`
	Status          uint8  `json:"status"`
	StatusLabel     string `json:"statusLabel"`
	SubmissionCount uint64 `json:"submissionCount"`
	CreatedAt       int64  `json:"createdAt"`
}

// BountySubmission is one competitive entry on a bounty.
type BountySubmission struct {
	BountyID     uint64   `json:"bountyId"`
	Submitter    string   `json:"submitter"`
	MainURI      string   `json:"mainUri"`
	EvidenceURIs []string `json:"evidenceUris"`
	SubmittedAt  int64    `json:"submittedAt"`
}

// CreateBountyRequest describes a new bounty. The reward is escrowed from the
// creator when the action applies.
type CreateBountyRequest struct {
	Creator     string `json:"creator"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    uint32 `json:"category"`
	Deadline    int64  `json:"deadline"`
	TotalReward string `json:"totalReward"`
}

// CreateBounty escrows the reward and opens a new bounty.
func (c *Client) CreateBounty(ctx context.Context, req CreateBountyRequest) (*types.Receipt, error) {
	var receipt types.Receipt
	if err := c.call(ctx, "bounty_create", req, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// SubmitBountyEntry appends a competitive entry to an open bounty.
func (c *Client) SubmitBountyEntry(ctx context.Context, bountyID uint64, submitter, mainURI string, evidenceURIs ...string) (*types.Receipt, error) {
	var receipt types.Receipt
	params := map[string]interface{}{
		"bountyId":  bountyID,
		"submitter": submitter,
		"mainUri":   mainURI,
	}
	if len(evidenceURIs) > 0 {
		params["evidenceUris"] = evidenceURIs
	}
	if err := c.call(ctx, "bounty_submit", params, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// SelectBountyWinners splits the escrowed reward by percentage and closes the
// bounty. Percentages not summing to 100 leave the remainder in the vault.
func (c *Client) SelectBountyWinners(ctx context.Context, bountyID uint64, caller string, winners []string, percentages []uint32) (*types.Receipt, error) {
	var receipt types.Receipt
	params := map[string]interface{}{
		"bountyId":    bountyID,
		"caller":      caller,
		"winners":     winners,
		"percentages": percentages,
	}
	if err := c.call(ctx, "bounty_selectWinners", params, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// CancelBounty refunds the escrowed reward to the creator.
func (c *Client) CancelBounty(ctx context.Context, bountyID uint64, caller string) (*types.Receipt, error) {
	var receipt types.Receipt
	params := map[string]interface{}{"bountyId": bountyID, "caller": caller}
	if err := c.call(ctx, "bounty_cancel", params, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// GetBounty fetches a bounty snapshot; nil means the identifier is unknown.
func (c *Client) GetBounty(ctx context.Context, bountyID uint64) (*Bounty, error) {
	var bty *Bounty
	if err := c.call(ctx, "bounty_get", map[string]uint64{"bountyId": bountyID}, &bty); err != nil {
		return nil, err
	}
	return bty, nil
}

// ListBountySubmissions returns all entries on a bounty in submission order.
func (c *Client) ListBountySubmissions(ctx context.Context, bountyID uint64) ([]BountySubmission, error) {
	var subs []BountySubmission
	if err := c.call(ctx, "bounty_listSubmissions", map[string]uint64{"bountyId": bountyID}, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// BountyCount returns the number of bounties created so far.
func (c *Client) BountyCount(ctx context.Context) (uint64, error) {
	var count uint64
	if err := c.call(ctx, "bounty_count", nil, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// RewardOf parses the bounty reward into a big integer.
func (b *Bounty) RewardOf() (*big.Int, bool) {
	return new(big.Int).SetString(b.TotalReward, 10)
}
