package core

// Action names accepted by the dispatcher. The set is closed; anything else
// is rejected with ErrUnrecognizedAction at the deserialization boundary.
const (
	ActionTokenMint         = "token_mint"
	ActionTokenTransfer     = "token_transfer"
	ActionTokenApprove      = "token_approve"
	ActionTokenTransferFrom = "token_transferFrom"

	ActionBountyCreate        = "bounty_create"
	ActionBountySubmit        = "bounty_submit"
	ActionBountySelectWinners = "bounty_selectWinners"
	ActionBountyCancel        = "bounty_cancel"

	ActionGigPost             = "gig_post"
	ActionGigSubmitProposal   = "gig_submitProposal"
	ActionGigWithdrawProposal = "gig_withdrawProposal"
	ActionGigSelectProposal   = "gig_selectProposal"
	ActionGigDepositStake     = "gig_depositStake"
	ActionGigComplete         = "gig_complete"
	ActionGigCancel           = "gig_cancel"
)

// Action is a tagged command routed by the dispatcher: a symbolic name, a
// positional argument list and the acting identity. Numeric arguments arrive
// as decimal strings and are coerced during routing.
type Action struct {
	Name string   `json:"action"`
	Args []string `json:"args"`
	From string   `json:"from"`
}
