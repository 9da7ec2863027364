package types

// ReceiptStatus tracks the settlement progress of a submitted action.
type ReceiptStatus string

const (
	ReceiptPending   ReceiptStatus = "pending"
	ReceiptConfirmed ReceiptStatus = "confirmed"
	ReceiptFailed    ReceiptStatus = "failed"
)

// Receipt is the synthetic transaction handle returned for a submitted
// action. State mutations are applied at the pending step; confirmation is
// informational and arrives after the simulated settlement latency.
type Receipt struct {
	Hash        string        `json:"hash"`
	Action      string        `json:"action"`
	From        string        `json:"from"`
	Status      ReceiptStatus `json:"status"`
	SubmittedAt int64         `json:"submittedAt"`
	ConfirmedAt int64         `json:"confirmedAt,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// Clone returns a copy of the receipt.
func (r *Receipt) Clone() *Receipt {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}
