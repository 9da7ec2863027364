package types

import "math/big"

// Account tracks the settlement-asset balance and outstanding spending
// allowances for one address. Allowance keys are the canonical hex form of
// the spender address.
type Account struct {
	Balance    *big.Int            `json:"balance"`
	Allowances map[string]*big.Int `json:"allowances,omitempty"`
}

// NewAccount returns an empty account with non-nil fields.
func NewAccount() *Account {
	return &Account{Balance: big.NewInt(0), Allowances: make(map[string]*big.Int)}
}

// Clone returns a deep copy of the account so callers can mutate the copy
// without affecting the stored instance.
func (a *Account) Clone() *Account {
	if a == nil {
		return NewAccount()
	}
	clone := NewAccount()
	if a.Balance != nil {
		clone.Balance = new(big.Int).Set(a.Balance)
	}
	for spender, amount := range a.Allowances {
		if amount == nil {
			clone.Allowances[spender] = big.NewInt(0)
			continue
		}
		clone.Allowances[spender] = new(big.Int).Set(amount)
	}
	return clone
}

// Allowance returns the allowance granted to the spender, zero when unset.
func (a *Account) Allowance(spender Address) *big.Int {
	if a == nil || a.Allowances == nil {
		return big.NewInt(0)
	}
	amount, ok := a.Allowances[spender.Hex()]
	if !ok || amount == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(amount)
}
