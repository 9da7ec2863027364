package token

import (
	"errors"
	"fmt"
	"math/big"

	"gigchain/core/types"
)

var (
	errNilState = errors.New("token ledger: state not configured")

	// ErrInsufficientBalance is returned when a debit exceeds the account
	// balance. Debits fail rather than underflow.
	ErrInsufficientBalance = errors.New("token ledger: insufficient balance")
	// ErrInsufficientAllowance is returned when a transferFrom exceeds the
	// allowance granted to the spender.
	ErrInsufficientAllowance = errors.New("token ledger: insufficient allowance")
	// ErrInvalidAmount is returned for nil or negative amounts.
	ErrInvalidAmount = errors.New("token ledger: invalid amount")
)

type ledgerState interface {
	GetAccount(addr types.Address) (*types.Account, error)
	PutAccount(addr types.Address, account *types.Account) error
}

// Ledger is the sole mutator of account balances and allowances for the
// settlement asset. Markets never touch balances directly; every escrow,
// payout and refund flows through this engine.
type Ledger struct {
	state ledgerState
}

// NewLedger creates a ledger without a state backend. Callers configure the
// backend via SetState before use.
func NewLedger() *Ledger {
	return &Ledger{}
}

// SetState configures the state backend used by the ledger.
func (l *Ledger) SetState(state ledgerState) { l.state = state }

func checkAmount(amount *big.Int) (*big.Int, error) {
	if amount == nil {
		return nil, ErrInvalidAmount
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative", ErrInvalidAmount)
	}
	return new(big.Int).Set(amount), nil
}

func (l *Ledger) loadAccount(addr types.Address) (*types.Account, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	acc, err := l.state.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		acc = types.NewAccount()
	}
	if acc.Balance == nil {
		acc.Balance = big.NewInt(0)
	}
	if acc.Allowances == nil {
		acc.Allowances = make(map[string]*big.Int)
	}
	return acc, nil
}

// Credit adds amount to the account balance.
func (l *Ledger) Credit(addr types.Address, amount *big.Int) error {
	amt, err := checkAmount(amount)
	if err != nil {
		return err
	}
	acc, err := l.loadAccount(addr)
	if err != nil {
		return err
	}
	acc.Balance = new(big.Int).Add(acc.Balance, amt)
	return l.state.PutAccount(addr, acc)
}

// Debit removes amount from the account balance, failing with
// ErrInsufficientBalance when the balance does not cover it.
func (l *Ledger) Debit(addr types.Address, amount *big.Int) error {
	amt, err := checkAmount(amount)
	if err != nil {
		return err
	}
	acc, err := l.loadAccount(addr)
	if err != nil {
		return err
	}
	if acc.Balance.Cmp(amt) < 0 {
		return ErrInsufficientBalance
	}
	acc.Balance = new(big.Int).Sub(acc.Balance, amt)
	return l.state.PutAccount(addr, acc)
}

// Transfer moves amount from one account to another. Both the debit and the
// credit apply or neither does: the debit is validated before any write and
// the two writes target distinct accounts loaded up front.
func (l *Ledger) Transfer(from, to types.Address, amount *big.Int) error {
	amt, err := checkAmount(amount)
	if err != nil {
		return err
	}
	if amt.Sign() == 0 {
		return nil
	}
	fromAcc, err := l.loadAccount(from)
	if err != nil {
		return err
	}
	toAcc, err := l.loadAccount(to)
	if err != nil {
		return err
	}
	if fromAcc.Balance.Cmp(amt) < 0 {
		return ErrInsufficientBalance
	}
	if from == to {
		return nil
	}
	fromAcc.Balance = new(big.Int).Sub(fromAcc.Balance, amt)
	toAcc.Balance = new(big.Int).Add(toAcc.Balance, amt)
	if err := l.state.PutAccount(from, fromAcc); err != nil {
		return err
	}
	return l.state.PutAccount(to, toAcc)
}

// Approve sets (does not increment) the allowance granted by owner to
// spender.
func (l *Ledger) Approve(owner, spender types.Address, amount *big.Int) error {
	amt, err := checkAmount(amount)
	if err != nil {
		return err
	}
	acc, err := l.loadAccount(owner)
	if err != nil {
		return err
	}
	acc.Allowances[spender.Hex()] = amt
	return l.state.PutAccount(owner, acc)
}

// TransferFrom spends part of the allowance granted by owner to spender,
// moving amount from owner to the recipient. The allowance check precedes
// the balance check, and no partial transfer is observable on failure.
func (l *Ledger) TransferFrom(owner, spender, to types.Address, amount *big.Int) error {
	amt, err := checkAmount(amount)
	if err != nil {
		return err
	}
	ownerAcc, err := l.loadAccount(owner)
	if err != nil {
		return err
	}
	allowance := ownerAcc.Allowance(spender)
	if allowance.Cmp(amt) < 0 {
		return ErrInsufficientAllowance
	}
	if ownerAcc.Balance.Cmp(amt) < 0 {
		return ErrInsufficientBalance
	}
	ownerAcc.Allowances[spender.Hex()] = new(big.Int).Sub(allowance, amt)
	if err := l.state.PutAccount(owner, ownerAcc); err != nil {
		return err
	}
	return l.Transfer(owner, to, amt)
}

// BalanceOf returns the current balance of the account.
func (l *Ledger) BalanceOf(addr types.Address) (*big.Int, error) {
	acc, err := l.loadAccount(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(acc.Balance), nil
}

// AllowanceOf returns the allowance granted by owner to spender.
func (l *Ledger) AllowanceOf(owner, spender types.Address) (*big.Int, error) {
	acc, err := l.loadAccount(owner)
	if err != nil {
		return nil, err
	}
	return acc.Allowance(spender), nil
}
