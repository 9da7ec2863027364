package token

import (
	"errors"
	"math/big"
	"testing"

	"gigchain/core/types"
)

type mockState struct {
	accounts map[types.Address]*types.Account
}

func newMockState() *mockState {
	return &mockState{accounts: make(map[types.Address]*types.Account)}
}

func (m *mockState) GetAccount(addr types.Address) (*types.Account, error) {
	acc, ok := m.accounts[addr]
	if !ok {
		return types.NewAccount(), nil
	}
	return acc.Clone(), nil
}

func (m *mockState) PutAccount(addr types.Address, account *types.Account) error {
	m.accounts[addr] = account.Clone()
	return nil
}

func newTestAddress(fill byte) types.Address {
	var addr types.Address
	for i := range addr {
		addr[i] = fill
	}
	return addr
}

func newLedger(t *testing.T) (*Ledger, *mockState) {
	t.Helper()
	state := newMockState()
	ledger := NewLedger()
	ledger.SetState(state)
	return ledger, state
}

func mustBalance(t *testing.T, l *Ledger, addr types.Address) *big.Int {
	t.Helper()
	balance, err := l.BalanceOf(addr)
	if err != nil {
		t.Fatalf("balance of %s: %v", addr, err)
	}
	return balance
}

func TestCreditDebit(t *testing.T) {
	ledger, _ := newLedger(t)
	alice := newTestAddress(0x01)

	if err := ledger.Credit(alice, big.NewInt(100)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := ledger.Debit(alice, big.NewInt(40)); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if got := mustBalance(t, ledger, alice); got.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("expected balance 60, got %s", got)
	}
}

func TestDebitInsufficientBalance(t *testing.T) {
	ledger, _ := newLedger(t)
	alice := newTestAddress(0x01)

	if err := ledger.Credit(alice, big.NewInt(10)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	err := ledger.Debit(alice, big.NewInt(11))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := mustBalance(t, ledger, alice); got.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("balance mutated on failed debit: %s", got)
	}
}

func TestNegativeAmountRejected(t *testing.T) {
	ledger, _ := newLedger(t)
	alice := newTestAddress(0x01)

	if err := ledger.Credit(alice, big.NewInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := ledger.Debit(alice, nil); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for nil amount, got %v", err)
	}
}

func TestTransferAtomicity(t *testing.T) {
	ledger, _ := newLedger(t)
	alice := newTestAddress(0x01)
	bob := newTestAddress(0x02)

	if err := ledger.Credit(alice, big.NewInt(50)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := ledger.Transfer(alice, bob, big.NewInt(70)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := mustBalance(t, ledger, alice); got.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("sender mutated on failed transfer: %s", got)
	}
	if got := mustBalance(t, ledger, bob); got.Sign() != 0 {
		t.Fatalf("recipient mutated on failed transfer: %s", got)
	}

	if err := ledger.Transfer(alice, bob, big.NewInt(30)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := mustBalance(t, ledger, alice); got.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("expected sender balance 20, got %s", got)
	}
	if got := mustBalance(t, ledger, bob); got.Cmp(big.NewInt(30)) != 0 {
		t.Fatalf("expected recipient balance 30, got %s", got)
	}
}

func TestApproveSetsNotIncrements(t *testing.T) {
	ledger, _ := newLedger(t)
	alice := newTestAddress(0x01)
	bob := newTestAddress(0x02)

	if err := ledger.Approve(alice, bob, big.NewInt(40)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := ledger.Approve(alice, bob, big.NewInt(25)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	allowance, err := ledger.AllowanceOf(alice, bob)
	if err != nil {
		t.Fatalf("allowance: %v", err)
	}
	if allowance.Cmp(big.NewInt(25)) != 0 {
		t.Fatalf("expected allowance 25, got %s", allowance)
	}
}

func TestTransferFromRoundTrip(t *testing.T) {
	ledger, _ := newLedger(t)
	alice := newTestAddress(0x01)
	bob := newTestAddress(0x02)
	carol := newTestAddress(0x03)

	if err := ledger.Credit(alice, big.NewInt(100)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := ledger.Approve(alice, bob, big.NewInt(60)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := ledger.TransferFrom(alice, bob, carol, big.NewInt(45)); err != nil {
		t.Fatalf("transferFrom: %v", err)
	}
	allowance, err := ledger.AllowanceOf(alice, bob)
	if err != nil {
		t.Fatalf("allowance: %v", err)
	}
	if allowance.Cmp(big.NewInt(15)) != 0 {
		t.Fatalf("expected residual allowance 15, got %s", allowance)
	}
	if got := mustBalance(t, ledger, carol); got.Cmp(big.NewInt(45)) != 0 {
		t.Fatalf("expected recipient balance 45, got %s", got)
	}
}

func TestTransferFromExceedsAllowance(t *testing.T) {
	ledger, _ := newLedger(t)
	alice := newTestAddress(0x01)
	bob := newTestAddress(0x02)
	carol := newTestAddress(0x03)

	if err := ledger.Credit(alice, big.NewInt(100)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := ledger.Approve(alice, bob, big.NewInt(20)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	err := ledger.TransferFrom(alice, bob, carol, big.NewInt(21))
	if !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance, got %v", err)
	}
	allowance, _ := ledger.AllowanceOf(alice, bob)
	if allowance.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("allowance mutated on failed transferFrom: %s", allowance)
	}
	if got := mustBalance(t, ledger, alice); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("owner balance mutated on failed transferFrom: %s", got)
	}
}

func TestTransferFromChecksAllowanceBeforeBalance(t *testing.T) {
	ledger, _ := newLedger(t)
	alice := newTestAddress(0x01)
	bob := newTestAddress(0x02)
	carol := newTestAddress(0x03)

	// Allowance exceeds the actual balance: the allowance check passes and
	// the balance check must fire.
	if err := ledger.Credit(alice, big.NewInt(5)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := ledger.Approve(alice, bob, big.NewInt(50)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	err := ledger.TransferFrom(alice, bob, carol, big.NewInt(10))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	allowance, _ := ledger.AllowanceOf(alice, bob)
	if allowance.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("allowance mutated on failed transferFrom: %s", allowance)
	}
}
