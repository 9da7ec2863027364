package core

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"gigchain/core/events"
	"gigchain/core/types"
	"gigchain/native/bounty"
	"gigchain/native/gig"
	"gigchain/native/token"
	"gigchain/observability/metrics"
	"gigchain/storage"
)

var (
	// ErrUnrecognizedAction is returned for action names outside the closed
	// command set.
	ErrUnrecognizedAction = errors.New("node: unrecognized action")
	// ErrInvalidArgs is returned when positional arguments fail coercion.
	ErrInvalidArgs = errors.New("node: invalid action arguments")
)

// Params tunes the dispatcher behaviour. Zero latencies make settlement
// synchronous, which tests rely on.
type Params struct {
	PlatformFeeBps   uint32
	StakeGracePeriod int64
	ConfirmLatency   time.Duration
	ReadLatency      time.Duration
}

// ModuleAddress derives a deterministic account address for an internal
// module (vaults, fee treasury) from its name.
func ModuleAddress(name string) types.Address {
	var addr types.Address
	digest := ethcrypto.Keccak256([]byte("gigchain/module/" + name))
	copy(addr[:], digest[12:])
	return addr
}

// Node is the dispatcher in front of the ledger and the two markets. It
// serialises every mutating action behind a single mutex, applies the state
// mutation at the pending step of the receipt lifecycle, and confirms the
// receipt after the simulated settlement latency. Reads are snapshot reads
// that reflect all previously committed writes.
type Node struct {
	mu sync.RWMutex

	state        *State
	ledger       *token.Ledger
	bountyEngine *bounty.Engine
	gigEngine    *gig.Engine
	bus          *events.Bus

	bountyVault types.Address
	gigVault    types.Address
	feeTreasury types.Address

	params Params
	nowFn  func() int64
	nonce  uint64
}

// NewNode wires the ledger and market engines against a shared state manager
// and the provided key-value store.
func NewNode(db storage.Database, params Params) (*Node, error) {
	state := NewState(db)
	if err := state.Load(); err != nil {
		return nil, fmt.Errorf("node: load state: %w", err)
	}
	if params.PlatformFeeBps == 0 {
		params.PlatformFeeBps = gig.DefaultPlatformFeeBps
	}
	if params.StakeGracePeriod == 0 {
		params.StakeGracePeriod = gig.DefaultStakeGracePeriod
	}

	n := &Node{
		state:        state,
		ledger:       token.NewLedger(),
		bountyEngine: bounty.NewEngine(),
		gigEngine:    gig.NewEngine(),
		bus:          events.NewBus(),
		bountyVault:  ModuleAddress("bounty-vault"),
		gigVault:     ModuleAddress("gig-vault"),
		feeTreasury:  ModuleAddress("fee-treasury"),
		params:       params,
		nowFn:        func() int64 { return time.Now().Unix() },
	}
	n.ledger.SetState(state)
	n.bountyEngine.SetState(state)
	n.bountyEngine.SetLedger(n.ledger)
	n.bountyEngine.SetVault(n.bountyVault)
	n.bountyEngine.SetEmitter(n.bus)
	n.gigEngine.SetState(state)
	n.gigEngine.SetLedger(n.ledger)
	n.gigEngine.SetVault(n.gigVault)
	n.gigEngine.SetFeeTreasury(n.feeTreasury)
	n.gigEngine.SetEmitter(n.bus)
	if err := n.gigEngine.SetPlatformFeeBps(params.PlatformFeeBps); err != nil {
		return nil, err
	}
	if err := n.gigEngine.SetStakeGracePeriod(params.StakeGracePeriod); err != nil {
		return nil, err
	}
	return n, nil
}

// SetNowFunc overrides the time source for the node and both market engines.
// Primarily intended for tests.
func (n *Node) SetNowFunc(now func() int64) {
	if now == nil {
		now = func() int64 { return time.Now().Unix() }
	}
	n.nowFn = now
	n.bountyEngine.SetNowFunc(now)
	n.gigEngine.SetNowFunc(now)
}

// SubscribeEvents registers an event stream subscriber.
func (n *Node) SubscribeEvents(buffer int) (<-chan events.Event, func()) {
	return n.bus.Subscribe(buffer)
}

// FeeTreasury returns the platform fee account address.
func (n *Node) FeeTreasury() types.Address { return n.feeTreasury }

func (n *Node) receiptHash(action Action, nonce uint64) string {
	payload := strings.Join(append([]string{action.Name, action.From, strconv.FormatUint(nonce, 10)}, action.Args...), "|")
	return "0x" + hex.EncodeToString(ethcrypto.Keccak256([]byte(payload)))
}

// SubmitAction validates and applies a mutating action. The returned receipt
// is pending when the mutation committed and failed when it did not; in both
// cases the receipt is queryable afterwards. Confirmation happens after the
// configured latency and carries no additional state change.
func (n *Node) SubmitAction(action Action) (*types.Receipt, error) {
	n.mu.Lock()
	n.nonce++
	receipt := &types.Receipt{
		Hash:        n.receiptHash(action, n.nonce),
		Action:      action.Name,
		From:        action.From,
		Status:      types.ReceiptPending,
		SubmittedAt: n.nowFn(),
	}
	err := n.applyAction(action)
	outcome := "applied"
	if err != nil {
		receipt.Status = types.ReceiptFailed
		receipt.Error = err.Error()
		outcome = "failed"
		if errors.Is(err, ErrUnrecognizedAction) {
			outcome = "unrecognized"
		}
	}
	_ = n.state.ReceiptPut(receipt)
	n.mu.Unlock()

	metrics.ActionsTotal.WithLabelValues(action.Name, outcome).Inc()
	if err != nil {
		return receipt.Clone(), err
	}
	go n.confirm(receipt.Hash)
	return receipt.Clone(), nil
}

func (n *Node) confirm(hash string) {
	started := time.Now()
	if n.params.ConfirmLatency > 0 {
		time.Sleep(n.params.ConfirmLatency)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	receipt, ok := n.state.ReceiptGet(hash)
	if !ok || receipt.Status != types.ReceiptPending {
		return
	}
	receipt.Status = types.ReceiptConfirmed
	receipt.ConfirmedAt = n.nowFn()
	_ = n.state.ReceiptPut(receipt)
	metrics.ConfirmLatencySeconds.Observe(time.Since(started).Seconds())
}

func (n *Node) applyAction(action Action) error {
	from, err := types.ParseAddress(action.From)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	args := argReader{args: action.Args}
	switch action.Name {
	case ActionTokenMint:
		to, amount := args.address(), args.amount()
		if err := args.err(2); err != nil {
			return err
		}
		return n.ledger.Credit(to, amount)
	case ActionTokenTransfer:
		to, amount := args.address(), args.amount()
		if err := args.err(2); err != nil {
			return err
		}
		return n.ledger.Transfer(from, to, amount)
	case ActionTokenApprove:
		spender, amount := args.address(), args.amount()
		if err := args.err(2); err != nil {
			return err
		}
		return n.ledger.Approve(from, spender, amount)
	case ActionTokenTransferFrom:
		owner, to, amount := args.address(), args.address(), args.amount()
		if err := args.err(3); err != nil {
			return err
		}
		return n.ledger.TransferFrom(owner, from, to, amount)
	case ActionBountyCreate:
		name, description := args.str(), args.str()
		category, deadline, reward := args.uint32(), args.int64(), args.amount()
		if err := args.err(5); err != nil {
			return err
		}
		_, err := n.bountyEngine.Create(from, name, description, bounty.Category(category), deadline, reward)
		return err
	case ActionBountySubmit:
		id, mainURI := args.uint64(), args.str()
		if err := args.errAtLeast(2); err != nil {
			return err
		}
		evidence := args.rest()
		_, err := n.bountyEngine.Submit(id, from, mainURI, evidence)
		return err
	case ActionBountySelectWinners:
		id, winners, percentages := args.uint64(), args.addressList(), args.uint32List()
		if err := args.err(3); err != nil {
			return err
		}
		return n.bountyEngine.SelectWinners(id, from, winners, percentages)
	case ActionBountyCancel:
		id := args.uint64()
		if err := args.err(1); err != nil {
			return err
		}
		return n.bountyEngine.Cancel(id, from)
	case ActionGigPost:
		title, shortDescription, detailsURI := args.str(), args.str(), args.str()
		budget, stake := args.amount(), args.amount()
		duration, proposalDuration := args.int64(), args.int64()
		if err := args.err(7); err != nil {
			return err
		}
		_, err := n.gigEngine.Post(from, title, shortDescription, detailsURI, budget, stake, duration, proposalDuration)
		return err
	case ActionGigSubmitProposal:
		id, proposalURI := args.uint64(), args.str()
		if err := args.err(2); err != nil {
			return err
		}
		_, err := n.gigEngine.SubmitProposal(id, from, proposalURI)
		return err
	case ActionGigWithdrawProposal:
		id, index := args.uint64(), args.uint64()
		if err := args.err(2); err != nil {
			return err
		}
		return n.gigEngine.WithdrawProposal(id, index, from)
	case ActionGigSelectProposal:
		id, index := args.uint64(), args.uint64()
		if err := args.err(2); err != nil {
			return err
		}
		return n.gigEngine.SelectProposal(id, index, from)
	case ActionGigDepositStake:
		id := args.uint64()
		if err := args.err(1); err != nil {
			return err
		}
		return n.gigEngine.DepositStake(id, from)
	case ActionGigComplete:
		id := args.uint64()
		if err := args.err(1); err != nil {
			return err
		}
		return n.gigEngine.Complete(id, from)
	case ActionGigCancel:
		id := args.uint64()
		if err := args.err(1); err != nil {
			return err
		}
		return n.gigEngine.Cancel(id, from)
	default:
		return fmt.Errorf("%w: %s", ErrUnrecognizedAction, action.Name)
	}
}

func (n *Node) readDelay() {
	if n.params.ReadLatency > 0 {
		time.Sleep(n.params.ReadLatency)
	}
}

// GetReceipt returns the receipt for a submitted action.
func (n *Node) GetReceipt(hash string) (*types.Receipt, bool) {
	n.readDelay()
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state.ReceiptGet(hash)
}

// GetBounty returns a snapshot of the bounty, reporting absence explicitly.
func (n *Node) GetBounty(id uint64) (*bounty.Bounty, bool) {
	n.readDelay()
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.bountyEngine.Get(id)
}

// GetBountySubmissions returns the append-only submission list.
func (n *Node) GetBountySubmissions(id uint64) []*bounty.Submission {
	n.readDelay()
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.bountyEngine.Submissions(id)
}

// BountyCount returns the number of bounties created so far.
func (n *Node) BountyCount() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.bountyEngine.Count()
}

// GetGig returns a snapshot of the gig. Lazy staking-grace expiry is applied
// before the snapshot is taken, so a stale "awaiting stake" gig resolves on
// the first read that touches it. The write lock is held because that
// recomputation may persist state.
func (n *Node) GetGig(id uint64) (*gig.Gig, bool) {
	n.readDelay()
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gigEngine.Get(id)
}

// GetGigProposals returns the proposal list for the gig after lazy expiry.
func (n *Node) GetGigProposals(id uint64) []*gig.Proposal {
	n.readDelay()
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gigEngine.Proposals(id)
}

// GigCount returns the number of gigs posted so far.
func (n *Node) GigCount() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.gigEngine.Count()
}

// BalanceOf returns the ledger balance of the account.
func (n *Node) BalanceOf(addr types.Address) (*big.Int, error) {
	n.readDelay()
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.ledger.BalanceOf(addr)
}

// AllowanceOf returns the allowance granted by owner to spender.
func (n *Node) AllowanceOf(owner, spender types.Address) (*big.Int, error) {
	n.readDelay()
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.ledger.AllowanceOf(owner, spender)
}

// argReader coerces positional string arguments, collecting the first error
// so call sites stay flat.
type argReader struct {
	args    []string
	pos     int
	failure error
}

func (r *argReader) fail(err error) {
	if r.failure == nil {
		r.failure = err
	}
}

func (r *argReader) next() (string, bool) {
	if r.pos >= len(r.args) {
		r.fail(fmt.Errorf("%w: missing argument %d", ErrInvalidArgs, r.pos))
		return "", false
	}
	arg := r.args[r.pos]
	r.pos++
	return arg, true
}

func (r *argReader) str() string {
	arg, _ := r.next()
	return arg
}

func (r *argReader) address() types.Address {
	arg, ok := r.next()
	if !ok {
		return types.Address{}
	}
	addr, err := types.ParseAddress(arg)
	if err != nil {
		r.fail(fmt.Errorf("%w: %v", ErrInvalidArgs, err))
	}
	return addr
}

func (r *argReader) amount() *big.Int {
	arg, ok := r.next()
	if !ok {
		return nil
	}
	amount, valid := new(big.Int).SetString(strings.TrimSpace(arg), 10)
	if !valid {
		r.fail(fmt.Errorf("%w: invalid amount %q", ErrInvalidArgs, arg))
		return nil
	}
	return amount
}

func (r *argReader) uint64() uint64 {
	arg, ok := r.next()
	if !ok {
		return 0
	}
	value, err := strconv.ParseUint(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		r.fail(fmt.Errorf("%w: invalid integer %q", ErrInvalidArgs, arg))
	}
	return value
}

func (r *argReader) uint32() uint32 {
	arg, ok := r.next()
	if !ok {
		return 0
	}
	value, err := strconv.ParseUint(strings.TrimSpace(arg), 10, 32)
	if err != nil {
		r.fail(fmt.Errorf("%w: invalid integer %q", ErrInvalidArgs, arg))
	}
	return uint32(value)
}

func (r *argReader) int64() int64 {
	arg, ok := r.next()
	if !ok {
		return 0
	}
	value, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		r.fail(fmt.Errorf("%w: invalid integer %q", ErrInvalidArgs, arg))
	}
	return value
}

func (r *argReader) addressList() []types.Address {
	arg, ok := r.next()
	if !ok {
		return nil
	}
	parts := strings.Split(arg, ",")
	out := make([]types.Address, 0, len(parts))
	for _, part := range parts {
		addr, err := types.ParseAddress(part)
		if err != nil {
			r.fail(fmt.Errorf("%w: %v", ErrInvalidArgs, err))
			return nil
		}
		out = append(out, addr)
	}
	return out
}

func (r *argReader) uint32List() []uint32 {
	arg, ok := r.next()
	if !ok {
		return nil
	}
	parts := strings.Split(arg, ",")
	out := make([]uint32, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			r.fail(fmt.Errorf("%w: invalid integer %q", ErrInvalidArgs, part))
			return nil
		}
		out = append(out, uint32(value))
	}
	return out
}

func (r *argReader) rest() []string {
	rest := append([]string(nil), r.args[r.pos:]...)
	r.pos = len(r.args)
	return rest
}

func (r *argReader) err(want int) error {
	if r.failure != nil {
		return r.failure
	}
	if len(r.args) != want {
		return fmt.Errorf("%w: expected %d arguments, got %d", ErrInvalidArgs, want, len(r.args))
	}
	return nil
}

func (r *argReader) errAtLeast(want int) error {
	if r.failure != nil {
		return r.failure
	}
	if len(r.args) < want {
		return fmt.Errorf("%w: expected at least %d arguments, got %d", ErrInvalidArgs, want, len(r.args))
	}
	return nil
}
