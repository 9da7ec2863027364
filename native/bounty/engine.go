package bounty

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"gigchain/core/events"
	"gigchain/core/types"
)

var (
	errNilState  = errors.New("bounty engine: state not configured")
	errNilLedger = errors.New("bounty engine: ledger not configured")
	errNilVault  = errors.New("bounty engine: vault not configured")

	// ErrNotFound is returned when the bounty identifier is unknown.
	ErrNotFound = errors.New("bounty engine: bounty not found")
	// ErrNotOpen is returned when the bounty is already closed or cancelled.
	ErrNotOpen = errors.New("bounty engine: bounty not open")
	// ErrDeadlinePassed is returned for submissions after the hard cutoff.
	ErrDeadlinePassed = errors.New("bounty engine: deadline passed")
	// ErrInvalidDeadline is returned when the deadline is not in the future.
	ErrInvalidDeadline = errors.New("bounty engine: deadline before creation time")
	// ErrUnauthorized is returned when the caller is not the bounty creator.
	ErrUnauthorized = errors.New("bounty engine: unauthorized caller")
	// ErrInvalidAllocation is returned for malformed winner percentages.
	ErrInvalidAllocation = errors.New("bounty engine: invalid winner allocation")
)

type engineState interface {
	BountyPut(*Bounty) error
	BountyGet(id uint64) (*Bounty, bool)
	BountyNextID() uint64
	BountyCount() uint64
	SubmissionAppend(bountyID uint64, sub *Submission) error
	SubmissionList(bountyID uint64) []*Submission
}

type ledger interface {
	Transfer(from, to types.Address, amount *big.Int) error
}

// Engine drives the competitive bounty market. Rewards are escrowed into the
// configured vault account at creation and distributed on winner selection.
// All validation runs before any ledger or state write so a failed operation
// never leaves partial state behind.
type Engine struct {
	state   engineState
	ledger  ledger
	vault   types.Address
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine creates a bounty engine with a no-op emitter. Callers can
// override the emitter via SetEmitter.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger configures the fungible ledger used for escrow and payouts.
func (e *Engine) SetLedger(l ledger) { e.ledger = l }

// SetVault configures the account holding escrowed rewards.
func (e *Engine) SetVault(addr types.Address) { e.vault = addr }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used by the engine. Primarily
// intended for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(marketEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.ledger == nil {
		return errNilLedger
	}
	if e.vault.IsZero() {
		return errNilVault
	}
	return nil
}

func (e *Engine) loadBounty(id uint64) (*Bounty, error) {
	bty, ok := e.state.BountyGet(id)
	if !ok {
		return nil, ErrNotFound
	}
	return bty, nil
}

// Create escrows the total reward from the creator and persists a new open
// bounty. Identifiers are sequential starting at 1.
func (e *Engine) Create(creator types.Address, name, description string, category Category, deadline int64, totalReward *big.Int) (*Bounty, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return nil, fmt.Errorf("bounty engine: name required")
	}
	if !category.Valid() {
		return nil, fmt.Errorf("bounty engine: invalid category: %d", category)
	}
	if totalReward == nil || totalReward.Sign() <= 0 {
		return nil, fmt.Errorf("bounty engine: reward must be positive")
	}
	now := e.now()
	if deadline <= now {
		return nil, ErrInvalidDeadline
	}
	if err := e.ledger.Transfer(creator, e.vault, totalReward); err != nil {
		return nil, err
	}
	bty := &Bounty{
		ID:          e.state.BountyNextID(),
		Creator:     creator,
		Name:        trimmedName,
		Description: strings.TrimSpace(description),
		Category:    category,
		Deadline:    deadline,
		TotalReward: new(big.Int).Set(totalReward),
		Status:      StatusOpen,
		CreatedAt:   now,
	}
	if err := e.state.BountyPut(bty); err != nil {
		return nil, err
	}
	e.emit(NewCreatedEvent(bty))
	return bty.Clone(), nil
}

// Submit appends a competitive entry to an open bounty. Submissions require
// no stake and are rejected once the deadline has elapsed; the deadline is a
// hard cutoff, not an automatic status transition.
func (e *Engine) Submit(id uint64, submitter types.Address, mainURI string, evidenceURIs []string) (*Submission, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	bty, err := e.loadBounty(id)
	if err != nil {
		return nil, err
	}
	if bty.Status != StatusOpen {
		return nil, ErrNotOpen
	}
	now := e.now()
	if now > bty.Deadline {
		return nil, ErrDeadlinePassed
	}
	trimmedURI := strings.TrimSpace(mainURI)
	if trimmedURI == "" {
		return nil, fmt.Errorf("bounty engine: submission uri required")
	}
	sub := &Submission{
		BountyID:     id,
		Submitter:    submitter,
		MainURI:      trimmedURI,
		EvidenceURIs: append([]string(nil), evidenceURIs...),
		SubmittedAt:  now,
	}
	if err := e.state.SubmissionAppend(id, sub); err != nil {
		return nil, err
	}
	bty.SubmissionCount++
	if err := e.state.BountyPut(bty); err != nil {
		return nil, err
	}
	e.emit(NewSubmissionEvent(bty, sub))
	return sub.Clone(), nil
}

// SelectWinners distributes the escrowed reward across the winners according
// to their integer percentages and closes the bounty. Percentages must each
// fall in (0,100] and sum to at most 100; any remainder stays in the vault
// and is never auto-refunded. The transition is irreversible.
func (e *Engine) SelectWinners(id uint64, caller types.Address, winners []types.Address, percentages []uint32) error {
	if err := e.ready(); err != nil {
		return err
	}
	bty, err := e.loadBounty(id)
	if err != nil {
		return err
	}
	if bty.Creator != caller {
		return ErrUnauthorized
	}
	if bty.Status != StatusOpen {
		return ErrNotOpen
	}
	if len(winners) == 0 || len(winners) != len(percentages) {
		return fmt.Errorf("%w: winners and percentages must align", ErrInvalidAllocation)
	}
	var sum uint32
	for _, pct := range percentages {
		if pct == 0 || pct > 100 {
			return fmt.Errorf("%w: percentage out of range: %d", ErrInvalidAllocation, pct)
		}
		sum += pct
	}
	if sum > 100 {
		return fmt.Errorf("%w: percentages exceed 100", ErrInvalidAllocation)
	}
	payouts := make([]*big.Int, len(winners))
	for i, pct := range percentages {
		payout := new(big.Int).Mul(bty.TotalReward, new(big.Int).SetUint64(uint64(pct)))
		payout.Div(payout, big.NewInt(100))
		payouts[i] = payout
	}
	for i, winner := range winners {
		if payouts[i].Sign() == 0 {
			continue
		}
		if err := e.ledger.Transfer(e.vault, winner, payouts[i]); err != nil {
			return err
		}
	}
	bty.Status = StatusClosed
	if err := e.state.BountyPut(bty); err != nil {
		return err
	}
	e.emit(NewClosedEvent(bty, winners, percentages))
	return nil
}

// Cancel refunds the full escrowed reward to the creator and cancels the
// bounty. Only possible while the bounty is open, so cancellation after any
// winner selection is excluded by the status guard.
func (e *Engine) Cancel(id uint64, caller types.Address) error {
	if err := e.ready(); err != nil {
		return err
	}
	bty, err := e.loadBounty(id)
	if err != nil {
		return err
	}
	if bty.Creator != caller {
		return ErrUnauthorized
	}
	if bty.Status != StatusOpen {
		return ErrNotOpen
	}
	if err := e.ledger.Transfer(e.vault, bty.Creator, bty.TotalReward); err != nil {
		return err
	}
	bty.Status = StatusCancelled
	if err := e.state.BountyPut(bty); err != nil {
		return err
	}
	e.emit(NewCancelledEvent(bty))
	return nil
}

// Get returns a snapshot of the bounty, reporting absence explicitly.
func (e *Engine) Get(id uint64) (*Bounty, bool) {
	if e == nil || e.state == nil {
		return nil, false
	}
	bty, ok := e.state.BountyGet(id)
	if !ok {
		return nil, false
	}
	return bty.Clone(), true
}

// Submissions returns the append-only submission list for the bounty.
func (e *Engine) Submissions(id uint64) []*Submission {
	if e == nil || e.state == nil {
		return nil
	}
	subs := e.state.SubmissionList(id)
	out := make([]*Submission, 0, len(subs))
	for _, sub := range subs {
		out = append(out, sub.Clone())
	}
	return out
}

// Count returns the number of bounties created so far.
func (e *Engine) Count() uint64 {
	if e == nil || e.state == nil {
		return 0
	}
	return e.state.BountyCount()
}
