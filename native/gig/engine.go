package gig

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"gigchain/core/events"
	"gigchain/core/types"
)

const (
	// DefaultStakeGracePeriod bounds how long a selected freelancer has to
	// deposit collateral before the selection auto-expires.
	DefaultStakeGracePeriod int64 = 86_400
	// DefaultPlatformFeeBps is deducted from the budget on completion.
	DefaultPlatformFeeBps uint32 = 250
)

var (
	errNilState    = errors.New("gig engine: state not configured")
	errNilLedger   = errors.New("gig engine: ledger not configured")
	errNilVault    = errors.New("gig engine: vault not configured")
	errNilTreasury = errors.New("gig engine: fee treasury not configured")

	// ErrNotFound is returned when the gig identifier is unknown.
	ErrNotFound = errors.New("gig engine: gig not found")
	// ErrNotOpen is returned when the gig has left the open state.
	ErrNotOpen = errors.New("gig engine: gig not open")
	// ErrProposalWindowClosed is returned for proposals after the window.
	ErrProposalWindowClosed = errors.New("gig engine: proposal window closed")
	// ErrDuplicateProposal is returned when a freelancer already has an
	// active proposal on the gig.
	ErrDuplicateProposal = errors.New("gig engine: duplicate proposal")
	// ErrInvalidProposal is returned for out-of-range or inactive proposals.
	ErrInvalidProposal = errors.New("gig engine: invalid proposal")
	// ErrUnauthorized is returned when the caller is not the required actor.
	ErrUnauthorized = errors.New("gig engine: unauthorized caller")
	// ErrSelectionPending is returned when an action conflicts with a
	// selection awaiting its collateral deposit.
	ErrSelectionPending = errors.New("gig engine: selection pending stake")
	// ErrNotStaked is returned when completion is attempted before the
	// freelancer has deposited collateral.
	ErrNotStaked = errors.New("gig engine: gig not staked")
)

type engineState interface {
	GigPut(*Gig) error
	GigGet(id uint64) (*Gig, bool)
	GigNextID() uint64
	GigCount() uint64
	ProposalPut(*Proposal) error
	ProposalList(gigID uint64) []*Proposal
}

type ledger interface {
	Transfer(from, to types.Address, amount *big.Int) error
}

// Engine drives the single-assignment gig market: the poster escrows the
// budget at post time, a selected freelancer commits collateral inside a
// grace window, and settlement on completion pays the freelancer minus the
// platform fee while returning the collateral in full.
//
// Deadline-driven transitions are evaluated lazily: there is no background
// scheduler, every entry point recomputes expiry against a single time sample
// taken at the top of the operation.
type Engine struct {
	state       engineState
	ledger      ledger
	vault       types.Address
	feeTreasury types.Address
	feeBps      uint32
	stakeGrace  int64
	emitter     events.Emitter
	nowFn       func() int64
}

// NewEngine creates a gig engine with default fee and grace settings and a
// no-op emitter.
func NewEngine() *Engine {
	return &Engine{
		feeBps:     DefaultPlatformFeeBps,
		stakeGrace: DefaultStakeGracePeriod,
		emitter:    events.NoopEmitter{},
		nowFn:      func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger configures the fungible ledger used for escrow and settlement.
func (e *Engine) SetLedger(l ledger) { e.ledger = l }

// SetVault configures the account holding escrowed budgets and collateral.
func (e *Engine) SetVault(addr types.Address) { e.vault = addr }

// SetFeeTreasury configures the address that receives platform fees.
func (e *Engine) SetFeeTreasury(addr types.Address) { e.feeTreasury = addr }

// SetPlatformFeeBps configures the completion fee in basis points.
func (e *Engine) SetPlatformFeeBps(bps uint32) error {
	if bps > 10_000 {
		return fmt.Errorf("gig engine: fee bps out of range: %d", bps)
	}
	e.feeBps = bps
	return nil
}

// SetStakeGracePeriod configures the collateral deposit window in seconds.
func (e *Engine) SetStakeGracePeriod(seconds int64) error {
	if seconds <= 0 {
		return fmt.Errorf("gig engine: grace period must be positive")
	}
	e.stakeGrace = seconds
	return nil
}

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

func (e *Engine) loadGig(id uint64) (*Gig, error) {
	g, ok := e.state.GigGet(id)
	if !ok {
		return nil, ErrNotFound
	}
	return g, nil
}

func (e *Engine) selectedProposal(g *Gig) (*Proposal, error) {
	if g.SelectedProposal == NoSelection {
		return nil, fmt.Errorf("%w: no selection", ErrInvalidProposal)
	}
	proposals := e.state.ProposalList(g.ID)
	idx := g.SelectedProposal
	if idx < 0 || idx >= int64(len(proposals)) {
		return nil, fmt.Errorf("%w: index %d", ErrInvalidProposal, idx)
	}
	return proposals[idx], nil
}

// recomputeIfExpired applies the lazy staking-grace expiry: when a selected
// freelancer failed to deposit collateral before the grace deadline, the
// selection is voided, the proposal is flagged auto-expired and the gig
// returns to plain open. The escrowed budget is never touched by this
// reversal. The passed gig is mutated and persisted when the expiry fires.
func (e *Engine) recomputeIfExpired(g *Gig, now int64) error {
	if g == nil || g.Status != StatusOpen || g.SelectedProposal == NoSelection {
		return nil
	}
	if now <= g.SelectedAt+e.stakeGrace {
		return nil
	}
	prop, err := e.selectedProposal(g)
	if err != nil {
		return err
	}
	prop.AutoExpired = true
	if err := e.state.ProposalPut(prop); err != nil {
		return err
	}
	expiredIndex := g.SelectedProposal
	g.SelectedProposal = NoSelection
	g.SelectedAt = 0
	if err := e.state.GigPut(g); err != nil {
		return err
	}
	e.emit(NewSelectionExpiredEvent(g, uint64(expiredIndex)))
	return nil
}

// Post escrows the budget from the poster and persists a new open gig.
// Identifiers are sequential starting at 0.
func (e *Engine) Post(poster types.Address, title, shortDescription, detailsURI string, budget, stake *big.Int, duration, proposalDuration int64) (*Gig, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return nil, fmt.Errorf("gig engine: title required")
	}
	if budget == nil || budget.Sign() <= 0 {
		return nil, fmt.Errorf("gig engine: budget must be positive")
	}
	if stake == nil || stake.Sign() <= 0 {
		return nil, fmt.Errorf("gig engine: stake must be positive")
	}
	if duration <= 0 || proposalDuration <= 0 {
		return nil, fmt.Errorf("gig engine: durations must be positive")
	}
	if err := e.ledger.Transfer(poster, e.vault, budget); err != nil {
		return nil, err
	}
	now := e.now()
	g := &Gig{
		ID:               e.state.GigNextID(),
		Poster:           poster,
		Title:            trimmedTitle,
		ShortDescription: strings.TrimSpace(shortDescription),
		DetailsURI:       strings.TrimSpace(detailsURI),
		Budget:           new(big.Int).Set(budget),
		Stake:            new(big.Int).Set(stake),
		Duration:         duration,
		ProposalDuration: proposalDuration,
		Status:           StatusOpen,
		SelectedProposal: NoSelection,
		PostedAt:         now,
		Deadline:         now + proposalDuration + duration,
	}
	if err := e.state.GigPut(g); err != nil {
		return nil, err
	}
	e.emit(NewPostedEvent(g))
	return g.Clone(), nil
}

// SubmitProposal appends a freelancer bid while the gig is open and the
// proposal window has not elapsed. A freelancer may hold at most one active
// proposal per gig; withdrawn and auto-expired proposals do not count.
func (e *Engine) SubmitProposal(id uint64, freelancer types.Address, proposalURI string) (*Proposal, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	g, err := e.loadGig(id)
	if err != nil {
		return nil, err
	}
	now := e.now()
	if err := e.recomputeIfExpired(g, now); err != nil {
		return nil, err
	}
	if g.Status != StatusOpen {
		return nil, ErrNotOpen
	}
	if now > g.ProposalWindowEnd() {
		return nil, ErrProposalWindowClosed
	}
	trimmedURI := strings.TrimSpace(proposalURI)
	if trimmedURI == "" {
		return nil, fmt.Errorf("gig engine: proposal uri required")
	}
	for _, existing := range e.state.ProposalList(id) {
		if existing.Freelancer == freelancer && existing.Active() {
			return nil, ErrDuplicateProposal
		}
	}
	prop := &Proposal{
		GigID:       id,
		Index:       g.ProposalCount,
		Freelancer:  freelancer,
		ProposalURI: trimmedURI,
		SubmittedAt: now,
	}
	if err := e.state.ProposalPut(prop); err != nil {
		return nil, err
	}
	g.ProposalCount++
	if err := e.state.GigPut(g); err != nil {
		return nil, err
	}
	e.emit(NewProposalSubmittedEvent(g, prop))
	return prop.Clone(), nil
}

// WithdrawProposal lets a freelancer retract an unselected proposal. The
// currently selected proposal cannot be withdrawn; walking away from a
// selection is handled by the staking-grace auto-expiry instead.
func (e *Engine) WithdrawProposal(id uint64, index uint64, caller types.Address) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	g, err := e.loadGig(id)
	if err != nil {
		return err
	}
	now := e.now()
	if err := e.recomputeIfExpired(g, now); err != nil {
		return err
	}
	proposals := e.state.ProposalList(id)
	if index >= uint64(len(proposals)) {
		return fmt.Errorf("%w: index %d", ErrInvalidProposal, index)
	}
	prop := proposals[index]
	if prop.Freelancer != caller {
		return ErrUnauthorized
	}
	if prop.Withdrawn {
		return fmt.Errorf("%w: already withdrawn", ErrInvalidProposal)
	}
	if g.SelectedProposal == int64(index) {
		return ErrSelectionPending
	}
	prop.Withdrawn = true
	if err := e.state.ProposalPut(prop); err != nil {
		return err
	}
	e.emit(NewProposalWithdrawnEvent(g, prop))
	return nil
}

// SelectProposal records the poster's choice and starts the staking grace
// window during which the selected freelancer must deposit collateral.
func (e *Engine) SelectProposal(id uint64, index uint64, caller types.Address) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	g, err := e.loadGig(id)
	if err != nil {
		return err
	}
	now := e.now()
	if err := e.recomputeIfExpired(g, now); err != nil {
		return err
	}
	if g.Poster != caller {
		return ErrUnauthorized
	}
	if g.Status != StatusOpen {
		return ErrNotOpen
	}
	if g.SelectedProposal != NoSelection {
		return ErrSelectionPending
	}
	proposals := e.state.ProposalList(id)
	if index >= uint64(len(proposals)) {
		return fmt.Errorf("%w: index %d", ErrInvalidProposal, index)
	}
	prop := proposals[index]
	if !prop.Active() {
		return fmt.Errorf("%w: proposal inactive", ErrInvalidProposal)
	}
	g.SelectedProposal = int64(index)
	g.SelectedAt = now
	if err := e.state.GigPut(g); err != nil {
		return err
	}
	e.emit(NewProposalSelectedEvent(g, prop))
	return nil
}

// DepositStake collects the collateral from the selected freelancer, locks
// the assignment and restarts the work deadline from the deposit time.
func (e *Engine) DepositStake(id uint64, caller types.Address) error {
	if err := e.ready(); err != nil {
		return err
	}
	g, err := e.loadGig(id)
	if err != nil {
		return err
	}
	now := e.now()
	if err := e.recomputeIfExpired(g, now); err != nil {
		return err
	}
	if g.Status != StatusOpen {
		return ErrNotOpen
	}
	if g.SelectedProposal == NoSelection {
		return fmt.Errorf("%w: no selection", ErrInvalidProposal)
	}
	prop, err := e.selectedProposal(g)
	if err != nil {
		return err
	}
	if prop.Freelancer != caller {
		return ErrUnauthorized
	}
	if err := e.ledger.Transfer(caller, e.vault, g.Stake); err != nil {
		return err
	}
	g.Status = StatusStaked
	g.StakedAt = now
	g.Deadline = now + g.Duration
	if err := e.state.GigPut(g); err != nil {
		return err
	}
	e.emit(NewStakedEvent(g, prop))
	return nil
}

// Complete settles the gig: the poster confirms delivery, the freelancer
// receives the budget minus the platform fee plus the full collateral, and
// the fee accrues to the treasury. The transition is terminal.
func (e *Engine) Complete(id uint64, caller types.Address) error {
	if err := e.ready(); err != nil {
		return err
	}
	if e.feeTreasury.IsZero() {
		return errNilTreasury
	}
	g, err := e.loadGig(id)
	if err != nil {
		return err
	}
	if g.Poster != caller {
		return ErrUnauthorized
	}
	if g.Status != StatusStaked {
		return ErrNotStaked
	}
	prop, err := e.selectedProposal(g)
	if err != nil {
		return err
	}
	fee := new(big.Int).Mul(g.Budget, new(big.Int).SetUint64(uint64(e.feeBps)))
	fee.Div(fee, big.NewInt(10_000))
	payout := new(big.Int).Sub(g.Budget, fee)
	if payout.Sign() > 0 {
		if err := e.ledger.Transfer(e.vault, prop.Freelancer, payout); err != nil {
			return err
		}
	}
	if fee.Sign() > 0 {
		if err := e.ledger.Transfer(e.vault, e.feeTreasury, fee); err != nil {
			return err
		}
	}
	if g.Stake.Sign() > 0 {
		if err := e.ledger.Transfer(e.vault, prop.Freelancer, g.Stake); err != nil {
			return err
		}
	}
	g.Status = StatusCompleted
	if err := e.state.GigPut(g); err != nil {
		return err
	}
	e.emit(NewCompletedEvent(g, prop, fee))
	return nil
}

// Cancel refunds the escrowed budget to the poster. Only possible while the
// gig is open with no pending selection, so the poster can never cancel out
// from under a freelancer who has committed or is committing collateral.
func (e *Engine) Cancel(id uint64, caller types.Address) error {
	if err := e.ready(); err != nil {
		return err
	}
	g, err := e.loadGig(id)
	if err != nil {
		return err
	}
	now := e.now()
	if err := e.recomputeIfExpired(g, now); err != nil {
		return err
	}
	if g.Poster != caller {
		return ErrUnauthorized
	}
	if g.Status != StatusOpen {
		return ErrNotOpen
	}
	if g.SelectedProposal != NoSelection {
		return ErrSelectionPending
	}
	if err := e.ledger.Transfer(e.vault, g.Poster, g.Budget); err != nil {
		return err
	}
	g.Status = StatusCancelled
	if err := e.state.GigPut(g); err != nil {
		return err
	}
	e.emit(NewCancelledEvent(g))
	return nil
}

// Get returns a snapshot of the gig after applying lazy expiry, reporting
// absence explicitly. A gig whose staking deadline has passed shows the
// cleared selection as soon as any read or write touches it.
func (e *Engine) Get(id uint64) (*Gig, bool) {
	if e == nil || e.state == nil {
		return nil, false
	}
	g, ok := e.state.GigGet(id)
	if !ok {
		return nil, false
	}
	if err := e.recomputeIfExpired(g, e.now()); err != nil {
		return g.Clone(), true
	}
	return g.Clone(), true
}

// Proposals returns the proposal list for the gig after applying lazy
// expiry.
func (e *Engine) Proposals(id uint64) []*Proposal {
	if e == nil || e.state == nil {
		return nil
	}
	if g, ok := e.state.GigGet(id); ok {
		_ = e.recomputeIfExpired(g, e.now())
	}
	proposals := e.state.ProposalList(id)
	out := make([]*Proposal, 0, len(proposals))
	for _, prop := range proposals {
		out = append(out, prop.Clone())
	}
	return out
}

// Count returns the number of gigs posted so far.
func (e *Engine) Count() uint64 {
	if e == nil || e.state == nil {
		return 0
	}
	return e.state.GigCount()
}
