package core

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"

	"gigchain/core/types"
	"gigchain/native/bounty"
	"gigchain/native/gig"
	"gigchain/storage"
)

const (
	prefixAccount     = "account/"
	prefixBounty      = "bounty/"
	prefixSubmissions = "bounty-subs/"
	prefixGig         = "gig/"
	prefixProposals   = "gig-props/"
	prefixReceipt     = "receipt/"
	keyBountySeq      = "seq/bounty"
	keyGigSeq         = "seq/gig"
)

// State is the in-memory source of truth for accounts, markets and receipts.
// Every write is mirrored into the configured key-value store as JSON so a
// restarted node rehydrates where it left off. Callers are responsible for
// serialising access; the node holds its lock across each action.
type State struct {
	db storage.Database

	accounts    map[types.Address]*types.Account
	bounties    map[uint64]*bounty.Bounty
	submissions map[uint64][]*bounty.Submission
	bountySeq   uint64
	gigs        map[uint64]*gig.Gig
	proposals   map[uint64][]*gig.Proposal
	gigSeq      uint64
	receipts    map[string]*types.Receipt
}

// NewState creates a state manager mirroring writes into db.
func NewState(db storage.Database) *State {
	if db == nil {
		db = storage.NewMemDB()
	}
	return &State{
		db:          db,
		accounts:    make(map[types.Address]*types.Account),
		bounties:    make(map[uint64]*bounty.Bounty),
		submissions: make(map[uint64][]*bounty.Submission),
		gigs:        make(map[uint64]*gig.Gig),
		proposals:   make(map[uint64][]*gig.Proposal),
		receipts:    make(map[string]*types.Receipt),
	}
}

func (s *State) persist(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("state: marshal %s: %w", key, err)
	}
	return s.db.Put([]byte(key), raw)
}

func (s *State) persistSeq(key string, seq uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seq)
	return s.db.Put([]byte(key), buf[:])
}

// Load rehydrates the in-memory maps from the key-value store.
func (s *State) Load() error {
	return s.db.Iterate(func(key, value []byte) error {
		k := string(key)
		switch {
		case k == keyBountySeq:
			if len(value) == 8 {
				s.bountySeq = binary.BigEndian.Uint64(value)
			}
		case k == keyGigSeq:
			if len(value) == 8 {
				s.gigSeq = binary.BigEndian.Uint64(value)
			}
		case bytes.HasPrefix(key, []byte(prefixAccount)):
			addr, err := types.ParseAddress(k[len(prefixAccount):])
			if err != nil {
				return err
			}
			acc := types.NewAccount()
			if err := json.Unmarshal(value, acc); err != nil {
				return err
			}
			s.accounts[addr] = acc
		case bytes.HasPrefix(key, []byte(prefixBounty)):
			var bty bounty.Bounty
			if err := json.Unmarshal(value, &bty); err != nil {
				return err
			}
			s.bounties[bty.ID] = &bty
		case bytes.HasPrefix(key, []byte(prefixSubmissions)):
			id, err := strconv.ParseUint(k[len(prefixSubmissions):], 10, 64)
			if err != nil {
				return err
			}
			var subs []*bounty.Submission
			if err := json.Unmarshal(value, &subs); err != nil {
				return err
			}
			s.submissions[id] = subs
		case bytes.HasPrefix(key, []byte(prefixGig)):
			var g gig.Gig
			if err := json.Unmarshal(value, &g); err != nil {
				return err
			}
			s.gigs[g.ID] = &g
		case bytes.HasPrefix(key, []byte(prefixProposals)):
			id, err := strconv.ParseUint(k[len(prefixProposals):], 10, 64)
			if err != nil {
				return err
			}
			var props []*gig.Proposal
			if err := json.Unmarshal(value, &props); err != nil {
				return err
			}
			s.proposals[id] = props
		case bytes.HasPrefix(key, []byte(prefixReceipt)):
			var receipt types.Receipt
			if err := json.Unmarshal(value, &receipt); err != nil {
				return err
			}
			s.receipts[receipt.Hash] = &receipt
		}
		return nil
	})
}

// --- token ledger state ---

// GetAccount returns a copy of the stored account, an empty account when the
// address has never been seen.
func (s *State) GetAccount(addr types.Address) (*types.Account, error) {
	acc, ok := s.accounts[addr]
	if !ok {
		return types.NewAccount(), nil
	}
	return acc.Clone(), nil
}

// PutAccount stores the account and mirrors it to disk.
func (s *State) PutAccount(addr types.Address, account *types.Account) error {
	if account == nil {
		return fmt.Errorf("state: nil account")
	}
	clone := account.Clone()
	s.accounts[addr] = clone
	return s.persist(prefixAccount+addr.Hex(), clone)
}

// --- bounty market state ---

func (s *State) BountyPut(b *bounty.Bounty) error {
	sanitized, err := bounty.SanitizeBounty(b)
	if err != nil {
		return err
	}
	s.bounties[sanitized.ID] = sanitized
	return s.persist(prefixBounty+strconv.FormatUint(sanitized.ID, 10), sanitized)
}

func (s *State) BountyGet(id uint64) (*bounty.Bounty, bool) {
	bty, ok := s.bounties[id]
	if !ok {
		return nil, false
	}
	return bty.Clone(), true
}

// BountyNextID assigns the next sequential bounty identifier, starting at 1.
func (s *State) BountyNextID() uint64 {
	s.bountySeq++
	_ = s.persistSeq(keyBountySeq, s.bountySeq)
	return s.bountySeq
}

func (s *State) BountyCount() uint64 { return s.bountySeq }

func (s *State) SubmissionAppend(bountyID uint64, sub *bounty.Submission) error {
	if sub == nil {
		return fmt.Errorf("state: nil submission")
	}
	s.submissions[bountyID] = append(s.submissions[bountyID], sub.Clone())
	return s.persist(prefixSubmissions+strconv.FormatUint(bountyID, 10), s.submissions[bountyID])
}

func (s *State) SubmissionList(bountyID uint64) []*bounty.Submission {
	subs := s.submissions[bountyID]
	out := make([]*bounty.Submission, 0, len(subs))
	for _, sub := range subs {
		out = append(out, sub.Clone())
	}
	return out
}

// --- gig market state ---

func (s *State) GigPut(g *gig.Gig) error {
	sanitized, err := gig.SanitizeGig(g)
	if err != nil {
		return err
	}
	s.gigs[sanitized.ID] = sanitized
	return s.persist(prefixGig+strconv.FormatUint(sanitized.ID, 10), sanitized)
}

func (s *State) GigGet(id uint64) (*gig.Gig, bool) {
	g, ok := s.gigs[id]
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

// GigNextID assigns the next sequential gig identifier, starting at 0.
func (s *State) GigNextID() uint64 {
	id := s.gigSeq
	s.gigSeq++
	_ = s.persistSeq(keyGigSeq, s.gigSeq)
	return id
}

func (s *State) GigCount() uint64 { return s.gigSeq }

// ProposalPut appends the proposal when its index is the next slot and
// replaces the stored copy otherwise.
func (s *State) ProposalPut(p *gig.Proposal) error {
	if p == nil {
		return fmt.Errorf("state: nil proposal")
	}
	list := s.proposals[p.GigID]
	switch {
	case p.Index == uint64(len(list)):
		list = append(list, p.Clone())
	case p.Index < uint64(len(list)):
		list[p.Index] = p.Clone()
	default:
		return fmt.Errorf("state: proposal index %d out of sequence", p.Index)
	}
	s.proposals[p.GigID] = list
	return s.persist(prefixProposals+strconv.FormatUint(p.GigID, 10), list)
}

func (s *State) ProposalList(gigID uint64) []*gig.Proposal {
	props := s.proposals[gigID]
	out := make([]*gig.Proposal, 0, len(props))
	for _, prop := range props {
		out = append(out, prop.Clone())
	}
	return out
}

// --- receipts ---

func (s *State) ReceiptPut(r *types.Receipt) error {
	if r == nil {
		return fmt.Errorf("state: nil receipt")
	}
	clone := r.Clone()
	s.receipts[clone.Hash] = clone
	return s.persist(prefixReceipt+clone.Hash, clone)
}

func (s *State) ReceiptGet(hash string) (*types.Receipt, bool) {
	receipt, ok := s.receipts[hash]
	if !ok {
		return nil, false
	}
	return receipt.Clone(), true
}
