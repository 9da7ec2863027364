package bounty

import (
	"fmt"
	"math/big"
	"strings"

	"gigchain/core/types"
)

// Status represents the lifecycle states of a bounty. The numeric codes are
// part of the external surface and must not be renumbered.
type Status uint8

const (
	StatusOpen Status = iota
	StatusClosed
	StatusCancelled
)

// Valid reports whether the status value is within the supported range.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Category classifies a bounty. Codes are fixed for the wire surface.
type Category uint8

const (
	CategoryContent Category = iota
	CategoryDevelopment
	CategoryDesign
	CategoryResearch
	CategoryMarketing
	CategoryOther
)

// Valid reports whether the category value is within the supported range.
func (c Category) Valid() bool {
	return c <= CategoryOther
}

func (c Category) String() string {
	switch c {
	case CategoryContent:
		return "content"
	case CategoryDevelopment:
		return "development"
	case CategoryDesign:
		return "design"
	case CategoryResearch:
		return "research"
	case CategoryMarketing:
		return "marketing"
	case CategoryOther:
		return "other"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}

// Bounty captures the metadata and runtime status of a single competitive
// bounty. Identifiers are sequential starting at 1. The total reward is
// escrowed from the creator at creation time and leaves the vault only via
// winner selection or cancellation.
type Bounty struct {
	ID              uint64        `json:"id"`
	Creator         types.Address `json:"creator"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	Category        Category      `json:"category"`
	Deadline        int64         `json:"deadline"`
	TotalReward     *big.Int      `json:"totalReward"`
	Status          Status        `json:"status"`
	SubmissionCount uint64        `json:"submissionCount"`
	CreatedAt       int64         `json:"createdAt"`
}

// Clone returns a deep copy of the bounty.
func (b *Bounty) Clone() *Bounty {
	if b == nil {
		return nil
	}
	clone := *b
	if b.TotalReward != nil {
		clone.TotalReward = new(big.Int).Set(b.TotalReward)
	} else {
		clone.TotalReward = big.NewInt(0)
	}
	return &clone
}

// Submission records one competitive entry. Submissions are append-only;
// they are never mutated or deleted.
type Submission struct {
	BountyID     uint64        `json:"bountyId"`
	Submitter    types.Address `json:"submitter"`
	MainURI      string        `json:"mainUri"`
	EvidenceURIs []string      `json:"evidenceUris,omitempty"`
	SubmittedAt  int64         `json:"submittedAt"`
}

// Clone returns a deep copy of the submission.
func (s *Submission) Clone() *Submission {
	if s == nil {
		return nil
	}
	clone := *s
	clone.EvidenceURIs = append([]string(nil), s.EvidenceURIs...)
	return &clone
}

// SanitizeBounty validates and normalises a bounty definition, returning a
// cloned instance with a non-nil reward. The original value is not mutated.
func SanitizeBounty(b *Bounty) (*Bounty, error) {
	if b == nil {
		return nil, fmt.Errorf("bounty: nil bounty")
	}
	clone := b.Clone()
	clone.Name = strings.TrimSpace(clone.Name)
	if clone.Name == "" {
		return nil, fmt.Errorf("bounty: name required")
	}
	if !clone.Category.Valid() {
		return nil, fmt.Errorf("bounty: invalid category: %d", clone.Category)
	}
	if !clone.Status.Valid() {
		return nil, fmt.Errorf("bounty: invalid status: %d", clone.Status)
	}
	if clone.TotalReward.Sign() < 0 {
		return nil, fmt.Errorf("bounty: reward must be non-negative")
	}
	return clone, nil
}
