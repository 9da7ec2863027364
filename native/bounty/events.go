package bounty

import (
	"strconv"
	"strings"

	"gigchain/core/types"
)

const (
	EventTypeBountyCreated   = "bounty.created"
	EventTypeBountySubmitted = "bounty.submitted"
	EventTypeBountyClosed    = "bounty.closed"
	EventTypeBountyCancelled = "bounty.cancelled"
)

type marketEvent struct {
	evt *types.Event
}

func (e marketEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e marketEvent) Event() *types.Event { return e.evt }

// NewCreatedEvent returns the canonical event payload for a newly created
// bounty.
func NewCreatedEvent(b *Bounty) *types.Event { return newBountyEvent(EventTypeBountyCreated, b) }

// NewSubmissionEvent returns the payload emitted when a submission lands.
func NewSubmissionEvent(b *Bounty, sub *Submission) *types.Event {
	evt := newBountyEvent(EventTypeBountySubmitted, b)
	if sub != nil {
		evt.Attributes["submitter"] = sub.Submitter.Hex()
		evt.Attributes["mainUri"] = sub.MainURI
	}
	return evt
}

// NewClosedEvent returns the payload emitted when winners are selected.
func NewClosedEvent(b *Bounty, winners []types.Address, percentages []uint32) *types.Event {
	evt := newBountyEvent(EventTypeBountyClosed, b)
	addrs := make([]string, 0, len(winners))
	for _, winner := range winners {
		addrs = append(addrs, winner.Hex())
	}
	pcts := make([]string, 0, len(percentages))
	for _, pct := range percentages {
		pcts = append(pcts, strconv.FormatUint(uint64(pct), 10))
	}
	evt.Attributes["winners"] = strings.Join(addrs, ",")
	evt.Attributes["percentages"] = strings.Join(pcts, ",")
	return evt
}

// NewCancelledEvent returns the payload emitted when a bounty is cancelled.
func NewCancelledEvent(b *Bounty) *types.Event { return newBountyEvent(EventTypeBountyCancelled, b) }

func newBountyEvent(eventType string, b *Bounty) *types.Event {
	attrs := make(map[string]string)
	if b == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	sanitized, err := SanitizeBounty(b)
	if err != nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["id"] = strconv.FormatUint(sanitized.ID, 10)
	attrs["creator"] = sanitized.Creator.Hex()
	attrs["name"] = sanitized.Name
	attrs["category"] = strconv.FormatUint(uint64(sanitized.Category), 10)
	attrs["totalReward"] = sanitized.TotalReward.String()
	attrs["deadline"] = strconv.FormatInt(sanitized.Deadline, 10)
	attrs["status"] = strconv.FormatUint(uint64(sanitized.Status), 10)
	attrs["createdAt"] = strconv.FormatInt(sanitized.CreatedAt, 10)
	return &types.Event{Type: eventType, Attributes: attrs}
}
