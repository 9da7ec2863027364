package events

import "sync"

const defaultSubscriberBuffer = 64

// Bus fans emitted events out to any number of subscribers. Slow consumers
// never block an emitting engine: when a subscriber buffer is full the event
// is dropped for that subscriber only.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]chan Event
}

// NewBus returns an empty bus ready for subscriptions.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]chan Event)}
}

// Emit implements the Emitter interface.
func (b *Bus) Emit(evt Event) {
	if b == nil || evt == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its channel together with
// a cancel function. Cancelling closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	ch := make(chan Event, buffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()
	cancel := func() {
		b.mu.Lock()
		if existing, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(existing)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}
