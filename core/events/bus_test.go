package events

import "testing"

type testEvent string

func (e testEvent) EventType() string { return string(e) }

func TestBusFanOut(t *testing.T) {
	bus := NewBus()
	first, cancelFirst := bus.Subscribe(4)
	second, cancelSecond := bus.Subscribe(4)
	defer cancelFirst()
	defer cancelSecond()

	bus.Emit(testEvent("market.updated"))

	for _, ch := range []<-chan Event{first, second} {
		select {
		case evt := <-ch:
			if evt.EventType() != "market.updated" {
				t.Fatalf("unexpected event: %s", evt.EventType())
			}
		default:
			t.Fatalf("subscriber missed event")
		}
	}
}

func TestBusDropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)
	defer cancel()

	bus.Emit(testEvent("first"))
	bus.Emit(testEvent("second")) // dropped, buffer full

	evt := <-ch
	if evt.EventType() != "first" {
		t.Fatalf("unexpected event: %s", evt.EventType())
	}
	select {
	case evt := <-ch:
		t.Fatalf("expected drop, got %s", evt.EventType())
	default:
	}
}

func TestBusCancelClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)
	cancel()
	cancel() // idempotent

	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}

	// Emitting after cancellation must not panic.
	bus.Emit(testEvent("late"))
}
