package fanout

import (
	"log/slog"
	"sync"
)

// adapterQueueCapacity is the bounded per-adapter outbound queue size (spec
// §5: "each adapter ... capacity 256").
const adapterQueueCapacity = 256

// AdapterBus is a non-blocking, drop-on-full per-adapter outbound queue,
// grounded on the teacher's internal/events.Bus (same subscribe/unsubscribe/
// publish shape, same drop-when-full policy — appropriate here because a
// dropped status is recoverable via reseed, unlike a dropped store change).
type AdapterBus struct {
	mu   sync.Mutex
	subs map[string]*subscription
}

type subscription struct {
	ch      chan StatusEvent
	dropped bool
}

// NewAdapterBus creates an empty bus.
func NewAdapterBus() *AdapterBus {
	return &AdapterBus{subs: make(map[string]*subscription)}
}

// Subscribe registers an adapter and returns its bounded receive channel.
func (b *AdapterBus) Subscribe(adapterID string) <-chan StatusEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := &subscription{ch: make(chan StatusEvent, adapterQueueCapacity)}
	b.subs[adapterID] = sub
	return sub.ch
}

func (b *AdapterBus) Unsubscribe(adapterID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[adapterID]; ok {
		delete(b.subs, adapterID)
		close(sub.ch)
	}
}

// Publish delivers ev to every subscriber, dropping (never blocking) for any
// adapter whose queue is full, and invokes onLag the first time an adapter
// starts dropping (spec §5: "lagging-adapter detection → SYSTEM_ERROR{ADAPTER_LAG} + reseed").
func (b *AdapterBus) Publish(ev StatusEvent, onLag func(adapterID string)) {
	b.mu.Lock()
	var lagging []string
	for id, sub := range b.subs {
		select {
		case sub.ch <- ev:
			sub.dropped = false
		default:
			if !sub.dropped {
				sub.dropped = true
				lagging = append(lagging, id)
			}
		}
	}
	b.mu.Unlock()

	// onLag may itself call back into Publish (e.g. a reseed); invoke it
	// only after releasing the lock above.
	for _, id := range lagging {
		slog.Warn("fanout: adapter queue full, dropping status event", "adapter", id, "kind", ev.Kind)
		if onLag != nil {
			onLag(id)
		}
	}
}
