// Package feed carries "owner's notes changed" events from the write path to
// every open Watch stream. Events carry no payload; watchers re-read the
// full ordered collection when woken.
package feed

import (
	"context"
	"sync"
)

// Feed is the contract used by the note service (Publish) and the Watch
// handler (Subscribe).
type Feed interface {
	Publish(ctx context.Context, ownerID string) error
	Subscribe(ownerID string) (<-chan struct{}, func())
}

// Broker is an in-process Feed. Each subscription gets a buffer-1 channel so
// bursts of writes coalesce into a single wake-up.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe registers a watcher for ownerID. The returned cancel func is
// idempotent.
func (b *Broker) Subscribe(ownerID string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	set, ok := b.subs[ownerID]
	if !ok {
		set = make(map[chan struct{}]struct{})
		b.subs[ownerID] = set
	}
	set[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[ownerID], ch)
			if len(b.subs[ownerID]) == 0 {
				delete(b.subs, ownerID)
			}
		})
	}
}

// Publish wakes every watcher of ownerID without blocking.
func (b *Broker) Publish(_ context.Context, ownerID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[ownerID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// Watchers returns the number of open subscriptions for ownerID.
func (b *Broker) Watchers(ownerID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[ownerID])
}
