// Package subscription turns a store listener into a stream of complete,
// ordered note snapshots for one owner.
package subscription

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/store"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/notes"
)

type Subscriber struct {
	store  store.Store
	logger logging.Logger
	now    func() time.Time
}

func New(s store.Store, l logging.Logger) *Subscriber {
	return &Subscriber{store: s, logger: l.With("module", "subscription"), now: time.Now}
}

type subscription struct {
	mu      sync.Mutex
	stopped bool
	once    sync.Once
	cancel  func()
}

// Subscribe delivers ownerID's notes, newest-modified first, now and after
// every change. An empty owner gets one empty snapshot and a no-op
// unsubscribe. A listener failure is logged, reported as an empty snapshot
// and ends the subscription.
//
// Deliveries are serialized and none happens after unsubscribe returns, so
// unsubscribe must not be called from inside onSnapshot.
func (s *Subscriber) Subscribe(ownerID string, onSnapshot func([]notes.Note)) (unsubscribe func()) {
	if ownerID == "" {
		onSnapshot([]notes.Note{})
		return func() {}
	}

	events, cancel := s.store.Listen(ownerID)
	sub := &subscription{cancel: cancel}

	go s.run(ownerID, sub, events, onSnapshot)

	return sub.stop
}

func (sub *subscription) stop() {
	sub.once.Do(func() {
		sub.mu.Lock()
		sub.stopped = true
		sub.mu.Unlock()
		sub.cancel()
	})
}

func (s *Subscriber) run(ownerID string, sub *subscription, events <-chan store.Event, onSnapshot func([]notes.Note)) {
	ctx := context.Background()

	for ev := range events {
		if ev.Err != nil {
			s.logger.Error(ctx, "notes listener failed", "owner", ownerID, "error", ev.Err)
			sub.deliver(onSnapshot, []notes.Note{})
			sub.stop()
			return
		}

		snap := s.normalize(ev.Records)
		s.logger.Debug(ctx, "snapshot", "owner", ownerID, "count", len(snap))
		if !sub.deliver(onSnapshot, snap) {
			return
		}
	}
}

// deliver reports false once the subscription is stopped.
func (sub *subscription) deliver(onSnapshot func([]notes.Note), snap []notes.Note) bool {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.stopped {
		return false
	}
	onSnapshot(snap)
	return true
}

// normalize gives pending records a concrete instant so they can be shown
// until the server stamp arrives, then orders the list newest first.
func (s *Subscriber) normalize(records []store.Record) []notes.Note {
	now := s.now()
	out := make([]notes.Note, 0, len(records))
	for _, r := range records {
		n := notes.Note{
			ID:        r.ID,
			OwnerID:   r.OwnerID,
			Title:     r.Title,
			Content:   r.Content,
			Color:     r.Color,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if r.CreatedAt != nil {
			n.CreatedAt = *r.CreatedAt
		}
		if r.UpdatedAt != nil {
			n.UpdatedAt = *r.UpdatedAt
		}
		out = append(out, n)
	}
	notes.SortByUpdatedDesc(out)
	return out
}
