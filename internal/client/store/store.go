// Package store is the client's view of the per-owner note collection:
// add, patch and delete by id, and a live ordered query that redelivers the
// complete collection after every change.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/notes"
)

// Record is a note as observed by the client. Nil timestamps mean the write
// has not been confirmed by the server yet.
type Record struct {
	ID        string
	OwnerID   string
	Title     string
	Content   string
	Color     string
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

// Pending reports whether the record still awaits server confirmation.
func (r Record) Pending() bool {
	return r.UpdatedAt == nil
}

// Event is one delivery on a listener: either a full ordered collection or a
// terminal error. The channel is closed after an error.
type Event struct {
	Records []Record
	Err     error
}

type Store interface {
	// Add creates a note and returns its id.
	Add(ctx context.Context, ownerID string, f notes.Fields) (string, error)

	// Update merges patch into the note and re-stamps its updated time.
	Update(ctx context.Context, ownerID, id string, patch notes.Patch) error

	// Delete removes the note permanently.
	Delete(ctx context.Context, ownerID, id string) error

	// Listen starts a live query over the owner's notes ordered newest
	// modified first. The current collection is delivered first. cancel
	// releases the listener and closes the channel; it is idempotent.
	Listen(ownerID string) (events <-chan Event, cancel func())
}

func recordFromNote(n notes.Note) Record {
	created, updated := n.CreatedAt, n.UpdatedAt
	return Record{
		ID:        n.ID,
		OwnerID:   n.OwnerID,
		Title:     n.Title,
		Content:   n.Content,
		Color:     n.Color,
		CreatedAt: &created,
		UpdatedAt: &updated,
	}
}

// sortRecords orders records newest-modified first. Pending records sort
// ahead of confirmed ones since their stamp will be the newest.
func sortRecords(list []Record) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch {
		case a.Pending() && b.Pending():
			return a.ID < b.ID
		case a.Pending():
			return true
		case b.Pending():
			return false
		}
		if !a.UpdatedAt.Equal(*b.UpdatedAt) {
			return a.UpdatedAt.After(*b.UpdatedAt)
		}
		return a.ID < b.ID
	})
}

// latest is a buffer-1 event queue that keeps only the newest event. Since
// every event is a complete replacement, dropping an undelivered older one
// loses nothing.
type latest struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

func newLatest() *latest {
	return &latest{ch: make(chan Event, 1)}
}

func (l *latest) push(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case <-l.ch:
	default:
	}
	l.ch <- ev
}

// fail delivers a terminal error and closes the queue.
func (l *latest) fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case <-l.ch:
	default:
	}
	l.ch <- Event{Err: err}
	l.closed = true
	close(l.ch)
}

func (l *latest) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.ch)
}
