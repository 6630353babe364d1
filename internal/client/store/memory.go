package store

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/notes"
	"github.com/google/uuid"
)

// Memory is an in-process Store with server-timestamp semantics: every
// accepted write is stamped from a strictly increasing clock, so a create has
// createdAt == updatedAt and every later update moves updatedAt forward.
type Memory struct {
	mu        sync.Mutex
	notes     map[string]map[string]notes.Note
	listeners map[string]map[*latest]struct{}
	now       func() time.Time
	last      time.Time
}

func NewMemory() *Memory {
	return &Memory{
		notes:     make(map[string]map[string]notes.Note),
		listeners: make(map[string]map[*latest]struct{}),
		now:       time.Now,
	}
}

func (m *Memory) stamp() time.Time {
	t := m.now().UTC()
	if !t.After(m.last) {
		t = m.last.Add(time.Microsecond)
	}
	m.last = t
	return t
}

func (m *Memory) Add(_ context.Context, ownerID string, f notes.Fields) (string, error) {
	if ownerID == "" {
		return "", common.ErrIdentityRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.stamp()
	n := notes.Note{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     f.Title,
		Content:   f.Content,
		Color:     f.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	coll, ok := m.notes[ownerID]
	if !ok {
		coll = make(map[string]notes.Note)
		m.notes[ownerID] = coll
	}
	coll[n.ID] = n

	m.notify(ownerID)
	return n.ID, nil
}

func (m *Memory) Update(_ context.Context, ownerID, id string, patch notes.Patch) error {
	if ownerID == "" {
		return common.ErrIdentityRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notes[ownerID][id]
	if !ok {
		return common.ErrorNotFound
	}
	f := patch.Apply(n.Fields())
	n.Title, n.Content, n.Color = f.Title, f.Content, f.Color
	n.UpdatedAt = m.stamp()
	m.notes[ownerID][id] = n

	m.notify(ownerID)
	return nil
}

func (m *Memory) Delete(_ context.Context, ownerID, id string) error {
	if ownerID == "" {
		return common.ErrIdentityRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notes[ownerID][id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.notes[ownerID], id)

	m.notify(ownerID)
	return nil
}

func (m *Memory) Listen(ownerID string) (<-chan Event, func()) {
	l := newLatest()

	m.mu.Lock()
	set, ok := m.listeners[ownerID]
	if !ok {
		set = make(map[*latest]struct{})
		m.listeners[ownerID] = set
	}
	set[l] = struct{}{}
	l.push(Event{Records: m.snapshot(ownerID)})
	m.mu.Unlock()

	var once sync.Once
	return l.ch, func() {
		once.Do(func() {
			m.mu.Lock()
			m.removeListener(ownerID, l)
			m.mu.Unlock()
			l.close()
		})
	}
}

// Fail terminates every listener of ownerID with err, the way a revoked
// permission or a dropped connection would.
func (m *Memory) Fail(ownerID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for l := range m.listeners[ownerID] {
		l.fail(err)
		m.removeListener(ownerID, l)
	}
}

// Listeners returns the number of open listeners for ownerID.
func (m *Memory) Listeners(ownerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners[ownerID])
}

func (m *Memory) removeListener(ownerID string, l *latest) {
	delete(m.listeners[ownerID], l)
	if len(m.listeners[ownerID]) == 0 {
		delete(m.listeners, ownerID)
	}
}

func (m *Memory) snapshot(ownerID string) []Record {
	list := make([]Record, 0, len(m.notes[ownerID]))
	for _, n := range m.notes[ownerID] {
		list = append(list, recordFromNote(n))
	}
	sortRecords(list)
	return list
}

// notify must be called with m.mu held.
func (m *Memory) notify(ownerID string) {
	for l := range m.listeners[ownerID] {
		l.push(Event{Records: m.snapshot(ownerID)})
	}
}
