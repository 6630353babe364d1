package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/notes"
	"github.com/dmitrijs2005/gophnotes/internal/rpc"
	"github.com/google/uuid"
)

// ErrWatchClosed is delivered when the server ends a Watch stream.
var ErrWatchClosed = errors.New("watch closed by server")

// API is the part of the gRPC client used by Remote.
type API interface {
	CreateNote(ctx context.Context, id string, f notes.Fields) (*rpc.NoteMessage, error)
	UpdateNote(ctx context.Context, id string, patch notes.Patch) (*rpc.NoteMessage, error)
	DeleteNote(ctx context.Context, id string) error
	Watch(ctx context.Context) (client.SnapshotStream, error)
}

// Remote is a Store backed by the notes server. Ids are generated here so a
// new note can be shown at once, without timestamps, until the first server
// snapshot received after the create call returned.
type Remote struct {
	api    API
	logger logging.Logger

	mu      sync.Mutex
	snaps   uint64
	pending map[string]map[string]*pendingCreate
	watches map[string]map[*remoteWatch]struct{}
}

// pendingCreate is an overlaid create. Once confirmed, it is dropped by the
// first snapshot numbered above seq, whether or not that snapshot lists it.
type pendingCreate struct {
	rec       Record
	confirmed bool
	seq       uint64
}

type remoteWatch struct {
	q     *latest
	ready bool
	last  []Record
}

func NewRemote(api API, logger logging.Logger) *Remote {
	return &Remote{
		api:     api,
		logger:  logger.With("module", "remote_store"),
		pending: make(map[string]map[string]*pendingCreate),
		watches: make(map[string]map[*remoteWatch]struct{}),
	}
}

func (r *Remote) Add(ctx context.Context, ownerID string, f notes.Fields) (string, error) {
	if ownerID == "" {
		return "", common.ErrIdentityRequired
	}

	id := uuid.NewString()

	r.mu.Lock()
	if r.pending[ownerID] == nil {
		r.pending[ownerID] = make(map[string]*pendingCreate)
	}
	p := &pendingCreate{rec: Record{ID: id, OwnerID: ownerID, Title: f.Title, Content: f.Content, Color: f.Color}}
	r.pending[ownerID][id] = p
	r.republish(ownerID)
	r.mu.Unlock()

	_, err := r.api.CreateNote(ctx, id, f)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		delete(r.pending[ownerID], id)
		r.republish(ownerID)
		return "", err
	}
	p.confirmed = true
	p.seq = r.snaps
	return id, nil
}

func (r *Remote) Update(ctx context.Context, ownerID, id string, patch notes.Patch) error {
	if ownerID == "" {
		return common.ErrIdentityRequired
	}
	_, err := r.api.UpdateNote(ctx, id, patch)
	return err
}

func (r *Remote) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return common.ErrIdentityRequired
	}
	return r.api.DeleteNote(ctx, id)
}

func (r *Remote) Listen(ownerID string) (<-chan Event, func()) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	w := &remoteWatch{q: newLatest()}

	r.mu.Lock()
	if r.watches[ownerID] == nil {
		r.watches[ownerID] = make(map[*remoteWatch]struct{})
	}
	r.watches[ownerID][w] = struct{}{}
	r.mu.Unlock()

	go r.run(ctx, ownerID, w)

	var once sync.Once
	return w.q.ch, func() {
		once.Do(func() {
			cancelCtx()
			r.unregister(ownerID, w)
			w.q.close()
		})
	}
}

func (r *Remote) run(ctx context.Context, ownerID string, w *remoteWatch) {
	stream, err := r.api.Watch(ctx)
	if err != nil {
		r.stop(ctx, ownerID, w, err)
		return
	}

	for {
		snap, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = ErrWatchClosed
			}
			r.stop(ctx, ownerID, w, err)
			return
		}

		records := make([]Record, 0, len(snap.Notes))
		for _, m := range snap.Notes {
			if m == nil {
				continue
			}
			created, updated := m.Timestamps()
			records = append(records, Record{
				ID:        m.ID,
				OwnerID:   m.OwnerID,
				Title:     m.Title,
				Content:   m.Content,
				Color:     m.Color,
				CreatedAt: created,
				UpdatedAt: updated,
			})
		}

		r.mu.Lock()
		r.snaps++
		for _, rec := range records {
			delete(r.pending[ownerID], rec.ID)
		}
		for id, p := range r.pending[ownerID] {
			if p.confirmed && p.seq < r.snaps {
				delete(r.pending[ownerID], id)
			}
		}
		w.last = records
		w.ready = true
		w.q.push(Event{Records: r.merged(ownerID, w)})
		r.mu.Unlock()
	}
}

// stop ends a watch after a stream failure. Cancellation by the listener
// itself is not reported.
func (r *Remote) stop(ctx context.Context, ownerID string, w *remoteWatch, err error) {
	r.unregister(ownerID, w)
	if ctx.Err() != nil {
		return
	}
	r.logger.Warn(ctx, "watch failed", "owner", ownerID, "error", err)
	w.q.fail(fmt.Errorf("watch: %w", err))
}

func (r *Remote) unregister(ownerID string, w *remoteWatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.watches[ownerID], w)
	if len(r.watches[ownerID]) == 0 {
		delete(r.watches, ownerID)
	}
}

// merged overlays pending creates on the last server snapshot. Must be
// called with r.mu held.
func (r *Remote) merged(ownerID string, w *remoteWatch) []Record {
	out := make([]Record, 0, len(w.last)+len(r.pending[ownerID]))
	out = append(out, w.last...)
	for _, p := range r.pending[ownerID] {
		out = append(out, p.rec)
	}
	sortRecords(out)
	return out
}

// republish pushes the merged view to every ready watch. Must be called with
// r.mu held.
func (r *Remote) republish(ownerID string) {
	for w := range r.watches[ownerID] {
		if w.ready {
			w.q.push(Event{Records: r.merged(ownerID, w)})
		}
	}
}
