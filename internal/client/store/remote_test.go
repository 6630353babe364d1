package store

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/notes"
	"github.com/dmitrijs2005/gophnotes/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanStream feeds snapshots pushed by the test; closing it ends with EOF.
type chanStream struct {
	ctx context.Context
	ch  chan *rpc.Snapshot
	err error
}

func (s *chanStream) Recv() (*rpc.Snapshot, error) {
	select {
	case <-s.ctx.Done():
		return nil, s.ctx.Err()
	case snap, ok := <-s.ch:
		if !ok {
			if s.err != nil {
				return nil, s.err
			}
			return nil, io.EOF
		}
		return snap, nil
	}
}

type fakeAPI struct {
	mu       sync.Mutex
	created  []string
	createCh chan struct{}
	err      error
	stream   *chanStream
	watchErr error
}

func (f *fakeAPI) CreateNote(ctx context.Context, id string, _ notes.Fields) (*rpc.NoteMessage, error) {
	if f.createCh != nil {
		<-f.createCh
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, id)
	return &rpc.NoteMessage{ID: id}, f.err
}
func (f *fakeAPI) UpdateNote(context.Context, string, notes.Patch) (*rpc.NoteMessage, error) {
	return &rpc.NoteMessage{}, f.err
}
func (f *fakeAPI) DeleteNote(context.Context, string) error { return f.err }
func (f *fakeAPI) Watch(ctx context.Context) (client.SnapshotStream, error) {
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	f.stream.ctx = ctx
	return f.stream, nil
}

func confirmed(id string, at time.Time) *rpc.NoteMessage {
	return rpc.FromNote(notes.Note{ID: id, OwnerID: "u1", Title: id, CreatedAt: at, UpdatedAt: at})
}

func TestRemote_SnapshotsAreConverted(t *testing.T) {
	api := &fakeAPI{stream: &chanStream{ch: make(chan *rpc.Snapshot, 4)}}
	r := NewRemote(api, logging.Nop{})

	ch, cancel := r.Listen("u1")
	defer cancel()

	at := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	api.stream.ch <- &rpc.Snapshot{Notes: []*rpc.NoteMessage{confirmed("n1", at)}}

	ev := next(t, ch)
	require.Len(t, ev.Records, 1)
	assert.Equal(t, "n1", ev.Records[0].ID)
	assert.True(t, at.Equal(*ev.Records[0].UpdatedAt))
	assert.False(t, ev.Records[0].Pending())
}

func TestRemote_PendingCreateShownUntilConfirmed(t *testing.T) {
	api := &fakeAPI{
		stream:   &chanStream{ch: make(chan *rpc.Snapshot, 4)},
		createCh: make(chan struct{}),
	}
	r := NewRemote(api, logging.Nop{})

	ch, cancel := r.Listen("u1")
	defer cancel()
	api.stream.ch <- &rpc.Snapshot{}
	assert.Empty(t, next(t, ch).Records)

	done := make(chan string, 1)
	go func() {
		id, err := r.Add(context.Background(), "u1", notes.Fields{Title: "draft"})
		assert.NoError(t, err)
		done <- id
	}()

	ev := next(t, ch)
	require.Len(t, ev.Records, 1)
	assert.True(t, ev.Records[0].Pending())
	assert.Equal(t, "draft", ev.Records[0].Title)

	close(api.createCh)
	id := <-done
	assert.Equal(t, ev.Records[0].ID, id)

	api.stream.ch <- &rpc.Snapshot{Notes: []*rpc.NoteMessage{confirmed(id, time.Now())}}
	ev = next(t, ch)
	require.Len(t, ev.Records, 1)
	assert.False(t, ev.Records[0].Pending())
}

func TestRemote_FailedCreateIsWithdrawn(t *testing.T) {
	api := &fakeAPI{stream: &chanStream{ch: make(chan *rpc.Snapshot, 4)}, err: errors.New("rejected")}
	r := NewRemote(api, logging.Nop{})

	ch, cancel := r.Listen("u1")
	defer cancel()
	api.stream.ch <- &rpc.Snapshot{}
	next(t, ch)

	_, err := r.Add(context.Background(), "u1", notes.Fields{Title: "x"})
	require.Error(t, err)

	require.Eventually(t, func() bool {
		select {
		case ev := <-ch:
			return len(ev.Records) == 0
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRemote_StreamEndIsAnError(t *testing.T) {
	api := &fakeAPI{stream: &chanStream{ch: make(chan *rpc.Snapshot)}}
	r := NewRemote(api, logging.Nop{})

	ch, cancel := r.Listen("u1")
	defer cancel()
	close(api.stream.ch)

	ev := next(t, ch)
	assert.ErrorIs(t, ev.Err, ErrWatchClosed)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestRemote_WatchOpenError(t *testing.T) {
	api := &fakeAPI{watchErr: client.ErrNotSignedIn}
	r := NewRemote(api, logging.Nop{})

	ch, cancel := r.Listen("u1")
	defer cancel()

	ev := next(t, ch)
	assert.ErrorIs(t, ev.Err, client.ErrNotSignedIn)
}

func TestRemote_CancelIsSilent(t *testing.T) {
	api := &fakeAPI{stream: &chanStream{ch: make(chan *rpc.Snapshot)}}
	r := NewRemote(api, logging.Nop{})

	ch, cancel := r.Listen("u1")
	cancel()
	cancel()

	for ev := range ch {
		assert.NoError(t, ev.Err)
	}
}

func TestRemote_RequiresOwner(t *testing.T) {
	r := NewRemote(&fakeAPI{}, logging.Nop{})
	ctx := context.Background()

	_, err := r.Add(ctx, "", notes.Fields{})
	assert.ErrorIs(t, err, common.ErrIdentityRequired)
	assert.ErrorIs(t, r.Update(ctx, "", "n", notes.Patch{}), common.ErrIdentityRequired)
	assert.ErrorIs(t, r.Delete(ctx, "", "n"), common.ErrIdentityRequired)
}

func TestRemote_ConfirmedCreateDroppedWhenSnapshotOmitsIt(t *testing.T) {
	api := &fakeAPI{stream: &chanStream{ch: make(chan *rpc.Snapshot, 4)}}
	r := NewRemote(api, logging.Nop{})

	ch, cancel := r.Listen("u1")
	defer cancel()
	api.stream.ch <- &rpc.Snapshot{}
	assert.Empty(t, next(t, ch).Records)

	id, err := r.Add(context.Background(), "u1", notes.Fields{Title: "gone"})
	require.NoError(t, err)

	ev := next(t, ch)
	require.Len(t, ev.Records, 1)
	assert.Equal(t, id, ev.Records[0].ID)
	assert.True(t, ev.Records[0].Pending())

	// Deleted elsewhere before any snapshot listed it.
	api.stream.ch <- &rpc.Snapshot{}
	assert.Empty(t, next(t, ch).Records)

	api.stream.ch <- &rpc.Snapshot{}
	assert.Empty(t, next(t, ch).Records)
}

func TestRemote_UnconfirmedCreateSurvivesSnapshot(t *testing.T) {
	api := &fakeAPI{
		stream:   &chanStream{ch: make(chan *rpc.Snapshot, 4)},
		createCh: make(chan struct{}),
	}
	r := NewRemote(api, logging.Nop{})

	ch, cancel := r.Listen("u1")
	defer cancel()
	api.stream.ch <- &rpc.Snapshot{}
	next(t, ch)

	done := make(chan string, 1)
	go func() {
		id, err := r.Add(context.Background(), "u1", notes.Fields{Title: "slow"})
		assert.NoError(t, err)
		done <- id
	}()
	require.Len(t, next(t, ch).Records, 1)

	// A snapshot racing the create call keeps the overlay.
	api.stream.ch <- &rpc.Snapshot{}
	ev := next(t, ch)
	require.Len(t, ev.Records, 1)
	assert.True(t, ev.Records[0].Pending())

	close(api.createCh)
	id := <-done

	api.stream.ch <- &rpc.Snapshot{}
	assert.Empty(t, next(t, ch).Records)

	api.stream.ch <- &rpc.Snapshot{Notes: []*rpc.NoteMessage{confirmed(id, time.Now())}}
	ev = next(t, ch)
	require.Len(t, ev.Records, 1)
	assert.Equal(t, id, ev.Records[0].ID)
	assert.False(t, ev.Records[0].Pending())
}
