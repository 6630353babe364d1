package grpc

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/notes"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
)

// ---- test logger ----

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// ---- fakes ----

type fakeUsers struct {
	session *services.Session
	err     error

	signedOut string
}

func (f *fakeUsers) SignUp(context.Context, string, string) (*services.Session, error) {
	return f.session, f.err
}
func (f *fakeUsers) SignIn(context.Context, string, string) (*services.Session, error) {
	return f.session, f.err
}
func (f *fakeUsers) RefreshToken(context.Context, string) (*services.Session, error) {
	return f.session, f.err
}
func (f *fakeUsers) SignOut(_ context.Context, token string) error {
	f.signedOut = token
	return f.err
}

// fakeNotes keeps notes in memory, ordered by a monotonically increasing
// clock, and reports every owner it was called with.
type fakeNotes struct {
	mu     sync.Mutex
	byID   map[string]notes.Note
	clock  time.Time
	owners []string
	err    error
	pub    interface {
		Publish(context.Context, string) error
	}
}

func newFakeNotes() *fakeNotes {
	return &fakeNotes{byID: map[string]notes.Note{}, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeNotes) record(owner string) error {
	f.owners = append(f.owners, owner)
	if owner == "" {
		return common.ErrIdentityRequired
	}
	return f.err
}

func (f *fakeNotes) Create(ctx context.Context, owner, id string, fl notes.Fields) (*notes.Note, error) {
	f.mu.Lock()
	if err := f.record(owner); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if id == "" {
		id = "generated"
	}
	f.clock = f.clock.Add(time.Second)
	n := notes.Note{ID: id, OwnerID: owner, Title: fl.Title, Content: fl.Content, Color: fl.Color, CreatedAt: f.clock, UpdatedAt: f.clock}
	f.byID[id] = n
	f.mu.Unlock()

	if f.pub != nil {
		_ = f.pub.Publish(ctx, owner)
	}
	return &n, nil
}

func (f *fakeNotes) Update(_ context.Context, owner, id string, p notes.Patch) (*notes.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(owner); err != nil {
		return nil, err
	}
	n, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	fl := p.Apply(n.Fields())
	n.Title, n.Content, n.Color = fl.Title, fl.Content, fl.Color
	f.clock = f.clock.Add(time.Second)
	n.UpdatedAt = f.clock
	f.byID[id] = n
	return &n, nil
}

func (f *fakeNotes) Delete(_ context.Context, owner, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(owner); err != nil {
		return err
	}
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeNotes) List(_ context.Context, owner string) ([]notes.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(owner); err != nil {
		return nil, err
	}
	out := []notes.Note{}
	for _, n := range f.byID {
		if n.OwnerID == owner {
			out = append(out, n)
		}
	}
	notes.SortByUpdatedDesc(out)
	return out, nil
}

type fakeBackups struct {
	owner string
	err   error
}

func (f *fakeBackups) Backup(_ context.Context, owner string) (string, int, error) {
	f.owner = owner
	if f.err != nil {
		return "", 0, f.err
	}
	return "notes/" + owner + "/x.json", 3, nil
}
