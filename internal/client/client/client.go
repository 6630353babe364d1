package client

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/notes"
	"github.com/dmitrijs2005/gophnotes/internal/rpc"
)

// Account identifies the signed-in user.
type Account struct {
	UserID string
	Email  string
}

// SnapshotStream yields complete, ordered collections until it fails or its
// context is cancelled.
type SnapshotStream interface {
	Recv() (*rpc.Snapshot, error)
}

type Client interface {
	Close() error
	SignUp(ctx context.Context, email, password string) (*Account, error)
	SignIn(ctx context.Context, email, password string) (*Account, error)
	SignOut(ctx context.Context) error
	Ping(ctx context.Context) error
	CreateNote(ctx context.Context, id string, f notes.Fields) (*rpc.NoteMessage, error)
	UpdateNote(ctx context.Context, id string, patch notes.Patch) (*rpc.NoteMessage, error)
	DeleteNote(ctx context.Context, id string) error
	BackupNotes(ctx context.Context) (key string, count int, err error)
	Watch(ctx context.Context) (SnapshotStream, error)
}
