// Package notes persists owner-scoped notes. Timestamps are always taken
// from the database clock at the moment a write is accepted.
package notes

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/notes"
)

type Repository interface {
	// Create inserts n with created_at = updated_at = now(). A duplicate
	// (owner, id) yields common.ErrorAlreadyExists.
	Create(ctx context.Context, n *notes.Note) (*notes.Note, error)

	// Update merges patch into the note and re-stamps updated_at, never
	// moving it backwards. Unknown notes yield common.ErrorNotFound.
	Update(ctx context.Context, ownerID, id string, patch notes.Patch) (*notes.Note, error)

	// Delete removes the note permanently.
	Delete(ctx context.Context, ownerID, id string) error

	// ListByOwner returns the owner's notes ordered by updated_at desc.
	ListByOwner(ctx context.Context, ownerID string) ([]notes.Note, error)
}
