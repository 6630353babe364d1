package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/notes"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ChangePublisher announces that an owner's collection changed.
type ChangePublisher interface {
	Publish(ctx context.Context, ownerID string) error
}

// NoteService applies note mutations and serves the ordered collection.
// Every accepted write is followed by a change announcement so open Watch
// streams redeliver the owner's snapshot.
type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   ChangePublisher
	logger      logging.Logger
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, p ChangePublisher, l logging.Logger) *NoteService {
	return &NoteService{
		db:          db,
		repomanager: m,
		publisher:   p,
		logger:      l.With("module", "note_service"),
	}
}

// Create stores a new note. An empty id is replaced with a generated one
// and an empty color with the palette default.
func (s *NoteService) Create(ctx context.Context, ownerID, id string, f notes.Fields) (*notes.Note, error) {
	if ownerID == "" {
		return nil, common.ErrIdentityRequired
	}
	if id == "" {
		id = uuid.NewString()
	}
	if f.Color == "" {
		f.Color = notes.DefaultColor
	}

	n, err := s.repomanager.Notes(s.db).Create(ctx, &notes.Note{
		ID:      id,
		OwnerID: ownerID,
		Title:   f.Title,
		Content: f.Content,
		Color:   f.Color,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating note: %w", err)
	}

	s.announce(ctx, ownerID)
	return n, nil
}

// Update merges patch into the note and re-stamps updated_at.
func (s *NoteService) Update(ctx context.Context, ownerID, id string, patch notes.Patch) (*notes.Note, error) {
	if ownerID == "" {
		return nil, common.ErrIdentityRequired
	}
	if id == "" {
		return nil, fmt.Errorf("%w: note id is required", common.ErrorValidation)
	}

	n, err := s.repomanager.Notes(s.db).Update(ctx, ownerID, id, patch)
	if err != nil {
		return nil, fmt.Errorf("error updating note: %w", err)
	}

	s.announce(ctx, ownerID)
	return n, nil
}

// Delete removes the note permanently.
func (s *NoteService) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return common.ErrIdentityRequired
	}
	if id == "" {
		return fmt.Errorf("%w: note id is required", common.ErrorValidation)
	}

	if err := s.repomanager.Notes(s.db).Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("error deleting note: %w", err)
	}

	s.announce(ctx, ownerID)
	return nil
}

// List returns the owner's notes, newest-modified first.
func (s *NoteService) List(ctx context.Context, ownerID string) ([]notes.Note, error) {
	if ownerID == "" {
		return nil, common.ErrIdentityRequired
	}
	list, err := s.repomanager.Notes(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	return list, nil
}

// announce never fails the write: the note is already stored and the next
// successful announcement redelivers the full collection anyway.
func (s *NoteService) announce(ctx context.Context, ownerID string) {
	if err := s.publisher.Publish(ctx, ownerID); err != nil {
		s.logger.Error(ctx, "publish change failed", "owner", ownerID, "error", err)
	}
}
