// Package gateway issues note mutations on behalf of the signed-in owner.
// Every call is a single attempt; the outcome becomes visible through the
// next subscription snapshot, not through the return value.
package gateway

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/client/store"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/notes"
)

type Gateway struct {
	store store.Store
}

func New(s store.Store) *Gateway {
	return &Gateway{store: s}
}

// Create adds a note and returns its id. An empty color becomes the palette
// default.
func (g *Gateway) Create(ctx context.Context, ownerID string, f notes.Fields) (string, error) {
	if ownerID == "" {
		return "", common.ErrIdentityRequired
	}
	if f.Color == "" {
		f.Color = notes.DefaultColor
	}
	id, err := g.store.Add(ctx, ownerID, f)
	if err != nil {
		return "", fmt.Errorf("create note: %w", err)
	}
	return id, nil
}

// Update overwrites title, content and color.
func (g *Gateway) Update(ctx context.Context, ownerID, id string, f notes.Fields) error {
	if ownerID == "" {
		return common.ErrIdentityRequired
	}
	if err := g.store.Update(ctx, ownerID, id, notes.FullPatch(f)); err != nil {
		return fmt.Errorf("update note %s: %w", id, err)
	}
	return nil
}

// UpdateColor changes only the color.
func (g *Gateway) UpdateColor(ctx context.Context, ownerID, id, color string) error {
	if ownerID == "" {
		return common.ErrIdentityRequired
	}
	if err := g.store.Update(ctx, ownerID, id, notes.ColorPatch(color)); err != nil {
		return fmt.Errorf("update note color %s: %w", id, err)
	}
	return nil
}

func (g *Gateway) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return common.ErrIdentityRequired
	}
	if err := g.store.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	return nil
}
