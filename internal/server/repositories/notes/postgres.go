package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/notes"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n *notes.Note) (*notes.Note, error) {
	query := `
		INSERT INTO notes (owner_id, id, title, content, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, n.OwnerID, n.ID, n.Title, n.Content, n.Color).
		Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Update(ctx context.Context, ownerID, id string, patch notes.Patch) (*notes.Note, error) {
	query := `
		UPDATE notes
		SET title = COALESCE($3, title),
		    content = COALESCE($4, content),
		    color = COALESCE($5, color),
		    updated_at = GREATEST(now(), updated_at)
		WHERE owner_id = $1 AND id = $2
		RETURNING owner_id, id, title, content, color, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, query, ownerID, id,
		nullString(patch.Title), nullString(patch.Content), nullString(patch.Color))

	n := &notes.Note{}
	if err := scanNote(row, n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `
		DELETE FROM notes
		WHERE owner_id = $1 AND id = $2
	`
	res, err := r.db.ExecContext(ctx, query, ownerID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]notes.Note, error) {
	query := `
		SELECT owner_id, id, title, content, color, created_at, updated_at
		FROM notes
		WHERE owner_id = $1
		ORDER BY updated_at DESC, id
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]notes.Note, 0)
	for rows.Next() {
		var n notes.Note
		if err := scanNote(rows, &n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner, n *notes.Note) error {
	return s.Scan(&n.OwnerID, &n.ID, &n.Title, &n.Content, &n.Color, &n.CreatedAt, &n.UpdatedAt)
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
