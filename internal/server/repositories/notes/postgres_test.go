package notes

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/notes"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noteColumns = []string{"owner_id", "id", "title", "content", "color", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

const createQ = `(?s)^INSERT\s+INTO\s+notes\s*\(owner_id,\s*id,\s*title,\s*content,\s*color,\s*created_at,\s*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*now\(\),\s*now\(\)\)\s*RETURNING\s+created_at,\s*updated_at$`

func TestCreate_StampsFromDatabase(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(createQ).
		WithArgs("u1", "n1", "Groceries", "milk, eggs", "bg-white").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(ts, ts))

	n, err := repo.Create(context.Background(), &notes.Note{
		OwnerID: "u1", ID: "n1", Title: "Groceries", Content: "milk, eggs", Color: "bg-white",
	})
	require.NoError(t, err)
	assert.Equal(t, ts, n.CreatedAt)
	assert.Equal(t, n.CreatedAt, n.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Errors(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(createQ).WillReturnError(&pgconn.PgError{Code: "23505"})
	_, err := repo.Create(context.Background(), &notes.Note{OwnerID: "u1", ID: "n1"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	mock.ExpectQuery(createQ).WillReturnError(errors.New("conn reset"))
	_, err = repo.Create(context.Background(), &notes.Note{OwnerID: "u1", ID: "n1"})
	require.ErrorContains(t, err, "db error: conn reset")
}

const updateQ = `(?s)^UPDATE\s+notes\s+SET\s+title\s*=\s*COALESCE\(\$3,\s*title\),\s*content\s*=\s*COALESCE\(\$4,\s*content\),\s*color\s*=\s*COALESCE\(\$5,\s*color\),\s*updated_at\s*=\s*GREATEST\(now\(\),\s*updated_at\)\s+WHERE\s+owner_id\s*=\s*\$1\s+AND\s+id\s*=\s*\$2\s+RETURNING\s+owner_id,\s*id,\s*title,\s*content,\s*color,\s*created_at,\s*updated_at$`

func TestUpdate_ColorOnlyPatch(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	updated := created.Add(time.Minute)

	mock.ExpectQuery(updateQ).
		WithArgs("u1", "n1", sql.NullString{}, sql.NullString{}, sql.NullString{String: "bg-amber-200", Valid: true}).
		WillReturnRows(sqlmock.NewRows(noteColumns).
			AddRow("u1", "n1", "Groceries", "milk, eggs", "bg-amber-200", created, updated))

	n, err := repo.Update(context.Background(), "u1", "n1", notes.ColorPatch("bg-amber-200"))
	require.NoError(t, err)
	assert.Equal(t, "bg-amber-200", n.Color)
	assert.Equal(t, created, n.CreatedAt)
	assert.True(t, n.UpdatedAt.After(n.CreatedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(updateQ).WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "u1", "missing", notes.FullPatch(notes.Fields{Title: "x"}))
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	q := `(?s)^DELETE\s+FROM\s+notes\s+WHERE\s+owner_id\s*=\s*\$1\s+AND\s+id\s*=\s*\$2$`

	t.Run("deleted", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WithArgs("u1", "n1").WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.Delete(context.Background(), "u1", "n1"))
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WithArgs("u1", "n2").WillReturnResult(sqlmock.NewResult(0, 0))
		require.ErrorIs(t, repo.Delete(context.Background(), "u1", "n2"), common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WillReturnError(errors.New("boom"))
		require.ErrorContains(t, repo.Delete(context.Background(), "u1", "n3"), "boom")
	})
}

func TestListByOwner(t *testing.T) {
	q := `(?s)^SELECT\s+owner_id,\s*id,\s*title,\s*content,\s*color,\s*created_at,\s*updated_at\s+FROM\s+notes\s+WHERE\s+owner_id\s*=\s*\$1\s+ORDER\s+BY\s+updated_at\s+DESC,\s*id$`
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("ordered rows", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("u1").WillReturnRows(sqlmock.NewRows(noteColumns).
			AddRow("u1", "b", "second", "", "bg-white", t0, t0.Add(time.Hour)).
			AddRow("u1", "a", "first", "", "bg-white", t0, t0))

		list, err := repo.ListByOwner(context.Background(), "u1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "b", list[0].ID)
		assert.Equal(t, "a", list[1].ID)
	})

	t.Run("empty is not nil", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("u2").WillReturnRows(sqlmock.NewRows(noteColumns))

		list, err := repo.ListByOwner(context.Background(), "u2")
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("row error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("u1").WillReturnRows(sqlmock.NewRows(noteColumns).
			AddRow("u1", "a", "first", "", "bg-white", t0, t0).
			RowError(0, errors.New("broken row")))

		_, err := repo.ListByOwner(context.Background(), "u1")
		require.ErrorContains(t, err, "broken row")
	})
}
