package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"agency/internal/docstore"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Description string              `json:"description"`
	ProjectID   string              `json:"projectId"`
	Amount      float64             `json:"amount"`
	Date        docstore.Timestamp  `json:"date"`
	DoneAt      *docstore.Timestamp `json:"doneAt"`
}

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "agency.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func descriptions(t *testing.T, snaps []docstore.Snapshot) []string {
	t.Helper()
	out := make([]string, 0, len(snaps))
	for _, s := range snaps {
		var e entry
		require.NoError(t, s.DataTo(&e))
		out = append(out, e.Description)
	}
	return out
}

func TestSQLiteRepository_AddGetUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	date := docstore.FromTime(time.Date(2025, 4, 10, 9, 30, 0, 0, time.UTC))
	id, err := repo.Add(ctx, "revenues", entry{Description: "Site", Amount: 150.5, Date: date})
	require.NoError(t, err)
	assert.Len(t, id, 36)

	snap, err := repo.Get(ctx, "revenues", id)
	require.NoError(t, err)
	assert.Equal(t, id, snap.ID)

	var got entry
	require.NoError(t, snap.DataTo(&got))
	assert.Equal(t, "Site", got.Description)
	assert.Equal(t, 150.5, got.Amount)
	assert.Equal(t, date, got.Date)
	assert.Nil(t, got.DoneAt)

	done := docstore.FromTime(time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Update(ctx, "revenues", id, map[string]any{"doneAt": done, "amount": 99.0}))

	snap, err = repo.Get(ctx, "revenues", id)
	require.NoError(t, err)
	got = entry{}
	require.NoError(t, snap.DataTo(&got))
	require.NotNil(t, got.DoneAt)
	assert.Equal(t, done, *got.DoneAt)
	assert.Equal(t, 99.0, got.Amount)
	assert.Equal(t, "Site", got.Description)

	require.NoError(t, repo.Update(ctx, "revenues", id, map[string]any{"doneAt": nil}))
	snap, err = repo.Get(ctx, "revenues", id)
	require.NoError(t, err)
	got = entry{}
	require.NoError(t, snap.DataTo(&got))
	assert.Nil(t, got.DoneAt)

	n, err := repo.Count(ctx, "revenues")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSQLiteRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.Get(ctx, "clients", "missing")
	assert.True(t, errors.Is(err, docstore.ErrNotFound))

	err = repo.Update(ctx, "clients", "missing", map[string]any{"name": "x"})
	assert.True(t, errors.Is(err, docstore.ErrNotFound))
}

func TestSQLiteRepository_QueryOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	add := func(desc, project string, at time.Time) {
		t.Helper()
		_, err := repo.Add(ctx, "project_activities", entry{Description: desc, ProjectID: project, Date: docstore.FromTime(at)})
		require.NoError(t, err)
	}
	add("late", "p1", base.Add(2*time.Hour))
	add("early", "p1", base)
	add("elsewhere", "p2", base.Add(time.Hour))
	add("late twin", "p1", base.Add(2*time.Hour))
	add("same second", "p1", base.Add(500*time.Millisecond))

	asc, err := repo.Query(ctx, docstore.Query{Collection: "project_activities", OrderBy: "date"})
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "same second", "elsewhere", "late", "late twin"}, descriptions(t, asc))

	desc, err := repo.Query(ctx, docstore.Query{Collection: "project_activities", OrderBy: "date", Direction: docstore.Desc})
	require.NoError(t, err)
	assert.Equal(t, []string{"late", "late twin", "elsewhere", "same second", "early"}, descriptions(t, desc))

	onlyP1, err := repo.Query(ctx, docstore.Query{
		Collection: "project_activities",
		OrderBy:    "date",
		Where:      []docstore.Filter{{Field: "projectId", Value: "p1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "same second", "late", "late twin"}, descriptions(t, onlyP1))

	other, err := repo.Query(ctx, docstore.Query{Collection: "budgets", OrderBy: "date"})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSQLiteRepository_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.Add(ctx, "clients", "plain string")
	assert.Error(t, err)

	_, err = repo.Query(ctx, docstore.Query{Collection: "clients", OrderBy: "name') --"})
	assert.True(t, errors.Is(err, docstore.ErrInvalidField))

	err = repo.Update(ctx, "clients", "any", map[string]any{"$.name": "x"})
	assert.True(t, errors.Is(err, docstore.ErrInvalidField))
}

func TestSQLiteRepository_SchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agency.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	version, dirty, err := SchemaVersion(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func newMockRepository(t *testing.T) (*SQLiteRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewFromDB(db), mock
}

func TestSQLiteRepository_StoreFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk I/O error")

	t.Run("insert error is returned", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec("INSERT INTO documents").WillReturnError(boom)

		_, err := repo.Add(ctx, "expenses", entry{Description: "x"})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error is returned", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery("SELECT id, body FROM documents").
			WithArgs("expenses", "$.date.seconds", "$.date.nanos", "$.date").
			WillReturnError(boom)

		_, err := repo.Query(ctx, docstore.Query{Collection: "expenses", OrderBy: "date", Direction: docstore.Desc})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rows are decoded in order", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		rows := sqlmock.NewRows([]string{"id", "body"}).
			AddRow("a", `{"description":"first"}`).
			AddRow("b", `{"description":"second"}`)
		mock.ExpectQuery("SELECT id, body FROM documents").WillReturnRows(rows)

		snaps, err := repo.Query(ctx, docstore.Query{Collection: "expenses"})
		require.NoError(t, err)
		require.Len(t, snaps, 2)
		assert.Equal(t, "a", snaps[0].ID)
		assert.Equal(t, []string{"first", "second"}, descriptions(t, snaps))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update of unknown id is not found", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec("UPDATE documents SET body = json_set").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, "budgets", "nope", map[string]any{"status": "sent"})
		assert.ErrorIs(t, err, docstore.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty patch does not touch the database", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		require.NoError(t, repo.Update(ctx, "budgets", "id", nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
