package database

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadtree-index/models"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func boids() *models.PointSet {
	return &models.PointSet{
		Name:        "boids",
		Bounds:      models.Rect{Max: models.Point{X: 100, Y: 100}},
		MaxEntries:  4,
		MinCellSize: 1,
		Entries: []models.Entry{
			{ID: 1, X: 10, Y: 10},
			{ID: 2, X: 77, Y: 55},
		},
	}
}

func TestStore_save(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO point_sets")).
		WithArgs("boids", 0.0, 0.0, 100.0, 100.0, 4, 1.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM entries WHERE set_name=$1")).
		WithArgs("boids").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO entries")).
		WithArgs("boids", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, store.Save(context.Background(), boids()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_saveDuplicateIDs(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO point_sets")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM entries")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO entries")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := store.Save(context.Background(), boids())
	assert.ErrorIs(t, err, ErrDuplicateEntry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_load(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM point_sets WHERE name=$1")).
		WithArgs("boids").
		WillReturnRows(sqlmock.NewRows([]string{"min_x", "min_y", "max_x", "max_y", "max_entries", "min_cell_size"}).
			AddRow(0.0, 0.0, 100.0, 100.0, int64(4), 1.0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, x, y FROM entries")).
		WithArgs("boids").
		WillReturnRows(sqlmock.NewRows([]string{"id", "x", "y"}).
			AddRow(int64(1), 10.0, 10.0).
			AddRow(int64(2), 77.0, 55.0))

	ps, err := store.Load(context.Background(), "boids")
	require.NoError(t, err)
	assert.Equal(t, boids(), ps)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_loadMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM point_sets WHERE name=$1")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"min_x", "min_y", "max_x", "max_y", "max_entries", "min_cell_size"}))

	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_delete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM point_sets")).
		WithArgs("boids").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM point_sets")).
		WithArgs("boids").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, store.Delete(context.Background(), "boids"))
	assert.ErrorIs(t, store.Delete(context.Background(), "boids"), ErrNotFound)
}

func TestStore_names(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT name FROM point_sets")).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("a").AddRow("boids"))

	names, err := store.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "boids"}, names)
}
