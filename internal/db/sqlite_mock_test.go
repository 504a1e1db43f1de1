package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	opened := false
	store := NewStoreWithOpener("mock.db", func(path string) (*sql.DB, error) {
		require.False(t, opened, "a mock connection can only be opened once")
		opened = true
		return conn, nil
	})
	return store, mock
}

func TestStore_AppendWithMock(t *testing.T) {
	ctx := context.Background()
	rec := testRecord("sapiens", 54.23)

	t.Run("existing table is tolerated", func(t *testing.T) {
		store, mock := mockStore(t)
		mock.ExpectExec("CREATE TABLE Books").
			WillReturnError(errors.New("SQL logic error: table Books already exists (1)"))
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO Books").
			WithArgs(rec.Address, rec.Title, rec.Price, rec.StockStatus, rec.ObservedAt).
			WillReturnResult(sqlmock.NewResult(42, 1))
		mock.ExpectCommit()
		mock.ExpectClose()

		id, err := store.Append(ctx, rec)
		require.NoError(t, err)
		assert.EqualValues(t, 42, id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other schema errors abort", func(t *testing.T) {
		store, mock := mockStore(t)
		mock.ExpectExec("CREATE TABLE Books").
			WillReturnError(errors.New("database is locked"))
		mock.ExpectClose()

		_, err := store.Append(ctx, rec)
		assert.ErrorContains(t, err, "database is locked")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		store, mock := mockStore(t)
		mock.ExpectExec("CREATE TABLE Books").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO Books").WillReturnError(errors.New("disk I/O error"))
		mock.ExpectRollback()
		mock.ExpectClose()

		_, err := store.Append(ctx, rec)
		assert.ErrorContains(t, err, "disk I/O error")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit failure", func(t *testing.T) {
		store, mock := mockStore(t)
		mock.ExpectExec("CREATE TABLE Books").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO Books").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit().WillReturnError(errors.New("disk full"))
		mock.ExpectClose()

		_, err := store.Append(ctx, rec)
		assert.ErrorContains(t, err, "commit")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_OpenFailure(t *testing.T) {
	store := NewStoreWithOpener("broken.db", func(string) (*sql.DB, error) {
		return nil, errors.New("no driver")
	})

	_, err := store.EnsureSchema(context.Background())
	assert.ErrorContains(t, err, "no driver")
	_, err = store.Append(context.Background(), testRecord("x", 1))
	assert.ErrorContains(t, err, "no driver")
}
