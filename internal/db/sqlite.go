package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"book_scraper/internal/models"

	_ "modernc.org/sqlite"
)

const TableName = "Books"

const (
	createTableSQL = `CREATE TABLE Books (
	address      TEXT NOT NULL,
	title        TEXT NOT NULL,
	price        REAL NOT NULL,
	stock_status TEXT NOT NULL,
	observed_at  TEXT NOT NULL
)`
	insertRecordSQL = `INSERT INTO Books (address, title, price, stock_status, observed_at) VALUES (?, ?, ?, ?, ?)`
	selectRecordSQL = `SELECT rowid, address, title, price, stock_status, observed_at FROM Books ORDER BY rowid`
	countRecordSQL  = `SELECT COUNT(*) FROM Books`
)

// StoredRecord is a ProductRecord together with the row id it was given.
type StoredRecord struct {
	RowID  int64                `yaml:"row_id"`
	Record models.ProductRecord `yaml:",inline"`
}

// Store appends product records to the Books table of a SQLite file. It keeps
// no connection between calls: every operation opens the file, does its work
// and closes it again.
type Store struct {
	path string
	open func(path string) (*sql.DB, error)
}

func NewStore(path string) *Store {
	return &Store{path: path, open: openSQLite}
}

func (s *Store) Path() string { return s.path }

func openSQLite(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	conn.SetMaxOpenConns(1)
	return conn, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// EnsureSchema creates the Books table. created is false when the table was
// already there, in which case nothing is touched.
func (s *Store) EnsureSchema(ctx context.Context) (created bool, err error) {
	conn, err := s.open(s.path)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	return ensureSchema(ctx, conn)
}

func ensureSchema(ctx context.Context, conn execer) (bool, error) {
	if _, err := conn.ExecContext(ctx, createTableSQL); err != nil {
		if isAlreadyExists(err) {
			return false, nil
		}
		return false, fmt.Errorf("create table %s: %w", TableName, err)
	}
	return true, nil
}

func isAlreadyExists(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}

// Append inserts rec as a new row and returns its row id. Identical records
// are stored as separate rows.
func (s *Store) Append(ctx context.Context, rec *models.ProductRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	conn, err := s.open(s.path)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	if _, err := ensureSchema(ctx, conn); err != nil {
		return 0, err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, insertRecordSQL,
		rec.Address,
		rec.Title,
		rec.Price,
		rec.StockStatus,
		rec.ObservedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", TableName, err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return rowID, nil
}

// Records returns every stored row in insertion order.
func (s *Store) Records(ctx context.Context) ([]StoredRecord, error) {
	conn, err := s.open(s.path)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, selectRecordSQL)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", TableName, err)
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		var r StoredRecord
		err := rows.Scan(&r.RowID, &r.Record.Address, &r.Record.Title, &r.Record.Price, &r.Record.StockStatus, &r.Record.ObservedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	conn, err := s.open(s.path)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	var n int64
	if err := conn.QueryRowContext(ctx, countRecordSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", TableName, err)
	}
	return n, nil
}
