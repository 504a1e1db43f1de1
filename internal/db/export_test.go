package db

import "database/sql"

// NewStoreWithOpener builds a Store whose connections come from open.
func NewStoreWithOpener(path string, open func(string) (*sql.DB, error)) *Store {
	return &Store{path: path, open: open}
}
