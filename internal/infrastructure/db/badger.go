package db

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
)

// OpenBadger opens the snapshot database in dir. An empty dir opens an in-memory database.
func OpenBadger(dir string) (*badger.DB, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithLogger(nil)

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return bdb, nil
}
