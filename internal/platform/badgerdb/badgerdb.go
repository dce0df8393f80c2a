package badgerdb

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"contentgw/internal/platform/config"
)

// Open opens the embedded key-value store shared by the cache and token
// backends. Badger's own logger is silenced; errors surface through returns.
func Open(cfg config.Badger) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.Path).WithLogger(nil)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", cfg.Path, err)
	}
	return db, nil
}

// OpenInMemory is a convenience for tests.
func OpenInMemory() (*badger.DB, error) {
	return Open(config.Badger{InMemory: true})
}
