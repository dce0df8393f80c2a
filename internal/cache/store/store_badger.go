package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"contentgw/internal/cache"
	"contentgw/pkg/platform/sentinel"
)

const badgerPrefix = "cache/"

// BadgerStore persists entries in an embedded Badger database so a single
// node keeps its cache across restarts.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func badgerKey(key cache.Key) []byte {
	return []byte(badgerPrefix + string(key))
}

func (s *BadgerStore) Load(_ context.Context, key cache.Key) (*cache.Entry, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("cache entry %s: %w", key, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("badger get %s: %w", key, err)
	}
	return decodeEntry(key, raw)
}

func (s *BadgerStore) Save(_ context.Context, entry *cache.Entry) error {
	raw, err := encodeEntry(entry)
	if err != nil {
		return fmt.Errorf("encode cache record %s: %w", entry.Key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(badgerKey(entry.Key), raw)
		if ttl := housekeepingTTL(entry.TTL); ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("badger set %s: %w", entry.Key, err)
	}
	return nil
}

func (s *BadgerStore) Delete(_ context.Context, key cache.Key) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(key))
	})
	if err != nil {
		return fmt.Errorf("badger delete %s: %w", key, err)
	}
	return nil
}
