package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"contentgw/internal/ageverify/models"
	"contentgw/pkg/platform/sentinel"
)

const (
	badgerTokenPrefix    = "agetoken/v/"
	badgerIdentityPrefix = "agetoken/i/"
)

// BadgerTokenStore keeps pending tokens in the embedded store so a restart
// does not strand users mid-verification.
type BadgerTokenStore struct {
	db        *badger.DB
	retention time.Duration
	clock     func() time.Time
}

func NewBadgerTokenStore(db *badger.DB, retention time.Duration) *BadgerTokenStore {
	return &BadgerTokenStore{db: db, retention: retention, clock: time.Now}
}

func (s *BadgerTokenStore) Create(_ context.Context, token *models.Token) error {
	if token == nil || token.Value == "" {
		return fmt.Errorf("token value is required")
	}
	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	keep := token.ExpiresAt.Sub(s.clock()) + s.retention
	err = s.db.Update(func(txn *badger.Txn) error {
		tokenEntry := badger.NewEntry([]byte(badgerTokenPrefix+token.Value), raw)
		identityEntry := badger.NewEntry([]byte(badgerIdentityPrefix+token.Identity), []byte(token.Value))
		if keep > 0 {
			tokenEntry = tokenEntry.WithTTL(keep)
			identityEntry = identityEntry.WithTTL(keep)
		}
		if err := txn.SetEntry(tokenEntry); err != nil {
			return err
		}
		return txn.SetEntry(identityEntry)
	})
	if err != nil {
		return fmt.Errorf("badger store token: %w", err)
	}
	return nil
}

func (s *BadgerTokenStore) FindLive(_ context.Context, identity string, now time.Time) (*models.Token, error) {
	var token *models.Token
	err := s.db.View(func(txn *badger.Txn) error {
		value, err := getValue(txn, badgerIdentityPrefix+identity)
		if err != nil {
			return err
		}
		raw, err := getValue(txn, badgerTokenPrefix+string(value))
		if err != nil {
			return err
		}
		token, err = decodeToken(raw)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("token for identity: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("badger find token: %w", err)
	}
	if token.Expired(now) {
		return nil, fmt.Errorf("live token for identity: %w", sentinel.ErrNotFound)
	}
	return token, nil
}

// Take runs in one read-write transaction; Badger aborts one of two
// concurrent takers with ErrConflict, which surfaces as an error rather than
// a double confirmation.
func (s *BadgerTokenStore) Take(_ context.Context, value string) (*models.Token, error) {
	var token *models.Token
	err := s.db.Update(func(txn *badger.Txn) error {
		key := badgerTokenPrefix + value
		raw, err := getValue(txn, key)
		if err != nil {
			return err
		}
		token, err = decodeToken(raw)
		if err != nil {
			return err
		}
		if err := txn.Delete([]byte(key)); err != nil {
			return err
		}
		pointer := badgerIdentityPrefix + token.Identity
		current, err := getValue(txn, pointer)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			return nil
		case err != nil:
			return err
		case string(current) == value:
			return txn.Delete([]byte(pointer))
		}
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("token: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("badger take token: %w", err)
	}
	return token, nil
}

func getValue(txn *badger.Txn, key string) ([]byte, error) {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}
