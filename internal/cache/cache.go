// file: internal/cache/cache.go
// version: 2.1.0
// guid: 5e6f7a8b-9c0d-4e1f-a2b3-c4d5e6f7a8b0

// Package cache persists provider search responses so repeated lookups for
// the same query hit disk instead of the network. Entries expire by TTL and
// are keyed by provider name plus a hash of the query.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble/v2"

	"github.com/jdfalk/audiobook-renamer/internal/models"
)

// Store is a TTL cache over a pebble key-value database.
type Store struct {
	db  *pebble.DB
	ttl time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

// entry is the stored envelope for one cached response.
type entry struct {
	StoredAt   time.Time                 `json:"stored_at"`
	Identities []models.ProviderIdentity `json:"identities"`
}

// Open opens (or creates) a cache database at dir with the given TTL.
func Open(dir string, ttl time.Duration) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache at %s: %w", dir, err)
	}
	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key derives the cache key for a provider query.
func Key(provider, query string) []byte {
	sum := sha256.Sum256([]byte(query))
	return []byte(provider + ":" + hex.EncodeToString(sum[:]))
}

// Get returns the cached identities for a provider query. The second result
// is false on a miss or when the entry has expired; expired entries are
// deleted eagerly.
func (s *Store) Get(provider, query string) ([]models.ProviderIdentity, bool) {
	key := Key(provider, query)
	val, closer, err := s.db.Get(key)
	if err != nil {
		return nil, false
	}
	data := append([]byte(nil), val...)
	_ = closer.Close()

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		_ = s.db.Delete(key, pebble.Sync)
		return nil, false
	}
	if s.ttl > 0 && s.now().Sub(e.StoredAt) > s.ttl {
		_ = s.db.Delete(key, pebble.Sync)
		return nil, false
	}
	return e.Identities, true
}

// Put stores a provider response. Caching an empty result is valid; it
// suppresses repeat lookups for queries known to have no match.
func (s *Store) Put(provider, query string, identities []models.ProviderIdentity) error {
	e := entry{StoredAt: s.now(), Identities: identities}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return s.db.Set(Key(provider, query), data, pebble.Sync)
}

// Purge deletes all expired entries and returns how many were removed.
func (s *Store) Purge() (int, error) {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return 0, err
	}

	var expired [][]byte
	for iter.First(); iter.Valid(); iter.Next() {
		var e entry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			expired = append(expired, append([]byte(nil), iter.Key()...))
			continue
		}
		if s.ttl > 0 && s.now().Sub(e.StoredAt) > s.ttl {
			expired = append(expired, append([]byte(nil), iter.Key()...))
		}
	}
	if err := iter.Close(); err != nil {
		return 0, err
	}

	for _, key := range expired {
		if err := s.db.Delete(key, pebble.Sync); err != nil {
			return 0, err
		}
	}
	return len(expired), nil
}

// Clear removes every entry.
func (s *Store) Clear() error {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return err
	}
	var keys [][]byte
	for iter.First(); iter.Valid(); iter.Next() {
		keys = append(keys, append([]byte(nil), iter.Key()...))
	}
	if err := iter.Close(); err != nil {
		return err
	}
	var errs []error
	for _, key := range keys {
		errs = append(errs, s.db.Delete(key, pebble.Sync))
	}
	return errors.Join(errs...)
}
