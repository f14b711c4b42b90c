// file: internal/cache/cache_test.go
// version: 1.1.0
// guid: 2c3d4e5f-6a7b-4c8d-9e0f-1a2b3c4d5e6f

package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jdfalk/audiobook-renamer/internal/models"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache"), ttl)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleIdentities() []models.ProviderIdentity {
	year := 2010
	return []models.ProviderIdentity{
		{
			Provider:   "openlibrary",
			ExternalID: "OL123W",
			Title:      "The Way of Kings",
			Authors:    []string{"Brandon Sanderson"},
			Year:       &year,
		},
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := newTestStore(t, time.Hour)

	if err := store.Put("openlibrary", "way of kings|sanderson", sampleIdentities()); err != nil {
		t.Fatal(err)
	}

	got, ok := store.Get("openlibrary", "way of kings|sanderson")
	if !ok {
		t.Fatal("cache miss after put")
	}
	if len(got) != 1 || got[0].Title != "The Way of Kings" {
		t.Errorf("got %+v", got)
	}
	if got[0].Year == nil || *got[0].Year != 2010 {
		t.Errorf("year lost in round trip: %v", got[0].Year)
	}
}

func TestGetMiss(t *testing.T) {
	store := newTestStore(t, time.Hour)
	if _, ok := store.Get("openlibrary", "never stored"); ok {
		t.Error("unexpected cache hit")
	}
}

func TestKeysAreProviderScoped(t *testing.T) {
	store := newTestStore(t, time.Hour)
	if err := store.Put("openlibrary", "query", sampleIdentities()); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Get("googlebooks", "query"); ok {
		t.Error("cache entry leaked across providers")
	}
}

func TestEmptyResultIsCached(t *testing.T) {
	store := newTestStore(t, time.Hour)
	if err := store.Put("librivox", "no such book", nil); err != nil {
		t.Fatal(err)
	}
	got, ok := store.Get("librivox", "no such book")
	if !ok {
		t.Fatal("cached empty result must still hit")
	}
	if len(got) != 0 {
		t.Errorf("got %+v, want empty", got)
	}
}

func TestExpiredEntryIsMissAndDeleted(t *testing.T) {
	store := newTestStore(t, time.Hour)

	base := time.Now()
	store.now = func() time.Time { return base }
	if err := store.Put("openlibrary", "query", sampleIdentities()); err != nil {
		t.Fatal(err)
	}

	store.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, ok := store.Get("openlibrary", "query"); ok {
		t.Fatal("expired entry returned")
	}

	// The expired entry was deleted; even within TTL it stays gone.
	store.now = func() time.Time { return base }
	if _, ok := store.Get("openlibrary", "query"); ok {
		t.Error("expired entry not deleted")
	}
}

func TestPurge(t *testing.T) {
	store := newTestStore(t, time.Hour)

	base := time.Now()
	store.now = func() time.Time { return base }
	if err := store.Put("openlibrary", "stale", sampleIdentities()); err != nil {
		t.Fatal(err)
	}

	store.now = func() time.Time { return base.Add(2 * time.Hour) }
	if err := store.Put("openlibrary", "fresh", sampleIdentities()); err != nil {
		t.Fatal(err)
	}

	n, err := store.Purge()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("purged %d entries, want 1", n)
	}
	if _, ok := store.Get("openlibrary", "fresh"); !ok {
		t.Error("fresh entry purged")
	}
}

func TestClear(t *testing.T) {
	store := newTestStore(t, time.Hour)
	if err := store.Put("openlibrary", "a", sampleIdentities()); err != nil {
		t.Fatal(err)
	}
	if err := store.Put("googlebooks", "b", sampleIdentities()); err != nil {
		t.Fatal(err)
	}

	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Get("openlibrary", "a"); ok {
		t.Error("entry survived clear")
	}
	if _, ok := store.Get("googlebooks", "b"); ok {
		t.Error("entry survived clear")
	}
}
