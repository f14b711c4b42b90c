// file: internal/provider/manager.go
// version: 1.3.0
// guid: 6f7a8b9c-0d1e-4f2a-3b4c-5d6e7f8a9b0c

package provider

import (
	"context"
	"log"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/jdfalk/audiobook-renamer/internal/cache"
	"github.com/jdfalk/audiobook-renamer/internal/matcher"
	"github.com/jdfalk/audiobook-renamer/internal/metrics"
	"github.com/jdfalk/audiobook-renamer/internal/models"
)

// defaultRate is one request per second per provider; the local provider
// is exempt.
const defaultRate = rate.Limit(1)

// Manager fans a query out to providers in priority order. Responses are
// cached, requests are rate limited per provider, and a provider failure
// never aborts the batch; remaining providers still run.
type Manager struct {
	providers []Provider
	store     *cache.Store
	limiters  map[string]*rate.Limiter
}

// NewManager creates a manager over providers in priority order. The cache
// store may be nil to disable caching.
func NewManager(store *cache.Store, providers ...Provider) *Manager {
	m := &Manager{
		providers: providers,
		store:     store,
		limiters:  make(map[string]*rate.Limiter),
	}
	for _, p := range providers {
		if p.Name() == "local" || p.Name() == "sidecar" {
			continue
		}
		m.limiters[p.Name()] = rate.NewLimiter(defaultRate, 1)
	}
	return m
}

// Providers returns the configured providers in priority order.
func (m *Manager) Providers() []Provider {
	return m.providers
}

// FindMatches resolves candidates for a set and stores them on it, ranked
// by confidence. A sidecar file in the source directory wins outright. The
// provider walk stops early once a high-confidence candidate exists.
func (m *Manager) FindMatches(ctx context.Context, set *models.AudiobookSet) error {
	if identity, err := ReadSidecar(set.SourcePath); err != nil {
		set.AddWarning("sidecar ignored: %v", err)
	} else if identity != nil {
		set.ChosenIdentity = identity
		set.Candidates = []models.MatchCandidate{
			models.NewMatchCandidate(*identity, 1.0, []string{"Sidecar metadata"}),
		}
		return nil
	}

	q := FromSet(set)
	if q.Empty() {
		return nil
	}

	var all []models.MatchCandidate
	for _, p := range m.providers {
		if err := ctx.Err(); err != nil {
			return err
		}

		identities, err := m.search(ctx, p, q)
		if err != nil {
			log.Printf("[DEBUG] provider %s failed for %q: %v", p.Name(), q.Title, err)
			continue
		}
		if len(identities) == 0 {
			continue
		}

		all = append(all, matcher.Rank(set, identities, p.Weights())...)

		if best := bestConfidence(all); best > 0.85 {
			break
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Confidence > all[j].Confidence
	})
	set.Candidates = all
	if len(all) > 0 {
		metrics.ObserveMatchConfidence(all[0].Confidence)
	}

	if len(all) > 0 && all[0].Level == models.ConfidenceHigh {
		identity := all[0].Identity
		set.ChosenIdentity = &identity
	}
	return nil
}

// search runs one provider query through the cache and rate limiter.
func (m *Manager) search(ctx context.Context, p Provider, q Query) ([]models.ProviderIdentity, error) {
	key := q.CacheKey()
	if m.store != nil {
		if identities, ok := m.store.Get(p.Name(), key); ok {
			metrics.IncCacheHit()
			return identities, nil
		}
		metrics.IncCacheMiss()
	}

	if limiter, ok := m.limiters[p.Name()]; ok {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	identities, err := p.Search(ctx, q)
	metrics.ObserveProviderDuration(p.Name(), time.Since(start))
	if err != nil {
		metrics.IncProviderLookup(p.Name(), "error")
		return nil, err
	}
	if len(identities) == 0 {
		metrics.IncProviderLookup(p.Name(), "empty")
	} else {
		metrics.IncProviderLookup(p.Name(), "found")
	}
	log.Printf("[DEBUG] provider %s returned %d results in %v", p.Name(), len(identities), time.Since(start))

	if m.store != nil {
		if err := m.store.Put(p.Name(), key, identities); err != nil {
			log.Printf("[DEBUG] cache write failed for %s: %v", p.Name(), err)
		}
	}
	return identities, nil
}

func bestConfidence(candidates []models.MatchCandidate) float64 {
	best := 0.0
	for _, c := range candidates {
		if c.Confidence > best {
			best = c.Confidence
		}
	}
	return best
}
