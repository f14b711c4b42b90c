// file: internal/metrics/metrics.go
// version: 2.0.0
// guid: 9f8e7d6c-5b4a-3210-9fed-cba876543210

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	setsScanned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "audiobook_renamer",
		Name:      "sets_scanned_total",
		Help:      "Total number of audiobook sets discovered by scans",
	})
	tracksScanned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "audiobook_renamer",
		Name:      "tracks_scanned_total",
		Help:      "Total number of audio files probed by scans",
	})
	providerLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "audiobook_renamer",
		Name:      "provider_lookups_total",
		Help:      "Total provider lookups by provider and outcome",
	}, []string{"provider", "outcome"})
	providerDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "audiobook_renamer",
		Name:      "provider_lookup_duration_seconds",
		Help:      "Histogram of provider lookup durations by provider",
		Buckets:   prometheus.ExponentialBuckets(0.05, 1.6, 10), // ~50ms up to several seconds
	}, []string{"provider"})
	cacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "audiobook_renamer",
		Name:      "cache_requests_total",
		Help:      "Provider cache requests by result (hit/miss)",
	}, []string{"result"})
	renamesApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "audiobook_renamer",
		Name:      "renames_total",
		Help:      "Rename operations by outcome (applied/rolled_back/undone)",
	}, []string{"outcome"})
	matchConfidence = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "audiobook_renamer",
		Name:      "match_confidence",
		Help:      "Distribution of best-candidate confidence scores",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(setsScanned, tracksScanned, providerLookups,
			providerDuration, cacheHits, renamesApplied, matchConfidence)
	})
}

func AddSetsScanned(n int)   { setsScanned.Add(float64(n)) }
func AddTracksScanned(n int) { tracksScanned.Add(float64(n)) }

func IncProviderLookup(provider, outcome string) {
	providerLookups.WithLabelValues(provider, outcome).Inc()
}
func ObserveProviderDuration(provider string, d time.Duration) {
	providerDuration.WithLabelValues(provider).Observe(d.Seconds())
}

func IncCacheHit()  { cacheHits.WithLabelValues("hit").Inc() }
func IncCacheMiss() { cacheHits.WithLabelValues("miss").Inc() }

func IncRename(outcome string)          { renamesApplied.WithLabelValues(outcome).Inc() }
func ObserveMatchConfidence(c float64)  { matchConfidence.Observe(c) }
