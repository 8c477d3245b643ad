package topology

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lcalzada-xor/netpath/internal/adapters/cache"
	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/lcalzada-xor/netpath/internal/core/ports"
	"github.com/lcalzada-xor/netpath/internal/telemetry"
)

const snapshotKey = "snapshot"

// CachedSource serves snapshots from a TTL cache. Concurrent misses share one fetch.
type CachedSource struct {
	source ports.TopologySource
	ttl    time.Duration
	cache  *cache.TTLCache[*domain.Topology]
	group  singleflight.Group
}

// NewCachedSource wraps source. A ttl of zero or less disables caching.
func NewCachedSource(source ports.TopologySource, ttl time.Duration) *CachedSource {
	return &CachedSource{
		source: source,
		ttl:    ttl,
		cache:  cache.NewTTLCache[*domain.Topology](1),
	}
}

var _ ports.TopologySource = (*CachedSource)(nil)

// Snapshot returns the cached topology or fetches a fresh one.
// On a miss the fetch runs with the context of the first caller.
func (s *CachedSource) Snapshot(ctx context.Context) (*domain.Topology, error) {
	if topo, ok := s.cache.Get(snapshotKey); ok {
		telemetry.CacheLookups.WithLabelValues("snapshot", "hit").Inc()
		return topo, nil
	}
	telemetry.CacheLookups.WithLabelValues("snapshot", "miss").Inc()

	v, err, _ := s.group.Do(snapshotKey, func() (interface{}, error) {
		if topo, ok := s.cache.Get(snapshotKey); ok {
			return topo, nil
		}
		topo, err := s.source.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		if s.ttl > 0 {
			s.cache.Set(snapshotKey, topo, s.ttl)
		}
		return topo, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Topology), nil
}

// Invalidate drops the cached snapshot.
func (s *CachedSource) Invalidate() {
	s.cache.Delete(snapshotKey)
}
