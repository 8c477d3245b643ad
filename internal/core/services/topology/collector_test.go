package topology

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
)

func TestCollector_Snapshot(t *testing.T) {
	src := &fakeInventory{
		devices:  []domain.Device{{MAC: "AA:AA:AA:00:00:01", Role: domain.RoleGateway}},
		clients:  []domain.Client{{MAC: nasMAC, IP: "192.168.1.20"}},
		networks: []domain.Network{{ID: "lan", Subnet: "192.168.1.0/24", Enabled: true}},
	}

	topo, err := NewCollector(src, nil).Snapshot(context.Background())
	require.NoError(t, err)

	_, ok := topo.Device(gwMAC)
	assert.True(t, ok)
	assert.Len(t, topo.Clients(), 1)
	assert.Len(t, topo.Networks(), 1)
	assert.False(t, topo.FetchedAt.IsZero())
}

func TestCollector_SourceErrorIsDataUnavailable(t *testing.T) {
	boom := errors.New("connection refused")
	src := &fakeInventory{devicesErr: boom}

	_, err := NewCollector(src, nil).Snapshot(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "list devices")
}

func TestCollector_EmptyInventoryIsDataUnavailable(t *testing.T) {
	_, err := NewCollector(&fakeInventory{}, nil).Snapshot(context.Background())
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestCollector_Cancellation(t *testing.T) {
	src := &fakeInventory{devices: []domain.Device{{MAC: gwMAC}}, delay: time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := NewCollector(src, nil).Snapshot(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCachedSource_HitsAndInvalidate(t *testing.T) {
	src := &countingSource{}
	cs := NewCachedSource(src, time.Minute)

	first, err := cs.Snapshot(context.Background())
	require.NoError(t, err)
	second, err := cs.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), src.calls.Load())

	cs.Invalidate()
	_, err = cs.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestCachedSource_CoalescesConcurrentMisses(t *testing.T) {
	src := &countingSource{release: make(chan struct{})}
	cs := NewCachedSource(src, time.Minute)

	var wg sync.WaitGroup
	results := make([]*domain.Topology, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = cs.Snapshot(context.Background())
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestCachedSource_ErrorsAreNotCached(t *testing.T) {
	src := &countingSource{err: domain.ErrDataUnavailable}
	cs := NewCachedSource(src, time.Minute)

	_, err := cs.Snapshot(context.Background())
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	_, err = cs.Snapshot(context.Background())
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestCachedSource_ZeroTTLDisablesCaching(t *testing.T) {
	src := &countingSource{}
	cs := NewCachedSource(src, 0)

	_, _ = cs.Snapshot(context.Background())
	_, _ = cs.Snapshot(context.Background())
	assert.Equal(t, int32(2), src.calls.Load())
}
