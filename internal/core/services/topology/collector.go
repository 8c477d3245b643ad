package topology

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/lcalzada-xor/netpath/internal/core/ports"
	"github.com/lcalzada-xor/netpath/internal/telemetry"
)

// Collector assembles topology snapshots from an inventory source.
type Collector struct {
	source ports.InventorySource
	logger *slog.Logger
}

// NewCollector creates a collector. A nil logger falls back to slog.Default().
func NewCollector(source ports.InventorySource, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{source: source, logger: logger}
}

var _ ports.TopologySource = (*Collector)(nil)

// Snapshot fetches devices, clients and networks concurrently and freezes them
// into one topology. Any fetch error or an empty device list yields ErrDataUnavailable.
func (c *Collector) Snapshot(ctx context.Context) (*domain.Topology, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "topology.Snapshot")
	defer span.End()

	var (
		devices  []domain.Device
		clients  []domain.Client
		networks []domain.Network
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return timed("devices", func() (err error) {
			devices, err = c.source.ListDevices(gctx)
			return err
		})
	})
	g.Go(func() error {
		return timed("clients", func() (err error) {
			clients, err = c.source.ListClients(gctx)
			return err
		})
	})
	g.Go(func() error {
		return timed("networks", func() (err error) {
			networks, err = c.source.ListNetworks(gctx)
			return err
		})
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "inventory fetch failed")
		c.logger.Warn("Inventory fetch failed", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrDataUnavailable, err)
	}

	if len(devices) == 0 {
		err := errors.New("controller returned no devices")
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %w", domain.ErrDataUnavailable, err)
	}

	topo := domain.NewTopology(devices, clients, networks, time.Now())
	span.SetAttributes(
		attribute.Int("topology.devices", len(devices)),
		attribute.Int("topology.clients", len(clients)),
		attribute.Int("topology.networks", len(networks)),
	)
	c.logger.Debug("Topology snapshot built",
		"devices", len(devices), "clients", len(clients), "networks", len(networks))

	return topo, nil
}

func timed(collection string, fn func() error) error {
	start := time.Now()
	err := fn()
	telemetry.InventoryFetchDuration.WithLabelValues(collection).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("list %s: %w", collection, err)
	}
	return nil
}
