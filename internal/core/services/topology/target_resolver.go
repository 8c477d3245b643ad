package topology

import (
	"context"
	"fmt"
	"strings"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/lcalzada-xor/netpath/internal/core/ports"
)

// TargetResolver maps a user supplied host string onto a device or client.
type TargetResolver struct {
	dns ports.HostResolver
}

// NewTargetResolver creates a resolver. dns may be nil, which disables name lookups.
func NewTargetResolver(dns ports.HostResolver) *TargetResolver {
	return &TargetResolver{dns: dns}
}

// Resolve tries, in order: devices, clients, the gateway address heuristic and finally DNS.
func (r *TargetResolver) Resolve(ctx context.Context, topo *domain.Topology, query string) (domain.TargetResolution, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.TargetResolution{}, fmt.Errorf("%w: empty target", domain.ErrInvalidTarget)
	}
	if topo == nil || topo.Empty() {
		return domain.TargetResolution{}, fmt.Errorf("resolve %q: %w", query, domain.ErrDataUnavailable)
	}

	if res, ok := matchInventory(topo, query); ok {
		res.Query = query
		return res, nil
	}

	isIP := domain.IsIPv4(query)
	if isIP {
		if gw, ok := gatewayFallback(topo, query); ok {
			return domain.TargetResolution{Kind: domain.TargetDevice, Query: query, Device: gw}, nil
		}
		return domain.TargetResolution{}, &domain.ResolutionError{
			Subject: "target",
			Query:   query,
			Reason:  "no device or client holds this address",
		}
	}

	if r.dns == nil {
		return domain.TargetResolution{}, &domain.ResolutionError{
			Subject: "target",
			Query:   query,
			Reason:  "no device or client matched and name lookups are disabled",
		}
	}

	ip, err := r.dns.LookupIPv4(ctx, query)
	if err != nil {
		return domain.TargetResolution{}, &domain.ResolutionError{
			Subject: "target",
			Query:   query,
			Reason:  "no device or client matched and DNS failed: " + err.Error(),
		}
	}

	if res, ok := matchInventory(topo, ip); ok {
		res.Query = query
		res.ResolvedIP = ip
		return res, nil
	}

	return domain.TargetResolution{}, &domain.ResolutionError{
		Subject: "target",
		Query:   query,
		Reason:  fmt.Sprintf("resolved to %s, which is not in the inventory", ip),
	}
}

func matchInventory(topo *domain.Topology, q string) (domain.TargetResolution, bool) {
	if d, ok := matchDevice(topo, q); ok {
		return domain.TargetResolution{Kind: domain.TargetDevice, Device: d}, true
	}
	if c, ok := matchClient(topo, q); ok {
		return domain.TargetResolution{Kind: domain.TargetClient, Client: c}, true
	}
	return domain.TargetResolution{}, false
}

func matchDevice(topo *domain.Topology, q string) (*domain.Device, bool) {
	if domain.IsValidMAC(q) {
		return topo.Device(q)
	}
	for _, d := range topo.Devices() {
		if d.IP == q || d.Name == q {
			return topo.Device(d.MAC)
		}
	}
	return nil, false
}

func matchClient(topo *domain.Topology, q string) (*domain.Client, bool) {
	if domain.IsValidMAC(q) {
		return topo.Client(q)
	}
	for _, c := range topo.Clients() {
		switch {
		case c.IP == q,
			c.Name == q,
			c.Hostname == q:
			return topo.Client(c.MAC)
		}
	}
	return nil, false
}

// gatewayFallback treats an unknown x.y.z.1 address as a secondary LAN-facing
// address of a multi-homed gateway. Only applies when exactly one gateway is known.
// A non-gateway device can legitimately own such an address, so keep this isolated.
func gatewayFallback(topo *domain.Topology, ip string) (*domain.Device, bool) {
	if !domain.IsIPv4(ip) || !strings.HasSuffix(ip, ".1") {
		return nil, false
	}
	return topo.Gateway()
}
