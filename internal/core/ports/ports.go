package ports

import (
	"context"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
)

// InventorySource is the controller collaborator: three independent read operations
// returning flat records.
type InventorySource interface {
	ListDevices(ctx context.Context) ([]domain.Device, error)
	ListClients(ctx context.Context) ([]domain.Client, error)
	ListNetworks(ctx context.Context) ([]domain.Network, error)
}

// TopologySource hands out immutable topology snapshots.
type TopologySource interface {
	Snapshot(ctx context.Context) (*domain.Topology, error)
}

// HostResolver resolves a host name to an IPv4 address.
type HostResolver interface {
	LookupIPv4(ctx context.Context, host string) (string, error)
}

// AddressProvider lists the measurement server's own IPv4 addresses.
type AddressProvider interface {
	LocalIPv4() ([]string, error)
}

// AnalysisPublisher is notified about every new analysis (e.g. live websocket feed).
type AnalysisPublisher interface {
	PublishAnalysis(record domain.AnalysisRecord)
}

// PathService is the application-facing API consumed by the web and CLI adapters.
type PathService interface {
	ServerPosition(ctx context.Context) (domain.ServerPosition, error)
	Topology(ctx context.Context) (*domain.Topology, error)
	ComputePath(ctx context.Context, target string) *domain.NetworkPath
	Analyze(ctx context.Context, req domain.AnalyzeRequest) (domain.AnalysisRecord, error)
	History(ctx context.Context, target string, limit int) ([]domain.AnalysisRecord, error)
	Get(ctx context.Context, id string) (domain.AnalysisRecord, error)
}
