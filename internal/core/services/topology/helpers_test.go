package topology

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
)

const (
	gwMAC  = "aa:aa:aa:00:00:01"
	swMAC  = "aa:aa:aa:00:00:02"
	apMAC  = "aa:aa:aa:00:00:03"
	srvMAC = "cc:cc:cc:00:00:01"
	nasMAC = "cc:cc:cc:00:00:02"
	phMAC  = "cc:cc:cc:00:00:03"
)

func vlan(v int) *int { return &v }

func homeTopology() *domain.Topology {
	devices := []domain.Device{
		{MAC: gwMAC, Name: "Dream Machine", Model: "UDMPRO", Role: domain.RoleGateway, IP: "192.168.1.254",
			Ports: []domain.PortInfo{{Index: 9, SpeedMbps: 10000}}},
		{MAC: swMAC, Name: "Office Switch", Model: "USW-24", Role: domain.RoleSwitch, IP: "192.168.1.2",
			Uplink: &domain.Uplink{MAC: gwMAC, Port: 9, LocalPort: 25, Medium: domain.UplinkWired},
			Ports:  []domain.PortInfo{{Index: 3, SpeedMbps: 1000}, {Index: 5, SpeedMbps: 2500}}},
		{MAC: apMAC, Name: "Hallway AP", Model: "U6-Pro", Role: domain.RoleAccessPoint, IP: "192.168.1.3",
			Uplink: &domain.Uplink{MAC: swMAC, Port: 7, Medium: domain.UplinkWired}},
	}
	clients := []domain.Client{
		{MAC: srvMAC, Hostname: "speedtest", IP: "192.168.1.10", IsWired: true,
			SwitchMAC: swMAC, SwitchPort: 5, NetworkID: "lan"},
		{MAC: nasMAC, Name: "NAS", Hostname: "diskstation", IP: "192.168.1.20", IsWired: true,
			SwitchMAC: swMAC, SwitchPort: 3, NetworkID: "lan", NetworkName: "Default"},
		{MAC: phMAC, Hostname: "phone", IP: "192.168.20.31", APMAC: apMAC,
			TxRateMbps: 866, RadioBand: "5 GHz", NetworkID: "iot", VLAN: 20},
	}
	networks := []domain.Network{
		{ID: "lan", Name: "Default", Subnet: "192.168.1.0/24", Enabled: true},
		{ID: "iot", Name: "IoT", VLAN: vlan(20), Subnet: "192.168.20.0/24", Enabled: true},
	}
	return domain.NewTopology(devices, clients, networks, time.Now())
}

type fakeInventory struct {
	devices  []domain.Device
	clients  []domain.Client
	networks []domain.Network

	devicesErr error
	delay      time.Duration
}

func (f *fakeInventory) ListDevices(ctx context.Context) ([]domain.Device, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.devices, f.devicesErr
}

func (f *fakeInventory) ListClients(ctx context.Context) ([]domain.Client, error) {
	return f.clients, nil
}

func (f *fakeInventory) ListNetworks(ctx context.Context) ([]domain.Network, error) {
	return f.networks, nil
}

type countingSource struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (s *countingSource) Snapshot(ctx context.Context) (*domain.Topology, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	return homeTopology(), nil
}

type fakeDNS map[string]string

func (f fakeDNS) LookupIPv4(ctx context.Context, host string) (string, error) {
	if ip, ok := f[host]; ok {
		return ip, nil
	}
	return "", errors.New("no such host")
}
