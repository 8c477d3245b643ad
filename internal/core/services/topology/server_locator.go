package topology

import (
	"fmt"
	"strings"
	"time"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
)

// ResolveServerPosition finds the client entry holding one of the server's own
// addresses and reports the device and port it is plugged into.
func ResolveServerPosition(topo *domain.Topology, localIPs []string) (domain.ServerPosition, error) {
	if topo == nil || topo.Empty() {
		return domain.ServerPosition{}, fmt.Errorf("locate server: %w", domain.ErrDataUnavailable)
	}

	addrs := make(map[string]struct{}, len(localIPs))
	for _, ip := range localIPs {
		ip = strings.TrimSpace(ip)
		if domain.IsIPv4(ip) {
			addrs[ip] = struct{}{}
		}
	}
	if len(addrs) == 0 {
		return domain.ServerPosition{}, &domain.ResolutionError{
			Subject: "server",
			Reason:  "no local IPv4 addresses",
		}
	}

	for _, c := range topo.Clients() {
		if _, ok := addrs[c.IP]; !ok {
			continue
		}
		return positionFor(topo, c), nil
	}

	return domain.ServerPosition{}, &domain.ResolutionError{
		Subject: "server",
		Query:   strings.Join(localIPs, ","),
		Reason:  "no client entry carries a local address",
	}
}

func positionFor(topo *domain.Topology, c domain.Client) domain.ServerPosition {
	pos := domain.ServerPosition{
		IP:          c.IP,
		MAC:         c.MAC,
		Hostname:    c.DisplayName(),
		SwitchMAC:   c.AttachedTo(),
		IsWireless:  !c.IsWired,
		NetworkID:   c.NetworkID,
		NetworkName: c.NetworkName,
		VLAN:        c.VLAN,
		ResolvedAt:  time.Now(),
	}
	if c.IsWired {
		pos.SwitchPort = c.SwitchPort
	} else {
		pos.TxRateMbps = c.TxRateMbps
		pos.RadioBand = c.RadioBand
	}

	if dev, ok := topo.Device(pos.SwitchMAC); ok {
		pos.DeviceName = dev.DisplayName()
		pos.DeviceModel = dev.Model
	}

	if n, ok := topo.ResolveNetwork(c.NetworkID, c.IP); ok {
		if pos.NetworkName == "" {
			pos.NetworkName = n.Name
		}
		if pos.NetworkID == "" {
			pos.NetworkID = n.ID
		}
		if pos.VLAN == 0 {
			pos.VLAN = n.VLANTag()
		}
	}
	return pos
}
