package grading

import (
	"strings"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
)

func pathOf(hops ...domain.Hop) *domain.NetworkPath {
	for i := range hops {
		hops[i].Order = i
	}
	return &domain.NetworkPath{TargetHost: "target", IsValid: true, Hops: hops}
}

func hop(t domain.HopType, name string, in, out int) domain.Hop {
	h := domain.Hop{Type: t, DeviceName: name, IngressSpeedMbps: in, EgressSpeedMbps: out}
	if in > 0 {
		h.IngressPort = 1
	}
	if out > 0 {
		h.EgressPort = 2
	}
	return h
}

func wifiOut(h domain.Hop, label string) domain.Hop {
	h.IsWirelessEgress = true
	h.EgressPort = 0
	h.EgressPortName = label
	return h
}

func wifiIn(h domain.Hop, label string) domain.Hop {
	h.IsWirelessIngress = true
	h.IngressPort = 0
	h.IngressPortName = label
	return h
}

// wiredPath is Client -> Switch -> Server with the given link speeds.
func wiredPath(clientLink, serverLink int) *domain.NetworkPath {
	return pathOf(
		hop(domain.HopClient, "desk", 0, clientLink),
		hop(domain.HopSwitch, "Switch", clientLink, serverLink),
		hop(domain.HopServer, "speedtest", serverLink, 0),
	)
}

// wirelessClientPath is WirelessClient ~> AP -> Switch -> Server.
func wirelessClientPath(phy, wired int) *domain.NetworkPath {
	return pathOf(
		wifiOut(hop(domain.HopWirelessClient, "phone", 0, phy), domain.PortLabelWiFi),
		wifiIn(hop(domain.HopAccessPoint, "AP", phy, wired), domain.PortLabelWiFi),
		hop(domain.HopSwitch, "Switch", wired, wired),
		hop(domain.HopServer, "speedtest", wired, 0),
	)
}

func containsText(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
