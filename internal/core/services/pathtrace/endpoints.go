package pathtrace

import (
	"fmt"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
)

func targetEndpoint(topo *domain.Topology, target domain.TargetResolution) (domain.Endpoint, bool) {
	var ep domain.Endpoint
	switch {
	case target.Kind == domain.TargetDevice && target.Device != nil:
		d := target.Device
		ep = domain.Endpoint{Name: d.DisplayName(), IP: d.IP, MAC: d.MAC}
	case target.Kind == domain.TargetClient && target.Client != nil:
		c := target.Client
		ep = domain.Endpoint{
			Name:        c.DisplayName(),
			IP:          c.IP,
			MAC:         c.MAC,
			VLAN:        c.VLAN,
			NetworkID:   c.NetworkID,
			NetworkName: c.NetworkName,
		}
	default:
		return domain.Endpoint{}, false
	}
	fillNetwork(topo, &ep)
	return ep, true
}

func serverEndpoint(topo *domain.Topology, s domain.ServerPosition) domain.Endpoint {
	ep := domain.Endpoint{
		Name:        s.Hostname,
		IP:          s.IP,
		MAC:         s.MAC,
		VLAN:        s.VLAN,
		NetworkID:   s.NetworkID,
		NetworkName: s.NetworkName,
	}
	fillNetwork(topo, &ep)
	return ep
}

func fillNetwork(topo *domain.Topology, ep *domain.Endpoint) {
	n, ok := topo.ResolveNetwork(ep.NetworkID, ep.IP)
	if !ok {
		return
	}
	if ep.NetworkID == "" {
		ep.NetworkID = n.ID
	}
	if ep.NetworkName == "" {
		ep.NetworkName = n.Name
	}
	if ep.VLAN == 0 {
		ep.VLAN = n.VLANTag()
	}
}

func networkLabel(ep domain.Endpoint) string {
	switch {
	case ep.NetworkName != "":
		return ep.NetworkName
	case ep.VLAN != 0:
		return fmt.Sprintf("VLAN %d", ep.VLAN)
	default:
		return ep.IP
	}
}
