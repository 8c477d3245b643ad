package pathtrace

import (
	"fmt"
	"sort"
	"time"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
)

// MaxHops bounds every uplink walk. Malformed or cyclic uplink data is truncated here.
const MaxHops = 10

// link is one physical segment between a device and its upstream neighbour.
type link struct {
	upPort   int // port index on the upstream device
	downPort int // port index on the downstream device
	speed    int
	wireless bool
	band     string
	label    string
}

// tracer carries the walk state for a single ComputePath call.
type tracer struct {
	topo   *domain.Topology
	server domain.ServerPosition
	path   *domain.NetworkPath

	// chain runs from the server's attachment device up to its root.
	chain []*domain.Device
	hops  []domain.Hop
	order int
}

// ComputePath builds the ordered hop list between the target and the measurement server.
// The result is always non-nil; problems are reported through IsValid and ErrorMessage.
func ComputePath(topo *domain.Topology, server domain.ServerPosition, target domain.TargetResolution) *domain.NetworkPath {
	query := target.Query
	if query == "" {
		query = target.Name()
	}

	if topo == nil || topo.Empty() {
		return domain.InvalidPath(query, "topology unavailable")
	}
	if !server.Attached() {
		return domain.InvalidPath(query, "measurement server position unknown")
	}

	src, ok := targetEndpoint(topo, target)
	if !ok {
		return domain.InvalidPath(query, "target resolution is empty")
	}

	t := &tracer{
		topo:   topo,
		server: server,
		chain:  serverChain(topo, server),
		path: &domain.NetworkPath{
			TargetHost:  query,
			Source:      src,
			Destination: serverEndpoint(topo, server),
			IsValid:     true,
			ComputedAt:  time.Now(),
		},
	}
	t.path.RequiresRouting = RequiresRouting(t.path.Source, t.path.Destination)
	if gw, ok := topo.Gateway(); ok {
		t.markGateway(gw)
	}

	if target.Kind == domain.TargetDevice {
		t.fromDevice(target.Device)
	} else {
		t.fromClient(target.Client)
	}
	t.appendServer()

	sort.SliceStable(t.hops, func(i, j int) bool { return t.hops[i].Order < t.hops[j].Order })
	t.path.Hops = t.hops
	return t.path
}

// serverChain follows uplinks from the server's attachment device, at most MaxHops deep.
func serverChain(topo *domain.Topology, server domain.ServerPosition) []*domain.Device {
	var chain []*domain.Device
	mac := server.SwitchMAC
	for i := 0; i < MaxHops && mac != ""; i++ {
		dev, ok := topo.Device(mac)
		if !ok {
			break
		}
		chain = append(chain, dev)
		if !dev.HasUplink() {
			break
		}
		mac = dev.Uplink.MAC
	}
	return chain
}

func (t *tracer) chainIndex(mac string) int {
	for i, d := range t.chain {
		if d.MAC == mac {
			return i
		}
	}
	return -1
}

func (t *tracer) fromDevice(d *domain.Device) {
	hop := deviceHop(d)

	if d.Role == domain.RoleGateway {
		t.markGateway(d)
		if t.path.RequiresRouting {
			t.routeVia(&hop, d)
		}
		t.exitGateway(hop, d)
		return
	}

	if idx := t.chainIndex(d.MAC); idx >= 0 && !t.path.RequiresRouting {
		t.descendFrom(hop, idx)
		return
	}

	if !d.HasUplink() {
		t.push(hop)
		return
	}

	out := uplinkOf(t.topo, d)
	// A mesh backhaul carries both directions at the reported PHY rate.
	if out.wireless {
		t.setIngress(&hop, d.MAC, 0, out)
	}
	t.setEgress(&hop, d.MAC, out.downPort, out)
	t.push(hop)
	t.walk(d.Uplink.MAC, out)
}

func (t *tracer) fromClient(c *domain.Client) {
	hop := domain.Hop{
		Type:       domain.HopClient,
		DeviceMAC:  c.MAC,
		DeviceName: c.DisplayName(),
		DeviceIP:   c.IP,
	}
	if !c.IsWired {
		hop.Type = domain.HopWirelessClient
	}

	attach := c.AttachedTo()
	in := clientLink(t.topo, c)
	t.setEgress(&hop, attach, in.upPort, in)
	t.push(hop)
	t.walk(attach, in)
}

// walk climbs uplinks from mac. in is the link the walk arrives on.
func (t *tracer) walk(mac string, in link) {
	routing := t.path.RequiresRouting

	for i := 0; i < MaxHops && mac != ""; i++ {
		dev, ok := t.topo.Device(mac)
		if !ok {
			return
		}

		hop := deviceHop(dev)
		t.setIngress(&hop, dev.MAC, in.upPort, in)

		if dev.Role == domain.RoleGateway {
			t.markGateway(dev)
			if routing {
				t.routeVia(&hop, dev)
			}
			t.exitGateway(hop, dev)
			return
		}

		// Same broadcast domain: turn around at the first shared ancestor,
		// which is the server's own switch when both hang off the same device.
		if idx := t.chainIndex(dev.MAC); idx >= 0 && !routing {
			t.descendFrom(hop, idx)
			return
		}

		if !dev.HasUplink() {
			t.push(hop)
			return
		}

		out := uplinkOf(t.topo, dev)
		t.setEgress(&hop, dev.MAC, out.downPort, out)
		t.push(hop)
		mac, in = dev.Uplink.MAC, out
	}
}

// exitGateway leaves the gateway towards the server. Devices already visited on
// the way up are traversed again: routed traffic crosses them once per direction.
func (t *tracer) exitGateway(hop domain.Hop, gw *domain.Device) {
	idx := t.chainIndex(gw.MAC)
	if idx < 0 {
		idx = len(t.chain)
	}
	t.descendFrom(hop, idx)
}

// descendFrom pushes hop, standing at chain position idx, then every chain device below it.
func (t *tracer) descendFrom(hop domain.Hop, idx int) {
	out := t.towardServer(idx)
	t.setEgress(&hop, hop.DeviceMAC, out.upPort, out)
	t.push(hop)

	for i := idx - 1; i >= 0; i-- {
		dev := t.chain[i]
		if dev.Role == domain.RoleGateway {
			continue
		}
		h := deviceHop(dev)
		in := t.towardServer(i + 1)
		t.setIngress(&h, dev.MAC, in.downPort, in)
		out := t.towardServer(i)
		t.setEgress(&h, dev.MAC, out.upPort, out)
		t.push(h)
	}
}

// towardServer returns the link leaving chain position idx in the direction of the server.
func (t *tracer) towardServer(idx int) link {
	if idx <= 0 {
		return serverLink(t.topo, t.server)
	}
	if idx > len(t.chain) {
		return link{}
	}
	return uplinkOf(t.topo, t.chain[idx-1])
}

func (t *tracer) routeVia(hop *domain.Hop, gw *domain.Device) {
	note := fmt.Sprintf("L3 routing %s -> %s", networkLabel(t.path.Source), networkLabel(t.path.Destination))
	if limit := RoutingCap(gw.Model); limit > 0 {
		hop.RoutingCapMbps = limit
		note += fmt.Sprintf(" (routing capacity ~%d Mbps)", limit)
	}
	hop.Notes = note
}

func (t *tracer) appendServer() {
	in := serverLink(t.topo, t.server)
	name := t.server.Hostname
	if name == "" {
		name = t.server.IP
	}
	hop := domain.Hop{
		Type:       domain.HopServer,
		DeviceMAC:  t.server.MAC,
		DeviceName: name,
		DeviceIP:   t.server.IP,
	}
	t.setIngress(&hop, t.server.SwitchMAC, in.upPort, in)
	t.push(hop)
}

func (t *tracer) markGateway(gw *domain.Device) {
	t.path.GatewayMAC = gw.MAC
	t.path.GatewayName = gw.DisplayName()
	t.path.GatewayModel = gw.Model
}

func (t *tracer) push(h domain.Hop) {
	h.Order = t.order
	t.order++
	t.hops = append(t.hops, h)
}

func (t *tracer) setIngress(h *domain.Hop, mac string, port int, l link) {
	h.IngressSpeedMbps = l.speed
	if l.wireless {
		h.IsWirelessIngress = true
		h.WirelessIngressBand = l.band
		h.IngressPortName = l.label
		return
	}
	h.IngressPort = port
	h.IngressPortName = t.portName(mac, port)
}

func (t *tracer) setEgress(h *domain.Hop, mac string, port int, l link) {
	h.EgressSpeedMbps = l.speed
	if l.wireless {
		h.IsWirelessEgress = true
		h.WirelessEgressBand = l.band
		h.EgressPortName = l.label
		return
	}
	h.EgressPort = port
	h.EgressPortName = t.portName(mac, port)
}

func (t *tracer) portName(mac string, port int) string {
	if port <= 0 {
		return ""
	}
	p, _ := t.topo.Port(mac, port)
	return p.Name
}

func deviceHop(d *domain.Device) domain.Hop {
	return domain.Hop{
		Type:        domain.HopTypeForRole(d.Role),
		DeviceMAC:   d.MAC,
		DeviceName:  d.DisplayName(),
		DeviceModel: d.Model,
		DeviceIP:    d.IP,
	}
}

// uplinkOf describes the link from d to its parent. A wireless uplink is a mesh backhaul.
func uplinkOf(topo *domain.Topology, d *domain.Device) link {
	if !d.HasUplink() {
		return link{}
	}
	up := d.Uplink
	if up.Medium == domain.UplinkWireless {
		return link{
			speed:    up.RateMbps,
			wireless: true,
			band:     up.RadioBand,
			label:    domain.PortLabelWirelessMesh,
		}
	}
	speed := topo.PortSpeed(up.MAC, up.Port)
	if speed == 0 && up.LocalPort > 0 {
		speed = topo.PortSpeed(d.MAC, up.LocalPort)
	}
	if speed == 0 {
		speed = up.SpeedMbps
	}
	return link{upPort: up.Port, downPort: up.LocalPort, speed: speed}
}

func clientLink(topo *domain.Topology, c *domain.Client) link {
	if !c.IsWired {
		return link{speed: c.TxRateMbps, wireless: true, band: c.RadioBand, label: domain.PortLabelWiFi}
	}
	return link{upPort: c.SwitchPort, speed: topo.PortSpeed(c.SwitchMAC, c.SwitchPort)}
}

func serverLink(topo *domain.Topology, s domain.ServerPosition) link {
	if s.IsWireless {
		return link{speed: s.TxRateMbps, wireless: true, band: s.RadioBand, label: domain.PortLabelWiFi}
	}
	return link{upPort: s.SwitchPort, speed: topo.PortSpeed(s.SwitchMAC, s.SwitchPort)}
}
