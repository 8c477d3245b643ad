package domain

import "time"

// Topology is an immutable snapshot of devices, clients and networks with a
// MAC-keyed uplink index. Values returned by its lookups must be treated as read-only.
type Topology struct {
	FetchedAt time.Time

	devices  []Device
	clients  []Client
	networks []Network

	deviceIdx map[string]int
	clientIdx map[string]int
	children  map[string][]string
	ports     map[string]map[int]PortInfo
}

// NewTopology builds a snapshot. MACs are normalized; the inputs are copied.
func NewTopology(devices []Device, clients []Client, networks []Network, fetchedAt time.Time) *Topology {
	t := &Topology{
		FetchedAt: fetchedAt,
		devices:   make([]Device, len(devices)),
		clients:   make([]Client, len(clients)),
		networks:  append([]Network(nil), networks...),
		deviceIdx: make(map[string]int, len(devices)),
		clientIdx: make(map[string]int, len(clients)),
		children:  make(map[string][]string),
		ports:     make(map[string]map[int]PortInfo, len(devices)),
	}

	for i, d := range devices {
		d.MAC = NormalizeMAC(d.MAC)
		if d.Uplink != nil {
			up := *d.Uplink
			up.MAC = NormalizeMAC(up.MAC)
			d.Uplink = &up
		}
		d.Ports = append([]PortInfo(nil), d.Ports...)
		t.devices[i] = d
		t.deviceIdx[d.MAC] = i

		table := make(map[int]PortInfo, len(d.Ports))
		for _, p := range d.Ports {
			table[p.Index] = p
		}
		t.ports[d.MAC] = table
	}

	for _, d := range t.devices {
		if d.HasUplink() {
			t.children[d.Uplink.MAC] = append(t.children[d.Uplink.MAC], d.MAC)
		}
	}

	for i, c := range clients {
		c.MAC = NormalizeMAC(c.MAC)
		c.SwitchMAC = NormalizeMAC(c.SwitchMAC)
		c.APMAC = NormalizeMAC(c.APMAC)
		t.clients[i] = c
		t.clientIdx[c.MAC] = i
	}

	return t
}

// Devices returns a copy of the device list.
func (t *Topology) Devices() []Device {
	return append([]Device(nil), t.devices...)
}

// Clients returns a copy of the client list.
func (t *Topology) Clients() []Client {
	return append([]Client(nil), t.clients...)
}

// Networks returns a copy of the network list.
func (t *Topology) Networks() []Network {
	return append([]Network(nil), t.networks...)
}

// Device looks up a device by MAC.
func (t *Topology) Device(mac string) (*Device, bool) {
	i, ok := t.deviceIdx[NormalizeMAC(mac)]
	if !ok {
		return nil, false
	}
	return &t.devices[i], true
}

// Client looks up a client by MAC.
func (t *Topology) Client(mac string) (*Client, bool) {
	i, ok := t.clientIdx[NormalizeMAC(mac)]
	if !ok {
		return nil, false
	}
	return &t.clients[i], true
}

// Children returns the MACs of devices whose uplink points at mac.
func (t *Topology) Children(mac string) []string {
	return append([]string(nil), t.children[NormalizeMAC(mac)]...)
}

// Gateways returns every device with the gateway role.
func (t *Topology) Gateways() []*Device {
	var gws []*Device
	for i := range t.devices {
		if t.devices[i].Role == RoleGateway {
			gws = append(gws, &t.devices[i])
		}
	}
	return gws
}

// Gateway returns the gateway when exactly one is known.
func (t *Topology) Gateway() (*Device, bool) {
	gws := t.Gateways()
	if len(gws) != 1 {
		return nil, false
	}
	return gws[0], true
}

// Port returns the port table entry for a device port.
func (t *Topology) Port(mac string, port int) (PortInfo, bool) {
	p, ok := t.ports[NormalizeMAC(mac)][port]
	return p, ok
}

// PortSpeed returns the negotiated speed of a device port, 0 when unknown.
func (t *Topology) PortSpeed(mac string, port int) int {
	p, _ := t.Port(mac, port)
	return p.SpeedMbps
}

// Network looks up a network by id.
func (t *Topology) Network(id string) (*Network, bool) {
	if id == "" {
		return nil, false
	}
	for i := range t.networks {
		if t.networks[i].ID == id {
			return &t.networks[i], true
		}
	}
	return nil, false
}

// NetworkForIP returns the first enabled network whose subnet contains ip.
func (t *Topology) NetworkForIP(ip string) (*Network, bool) {
	for i := range t.networks {
		n := &t.networks[i]
		if n.Enabled && n.Contains(ip) {
			return n, true
		}
	}
	return nil, false
}

// Empty reports whether the snapshot carries no devices at all.
func (t *Topology) Empty() bool {
	return len(t.devices) == 0
}

// ResolveNetwork finds the network for an endpoint, by id first and then by address.
func (t *Topology) ResolveNetwork(networkID, ip string) (*Network, bool) {
	if n, ok := t.Network(networkID); ok {
		return n, true
	}
	return t.NetworkForIP(ip)
}
