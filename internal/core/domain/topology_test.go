package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func sampleTopology() *Topology {
	devices := []Device{
		{MAC: "AA:AA:AA:00:00:01", Name: "Gateway", Role: RoleGateway, IP: "192.168.1.1",
			Ports: []PortInfo{{Index: 1, SpeedMbps: 1000}, {Index: 4, SpeedMbps: 2500}}},
		{MAC: "aa-aa-aa-00-00-02", Name: "Core Switch", Role: RoleSwitch, IP: "192.168.1.2",
			Uplink: &Uplink{MAC: "aa:aa:aa:00:00:01", Port: 4, Medium: UplinkWired},
			Ports:  []PortInfo{{Index: 8, SpeedMbps: 1000, Name: "NAS"}}},
	}
	clients := []Client{
		{MAC: "CC:CC:CC:00:00:01", Hostname: "nas", IP: "192.168.1.50", IsWired: true,
			SwitchMAC: "AA:AA:AA:00:00:02", SwitchPort: 8, NetworkID: "lan"},
	}
	networks := []Network{
		{ID: "lan", Name: "Default", Subnet: "192.168.1.1/24", Enabled: true},
		{ID: "iot", Name: "IoT", VLAN: intPtr(20), Subnet: "192.168.20.0/24", Enabled: true},
		{ID: "off", Name: "Disabled", Subnet: "10.0.0.0/8", Enabled: false},
	}
	return NewTopology(devices, clients, networks, time.Now())
}

func TestTopology_LookupsNormalizeMAC(t *testing.T) {
	topo := sampleTopology()

	sw, ok := topo.Device("AA:AA:AA:00:00:02")
	require.True(t, ok)
	assert.Equal(t, "aa:aa:aa:00:00:02", sw.MAC)
	assert.Equal(t, "aa:aa:aa:00:00:01", sw.Uplink.MAC)

	c, ok := topo.Client("cc-cc-cc-00-00-01")
	require.True(t, ok)
	assert.Equal(t, "aa:aa:aa:00:00:02", c.SwitchMAC)
	assert.Equal(t, "aa:aa:aa:00:00:02", c.AttachedTo())

	_, ok = topo.Device("00:00:00:00:00:00")
	assert.False(t, ok)
}

func TestTopology_ChildrenAndGateway(t *testing.T) {
	topo := sampleTopology()

	assert.Equal(t, []string{"aa:aa:aa:00:00:02"}, topo.Children("AA:AA:AA:00:00:01"))
	assert.Empty(t, topo.Children("aa:aa:aa:00:00:02"))

	gw, ok := topo.Gateway()
	require.True(t, ok)
	assert.Equal(t, "Gateway", gw.Name)
}

func TestTopology_PortSpeed(t *testing.T) {
	topo := sampleTopology()

	assert.Equal(t, 2500, topo.PortSpeed("aa:aa:aa:00:00:01", 4))
	assert.Equal(t, 1000, topo.PortSpeed("aa:aa:aa:00:00:02", 8))
	assert.Equal(t, 0, topo.PortSpeed("aa:aa:aa:00:00:02", 9))
	assert.Equal(t, 0, topo.PortSpeed("ff:ff:ff:ff:ff:ff", 1))

	p, ok := topo.Port("aa:aa:aa:00:00:02", 8)
	require.True(t, ok)
	assert.Equal(t, "NAS", p.Name)
}

func TestTopology_Networks(t *testing.T) {
	topo := sampleTopology()

	n, ok := topo.NetworkForIP("192.168.20.14")
	require.True(t, ok)
	assert.Equal(t, "IoT", n.Name)
	assert.Equal(t, 20, n.VLANTag())

	n, ok = topo.NetworkForIP("192.168.1.77")
	require.True(t, ok)
	assert.Equal(t, 0, n.VLANTag())

	_, ok = topo.NetworkForIP("10.1.2.3")
	assert.False(t, ok, "disabled networks are ignored")

	_, ok = topo.Network("")
	assert.False(t, ok)
}

func TestTopology_IsImmutableFromInputs(t *testing.T) {
	devices := []Device{{MAC: "aa:aa:aa:00:00:01", Name: "gw", Role: RoleGateway}}
	topo := NewTopology(devices, nil, nil, time.Now())

	devices[0].Name = "changed"
	d, ok := topo.Device("aa:aa:aa:00:00:01")
	require.True(t, ok)
	assert.Equal(t, "gw", d.Name)

	copied := topo.Devices()
	copied[0].Name = "also changed"
	d, _ = topo.Device("aa:aa:aa:00:00:01")
	assert.Equal(t, "gw", d.Name)
}

func TestTopology_ResolveNetwork(t *testing.T) {
	topo := sampleTopology()

	n, ok := topo.ResolveNetwork("iot", "192.168.1.9")
	require.True(t, ok)
	assert.Equal(t, "IoT", n.Name, "id wins over address")

	n, ok = topo.ResolveNetwork("unknown", "192.168.20.9")
	require.True(t, ok)
	assert.Equal(t, "IoT", n.Name)

	_, ok = topo.ResolveNetwork("", "172.16.0.1")
	assert.False(t, ok)
}
