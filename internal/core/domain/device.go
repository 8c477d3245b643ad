package domain

import (
	"net/netip"
	"strings"
)

// DeviceRole classifies an infrastructure device by the function it plays in the topology.
type DeviceRole string

const (
	RoleGateway     DeviceRole = "gateway"
	RoleSwitch      DeviceRole = "switch"
	RoleAccessPoint DeviceRole = "access_point"
	RoleUnknown     DeviceRole = "unknown"
)

// UplinkMedium describes how a device reaches its parent.
type UplinkMedium string

const (
	UplinkWired    UplinkMedium = "wire"
	UplinkWireless UplinkMedium = "wireless"
)

// PortInfo is one entry of a device's port table.
type PortInfo struct {
	Index     int    `json:"index" yaml:"index"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	SpeedMbps int    `json:"speed_mbps" yaml:"speed_mbps"`
	Up        bool   `json:"up" yaml:"up"`
}

// Uplink is the link by which a non-root device reaches its parent.
type Uplink struct {
	MAC       string       `json:"mac" yaml:"mac"`
	Port      int          `json:"port" yaml:"port"`                                 // port index on the parent
	LocalPort int          `json:"local_port,omitempty" yaml:"local_port,omitempty"` // port index on this device
	Medium    UplinkMedium `json:"medium" yaml:"medium"`
	RateMbps  int          `json:"rate_mbps,omitempty" yaml:"rate_mbps,omitempty"` // PHY rate, wireless only
	RadioBand string       `json:"radio_band,omitempty" yaml:"radio_band,omitempty"`
	// SpeedMbps is the negotiated wired speed as the device itself reports it.
	SpeedMbps int `json:"speed_mbps,omitempty" yaml:"speed_mbps,omitempty"`
}

// Device is an infrastructure device reported by the controller.
type Device struct {
	MAC   string     `json:"mac" yaml:"mac"`
	Name  string     `json:"name" yaml:"name"`
	Model string     `json:"model" yaml:"model"`
	Type  string     `json:"type,omitempty" yaml:"type,omitempty"` // controller type code, e.g. "usw"
	Role  DeviceRole `json:"role" yaml:"role"`
	IP    string     `json:"ip" yaml:"ip"`

	// ServesWiFi marks gateways that also act as (mesh) access points.
	ServesWiFi bool `json:"serves_wifi,omitempty" yaml:"serves_wifi,omitempty"`

	Uplink *Uplink    `json:"uplink,omitempty" yaml:"uplink,omitempty"`
	Ports  []PortInfo `json:"ports,omitempty" yaml:"ports,omitempty"`
}

// HasUplink reports whether the device declares a parent.
func (d Device) HasUplink() bool {
	return d.Uplink != nil && d.Uplink.MAC != ""
}

// IsWirelessUplink reports whether the device reaches its parent over Wi-Fi (mesh).
func (d Device) IsWirelessUplink() bool {
	return d.HasUplink() && d.Uplink.Medium == UplinkWireless
}

// DisplayName returns the name, falling back to the MAC.
func (d Device) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.MAC
}

// Client is an end host attached to a switch port or an access point. Clients are always leaves.
type Client struct {
	MAC      string `json:"mac" yaml:"mac"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Hostname string `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	IP       string `json:"ip" yaml:"ip"`
	IsWired  bool   `json:"is_wired" yaml:"is_wired"`

	SwitchMAC  string `json:"switch_mac,omitempty" yaml:"switch_mac,omitempty"`
	SwitchPort int    `json:"switch_port,omitempty" yaml:"switch_port,omitempty"`
	APMAC      string `json:"ap_mac,omitempty" yaml:"ap_mac,omitempty"`

	NetworkID   string `json:"network_id,omitempty" yaml:"network_id,omitempty"`
	NetworkName string `json:"network_name,omitempty" yaml:"network_name,omitempty"`
	VLAN        int    `json:"vlan,omitempty" yaml:"vlan,omitempty"`

	TxRateMbps int    `json:"tx_rate_mbps,omitempty" yaml:"tx_rate_mbps,omitempty"`
	RadioBand  string `json:"radio_band,omitempty" yaml:"radio_band,omitempty"`
}

// AttachedTo returns the MAC of the device the client hangs off.
func (c Client) AttachedTo() string {
	if c.IsWired {
		return c.SwitchMAC
	}
	return c.APMAC
}

// DisplayName prefers the alias, then hostname, then MAC.
func (c Client) DisplayName() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.Hostname != "":
		return c.Hostname
	default:
		return c.MAC
	}
}

// Network is a VLAN / network configuration.
type Network struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	VLAN    *int   `json:"vlan,omitempty" yaml:"vlan,omitempty"`
	Subnet  string `json:"subnet" yaml:"subnet"` // CIDR, gateway address form allowed (192.168.1.1/24)
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// VLANTag returns the tag, or 0 for the untagged/default network.
func (n Network) VLANTag() int {
	if n.VLAN == nil {
		return 0
	}
	return *n.VLAN
}

// Contains reports whether ip falls inside the network's subnet.
func (n Network) Contains(ip string) bool {
	prefix, err := netip.ParsePrefix(strings.TrimSpace(n.Subnet))
	if err != nil {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	return prefix.Masked().Contains(addr)
}
