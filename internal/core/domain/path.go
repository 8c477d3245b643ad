package domain

import "time"

// HopType defines the nature of a node on a network path.
type HopType string

const (
	HopClient         HopType = "client"
	HopWirelessClient HopType = "wireless_client"
	HopSwitch         HopType = "switch"
	HopAccessPoint    HopType = "access_point"
	HopGateway        HopType = "gateway"
	HopServer         HopType = "server"
	HopVPN            HopType = "vpn"
	HopWAN            HopType = "wan"
)

// HopTypeForRole maps a device role to the hop type used on a path.
func HopTypeForRole(role DeviceRole) HopType {
	switch role {
	case RoleGateway:
		return HopGateway
	case RoleAccessPoint:
		return HopAccessPoint
	default:
		return HopSwitch
	}
}

// Hop is one node on a path. Ingress is the side facing the target, egress the side facing the server.
type Hop struct {
	Order       int     `json:"order"`
	Type        HopType `json:"type"`
	DeviceMAC   string  `json:"device_mac,omitempty"`
	DeviceName  string  `json:"device_name,omitempty"`
	DeviceModel string  `json:"device_model,omitempty"`
	DeviceIP    string  `json:"device_ip,omitempty"`

	IngressPort     int    `json:"ingress_port,omitempty"`
	IngressPortName string `json:"ingress_port_name,omitempty"`
	EgressPort      int    `json:"egress_port,omitempty"`
	EgressPortName  string `json:"egress_port_name,omitempty"`

	IngressSpeedMbps int `json:"ingress_speed_mbps,omitempty"`
	EgressSpeedMbps  int `json:"egress_speed_mbps,omitempty"`

	IsWirelessIngress   bool   `json:"is_wireless_ingress,omitempty"`
	IsWirelessEgress    bool   `json:"is_wireless_egress,omitempty"`
	WirelessIngressBand string `json:"wireless_ingress_band,omitempty"`
	WirelessEgressBand  string `json:"wireless_egress_band,omitempty"`

	// RoutingCapMbps is the known inter-VLAN routing ceiling of a gateway model.
	RoutingCapMbps int `json:"routing_cap_mbps,omitempty"`

	IsBottleneck bool   `json:"is_bottleneck"`
	Notes        string `json:"notes,omitempty"`
}

// Endpoint describes one end of a path.
type Endpoint struct {
	Name        string `json:"name,omitempty"`
	IP          string `json:"ip"`
	MAC         string `json:"mac,omitempty"`
	VLAN        int    `json:"vlan"`
	NetworkID   string `json:"network_id,omitempty"`
	NetworkName string `json:"network_name,omitempty"`
}

// NetworkPath is the ordered hop list between the measurement server and a target.
// Built fresh per query; never shared.
type NetworkPath struct {
	TargetHost  string   `json:"target_host"`
	Source      Endpoint `json:"source"`
	Destination Endpoint `json:"destination"`

	RequiresRouting bool   `json:"requires_routing"`
	GatewayMAC      string `json:"gateway_mac,omitempty"`
	GatewayName     string `json:"gateway_name,omitempty"`
	GatewayModel    string `json:"gateway_model,omitempty"`

	Hops []Hop `json:"hops"`

	TheoreticalMaxMbps    int    `json:"theoretical_max_mbps"`
	RealisticMaxMbps      int    `json:"realistic_max_mbps"`
	HasRealBottleneck     bool   `json:"has_real_bottleneck"`
	BottleneckDescription string `json:"bottleneck_description,omitempty"`

	IsValid      bool      `json:"is_valid"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ComputedAt   time.Time `json:"computed_at"`
}

// InvalidPath returns a path carrying only an error, for callers that still render partial output.
func InvalidPath(target, message string) *NetworkPath {
	return &NetworkPath{
		TargetHost:   target,
		IsValid:      false,
		ErrorMessage: message,
		ComputedAt:   time.Now(),
	}
}

// TargetHop returns the first hop, which is always the target.
func (p *NetworkPath) TargetHop() (Hop, bool) {
	if p == nil || len(p.Hops) == 0 {
		return Hop{}, false
	}
	return p.Hops[0], true
}

// TargetType returns the hop type of the target, or "" for an empty path.
func (p *NetworkPath) TargetType() HopType {
	h, _ := p.TargetHop()
	return h.Type
}

// HasWirelessConnection reports a Wi-Fi segment on the path.
func (p *NetworkPath) HasWirelessConnection() bool {
	if p == nil {
		return false
	}
	return HasWirelessConnection(p.Hops)
}

// HasMeshHop reports whether any link on the path is an access-point-to-access-point backhaul.
func (p *NetworkPath) HasMeshHop() bool {
	if p == nil {
		return false
	}
	for i := 1; i < len(p.Hops); i++ {
		if p.Hops[i-1].Type == HopAccessPoint && p.Hops[i].Type == HopAccessPoint {
			return true
		}
	}
	for _, h := range p.Hops {
		if h.EgressPortName == PortLabelWirelessMesh || h.IngressPortName == PortLabelWirelessMesh {
			return true
		}
	}
	return false
}

// HasWirelessConnection decides wireless-ness from adjacent hop types, in path order:
// Client->AccessPoint and AccessPoint->AccessPoint count, AccessPoint->Switch does not.
func HasWirelessConnection(hops []Hop) bool {
	for i := 1; i < len(hops); i++ {
		prev, cur := hops[i-1].Type, hops[i].Type
		switch {
		case (prev == HopClient || prev == HopWirelessClient) && cur == HopAccessPoint:
			return true
		case prev == HopAccessPoint && cur == HopAccessPoint:
			return true
		}
	}
	return false
}

// Port labels used when a link has no port number.
const (
	PortLabelWirelessMesh = "wireless mesh"
	PortLabelWiFi         = "Wi-Fi"
)
