package unifi

import (
	"strings"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
)

// RoleForType maps a controller type code to a device role.
func RoleForType(code string) domain.DeviceRole {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "ugw", "usg", "uxg", "udm":
		return domain.RoleGateway
	case "usw":
		return domain.RoleSwitch
	case "uap":
		return domain.RoleAccessPoint
	default:
		return domain.RoleUnknown
	}
}

// BandForRadio maps a radio code to a display band.
func BandForRadio(code string) string {
	switch strings.ToLower(code) {
	case "ng":
		return "2.4 GHz"
	case "na":
		return "5 GHz"
	case "6e":
		return "6 GHz"
	default:
		return ""
	}
}

func kbpsToMbps(kbps int) int {
	if kbps <= 0 {
		return 0
	}
	return kbps / 1000
}

func toDomainDevice(r rawDevice) domain.Device {
	d := domain.Device{
		MAC:   domain.NormalizeMAC(r.MAC),
		Name:  r.Name,
		Model: r.Model,
		Type:  strings.ToLower(r.Type),
		Role:  RoleForType(r.Type),
		IP:    r.IP,
	}
	// UDM and UDR consoles carry radios; UDM-Pro and UXG do not.
	d.ServesWiFi = d.Role == domain.RoleGateway && len(r.RadioTable) > 0

	for _, p := range r.PortTable {
		d.Ports = append(d.Ports, domain.PortInfo{
			Index:     p.PortIdx,
			Name:      p.Name,
			SpeedMbps: p.Speed,
			Up:        p.Up,
		})
	}

	if u := r.Uplink; u != nil && u.UplinkMAC != "" {
		up := &domain.Uplink{
			MAC:       domain.NormalizeMAC(u.UplinkMAC),
			Port:      u.UplinkRemotePort,
			LocalPort: u.PortIdx,
			Medium:    domain.UplinkWired,
			SpeedMbps: u.Speed,
		}
		if strings.EqualFold(u.Type, string(domain.UplinkWireless)) {
			up.Medium = domain.UplinkWireless
			up.RateMbps = kbpsToMbps(u.TxRate)
			up.RadioBand = BandForRadio(u.Radio)
		}
		d.Uplink = up
	}
	return d
}

func toDomainClient(r rawClient) domain.Client {
	c := domain.Client{
		MAC:         domain.NormalizeMAC(r.MAC),
		Name:        r.Name,
		Hostname:    r.Hostname,
		IP:          r.IP,
		IsWired:     r.IsWired,
		NetworkID:   r.NetworkID,
		NetworkName: r.Network,
		VLAN:        int(r.VLAN),
	}
	if r.IsWired {
		c.SwitchMAC = domain.NormalizeMAC(r.SwMAC)
		c.SwitchPort = r.SwPort
	} else {
		c.APMAC = domain.NormalizeMAC(r.APMAC)
		c.TxRateMbps = kbpsToMbps(r.TxRate)
		c.RadioBand = BandForRadio(r.Radio)
	}
	return c
}

func toDomainNetwork(r rawNetwork) domain.Network {
	n := domain.Network{
		ID:      r.ID,
		Name:    r.Name,
		Subnet:  r.IPSubnet,
		Enabled: r.Enabled == nil || *r.Enabled,
	}
	if r.VLANEnabled && r.VLAN > 0 {
		v := int(r.VLAN)
		n.VLAN = &v
	}
	return n
}
