package domain

import "time"

// ServerPosition is where the measurement server is attached. Treated as a value.
type ServerPosition struct {
	IP       string `json:"ip"`
	MAC      string `json:"mac"`
	Hostname string `json:"hostname,omitempty"`

	SwitchMAC   string `json:"switch_mac,omitempty"`
	SwitchPort  int    `json:"switch_port,omitempty"`
	DeviceName  string `json:"device_name,omitempty"`
	DeviceModel string `json:"device_model,omitempty"`

	IsWireless bool   `json:"is_wireless"`
	TxRateMbps int    `json:"tx_rate_mbps,omitempty"`
	RadioBand  string `json:"radio_band,omitempty"`

	NetworkID   string `json:"network_id,omitempty"`
	NetworkName string `json:"network_name,omitempty"`
	VLAN        int    `json:"vlan"`

	ResolvedAt time.Time `json:"resolved_at"`
}

// Attached reports whether the attachment device is known.
func (s ServerPosition) Attached() bool {
	return s.SwitchMAC != ""
}

// TargetKind tells which branch of TargetResolution is populated.
type TargetKind string

const (
	TargetDevice TargetKind = "device"
	TargetClient TargetKind = "client"
)

// TargetResolution is the result of mapping a user-supplied host string onto the topology.
// Exactly one of Device or Client is set, according to Kind.
type TargetResolution struct {
	Kind       TargetKind `json:"kind"`
	Query      string     `json:"query"`
	ResolvedIP string     `json:"resolved_ip,omitempty"` // set when DNS was needed
	Device     *Device    `json:"device,omitempty"`
	Client     *Client    `json:"client,omitempty"`
}

// IP returns the address of whichever entry was matched.
func (r TargetResolution) IP() string {
	switch r.Kind {
	case TargetDevice:
		if r.Device != nil {
			return r.Device.IP
		}
	case TargetClient:
		if r.Client != nil {
			return r.Client.IP
		}
	}
	return r.ResolvedIP
}

// MAC returns the MAC of whichever entry was matched.
func (r TargetResolution) MAC() string {
	switch r.Kind {
	case TargetDevice:
		if r.Device != nil {
			return r.Device.MAC
		}
	case TargetClient:
		if r.Client != nil {
			return r.Client.MAC
		}
	}
	return ""
}

// Name returns a display name for the matched entry.
func (r TargetResolution) Name() string {
	switch r.Kind {
	case TargetDevice:
		if r.Device != nil {
			return r.Device.DisplayName()
		}
	case TargetClient:
		if r.Client != nil {
			return r.Client.DisplayName()
		}
	}
	return r.Query
}
