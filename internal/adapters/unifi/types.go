package unifi

import (
	"encoding/json"
	"strconv"
	"strings"
)

// envelope is the common response wrapper of the classic controller API.
type envelope[T any] struct {
	Meta struct {
		RC  string `json:"rc"`
		Msg string `json:"msg,omitempty"`
	} `json:"meta"`
	Data []T `json:"data"`
}

type rawUplink struct {
	UplinkMAC        string `json:"uplink_mac"`
	UplinkRemotePort int    `json:"uplink_remote_port"`
	PortIdx          int    `json:"port_idx"`
	Type             string `json:"type"`
	Speed            int    `json:"speed"`
	TxRate           int    `json:"tx_rate"` // kbps
	Radio            string `json:"radio,omitempty"`
}

type rawPort struct {
	PortIdx int    `json:"port_idx"`
	Name    string `json:"name"`
	Speed   int    `json:"speed"`
	Up      bool   `json:"up"`
}

type rawRadio struct {
	Name  string `json:"name"`
	Radio string `json:"radio"`
}

type rawDevice struct {
	MAC        string     `json:"mac"`
	Name       string     `json:"name"`
	Model      string     `json:"model"`
	Type       string     `json:"type"`
	IP         string     `json:"ip"`
	Uplink     *rawUplink `json:"uplink,omitempty"`
	PortTable  []rawPort  `json:"port_table,omitempty"`
	RadioTable []rawRadio `json:"radio_table,omitempty"`
}

type rawClient struct {
	MAC       string  `json:"mac"`
	Name      string  `json:"name,omitempty"`
	Hostname  string  `json:"hostname,omitempty"`
	IP        string  `json:"ip"`
	IsWired   bool    `json:"is_wired"`
	SwMAC     string  `json:"sw_mac,omitempty"`
	SwPort    int     `json:"sw_port,omitempty"`
	APMAC     string  `json:"ap_mac,omitempty"`
	NetworkID string  `json:"network_id,omitempty"`
	Network   string  `json:"network,omitempty"`
	VLAN      flexInt `json:"vlan,omitempty"`
	TxRate    int     `json:"tx_rate,omitempty"` // kbps
	Radio     string  `json:"radio,omitempty"`
}

type rawNetwork struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Purpose     string  `json:"purpose"`
	VLAN        flexInt `json:"vlan,omitempty"`
	VLANEnabled bool    `json:"vlan_enabled"`
	IPSubnet    string  `json:"ip_subnet,omitempty"`
	Enabled     *bool   `json:"enabled,omitempty"`
}

// flexInt accepts both 20 and "20"; controllers disagree on the vlan field type.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		var num json.Number
		if jerr := json.Unmarshal(b, &num); jerr != nil {
			return err
		}
		v, ferr := num.Float64()
		if ferr != nil {
			return err
		}
		n = int(v)
	}
	*f = flexInt(n)
	return nil
}
