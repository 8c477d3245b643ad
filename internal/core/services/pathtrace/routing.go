package pathtrace

import (
	"strings"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
)

// routingCaps holds nominal inter-VLAN routing throughput per gateway model code, in Mbps.
var routingCaps = map[string]int{
	"UGW3":      1000,
	"UGW4":      1000,
	"UDM":       1000,
	"UDR":       1000,
	"UXG":       1000,
	"UCGULTRA":  1000,
	"UCGMAX":    1500,
	"UDMPRO":    3500,
	"UDMPROSE":  3500,
	"UXGPRO":    3500,
	"UDMPROMAX": 5000,
	"EFG":       12500,
}

// RoutingCap returns the known routing ceiling for a gateway model, or 0.
func RoutingCap(model string) int {
	key := strings.ToUpper(strings.NewReplacer("-", "", " ", "", "_", "").Replace(model))
	return routingCaps[key]
}

// RequiresRouting reports whether traffic between a and b must cross a Layer-3 hop.
// Any of a VLAN mismatch, a network name mismatch or a /24 prefix mismatch is enough.
func RequiresRouting(a, b domain.Endpoint) bool {
	if a.VLAN != b.VLAN {
		return true
	}
	if a.NetworkName != "" && b.NetworkName != "" && !strings.EqualFold(a.NetworkName, b.NetworkName) {
		return true
	}
	pa, pb := domain.SubnetPrefix24(a.IP), domain.SubnetPrefix24(b.IP)
	return pa != "" && pb != "" && pa != pb
}
