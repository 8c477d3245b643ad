package domain

import (
	"net"
	"net/netip"
	"strings"
)

// IsValidMAC reports whether s is a 48-bit MAC in any form NormalizeMAC understands.
func IsValidMAC(s string) bool {
	_, ok := parseMAC(s)
	return ok
}

// NormalizeMAC returns the lowercase colon-separated form of a MAC address.
// Supports "XX:XX:XX:XX:XX:XX", "XX-XX-XX-XX-XX-XX", "XXXX.XXXX.XXXX" and "XXXXXXXXXXXX".
// Unparseable input is returned trimmed and lowercased so lookups stay deterministic.
func NormalizeMAC(s string) string {
	if mac, ok := parseMAC(s); ok {
		return mac
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func parseMAC(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	normalized := strings.ReplaceAll(s, "-", ":")
	if !strings.ContainsAny(normalized, ":.") && len(normalized) == 12 {
		var parts []string
		for i := 0; i < len(normalized); i += 2 {
			parts = append(parts, normalized[i:i+2])
		}
		normalized = strings.Join(parts, ":")
	}

	hw, err := net.ParseMAC(normalized)
	if err != nil || len(hw) != 6 {
		return "", false
	}
	return hw.String(), true
}

// IsIPv4 reports whether s is an IPv4 literal.
func IsIPv4(s string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	return err == nil && addr.Is4()
}

// SubnetPrefix24 returns the first three octets of an IPv4 address ("192.168.1"),
// or "" when ip is not IPv4.
func SubnetPrefix24(ip string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil || !addr.Is4() {
		return ""
	}
	s := addr.String()
	return s[:strings.LastIndexByte(s, '.')]
}
