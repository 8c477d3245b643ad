// Package localnet enumerates the measurement server's own IPv4 addresses.
package localnet

import (
	"fmt"
	"net"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/lcalzada-xor/netpath/internal/core/ports"
)

// Provider implements ports.AddressProvider. A static list, when set, replaces
// interface enumeration.
type Provider struct {
	static []string
}

var _ ports.AddressProvider = (*Provider)(nil)

// NewProvider returns a provider. Non-IPv4 entries of static are rejected.
func NewProvider(static []string) (*Provider, error) {
	for _, ip := range static {
		if !domain.IsIPv4(ip) {
			return nil, fmt.Errorf("server ip %q is not an IPv4 address", ip)
		}
	}
	return &Provider{static: append([]string(nil), static...)}, nil
}

// LocalIPv4 returns the configured addresses or the live interface addresses.
func (p *Provider) LocalIPv4() ([]string, error) {
	if len(p.static) > 0 {
		return append([]string(nil), p.static...), nil
	}
	return IPv4Addrs()
}

// IPv4Addrs lists non-loopback, non-link-local IPv4 addresses of interfaces that are up.
func IPv4Addrs() ([]string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	var out []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		out = append(out, filterIPv4(addrs)...)
	}
	return out, nil
}

func filterIPv4(addrs []net.Addr) []string {
	var out []string
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		v4 := ip.To4()
		if v4 == nil || v4.IsLoopback() || v4.IsLinkLocalUnicast() {
			continue
		}
		out = append(out, v4.String())
	}
	return out
}
