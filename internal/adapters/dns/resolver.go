// Package dns resolves target host names, trying common home-network search suffixes.
package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/lcalzada-xor/netpath/internal/core/ports"
)

// DefaultSuffixes are tried in order after the bare name.
var DefaultSuffixes = []string{".local", ".lan", ".home", ".localdomain"}

// DefaultAttemptTimeout bounds each individual lookup.
const DefaultAttemptTimeout = 2 * time.Second

// LookupFunc matches (*net.Resolver).LookupIP.
type LookupFunc func(ctx context.Context, network, host string) ([]net.IP, error)

// ErrNoIPv4 is returned when a name resolves only to IPv6 addresses.
var ErrNoIPv4 = errors.New("no IPv4 address")

// Resolver implements ports.HostResolver.
type Resolver struct {
	lookup   LookupFunc
	suffixes []string
	timeout  time.Duration
}

var _ ports.HostResolver = (*Resolver)(nil)

// NewResolver uses the system resolver with the default suffixes.
func NewResolver() *Resolver {
	return &Resolver{
		lookup:   net.DefaultResolver.LookupIP,
		suffixes: DefaultSuffixes,
		timeout:  DefaultAttemptTimeout,
	}
}

// WithLookup replaces the lookup function.
func (r *Resolver) WithLookup(fn LookupFunc) *Resolver {
	r.lookup = fn
	return r
}

// WithTimeout changes the per-attempt timeout.
func (r *Resolver) WithTimeout(d time.Duration) *Resolver {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// LookupIPv4 returns the first IPv4 address of host, or of host plus a search suffix.
func (r *Resolver) LookupIPv4(ctx context.Context, host string) (string, error) {
	host = strings.TrimSpace(host)
	// A trailing dot marks a fully qualified name, which is never expanded.
	fqdn := strings.HasSuffix(host, ".")
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return "", errors.New("empty host name")
	}

	candidates := []string{host}
	if !fqdn {
		for _, s := range r.suffixes {
			candidates = append(candidates, host+s)
		}
	}

	var lastErr error
	for _, name := range candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		ip, err := r.attempt(ctx, name)
		if err == nil {
			return ip, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("resolve %s: %w", host, lastErr)
}

func (r *Resolver) attempt(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ips, err := r.lookup(ctx, "ip4", name)
	if err != nil {
		return "", err
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, ErrNoIPv4)
}
