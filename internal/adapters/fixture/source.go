// Package fixture serves a static inventory from a YAML file, for offline use and tests.
package fixture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/lcalzada-xor/netpath/internal/core/ports"
	"gopkg.in/yaml.v3"
)

// Inventory is the on-disk document.
type Inventory struct {
	Devices  []domain.Device  `yaml:"devices"`
	Clients  []domain.Client  `yaml:"clients"`
	Networks []domain.Network `yaml:"networks"`
}

// Source implements ports.InventorySource over a fixed inventory.
type Source struct {
	inv Inventory
}

var _ ports.InventorySource = (*Source)(nil)

// Load reads and parses a fixture file.
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	src, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// Parse decodes a YAML inventory. Unknown keys are rejected.
func Parse(data []byte) (*Source, error) {
	var inv Inventory
	if err := decodeStrict(data, &inv); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	for i, d := range inv.Devices {
		if !domain.IsValidMAC(d.MAC) {
			return nil, fmt.Errorf("device %d: invalid mac %q", i, d.MAC)
		}
		if d.Role == "" {
			inv.Devices[i].Role = domain.RoleUnknown
		}
	}
	for i, c := range inv.Clients {
		if !domain.IsValidMAC(c.MAC) {
			return nil, fmt.Errorf("client %d: invalid mac %q", i, c.MAC)
		}
	}
	return &Source{inv: inv}, nil
}

// New wraps an in-memory inventory.
func New(inv Inventory) *Source {
	return &Source{inv: inv}
}

func (s *Source) ListDevices(ctx context.Context) ([]domain.Device, error) {
	return append([]domain.Device(nil), s.inv.Devices...), ctx.Err()
}

func (s *Source) ListClients(ctx context.Context) ([]domain.Client, error) {
	return append([]domain.Client(nil), s.inv.Clients...), ctx.Err()
}

func (s *Source) ListNetworks(ctx context.Context) ([]domain.Network, error) {
	return append([]domain.Network(nil), s.inv.Networks...), ctx.Err()
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty document")
		}
		return err
	}
	return nil
}
