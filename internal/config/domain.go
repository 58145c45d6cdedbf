package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/jbweber/kvmctl/internal/ident"
)

// Domain defaults applied by Normalize.
const (
	DefaultEmulator   = "/usr/bin/kvm"
	DefaultKeymap     = "fr"
	DefaultDiskFormat = "qcow2"
)

var (
	namePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9_-]*[a-z0-9])?$`)
	macPattern  = regexp.MustCompile(`^([0-9a-f]{2}:){5}[0-9a-f]{2}$`)
)

// DomainConfig describes a new kvm domain for `gen conf`.
type DomainConfig struct {
	Name       string            `yaml:"name"`
	UUID       string            `yaml:"uuid,omitempty"` // Generated when empty
	VCPUs      int               `yaml:"vcpus"`
	MemoryGiB  float64           `yaml:"memory_gib"`
	Emulator   string            `yaml:"emulator,omitempty"`
	Keymap     string            `yaml:"keymap,omitempty"`
	// ImageDir holds the domain's images. Disks without a path are named
	// after the domain inside it, and Seed attaches <name>_seed.iso from it.
	ImageDir   string            `yaml:"image_dir,omitempty"`
	Seed       bool              `yaml:"seed,omitempty"`
	Disks      []DiskConfig      `yaml:"disks"`
	Interfaces []InterfaceConfig `yaml:"interfaces"`
}

// DiskConfig is a file-backed virtio disk.
type DiskConfig struct {
	Path   string `yaml:"path,omitempty"`
	Device string `yaml:"device,omitempty"` // vda, vdb, ... assigned in order when empty
	Format string `yaml:"format,omitempty"` // Default: qcow2
}

// InterfaceConfig is a bridged virtio NIC.
// Bridge may be given directly or as a VLAN number (bridge "br<vlan>").
type InterfaceConfig struct {
	Bridge string `yaml:"bridge,omitempty"`
	VLAN   int    `yaml:"vlan,omitempty"`
	MAC    string `yaml:"mac,omitempty"`
	IP     string `yaml:"ip,omitempty"` // When set and MAC is empty, the MAC is derived from it
}

// MemoryKiB returns the memory size in KiB as libvirt expects it.
func (c *DomainConfig) MemoryKiB() uint {
	return uint(c.MemoryGiB * 1024 * 1024)
}

// Normalize sanitizes user input and fills in defaults.
// Disk devices are assigned vda, vdb, ... when empty.
func (c *DomainConfig) Normalize() {
	c.Name = strings.ToLower(strings.TrimSpace(c.Name))
	c.UUID = strings.ToLower(strings.TrimSpace(c.UUID))

	if c.Emulator == "" {
		c.Emulator = DefaultEmulator
	}
	if c.Keymap == "" {
		c.Keymap = DefaultKeymap
	}

	c.ImageDir = strings.TrimSpace(c.ImageDir)
	for i := range c.Disks {
		d := &c.Disks[i]
		d.Path = strings.TrimSpace(d.Path)
		if d.Device == "" {
			d.Device = diskDevice(i)
		}
		if d.Format == "" {
			d.Format = DefaultDiskFormat
		}
		if d.Path == "" && c.ImageDir != "" && c.Name != "" {
			if i == 0 {
				d.Path = filepath.Join(c.ImageDir, ident.BootVolume(c.Name))
			} else {
				d.Path = filepath.Join(c.ImageDir, ident.DataVolume(c.Name, d.Device))
			}
		}
	}

	for i := range c.Interfaces {
		iface := &c.Interfaces[i]
		iface.MAC = strings.ToLower(strings.TrimSpace(iface.MAC))
		// Bridge names are not normalized, they must match the host exactly
		if iface.Bridge == "" && iface.VLAN > 0 {
			iface.Bridge = fmt.Sprintf("br%d", iface.VLAN)
		}
	}
}

// Validate checks the domain definition for errors.
func (c *DomainConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !namePattern.MatchString(c.Name) {
		return fmt.Errorf("name must start and end with alphanumeric characters and contain only alphanumeric, hyphens, or underscores, got %q", c.Name)
	}
	if c.UUID != "" {
		if _, err := uuid.Parse(c.UUID); err != nil {
			return fmt.Errorf("invalid uuid %q: %w", c.UUID, err)
		}
	}
	if c.VCPUs <= 0 {
		return fmt.Errorf("vcpus must be > 0, got %d", c.VCPUs)
	}
	if c.MemoryGiB <= 0 {
		return fmt.Errorf("memory_gib must be > 0, got %g", c.MemoryGiB)
	}

	if len(c.Disks) == 0 {
		return fmt.Errorf("at least one disks entry is required")
	}
	devicesSeen := make(map[string]bool)
	for i, d := range c.Disks {
		if d.Path == "" {
			return fmt.Errorf("disks[%d]: path is required when image_dir is not set", i)
		}
		if devicesSeen[d.Device] {
			return fmt.Errorf("disks[%d]: duplicate device name %q", i, d.Device)
		}
		devicesSeen[d.Device] = true
	}

	if c.Seed && c.ImageDir == "" {
		return fmt.Errorf("seed requires image_dir")
	}

	if len(c.Interfaces) == 0 {
		return fmt.Errorf("no network interfaces defined")
	}
	for i, iface := range c.Interfaces {
		if iface.Bridge == "" {
			return fmt.Errorf("interfaces[%d]: bridge or vlan is required", i)
		}
		if iface.MAC != "" && !macPattern.MatchString(iface.MAC) {
			return fmt.Errorf("interfaces[%d]: invalid mac address %q", i, iface.MAC)
		}
		if iface.IP != "" {
			if _, err := ident.MACFromIP(iface.IP); err != nil {
				return fmt.Errorf("interfaces[%d]: %w", i, err)
			}
		}
	}

	return nil
}

// SeedPath returns the seed ISO attached when Seed is set.
func (c *DomainConfig) SeedPath() string {
	return filepath.Join(c.ImageDir, ident.SeedVolume(c.Name))
}

// ResolveMACs fills in every empty interface MAC: derived from the
// interface IP when one is set, random under the 54:52:00 prefix otherwise.
// Must be called after Validate.
func (c *DomainConfig) ResolveMACs() error {
	for i := range c.Interfaces {
		iface := &c.Interfaces[i]
		if iface.MAC != "" {
			continue
		}
		if iface.IP == "" {
			iface.MAC = ident.MAC()
			continue
		}
		mac, err := ident.MACFromIP(iface.IP)
		if err != nil {
			return fmt.Errorf("interfaces[%d]: %w", i, err)
		}
		iface.MAC = mac
	}
	return nil
}

// LoadDomain reads a domain definition from a YAML file.
func LoadDomain(path string) (*DomainConfig, error) {
	var cfg DomainConfig
	if err := readYAML(path, &cfg); err != nil {
		return nil, err
	}

	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid domain configuration: %w", err)
	}

	if err := cfg.ResolveMACs(); err != nil {
		return nil, fmt.Errorf("failed to calculate MAC addresses: %w", err)
	}

	return &cfg, nil
}

// diskDevice returns the virtio device name for the i-th disk (vda, vdb, ...).
func diskDevice(i int) string {
	name := ""
	for n := i; ; n = n/26 - 1 {
		name = string(rune('a'+n%26)) + name
		if n < 26 {
			break
		}
	}
	return "vd" + name
}
