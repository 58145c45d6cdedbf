package config

import (
	"fmt"
	"net"
	"regexp"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/jbweber/kvmctl/internal/ident"
)

// RFC 952/1123 hostname with at least one dot.
var fqdnPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)+$`)

// GuestConfig describes the guest identity written into a seed ISO:
// hostname, network and authorized keys.
// Hostname is derived from FQDN (everything before the first dot).
type GuestConfig struct {
	FQDN             string           `yaml:"fqdn"`
	SSHKeys          []string         `yaml:"ssh_keys,omitempty"`
	RootPasswordHash string           `yaml:"root_password_hash,omitempty"`
	SSHPwAuth        *bool            `yaml:"ssh_pwauth,omitempty"` // Pointer to distinguish unset vs false
	Interfaces       []GuestInterface `yaml:"interfaces"`
}

// GuestInterface is one statically addressed guest NIC.
type GuestInterface struct {
	IP           string   `yaml:"ip"` // IP with CIDR, e.g., "10.20.30.40/24"
	Gateway      string   `yaml:"gateway,omitempty"`
	DNS          []string `yaml:"dns,omitempty"`
	MAC          string   `yaml:"mac,omitempty"` // Derived from IP when empty
	DefaultRoute bool     `yaml:"default_route,omitempty"`
}

// Hostname returns the short host name.
func (g *GuestConfig) Hostname() string {
	host, _, _ := strings.Cut(g.FQDN, ".")
	return host
}

// Normalize lowercases the FQDN and MAC addresses.
func (g *GuestConfig) Normalize() {
	g.FQDN = strings.ToLower(strings.TrimSpace(g.FQDN))
	for i := range g.Interfaces {
		g.Interfaces[i].MAC = strings.ToLower(strings.TrimSpace(g.Interfaces[i].MAC))
	}
}

// Validate checks the guest definition for errors.
func (g *GuestConfig) Validate() error {
	if g.FQDN == "" {
		return fmt.Errorf("fqdn is required")
	}
	if !fqdnPattern.MatchString(g.FQDN) {
		return fmt.Errorf("fqdn must be a valid hostname with domain (e.g., host.example.com), got %q", g.FQDN)
	}

	for i, key := range g.SSHKeys {
		if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(key)); err != nil {
			return fmt.Errorf("ssh_keys[%d] is not a valid SSH public key: %w", i, err)
		}
	}

	if g.RootPasswordHash != "" {
		if len(g.RootPasswordHash) < 10 || g.RootPasswordHash[0] != '$' {
			return fmt.Errorf("root_password_hash must be a valid crypt hash (should start with $)")
		}
	}

	if len(g.Interfaces) == 0 {
		return fmt.Errorf("at least one interfaces entry is required")
	}
	ipsSeen := make(map[string]bool)
	for i, iface := range g.Interfaces {
		if err := iface.Validate(); err != nil {
			return fmt.Errorf("interfaces[%d]: %w", i, err)
		}
		if ipsSeen[iface.IP] {
			return fmt.Errorf("interfaces[%d]: duplicate IP %q", i, iface.IP)
		}
		ipsSeen[iface.IP] = true
	}

	return nil
}

// Validate checks one guest interface.
func (n *GuestInterface) Validate() error {
	if n.IP == "" {
		return fmt.Errorf("ip is required")
	}
	ip, _, err := net.ParseCIDR(n.IP)
	if err != nil {
		return fmt.Errorf("invalid ip/cidr format %q: %w", n.IP, err)
	}
	if ip.To4() == nil {
		return fmt.Errorf("only IPv4 addresses are supported: %q", n.IP)
	}

	if n.Gateway != "" && net.ParseIP(n.Gateway) == nil {
		return fmt.Errorf("invalid gateway IP address %q", n.Gateway)
	}
	if n.DefaultRoute && n.Gateway == "" {
		return fmt.Errorf("default_route requires a gateway")
	}

	for i, dns := range n.DNS {
		if net.ParseIP(dns) == nil {
			return fmt.Errorf("dns[%d] is not a valid IP address: %q", i, dns)
		}
	}

	if n.MAC != "" && !macPattern.MatchString(n.MAC) {
		return fmt.Errorf("invalid mac address %q", n.MAC)
	}

	return nil
}

// ResolveMACs derives every empty interface MAC from its IP.
// Must be called after Validate.
func (g *GuestConfig) ResolveMACs() error {
	for i := range g.Interfaces {
		if g.Interfaces[i].MAC != "" {
			continue
		}
		mac, err := ident.MACFromIP(g.Interfaces[i].IP)
		if err != nil {
			return fmt.Errorf("interfaces[%d]: %w", i, err)
		}
		g.Interfaces[i].MAC = mac
	}
	return nil
}

// LoadGuest reads a guest definition from a YAML file.
func LoadGuest(path string) (*GuestConfig, error) {
	var cfg GuestConfig
	if err := readYAML(path, &cfg); err != nil {
		return nil, err
	}

	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid guest configuration: %w", err)
	}

	if err := cfg.ResolveMACs(); err != nil {
		return nil, fmt.Errorf("failed to calculate MAC addresses: %w", err)
	}

	return &cfg, nil
}
