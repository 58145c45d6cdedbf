package config

import (
	"strings"
	"testing"
)

const testSSHKey = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIIbJKZscbOLzBsgY5y2QupKW4A2kSDjMBQGPb1dChr+S test@example.com"

func TestLoadGuest(t *testing.T) {
	path := writeFile(t, "guest.yaml", `fqdn: Web01.Example.COM
ssh_keys:
  - `+testSSHKey+`
interfaces:
  - ip: 10.20.30.40/24
    gateway: 10.20.30.1
    dns: [8.8.8.8, 1.1.1.1]
    default_route: true
  - ip: 192.168.10.5/24
    mac: 54:52:00:12:34:56
`)

	cfg, err := LoadGuest(path)
	if err != nil {
		t.Fatalf("LoadGuest failed: %v", err)
	}

	if cfg.FQDN != "web01.example.com" {
		t.Errorf("Expected normalized FQDN, got %q", cfg.FQDN)
	}
	if cfg.Hostname() != "web01" {
		t.Errorf("Expected hostname 'web01', got %q", cfg.Hostname())
	}
	if cfg.Interfaces[0].MAC != "54:52:0a:14:1e:28" {
		t.Errorf("Expected MAC derived from 10.20.30.40, got %q", cfg.Interfaces[0].MAC)
	}
	if cfg.Interfaces[1].MAC != "54:52:00:12:34:56" {
		t.Errorf("Expected explicit MAC kept, got %q", cfg.Interfaces[1].MAC)
	}
	if len(cfg.Interfaces[0].DNS) != 2 {
		t.Errorf("Expected 2 DNS servers, got %d", len(cfg.Interfaces[0].DNS))
	}
}

func TestGuestConfigValidate(t *testing.T) {
	valid := func() GuestConfig {
		return GuestConfig{
			FQDN:       "web.example.com",
			SSHKeys:    []string{testSSHKey},
			Interfaces: []GuestInterface{{IP: "10.0.0.2/24", Gateway: "10.0.0.1"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(g *GuestConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(g *GuestConfig) {}},
		{name: "missing fqdn", mutate: func(g *GuestConfig) { g.FQDN = "" }, wantErr: "fqdn is required"},
		{name: "fqdn without domain", mutate: func(g *GuestConfig) { g.FQDN = "web" }, wantErr: "fqdn must be a valid hostname"},
		{name: "bad ssh key", mutate: func(g *GuestConfig) { g.SSHKeys = []string{"ssh-rsa nope"} }, wantErr: "ssh_keys[0] is not a valid SSH public key"},
		{name: "bad password hash", mutate: func(g *GuestConfig) { g.RootPasswordHash = "plaintext" }, wantErr: "root_password_hash"},
		{name: "no interfaces", mutate: func(g *GuestConfig) { g.Interfaces = nil }, wantErr: "at least one interfaces entry"},
		{name: "missing ip", mutate: func(g *GuestConfig) { g.Interfaces[0].IP = "" }, wantErr: "interfaces[0]: ip is required"},
		{name: "ip without cidr", mutate: func(g *GuestConfig) { g.Interfaces[0].IP = "10.0.0.2" }, wantErr: "invalid ip/cidr format"},
		{name: "ipv6", mutate: func(g *GuestConfig) { g.Interfaces[0].IP = "fd00::2/64" }, wantErr: "only IPv4"},
		{name: "bad gateway", mutate: func(g *GuestConfig) { g.Interfaces[0].Gateway = "gw" }, wantErr: "invalid gateway"},
		{
			name: "default route without gateway",
			mutate: func(g *GuestConfig) {
				g.Interfaces[0].Gateway = ""
				g.Interfaces[0].DefaultRoute = true
			},
			wantErr: "default_route requires a gateway",
		},
		{name: "bad dns", mutate: func(g *GuestConfig) { g.Interfaces[0].DNS = []string{"dns"} }, wantErr: "dns[0] is not a valid IP"},
		{name: "bad mac", mutate: func(g *GuestConfig) { g.Interfaces[0].MAC = "zz:zz" }, wantErr: "invalid mac address"},
		{
			name: "duplicate ip",
			mutate: func(g *GuestConfig) {
				g.Interfaces = append(g.Interfaces, GuestInterface{IP: "10.0.0.2/24"})
			},
			wantErr: "duplicate IP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			cfg.Normalize()
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
