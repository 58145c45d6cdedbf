// Package cloudinit builds NoCloud seed images that configure a guest's
// hostname, static network, /etc/hosts and authorized keys on first boot.
//
// See https://cloudinit.readthedocs.io/en/latest/reference/datasources/nocloud.html
package cloudinit

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/kvmctl/internal/config"
)

const (
	cloudConfigHeader = "#cloud-config\n"
	outputLog         = "| tee -a /var/log/cloud-init-output.log"
	defaultRoute      = "0.0.0.0/0"
)

var errNilGuest = errors.New("guest configuration cannot be nil")

// userData is the cloud-config document.
//
// See https://cloudinit.readthedocs.io/en/latest/explanation/format.html#cloud-config-data
type userData struct {
	Hostname       string            `yaml:"hostname"`
	FQDN           string            `yaml:"fqdn"`
	Keys           []string          `yaml:"ssh_authorized_keys,omitempty"`
	Passwords      *passwords        `yaml:"chpasswd,omitempty"`
	PasswordAuth   bool              `yaml:"ssh_pwauth"`
	ManageEtcHosts bool              `yaml:"manage_etc_hosts"`
	Output         map[string]string `yaml:"output,omitempty"`
}

// passwords sets account passwords from "user:hash" lines.
type passwords struct {
	Expire bool   `yaml:"expire"`
	List   string `yaml:"list"`
}

type metaData struct {
	InstanceID    string `yaml:"instance-id"`
	LocalHostname string `yaml:"local-hostname"`
}

// netplan is a version 2 network-config document.
//
// See https://cloudinit.readthedocs.io/en/latest/reference/network-config-format-v2.html
type netplan struct {
	Version   int                 `yaml:"version"`
	Ethernets map[string]ethernet `yaml:"ethernets"`
}

type ethernet struct {
	Match struct {
		MAC string `yaml:"macaddress"`
	} `yaml:"match"`
	Addresses   []string `yaml:"addresses"`
	Routes      []route  `yaml:"routes,omitempty"`
	Nameservers *struct {
		Addresses []string `yaml:"addresses"`
	} `yaml:"nameservers,omitempty"`
}

type route struct {
	To  string `yaml:"to"`
	Via string `yaml:"via"`
}

func marshal(file string, v any) (string, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s to YAML: %w", file, err)
	}
	return string(out), nil
}

// GenerateUserData returns the user-data file, "#cloud-config" header
// included. A root password hash is installed without expiry.
func GenerateUserData(cfg *config.GuestConfig) (string, error) {
	if cfg == nil {
		return "", errNilGuest
	}

	doc := userData{
		Hostname:       cfg.Hostname(),
		FQDN:           cfg.FQDN,
		Keys:           cfg.SSHKeys,
		ManageEtcHosts: true,
		Output:         map[string]string{"all": outputLog},
	}
	if cfg.RootPasswordHash != "" {
		doc.Passwords = &passwords{List: "root:" + cfg.RootPasswordHash}
	}
	if cfg.SSHPwAuth != nil {
		doc.PasswordAuth = *cfg.SSHPwAuth
	}

	body, err := marshal("user-data", &doc)
	if err != nil {
		return "", err
	}
	return cloudConfigHeader + body, nil
}

// GenerateMetaData returns the meta-data file.
//
// The instance-id is the FQDN: cloud-init re-runs when a guest is rebuilt
// under a new name and stays put across reboots otherwise.
func GenerateMetaData(cfg *config.GuestConfig) (string, error) {
	if cfg == nil {
		return "", errNilGuest
	}
	return marshal("meta-data", &metaData{InstanceID: cfg.FQDN, LocalHostname: cfg.Hostname()})
}

// GenerateNetworkConfig returns netplan v2 network-config with every
// interface matched by MAC address and named eth0, eth1, ...
func GenerateNetworkConfig(cfg *config.GuestConfig) (string, error) {
	if cfg == nil {
		return "", errNilGuest
	}
	if len(cfg.Interfaces) == 0 {
		return "", errors.New("at least one network interface is required")
	}

	doc := netplan{Version: 2, Ethernets: make(map[string]ethernet, len(cfg.Interfaces))}
	for i, iface := range cfg.Interfaces {
		if iface.MAC == "" {
			return "", fmt.Errorf("interfaces[%d]: mac address is not set", i)
		}

		var eth ethernet
		eth.Match.MAC = iface.MAC
		eth.Addresses = []string{iface.IP}
		if iface.DefaultRoute {
			eth.Routes = []route{{To: defaultRoute, Via: iface.Gateway}}
		}
		if len(iface.DNS) > 0 {
			eth.Nameservers = &struct {
				Addresses []string `yaml:"addresses"`
			}{Addresses: iface.DNS}
		}
		doc.Ethernets[fmt.Sprintf("eth%d", i)] = eth
	}

	return marshal("network-config", &doc)
}
