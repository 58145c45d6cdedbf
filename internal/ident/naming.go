package ident

import (
	"fmt"
	"net"
	"strings"
)

// MACFromIP derives a stable MAC address from an IPv4 address, so a guest
// keeps its address across rebuilds.
//
// Example: IP 10.55.22.22 → MAC 54:52:0a:37:16:16
func MACFromIP(ip string) (string, error) {
	ipv4, err := parseIPv4(ip)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("54:52:%02x:%02x:%02x:%02x",
		ipv4[0], ipv4[1], ipv4[2], ipv4[3]), nil
}

func parseIPv4(ip string) (net.IP, error) {
	// Accept both "10.1.2.3" and "10.1.2.3/24"
	ipStr := ip
	if strings.Contains(ip, "/") {
		ipAddr, _, err := net.ParseCIDR(ip)
		if err != nil {
			return nil, fmt.Errorf("invalid IP/CIDR: %w", err)
		}
		ipStr = ipAddr.String()
	}

	parsedIP := net.ParseIP(ipStr)
	if parsedIP == nil {
		return nil, fmt.Errorf("invalid IP address: %s", ipStr)
	}

	ipv4 := parsedIP.To4()
	if ipv4 == nil {
		return nil, fmt.Errorf("not an IPv4 address: %s", ipStr)
	}
	return ipv4, nil
}

// BootVolume returns the file name of a domain's boot disk.
// Format: {name}_boot.qcow2
func BootVolume(name string) string {
	return fmt.Sprintf("%s_boot.qcow2", name)
}

// DataVolume returns the file name of a domain's extra disk.
// Format: {name}_data-{device}.qcow2 (e.g., "web_data-vdb.qcow2")
func DataVolume(name, device string) string {
	return fmt.Sprintf("%s_data-%s.qcow2", name, device)
}

// SeedVolume returns the file name of a domain's cloud-init seed ISO.
// Format: {name}_seed.iso
func SeedVolume(name string) string {
	return fmt.Sprintf("%s_seed.iso", name)
}
