package utils

import (
	"fmt"
	"net"
)

// ResolveHostIP determines the address clients should mount from:
//
//  1. iface - first IPv4 address on the named interface (e.g. "eth1").
//  2. cidr - first address on any non-loopback interface inside the CIDR
//     (e.g. "192.168.1.0/24"), for hosts whose interface names vary.
//  3. ip - static fallback.
//
// Returns "" with no error when nothing is configured.
func ResolveHostIP(ip, iface, cidr string) (string, error) {
	if iface != "" {
		addr, err := ipFromInterface(iface)
		if err != nil {
			return "", fmt.Errorf("NFS_HOST_INTERFACE=%s: %w", iface, err)
		}
		return addr, nil
	}

	if cidr != "" {
		addr, err := ipFromCIDR(cidr)
		if err != nil {
			return "", fmt.Errorf("NFS_HOST_CIDR=%s: %w", cidr, err)
		}
		return addr, nil
	}

	return ip, nil
}

func ipFromInterface(name string) (string, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return "", fmt.Errorf("interface not found: %w", err)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return "", fmt.Errorf("reading addresses: %w", err)
	}

	if ip := firstIPv4(addrs, nil); ip != "" {
		return ip, nil
	}
	return "", fmt.Errorf("no IPv4 address on interface %s", name)
}

func ipFromCIDR(cidr string) (string, error) {
	_, subnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return "", fmt.Errorf("invalid CIDR: %w", err)
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("listing interfaces: %w", err)
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		if ip := firstIPv4(addrs, subnet); ip != "" {
			return ip, nil
		}
	}

	return "", fmt.Errorf("no address found matching %s", cidr)
}

// firstIPv4 returns the first IPv4 address in addrs, restricted to subnet when non-nil.
func firstIPv4(addrs []net.Addr, subnet *net.IPNet) string {
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip4 := ipNet.IP.To4()
		if ip4 == nil {
			continue
		}
		if subnet == nil || subnet.Contains(ip4) {
			return ip4.String()
		}
	}
	return ""
}
