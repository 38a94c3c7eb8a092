// Package validation holds input validators shared by the config
// loader and the CLI. These guard values that end up in netlink calls,
// so they enforce kernel limits rather than file-format rules.
package validation

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

var (
	// Valid interface name: alphanumeric, dash, underscore, dot (for VLANs), max 15 chars
	interfaceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,15}$`)

	// Dangerous characters that should never appear in names handed to the kernel
	dangerousChars = []string{";", "|", "&", "$", "`", "(", ")", "<", ">", "\\", "\"", "'", "\n", "\r"}
)

// ValidateInterfaceName validates a network interface name against
// IFNAMSIZ and character rules.
func ValidateInterfaceName(name string) error {
	if name == "" {
		return fmt.Errorf("interface name cannot be empty")
	}

	if len(name) > 15 {
		return fmt.Errorf("interface name too long (max 15 characters): %s", name)
	}

	if !interfaceNameRegex.MatchString(name) {
		return fmt.Errorf("invalid interface name: %s (must be alphanumeric with -_.)", name)
	}

	for _, char := range dangerousChars {
		if strings.Contains(name, char) {
			return fmt.Errorf("interface name contains dangerous character: %s", char)
		}
	}

	return nil
}

// ValidateIPv4 validates a dotted-quad IPv4 address.
func ValidateIPv4(s string) error {
	if s == "" {
		return fmt.Errorf("IP address cannot be empty")
	}

	ip := net.ParseIP(s)
	if ip == nil {
		return fmt.Errorf("invalid IP address: %s", s)
	}
	if ip.To4() == nil {
		return fmt.Errorf("not an IPv4 address: %s", s)
	}

	return nil
}

// ValidateCIDR4 validates an IPv4 CIDR range.
func ValidateCIDR4(s string) error {
	if s == "" {
		return fmt.Errorf("CIDR cannot be empty")
	}

	ip, _, err := net.ParseCIDR(s)
	if err != nil {
		return fmt.Errorf("invalid CIDR: %w", err)
	}
	if ip.To4() == nil {
		return fmt.Errorf("not an IPv4 CIDR: %s", s)
	}

	return nil
}

// ValidateAddressLabel validates an address label. The kernel requires
// labels to start with the owning interface's name and stay within
// IFNAMSIZ. An empty label is always valid.
func ValidateAddressLabel(label, ifname string) error {
	if label == "" {
		return nil
	}

	if len(label) > 15 {
		return fmt.Errorf("address label too long (max 15 characters): %s", label)
	}

	if label != ifname && !strings.HasPrefix(label, ifname+":") {
		return fmt.Errorf("address label must begin with the interface name: %s", label)
	}

	for _, char := range dangerousChars {
		if strings.Contains(label, char) {
			return fmt.Errorf("address label contains dangerous character: %s", char)
		}
	}

	return nil
}
