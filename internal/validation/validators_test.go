package validation

import (
	"testing"
)

func TestValidateInterfaceName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Happy paths
		{"simple", "eth0", false},
		{"with dash", "eth-0", false},
		{"with underscore", "eth_0", false},
		{"with dot (vlan)", "eth0.100", false},
		{"max length", "eth0123456789ab", false}, // 15 chars

		// Sad paths
		{"empty", "", true},
		{"too long", "eth01234567890123", true}, // 17 chars
		{"space", "eth 0", true},
		{"semicolon injection", "eth0;rm", true},
		{"pipe injection", "eth0|cat", true},
		{"dollar sign", "eth0$USER", true},
		{"backtick", "eth0`whoami`", true},
		{"newline", "eth0\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterfaceName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInterfaceName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateIPv4(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Happy paths
		{"plain", "192.168.1.1", false},
		{"loopback", "127.0.0.1", false},
		{"zero", "0.0.0.0", false},

		// Sad paths
		{"empty", "", true},
		{"out of range", "999.999.999.999", true},
		{"ipv6", "2001:db8::1", true},
		{"cidr", "192.168.1.0/24", true},
		{"text", "not-an-ip", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIPv4(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIPv4(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCIDR4(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Happy paths
		{"subnet", "192.168.1.0/24", false},
		{"host route", "10.0.0.1/32", false},
		{"default", "0.0.0.0/0", false},

		// Sad paths
		{"empty", "", true},
		{"plain ip", "192.168.1.1", true},
		{"bad prefix", "192.168.1.0/99", true},
		{"ipv6 cidr", "2001:db8::/32", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCIDR4(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCIDR4(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAddressLabel(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		ifname  string
		wantErr bool
	}{
		// Happy paths
		{"empty", "", "eth0", false},
		{"bare interface name", "eth0", "eth0", false},
		{"alias", "eth0:1", "eth0", false},
		{"named alias", "eth0:backup", "eth0", false},

		// Sad paths
		{"wrong interface", "eth1:1", "eth0", true},
		{"no separator", "eth0backup", "eth0", true},
		{"too long", "eth0:0123456789ab", "eth0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddressLabel(tt.label, tt.ifname)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAddressLabel(%q, %q) error = %v, wantErr %v", tt.label, tt.ifname, err, tt.wantErr)
			}
		})
	}
}
