package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "floe.hcl")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const validConfig = `
schema_version = "1"

defaults {
  route_metric = 100
}

interface "eth0" {
  method  = "manual"
  gateway = "192.168.1.1"

  address {
    cidr = "192.168.1.10/24"
  }

  route {
    destination = "10.0.0.0/8"
    gateway     = "192.168.1.254"
    metric      = 50
  }

  dns {
    servers = ["1.1.1.1", "9.9.9.9"]
    search  = ["example.org"]
  }
}
`

func TestRunCheck_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, validConfig)

	if err := RunCheck(configPath, false); err != nil {
		t.Errorf("RunCheck() error = %v, want nil", err)
	}
}

func TestRunCheck_Verbose(t *testing.T) {
	configPath := writeConfig(t, validConfig)

	if err := RunCheck(configPath, true); err != nil {
		t.Errorf("RunCheck() verbose error = %v, want nil", err)
	}
}

func TestRunCheck_ParseError(t *testing.T) {
	configPath := writeConfig(t, `
interface "eth0" {
    # missing closing brace
`)

	if err := RunCheck(configPath, false); err == nil {
		t.Error("RunCheck() error = nil, want parse error")
	}
}

func TestRunCheck_ValidationError(t *testing.T) {
	configPath := writeConfig(t, `
interface "eth0" {
  method  = "manual"
  gateway = "not-an-ip"

  address {
    cidr = "192.168.1.10/24"
  }
}
`)

	if err := RunCheck(configPath, false); err == nil {
		t.Error("RunCheck() error = nil, want validation error")
	}
}

func TestRunCheck_MissingFile(t *testing.T) {
	if err := RunCheck("", false); err == nil {
		t.Error("RunCheck(\"\") error = nil, want usage error")
	}
	if err := RunCheck(filepath.Join(t.TempDir(), "absent.hcl"), false); err == nil {
		t.Error("RunCheck(absent) error = nil, want read error")
	}
}
