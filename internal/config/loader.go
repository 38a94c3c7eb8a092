package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Load reads, decodes and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadBytes(path, data)
}

// LoadBytes decodes and validates config from bytes. The filename is
// used for diagnostics and must carry an .hcl suffix.
func LoadBytes(filename string, data []byte) (*Config, error) {
	var cfg Config
	if err := hclsimple.Decode(filename, data, nil, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Diagnostic is one parser finding with its position.
type Diagnostic struct {
	Severity string `json:"severity"` // "error" or "warning"
	Summary  string `json:"summary"`
	Detail   string `json:"detail,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

// ParseDiagnostics runs only the HCL parser over the source and
// returns its findings with positions. The error is non-nil when any
// diagnostic is an error.
func ParseDiagnostics(data []byte, filename string) ([]Diagnostic, error) {
	parser := hclparse.NewParser()

	_, diags := parser.ParseHCL(data, filename)

	var result []Diagnostic
	for _, d := range diags {
		diag := Diagnostic{
			Summary: d.Summary,
			Detail:  d.Detail,
		}
		if d.Severity == hcl.DiagError {
			diag.Severity = "error"
		} else {
			diag.Severity = "warning"
		}
		if d.Subject != nil {
			diag.Line = d.Subject.Start.Line
			diag.Column = d.Subject.Start.Column
		}
		result = append(result, diag)
	}

	if diags.HasErrors() {
		return result, fmt.Errorf("HCL has errors")
	}
	return result, nil
}
