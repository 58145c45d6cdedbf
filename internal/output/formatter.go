// Package output renders kvmctl results as tables, YAML or JSON.
package output

import (
	"fmt"
	"strings"

	"github.com/jbweber/kvmctl/internal/kvm"
)

// Format names an output encoding selected with --output.
type Format string

const (
	FormatTable Format = "table"
	// FormatYAML keeps the document order of parsed XML.
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Formats lists every supported format in the order help text shows them.
var Formats = []Format{FormatTable, FormatYAML, FormatJSON}

// Formatter renders the listings and parsed results commands print.
type Formatter interface {
	FormatDomains(domains map[string]kvm.DomainInfo) (string, error)
	FormatNetworks(networks map[string]kvm.NetworkInfo) (string, error)

	// FormatValue renders any parsed command result: a scalar, a key/value
	// map, table rows, cpu-stats sections or an XML mapping.
	FormatValue(v any) (string, error)
}

// Options selects a Formatter. NoHeaders only affects tables.
type Options struct {
	Format    Format
	NoHeaders bool
}

// NewFormatter returns the Formatter for opts.Format.
func NewFormatter(opts Options) (Formatter, error) {
	switch opts.Format {
	case FormatTable:
		return &TableFormatter{NoHeaders: opts.NoHeaders}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	}
	return nil, unknownFormat(string(opts.Format))
}

// ValidateFormat reports whether format names a supported Format.
func ValidateFormat(format string) error {
	for _, f := range Formats {
		if Format(format) == f {
			return nil
		}
	}
	return unknownFormat(format)
}

func unknownFormat(format string) error {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return fmt.Errorf("unknown output format %q: want one of %s", format, strings.Join(names, ", "))
}
