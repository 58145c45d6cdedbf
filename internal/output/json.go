package output

import (
	"encoding/json"
	"fmt"

	"github.com/jbweber/kvmctl/internal/kvm"
)

// JSONFormatter formats results as indented JSON. XML mappings marshal
// themselves in document order.
type JSONFormatter struct{}

// FormatDomains formats a domain listing as a JSON object keyed by name.
func (f *JSONFormatter) FormatDomains(domains map[string]kvm.DomainInfo) (string, error) {
	return marshalJSON(domains)
}

// FormatNetworks formats a network listing as a JSON object keyed by name.
func (f *JSONFormatter) FormatNetworks(networks map[string]kvm.NetworkInfo) (string, error) {
	return marshalJSON(networks)
}

// FormatValue formats a parsed result as JSON.
func (f *JSONFormatter) FormatValue(v any) (string, error) {
	return marshalJSON(v)
}

func marshalJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data) + "\n", nil
}
