package output

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/kvmctl/internal/kvm"
	"github.com/jbweber/kvmctl/internal/xmlmap"
)

// YAMLFormatter formats results as YAML.
type YAMLFormatter struct{}

// FormatDomains formats a domain listing as a YAML mapping keyed by name.
func (f *YAMLFormatter) FormatDomains(domains map[string]kvm.DomainInfo) (string, error) {
	return marshalYAML(domains)
}

// FormatNetworks formats a network listing as a YAML mapping keyed by name.
func (f *YAMLFormatter) FormatNetworks(networks map[string]kvm.NetworkInfo) (string, error) {
	return marshalYAML(networks)
}

// FormatValue formats a parsed result as YAML. XML mappings keep their
// document order.
func (f *YAMLFormatter) FormatValue(v any) (string, error) {
	node, err := toNode(v)
	if err != nil {
		return "", err
	}
	return marshalYAML(node)
}

func marshalYAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return buf.String(), nil
}

// toNode converts v to a yaml.Node, walking ordered mappings and lists by
// hand since yaml.v3 would otherwise sort their keys.
func toNode(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case xmlmap.Mapping:
		node := &yaml.Node{Kind: yaml.MappingNode}
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			child, err := toNode(pair.Value)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: pair.Key}, child)
		}
		return node, nil
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range val {
			child, err := toNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	default:
		node := &yaml.Node{}
		if err := node.Encode(val); err != nil {
			return nil, fmt.Errorf("failed to encode %T: %w", val, err)
		}
		return node, nil
	}
}
