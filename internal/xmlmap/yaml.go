package xmlmap

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DecodeYAML reads a YAML document, such as the YAML rendering of a decoded
// XML document, into a Mapping. Key order is kept, booleans stay booleans
// so presence-only elements survive, and every other scalar is a string.
func DecodeYAML(data []byte) (Mapping, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("failed to parse YAML: empty document")
	}

	v, err := fromNode(doc.Content[0])
	if err != nil {
		return nil, err
	}
	m, ok := v.(Mapping)
	if !ok {
		return nil, fmt.Errorf("failed to parse YAML: document is not a mapping")
	}
	return m, nil
}

func fromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.MappingNode:
		m := New()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("failed to parse YAML: line %d: mapping keys must be scalars", key.Line)
			}
			v, err := fromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(key.Value, v)
		}
		return m, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := fromNode(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return nil, nil
		case "!!bool":
			b, err := strconv.ParseBool(n.Value)
			if err != nil {
				// YAML 1.1 spellings such as "yes" are not booleans in yaml.v3
				return n.Value, nil
			}
			return b, nil
		}
		return n.Value, nil
	}
	return nil, fmt.Errorf("failed to parse YAML: line %d: unsupported node", n.Line)
}

// Unwrap returns the value under root when m is exactly {root: Mapping},
// and m itself otherwise. It accepts both Decode results and the unwrapped
// mappings returned by the facades.
func Unwrap(m Mapping, root string) Mapping {
	if m.Len() != 1 {
		return m
	}
	if inner, ok := m.Get(root); ok {
		if mm, ok := inner.(Mapping); ok {
			return mm
		}
	}
	return m
}
