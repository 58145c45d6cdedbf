package xmlmap

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

type frame struct {
	tag      string
	attrs    []xml.Attr
	text     strings.Builder
	children Mapping
}

// DecodeString decodes an XML document held in a string.
func DecodeString(doc string, forceList ...string) (Mapping, error) {
	return Decode(strings.NewReader(doc), forceList...)
}

// Decode reads one XML document from r and returns {rootTag: value}.
func Decode(r io.Reader, forceList ...string) (Mapping, error) {
	force := make(map[string]bool, len(forceList))
	for _, tag := range forceList {
		force[tag] = true
	}

	dec := xml.NewDecoder(r)
	var stack []*frame
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			if len(stack) > 0 {
				return nil, fmt.Errorf("failed to decode XML: unclosed <%s>", stack[len(stack)-1].tag)
			}
			return nil, fmt.Errorf("failed to decode XML: no root element")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, &frame{tag: qualified(t.Name), attrs: t.Attr})

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("failed to decode XML: unexpected </%s>", qualified(t.Name))
			}
			top := stack[len(stack)-1]
			if name := qualified(t.Name); name != top.tag {
				return nil, fmt.Errorf("failed to decode XML: element <%s> closed by </%s>", top.tag, name)
			}
			stack = stack[:len(stack)-1]

			value := top.value()
			if len(stack) == 0 {
				root := New()
				root.Set(top.tag, value)
				return root, nil
			}
			parent := stack[len(stack)-1]
			if parent.children == nil {
				parent.children = New()
			}
			merge(parent.children, top.tag, value, force[top.tag])
		}
	}
}

func (f *frame) value() any {
	text := strings.TrimSpace(f.text.String())

	switch {
	case f.children == nil && len(f.attrs) == 0 && text == "":
		return true
	case f.children == nil && len(f.attrs) == 0:
		return text
	}

	m := New()
	for _, a := range f.attrs {
		m.Set("@"+qualified(a.Name), a.Value)
	}
	if f.children == nil {
		if text != "" {
			m.Set("#text", text)
		}
		return m
	}
	for pair := f.children.Oldest(); pair != nil; pair = pair.Next() {
		m.Set(pair.Key, pair.Value)
	}
	return m
}

func merge(m Mapping, tag string, value any, forceList bool) {
	existing, ok := m.Get(tag)
	switch {
	case !ok && forceList:
		m.Set(tag, []any{value})
	case !ok:
		m.Set(tag, value)
	default:
		if list, isList := existing.([]any); isList {
			m.Set(tag, append(list, value))
		} else {
			m.Set(tag, []any{existing, value})
		}
	}
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
