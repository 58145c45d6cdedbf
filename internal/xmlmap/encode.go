package xmlmap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

const indent = "  "

// EncodeString is Encode returning a string.
func EncodeString(tag string, value any) (string, error) {
	b, err := Encode(tag, value)
	return string(b), err
}

// Encode renders value as an XML element named tag, indented by two spaces
// per level and terminated by a newline.
//
// Besides Mapping, value may be a map[string]any (written in key order),
// a list or a scalar.
func Encode(tag string, value any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeElement(&buf, tag, value, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type entry struct {
	key   string
	value any
}

func entries(value any) ([]entry, bool) {
	switch v := value.(type) {
	case Mapping:
		out := make([]entry, 0, v.Len())
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			out = append(out, entry{pair.Key, pair.Value})
		}
		return out, true
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]entry, 0, len(v))
		for _, k := range keys {
			out = append(out, entry{k, v[k]})
		}
		return out, true
	}
	return nil, false
}

func writeElement(buf *bytes.Buffer, tag string, value any, depth int) error {
	if tag == "" || strings.HasPrefix(tag, "@") || tag == "#text" {
		return fmt.Errorf("failed to encode XML: invalid element name %q", tag)
	}
	pad := strings.Repeat(indent, depth)

	switch v := value.(type) {
	case nil:
		return nil
	case bool:
		if v {
			fmt.Fprintf(buf, "%s<%s/>\n", pad, tag)
		}
		return nil
	case []any:
		for _, item := range v {
			if err := writeElement(buf, tag, item, depth); err != nil {
				return err
			}
		}
		return nil
	case []Mapping:
		for _, item := range v {
			if err := writeElement(buf, tag, item, depth); err != nil {
				return err
			}
		}
		return nil
	case []map[string]any:
		for _, item := range v {
			if err := writeElement(buf, tag, item, depth); err != nil {
				return err
			}
		}
		return nil
	case []string:
		for _, item := range v {
			if err := writeElement(buf, tag, item, depth); err != nil {
				return err
			}
		}
		return nil
	}

	items, isMap := entries(value)
	if !isMap {
		text := fmt.Sprint(value)
		if text == "" {
			fmt.Fprintf(buf, "%s<%s/>\n", pad, tag)
			return nil
		}
		fmt.Fprintf(buf, "%s<%s>", pad, tag)
		escape(buf, text)
		fmt.Fprintf(buf, "</%s>\n", tag)
		return nil
	}

	var text string
	var children []entry
	fmt.Fprintf(buf, "%s<%s", pad, tag)
	for _, e := range items {
		switch {
		case strings.HasPrefix(e.key, "@"):
			fmt.Fprintf(buf, ` %s="`, e.key[1:])
			escape(buf, fmt.Sprint(e.value))
			buf.WriteByte('"')
		case e.key == "#text":
			text = fmt.Sprint(e.value)
		case e.value == nil || e.value == false:
		default:
			children = append(children, e)
		}
	}

	switch {
	case len(children) == 0 && text == "":
		buf.WriteString("/>\n")
		return nil
	case len(children) == 0:
		buf.WriteByte('>')
		escape(buf, text)
		fmt.Fprintf(buf, "</%s>\n", tag)
		return nil
	}

	buf.WriteString(">")
	escape(buf, text)
	buf.WriteByte('\n')
	for _, c := range children {
		if err := writeElement(buf, c.key, c.value, depth+1); err != nil {
			return err
		}
	}
	fmt.Fprintf(buf, "%s</%s>\n", pad, tag)
	return nil
}

func escape(buf *bytes.Buffer, s string) {
	// EscapeText only fails when the writer does
	_ = xml.EscapeText(buf, []byte(s))
}
