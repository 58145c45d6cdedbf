package xmlmap

import (
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Mapping is an insertion-ordered map. Values are string, bool, Mapping or
// []any.
type Mapping = *orderedmap.OrderedMap[string, any]

// New returns an empty Mapping.
func New() Mapping {
	return orderedmap.New[string, any]()
}

// Lookup walks m along path. A numeric segment indexes into a list.
func Lookup(m Mapping, path ...string) (any, bool) {
	var cur any = m
	for _, seg := range path {
		switch v := cur.(type) {
		case Mapping:
			next, ok := v.Get(seg)
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(v) {
				return nil, false
			}
			cur = v[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// LookupString is Lookup for string leaves. An attribute-only element's
// "#text" is returned when the path ends on a Mapping.
func LookupString(m Mapping, path ...string) (string, bool) {
	v, ok := Lookup(m, path...)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case Mapping:
		if text, ok := t.Get("#text"); ok {
			s, isString := text.(string)
			return s, isString
		}
	}
	return "", false
}
