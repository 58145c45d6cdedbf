// Package ident generates identifiers for new domains and classifies the
// references users pass on the command line.
//
// UUID and MAC draw every character independently from Alphabet. They are
// meant for uniqueness on a lab host, not for security.
package ident

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Alphabet is the set of characters used by UUID and MAC.
const Alphabet = "abcdef0123456789"

// MACPrefix is the fixed vendor part of generated MAC addresses.
const MACPrefix = "54:52:00"

// UUID returns a random identifier shaped 8-4-4-4-12.
func UUID() string {
	return strings.Join([]string{
		randomString(8),
		randomString(4),
		randomString(4),
		randomString(4),
		randomString(12),
	}, "-")
}

// MAC returns a random MAC address under MACPrefix.
func MAC() string {
	return strings.Join([]string{
		MACPrefix,
		randomString(2),
		randomString(2),
		randomString(2),
	}, ":")
}

func randomString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = Alphabet[rand.IntN(len(Alphabet))] //nolint:gosec // not security sensitive
	}
	return string(b)
}

// RefKind says how a domain reference should be interpreted.
type RefKind int

const (
	RefName RefKind = iota
	RefID
	RefUUID
)

func (k RefKind) String() string {
	switch k {
	case RefID:
		return "id"
	case RefUUID:
		return "uuid"
	default:
		return "name"
	}
}

// Ref is a classified domain reference.
type Ref struct {
	Kind  RefKind
	Value string
	// ID is set when Kind is RefID.
	ID int
}

// ParseRef classifies s the way virsh resolves a domain argument: a
// non-negative integer is an id, an RFC 4122 string is a uuid, anything
// else is a name.
func ParseRef(s string) Ref {
	s = strings.TrimSpace(s)
	if id, err := strconv.Atoi(s); err == nil && id >= 0 && !strings.HasPrefix(s, "+") {
		return Ref{Kind: RefID, Value: s, ID: id}
	}
	if len(s) == 36 {
		if _, err := uuid.Parse(s); err == nil {
			return Ref{Kind: RefUUID, Value: strings.ToLower(s)}
		}
	}
	return Ref{Kind: RefName, Value: s}
}
