package ident

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	uuidPattern = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`)
	macPattern  = regexp.MustCompile(`^54:52:00:[a-f0-9]{2}:[a-f0-9]{2}:[a-f0-9]{2}$`)
)

func TestUUIDFormat(t *testing.T) {
	seen := make(map[string]bool)
	for range 500 {
		u := UUID()
		assert.Regexp(t, uuidPattern, u)
		seen[u] = true
	}
	assert.Greater(t, len(seen), 490, "generated uuids should not repeat")
}

func TestMACFormat(t *testing.T) {
	for range 500 {
		assert.Regexp(t, macPattern, MAC())
	}
}

func TestAlphabetCoverage(t *testing.T) {
	counts := make(map[rune]int)
	for range 200 {
		for _, r := range UUID() {
			if r != '-' {
				counts[r]++
			}
		}
	}
	assert.Len(t, counts, len(Alphabet))
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in   string
		kind RefKind
		id   int
	}{
		{"42", RefID, 42},
		{"0", RefID, 0},
		{"-1", RefName, 0},
		{"web01", RefName, 0},
		{"4dea22b3-1d52-d8f3-2516-782e98ab3fa0", RefUUID, 0},
		{"4DEA22B3-1D52-D8F3-2516-782E98AB3FA0", RefUUID, 0},
		{"4dea22b3-1d52-d8f3-2516-782e98ab3fa", RefName, 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ref := ParseRef(tt.in)
			assert.Equal(t, tt.kind, ref.Kind)
			assert.Equal(t, tt.id, ref.ID)
		})
	}
}

func TestParseRefUUIDLowercased(t *testing.T) {
	ref := ParseRef("4DEA22B3-1D52-D8F3-2516-782E98AB3FA0")
	assert.Equal(t, "4dea22b3-1d52-d8f3-2516-782e98ab3fa0", ref.Value)
	assert.Equal(t, "uuid", ref.Kind.String())
}
