package xmlmap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pairs builds a Mapping from alternating keys and values.
func pairs(kv ...any) Mapping {
	m := New()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1])
	}
	return m
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

const domainXML = `<?xml version="1.0"?>
<domain type="kvm" xmlns:qemu="http://libvirt.org/schemas/domain/qemu/1.0">
  <!-- generated -->
  <name>web01</name>
  <memory unit="KiB">2097152</memory>
  <vcpu>2</vcpu>
  <os>
    <type arch="x86_64" machine="pc">hvm</type>
    <boot dev="hd"/>
  </os>
  <features>
    <acpi/>
    <apic/>
  </features>
  <devices>
    <disk type="file" device="disk">
      <source file="/var/lib/libvirt/images/web01.qcow2"/>
      <target dev="vda" bus="virtio"/>
    </disk>
    <interface type="bridge">
      <mac address="54:52:00:aa:bb:cc"/>
      <source bridge="br0"/>
    </interface>
    <interface type="bridge">
      <mac address="54:52:00:dd:ee:ff"/>
      <source bridge="br1"/>
    </interface>
  </devices>
  <qemu:commandline>
    <qemu:arg value="-s"/>
  </qemu:commandline>
</domain>`

func TestDecodeRules(t *testing.T) {
	m, err := DecodeString(domainXML)
	require.NoError(t, err)

	root, ok := m.Get("domain")
	require.True(t, ok)
	domain := root.(Mapping)

	// attributes come first, children follow in document order
	keys := []string{}
	for p := domain.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"@type", "@xmlns:qemu", "name", "memory", "vcpu", "os", "features", "devices", "qemu:commandline"}, keys)

	name, _ := LookupString(m, "domain", "name")
	assert.Equal(t, "web01", name)

	mem, _ := Lookup(m, "domain", "memory")
	assert.JSONEq(t, `{"@unit":"KiB","#text":"2097152"}`, toJSON(t, mem))

	acpi, _ := Lookup(m, "domain", "features", "acpi")
	assert.Equal(t, true, acpi)

	boot, _ := Lookup(m, "domain", "os", "boot")
	assert.JSONEq(t, `{"@dev":"hd"}`, toJSON(t, boot))

	disk, _ := Lookup(m, "domain", "devices", "disk")
	_, isList := disk.([]any)
	assert.False(t, isList, "single disk is not a list without forcing")

	ifaces, _ := Lookup(m, "domain", "devices", "interface")
	require.IsType(t, []any{}, ifaces)
	assert.Len(t, ifaces, 2)

	bridge, _ := Lookup(m, "domain", "devices", "interface", "1", "source", "@bridge")
	assert.Equal(t, "br1", bridge)

	arg, _ := Lookup(m, "domain", "qemu:commandline", "qemu:arg", "@value")
	assert.Equal(t, "-s", arg)
}

func TestDecodeForceList(t *testing.T) {
	m, err := DecodeString(domainXML, "disk", "interface")
	require.NoError(t, err)

	disk, _ := Lookup(m, "domain", "devices", "disk")
	require.IsType(t, []any{}, disk)
	assert.Len(t, disk, 1)

	ifaces, _ := Lookup(m, "domain", "devices", "interface")
	assert.Len(t, ifaces, 2)
}

func TestDecodeErrors(t *testing.T) {
	tests := []string{
		"",
		"<domain><name>x</domain>",
		"not xml at all",
		"<domain>",
	}
	for _, doc := range tests {
		_, err := DecodeString(doc)
		assert.Error(t, err, "doc %q", doc)
	}
}

func TestEncode(t *testing.T) {
	m := pairs(
		"@type", "kvm",
		"name", "web01",
		"memory", pairs("@unit", "KiB", "#text", "1048576"),
		"features", pairs("acpi", true, "pae", false),
		"devices", pairs(
			"disk", []any{
				pairs("@type", "file", "source", pairs("@file", "/a.qcow2")),
				pairs("@type", "file", "source", pairs("@file", "/b & c.qcow2")),
			},
		),
	)

	got, err := EncodeString("domain", m)
	require.NoError(t, err)

	want := `<domain type="kvm">
  <name>web01</name>
  <memory unit="KiB">1048576</memory>
  <features>
    <acpi/>
  </features>
  <devices>
    <disk type="file">
      <source file="/a.qcow2"/>
    </disk>
    <disk type="file">
      <source file="/b &amp; c.qcow2"/>
    </disk>
  </devices>
</domain>
`
	assert.Equal(t, want, got)
}

func TestEncodePlainMapSortsKeys(t *testing.T) {
	got, err := EncodeString("network", map[string]any{
		"name":   "default",
		"bridge": map[string]any{"@name": "virbr0"},
	})
	require.NoError(t, err)
	assert.Equal(t, "<network>\n  <bridge name=\"virbr0\"/>\n  <name>default</name>\n</network>\n", got)
}

func TestEncodeInvalidName(t *testing.T) {
	_, err := Encode("domain", pairs("", "x"))
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		m    Mapping
	}{
		{
			name: "scalars and presence",
			m:    pairs("name", "web01", "acpi", true),
		},
		{
			name: "attributes with text",
			m:    pairs("@type", "kvm", "memory", pairs("@unit", "KiB", "#text", "2048")),
		},
		{
			name: "repeated siblings",
			m: pairs("devices", pairs(
				"interface", []any{
					pairs("@type", "bridge", "source", pairs("@bridge", "br0")),
					pairs("@type", "network", "source", pairs("@network", "default")),
				},
			)),
		},
		{
			name: "namespaced",
			m:    pairs("@xmlns:qemu", "urn:x", "qemu:commandline", pairs("qemu:arg", pairs("@value", "-s"))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Encode("domain", tt.m)
			require.NoError(t, err)

			back, err := DecodeString(string(doc))
			require.NoError(t, err)

			assert.JSONEq(t, toJSON(t, pairs("domain", tt.m)), toJSON(t, back))
		})
	}
}

func TestRoundTripDocument(t *testing.T) {
	m, err := DecodeString(domainXML)
	require.NoError(t, err)
	domain, _ := m.Get("domain")

	doc, err := Encode("domain", domain)
	require.NoError(t, err)

	back, err := DecodeString(string(doc))
	require.NoError(t, err)
	assert.JSONEq(t, toJSON(t, m), toJSON(t, back))
}

func TestLookup(t *testing.T) {
	m := pairs("a", pairs("b", []any{"x", "y"}))

	v, ok := Lookup(m, "a", "b", "1")
	assert.True(t, ok)
	assert.Equal(t, "y", v)

	_, ok = Lookup(m, "a", "b", "2")
	assert.False(t, ok)

	_, ok = Lookup(m, "a", "c")
	assert.False(t, ok)

	_, ok = Lookup(m, "a", "b", "1", "deeper")
	assert.False(t, ok)
}

func TestDecodeYAML(t *testing.T) {
	doc := `'@type': kvm
name: web
memory:
  '@unit': KiB
  '#text': '2097152'
vcpu: 2
features:
  acpi: true
  pae: false
devices:
  disk:
    - '@device': disk
    - '@device': cdrom
`
	m, err := DecodeYAML([]byte(doc))
	require.NoError(t, err)

	acpi, _ := Lookup(m, "features", "acpi")
	assert.Equal(t, true, acpi)
	vcpu, _ := Lookup(m, "vcpu")
	assert.Equal(t, "2", vcpu)

	got, err := EncodeString("domain", m)
	require.NoError(t, err)
	assert.Equal(t, `<domain type="kvm">
  <name>web</name>
  <memory unit="KiB">2097152</memory>
  <vcpu>2</vcpu>
  <features>
    <acpi/>
  </features>
  <devices>
    <disk device="disk"/>
    <disk device="cdrom"/>
  </devices>
</domain>
`, got)
}

func TestDecodeYAMLErrors(t *testing.T) {
	for _, doc := range []string{"", "- a\n- b\n", "a: [\n"} {
		_, err := DecodeYAML([]byte(doc))
		assert.Error(t, err, "document %q", doc)
	}
}

func TestUnwrap(t *testing.T) {
	inner := pairs("name", "web")

	assert.Same(t, inner, Unwrap(pairs("domain", inner), "domain"))
	assert.Same(t, inner, Unwrap(inner, "domain"))

	twoKeys := pairs("domain", inner, "extra", true)
	assert.Same(t, twoKeys, Unwrap(twoKeys, "domain"))

	scalar := pairs("domain", "text")
	assert.Same(t, scalar, Unwrap(scalar, "domain"))
}
