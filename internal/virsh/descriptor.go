package virsh

import (
	"fmt"
	"sort"
)

// Default tools.
const (
	ToolVirsh   = "virsh"
	ToolQemuImg = "qemu-img"
	ToolQemuNBD = "qemu-nbd"
)

// Shape is how the output of an operation is parsed.
type Shape int

const (
	ShapeRaw Shape = iota
	ShapeNone
	ShapeScalar
	ShapeKeyValue
	ShapeTable
	ShapeStats
	ShapeXML
	ShapeTune
)

var shapeNames = map[Shape]string{
	ShapeRaw:      "raw",
	ShapeNone:     "none",
	ShapeScalar:   "scalar",
	ShapeKeyValue: "key-value",
	ShapeTable:    "table",
	ShapeStats:    "stats",
	ShapeXML:      "xml",
	ShapeTune:     "tune",
}

func (s Shape) String() string {
	if n, ok := shapeNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// Checked reports whether the shape requires the command to succeed.
func (s Shape) Checked() bool {
	return s != ShapeRaw && s != ShapeNone
}

// Descriptor describes one operation.
type Descriptor struct {
	// Name is the logical operation name, e.g. "state".
	Name string
	// Tool is the executable. Empty means virsh.
	Tool string
	// Command holds the sub-command words, e.g. {"domstate"}. It is empty
	// for tools without sub-commands such as qemu-nbd.
	Command []string
	Shape   Shape
	// Overrides are applied on top of the caller's options.
	Overrides Options
	// Disabled options are always left off the command line.
	Disabled []string
	// RootKey selects the value returned by ShapeXML.
	RootKey string
	// ForceList names XML tags that always decode to lists.
	ForceList []string
	// SkipLeading makes ShapeStats read "<label> <key> <value>" lines.
	SkipLeading bool
	// Convert turns scalars into ints and key/value values into
	// bools and ints.
	Convert bool
	// DropHead and DropTail are lines removed around a ShapeTable before
	// the header is read.
	DropHead, DropTail int
	// OptionsFirst places options before positional arguments.
	OptionsFirst bool
	// Doc is a one-line description used by the CLI.
	Doc string
}

// Executable returns the tool the descriptor runs.
func (d Descriptor) Executable() string {
	if d.Tool == "" {
		return ToolVirsh
	}
	return d.Tool
}

// Registry indexes a static set of descriptors by name.
type Registry struct {
	group  string
	byName map[string]Descriptor
}

// NewRegistry indexes descriptors. It panics on duplicate names, since
// descriptor tables are package-level literals.
func NewRegistry(group string, descriptors ...Descriptor) *Registry {
	r := &Registry{group: group, byName: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if _, dup := r.byName[d.Name]; dup {
			panic(fmt.Sprintf("virsh: duplicate %s operation %q", group, d.Name))
		}
		r.byName[d.Name] = d
	}
	return r
}

// Group returns the registry's group name, e.g. "domain".
func (r *Registry) Group() string {
	return r.group
}

// Get returns the descriptor for name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// MustGet returns the descriptor for name or panics.
func (r *Registry) MustGet(name string) Descriptor {
	d, ok := r.byName[name]
	if !ok {
		panic(fmt.Sprintf("virsh: unknown %s operation %q", r.group, name))
	}
	return d
}

// Names returns the operation names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
