package kvm

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/jbweber/kvmctl/internal/textparse"
	"github.com/jbweber/kvmctl/internal/virsh"
)

// Domain states reported by virsh.
const (
	StateRunning   = "running"
	StateIdle      = "idle"
	StatePaused    = "paused"
	StateShutdown  = "in shutdown"
	StateShutOff   = "shut off"
	StateNoState   = "no state"
	StateCrashed   = "crashed"
	StateDying     = "dying"
	StateSuspended = "pmsuspended"
)

var (
	listDomains  = virsh.Descriptor{Name: "list", Command: []string{"list"}, Shape: virsh.ShapeRaw}
	listNetworks = virsh.Descriptor{Name: "net-list", Command: []string{"net-list"}, Shape: virsh.ShapeRaw}
)

// DomainInfo is one row of the domain listing.
type DomainInfo struct {
	// ID is -1 for inactive domains.
	ID    int    `json:"id" yaml:"id"`
	State string `json:"state" yaml:"state"`
	// Title is only filled when ListOptions.Title is set.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// ListOptions filter ListDomains. Each flag maps to the virsh list option
// of the same name.
type ListOptions struct {
	All                bool
	Inactive           bool
	Persistent         bool
	Transient          bool
	Autostart          bool
	NoAutostart        bool
	WithSnapshot       bool
	WithoutSnapshot    bool
	ManagedSave        bool
	WithManagedSave    bool
	WithoutManagedSave bool
	Title              bool
	// States keeps only domains in one of these states and implies All.
	States []string
	// Extra options are passed through; "name", "uuid" and "table" are
	// dropped since they change the output format.
	Extra virsh.Options
}

func (o ListOptions) options() virsh.Options {
	flags := []struct {
		name string
		set  bool
	}{
		{"all", o.All || len(o.States) > 0},
		{"inactive", o.Inactive},
		{"persistent", o.Persistent},
		{"transient", o.Transient},
		{"autostart", o.Autostart},
		{"no-autostart", o.NoAutostart},
		{"with-snapshot", o.WithSnapshot},
		{"without-snapshot", o.WithoutSnapshot},
		{"managed-save", o.ManagedSave},
		{"with-managed-save", o.WithManagedSave},
		{"without-managed-save", o.WithoutManagedSave},
		{"title", o.Title},
	}

	var opts virsh.Options
	for _, f := range flags {
		if f.set {
			opts = opts.Set(f.name, true)
		}
	}
	for _, extra := range o.Extra.Without("name", "uuid", "table").Active() {
		opts = opts.Set(extra.Name, extra.Value)
	}
	return opts
}

// ListDomains returns domains keyed by name.
func (h *Hypervisor) ListDomains(ctx context.Context, o ListOptions) (map[string]DomainInfo, error) {
	lines, err := h.runner.Lines(ctx, listDomains, nil, o.options())
	if err != nil {
		return nil, err
	}
	title := o.Title
	if v, ok := o.Extra.Get("title"); ok && v != false && v != nil {
		title = true
	}
	return parseDomainList(lines, title, o.States)
}

// twoWordStates maps the first word of a two-word state to its second.
var twoWordStates = map[string]string{"shut": "off", "in": "shutdown", "no": "state"}

// parseDomainList reads " Id   Name   State   [Title]" rows after the two
// header lines.
func parseDomainList(lines []string, withTitle bool, states []string) (map[string]DomainInfo, error) {
	domains := make(map[string]DomainInfo)
	if len(lines) <= 2 {
		return domains, nil
	}

	for _, line := range lines[2:] {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return nil, &textparse.FormatError{Line: line, Reason: "expected id, name and state"}
		}

		id, name, state, rest := fields[0], fields[1], fields[2], fields[3:]
		if second, ok := twoWordStates[state]; ok && len(rest) > 0 && rest[0] == second {
			state += " " + rest[0]
			rest = rest[1:]
		}

		info := DomainInfo{ID: -1, State: state}
		if id != "-" {
			n, err := strconv.Atoi(id)
			if err != nil {
				return nil, &textparse.FormatError{Line: line, Reason: "invalid domain id"}
			}
			info.ID = n
		}
		if withTitle {
			info.Title = strings.Join(rest, " ")
		}

		if len(states) > 0 && !slices.Contains(states, state) {
			continue
		}
		domains[name] = info
	}
	return domains, nil
}

// SortedNames returns the keys of a listing in order.
func SortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NetworkInfo is one row of the network listing.
type NetworkInfo struct {
	State     string `json:"state" yaml:"state"`
	Autostart bool   `json:"autostart" yaml:"autostart"`
	// Persistent is nil on virsh versions without the column.
	Persistent *bool `json:"persistent,omitempty" yaml:"persistent,omitempty"`
}

// NetListOptions filter ListNetworks.
type NetListOptions struct {
	All         bool
	Inactive    bool
	Persistent  bool
	Transient   bool
	Autostart   bool
	NoAutostart bool
}

func (o NetListOptions) options() virsh.Options {
	var opts virsh.Options
	for name, set := range map[string]bool{
		"all":          o.All,
		"inactive":     o.Inactive,
		"persistent":   o.Persistent,
		"transient":    o.Transient,
		"autostart":    o.Autostart,
		"no-autostart": o.NoAutostart,
	} {
		if set {
			opts = opts.Set(name, true)
		}
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Name < opts[j].Name })
	return opts
}

// ListNetworks returns virtual networks keyed by name.
func (h *Hypervisor) ListNetworks(ctx context.Context, o NetListOptions) (map[string]NetworkInfo, error) {
	lines, err := h.runner.Lines(ctx, listNetworks, nil, o.options())
	if err != nil {
		return nil, err
	}
	return parseNetworkList(lines)
}

func parseNetworkList(lines []string) (map[string]NetworkInfo, error) {
	networks := make(map[string]NetworkInfo)
	if len(lines) <= 2 {
		return networks, nil
	}

	for _, line := range lines[2:] {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return nil, &textparse.FormatError{Line: line, Reason: "expected name, state and autostart"}
		}
		name := fields[0]
		if _, dup := networks[name]; dup {
			continue
		}
		net := NetworkInfo{State: fields[1], Autostart: textparse.ConvertScalar(fields[2]) == true}
		if len(fields) == 4 {
			persistent := textparse.ConvertScalar(fields[3]) == true
			net.Persistent = &persistent
		}
		networks[name] = net
	}
	return networks, nil
}
