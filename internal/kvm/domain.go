package kvm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"libvirt.org/go/libvirtxml"

	"github.com/jbweber/kvmctl/internal/lifecycle"
	"github.com/jbweber/kvmctl/internal/textparse"
	"github.com/jbweber/kvmctl/internal/transport"
	"github.com/jbweber/kvmctl/internal/virsh"
	"github.com/jbweber/kvmctl/internal/xmlmap"
)

// Domains is the domain facade of a Hypervisor.
type Domains struct {
	h *Hypervisor
}

func (d Domains) exec(ctx context.Context, op string, args []string, opts []virsh.Option) (transport.Result, error) {
	return d.h.runner.Exec(ctx, domainOps.MustGet(op), args, opts)
}

// Start boots a defined domain.
func (d Domains) Start(ctx context.Context, name string, opts ...virsh.Option) (transport.Result, error) {
	return d.exec(ctx, "start", []string{name}, opts)
}

// Create starts a transient domain from an XML file on the host.
func (d Domains) Create(ctx context.Context, path string, opts ...virsh.Option) (transport.Result, error) {
	return d.exec(ctx, "create", []string{path}, opts)
}

// Shutdown asks the guest to shut down and returns immediately.
func (d Domains) Shutdown(ctx context.Context, name string, opts ...virsh.Option) (transport.Result, error) {
	return d.exec(ctx, "shutdown", []string{name}, opts)
}

// Destroy stops a domain immediately.
func (d Domains) Destroy(ctx context.Context, name string, opts ...virsh.Option) (transport.Result, error) {
	return d.exec(ctx, "destroy", []string{name}, opts)
}

// Reboot asks the guest to reboot.
func (d Domains) Reboot(ctx context.Context, name string, opts ...virsh.Option) (transport.Result, error) {
	return d.exec(ctx, "reboot", []string{name}, opts)
}

// Reset hard-resets a domain.
func (d Domains) Reset(ctx context.Context, name string) (transport.Result, error) {
	return d.exec(ctx, "reset", []string{name}, nil)
}

// Suspend pauses a domain.
func (d Domains) Suspend(ctx context.Context, name string) (transport.Result, error) {
	return d.exec(ctx, "suspend", []string{name}, nil)
}

// Resume unpauses a domain.
func (d Domains) Resume(ctx context.Context, name string) (transport.Result, error) {
	return d.exec(ctx, "resume", []string{name}, nil)
}

// Define defines a domain from an XML file on the host.
func (d Domains) Define(ctx context.Context, path string, opts ...virsh.Option) (transport.Result, error) {
	return d.exec(ctx, "define", []string{path}, opts)
}

// DefineXML defines a domain from an XML document fed on stdin.
func (d Domains) DefineXML(ctx context.Context, doc string) (transport.Result, error) {
	cmd := d.h.runner.Build(domainOps.MustGet("define"), []string{"/dev/stdin"}, nil)
	cmd.Stdin = doc
	return d.h.runner.Execute(ctx, cmd)
}

// DefineMapping encodes a domain mapping, shaped like the result of DumpXML
// with or without its "domain" root, and defines it through DefineXML.
func (d Domains) DefineMapping(ctx context.Context, m xmlmap.Mapping) (transport.Result, error) {
	doc, err := xmlmap.EncodeString("domain", xmlmap.Unwrap(m, "domain"))
	if err != nil {
		return transport.Result{}, err
	}
	return d.DefineXML(ctx, doc)
}

// Undefine removes a domain's persistent configuration.
func (d Domains) Undefine(ctx context.Context, name string, opts ...virsh.Option) (transport.Result, error) {
	return d.exec(ctx, "undefine", []string{name}, opts)
}

// Autostart turns autostart on, or off with disable.
func (d Domains) Autostart(ctx context.Context, name string, disable bool) (transport.Result, error) {
	return d.exec(ctx, "autostart", []string{name}, virsh.Options{virsh.Opt("disable", disable)})
}

// State returns the domain state, one of the State constants.
func (d Domains) State(ctx context.Context, name string) (string, error) {
	return d.h.runner.RunScalar(ctx, domainOps.MustGet("state"), []string{name}, nil)
}

// ID returns the domain id, or -1 when it is not running.
func (d Domains) ID(ctx context.Context, name string) (int, error) {
	return d.h.runner.RunInt(ctx, domainOps.MustGet("id"), []string{name}, nil)
}

// UUID returns the domain uuid.
func (d Domains) UUID(ctx context.Context, name string) (string, error) {
	return d.h.runner.RunScalar(ctx, domainOps.MustGet("uuid"), []string{name}, nil)
}

// Name returns the name of the domain with the given id or uuid.
func (d Domains) Name(ctx context.Context, ref string) (string, error) {
	return d.h.runner.RunScalar(ctx, domainOps.MustGet("name"), []string{ref}, nil)
}

// Info returns "virsh dominfo" with numbers and yes/no converted.
func (d Domains) Info(ctx context.Context, name string) (map[string]any, error) {
	return d.h.keyValue(ctx, domainOps.MustGet("info"), []string{name}, nil)
}

// DumpXML returns the domain configuration under <domain>. Disks,
// interfaces, controllers, channels, graphics and host devices are always
// lists.
func (d Domains) DumpXML(ctx context.Context, name string, opts ...virsh.Option) (xmlmap.Mapping, error) {
	return d.h.mapping(ctx, domainOps.MustGet("dumpxml"), []string{name}, opts)
}

// XML returns the domain configuration document as text.
func (d Domains) XML(ctx context.Context, name string, opts ...virsh.Option) (string, error) {
	lines, err := d.h.runner.Lines(ctx, domainOps.MustGet("dumpxml"), []string{name}, opts)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

// Config returns a typed summary of the domain configuration.
func (d Domains) Config(ctx context.Context, name string) (*DomainConfig, error) {
	doc, err := d.XML(ctx, name)
	if err != nil {
		return nil, err
	}
	return ParseDomainConfig(doc)
}

// IfList returns the domain's network interfaces.
func (d Domains) IfList(ctx context.Context, name string) ([]map[string]string, error) {
	return d.h.runner.RunTable(ctx, domainOps.MustGet("iflist"), []string{name}, nil)
}

// BlkList returns the domain's block devices.
func (d Domains) BlkList(ctx context.Context, name string, opts ...virsh.Option) ([]map[string]string, error) {
	return d.h.runner.RunTable(ctx, domainOps.MustGet("blklist"), []string{name}, opts)
}

// IfStat returns the counters of one interface, e.g. "rx_bytes".
func (d Domains) IfStat(ctx context.Context, name, iface string) (map[string]string, error) {
	return d.h.runner.RunStats(ctx, domainOps.MustGet("ifstat"), []string{name, iface}, nil)
}

// BlkStat returns the counters of one block device. The human-readable
// output mode is never requested.
func (d Domains) BlkStat(ctx context.Context, name, device string, opts ...virsh.Option) (map[string]string, error) {
	return d.h.runner.RunStats(ctx, domainOps.MustGet("blkstat"), []string{name, device}, opts)
}

// MemStat returns the balloon memory statistics.
func (d Domains) MemStat(ctx context.Context, name string) (map[string]string, error) {
	return d.h.runner.RunStats(ctx, domainOps.MustGet("memstat"), []string{name}, nil)
}

// SchedInfo reads scheduler parameters, or sets them when opts carry more
// than a config, live or current scope. Reading returns map[string]any,
// setting returns a transport.Result.
func (d Domains) SchedInfo(ctx context.Context, name string, opts ...virsh.Option) (any, error) {
	return d.h.runner.Run(ctx, domainOps.MustGet("schedinfo"), []string{name}, opts)
}

// MemTune reads or sets memory limits, like SchedInfo.
func (d Domains) MemTune(ctx context.Context, name string, opts ...virsh.Option) (any, error) {
	return d.h.runner.Run(ctx, domainOps.MustGet("memtune"), []string{name}, opts)
}

// BlkIOTune reads or sets block I/O weights, like SchedInfo.
func (d Domains) BlkIOTune(ctx context.Context, name string, opts ...virsh.Option) (any, error) {
	return d.h.runner.Run(ctx, domainOps.MustGet("blkiotune"), []string{name}, opts)
}

// CPUStats returns CPU time per physical CPU ("cpu0", ...) and "total".
func (d Domains) CPUStats(ctx context.Context, name string, opts ...virsh.Option) (map[string]map[string]string, error) {
	lines, err := d.h.runner.Lines(ctx, domainOps.MustGet("cpustats"), []string{name}, opts)
	if err != nil {
		return nil, err
	}
	return textparse.ParseCPUStats(lines)
}

// Time returns the guest clock as reported by its agent.
func (d Domains) Time(ctx context.Context, name string) (time.Time, error) {
	lines, err := d.h.runner.Lines(ctx, domainOps.MustGet("time"), []string{name}, nil)
	if err != nil {
		return time.Time{}, err
	}
	if len(lines) == 0 {
		return time.Time{}, &textparse.FormatError{Reason: "empty domtime output"}
	}
	_, value, ok := strings.Cut(lines[0], ":")
	if !ok {
		return time.Time{}, &textparse.FormatError{Line: lines[0], Reason: "missing ':' separator"}
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return time.Time{}, &textparse.FormatError{Line: lines[0], Reason: "invalid epoch"}
	}
	return time.Unix(secs, 0), nil
}

// Exists reports whether a domain of that name is defined, running or not.
func (d Domains) Exists(ctx context.Context, name string) (bool, error) {
	domains, err := d.h.ListDomains(ctx, ListOptions{All: true})
	if err != nil {
		return false, err
	}
	_, ok := domains[name]
	return ok, nil
}

// StopOptions tune Stop.
type StopOptions struct {
	// Timeout defaults to 30 seconds.
	Timeout time.Duration
	// Interval between state polls, defaults to 1 second.
	Interval time.Duration
	// Force destroys the domain once Timeout has passed.
	Force bool
}

// Stop shuts the domain down and waits for it to be shut off, destroying it
// after the timeout when forced. See lifecycle.Stop.
func (d Domains) Stop(ctx context.Context, name string, o StopOptions) (lifecycle.Outcome, error) {
	return lifecycle.Stop(ctx, Controller(d), name, lifecycle.Options{
		Timeout:  o.Timeout,
		Interval: o.Interval,
		Force:    o.Force,
		Clock:    d.h.clock,
		Log:      d.h.log,
	})
}

// Controller adapts the facade to lifecycle.Controller.
func Controller(d Domains) lifecycle.Controller {
	return controller{d: d}
}

type controller struct {
	d Domains
}

func (c controller) Exists(ctx context.Context, name string) (bool, error) {
	return c.d.Exists(ctx, name)
}

func (c controller) Shutdown(ctx context.Context, name string) (transport.Result, error) {
	return c.d.Shutdown(ctx, name)
}

func (c controller) State(ctx context.Context, name string) (string, error) {
	return c.d.State(ctx, name)
}

func (c controller) Destroy(ctx context.Context, name string) (transport.Result, error) {
	return c.d.Destroy(ctx, name)
}

// DomainConfig summarises a domain definition.
type DomainConfig struct {
	Name      string   `json:"name" yaml:"name"`
	UUID      string   `json:"uuid" yaml:"uuid"`
	MemoryKiB uint64   `json:"memory_kib" yaml:"memory_kib"`
	VCPUs     uint     `json:"vcpus" yaml:"vcpus"`
	Disks     []string `json:"disks" yaml:"disks"`
	MACs      []string `json:"macs,omitempty" yaml:"macs,omitempty"`
}

// ParseDomainConfig reads a domain XML document.
func ParseDomainConfig(doc string) (*DomainConfig, error) {
	var dom libvirtxml.Domain
	if err := dom.Unmarshal(doc); err != nil {
		return nil, fmt.Errorf("failed to parse domain XML: %w", err)
	}

	cfg := &DomainConfig{Name: dom.Name, UUID: dom.UUID, Disks: []string{}}
	if dom.Memory != nil {
		cfg.MemoryKiB = toKiB(dom.Memory.Value, dom.Memory.Unit)
	}
	if dom.VCPU != nil {
		cfg.VCPUs = dom.VCPU.Value
	}
	if dom.Devices != nil {
		for _, disk := range dom.Devices.Disks {
			switch {
			case disk.Source == nil:
			case disk.Source.File != nil:
				cfg.Disks = append(cfg.Disks, disk.Source.File.File)
			case disk.Source.Volume != nil:
				cfg.Disks = append(cfg.Disks, disk.Source.Volume.Pool+"/"+disk.Source.Volume.Volume)
			}
		}
		for _, iface := range dom.Devices.Interfaces {
			if iface.MAC != nil {
				cfg.MACs = append(cfg.MACs, iface.MAC.Address)
			}
		}
	}
	return cfg, nil
}

func toKiB(value uint, unit string) uint64 {
	v := uint64(value)
	switch strings.ToLower(unit) {
	case "b", "bytes":
		return v / 1024
	case "m", "mib":
		return v * 1024
	case "g", "gib":
		return v * 1024 * 1024
	default:
		return v
	}
}
