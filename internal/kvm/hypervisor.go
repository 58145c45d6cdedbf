package kvm

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	"github.com/jbweber/kvmctl/internal/transport"
	"github.com/jbweber/kvmctl/internal/virsh"
	"github.com/jbweber/kvmctl/internal/xmlmap"
)

// Hypervisor is a KVM host reached through an executor. The caller owns it;
// the facades it hands out are plain values pointing back at it.
type Hypervisor struct {
	runner *virsh.Runner
	log    logr.Logger
	clock  clock.Clock

	// tools found at construction
	qemuImg bool
	qemuNBD bool
}

// Option configures a Hypervisor.
type Option func(*config)

type config struct {
	log      logr.Logger
	controls virsh.Controls
	clock    clock.Clock
}

// WithLogger sets the logger. Commands are logged at V(1).
func WithLogger(log logr.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithControls sets the Controls every call starts from.
func WithControls(ctrl virsh.Controls) Option {
	return func(c *config) {
		c.controls = ctrl
	}
}

// WithClock sets the clock used by Stop.
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		c.clock = clk
	}
}

// New checks that virsh is available through exec and returns a Hypervisor.
// A missing virsh is a *virsh.SetupError. qemu-img and qemu-nbd are looked
// up once here too; Image reports a *virsh.SetupError if they were missing.
func New(ctx context.Context, exec transport.Executor, opts ...Option) (*Hypervisor, error) {
	cfg := config{log: logr.Discard(), clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := virsh.Require(ctx, exec, virsh.ToolVirsh); err != nil {
		return nil, err
	}

	h := &Hypervisor{
		runner: virsh.NewRunner(exec, virsh.WithLogger(cfg.log), virsh.WithControls(cfg.controls)),
		log:    cfg.log,
		clock:  cfg.clock,
	}

	var err error
	if h.qemuImg, err = optionalTool(ctx, exec, virsh.ToolQemuImg); err != nil {
		return nil, err
	}
	if h.qemuNBD, err = optionalTool(ctx, exec, virsh.ToolQemuNBD); err != nil {
		return nil, err
	}

	h.log.V(1).Info("hypervisor ready", "qemu-img", h.qemuImg, "qemu-nbd", h.qemuNBD)
	return h, nil
}

func optionalTool(ctx context.Context, exec transport.Executor, tool string) (bool, error) {
	err := virsh.Require(ctx, exec, tool)
	var setupErr *virsh.SetupError
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &setupErr):
		return false, nil
	default:
		return false, err
	}
}

// With returns a Hypervisor whose calls run with ctrl. The receiver is
// unchanged, so the override lasts exactly as long as the returned value is
// used.
func (h *Hypervisor) With(ctrl virsh.Controls) *Hypervisor {
	c := *h
	c.runner = h.runner.With(ctrl)
	return &c
}

// Controls returns the Controls calls run with.
func (h *Hypervisor) Controls() virsh.Controls {
	return h.runner.Controls()
}

// Domain returns the domain facade.
func (h *Hypervisor) Domain() Domains {
	return Domains{h: h}
}

// Network returns the network facade.
func (h *Hypervisor) Network() Networks {
	return Networks{h: h}
}

// Pool returns the storage pool facade.
func (h *Hypervisor) Pool() Pools {
	return Pools{h: h}
}

// Image returns the disk image facade, or a *virsh.SetupError when qemu-img
// was not found on the host.
func (h *Hypervisor) Image() (Images, error) {
	if !h.qemuImg {
		return Images{}, &virsh.SetupError{Tool: virsh.ToolQemuImg}
	}
	return Images{h: h}, nil
}

// Virsh runs an arbitrary virsh sub-command and returns its raw result.
func (h *Hypervisor) Virsh(ctx context.Context, command string, args []string, opts virsh.Options) (transport.Result, error) {
	d := virsh.Descriptor{Name: command, Command: []string{command}, Shape: virsh.ShapeRaw}
	return h.runner.Exec(ctx, d, args, opts)
}

// Call runs the named operation of group through the generic dispatcher.
func (h *Hypervisor) Call(ctx context.Context, group, op string, args []string, opts virsh.Options) (any, error) {
	reg, ok := Registry(group)
	if !ok {
		return nil, fmt.Errorf("unknown operation group %q", group)
	}
	d, ok := reg.Get(op)
	if !ok {
		return nil, fmt.Errorf("unknown %s operation %q", group, op)
	}
	if err := h.requireTool(d.Executable()); err != nil {
		return nil, err
	}
	return h.runner.Run(ctx, d, args, opts)
}

func (h *Hypervisor) requireTool(tool string) error {
	switch {
	case tool == virsh.ToolQemuImg && !h.qemuImg,
		tool == virsh.ToolQemuNBD && !h.qemuNBD:
		return &virsh.SetupError{Tool: tool}
	}
	return nil
}

// Version returns "virsh version" as a map, e.g. "compiled_against_library".
func (h *Hypervisor) Version(ctx context.Context) (map[string]string, error) {
	return h.runner.RunKeyValue(ctx, hypervisorOps.MustGet("version"), nil, nil)
}

// Hostname returns the hypervisor's hostname.
func (h *Hypervisor) Hostname(ctx context.Context) (string, error) {
	return h.runner.RunScalar(ctx, hypervisorOps.MustGet("hostname"), nil, nil)
}

// URI returns the canonical URI of the connection.
func (h *Hypervisor) URI(ctx context.Context) (string, error) {
	return h.runner.RunScalar(ctx, hypervisorOps.MustGet("uri"), nil, nil)
}

// NodeInfo returns "virsh nodeinfo" with numbers converted.
func (h *Hypervisor) NodeInfo(ctx context.Context) (map[string]any, error) {
	return h.keyValue(ctx, hypervisorOps.MustGet("nodeinfo"), nil, nil)
}

// Capabilities returns the host capabilities document under <capabilities>.
func (h *Hypervisor) Capabilities(ctx context.Context) (xmlmap.Mapping, error) {
	return h.mapping(ctx, hypervisorOps.MustGet("capabilities"), nil, nil)
}

// SysInfo returns the host SMBIOS document under <sysinfo>.
func (h *Hypervisor) SysInfo(ctx context.Context) (xmlmap.Mapping, error) {
	return h.mapping(ctx, hypervisorOps.MustGet("sysinfo"), nil, nil)
}

func (h *Hypervisor) keyValue(ctx context.Context, d virsh.Descriptor, args []string, opts virsh.Options) (map[string]any, error) {
	v, err := h.runner.Run(ctx, d, args, opts)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("operation %s returned %T", d.Name, v)
	}
	return m, nil
}

func (h *Hypervisor) mapping(ctx context.Context, d virsh.Descriptor, args []string, opts virsh.Options) (xmlmap.Mapping, error) {
	v, err := h.runner.RunXML(ctx, d, args, opts)
	if err != nil {
		return nil, err
	}
	m, ok := v.(xmlmap.Mapping)
	if !ok {
		return nil, fmt.Errorf("operation %s returned %T, expected an element with children", d.Name, v)
	}
	return m, nil
}
