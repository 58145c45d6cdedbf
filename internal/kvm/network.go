package kvm

import (
	"context"

	"github.com/jbweber/kvmctl/internal/transport"
	"github.com/jbweber/kvmctl/internal/virsh"
	"github.com/jbweber/kvmctl/internal/xmlmap"
)

// Networks is the virtual network facade of a Hypervisor.
type Networks struct {
	h *Hypervisor
}

// List is Hypervisor.ListNetworks.
func (n Networks) List(ctx context.Context, o NetListOptions) (map[string]NetworkInfo, error) {
	return n.h.ListNetworks(ctx, o)
}

// Info returns "virsh net-info" with yes/no converted.
func (n Networks) Info(ctx context.Context, name string) (map[string]any, error) {
	return n.h.keyValue(ctx, networkOps.MustGet("info"), []string{name}, nil)
}

// DumpXML returns the network configuration under <network>. IP ranges and
// DHCP hosts are always lists.
func (n Networks) DumpXML(ctx context.Context, name string) (xmlmap.Mapping, error) {
	return n.h.mapping(ctx, networkOps.MustGet("dumpxml"), []string{name}, nil)
}

// UUID returns the network uuid.
func (n Networks) UUID(ctx context.Context, name string) (string, error) {
	return n.h.runner.RunScalar(ctx, networkOps.MustGet("uuid"), []string{name}, nil)
}

// Start activates a network.
func (n Networks) Start(ctx context.Context, name string) (transport.Result, error) {
	return n.h.runner.Exec(ctx, networkOps.MustGet("start"), []string{name}, nil)
}

// Destroy deactivates a network.
func (n Networks) Destroy(ctx context.Context, name string) (transport.Result, error) {
	return n.h.runner.Exec(ctx, networkOps.MustGet("destroy"), []string{name}, nil)
}

// Define defines a network from an XML file on the host.
func (n Networks) Define(ctx context.Context, path string) (transport.Result, error) {
	return n.h.runner.Exec(ctx, networkOps.MustGet("define"), []string{path}, nil)
}

// DefineXML defines a network from an XML document fed on stdin.
func (n Networks) DefineXML(ctx context.Context, doc string) (transport.Result, error) {
	cmd := n.h.runner.Build(networkOps.MustGet("define"), []string{"/dev/stdin"}, nil)
	cmd.Stdin = doc
	return n.h.runner.Execute(ctx, cmd)
}

// DefineMapping encodes a network mapping, shaped like the result of
// DumpXML, and defines it through DefineXML.
func (n Networks) DefineMapping(ctx context.Context, m xmlmap.Mapping) (transport.Result, error) {
	doc, err := xmlmap.EncodeString("network", xmlmap.Unwrap(m, "network"))
	if err != nil {
		return transport.Result{}, err
	}
	return n.DefineXML(ctx, doc)
}

// Undefine removes a network definition.
func (n Networks) Undefine(ctx context.Context, name string) (transport.Result, error) {
	return n.h.runner.Exec(ctx, networkOps.MustGet("undefine"), []string{name}, nil)
}

// Autostart turns network autostart on, or off with disable.
func (n Networks) Autostart(ctx context.Context, name string, disable bool) (transport.Result, error) {
	return n.h.runner.Exec(ctx, networkOps.MustGet("autostart"), []string{name}, virsh.Options{virsh.Opt("disable", disable)})
}
