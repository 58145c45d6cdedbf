package kvm

import (
	"context"

	"github.com/jbweber/kvmctl/internal/transport"
	"github.com/jbweber/kvmctl/internal/virsh"
	"github.com/jbweber/kvmctl/internal/xmlmap"
)

// Pools is the storage pool facade of a Hypervisor.
type Pools struct {
	h *Hypervisor
}

// List returns the rows of "virsh pool-list" ("name", "state", "autostart").
func (p Pools) List(ctx context.Context, opts ...virsh.Option) ([]map[string]string, error) {
	return p.h.runner.RunTable(ctx, poolOps.MustGet("list"), nil, opts)
}

// Info returns "virsh pool-info" with yes/no converted.
func (p Pools) Info(ctx context.Context, name string) (map[string]any, error) {
	return p.h.keyValue(ctx, poolOps.MustGet("info"), []string{name}, nil)
}

// DumpXML returns the pool configuration under <pool>.
func (p Pools) DumpXML(ctx context.Context, name string) (xmlmap.Mapping, error) {
	return p.h.mapping(ctx, poolOps.MustGet("dumpxml"), []string{name}, nil)
}

// Volumes returns the rows of "virsh vol-list" ("name", "path").
func (p Pools) Volumes(ctx context.Context, pool string) ([]map[string]string, error) {
	return p.h.runner.RunTable(ctx, poolOps.MustGet("vols"), []string{pool}, nil)
}

// Start activates a pool.
func (p Pools) Start(ctx context.Context, name string) (transport.Result, error) {
	return p.h.runner.Exec(ctx, poolOps.MustGet("start"), []string{name}, nil)
}

// Destroy deactivates a pool.
func (p Pools) Destroy(ctx context.Context, name string) (transport.Result, error) {
	return p.h.runner.Exec(ctx, poolOps.MustGet("destroy"), []string{name}, nil)
}

// Refresh rescans a pool's volumes.
func (p Pools) Refresh(ctx context.Context, name string) (transport.Result, error) {
	return p.h.runner.Exec(ctx, poolOps.MustGet("refresh"), []string{name}, nil)
}
