package kvm

import (
	"context"

	"github.com/jbweber/kvmctl/internal/transport"
	"github.com/jbweber/kvmctl/internal/virsh"
)

// DefaultNBDDevice is the device Load and Unload use when none is given.
const DefaultNBDDevice = "nbd0"

// Images is the disk image facade of a Hypervisor, backed by qemu-img and
// qemu-nbd. Every call but Info returns the raw result.
type Images struct {
	h *Hypervisor
}

func (i Images) exec(ctx context.Context, op string, args []string, opts []virsh.Option) (transport.Result, error) {
	d := imageOps.MustGet(op)
	if err := i.h.requireTool(d.Executable()); err != nil {
		return transport.Result{}, err
	}
	return i.h.runner.Exec(ctx, d, args, opts)
}

// Check checks an image for consistency.
func (i Images) Check(ctx context.Context, path string, opts ...virsh.Option) (transport.Result, error) {
	return i.exec(ctx, "check", []string{path}, opts)
}

// Create creates an image of the given size, e.g. "10G".
func (i Images) Create(ctx context.Context, path, size string, opts ...virsh.Option) (transport.Result, error) {
	return i.exec(ctx, "create", []string{path, size}, opts)
}

// Commit writes an overlay's changes into its backing file.
func (i Images) Commit(ctx context.Context, path string, opts ...virsh.Option) (transport.Result, error) {
	return i.exec(ctx, "commit", []string{path}, opts)
}

// Compare compares the contents of images.
func (i Images) Compare(ctx context.Context, paths []string, opts ...virsh.Option) (transport.Result, error) {
	return i.exec(ctx, "compare", paths, opts)
}

// Convert converts src into dst. Its options follow the paths.
func (i Images) Convert(ctx context.Context, src, dst string, opts ...virsh.Option) (transport.Result, error) {
	return i.exec(ctx, "convert", []string{src, dst}, opts)
}

// Map dumps the image's allocation map.
func (i Images) Map(ctx context.Context, path string, opts ...virsh.Option) (transport.Result, error) {
	return i.exec(ctx, "map", []string{path}, opts)
}

// Snapshot manages internal snapshots, e.g. with virsh.Opt("l", true).
func (i Images) Snapshot(ctx context.Context, path string, opts ...virsh.Option) (transport.Result, error) {
	return i.exec(ctx, "snapshot", []string{path}, opts)
}

// Rebase changes the backing file of an image.
func (i Images) Rebase(ctx context.Context, path string, opts ...virsh.Option) (transport.Result, error) {
	return i.exec(ctx, "rebase", []string{path}, opts)
}

// Resize changes the virtual size of an image, e.g. "+5G".
func (i Images) Resize(ctx context.Context, path, size string) (transport.Result, error) {
	return i.exec(ctx, "resize", []string{path, size}, nil)
}

// Amend changes format specific options of an image.
func (i Images) Amend(ctx context.Context, path string, opts ...virsh.Option) (transport.Result, error) {
	return i.exec(ctx, "amend", []string{path}, opts)
}

// Info returns "qemu-img info" as a map, e.g. "file_format" and
// "virtual_size". A failure is a *virsh.CommandError.
func (i Images) Info(ctx context.Context, path string, opts ...virsh.Option) (map[string]any, error) {
	d := imageOps.MustGet("info")
	return i.h.keyValue(ctx, d, []string{path}, opts)
}

// Load exports an image as /dev/<device> through qemu-nbd. An empty device
// means DefaultNBDDevice.
func (i Images) Load(ctx context.Context, path, device string, opts ...virsh.Option) (transport.Result, error) {
	if device == "" {
		device = DefaultNBDDevice
	}
	o := virsh.Options(opts).Set("c", "/dev/"+device).Set("d", false)
	return i.exec(ctx, "load", []string{path}, o)
}

// Unload disconnects /dev/<device>.
func (i Images) Unload(ctx context.Context, device string, opts ...virsh.Option) (transport.Result, error) {
	if device == "" {
		device = DefaultNBDDevice
	}
	o := virsh.Options(opts).Set("c", false).Set("d", "/dev/"+device)
	return i.exec(ctx, "unload", nil, o)
}
