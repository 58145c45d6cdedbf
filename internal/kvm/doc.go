// Package kvm is the programmatic interface to a KVM host.
//
// A Hypervisor wraps a transport.Executor. Its operations, and those of the
// Domains, Networks, Pools and Images facades derived from it, are rows of
// static descriptor tables run through a virsh.Runner; only domain and
// network listing and the stop orchestration carry logic of their own.
//
//	hv, err := kvm.New(ctx, transport.NewLocal())
//	state, err := hv.Domain().State(ctx, "web01")
//	out, err := hv.Domain().Stop(ctx, "web01", kvm.StopOptions{Force: true})
//
// Nothing is cached: each call runs one command (Stop runs several) and
// parses a fresh answer.
package kvm
