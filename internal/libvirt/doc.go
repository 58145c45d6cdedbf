// Package libvirt talks to libvirtd directly over its RPC socket and
// generates domain XML.
//
// The command-driven facades in internal/kvm cover the day-to-day surface;
// this package is the native path:
//
//	client, err := libvirt.Connect("", 0)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	info, err := client.Probe()
//
// DomainController drives lifecycle.Stop over RPC instead of virsh:
//
//	outcome, err := lifecycle.Stop(ctx, libvirt.NewDomainController(client.Libvirt()), "web", opts)
//
// GenerateDomainXML renders a config.DomainConfig as a kvm domain
// definition ready for `virsh define`.
//
// Consumers define the narrow interface they need; *libvirt.Libvirt
// satisfies it implicitly.
package libvirt
