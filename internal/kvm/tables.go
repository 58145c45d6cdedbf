package kvm

import (
	"github.com/jbweber/kvmctl/internal/virsh"
)

// Operation groups.
const (
	GroupHypervisor = "hypervisor"
	GroupDomain     = "domain"
	GroupNetwork    = "network"
	GroupPool       = "pool"
	GroupImage      = "image"
)

func cmd(words ...string) []string { return words }

var hypervisorOps = virsh.NewRegistry(GroupHypervisor,
	virsh.Descriptor{Name: "version", Command: cmd("version"), Shape: virsh.ShapeKeyValue, Doc: "library, API and hypervisor versions"},
	virsh.Descriptor{Name: "hostname", Command: cmd("hostname"), Shape: virsh.ShapeScalar, Doc: "hypervisor hostname"},
	virsh.Descriptor{Name: "uri", Command: cmd("uri"), Shape: virsh.ShapeScalar, Doc: "canonical connection URI"},
	virsh.Descriptor{Name: "nodeinfo", Command: cmd("nodeinfo"), Shape: virsh.ShapeKeyValue, Convert: true, Doc: "node CPU and memory"},
	virsh.Descriptor{Name: "nodememstats", Command: cmd("nodememstats"), Shape: virsh.ShapeKeyValue, Doc: "node memory statistics"},
	virsh.Descriptor{Name: "freecell", Command: cmd("freecell"), Shape: virsh.ShapeScalar, Doc: "free memory"},
	virsh.Descriptor{
		Name: "capabilities", Command: cmd("capabilities"), Shape: virsh.ShapeXML,
		RootKey: "capabilities", ForceList: []string{"guest", "cell", "domain", "feature"},
		Doc: "host and guest capabilities",
	},
	virsh.Descriptor{Name: "sysinfo", Command: cmd("sysinfo"), Shape: virsh.ShapeXML, RootKey: "sysinfo", ForceList: []string{"entry"}, Doc: "host SMBIOS data"},
)

var domainOps = virsh.NewRegistry(GroupDomain,
	// lifecycle
	virsh.Descriptor{Name: "start", Command: cmd("start"), Shape: virsh.ShapeNone, Doc: "start a defined domain"},
	virsh.Descriptor{Name: "create", Command: cmd("create"), Shape: virsh.ShapeNone, Doc: "create a transient domain from an XML file"},
	virsh.Descriptor{Name: "shutdown", Command: cmd("shutdown"), Shape: virsh.ShapeNone, Doc: "gracefully shut down a domain"},
	virsh.Descriptor{Name: "destroy", Command: cmd("destroy"), Shape: virsh.ShapeNone, Doc: "stop a domain immediately"},
	virsh.Descriptor{Name: "reboot", Command: cmd("reboot"), Shape: virsh.ShapeNone, Doc: "reboot a domain"},
	virsh.Descriptor{Name: "reset", Command: cmd("reset"), Shape: virsh.ShapeNone, Doc: "reset a domain"},
	virsh.Descriptor{Name: "suspend", Command: cmd("suspend"), Shape: virsh.ShapeNone, Doc: "pause a domain"},
	virsh.Descriptor{Name: "resume", Command: cmd("resume"), Shape: virsh.ShapeNone, Doc: "resume a paused domain"},
	virsh.Descriptor{Name: "define", Command: cmd("define"), Shape: virsh.ShapeNone, Doc: "define a domain from an XML file"},
	virsh.Descriptor{Name: "undefine", Command: cmd("undefine"), Shape: virsh.ShapeNone, Doc: "undefine a domain"},
	virsh.Descriptor{Name: "autostart", Command: cmd("autostart"), Shape: virsh.ShapeNone, Doc: "toggle autostart"},

	// inspection
	virsh.Descriptor{Name: "state", Command: cmd("domstate"), Shape: virsh.ShapeScalar, Doc: "domain state"},
	virsh.Descriptor{Name: "id", Command: cmd("domid"), Shape: virsh.ShapeScalar, Convert: true, Doc: "domain id, -1 when inactive"},
	virsh.Descriptor{Name: "uuid", Command: cmd("domuuid"), Shape: virsh.ShapeScalar, Doc: "domain uuid"},
	virsh.Descriptor{Name: "name", Command: cmd("domname"), Shape: virsh.ShapeScalar, Doc: "domain name from id or uuid"},
	virsh.Descriptor{Name: "info", Command: cmd("dominfo"), Shape: virsh.ShapeKeyValue, Convert: true, Doc: "domain information"},
	virsh.Descriptor{
		Name: "dumpxml", Command: cmd("dumpxml"), Shape: virsh.ShapeXML, RootKey: "domain",
		ForceList: []string{"disk", "interface", "controller", "channel", "graphics", "hostdev"},
		Doc:       "domain configuration",
	},
	virsh.Descriptor{Name: "iflist", Command: cmd("domiflist"), Shape: virsh.ShapeTable, Doc: "domain network interfaces"},
	virsh.Descriptor{Name: "blklist", Command: cmd("domblklist"), Shape: virsh.ShapeTable, Doc: "domain block devices"},
	virsh.Descriptor{Name: "ifstat", Command: cmd("domifstat"), Shape: virsh.ShapeStats, SkipLeading: true, Doc: "interface counters"},
	virsh.Descriptor{
		Name: "blkstat", Command: cmd("domblkstat"), Shape: virsh.ShapeStats, SkipLeading: true,
		Disabled: []string{"human"}, Doc: "block device counters",
	},
	virsh.Descriptor{Name: "memstat", Command: cmd("dommemstat"), Shape: virsh.ShapeStats, Doc: "memory statistics"},
	virsh.Descriptor{Name: "cpustats", Command: cmd("cpu-stats"), Shape: virsh.ShapeRaw, Doc: "per-CPU and total CPU time"},
	virsh.Descriptor{Name: "time", Command: cmd("domtime"), Shape: virsh.ShapeRaw, Doc: "guest clock"},

	// tunables
	virsh.Descriptor{Name: "schedinfo", Command: cmd("schedinfo"), Shape: virsh.ShapeTune, Convert: true, Doc: "scheduler parameters"},
	virsh.Descriptor{Name: "memtune", Command: cmd("memtune"), Shape: virsh.ShapeTune, Convert: true, Doc: "memory limits"},
	virsh.Descriptor{Name: "blkiotune", Command: cmd("blkiotune"), Shape: virsh.ShapeTune, Convert: true, Doc: "block I/O weights"},
)

var networkOps = virsh.NewRegistry(GroupNetwork,
	virsh.Descriptor{Name: "info", Command: cmd("net-info"), Shape: virsh.ShapeKeyValue, Convert: true, Doc: "network information"},
	virsh.Descriptor{Name: "dumpxml", Command: cmd("net-dumpxml"), Shape: virsh.ShapeXML, RootKey: "network", ForceList: []string{"ip", "host"}, Doc: "network configuration"},
	virsh.Descriptor{Name: "uuid", Command: cmd("net-uuid"), Shape: virsh.ShapeScalar, Doc: "network uuid"},
	virsh.Descriptor{Name: "start", Command: cmd("net-start"), Shape: virsh.ShapeNone, Doc: "start a network"},
	virsh.Descriptor{Name: "destroy", Command: cmd("net-destroy"), Shape: virsh.ShapeNone, Doc: "stop a network"},
	virsh.Descriptor{Name: "define", Command: cmd("net-define"), Shape: virsh.ShapeNone, Doc: "define a network from an XML file"},
	virsh.Descriptor{Name: "undefine", Command: cmd("net-undefine"), Shape: virsh.ShapeNone, Doc: "undefine a network"},
	virsh.Descriptor{Name: "autostart", Command: cmd("net-autostart"), Shape: virsh.ShapeNone, Doc: "toggle network autostart"},
)

var poolOps = virsh.NewRegistry(GroupPool,
	virsh.Descriptor{Name: "list", Command: cmd("pool-list"), Shape: virsh.ShapeTable, Doc: "storage pools"},
	virsh.Descriptor{Name: "info", Command: cmd("pool-info"), Shape: virsh.ShapeKeyValue, Convert: true, Doc: "pool information"},
	virsh.Descriptor{Name: "dumpxml", Command: cmd("pool-dumpxml"), Shape: virsh.ShapeXML, RootKey: "pool", Doc: "pool configuration"},
	virsh.Descriptor{Name: "vols", Command: cmd("vol-list"), Shape: virsh.ShapeTable, Doc: "volumes in a pool"},
	virsh.Descriptor{Name: "start", Command: cmd("pool-start"), Shape: virsh.ShapeNone, Doc: "start a pool"},
	virsh.Descriptor{Name: "destroy", Command: cmd("pool-destroy"), Shape: virsh.ShapeNone, Doc: "stop a pool"},
	virsh.Descriptor{Name: "refresh", Command: cmd("pool-refresh"), Shape: virsh.ShapeNone, Doc: "rescan a pool"},
)

var imageOps = virsh.NewRegistry(GroupImage,
	img("check", "check an image for errors"),
	img("create", "create an image"),
	img("commit", "commit changes into the backing file"),
	img("compare", "compare images"),
	virsh.Descriptor{Name: "convert", Tool: virsh.ToolQemuImg, Command: cmd("convert"), Shape: virsh.ShapeRaw, Doc: "convert an image"},
	img("map", "dump image metadata"),
	img("snapshot", "manage internal snapshots"),
	img("rebase", "change the backing file"),
	img("resize", "resize an image"),
	img("amend", "change format options"),
	virsh.Descriptor{Name: "info", Tool: virsh.ToolQemuImg, Command: cmd("info"), Shape: virsh.ShapeKeyValue, Convert: true, OptionsFirst: true, Doc: "image information"},
	virsh.Descriptor{Name: "load", Tool: virsh.ToolQemuNBD, Shape: virsh.ShapeRaw, OptionsFirst: true, Doc: "export an image as an NBD device"},
	virsh.Descriptor{Name: "unload", Tool: virsh.ToolQemuNBD, Shape: virsh.ShapeRaw, OptionsFirst: true, Doc: "disconnect an NBD device"},
)

func img(name, doc string) virsh.Descriptor {
	return virsh.Descriptor{
		Name:         name,
		Tool:         virsh.ToolQemuImg,
		Command:      cmd(name),
		Shape:        virsh.ShapeRaw,
		OptionsFirst: true,
		Doc:          doc,
	}
}

var registries = map[string]*virsh.Registry{
	GroupHypervisor: hypervisorOps,
	GroupDomain:     domainOps,
	GroupNetwork:    networkOps,
	GroupPool:       poolOps,
	GroupImage:      imageOps,
}

// Registry returns the descriptor table of an operation group.
func Registry(group string) (*virsh.Registry, bool) {
	r, ok := registries[group]
	return r, ok
}

// Groups returns the operation group names.
func Groups() []string {
	return []string{GroupHypervisor, GroupDomain, GroupNetwork, GroupPool, GroupImage}
}
