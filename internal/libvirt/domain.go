package libvirt

import (
	"fmt"

	"libvirt.org/go/libvirtxml"

	"github.com/jbweber/kvmctl/internal/config"
	"github.com/jbweber/kvmctl/internal/ident"
)

// GenerateDomainXML renders a kvm domain definition: a random UUID unless
// cfg sets one, file-backed virtio disks, bridged virtio NICs (a random MAC
// for any interface without one), a pty serial console and VNC graphics.
// With cfg.Seed the cloud-init seed ISO is attached as a read-only cdrom.
func GenerateDomainXML(cfg *config.DomainConfig) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("domain configuration cannot be nil")
	}
	if len(cfg.Interfaces) == 0 {
		return "", fmt.Errorf("no network interfaces defined")
	}

	id := cfg.UUID
	if id == "" {
		id = ident.UUID()
	}

	memory := cfg.MemoryKiB()
	domain := &libvirtxml.Domain{
		Type: "kvm",
		Name: cfg.Name,
		UUID: id,
		Memory: &libvirtxml.DomainMemory{
			Value: memory,
			Unit:  "KiB",
		},
		CurrentMemory: &libvirtxml.DomainCurrentMemory{
			Value: memory,
			Unit:  "KiB",
		},
		VCPU: &libvirtxml.DomainVCPU{
			Placement: "static",
			Value:     uint(cfg.VCPUs),
		},
		OS: &libvirtxml.DomainOS{
			Type: &libvirtxml.DomainOSType{
				Arch: "x86_64",
				Type: "hvm",
			},
			BootDevices: []libvirtxml.DomainBootDevice{
				{Dev: "hd"},
			},
		},
		Features: &libvirtxml.DomainFeatureList{
			ACPI: &libvirtxml.DomainFeature{},
			APIC: &libvirtxml.DomainFeatureAPIC{},
			PAE:  &libvirtxml.DomainFeature{},
		},
		Clock: &libvirtxml.DomainClock{
			Offset: "utc",
		},
		OnPoweroff: "destroy",
		OnReboot:   "restart",
		OnCrash:    "restart",
		Devices: &libvirtxml.DomainDeviceList{
			Emulator: cfg.Emulator,
		},
	}

	for _, d := range cfg.Disks {
		domain.Devices.Disks = append(domain.Devices.Disks, libvirtxml.DomainDisk{
			Device: "disk",
			Driver: &libvirtxml.DomainDiskDriver{
				Name: "qemu",
				Type: d.Format,
			},
			Source: &libvirtxml.DomainDiskSource{
				File: &libvirtxml.DomainDiskSourceFile{
					File: d.Path,
				},
			},
			Target: &libvirtxml.DomainDiskTarget{
				Dev: d.Device,
				Bus: "virtio",
			},
		})
	}

	if cfg.Seed {
		domain.Devices.Disks = append(domain.Devices.Disks, libvirtxml.DomainDisk{
			Device: "cdrom",
			Driver: &libvirtxml.DomainDiskDriver{
				Name: "qemu",
				Type: "raw",
			},
			Source: &libvirtxml.DomainDiskSource{
				File: &libvirtxml.DomainDiskSourceFile{
					File: cfg.SeedPath(),
				},
			},
			Target: &libvirtxml.DomainDiskTarget{
				Dev: "sda",
				Bus: "sata",
			},
			ReadOnly: &libvirtxml.DomainDiskReadOnly{},
		})
	}

	for _, iface := range cfg.Interfaces {
		mac := iface.MAC
		if mac == "" {
			mac = ident.MAC()
		}
		domain.Devices.Interfaces = append(domain.Devices.Interfaces, libvirtxml.DomainInterface{
			MAC: &libvirtxml.DomainInterfaceMAC{
				Address: mac,
			},
			Source: &libvirtxml.DomainInterfaceSource{
				Bridge: &libvirtxml.DomainInterfaceSourceBridge{
					Bridge: iface.Bridge,
				},
			},
			Model: &libvirtxml.DomainInterfaceModel{
				Type: "virtio",
			},
		})
	}

	domain.Devices.Serials = []libvirtxml.DomainSerial{
		{
			Source: &libvirtxml.DomainChardevSource{
				Pty: &libvirtxml.DomainChardevSourcePty{},
			},
			Target: &libvirtxml.DomainSerialTarget{
				Port: func() *uint { p := uint(0); return &p }(),
			},
		},
	}
	domain.Devices.Consoles = []libvirtxml.DomainConsole{
		{
			Source: &libvirtxml.DomainChardevSource{
				Pty: &libvirtxml.DomainChardevSourcePty{},
			},
			Target: &libvirtxml.DomainConsoleTarget{
				Type: "serial",
				Port: func() *uint { p := uint(0); return &p }(),
			},
		},
	}
	domain.Devices.Inputs = []libvirtxml.DomainInput{
		{Type: "mouse", Bus: "ps2"},
	}
	domain.Devices.Graphics = []libvirtxml.DomainGraphic{
		{
			VNC: &libvirtxml.DomainGraphicVNC{
				Port:     -1,
				AutoPort: "yes",
				Keymap:   cfg.Keymap,
			},
		},
	}

	xml, err := domain.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to marshal domain XML: %w", err)
	}

	return xml, nil
}
