package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbweber/kvmctl/internal/libvirt"
)

var (
	socketPath string
	viaVirsh   bool
)

var testConnCmd = &cobra.Command{
	Use:   "test-conn",
	Short: "Test the connection to the hypervisor",
	Long: `Test connectivity to the libvirt daemon and display version information.

By default the local libvirt socket is used. With --virsh the configured
transport (local or --ssh) is tested by running virsh instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if viaVirsh {
			return testVirsh(cmd)
		}

		fmt.Println("Testing libvirt connection...")

		client, err := libvirt.ConnectWithContext(cmd.Context(), socketPath, libvirt.DefaultTimeout)
		if err != nil {
			return fmt.Errorf("failed to connect to libvirt: %w", err)
		}
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close libvirt connection: %v\n", closeErr)
			}
		}()

		fmt.Println("✓ Connected to libvirt daemon")

		if err := client.Ping(); err != nil {
			return fmt.Errorf("connection test failed: %w", err)
		}

		info, err := client.Probe()
		if err != nil {
			return err
		}

		fmt.Printf("✓ Libvirt version: %s\n", info.Version)
		fmt.Printf("✓ Hypervisor hostname: %s\n", info.Hostname)
		fmt.Printf("✓ Connection URI: %s\n", info.URI)
		fmt.Println("\nConnection test successful!")
		return nil
	},
}

func testVirsh(cmd *cobra.Command) error {
	fmt.Println("Testing virsh connection...")

	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("✓ virsh available (%s transport)\n", e.cfg.Transport)

	hostname, err := e.hv.Hostname(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get hostname: %w", err)
	}
	fmt.Printf("✓ Hypervisor hostname: %s\n", hostname)

	uri, err := e.hv.URI(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get connection URI: %w", err)
	}
	fmt.Printf("✓ Connection URI: %s\n", uri)

	if _, err := e.hv.Image(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: image commands unavailable: %v\n", err)
	} else {
		fmt.Println("✓ qemu-img available")
	}

	fmt.Println("\nConnection test successful!")
	return nil
}

func init() {
	testConnCmd.Flags().StringVar(&socketPath, "socket", libvirt.DefaultSocket, "libvirt socket path")
	testConnCmd.Flags().BoolVar(&viaVirsh, "virsh", false, "Test the configured transport through virsh")
}
