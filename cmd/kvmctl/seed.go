package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/kvmctl/internal/cloudinit"
	"github.com/jbweber/kvmctl/internal/config"
)

var seedCmd = &cobra.Command{
	Use:   "seed <guest.yaml> <out.iso>",
	Short: "Build a cloud-init seed ISO for a guest",
	Long: `Build a NoCloud seed ISO (volume label CIDATA) that sets the guest
hostname, static network configuration, SSH keys and root password.

Attach the ISO to the domain as a cdrom before its first boot.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadGuest(args[0])
		if err != nil {
			return fmt.Errorf("failed to load guest definition: %w", err)
		}

		if err := cloudinit.WriteISO(args[1], cfg); err != nil {
			return fmt.Errorf("failed to build seed ISO: %w", err)
		}

		fmt.Printf("✓ Seed ISO for %s written to %s\n", cfg.FQDN, args[1])
		for i, iface := range cfg.Interfaces {
			fmt.Printf("  eth%d: %s (mac %s)\n", i, iface.IP, iface.MAC)
		}
		return nil
	},
}
