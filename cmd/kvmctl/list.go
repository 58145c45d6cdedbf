package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/kvmctl/internal/kvm"
)

var listOpts kvm.ListOptions

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List domains",
	Long: `List domains with their id and state.

By default only running domains are shown. Passing --state implies --all
and keeps only domains in one of the given states.

Output formats:
  -o table  Human-readable table (default)
  -o yaml   Domains keyed by name
  -o json   Domains keyed by name`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}

		domains, err := e.hv.ListDomains(cmd.Context(), listOpts)
		if err != nil {
			return fmt.Errorf("failed to list domains: %w", err)
		}

		result, err := e.formatter.FormatDomains(domains)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		fmt.Print(result)
		return nil
	},
}

var netListOpts kvm.NetListOptions

var netListCmd = &cobra.Command{
	Use:   "net-list",
	Short: "List virtual networks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}

		networks, err := e.hv.ListNetworks(cmd.Context(), netListOpts)
		if err != nil {
			return fmt.Errorf("failed to list networks: %w", err)
		}

		result, err := e.formatter.FormatNetworks(networks)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		fmt.Print(result)
		return nil
	},
}

var poolListCmd = &cobra.Command{
	Use:   "pool-list",
	Short: "List storage pools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}

		pools, err := e.hv.Pool().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list pools: %w", err)
		}
		return e.print(pools)
	},
}

func init() {
	flags := listCmd.Flags()
	flags.BoolVar(&listOpts.All, "all", false, "Include inactive domains")
	flags.BoolVar(&listOpts.Inactive, "inactive", false, "Only inactive domains")
	flags.BoolVar(&listOpts.Persistent, "persistent", false, "Only persistent domains")
	flags.BoolVar(&listOpts.Transient, "transient", false, "Only transient domains")
	flags.BoolVar(&listOpts.Autostart, "autostart", false, "Only domains with autostart enabled")
	flags.BoolVar(&listOpts.Title, "title", false, "Show domain titles")
	flags.StringSliceVar(&listOpts.States, "state", nil, "Keep only domains in these states (e.g. running,paused)")

	netListCmd.Flags().BoolVar(&netListOpts.All, "all", false, "Include inactive networks")
	netListCmd.Flags().BoolVar(&netListOpts.Inactive, "inactive", false, "Only inactive networks")
}
