package main

import (
	"context"

	"github.com/spf13/cobra"
)

var hvCmd = &cobra.Command{
	Use:   "hv",
	Short: "Query the hypervisor host",
	Long:  `Query the hypervisor host: versions, hostname, connection URI and hardware.`,
}

// hvQuery builds an hv subcommand that prints the result of query.
func hvQuery(use, short string, query func(ctx context.Context, e *env) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			v, err := query(cmd.Context(), e)
			if err != nil {
				return err
			}
			return e.print(v)
		},
	}
}

func init() {
	hvCmd.AddCommand(
		hvQuery("version", "Show library, API and hypervisor versions", func(ctx context.Context, e *env) (any, error) {
			return e.hv.Version(ctx)
		}),
		hvQuery("hostname", "Show the hypervisor hostname", func(ctx context.Context, e *env) (any, error) {
			return e.hv.Hostname(ctx)
		}),
		hvQuery("uri", "Show the libvirt connection URI", func(ctx context.Context, e *env) (any, error) {
			return e.hv.URI(ctx)
		}),
		hvQuery("nodeinfo", "Show host CPU and memory", func(ctx context.Context, e *env) (any, error) {
			return e.hv.NodeInfo(ctx)
		}),
		hvQuery("capabilities", "Show host capabilities", func(ctx context.Context, e *env) (any, error) {
			return e.hv.Capabilities(ctx)
		}),
		hvQuery("sysinfo", "Show host system information", func(ctx context.Context, e *env) (any, error) {
			return e.hv.SysInfo(ctx)
		}),
	)
}
