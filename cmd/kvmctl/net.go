package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jbweber/kvmctl/internal/kvm"
	"github.com/jbweber/kvmctl/internal/transport"
)

var netCmd = &cobra.Command{
	Use:   "net",
	Short: "Manage virtual networks",
}

func netAction(use, short, done string, action func(ctx context.Context, n kvm.Networks, name string) (transport.Result, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <network>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			res, err := action(cmd.Context(), e.hv.Network(), args[0])
			return printResult(res, err, "net-"+use+" "+args[0], "Network "+args[0]+" "+done)
		},
	}
}

func netQuery(use, short string, query func(ctx context.Context, n kvm.Networks, name string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <network>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			v, err := query(cmd.Context(), e.hv.Network(), args[0])
			if err != nil {
				return err
			}
			return e.print(v)
		},
	}
}

var netDefineCmd = &cobra.Command{
	Use:   "define <network.xml|network.yaml>",
	Short: "Define a network from an XML or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := loadDefinition(args[0], "network")
		if err != nil {
			return err
		}

		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		n := e.hv.Network()
		var res transport.Result
		if def.mapping != nil {
			res, err = n.DefineMapping(cmd.Context(), def.mapping)
		} else {
			res, err = n.DefineXML(cmd.Context(), def.xml)
		}
		return printResult(res, err, "net-define "+args[0], "Network "+def.describe(args[0])+" defined")
	},
}

func init() {
	netCmd.AddCommand(
		netDefineCmd,
		netQuery("info", "Show network information", func(ctx context.Context, n kvm.Networks, name string) (any, error) {
			return n.Info(ctx, name)
		}),
		netQuery("dumpxml", "Show the network XML as a document-ordered tree", func(ctx context.Context, n kvm.Networks, name string) (any, error) {
			return n.DumpXML(ctx, name)
		}),
		netAction("start", "Start a network", "started", func(ctx context.Context, n kvm.Networks, name string) (transport.Result, error) {
			return n.Start(ctx, name)
		}),
		netAction("destroy", "Stop a network", "destroyed", func(ctx context.Context, n kvm.Networks, name string) (transport.Result, error) {
			return n.Destroy(ctx, name)
		}),
	)
}
