package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbweber/kvmctl/internal/kvm"
	"github.com/jbweber/kvmctl/internal/transport"
)

var callOpts []string

var callCmd = &cobra.Command{
	Use:   "call <group> <operation> [args...]",
	Short: "Run any known operation through the generic dispatcher",
	Long: `Run an operation from one of the descriptor tables and print its parsed
result.

Options are passed with --opt: "--opt all" sets a flag, "--opt pool=default"
sets a value and "--opt all=false" suppresses a default.

Use "kvmctl call <group>" to list the operations of a group.`,
	Args: cobra.MinimumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		switch len(args) {
		case 0:
			return kvm.Groups(), cobra.ShellCompDirectiveNoFileComp
		case 1:
			if reg, ok := kvm.Registry(args[0]); ok {
				return reg.Names(), cobra.ShellCompDirectiveNoFileComp
			}
		}
		return nil, cobra.ShellCompDirectiveDefault
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, ok := kvm.Registry(args[0])
		if !ok {
			return fmt.Errorf("unknown operation group %q (known: %s)", args[0], strings.Join(kvm.Groups(), ", "))
		}
		if len(args) == 1 {
			for _, name := range reg.Names() {
				fmt.Println(name)
			}
			return nil
		}

		opts, err := parseOptions(callOpts)
		if err != nil {
			return err
		}

		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		v, err := e.hv.Call(cmd.Context(), args[0], args[1], args[2:], opts)
		if err != nil {
			return err
		}
		if res, ok := v.(transport.Result); ok && !res.Succeeded {
			return printResult(res, nil, args[0]+" "+args[1], "")
		}
		return e.print(v)
	},
}

func init() {
	callCmd.Flags().StringArrayVar(&callOpts, "opt", nil, "Operation option as name[=value] (repeatable)")
}
