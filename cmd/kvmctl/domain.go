package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jbweber/kvmctl/internal/config"
	"github.com/jbweber/kvmctl/internal/ident"
	"github.com/jbweber/kvmctl/internal/kvm"
	"github.com/jbweber/kvmctl/internal/libvirt"
	"github.com/jbweber/kvmctl/internal/lifecycle"
	"github.com/jbweber/kvmctl/internal/output"
	"github.com/jbweber/kvmctl/internal/transport"
)

var domainCmd = &cobra.Command{
	Use:     "domain",
	Aliases: []string{"dom"},
	Short:   "Manage domains",
	Long: `Manage and inspect domains.

A domain can be referenced by name, uuid or id wherever virsh accepts it.`,
}

// domainAction builds a subcommand running a state-changing domain operation.
func domainAction(use, short, done string, action func(ctx context.Context, d kvm.Domains, name string) (transport.Result, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <domain>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			res, err := action(cmd.Context(), e.hv.Domain(), args[0])
			return printResult(res, err, use+" "+args[0], fmt.Sprintf("Domain %s %s", args[0], done))
		},
	}
}

// domainQuery builds a subcommand printing a parsed domain result. Extra
// positional arguments follow the domain.
func domainQuery(use, short string, extra int, query func(ctx context.Context, d kvm.Domains, args []string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1 + extra),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			v, err := query(cmd.Context(), e.hv.Domain(), args)
			if err != nil {
				return err
			}
			return e.print(v)
		},
	}
}

var (
	stopTimeout time.Duration
	stopForce   bool
	stopNative  bool
)

var domainStopCmd = &cobra.Command{
	Use:   "stop <domain>",
	Short: "Shut a domain down and wait until it is off",
	Long: `Request a graceful shutdown and poll the domain until it is shut off.

When the timeout passes the command fails, unless --force is given, in
which case the domain is destroyed. Defaults come from the stop section of
the config file.

With --native the domain is driven through the libvirt socket instead of
virsh. This only works on the local host.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		opts := lifecycle.Options{
			Timeout:  cfg.Stop.Timeout,
			Interval: cfg.Stop.Interval,
			Force:    cfg.Stop.Force || stopForce,
		}
		if cmd.Flags().Changed("timeout") {
			opts.Timeout = stopTimeout
		}

		fmt.Printf("Stopping domain: %s\n", name)

		var outcome lifecycle.Outcome
		if stopNative {
			outcome, err = nativeStop(cmd.Context(), cfg, name, opts)
		} else {
			var e *env
			if e, err = setup(cmd.Context()); err != nil {
				return err
			}
			// The poller matches the listing by name.
			if ref := ident.ParseRef(name); ref.Kind != ident.RefName {
				if name, err = e.hv.Domain().Name(cmd.Context(), ref.Value); err != nil {
					return fmt.Errorf("failed to resolve domain %s %s: %w", ref.Kind, ref.Value, err)
				}
			}
			outcome, err = e.hv.Domain().Stop(cmd.Context(), name, kvm.StopOptions{
				Timeout:  opts.Timeout,
				Interval: opts.Interval,
				Force:    opts.Force,
			})
		}
		if err != nil {
			return fmt.Errorf("failed to stop domain: %w", err)
		}

		if !outcome.Succeeded {
			return fmt.Errorf("domain %s did not stop: %s", name, outcome.Message)
		}
		if outcome.Message != "" {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", outcome.Message)
		}
		fmt.Printf("✓ Domain %s is %s\n", name, outcome.State)
		return nil
	},
}

func nativeStop(ctx context.Context, cfg *config.Config, name string, opts lifecycle.Options) (lifecycle.Outcome, error) {
	if cfg.Transport != config.TransportLocal {
		return lifecycle.Outcome{}, fmt.Errorf("--native requires the local transport")
	}
	if ref := ident.ParseRef(name); ref.Kind != ident.RefName {
		return lifecycle.Outcome{}, fmt.Errorf("--native needs a domain name, got %s %q", ref.Kind, ref.Value)
	}

	client, err := libvirt.ConnectWithContext(ctx, "", 0)
	if err != nil {
		return lifecycle.Outcome{}, fmt.Errorf("failed to connect to libvirt: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close libvirt connection: %v\n", closeErr)
		}
	}()

	opts.Log = newLogger(cfg).WithName("libvirt")
	return lifecycle.Stop(ctx, libvirt.NewDomainController(client.Libvirt()), name, opts)
}

var domainDefineCmd = &cobra.Command{
	Use:   "define <domain.xml|domain.yaml>",
	Short: "Define a domain from an XML or YAML file",
	Long: `Define a domain from an XML or YAML file on the target host.

The file is read locally and passed to virsh on stdin, so it does not need
to exist on a remote host. A .yaml or .yml file is a mapping of the domain
element: "@name" keys are attributes and "#text" is element text.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := loadDefinition(args[0], "domain")
		if err != nil {
			return err
		}

		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		d := e.hv.Domain()
		var res transport.Result
		if def.mapping != nil {
			res, err = d.DefineMapping(cmd.Context(), def.mapping)
		} else {
			res, err = d.DefineXML(cmd.Context(), def.xml)
		}
		return printResult(res, err, "define "+args[0], "Domain "+def.describe(args[0])+" defined")
	},
}

var domainConfigCmd = &cobra.Command{
	Use:   "config <domain>",
	Short: "Show the typed domain configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		cfg, err := e.hv.Domain().Config(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if output.Format(outputFormat) != output.FormatTable {
			return e.print(cfg)
		}
		return e.print(map[string]string{
			"name":       cfg.Name,
			"uuid":       cfg.UUID,
			"memory_kib": fmt.Sprint(cfg.MemoryKiB),
			"vcpus":      fmt.Sprint(cfg.VCPUs),
			"disks":      strings.Join(cfg.Disks, ","),
			"macs":       strings.Join(cfg.MACs, ","),
		})
	},
}

func init() {
	domainCmd.AddCommand(
		domainAction("start", "Start a defined domain", "started", func(ctx context.Context, d kvm.Domains, name string) (transport.Result, error) {
			return d.Start(ctx, name)
		}),
		domainAction("shutdown", "Request a graceful shutdown", "shutdown requested", func(ctx context.Context, d kvm.Domains, name string) (transport.Result, error) {
			return d.Shutdown(ctx, name)
		}),
		domainAction("destroy", "Stop a domain immediately", "destroyed", func(ctx context.Context, d kvm.Domains, name string) (transport.Result, error) {
			return d.Destroy(ctx, name)
		}),
		domainAction("reboot", "Reboot a domain", "rebooting", func(ctx context.Context, d kvm.Domains, name string) (transport.Result, error) {
			return d.Reboot(ctx, name)
		}),
		domainAction("suspend", "Suspend a running domain", "suspended", func(ctx context.Context, d kvm.Domains, name string) (transport.Result, error) {
			return d.Suspend(ctx, name)
		}),
		domainAction("resume", "Resume a suspended domain", "resumed", func(ctx context.Context, d kvm.Domains, name string) (transport.Result, error) {
			return d.Resume(ctx, name)
		}),
		domainAction("undefine", "Remove a domain definition", "undefined", func(ctx context.Context, d kvm.Domains, name string) (transport.Result, error) {
			return d.Undefine(ctx, name)
		}),

		domainQuery("state <domain>", "Show the domain state", 0, func(ctx context.Context, d kvm.Domains, args []string) (any, error) {
			return d.State(ctx, args[0])
		}),
		domainQuery("info <domain>", "Show domain information", 0, func(ctx context.Context, d kvm.Domains, args []string) (any, error) {
			return d.Info(ctx, args[0])
		}),
		domainQuery("dumpxml <domain>", "Show the domain XML as a document-ordered tree", 0, func(ctx context.Context, d kvm.Domains, args []string) (any, error) {
			return d.DumpXML(ctx, args[0])
		}),
		domainQuery("iflist <domain>", "List the domain network interfaces", 0, func(ctx context.Context, d kvm.Domains, args []string) (any, error) {
			return d.IfList(ctx, args[0])
		}),
		domainQuery("blklist <domain>", "List the domain block devices", 0, func(ctx context.Context, d kvm.Domains, args []string) (any, error) {
			return d.BlkList(ctx, args[0])
		}),
		domainQuery("ifstat <domain> <interface>", "Show interface counters", 1, func(ctx context.Context, d kvm.Domains, args []string) (any, error) {
			return d.IfStat(ctx, args[0], args[1])
		}),
		domainQuery("blkstat <domain> <device>", "Show block device counters", 1, func(ctx context.Context, d kvm.Domains, args []string) (any, error) {
			return d.BlkStat(ctx, args[0], args[1])
		}),
		domainQuery("memstat <domain>", "Show memory statistics", 0, func(ctx context.Context, d kvm.Domains, args []string) (any, error) {
			return d.MemStat(ctx, args[0])
		}),
		domainQuery("cpustats <domain>", "Show cpu statistics per cpu and in total", 0, func(ctx context.Context, d kvm.Domains, args []string) (any, error) {
			return d.CPUStats(ctx, args[0])
		}),
		domainQuery("time <domain>", "Show the guest clock", 0, func(ctx context.Context, d kvm.Domains, args []string) (any, error) {
			t, err := d.Time(ctx, args[0])
			if err != nil {
				return nil, err
			}
			return t.UTC().Format(time.RFC3339), nil
		}),

		domainStopCmd,
		domainDefineCmd,
		domainConfigCmd,
	)

	domainStopCmd.Flags().DurationVar(&stopTimeout, "timeout", config.DefaultStopTimeout, "How long to wait for the domain to shut off")
	domainStopCmd.Flags().BoolVar(&stopForce, "force", false, "Destroy the domain when the timeout passes")
	domainStopCmd.Flags().BoolVar(&stopNative, "native", false, "Use the local libvirt socket instead of virsh")
}
