package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

// Global flags
var (
	configPath   string
	sshTarget    string
	sshKey       string
	outputFormat string
	noHeaders    bool
	verbose      bool
	development  bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := unsupportedHint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kvmctl",
	Short: "kvmctl - KVM host management through virsh, qemu-img and qemu-nbd",
	Long: `kvmctl manages a KVM host by driving virsh, qemu-img and qemu-nbd,
locally or over SSH, and parses their output into structured results.

Every virsh operation kvmctl knows is also reachable through "kvmctl call".`,
	Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to the kvmctl config file")
	flags.StringVar(&sshTarget, "ssh", "", "Run on a remote host: user@host[:port]")
	flags.StringVar(&sshKey, "key", "", "Private key for --ssh (default ~/.ssh/id_ed25519 or id_rsa)")
	flags.StringVarP(&outputFormat, "output", "o", "table", "Output format: table, yaml or json")
	flags.BoolVar(&noHeaders, "no-headers", false, "Omit table headers")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log every command run")
	flags.BoolVar(&development, "dev", false, "Human-readable log output")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(netListCmd)
	rootCmd.AddCommand(poolListCmd)
	rootCmd.AddCommand(hvCmd)
	rootCmd.AddCommand(domainCmd)
	rootCmd.AddCommand(netCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(testConnCmd)
}
