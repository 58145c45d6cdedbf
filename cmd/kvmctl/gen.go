package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbweber/kvmctl/internal/config"
	"github.com/jbweber/kvmctl/internal/ident"
	"github.com/jbweber/kvmctl/internal/libvirt"
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate identifiers and domain definitions",
}

var genUUIDCmd = &cobra.Command{
	Use:   "uuid",
	Short: "Generate a domain uuid",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(ident.UUID())
	},
}

var genMACCmd = &cobra.Command{
	Use:   "mac",
	Short: "Generate a MAC address under the 54:52:00 prefix",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(ident.MAC())
	},
}

var genOutput string

var genConfCmd = &cobra.Command{
	Use:   "conf <domain.yaml>",
	Short: "Generate libvirt domain XML from a domain definition",
	Long: `Generate libvirt domain XML from a YAML domain definition.

Missing uuids and MAC addresses are generated. MAC addresses of
interfaces with an ip are derived from it, so they stay stable across
rebuilds. The XML is printed, or written to the file given with -f,
ready for "kvmctl domain define".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadDomain(args[0])
		if err != nil {
			return fmt.Errorf("failed to load domain definition: %w", err)
		}

		doc, err := libvirt.GenerateDomainXML(cfg)
		if err != nil {
			return fmt.Errorf("failed to generate domain XML: %w", err)
		}

		if genOutput == "" {
			fmt.Println(doc)
			return nil
		}
		if err := os.WriteFile(genOutput, []byte(doc+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write domain XML: %w", err)
		}
		fmt.Printf("✓ Domain XML for %s written to %s\n", cfg.Name, genOutput)
		return nil
	},
}

func init() {
	genCmd.AddCommand(genUUIDCmd)
	genCmd.AddCommand(genMACCmd)
	genCmd.AddCommand(genConfCmd)

	genConfCmd.Flags().StringVarP(&genOutput, "file", "f", "", "Write the XML to this file")
}
