package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/kvmctl/internal/kvm"
	"github.com/jbweber/kvmctl/internal/virsh"
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Manage disk images with qemu-img and qemu-nbd",
	Long: `Manage disk images on the target host.

Image commands need qemu-img on the host; load and unload need qemu-nbd.`,
}

// images returns the image facade, failing when qemu-img is missing.
func images(ctx context.Context) (*env, kvm.Images, error) {
	e, err := setup(ctx)
	if err != nil {
		return nil, kvm.Images{}, err
	}
	img, err := e.hv.Image()
	if err != nil {
		return nil, kvm.Images{}, err
	}
	return e, img, nil
}

var imageInfoCmd = &cobra.Command{
	Use:   "info <path>",
	Short: "Show image information",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, img, err := images(cmd.Context())
		if err != nil {
			return err
		}
		info, err := img.Info(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return e.print(info)
	},
}

var imageCheckCmd = &cobra.Command{
	Use:   "check <path>",
	Short: "Check an image for consistency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, img, err := images(cmd.Context())
		if err != nil {
			return err
		}
		res, err := img.Check(cmd.Context(), args[0])
		return printResult(res, err, "check "+args[0], "Image "+args[0]+" is consistent")
	},
}

var (
	imageFormat  string
	imageBacking string
)

var imageCreateCmd = &cobra.Command{
	Use:   "create <path> <size>",
	Short: "Create an image",
	Long: `Create an image of the given size, e.g. "20G".

With --backing the image is a copy-on-write overlay of the backing file.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, img, err := images(cmd.Context())
		if err != nil {
			return err
		}

		opts := []virsh.Option{virsh.Opt("f", imageFormat)}
		if imageBacking != "" {
			opts = append(opts, virsh.Opt("b", imageBacking), virsh.Opt("F", imageFormat))
		}
		res, err := img.Create(cmd.Context(), args[0], args[1], opts...)
		return printResult(res, err, "create "+args[0], fmt.Sprintf("Image %s created (%s)", args[0], args[1]))
	},
}

var convertFormat string

var imageConvertCmd = &cobra.Command{
	Use:   "convert <src> <dst>",
	Short: "Convert an image to another format",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, img, err := images(cmd.Context())
		if err != nil {
			return err
		}
		res, err := img.Convert(cmd.Context(), args[0], args[1], virsh.Opt("O", convertFormat))
		return printResult(res, err, "convert "+args[0], fmt.Sprintf("Image %s converted to %s", args[0], args[1]))
	},
}

var imageResizeCmd = &cobra.Command{
	Use:   "resize <path> <size>",
	Short: "Resize an image, e.g. +5G",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, img, err := images(cmd.Context())
		if err != nil {
			return err
		}
		res, err := img.Resize(cmd.Context(), args[0], args[1])
		return printResult(res, err, "resize "+args[0], fmt.Sprintf("Image %s resized (%s)", args[0], args[1]))
	},
}

var (
	snapCreate string
	snapApply  string
	snapDelete string
)

var imageSnapshotCmd = &cobra.Command{
	Use:   "snapshot <path>",
	Short: "List or manage internal snapshots",
	Long: `List the internal snapshots of an image, or create, apply or delete one
with --create, --apply or --delete.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, img, err := images(cmd.Context())
		if err != nil {
			return err
		}

		var opt virsh.Option
		done := "Snapshots of " + args[0]
		switch {
		case snapCreate != "":
			opt, done = virsh.Opt("c", snapCreate), "Snapshot "+snapCreate+" created"
		case snapApply != "":
			opt, done = virsh.Opt("a", snapApply), "Snapshot "+snapApply+" applied"
		case snapDelete != "":
			opt, done = virsh.Opt("d", snapDelete), "Snapshot "+snapDelete+" deleted"
		default:
			opt = virsh.Opt("l", true)
		}

		res, err := img.Snapshot(cmd.Context(), args[0], opt)
		if err == nil && res.Succeeded && opt.Name == "l" {
			fmt.Println(res.Stdout)
			return nil
		}
		return printResult(res, err, "snapshot "+args[0], done)
	},
}

var nbdDevice string

var imageLoadCmd = &cobra.Command{
	Use:   "load <path>",
	Short: "Export an image as a network block device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, img, err := images(cmd.Context())
		if err != nil {
			return err
		}
		res, err := img.Load(cmd.Context(), args[0], nbdDevice)
		return printResult(res, err, "load "+args[0], fmt.Sprintf("Image %s loaded on /dev/%s", args[0], nbdDevice))
	},
}

var imageUnloadCmd = &cobra.Command{
	Use:   "unload",
	Short: "Disconnect a network block device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, img, err := images(cmd.Context())
		if err != nil {
			return err
		}
		res, err := img.Unload(cmd.Context(), nbdDevice)
		return printResult(res, err, "unload /dev/"+nbdDevice, "Unloaded /dev/"+nbdDevice)
	},
}

func init() {
	imageCmd.AddCommand(imageInfoCmd)
	imageCmd.AddCommand(imageCheckCmd)
	imageCmd.AddCommand(imageCreateCmd)
	imageCmd.AddCommand(imageConvertCmd)
	imageCmd.AddCommand(imageResizeCmd)
	imageCmd.AddCommand(imageSnapshotCmd)
	imageCmd.AddCommand(imageLoadCmd)
	imageCmd.AddCommand(imageUnloadCmd)

	imageCreateCmd.Flags().StringVarP(&imageFormat, "format", "f", "qcow2", "Image format")
	imageCreateCmd.Flags().StringVarP(&imageBacking, "backing", "b", "", "Backing file for a copy-on-write overlay")
	imageConvertCmd.Flags().StringVarP(&convertFormat, "output-format", "O", "qcow2", "Output image format")

	imageSnapshotCmd.Flags().StringVar(&snapCreate, "create", "", "Create a snapshot with this name")
	imageSnapshotCmd.Flags().StringVar(&snapApply, "apply", "", "Revert the image to this snapshot")
	imageSnapshotCmd.Flags().StringVar(&snapDelete, "delete", "", "Delete this snapshot")
	imageSnapshotCmd.MarkFlagsMutuallyExclusive("create", "apply", "delete")

	for _, c := range []*cobra.Command{imageLoadCmd, imageUnloadCmd} {
		c.Flags().StringVar(&nbdDevice, "device", kvm.DefaultNBDDevice, "NBD device under /dev")
	}
}
