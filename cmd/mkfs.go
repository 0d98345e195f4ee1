package cmd

import (
	"fmt"

	"github.com/numbfs/go-numbfs/internal/config"
	"github.com/numbfs/go-numbfs/internal/logger"
	"github.com/numbfs/go-numbfs/internal/numbfs/device"
	"github.com/numbfs/go-numbfs/internal/numbfs/mkfs"
	"github.com/numbfs/go-numbfs/internal/numbfs/types"
	"github.com/spf13/cobra"
)

var (
	mkfsNumInodes int
	mkfsSize      string
)

// mkfsCmd formats a file or block device with a fresh filesystem
var mkfsCmd = &cobra.Command{
	Use:   "mkfs [flags] <device>",
	Short: "Create a numbfs filesystem on a file or block device",
	Long: `mkfs writes a fresh numbfs filesystem onto the given target.

A regular file target is grown to the requested size; a block device
must already be at least that large. The new filesystem contains a
single empty root directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]

		numInodes := mkfsNumInodes
		if !cmd.Flags().Changed("num-inodes") && config.Instance.Mkfs.NumInodes > 0 {
			numInodes = config.Instance.Mkfs.NumInodes
		}

		var size int64
		if mkfsSize != "" {
			var err error
			size, err = mkfs.ParseSize(mkfsSize)
			if err != nil {
				return err
			}
		}

		logger.LogInfo("Formatting filesystem", map[string]interface{}{
			"target":     target,
			"num_inodes": numInodes,
			"size":       size,
		})

		dev, err := device.CreateFileDevice(target, size)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", target, err)
		}
		defer dev.Close()

		v, err := mkfs.Format(dev, mkfs.Options{NumInodes: numInodes, Size: size})
		if err != nil {
			return fmt.Errorf("failed to format %s: %w", target, err)
		}

		logger.LogInfo("Filesystem created", map[string]interface{}{
			"target":       target,
			"total_inodes": v.TotalInodes,
			"data_blocks":  v.DataBlocks,
			"data_start":   v.DataStart,
		})
		fmt.Printf("%s: %d inodes, %d data blocks, root inode %d\n",
			target, v.TotalInodes, v.DataBlocks, types.RootNid)
		return nil
	},
}

func init() {
	mkfsCmd.Flags().IntVarP(&mkfsNumInodes, "num-inodes", "i", mkfs.DefaultNumInodes,
		"number of inodes, must be a multiple of 8")
	mkfsCmd.Flags().StringVarP(&mkfsSize, "size", "s", "",
		"filesystem size (e.g. 10M, 512K, 1G); defaults to the device size")

	rootCmd.AddCommand(mkfsCmd)
}
