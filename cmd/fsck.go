package cmd

import (
	"fmt"

	"github.com/numbfs/go-numbfs/internal/logger"
	"github.com/numbfs/go-numbfs/internal/numbfs/device"
	"github.com/numbfs/go-numbfs/internal/numbfs/fsck"
	"github.com/numbfs/go-numbfs/internal/numbfs/volume"
	"github.com/spf13/cobra"
)

var (
	fsckCheckInodes bool
	fsckCheckBlocks bool
	fsckNid         int
)

// fsckCmd runs read-only consistency checks against a filesystem
var fsckCmd = &cobra.Command{
	Use:   "fsck [flags] <device>",
	Short: "Check a numbfs filesystem for consistency",
	Long: `fsck opens an existing numbfs filesystem read-only, prints its
superblock, and verifies the cached free counters against the
allocation bitmaps. It reports inconsistencies but never repairs them.

With --nid it additionally decodes one inode, listing its block map
and, for directories, every directory entry.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]

		dev, err := device.OpenFileDevice(target)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", target, err)
		}
		defer dev.Close()

		v, err := volume.Open(dev)
		if err != nil {
			return fmt.Errorf("failed to open filesystem on %s: %w", target, err)
		}
		printSuper(target, v)

		// No explicit selection means check everything.
		checkInodes := fsckCheckInodes
		checkBlocks := fsckCheckBlocks
		if !checkInodes && !checkBlocks {
			checkInodes, checkBlocks = true, true
		}

		if checkInodes {
			used, err := fsck.CheckInodes(v)
			if err != nil {
				return err
			}
			fmt.Printf("inode bitmap:   %d used, %d free\n", used, v.TotalInodes-used)
		}
		if checkBlocks {
			used, err := fsck.CheckBlocks(v)
			if err != nil {
				return err
			}
			fmt.Printf("block bitmap:   %d used, %d free\n", used, v.DataBlocks-used)
		}

		if cmd.Flags().Changed("nid") {
			rep, err := fsck.ShowInode(v, fsckNid)
			if err != nil {
				return err
			}
			printInode(rep)
		}

		logger.LogDebug("Check complete", map[string]interface{}{"target": target})
		return nil
	},
}

func printSuper(target string, v *volume.Volume) {
	fmt.Printf("%s:\n", target)
	fmt.Printf("  feature:      %#x\n", v.Feature)
	fmt.Printf("  inode bitmap: block %d\n", v.IBitmapStart)
	fmt.Printf("  inode table:  block %d\n", v.InodeStart)
	fmt.Printf("  block bitmap: block %d\n", v.BBitmapStart)
	fmt.Printf("  data zone:    block %d\n", v.DataStart)
	fmt.Printf("  inodes:       %d total, %d free\n", v.TotalInodes, v.FreeInodes)
	fmt.Printf("  data blocks:  %d total, %d free\n", v.DataBlocks, v.FreeBlocks)
}

func printInode(rep *fsck.InodeReport) {
	fmt.Printf("inode %d:\n", rep.Nid)
	fmt.Printf("  type:  %s\n", rep.TypeName)
	fmt.Printf("  mode:  %#o\n", rep.Mode)
	fmt.Printf("  nlink: %d\n", rep.Nlink)
	fmt.Printf("  uid:   %d\n", rep.Uid)
	fmt.Printf("  gid:   %d\n", rep.Gid)
	fmt.Printf("  size:  %d\n", rep.Size)
	for i, ref := range rep.Blocks {
		if ref.IsHole() {
			fmt.Printf("  block %d: <hole>\n", i)
		} else {
			fmt.Printf("  block %d: %d\n", i, ref.Block())
		}
	}
	for _, de := range rep.Entries {
		fmt.Printf("  dirent: ino %-5d type %-2d %s\n", de.Ino, de.Type, de.Name)
	}
}

func init() {
	fsckCmd.Flags().BoolVarP(&fsckCheckInodes, "inodes", "i", false,
		"verify the free-inode counter against the inode bitmap")
	fsckCmd.Flags().BoolVarP(&fsckCheckBlocks, "blocks", "b", false,
		"verify the free-block counter against the block bitmap")
	fsckCmd.Flags().IntVarP(&fsckNid, "nid", "n", -1,
		"decode and print the inode with this number")

	rootCmd.AddCommand(fsckCmd)
}
