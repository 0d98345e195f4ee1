// Package mkfs lays out a new numbfs volume:
//
//	| reserved | superblock | inode bitmap | inode table | block bitmap | data |
//
// Formatting is deterministic: the same device size and inode count on a
// zeroed device produce byte-identical metadata regions. It is not
// atomic: a failed step leaves the target partially initialized.
package mkfs

import (
	"fmt"

	"github.com/numbfs/go-numbfs/internal/numbfs/device"
	"github.com/numbfs/go-numbfs/internal/numbfs/inode"
	"github.com/numbfs/go-numbfs/internal/numbfs/types"
	"github.com/numbfs/go-numbfs/internal/numbfs/volume"
)

// DefaultNumInodes is used when no inode count is requested.
const DefaultNumInodes = 4096

// Options control the layout of the new volume.
type Options struct {
	// NumInodes is the number of inodes to format; it must be a
	// positive multiple of 8.
	NumInodes int

	// Size is the target filesystem size in bytes; zero or negative
	// means the whole device.
	Size int64
}

// Format writes a fresh filesystem onto dev and returns the resulting
// session context, with the root directory created at types.RootNid and
// its ".." pointing at itself.
func Format(dev device.BlockDevice, opts Options) (*volume.Volume, error) {
	numInodes := opts.NumInodes
	if numInodes == 0 {
		numInodes = DefaultNumInodes
	}

	size := opts.Size
	devSize := int64(dev.BlockCount()) * types.BlockSize
	if size <= 0 {
		size = devSize
	} else if size > devSize {
		return nil, types.NewFsError(types.ErrInvalidArgument, "mkfs.Format", "",
			fmt.Sprintf("device size %d smaller than requested size %d", devSize, size))
	}

	lay, err := volume.ComputeLayout(size, numInodes)
	if err != nil {
		return nil, err
	}

	v := volume.New(dev, &types.Superblock{
		IBitmapStart: uint32(lay.IBitmapStart),
		InodeStart:   uint32(lay.InodeStart),
		BBitmapStart: uint32(lay.BBitmapStart),
		DataStart:    uint32(lay.DataStart),
		TotalInodes:  uint32(numInodes),
		FreeInodes:   uint32(numInodes),
		DataBlocks:   uint32(lay.DataBlocks),
		FreeBlocks:   uint32(lay.DataBlocks),
	})

	// Clear every metadata block between the superblock and the data
	// zone: both bitmaps start with all bits free.
	zero := make([]byte, types.BlockSize)
	for blk := lay.IBitmapStart; blk < lay.DataStart; blk++ {
		if err := dev.WriteBlock(blk, zero); err != nil {
			return nil, err
		}
	}

	// Rewrite the inode table with every direct block slot holding the
	// hole sentinel rather than a zeroed (and thus valid) address.
	table, err := emptyTableBlock()
	if err != nil {
		return nil, err
	}
	for blk := lay.InodeStart; blk < lay.BBitmapStart; blk++ {
		if err := dev.WriteBlock(blk, table); err != nil {
			return nil, err
		}
	}

	nid, err := inode.EmptyDir(v, types.RootNid)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare root inode: %w", err)
	}
	if nid != types.RootNid {
		return nil, types.NewFsError(types.ErrCorrupted, "mkfs.Format", "",
			fmt.Sprintf("root inode landed at %d, want %d", nid, types.RootNid))
	}

	if err := v.WriteSuper(); err != nil {
		return nil, err
	}
	return v, nil
}

// emptyTableBlock builds one inode-table block of records whose data
// slots are all holes.
func emptyTableBlock() ([]byte, error) {
	rec := &types.InodeRec{}
	for i := range rec.Data {
		rec.Data[i] = types.Hole()
	}
	enc, err := types.EncodeInode(rec)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, types.BlockSize)
	for i := 0; i < types.InodesPerBlock; i++ {
		copy(buf[i*types.InodeSize:], enc)
	}
	return buf, nil
}
