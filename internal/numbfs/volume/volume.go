// Package volume implements the superblock manager: the per-session
// context every other component is handed. A Volume is exclusively owned
// by a single caller; there is no locking, and concurrent use of the
// same backing store corrupts the bitmap and counter invariants.
package volume

import (
	"fmt"

	"github.com/numbfs/go-numbfs/internal/numbfs/bitmap"
	"github.com/numbfs/go-numbfs/internal/numbfs/device"
	"github.com/numbfs/go-numbfs/internal/numbfs/types"
)

// Volume is the in-memory superblock context. The free counters are
// mutated in place on every allocate/free but only persisted back to
// disk during formatting; fsck verifies them against a bitmap re-scan.
type Volume struct {
	dev device.BlockDevice

	Feature      uint32
	TotalInodes  int
	FreeInodes   int
	DataBlocks   int
	FreeBlocks   int
	IBitmapStart int
	InodeStart   int
	BBitmapStart int
	DataStart    int
	Size         int64

	ibm *bitmap.Allocator
	bbm *bitmap.Allocator
}

// New builds a Volume from a decoded superblock.
func New(dev device.BlockDevice, sb *types.Superblock) *Volume {
	v := &Volume{
		dev:          dev,
		Feature:      sb.Feature,
		TotalInodes:  int(sb.TotalInodes),
		FreeInodes:   int(sb.FreeInodes),
		DataBlocks:   int(sb.DataBlocks),
		FreeBlocks:   int(sb.FreeBlocks),
		IBitmapStart: int(sb.IBitmapStart),
		InodeStart:   int(sb.InodeStart),
		BBitmapStart: int(sb.BBitmapStart),
		DataStart:    int(sb.DataStart),
		Size:         int64(dev.BlockCount()) * types.BlockSize,
	}
	v.ibm = bitmap.NewAllocator(dev, v.IBitmapStart, v.TotalInodes)
	v.bbm = bitmap.NewAllocator(dev, v.BBitmapStart, v.DataBlocks)
	return v
}

// Open reads and validates the on-disk superblock and constructs the
// session context. A magic mismatch is reported as corruption.
func Open(dev device.BlockDevice) (*Volume, error) {
	buf, err := dev.ReadBlock(types.SuperblockBlock)
	if err != nil {
		return nil, err
	}
	sb, err := types.DecodeSuperblock(buf)
	if err != nil {
		return nil, err
	}
	return New(dev, sb), nil
}

// Device returns the backing block device.
func (v *Volume) Device() device.BlockDevice {
	return v.dev
}

// Superblock re-derives the on-disk header from the in-memory context.
func (v *Volume) Superblock() *types.Superblock {
	return &types.Superblock{
		Feature:      v.Feature,
		IBitmapStart: uint32(v.IBitmapStart),
		InodeStart:   uint32(v.InodeStart),
		BBitmapStart: uint32(v.BBitmapStart),
		DataStart:    uint32(v.DataStart),
		TotalInodes:  uint32(v.TotalInodes),
		FreeInodes:   uint32(v.FreeInodes),
		DataBlocks:   uint32(v.DataBlocks),
		FreeBlocks:   uint32(v.FreeBlocks),
	}
}

// WriteSuper persists the superblock. Only the formatting path calls
// this; the library does not re-serialize counters on every allocation.
func (v *Volume) WriteSuper() error {
	enc, err := types.EncodeSuperblock(v.Superblock())
	if err != nil {
		return err
	}
	buf := make([]byte, types.BlockSize)
	copy(buf, enc)
	return v.dev.WriteBlock(types.SuperblockBlock, buf)
}

// AllocInode claims a free inode number. The cached counter is the
// fast-path precondition: when it is zero the bitmap is not scanned.
func (v *Volume) AllocInode() (int, error) {
	if v.FreeInodes == 0 {
		return 0, types.NewFsError(types.ErrNoSpace, "AllocInode", "", "no free inodes")
	}
	nid, err := v.ibm.Allocate()
	if err != nil {
		return 0, err
	}
	v.FreeInodes--
	return nid, nil
}

// FreeInode releases an inode number. The inode's content blocks are
// not reclaimed here; the caller must free them first.
func (v *Volume) FreeInode(nid int) error {
	if nid < 0 || nid >= v.TotalInodes {
		return types.NewFsError(types.ErrInvalidArgument, "FreeInode", "",
			fmt.Sprintf("inode %d outside formatted range %d", nid, v.TotalInodes))
	}
	if err := v.ibm.Free(nid); err != nil {
		return err
	}
	v.FreeInodes++
	return nil
}

// AllocBlock claims a free data block, returning its data-zone-relative
// number.
func (v *Volume) AllocBlock() (int, error) {
	if v.FreeBlocks == 0 {
		return 0, types.NewFsError(types.ErrNoSpace, "AllocBlock", "", "no free blocks")
	}
	blk, err := v.bbm.Allocate()
	if err != nil {
		return 0, err
	}
	v.FreeBlocks--
	return blk, nil
}

// FreeBlock releases a data-zone-relative block number.
func (v *Volume) FreeBlock(blk int) error {
	if blk < 0 || blk >= v.DataBlocks {
		return types.NewFsError(types.ErrInvalidArgument, "FreeBlock", "",
			fmt.Sprintf("block %d outside data zone of %d", blk, v.DataBlocks))
	}
	if err := v.bbm.Free(blk); err != nil {
		return err
	}
	v.FreeBlocks++
	return nil
}

// InodeBlock returns the table block containing inode nid.
func (v *Volume) InodeBlock(nid int) int {
	return v.InodeStart + nid/types.InodesPerBlock
}

// DataBlock translates a data-zone-relative block number to a physical
// block address.
func (v *Volume) DataBlock(blk int) int {
	return v.DataStart + blk
}
