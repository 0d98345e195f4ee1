package volume

import (
	"fmt"

	"github.com/numbfs/go-numbfs/internal/numbfs/types"
)

// Layout is the zone placement computed at format time. Zone order is
// fixed: inode bitmap < inode table < block bitmap < data zone.
type Layout struct {
	TotalBlocks  int
	IBitmapStart int
	InodeStart   int
	BBitmapStart int
	DataStart    int
	DataBlocks   int
}

func divRoundUp(a, b int) int {
	return (a + b - 1) / b
}

func roundUp(a, b int) int {
	return divRoundUp(a, b) * b
}

// ComputeLayout places the zones for a volume of the given byte size and
// inode count. The block bitmap's own size depends on the data-zone size
// it describes, so the data zone is sized against the remaining blocks
// first and the bitmap span is then derived from that result:
//
//	remain      = total - bbitmap_start - 1
//	data_blocks = remain - ceil(ceil(remain/8) / block_size)
//	data_start  = bbitmap_start + ceil(ceil(data_blocks/8) / block_size)
//
// The inode count must be a positive multiple of 8 so the inode bitmap
// ends on a byte boundary.
func ComputeLayout(size int64, numInodes int) (Layout, error) {
	if numInodes <= 0 || numInodes%8 != 0 {
		return Layout{}, types.NewFsError(types.ErrInvalidArgument, "ComputeLayout", "",
			fmt.Sprintf("inode count %d must be a positive multiple of 8", numInodes))
	}

	minSize := int64(2*types.BlockSize + roundUp(numInodes*types.InodeSize, types.BlockSize) + 3)
	if size <= minSize {
		return Layout{}, types.NewFsError(types.ErrInvalidArgument, "ComputeLayout", "",
			fmt.Sprintf("device size %d below minimum %d", size, minSize))
	}

	lay := Layout{
		TotalBlocks:  int(size / types.BlockSize),
		IBitmapStart: 2, // block 0 reserved, block 1 superblock
	}
	lay.InodeStart = lay.IBitmapStart +
		divRoundUp(divRoundUp(numInodes, 8), types.BlockSize)
	lay.BBitmapStart = lay.InodeStart +
		divRoundUp(numInodes*types.InodeSize, types.BlockSize)

	remain := lay.TotalBlocks - lay.BBitmapStart - 1
	lay.DataBlocks = remain - divRoundUp(divRoundUp(remain, 8), types.BlockSize)
	if lay.DataBlocks <= 0 {
		return Layout{}, types.NewFsError(types.ErrInvalidArgument, "ComputeLayout", "",
			fmt.Sprintf("no room for a data zone in %d blocks", lay.TotalBlocks))
	}
	lay.DataStart = lay.BBitmapStart +
		divRoundUp(divRoundUp(lay.DataBlocks, 8), types.BlockSize)

	return lay, nil
}
