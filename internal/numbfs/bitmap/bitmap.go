// Package bitmap implements the first-fit bit allocator backing both
// inode-number and data-block allocation, one bit per slot packed into
// whole blocks starting at a zone's start block. A set bit is allocated,
// a clear bit is free.
package bitmap

import (
	"fmt"
	"math/bits"

	"github.com/numbfs/go-numbfs/internal/numbfs/device"
	"github.com/numbfs/go-numbfs/internal/numbfs/types"
)

// coveringBlock returns the bitmap block holding bit idx of a zone
// starting at start.
func coveringBlock(start, idx int) int {
	return start + idx/types.BitsPerBlock
}

// byteOf returns the byte within the covering block holding bit idx.
func byteOf(idx int) int {
	return (idx % types.BitsPerBlock) / 8
}

// bitOf returns the bit position within that byte.
func bitOf(idx int) uint {
	return uint((idx % types.BitsPerBlock) % 8)
}

// Allocator allocates and frees bit positions in one bitmap zone.
// It carries no free counter; the volume wrappers keep the cached
// counters in sync around Allocate and Free.
type Allocator struct {
	dev   device.BlockDevice
	start int
	total int
}

// NewAllocator returns an allocator over total bits starting at block
// start.
func NewAllocator(dev device.BlockDevice, start, total int) *Allocator {
	return &Allocator{dev: dev, start: start, total: total}
}

// Allocate scans bit positions from 0 upward and claims the first clear
// bit: sets it, persists the modified block, and returns the bit index.
// The covering block is loaded lazily, only when the scan crosses a
// block boundary.
func (a *Allocator) Allocate() (int, error) {
	var buf []byte
	for i := 0; i < a.total; i++ {
		if i%types.BitsPerBlock == 0 {
			var err error
			buf, err = a.dev.ReadBlock(coveringBlock(a.start, i))
			if err != nil {
				return 0, err
			}
		}

		byt, bit := byteOf(i), bitOf(i)
		if buf[byt]&(1<<bit) == 0 {
			buf[byt] |= 1 << bit
			if err := a.dev.WriteBlock(coveringBlock(a.start, i), buf); err != nil {
				return 0, err
			}
			return i, nil
		}
	}
	return 0, types.NewFsError(types.ErrNoSpace, "bitmap.Allocate", "",
		fmt.Sprintf("no clear bit in %d", a.total))
}

// Free clears bit idx and persists the covering block. Freeing a bit
// that is already clear means the caller's view of the bitmap has
// diverged; continuing would compound the corruption, so it is fatal.
func (a *Allocator) Free(idx int) error {
	if idx < 0 || idx >= a.total {
		return types.NewFsError(types.ErrInvalidArgument, "bitmap.Free", "",
			fmt.Sprintf("bit %d outside zone of %d", idx, a.total))
	}

	blk := coveringBlock(a.start, idx)
	buf, err := a.dev.ReadBlock(blk)
	if err != nil {
		return err
	}

	byt, bit := byteOf(idx), bitOf(idx)
	if buf[byt]&(1<<bit) == 0 {
		panic(fmt.Sprintf("bitmap: freeing bit %d which is already free", idx))
	}
	buf[byt] &^= 1 << bit

	return a.dev.WriteBlock(blk, buf)
}

// CountRange counts the set bits across the blocks [from, to). The
// diagnostic tooling uses it to verify the cached free counters against
// the bitmap itself.
func CountRange(dev device.BlockDevice, from, to int) (int, error) {
	cnt := 0
	for blk := from; blk < to; blk++ {
		buf, err := dev.ReadBlock(blk)
		if err != nil {
			return 0, err
		}
		for _, b := range buf {
			cnt += bits.OnesCount8(b)
		}
	}
	return cnt, nil
}
