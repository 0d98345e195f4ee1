package device

import (
	"fmt"

	"github.com/numbfs/go-numbfs/internal/numbfs/types"
)

// MemDevice is an in-memory BlockDevice used by tests.
type MemDevice struct {
	blocks [][types.BlockSize]byte
}

var _ BlockDevice = (*MemDevice)(nil)

// NewMemDevice returns a zero-filled in-memory device of blockCount blocks.
func NewMemDevice(blockCount int) *MemDevice {
	return &MemDevice{blocks: make([][types.BlockSize]byte, blockCount)}
}

func (d *MemDevice) ReadBlock(blkno int) ([]byte, error) {
	if blkno < 0 || blkno >= len(d.blocks) {
		return nil, types.NewFsError(types.ErrInvalidBlockAddr, "ReadBlock", "mem",
			fmt.Sprintf("block %d of %d", blkno, len(d.blocks)))
	}
	buf := make([]byte, types.BlockSize)
	copy(buf, d.blocks[blkno][:])
	return buf, nil
}

func (d *MemDevice) WriteBlock(blkno int, data []byte) error {
	if len(data) != types.BlockSize {
		return types.NewFsError(types.ErrInvalidBlockSize, "WriteBlock", "mem",
			fmt.Sprintf("data size %d does not match block size %d", len(data), types.BlockSize))
	}
	if blkno < 0 || blkno >= len(d.blocks) {
		return types.NewFsError(types.ErrInvalidBlockAddr, "WriteBlock", "mem",
			fmt.Sprintf("block %d of %d", blkno, len(d.blocks)))
	}
	copy(d.blocks[blkno][:], data)
	return nil
}

func (d *MemDevice) BlockCount() int { return len(d.blocks) }

func (d *MemDevice) BlockSize() int { return types.BlockSize }

func (d *MemDevice) Close() error { return nil }
