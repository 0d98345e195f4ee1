package device

import (
	"fmt"
	"os"

	"github.com/numbfs/go-numbfs/internal/numbfs/types"
)

// BlockDevice provides fixed-size block I/O against a backing store.
// Transfers are whole blocks only; callers needing sub-block granularity
// must read-modify-write a full block themselves.
type BlockDevice interface {
	// ReadBlock reads the block at blkno.
	ReadBlock(blkno int) ([]byte, error)

	// WriteBlock writes one full block at blkno.
	WriteBlock(blkno int, data []byte) error

	// BlockCount reports how big the device is, in blocks.
	BlockCount() int

	// BlockSize reports the transfer size, in bytes.
	BlockSize() int

	// Close releases the backing store.
	Close() error
}

// FileDevice implements BlockDevice backed by a regular file or a block
// device node.
type FileDevice struct {
	f          *os.File
	path       string
	blockCount int
}

var _ BlockDevice = (*FileDevice)(nil)

// OpenFileDevice opens an existing volume image or device for block I/O.
func OpenFileDevice(path string) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, types.NewFsError(types.ErrIO, "OpenFileDevice", path, err.Error())
	}

	size, err := deviceSize(f)
	if err != nil {
		f.Close()
		return nil, types.NewFsError(types.ErrIO, "OpenFileDevice", path, err.Error())
	}
	if size < 2*types.BlockSize {
		f.Close()
		return nil, types.NewFsError(types.ErrInvalidBlockSize, "OpenFileDevice", path,
			fmt.Sprintf("device size %d smaller than two blocks", size))
	}

	return &FileDevice{f: f, path: path, blockCount: int(size / types.BlockSize)}, nil
}

// ReadBlock reads a single block. A transfer of fewer bytes than one
// block is an I/O error.
func (d *FileDevice) ReadBlock(blkno int) ([]byte, error) {
	if blkno < 0 || blkno >= d.blockCount {
		return nil, types.NewFsError(types.ErrInvalidBlockAddr, "ReadBlock", d.path,
			fmt.Sprintf("block %d of %d", blkno, d.blockCount))
	}
	buf := make([]byte, types.BlockSize)
	if _, err := d.f.ReadAt(buf, int64(blkno)*types.BlockSize); err != nil {
		return nil, types.NewFsError(types.ErrIO, "ReadBlock", d.path,
			fmt.Sprintf("block %d: %v", blkno, err))
	}
	return buf, nil
}

// WriteBlock writes a single block. The data must be exactly one block.
func (d *FileDevice) WriteBlock(blkno int, data []byte) error {
	if len(data) != types.BlockSize {
		return types.NewFsError(types.ErrInvalidBlockSize, "WriteBlock", d.path,
			fmt.Sprintf("data size %d does not match block size %d", len(data), types.BlockSize))
	}
	if blkno < 0 || blkno >= d.blockCount {
		return types.NewFsError(types.ErrInvalidBlockAddr, "WriteBlock", d.path,
			fmt.Sprintf("block %d of %d", blkno, d.blockCount))
	}
	if _, err := d.f.WriteAt(data, int64(blkno)*types.BlockSize); err != nil {
		return types.NewFsError(types.ErrIO, "WriteBlock", d.path,
			fmt.Sprintf("block %d: %v", blkno, err))
	}
	return nil
}

// BlockCount returns the total number of blocks available on the device.
func (d *FileDevice) BlockCount() int {
	return d.blockCount
}

// BlockSize returns the fixed transfer size.
func (d *FileDevice) BlockSize() int {
	return types.BlockSize
}

// Path returns the path the device was opened from.
func (d *FileDevice) Path() string {
	return d.path
}

// Close closes the underlying file.
func (d *FileDevice) Close() error {
	return d.f.Close()
}
