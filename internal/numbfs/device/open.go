package device

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/numbfs/go-numbfs/internal/numbfs/types"
)

// CreateFileDevice opens or creates a format target. A size of zero
// means "the whole device". Regular files are grown to the requested
// size; a block device smaller than the requested size is rejected, and
// a larger one is logically truncated to it.
func CreateFileDevice(path string, size int64) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, types.NewFsError(types.ErrIO, "CreateFileDevice", path, err.Error())
	}

	devSize, err := deviceSize(f)
	if err != nil {
		f.Close()
		return nil, types.NewFsError(types.ErrIO, "CreateFileDevice", path, err.Error())
	}

	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		f.Close()
		return nil, types.NewFsError(types.ErrIO, "CreateFileDevice", path, err.Error())
	}
	regular := st.Mode&unix.S_IFMT == unix.S_IFREG

	switch {
	case size <= 0:
		size = devSize
	case devSize < size && regular:
		if err := unix.Ftruncate(int(f.Fd()), size); err != nil {
			f.Close()
			return nil, types.NewFsError(types.ErrIO, "CreateFileDevice", path, err.Error())
		}
	case devSize < size:
		f.Close()
		return nil, types.NewFsError(types.ErrInvalidArgument, "CreateFileDevice", path,
			fmt.Sprintf("device size %d smaller than requested size %d", devSize, size))
	}

	if size < 2*types.BlockSize {
		f.Close()
		return nil, types.NewFsError(types.ErrInvalidArgument, "CreateFileDevice", path,
			fmt.Sprintf("target size %d smaller than two blocks", size))
	}

	return &FileDevice{f: f, path: path, blockCount: int(size / types.BlockSize)}, nil
}

// deviceSize determines the usable byte size of the backing store:
// fstat for regular files, the block-size ioctl for device nodes.
func deviceSize(f *os.File) (int64, error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return 0, err
	}
	if st.Mode&unix.S_IFMT == unix.S_IFBLK {
		sz, err := unix.IoctlGetInt(int(f.Fd()), unix.BLKGETSIZE64)
		if err != nil {
			return 0, err
		}
		return int64(sz), nil
	}
	return st.Size, nil
}
