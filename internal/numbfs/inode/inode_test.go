package inode_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numbfs/go-numbfs/internal/numbfs/device"
	"github.com/numbfs/go-numbfs/internal/numbfs/inode"
	"github.com/numbfs/go-numbfs/internal/numbfs/mkfs"
	"github.com/numbfs/go-numbfs/internal/numbfs/types"
	"github.com/numbfs/go-numbfs/internal/numbfs/volume"
)

// newTestFs formats a 10MiB in-memory volume and allocates one regular
// file inode on it.
func newTestFs(t *testing.T) (*volume.Volume, *inode.Inode) {
	t.Helper()

	dev := device.NewMemDevice(2560)
	v, err := mkfs.Format(dev, mkfs.Options{NumInodes: 4096})
	require.NoError(t, err)

	nid, err := v.AllocInode()
	require.NoError(t, err)

	ino, err := inode.Get(v, nid)
	require.NoError(t, err)
	ino.Mode = types.ModeReg | 0o644
	ino.Nlink = 1
	require.NoError(t, ino.Flush())
	return v, ino
}

func TestGetOutOfRange(t *testing.T) {
	v, _ := newTestFs(t)

	_, err := inode.Get(v, 4096)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
	_, err = inode.Get(v, -1)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestFlushRoundTrip(t *testing.T) {
	v, ino := newTestFs(t)

	ino.Uid = 1234
	ino.Gid = 5678
	ino.Size = 99
	require.NoError(t, ino.Flush())

	got, err := inode.Get(v, ino.Nid)
	require.NoError(t, err)
	assert.Equal(t, 1234, got.Uid)
	assert.Equal(t, 5678, got.Gid)
	assert.Equal(t, 99, got.Size)
	assert.Equal(t, types.ModeReg|0o644, got.Mode)
}

func TestWriteIntoSparseFile(t *testing.T) {
	_, ino := newTestFs(t)

	// Write one byte into the eighth logical block. The first seven
	// slots stay holes; the size covers the whole gap.
	p := []byte{0x5A}
	off := 7*types.BlockSize + 100
	require.NoError(t, ino.Pwrite(p, off))

	assert.Equal(t, off+1, ino.Size)
	for i := 0; i < 7; i++ {
		assert.True(t, ino.Data[i].IsHole(), "slot %d should stay a hole", i)
	}
	assert.False(t, ino.Data[7].IsHole())

	// The hole region reads as zeros.
	buf := make([]byte, 512)
	require.NoError(t, ino.Pread(buf, 3*types.BlockSize))
	assert.True(t, bytes.Equal(buf, make([]byte, 512)))

	// The written byte reads back, surrounded by the zero fill of the
	// freshly allocated block.
	buf = make([]byte, 3)
	require.NoError(t, ino.Pread(buf, off-1))
	assert.Equal(t, []byte{0, 0x5A, 0}, buf)
}

func TestSubBlockWriteFidelity(t *testing.T) {
	_, ino := newTestFs(t)

	require.NoError(t, ino.Pwrite([]byte("aaaaaaaa"), 0))
	require.NoError(t, ino.Pwrite([]byte("bb"), 3))

	buf := make([]byte, 8)
	require.NoError(t, ino.Pread(buf, 0))
	assert.Equal(t, []byte("aaabbaaa"), buf)
	assert.Equal(t, 8, ino.Size, "an interior write does not extend the size")
}

func TestReadPastEnd(t *testing.T) {
	_, ino := newTestFs(t)

	require.NoError(t, ino.Pwrite([]byte("data"), 0))

	buf := []byte{0xFF, 0xFF}
	require.NoError(t, ino.Pread(buf, types.BlockSize))
	assert.Equal(t, []byte{0, 0}, buf)
}

func TestCrossBlockRejected(t *testing.T) {
	_, ino := newTestFs(t)

	p := make([]byte, 100)
	err := ino.Pwrite(p, types.BlockSize-50)
	assert.ErrorIs(t, err, types.ErrTooBig)
	err = ino.Pread(p, types.BlockSize-50)
	assert.ErrorIs(t, err, types.ErrTooBig)
}

func TestBeyondDirectBlocksRejected(t *testing.T) {
	_, ino := newTestFs(t)

	err := ino.Pwrite([]byte{1}, types.MaxFileSize)
	assert.ErrorIs(t, err, types.ErrTooBig)
}

func TestExtentModeRejected(t *testing.T) {
	_, ino := newTestFs(t)

	_, err := ino.BlockAddr(0, false, true)
	assert.ErrorIs(t, err, types.ErrNotSupported)
}

func TestBlockAddrWithoutAllocate(t *testing.T) {
	_, ino := newTestFs(t)

	ref, err := ino.BlockAddr(0, false, false)
	require.NoError(t, err)
	assert.True(t, ref.IsHole(), "reading a hole is not an error")
}

func TestWriteConsumesOneBlock(t *testing.T) {
	v, ino := newTestFs(t)

	free := v.FreeBlocks
	require.NoError(t, ino.Pwrite([]byte("x"), 0))
	assert.Equal(t, free-1, v.FreeBlocks)

	// A second write to the same block allocates nothing.
	require.NoError(t, ino.Pwrite([]byte("y"), 10))
	assert.Equal(t, free-1, v.FreeBlocks)
}

func TestEmptyDir(t *testing.T) {
	v, _ := newTestFs(t)

	parent := types.RootNid
	nid, err := inode.EmptyDir(v, parent)
	require.NoError(t, err)

	ino, err := inode.Get(v, nid)
	require.NoError(t, err)
	assert.True(t, types.IsDir(ino.Mode))
	assert.Equal(t, 2, ino.Nlink)
	assert.Equal(t, 2*types.DirentSize, ino.Size)

	buf := make([]byte, types.DirentSize)
	require.NoError(t, ino.Pread(buf, 0))
	de, err := types.DecodeDirent(buf)
	require.NoError(t, err)
	assert.Equal(t, ".", de.Name)
	assert.Equal(t, uint16(nid), de.Ino)
	assert.Equal(t, types.DirentDir, de.Type)

	require.NoError(t, ino.Pread(buf, types.DirentSize))
	de, err = types.DecodeDirent(buf)
	require.NoError(t, err)
	assert.Equal(t, "..", de.Name)
	assert.Equal(t, uint16(parent), de.Ino)
}
