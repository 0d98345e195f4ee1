package volume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numbfs/go-numbfs/internal/numbfs/device"
	"github.com/numbfs/go-numbfs/internal/numbfs/types"
)

// newTestVolume formats the metadata zones of a small in-memory volume
// by hand: 256 blocks, 64 inodes, zones per ComputeLayout.
func newTestVolume(t *testing.T) *Volume {
	t.Helper()

	dev := device.NewMemDevice(256)
	lay, err := ComputeLayout(int64(256)*types.BlockSize, 64)
	require.NoError(t, err)

	v := New(dev, &types.Superblock{
		IBitmapStart: uint32(lay.IBitmapStart),
		InodeStart:   uint32(lay.InodeStart),
		BBitmapStart: uint32(lay.BBitmapStart),
		DataStart:    uint32(lay.DataStart),
		TotalInodes:  64,
		FreeInodes:   64,
		DataBlocks:   uint32(lay.DataBlocks),
		FreeBlocks:   uint32(lay.DataBlocks),
	})
	require.NoError(t, v.WriteSuper())
	return v
}

func TestWriteSuperOpenRoundTrip(t *testing.T) {
	v := newTestVolume(t)

	got, err := Open(v.Device())
	require.NoError(t, err)

	assert.Equal(t, v.TotalInodes, got.TotalInodes)
	assert.Equal(t, v.FreeInodes, got.FreeInodes)
	assert.Equal(t, v.DataBlocks, got.DataBlocks)
	assert.Equal(t, v.FreeBlocks, got.FreeBlocks)
	assert.Equal(t, v.IBitmapStart, got.IBitmapStart)
	assert.Equal(t, v.InodeStart, got.InodeStart)
	assert.Equal(t, v.BBitmapStart, got.BBitmapStart)
	assert.Equal(t, v.DataStart, got.DataStart)
}

func TestOpenBadMagic(t *testing.T) {
	dev := device.NewMemDevice(4)

	_, err := Open(dev)
	assert.ErrorIs(t, err, types.ErrInvalidMagic)
}

func TestAllocFreeInodeCounters(t *testing.T) {
	v := newTestVolume(t)

	nid, err := v.AllocInode()
	require.NoError(t, err)
	assert.Equal(t, 0, nid, "a fresh bitmap allocates bit 0 first")
	assert.Equal(t, 63, v.FreeInodes)

	nid2, err := v.AllocInode()
	require.NoError(t, err)
	assert.Equal(t, 1, nid2)

	require.NoError(t, v.FreeInode(nid))
	assert.Equal(t, 63, v.FreeInodes)

	nid3, err := v.AllocInode()
	require.NoError(t, err)
	assert.Equal(t, 0, nid3, "a freed inode number is reused")
}

func TestAllocInodeExhausted(t *testing.T) {
	v := newTestVolume(t)

	for i := 0; i < 64; i++ {
		_, err := v.AllocInode()
		require.NoError(t, err)
	}
	assert.Equal(t, 0, v.FreeInodes)

	// The counter fast path rejects without scanning the bitmap.
	_, err := v.AllocInode()
	assert.ErrorIs(t, err, types.ErrNoSpace)
}

func TestAllocFreeBlockCounters(t *testing.T) {
	v := newTestVolume(t)

	blk, err := v.AllocBlock()
	require.NoError(t, err)
	assert.Equal(t, 0, blk)
	assert.Equal(t, v.DataBlocks-1, v.FreeBlocks)

	require.NoError(t, v.FreeBlock(blk))
	assert.Equal(t, v.DataBlocks, v.FreeBlocks)
}

func TestFreeOutOfRange(t *testing.T) {
	v := newTestVolume(t)

	assert.ErrorIs(t, v.FreeInode(64), types.ErrInvalidArgument)
	assert.ErrorIs(t, v.FreeInode(-1), types.ErrInvalidArgument)
	assert.ErrorIs(t, v.FreeBlock(v.DataBlocks), types.ErrInvalidArgument)
	assert.ErrorIs(t, v.FreeBlock(-1), types.ErrInvalidArgument)
}

func TestBlockTranslation(t *testing.T) {
	v := newTestVolume(t)

	assert.Equal(t, v.InodeStart, v.InodeBlock(0))
	assert.Equal(t, v.InodeStart, v.InodeBlock(types.InodesPerBlock-1))
	assert.Equal(t, v.InodeStart+1, v.InodeBlock(types.InodesPerBlock))
	assert.Equal(t, v.DataStart, v.DataBlock(0))
	assert.Equal(t, v.DataStart+7, v.DataBlock(7))
}
