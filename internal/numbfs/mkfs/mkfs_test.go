package mkfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numbfs/go-numbfs/internal/numbfs/device"
	"github.com/numbfs/go-numbfs/internal/numbfs/inode"
	"github.com/numbfs/go-numbfs/internal/numbfs/types"
	"github.com/numbfs/go-numbfs/internal/numbfs/volume"
)

func TestFormatFreshVolume(t *testing.T) {
	dev := device.NewMemDevice(2560)

	v, err := Format(dev, Options{NumInodes: 4096})
	require.NoError(t, err)

	assert.Equal(t, 4096, v.TotalInodes)
	assert.Equal(t, 4095, v.FreeInodes, "only the root inode is in use")
	assert.Equal(t, 2491, v.DataBlocks)
	assert.Equal(t, 2490, v.FreeBlocks, "only the root directory block is in use")
	assert.Equal(t, 2, v.IBitmapStart)
	assert.Equal(t, 3, v.InodeStart)
	assert.Equal(t, 67, v.BBitmapStart)
	assert.Equal(t, 68, v.DataStart)
}

func TestFormatRootDirectory(t *testing.T) {
	dev := device.NewMemDevice(2560)

	v, err := Format(dev, Options{NumInodes: 4096})
	require.NoError(t, err)

	root, err := inode.Get(v, types.RootNid)
	require.NoError(t, err)
	assert.True(t, types.IsDir(root.Mode))
	assert.Equal(t, 2, root.Nlink)
	assert.Equal(t, 2*types.DirentSize, root.Size)

	// Both entries point back at the root itself.
	buf := make([]byte, types.DirentSize)
	for i, wantName := range []string{".", ".."} {
		require.NoError(t, root.Pread(buf, i*types.DirentSize))
		de, err := types.DecodeDirent(buf)
		require.NoError(t, err)
		assert.Equal(t, wantName, de.Name)
		assert.Equal(t, uint16(types.RootNid), de.Ino)
		assert.Equal(t, types.DirentDir, de.Type)
	}
}

func TestFormatSurvivesReopen(t *testing.T) {
	dev := device.NewMemDevice(2560)

	_, err := Format(dev, Options{NumInodes: 4096})
	require.NoError(t, err)

	v, err := volume.Open(dev)
	require.NoError(t, err)
	assert.Equal(t, 4095, v.FreeInodes)
	assert.Equal(t, 2490, v.FreeBlocks)

	// The first allocations after reopen skip what the root directory
	// already uses.
	nid, err := v.AllocInode()
	require.NoError(t, err)
	assert.Equal(t, 1, nid)

	blk, err := v.AllocBlock()
	require.NoError(t, err)
	assert.Equal(t, 1, blk)
}

func TestFormatUnallocatedInodesHoleFilled(t *testing.T) {
	dev := device.NewMemDevice(2560)

	v, err := Format(dev, Options{NumInodes: 4096})
	require.NoError(t, err)

	// An inode that was never written must decode with every direct
	// slot a hole, not an all-zero record pointing at data block 0.
	ino, err := inode.Get(v, 4095)
	require.NoError(t, err)
	for i, ref := range ino.Data {
		assert.True(t, ref.IsHole(), "slot %d of an untouched inode", i)
	}
}

func TestFormatDeterministic(t *testing.T) {
	format := func() *device.MemDevice {
		dev := device.NewMemDevice(2560)
		_, err := Format(dev, Options{NumInodes: 4096})
		require.NoError(t, err)
		return dev
	}
	a, b := format(), format()

	// Everything up to and including the root directory's data block is
	// fully determined by the size and inode count.
	for blk := 0; blk <= 68; blk++ {
		ba, err := a.ReadBlock(blk)
		require.NoError(t, err)
		bb, err := b.ReadBlock(blk)
		require.NoError(t, err)
		assert.Equal(t, ba, bb, "block %d differs between formats", blk)
	}
}

func TestFormatSizeLargerThanDevice(t *testing.T) {
	dev := device.NewMemDevice(16)

	_, err := Format(dev, Options{NumInodes: 64, Size: 17 * types.BlockSize})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestFormatBadInodeCount(t *testing.T) {
	dev := device.NewMemDevice(2560)

	_, err := Format(dev, Options{NumInodes: 100})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"4096", 4096, false},
		{"512K", 512 << 10, false},
		{"512k", 512 << 10, false},
		{"10M", 10 << 20, false},
		{"1G", 1 << 30, false},
		{" 10M ", 10 << 20, false},
		{"", 0, true},
		{"M", 0, true},
		{"-1M", 0, true},
		{"10X", 0, true},
		{"ten", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
