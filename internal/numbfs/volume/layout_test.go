package volume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numbfs/go-numbfs/internal/numbfs/types"
)

func TestComputeLayout(t *testing.T) {
	tests := []struct {
		name      string
		size      int64
		numInodes int
		want      Layout
	}{
		{
			name:      "10MiB with 4096 inodes",
			size:      10 << 20,
			numInodes: 4096,
			want: Layout{
				TotalBlocks:  2560,
				IBitmapStart: 2,
				InodeStart:   3,
				BBitmapStart: 67,
				DataStart:    68,
				DataBlocks:   2491,
			},
		},
		{
			name:      "1MiB with 64 inodes",
			size:      1 << 20,
			numInodes: 64,
			want: Layout{
				TotalBlocks:  256,
				IBitmapStart: 2,
				InodeStart:   3,
				BBitmapStart: 4,
				DataStart:    5,
				DataBlocks:   250,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeLayout(tt.size, tt.numInodes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeLayoutZoneOrder(t *testing.T) {
	lay, err := ComputeLayout(10<<20, 4096)
	require.NoError(t, err)

	assert.Less(t, lay.IBitmapStart, lay.InodeStart)
	assert.Less(t, lay.InodeStart, lay.BBitmapStart)
	assert.Less(t, lay.BBitmapStart, lay.DataStart)
	assert.LessOrEqual(t, lay.DataStart+lay.DataBlocks, lay.TotalBlocks)
}

func TestComputeLayoutErrors(t *testing.T) {
	_, err := ComputeLayout(10<<20, 100)
	assert.ErrorIs(t, err, types.ErrInvalidArgument, "inode count not a multiple of 8")

	_, err = ComputeLayout(10<<20, 0)
	assert.ErrorIs(t, err, types.ErrInvalidArgument, "zero inodes")

	// Below the minimum for 4096 inodes: two metadata blocks plus the
	// inode table leave no room for data.
	_, err = ComputeLayout(66*types.BlockSize, 4096)
	assert.ErrorIs(t, err, types.ErrInvalidArgument, "size below minimum")
}
