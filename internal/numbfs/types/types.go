package types

// Fixed on-disk geometry. Offsets and widths are part of the format
// contract, not an implementation detail.
const (
	// BlockSize is the fixed size of every on-disk block in bytes.
	BlockSize = 4096

	// Magic identifies a numbfs superblock ("NUMB").
	Magic uint32 = 0x4E554D42

	// SuperblockBlock is the block holding the superblock. Block 0 is
	// reserved and unused.
	SuperblockBlock = 1

	// SuperblockSize is the used portion of the superblock block.
	SuperblockSize = 128

	// InodeSize is the size of one on-disk inode record.
	InodeSize = 64

	// DirentSize is the size of one on-disk directory entry.
	DirentSize = 64

	// NameMax is the capacity of a directory entry's name field.
	NameMax = 60

	// NumDataEntries is the number of direct block slots per inode.
	NumDataEntries = 10

	// MaxFileSize is the file size ceiling imposed by direct-only
	// addressing.
	MaxFileSize = NumDataEntries * BlockSize

	// RootNid is the root directory's inode number: the first bit of a
	// freshly formatted inode bitmap.
	RootNid = 0

	// InodesPerBlock is the number of inode records per table block.
	InodesPerBlock = BlockSize / InodeSize

	// BitsPerBlock is the number of bitmap bits per block.
	BitsPerBlock = BlockSize * 8
)

// holeAddr is the on-disk sentinel stored in an empty direct block slot.
// In memory a slot is always a BlockRef, never this raw value.
const holeAddr int32 = -32

// Directory entry type tags.
const (
	DirentDir  uint8 = 4
	DirentReg  uint8 = 8
	DirentLink uint8 = 10
)

// File mode bits (type portion).
const (
	ModeFmt  uint32 = 0o170000
	ModeDir  uint32 = 0o040000
	ModeReg  uint32 = 0o100000
	ModeLink uint32 = 0o120000
)

// IsDir reports whether mode describes a directory.
func IsDir(mode uint32) bool { return mode&ModeFmt == ModeDir }

// IsReg reports whether mode describes a regular file.
func IsReg(mode uint32) bool { return mode&ModeFmt == ModeReg }

// IsLink reports whether mode describes a symbolic link.
func IsLink(mode uint32) bool { return mode&ModeFmt == ModeLink }

// BlockRef is the resolved address of one logical block in an inode's
// address space: either a data-zone-relative block number or a hole.
// The zero value is an allocated reference to block 0, so construct
// references through Hole and Allocated only.
type BlockRef struct {
	blk  int32
	hole bool
}

// Hole returns a BlockRef describing an unbacked logical block.
func Hole() BlockRef { return BlockRef{hole: true} }

// Allocated returns a BlockRef for the given data-zone-relative block.
func Allocated(blk int32) BlockRef { return BlockRef{blk: blk} }

// IsHole reports whether the reference describes a hole.
func (r BlockRef) IsHole() bool { return r.hole }

// Block returns the data-zone-relative block number. It must not be
// called on a hole.
func (r BlockRef) Block() int32 {
	if r.hole {
		panic("types: Block called on a hole reference")
	}
	return r.blk
}

// Superblock is the decoded 128-byte volume header. Zone spans are
// derived from the counts; only the zone starts are stored.
type Superblock struct {
	Feature      uint32
	IBitmapStart uint32
	InodeStart   uint32
	BBitmapStart uint32
	DataStart    uint32
	TotalInodes  uint32
	FreeInodes   uint32
	DataBlocks   uint32
	FreeBlocks   uint32
}

// InodeRec is the decoded 64-byte inode record. The xattr fields are
// declared by the format but carry no implemented semantics; they are
// preserved across decode/encode round trips.
type InodeRec struct {
	Ino        uint16
	Nlink      uint16
	Uid        uint16
	Gid        uint16
	Mode       uint32
	Size       uint32
	XattrStart uint32
	XattrCount uint8
	Data       [NumDataEntries]BlockRef
}

// Dirent is the decoded 64-byte directory entry.
type Dirent struct {
	Type uint8
	Name string
	Ino  uint16
}
