// Package inode implements inode metadata I/O, logical-to-physical block
// address translation, and byte-range read/write within an inode's
// address space. Files are addressed through ten direct block slots
// only; there are no indirect blocks, and extent mode is a reserved
// feature that every operation rejects.
package inode

import (
	"fmt"

	"github.com/numbfs/go-numbfs/internal/numbfs/types"
	"github.com/numbfs/go-numbfs/internal/numbfs/volume"
)

// Inode is the decoded in-memory inode bound to its volume context.
// Mutating operations write the record back through Flush before they
// return (write-through, no write-back caching).
type Inode struct {
	vol *volume.Volume

	Nid        int
	Mode       uint32
	Nlink      int
	Uid        int
	Gid        int
	Size       int
	XattrStart uint32
	XattrCount uint8
	Data       [types.NumDataEntries]types.BlockRef
}

// Get reads and decodes the inode record at nid from its containing
// table block.
func Get(vol *volume.Volume, nid int) (*Inode, error) {
	if nid < 0 || nid >= vol.TotalInodes {
		return nil, types.NewFsError(types.ErrInvalidArgument, "inode.Get", "",
			fmt.Sprintf("inode %d outside formatted range %d", nid, vol.TotalInodes))
	}

	buf, err := vol.Device().ReadBlock(vol.InodeBlock(nid))
	if err != nil {
		return nil, err
	}

	off := (nid % types.InodesPerBlock) * types.InodeSize
	rec, err := types.DecodeInode(buf[off : off+types.InodeSize])
	if err != nil {
		return nil, err
	}

	ino := &Inode{
		vol:        vol,
		Nid:        nid,
		Mode:       rec.Mode,
		Nlink:      int(rec.Nlink),
		Uid:        int(rec.Uid),
		Gid:        int(rec.Gid),
		Size:       int(rec.Size),
		XattrStart: rec.XattrStart,
		XattrCount: rec.XattrCount,
		Data:       rec.Data,
	}
	return ino, nil
}

// Volume returns the session context the inode is bound to.
func (ino *Inode) Volume() *volume.Volume {
	return ino.vol
}

// Flush re-encodes the inode record and writes it back into its owning
// table block, making the metadata durable.
func (ino *Inode) Flush() error {
	blk := ino.vol.InodeBlock(ino.Nid)
	buf, err := ino.vol.Device().ReadBlock(blk)
	if err != nil {
		return err
	}

	rec := &types.InodeRec{
		Ino:        uint16(ino.Nid),
		Nlink:      uint16(ino.Nlink),
		Uid:        uint16(ino.Uid),
		Gid:        uint16(ino.Gid),
		Mode:       ino.Mode,
		Size:       uint32(ino.Size),
		XattrStart: ino.XattrStart,
		XattrCount: ino.XattrCount,
		Data:       ino.Data,
	}
	enc, err := types.EncodeInode(rec)
	if err != nil {
		return err
	}

	off := (ino.Nid % types.InodesPerBlock) * types.InodeSize
	copy(buf[off:off+types.InodeSize], enc)

	if err := ino.vol.Device().WriteBlock(blk, buf); err != nil {
		return types.NewFsError(types.ErrIO, "inode.Flush",
			fmt.Sprintf("inode@%d", ino.Nid), err.Error())
	}
	return nil
}

// BlockAddr translates the byte position pos in the inode's address
// space to a data-zone-relative block reference.
//
// With allocate set, a hole slot is backed by a freshly allocated,
// zero-filled data block and the in-memory slot is updated; the inode
// record itself is not persisted here. Without allocate, a hole slot
// resolves to a Hole reference, which is not an error: callers tell
// holes from allocated blocks by inspecting the reference.
func (ino *Inode) BlockAddr(pos int, allocate, extent bool) (types.BlockRef, error) {
	if extent {
		return types.Hole(), types.NewFsError(types.ErrNotSupported, "inode.BlockAddr",
			fmt.Sprintf("inode@%d", ino.Nid), "extent translation is a reserved feature")
	}
	if pos/types.BlockSize >= types.NumDataEntries {
		return types.Hole(), types.NewFsError(types.ErrTooBig, "inode.BlockAddr",
			fmt.Sprintf("inode@%d", ino.Nid),
			fmt.Sprintf("position %d beyond %d direct blocks", pos, types.NumDataEntries))
	}

	slot := pos / types.BlockSize
	if allocate && ino.Data[slot].IsHole() {
		blk, err := ino.vol.AllocBlock()
		if err != nil {
			return types.Hole(), err
		}
		zero := make([]byte, types.BlockSize)
		if err := ino.vol.Device().WriteBlock(ino.vol.DataBlock(blk), zero); err != nil {
			return types.Hole(), err
		}
		ino.Data[slot] = types.Allocated(int32(blk))
	}

	return ino.Data[slot], nil
}

// Pwrite writes p into the inode's address space at offset. The write
// must not cross a block boundary; callers split larger writes
// themselves. The recorded size is extended to the end of the write
// even across holes, so a write past the current end leaves a logical
// hole that reads as zero.
func (ino *Inode) Pwrite(p []byte, offset int) error {
	off := offset % types.BlockSize
	if off+len(p) > types.BlockSize {
		return types.NewFsError(types.ErrTooBig, "inode.Pwrite",
			fmt.Sprintf("inode@%d", ino.Nid),
			fmt.Sprintf("write of %d at %d crosses a block boundary", len(p), offset))
	}

	if offset+len(p) > ino.Size {
		ino.Size = offset + len(p)
	}

	ref, err := ino.BlockAddr(offset, true, false)
	if err != nil {
		return err
	}

	// A write may not cover the whole block: read-modify-write.
	blk := ino.vol.DataBlock(int(ref.Block()))
	buf, err := ino.vol.Device().ReadBlock(blk)
	if err != nil {
		return err
	}
	copy(buf[off:], p)
	if err := ino.vol.Device().WriteBlock(blk, buf); err != nil {
		return err
	}

	return ino.Flush()
}

// Pread reads into p from the inode's address space at offset, with the
// same single-block constraint as Pwrite. Reads at or beyond the
// recorded size, and reads of holes, fill p with zeros without touching
// the backing store.
func (ino *Inode) Pread(p []byte, offset int) error {
	off := offset % types.BlockSize
	if off+len(p) > types.BlockSize {
		return types.NewFsError(types.ErrTooBig, "inode.Pread",
			fmt.Sprintf("inode@%d", ino.Nid),
			fmt.Sprintf("read of %d at %d crosses a block boundary", len(p), offset))
	}

	ref, err := ino.BlockAddr(offset, false, false)
	if err != nil {
		return err
	}

	if offset >= ino.Size || ref.IsHole() {
		for i := range p {
			p[i] = 0
		}
		return nil
	}

	buf, err := ino.vol.Device().ReadBlock(ino.vol.DataBlock(int(ref.Block())))
	if err != nil {
		return err
	}
	copy(p, buf[off:off+len(p)])
	return nil
}
