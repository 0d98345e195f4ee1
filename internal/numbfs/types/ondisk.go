package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Serialization and deserialization of the on-disk records. Each follows
// the same pattern:
//
// 1. Validate data length against the record size
// 2. Read or write fields in strict format order, little-endian
// 3. Map the hole sentinel to and from the tagged BlockRef
// 4. Zero-fill reserved and padding space on encode

// DecodeSuperblock deserializes the volume header from binary data,
// validating the magic constant.
func DecodeSuperblock(data []byte) (*Superblock, error) {
	if len(data) < SuperblockSize {
		return nil, ErrStructTooShort
	}

	br := NewBinaryReader(data, binary.LittleEndian)
	sb := &Superblock{}

	magic, err := br.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != Magic {
		return nil, NewFsError(ErrInvalidMagic, "DecodeSuperblock", "",
			fmt.Sprintf("magic 0x%08X", magic))
	}

	if sb.Feature, err = br.ReadUint32(); err != nil {
		return nil, fmt.Errorf("failed to read feature flags: %w", err)
	}
	if sb.IBitmapStart, err = br.ReadUint32(); err != nil {
		return nil, fmt.Errorf("failed to read inode bitmap start: %w", err)
	}
	if sb.InodeStart, err = br.ReadUint32(); err != nil {
		return nil, fmt.Errorf("failed to read inode table start: %w", err)
	}
	if sb.BBitmapStart, err = br.ReadUint32(); err != nil {
		return nil, fmt.Errorf("failed to read block bitmap start: %w", err)
	}
	if sb.DataStart, err = br.ReadUint32(); err != nil {
		return nil, fmt.Errorf("failed to read data zone start: %w", err)
	}
	if sb.TotalInodes, err = br.ReadUint32(); err != nil {
		return nil, fmt.Errorf("failed to read inode total: %w", err)
	}
	if sb.FreeInodes, err = br.ReadUint32(); err != nil {
		return nil, fmt.Errorf("failed to read free inode count: %w", err)
	}
	if sb.DataBlocks, err = br.ReadUint32(); err != nil {
		return nil, fmt.Errorf("failed to read data block total: %w", err)
	}
	if sb.FreeBlocks, err = br.ReadUint32(); err != nil {
		return nil, fmt.Errorf("failed to read free block count: %w", err)
	}

	return sb, nil
}

// EncodeSuperblock serializes the volume header to its 128-byte binary
// form, reserved space zeroed.
func EncodeSuperblock(sb *Superblock) ([]byte, error) {
	buf := new(bytes.Buffer)
	bw := NewBinaryWriter(buf, binary.LittleEndian)

	if err := bw.WriteUint32(Magic); err != nil {
		return nil, fmt.Errorf("failed to write magic: %w", err)
	}
	if err := bw.WriteUint32(sb.Feature); err != nil {
		return nil, err
	}
	if err := bw.WriteUint32(sb.IBitmapStart); err != nil {
		return nil, err
	}
	if err := bw.WriteUint32(sb.InodeStart); err != nil {
		return nil, err
	}
	if err := bw.WriteUint32(sb.BBitmapStart); err != nil {
		return nil, err
	}
	if err := bw.WriteUint32(sb.DataStart); err != nil {
		return nil, err
	}
	if err := bw.WriteUint32(sb.TotalInodes); err != nil {
		return nil, err
	}
	if err := bw.WriteUint32(sb.FreeInodes); err != nil {
		return nil, err
	}
	if err := bw.WriteUint32(sb.DataBlocks); err != nil {
		return nil, err
	}
	if err := bw.WriteUint32(sb.FreeBlocks); err != nil {
		return nil, err
	}
	if err := bw.WriteBytes(make([]byte, SuperblockSize-buf.Len())); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecodeInode deserializes one 64-byte inode record. Direct block slots
// holding the hole sentinel decode to a Hole reference; any other
// negative address is corruption.
func DecodeInode(data []byte) (*InodeRec, error) {
	if len(data) < InodeSize {
		return nil, ErrStructTooShort
	}

	br := NewBinaryReader(data, binary.LittleEndian)
	rec := &InodeRec{}
	var err error

	if rec.Ino, err = br.ReadUint16(); err != nil {
		return nil, fmt.Errorf("failed to read inode number: %w", err)
	}
	if rec.Nlink, err = br.ReadUint16(); err != nil {
		return nil, fmt.Errorf("failed to read link count: %w", err)
	}
	if rec.Uid, err = br.ReadUint16(); err != nil {
		return nil, fmt.Errorf("failed to read uid: %w", err)
	}
	if rec.Gid, err = br.ReadUint16(); err != nil {
		return nil, fmt.Errorf("failed to read gid: %w", err)
	}
	if rec.Mode, err = br.ReadUint32(); err != nil {
		return nil, fmt.Errorf("failed to read mode: %w", err)
	}
	if rec.Size, err = br.ReadUint32(); err != nil {
		return nil, fmt.Errorf("failed to read size: %w", err)
	}
	if rec.XattrStart, err = br.ReadUint32(); err != nil {
		return nil, fmt.Errorf("failed to read xattr start: %w", err)
	}
	if rec.XattrCount, err = br.ReadUint8(); err != nil {
		return nil, fmt.Errorf("failed to read xattr count: %w", err)
	}
	if err = br.Skip(3); err != nil { // padding
		return nil, err
	}

	for i := 0; i < NumDataEntries; i++ {
		addr, err := br.ReadInt32()
		if err != nil {
			return nil, fmt.Errorf("failed to read data slot %d: %w", i, err)
		}
		switch {
		case addr == holeAddr:
			rec.Data[i] = Hole()
		case addr < 0:
			return nil, NewFsError(ErrCorrupted, "DecodeInode",
				fmt.Sprintf("inode@%d", rec.Ino),
				fmt.Sprintf("data slot %d holds invalid address %d", i, addr))
		default:
			rec.Data[i] = Allocated(addr)
		}
	}

	return rec, nil
}

// EncodeInode serializes one inode record to its 64-byte binary form.
func EncodeInode(rec *InodeRec) ([]byte, error) {
	buf := new(bytes.Buffer)
	bw := NewBinaryWriter(buf, binary.LittleEndian)

	if err := bw.WriteUint16(rec.Ino); err != nil {
		return nil, fmt.Errorf("failed to write inode number: %w", err)
	}
	if err := bw.WriteUint16(rec.Nlink); err != nil {
		return nil, err
	}
	if err := bw.WriteUint16(rec.Uid); err != nil {
		return nil, err
	}
	if err := bw.WriteUint16(rec.Gid); err != nil {
		return nil, err
	}
	if err := bw.WriteUint32(rec.Mode); err != nil {
		return nil, err
	}
	if err := bw.WriteUint32(rec.Size); err != nil {
		return nil, err
	}
	if err := bw.WriteUint32(rec.XattrStart); err != nil {
		return nil, err
	}
	if err := bw.WriteUint8(rec.XattrCount); err != nil {
		return nil, err
	}
	if err := bw.WriteBytes(make([]byte, 3)); err != nil { // padding
		return nil, err
	}

	for i := 0; i < NumDataEntries; i++ {
		addr := holeAddr
		if !rec.Data[i].IsHole() {
			addr = rec.Data[i].Block()
		}
		if err := bw.WriteInt32(addr); err != nil {
			return nil, fmt.Errorf("failed to write data slot %d: %w", i, err)
		}
	}

	return buf.Bytes(), nil
}

// DecodeDirent deserializes one 64-byte directory entry.
func DecodeDirent(data []byte) (*Dirent, error) {
	if len(data) < DirentSize {
		return nil, ErrStructTooShort
	}

	br := NewBinaryReader(data, binary.LittleEndian)
	var err error

	nameLen, err := br.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("failed to read name length: %w", err)
	}
	if int(nameLen) > NameMax {
		return nil, NewFsError(ErrCorrupted, "DecodeDirent", "",
			fmt.Sprintf("name length %d exceeds %d", nameLen, NameMax))
	}

	de := &Dirent{}
	if de.Type, err = br.ReadUint8(); err != nil {
		return nil, fmt.Errorf("failed to read type tag: %w", err)
	}

	name, err := br.ReadBytes(NameMax)
	if err != nil {
		return nil, fmt.Errorf("failed to read name: %w", err)
	}
	de.Name = string(name[:nameLen])

	if de.Ino, err = br.ReadUint16(); err != nil {
		return nil, fmt.Errorf("failed to read inode number: %w", err)
	}

	return de, nil
}

// EncodeDirent serializes one directory entry to its 64-byte binary
// form, the name field null-padded.
func EncodeDirent(de *Dirent) ([]byte, error) {
	if len(de.Name) > NameMax {
		return nil, NewFsError(ErrInvalidArgument, "EncodeDirent", de.Name,
			fmt.Sprintf("name length %d exceeds %d", len(de.Name), NameMax))
	}

	buf := new(bytes.Buffer)
	bw := NewBinaryWriter(buf, binary.LittleEndian)

	if err := bw.WriteUint8(uint8(len(de.Name))); err != nil {
		return nil, fmt.Errorf("failed to write name length: %w", err)
	}
	if err := bw.WriteUint8(de.Type); err != nil {
		return nil, fmt.Errorf("failed to write type tag: %w", err)
	}
	if err := bw.WriteStringWithLen(de.Name, NameMax); err != nil {
		return nil, fmt.Errorf("failed to write name: %w", err)
	}
	if err := bw.WriteUint16(de.Ino); err != nil {
		return nil, fmt.Errorf("failed to write inode number: %w", err)
	}

	return buf.Bytes(), nil
}
