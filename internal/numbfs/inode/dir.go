package inode

import (
	"os"

	"github.com/numbfs/go-numbfs/internal/numbfs/types"
	"github.com/numbfs/go-numbfs/internal/numbfs/volume"
)

const (
	dot    = "."
	dotdot = ".."
)

// EmptyDir allocates a fresh inode and writes a new directory's initial
// content: "." pointing at the directory itself and ".." pointing at
// parentNid. It returns the new inode number. This is the only code
// path in the core that produces directory content.
func EmptyDir(vol *volume.Volume, parentNid int) (int, error) {
	nid, err := vol.AllocInode()
	if err != nil {
		return 0, err
	}

	ino := &Inode{
		vol:   vol,
		Nid:   nid,
		Mode:  types.ModeDir | 0o755,
		Nlink: 2,
		Uid:   os.Getuid(),
		Gid:   os.Getgid(),
	}
	for i := range ino.Data {
		ino.Data[i] = types.Hole()
	}

	buf := make([]byte, 2*types.DirentSize)
	self, err := types.EncodeDirent(&types.Dirent{
		Name: dot,
		Type: types.DirentDir,
		Ino:  uint16(nid),
	})
	if err != nil {
		return 0, err
	}
	copy(buf, self)

	parent, err := types.EncodeDirent(&types.Dirent{
		Name: dotdot,
		Type: types.DirentDir,
		Ino:  uint16(parentNid),
	})
	if err != nil {
		return 0, err
	}
	copy(buf[types.DirentSize:], parent)

	if err := ino.Pwrite(buf, 0); err != nil {
		return 0, err
	}
	return nid, nil
}
