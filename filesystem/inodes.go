package filesystem

import (
	"encoding/binary"
	"fmt"

	"github.com/dargueta/inodefs"
)

// getInode reads the inode with the given ID from the inode table. The returned
// value is a copy; changes must be written back with putInode.
func (fs *FileSystem) getInode(id inodefs.Inumber) (inodefs.Inode, error) {
	if uint(id) >= fs.layout.maxDescriptors {
		return inodefs.Inode{}, inodefs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"invalid inode number: %d not in range [0, %d)",
				id,
				fs.layout.maxDescriptors,
			),
		)
	}

	raw, err := fs.readMetadata(fs.layout.inodeOffset(id), InodeSize)
	if err != nil {
		return inodefs.Inode{}, err
	}

	inode, err := decodeInode(raw)
	if err != nil {
		return inodefs.Inode{}, err
	}
	if inode.ID != id {
		return inodefs.Inode{}, inodefs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf("inode slot %d claims to be inode %d", id, inode.ID),
		)
	}
	return inode, nil
}

// putInode writes an inode back to the slot given by its ID.
func (fs *FileSystem) putInode(inode inodefs.Inode) error {
	if uint(inode.ID) >= fs.layout.maxDescriptors {
		return inodefs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"invalid inode number: %d not in range [0, %d)",
				inode.ID,
				fs.layout.maxDescriptors,
			),
		)
	}
	return fs.writeMetadata(fs.layout.inodeOffset(inode.ID), encodeInode(inode))
}

// findFreeInode returns a blank inode for the lowest unused slot. The slot isn't
// reserved until the caller sets a kind and writes it back.
func (fs *FileSystem) findFreeInode() (inodefs.Inode, error) {
	table, err := fs.readMetadata(
		fs.layout.inodeTableOffset(), fs.layout.maxDescriptors*InodeSize,
	)
	if err != nil {
		return inodefs.Inode{}, err
	}

	for i := uint(0); i < fs.layout.maxDescriptors; i++ {
		// Kind is the first field of the record.
		kind := binary.LittleEndian.Uint32(table[i*InodeSize:])
		if inodefs.Kind(kind) == inodefs.KindUnused {
			return inodefs.Inode{ID: inodefs.Inumber(i)}, nil
		}
	}
	return inodefs.Inode{}, inodefs.ErrNoFreeDescriptors
}

// countFreeInodes returns the number of unused slots in the inode table.
func (fs *FileSystem) countFreeInodes() (uint, error) {
	table, err := fs.readMetadata(
		fs.layout.inodeTableOffset(), fs.layout.maxDescriptors*InodeSize,
	)
	if err != nil {
		return 0, err
	}

	free := uint(0)
	for i := uint(0); i < fs.layout.maxDescriptors; i++ {
		if binary.LittleEndian.Uint32(table[i*InodeSize:]) == uint32(inodefs.KindUnused) {
			free++
		}
	}
	return free, nil
}

// allocateInode reserves a free inode slot for a new object of the given kind.
// The new inode has no links and no data.
func (fs *FileSystem) allocateInode(kind inodefs.Kind) (inodefs.Inode, error) {
	inode, err := fs.findFreeInode()
	if err != nil {
		return inode, err
	}

	inode.Kind = kind
	err = fs.putInode(inode)
	if err != nil {
		return inodefs.Inode{}, err
	}
	fs.log.WithField("inode", inode.ID).WithField("kind", kind).Debug("allocated inode")
	return inode, nil
}

// isOpen reports whether any file descriptor refers to the inode.
func (fs *FileSystem) isOpen(id inodefs.Inumber) bool {
	for _, openID := range fs.openFiles {
		if openID == id {
			return true
		}
	}
	return false
}

// forgetDescriptors closes every descriptor open on inode `id` without touching
// the inode. The slot may be reused, so stale descriptors must not outlive it.
func (fs *FileSystem) forgetDescriptors(id inodefs.Inumber) {
	for fd, openID := range fs.openFiles {
		if openID == id {
			delete(fs.openFiles, fd)
		}
	}
}

// releaseIfUnreferenced reclaims an inode if no directory entry or open file
// descriptor refers to it anymore. The root directory is never reclaimed.
func (fs *FileSystem) releaseIfUnreferenced(id inodefs.Inumber) error {
	if id == inodefs.RootInumber {
		return nil
	}

	inode, err := fs.getInode(id)
	if err != nil {
		return err
	}
	if !inode.IsAllocated() || inode.LinkCount > 0 || fs.isOpen(id) {
		return nil
	}
	return fs.reclaimInode(inode)
}

// reclaimInode frees all of an inode's blocks and marks its slot as unused.
func (fs *FileSystem) reclaimInode(inode inodefs.Inode) error {
	inode, err := fs.resizeInode(inode, 0)
	if err != nil {
		return err
	}

	fs.log.WithField("inode", inode.ID).Debug("reclaiming inode")
	return fs.putInode(inodefs.Inode{ID: inode.ID, Kind: inodefs.KindUnused})
}

// discardInode reclaims an inode regardless of its link count. Used to undo
// partially completed operations.
func (fs *FileSystem) discardInode(id inodefs.Inumber) error {
	inode, err := fs.getInode(id)
	if err != nil {
		return err
	}
	if !inode.IsAllocated() {
		return nil
	}
	return fs.reclaimInode(inode)
}
