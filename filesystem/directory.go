package filesystem

import (
	"fmt"
	"strings"

	"github.com/dargueta/inodefs"
)

// listEntries returns every entry in a directory in on-disk order.
func (fs *FileSystem) listEntries(dir inodefs.Inode) ([]inodefs.DirectoryEntry, error) {
	if !dir.IsDir() {
		return nil, inodefs.ErrNotADirectory.WithMessage(
			fmt.Sprintf("inode %d is a %s", dir.ID, dir.Kind),
		)
	}

	content, err := fs.readData(dir, 0, uint64(dir.Size))
	if err != nil {
		return nil, err
	}
	return decodeDirents(content)
}

// findEntry returns the index of the entry called `name`, or -1 if there's no
// such entry.
func findEntry(entries []inodefs.DirectoryEntry, name string) int {
	for i, entry := range entries {
		if entry.Name == name {
			return i
		}
	}
	return -1
}

// validateName checks that `name` can be stored in a directory entry.
func validateName(name string) error {
	if len(name) > inodefs.MaxNameLength {
		return inodefs.ErrNameTooLong.WithMessage(
			fmt.Sprintf(
				"%q is %d bytes, the limit is %d", name, len(name), inodefs.MaxNameLength,
			),
		)
	}
	if name == "" || strings.ContainsAny(name, "/\x00") {
		return inodefs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("%q isn't a valid file name", name),
		)
	}
	return nil
}

// checkNewEntry fails if `name` can't be added to the directory.
func (fs *FileSystem) checkNewEntry(dir inodefs.Inode, name string) error {
	err := validateName(name)
	if err != nil {
		return err
	}

	entries, err := fs.listEntries(dir)
	if err != nil {
		return err
	}
	if findEntry(entries, name) >= 0 {
		return inodefs.ErrAlreadyExists.WithMessage(
			fmt.Sprintf("%q already exists in directory %d", name, dir.ID),
		)
	}
	return nil
}

// addEntry appends an entry pointing at `target` to a directory and increments
// the target's link count. Nothing is modified if the name is invalid or already
// taken.
func (fs *FileSystem) addEntry(dirID, target inodefs.Inumber, name string) error {
	dir, err := fs.getInode(dirID)
	if err != nil {
		return err
	}

	err = fs.checkNewEntry(dir, name)
	if err != nil {
		return err
	}

	slotOffset := uint64(dir.Size)
	dir, err = fs.resizeInode(dir, dir.Size+DentrySize)
	if err != nil {
		return err
	}

	err = fs.writeData(
		dir, slotOffset, encodeDirent(inodefs.DirectoryEntry{Inumber: target, Name: name}),
	)
	if err != nil {
		return err
	}

	// Fetch the target only now, since it may be the directory itself.
	targetInode, err := fs.getInode(target)
	if err != nil {
		return err
	}
	targetInode.LinkCount++
	return fs.putInode(targetInode)
}

// removeEntry deletes the entry called `name` from a directory, compacting the
// remaining entries, and drops the target's link count. The target is reclaimed
// if nothing else refers to it. It returns the inode the entry pointed to.
func (fs *FileSystem) removeEntry(dirID inodefs.Inumber, name string) (inodefs.Inumber, error) {
	dir, err := fs.getInode(dirID)
	if err != nil {
		return 0, err
	}

	entries, err := fs.listEntries(dir)
	if err != nil {
		return 0, err
	}

	index := findEntry(entries, name)
	if index < 0 {
		return 0, inodefs.ErrPathNotFound.WithMessage(
			fmt.Sprintf("no entry %q in directory %d", name, dirID),
		)
	}
	target := entries[index].Inumber

	// Rewrite everything after the removed entry shifted left by one slot, then
	// chop off the now-duplicated last slot.
	compacted := make([]byte, 0, (len(entries)-index-1)*DentrySize)
	for _, entry := range entries[index+1:] {
		compacted = append(compacted, encodeDirent(entry)...)
	}
	err = fs.writeData(dir, uint64(index*DentrySize), compacted)
	if err != nil {
		return 0, err
	}

	_, err = fs.resizeInode(dir, dir.Size-DentrySize)
	if err != nil {
		return 0, err
	}

	err = fs.dropLink(target)
	if err != nil {
		return 0, err
	}
	return target, nil
}

// dropLink decrements an inode's link count and reclaims it if that was the
// last reference.
func (fs *FileSystem) dropLink(id inodefs.Inumber) error {
	inode, err := fs.getInode(id)
	if err != nil {
		return err
	}
	if inode.LinkCount == 0 {
		return inodefs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf("inode %d is referenced but has no links", id),
		)
	}

	inode.LinkCount--
	err = fs.putInode(inode)
	if err != nil {
		return err
	}
	return fs.releaseIfUnreferenced(id)
}
