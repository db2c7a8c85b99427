package filesystem

import (
	"fmt"
	"math"

	"github.com/dargueta/inodefs"
)

// GetDescriptor returns a copy of an inode, whether or not it's in use.
func (fs *FileSystem) GetDescriptor(id inodefs.Inumber) (inodefs.Inode, error) {
	if err := fs.checkFormatted(); err != nil {
		return inodefs.Inode{}, err
	}
	return fs.getInode(id)
}

// ListDirectory lists the entries of the directory at `path`, in the order they
// were added. The listing always includes "." and "..".
func (fs *FileSystem) ListDirectory(path string) ([]inodefs.DirectoryEntry, error) {
	if err := fs.checkFormatted(); err != nil {
		return nil, err
	}

	dir, err := fs.lookup(path, true)
	if err != nil {
		return nil, err
	}
	return fs.listEntries(dir)
}

// ListDirectoryByID lists the directory with inode number `id`.
func (fs *FileSystem) ListDirectoryByID(id inodefs.Inumber) ([]inodefs.DirectoryEntry, error) {
	if err := fs.checkFormatted(); err != nil {
		return nil, err
	}

	dir, err := fs.getInode(id)
	if err != nil {
		return nil, err
	}
	return fs.listEntries(dir)
}

// CreateFile creates an empty regular file.
func (fs *FileSystem) CreateFile(path string) (err error) {
	if err = fs.checkFormatted(); err != nil {
		return err
	}

	parent, leaf, err := fs.lookupParent(path)
	if err != nil {
		return err
	}
	err = fs.checkNewEntry(parent, leaf)
	if err != nil {
		return err
	}

	undo := newUndoStack(fs.log)
	defer func() {
		if err != nil {
			err = undo.unwind(err)
		}
	}()

	file, err := fs.allocateInode(inodefs.KindRegular)
	if err != nil {
		return err
	}
	undo.push("discard new file", func() error { return fs.discardInode(file.ID) })

	err = fs.addEntry(parent.ID, file.ID, leaf)
	if err != nil {
		return err
	}
	undo.disarm()
	return nil
}

// Open returns a new file descriptor for the object at `path`, following
// symlinks.
func (fs *FileSystem) Open(path string) (inodefs.FileDescriptor, error) {
	if err := fs.checkFormatted(); err != nil {
		return -1, err
	}

	inode, err := fs.lookup(path, true)
	if err != nil {
		return -1, err
	}

	fd := fs.nextFD
	fs.nextFD++
	fs.openFiles[fd] = inode.ID
	return fd, nil
}

// Close releases a file descriptor. If the file was unlinked while open, this
// reclaims it.
func (fs *FileSystem) Close(fd inodefs.FileDescriptor) error {
	id, ok := fs.openFiles[fd]
	if !ok {
		return invalidDescriptor(fd)
	}

	delete(fs.openFiles, fd)
	return fs.releaseIfUnreferenced(id)
}

// getOpenInode returns the current state of the inode behind a descriptor.
func (fs *FileSystem) getOpenInode(fd inodefs.FileDescriptor) (inodefs.Inode, error) {
	id, ok := fs.openFiles[fd]
	if !ok {
		return inodefs.Inode{}, invalidDescriptor(fd)
	}

	inode, err := fs.getInode(id)
	if err != nil {
		return inodefs.Inode{}, err
	}
	if !inode.IsAllocated() {
		return inodefs.Inode{}, inodefs.ErrInvalidFileDescriptor.WithMessage(
			fmt.Sprintf("file descriptor %d refers to a deleted directory", fd),
		)
	}
	return inode, nil
}

func invalidDescriptor(fd inodefs.FileDescriptor) error {
	return inodefs.ErrInvalidFileDescriptor.WithMessage(
		fmt.Sprintf("file descriptor %d isn't open", fd),
	)
}

// Read returns `length` bytes starting at `offset` of an open file.
func (fs *FileSystem) Read(fd inodefs.FileDescriptor, offset int64, length int) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, inodefs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("offset and length can't be negative, got %d and %d", offset, length),
		)
	}

	inode, err := fs.getOpenInode(fd)
	if err != nil {
		return nil, err
	}
	return fs.readData(inode, uint64(offset), uint64(length))
}

// Write overwrites bytes of an open file in place. It never grows the file.
func (fs *FileSystem) Write(fd inodefs.FileDescriptor, offset int64, data []byte) error {
	if offset < 0 {
		return inodefs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("offset can't be negative, got %d", offset),
		)
	}

	inode, err := fs.getOpenInode(fd)
	if err != nil {
		return err
	}
	if inode.IsDir() {
		return inodefs.ErrIsADirectory.WithMessage(
			fmt.Sprintf("file descriptor %d", fd),
		)
	}
	return fs.writeData(inode, uint64(offset), data)
}

// Link creates a new hard link at `newPath` to the object at `existingPath`.
// If `existingPath` is a symlink, the new link points at the symlink itself.
func (fs *FileSystem) Link(existingPath, newPath string) error {
	if err := fs.checkFormatted(); err != nil {
		return err
	}

	existing, err := fs.lookup(existingPath, false)
	if err != nil {
		return err
	}
	if existing.IsDir() {
		return inodefs.ErrIsADirectory.WithMessage(
			fmt.Sprintf("can't hard link directory %q", existingPath),
		)
	}

	parent, leaf, err := fs.lookupParent(newPath)
	if err != nil {
		return err
	}
	return fs.addEntry(parent.ID, existing.ID, leaf)
}

// Unlink removes a directory entry. The object is reclaimed once it has no
// links left and isn't open. Directories must be removed with Rmdir.
func (fs *FileSystem) Unlink(path string) error {
	if err := fs.checkFormatted(); err != nil {
		return err
	}

	parent, leaf, err := fs.lookupParent(path)
	if err != nil {
		return err
	}

	target, err := fs.resolve(leaf, false, &lookupContext{origin: parent.ID})
	if err != nil {
		return err
	}
	if target.IsDir() {
		return inodefs.ErrIsADirectory.WithMessage(
			fmt.Sprintf("can't unlink directory %q", path),
		)
	}

	_, err = fs.removeEntry(parent.ID, leaf)
	return err
}

// Truncate changes the size of a file, following symlinks. New bytes are zeroed.
func (fs *FileSystem) Truncate(path string, newSize int64) error {
	if err := fs.checkFormatted(); err != nil {
		return err
	}
	if newSize < 0 {
		return inodefs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("size can't be negative, got %d", newSize),
		)
	}
	if newSize > math.MaxUint32 {
		return inodefs.ErrOutOfCapacity.WithMessage(
			fmt.Sprintf("size %d doesn't fit in an inode", newSize),
		)
	}

	file, err := fs.lookup(path, true)
	if err != nil {
		return err
	}
	if file.IsDir() {
		return inodefs.ErrIsADirectory.WithMessage(path)
	}

	_, err = fs.resizeInode(file, uint32(newSize))
	return err
}

// Mkdir creates an empty directory. If any step fails, everything done so far
// is undone.
func (fs *FileSystem) Mkdir(path string) (err error) {
	if err = fs.checkFormatted(); err != nil {
		return err
	}

	parent, leaf, err := fs.lookupParent(path)
	if err != nil {
		return err
	}
	err = fs.checkNewEntry(parent, leaf)
	if err != nil {
		return err
	}

	undo := newUndoStack(fs.log)
	defer func() {
		if err != nil {
			err = undo.unwind(err)
		}
	}()

	dir, err := fs.allocateInode(inodefs.KindDirectory)
	if err != nil {
		return err
	}
	undo.push("discard new directory", func() error { return fs.discardInode(dir.ID) })

	err = fs.addEntry(parent.ID, dir.ID, leaf)
	if err != nil {
		return err
	}
	undo.push("remove entry from parent", func() error {
		_, err := fs.removeEntry(parent.ID, leaf)
		return err
	})

	err = fs.addEntry(dir.ID, dir.ID, ".")
	if err != nil {
		return err
	}

	err = fs.addEntry(dir.ID, parent.ID, "..")
	if err != nil {
		return err
	}

	undo.disarm()
	return nil
}

// Rmdir removes an empty directory, i.e. one holding only "." and "..".
func (fs *FileSystem) Rmdir(path string) error {
	if err := fs.checkFormatted(); err != nil {
		return err
	}

	parent, leaf, err := fs.lookupParent(path)
	if err != nil {
		return err
	}
	if leaf == "." || leaf == ".." {
		return inodefs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("can't remove %q", path),
		)
	}

	dir, err := fs.resolve(leaf, false, &lookupContext{origin: parent.ID})
	if err != nil {
		return err
	}
	if !dir.IsDir() {
		return inodefs.ErrNotADirectory.WithMessage(path)
	}
	if dir.Size != 2*DentrySize {
		return inodefs.ErrDirectoryNotEmpty.WithMessage(path)
	}

	_, err = fs.removeEntry(parent.ID, leaf)
	if err != nil {
		return err
	}

	// The directory's ".." entry is going away with it.
	parentInode, err := fs.getInode(parent.ID)
	if err != nil {
		return err
	}
	parentInode.LinkCount--
	err = fs.putInode(parentInode)
	if err != nil {
		return err
	}

	// The only link left is its own ".", so it has to be reclaimed by hand.
	dir, err = fs.getInode(dir.ID)
	if err != nil {
		return err
	}
	err = fs.reclaimInode(dir)
	if err != nil {
		return err
	}
	fs.forgetDescriptors(dir.ID)

	if fs.cwd == dir.ID {
		fs.cwd = inodefs.RootInumber
	}
	return nil
}

// Symlink creates a symbolic link at `linkPath` whose content is `target`. The
// target doesn't need to exist.
func (fs *FileSystem) Symlink(target, linkPath string) (err error) {
	if err = fs.checkFormatted(); err != nil {
		return err
	}
	if target == "" {
		return inodefs.ErrInvalidArgument.WithMessage("symlink target can't be empty")
	}
	if uint64(len(target)) > math.MaxUint32 {
		return inodefs.ErrOutOfCapacity.WithMessage("symlink target is too long")
	}

	parent, leaf, err := fs.lookupParent(linkPath)
	if err != nil {
		return err
	}
	err = fs.checkNewEntry(parent, leaf)
	if err != nil {
		return err
	}

	undo := newUndoStack(fs.log)
	defer func() {
		if err != nil {
			err = undo.unwind(err)
		}
	}()

	link, err := fs.allocateInode(inodefs.KindSymlink)
	if err != nil {
		return err
	}
	undo.push("discard new symlink", func() error { return fs.discardInode(link.ID) })

	link, err = fs.resizeInode(link, uint32(len(target)))
	if err != nil {
		return err
	}
	err = fs.writeData(link, 0, []byte(target))
	if err != nil {
		return err
	}

	// The entry goes in last so the link never appears without its target.
	err = fs.addEntry(parent.ID, link.ID, leaf)
	if err != nil {
		return err
	}
	undo.disarm()
	return nil
}

// Chdir changes the current directory, following symlinks.
func (fs *FileSystem) Chdir(path string) error {
	if err := fs.checkFormatted(); err != nil {
		return err
	}

	dir, err := fs.lookup(path, true)
	if err != nil {
		return err
	}
	if !dir.IsDir() {
		return inodefs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("%q is a %s, not a directory", path, dir.Kind),
		)
	}
	fs.cwd = dir.ID
	return nil
}

// Stat returns the inode at `path`, following symlinks.
func (fs *FileSystem) Stat(path string) (inodefs.Inode, error) {
	if err := fs.checkFormatted(); err != nil {
		return inodefs.Inode{}, err
	}
	return fs.lookup(path, true)
}

// Lstat is like Stat, but returns the symlink itself if `path` is one.
func (fs *FileSystem) Lstat(path string) (inodefs.Inode, error) {
	if err := fs.checkFormatted(); err != nil {
		return inodefs.Inode{}, err
	}
	return fs.lookup(path, false)
}

// Readlink returns the target of the symlink at `path`.
func (fs *FileSystem) Readlink(path string) (string, error) {
	if err := fs.checkFormatted(); err != nil {
		return "", err
	}

	link, err := fs.lookup(path, false)
	if err != nil {
		return "", err
	}
	if !link.IsSymlink() {
		return "", inodefs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("%q is a %s, not a symlink", path, link.Kind),
		)
	}
	return fs.readSymlinkTarget(link)
}

// FSStat reports the geometry and free space of the file system.
func (fs *FileSystem) FSStat() (inodefs.FSStat, error) {
	if err := fs.checkFormatted(); err != nil {
		return inodefs.FSStat{}, err
	}

	blocksFree, err := fs.countFreeBlocks()
	if err != nil {
		return inodefs.FSStat{}, err
	}
	descriptorsFree, err := fs.countFreeInodes()
	if err != nil {
		return inodefs.FSStat{}, err
	}

	return inodefs.FSStat{
		BlockSize:        fs.layout.bytesPerBlock,
		TotalBlocks:      fs.layout.totalBlocks,
		BlocksFree:       blocksFree,
		MetadataBlocks:   fs.layout.metadataBlocks(),
		TotalDescriptors: fs.layout.maxDescriptors,
		DescriptorsFree:  descriptorsFree,
		MaxNameLength:    inodefs.MaxNameLength,
	}, nil
}
