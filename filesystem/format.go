package filesystem

import (
	"encoding/binary"
	"fmt"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/inodefs"
	"github.com/noxer/bytewriter"
	log "github.com/sirupsen/logrus"
)

// Format creates an empty file system with room for `maxDescriptors` inodes,
// including the root directory. Everything on the device is lost, and all open
// file descriptors are invalidated.
func (fs *FileSystem) Format(maxDescriptors uint32) error {
	target := newLayout(fs.layout.bytesPerBlock, fs.layout.totalBlocks, uint(maxDescriptors))
	err := target.validate()
	if err != nil {
		return err
	}

	metadataBlocks := target.metadataBlocks()
	metadata := make([]byte, metadataBlocks*target.bytesPerBlock)
	writer := bytewriter.New(metadata)

	// The metadata blocks are always in use.
	allocationMap := bitmap.New(int(target.bitmapSize * 8))
	for i := 0; i < int(metadataBlocks); i++ {
		allocationMap.Set(i, true)
	}
	_, err = writer.Write(allocationMap.Data(false)[:target.bitmapSize])
	if err != nil {
		return inodefs.ErrIOFailed.Wrap(
			fmt.Errorf("failed to build allocation bitmap: %w", err),
		)
	}

	err = binary.Write(writer, binary.LittleEndian, maxDescriptors)
	if err != nil {
		return inodefs.ErrIOFailed.Wrap(
			fmt.Errorf("failed to build descriptor count: %w", err),
		)
	}

	// Every inode starts out unused, but still carries its own ID.
	for i := uint32(0); i < maxDescriptors; i++ {
		_, err = writer.Write(encodeInode(inodefs.Inode{ID: inodefs.Inumber(i)}))
		if err != nil {
			return inodefs.ErrIOFailed.Wrap(
				fmt.Errorf("failed to build metadata for inode %d: %w", i, err),
			)
		}
	}

	bytesPerBlock := target.bytesPerBlock
	for i := uint(0); i < metadataBlocks; i++ {
		err = fs.writeBlock(
			inodefs.BlockAddress(i),
			metadata[i*bytesPerBlock:(i+1)*bytesPerBlock],
		)
		if err != nil {
			return err
		}
	}

	fs.layout = target
	fs.formatted = true
	fs.openFiles = make(map[inodefs.FileDescriptor]inodefs.Inumber)
	fs.cwd = inodefs.RootInumber

	err = fs.createRootDirectory()
	if err != nil {
		fs.formatted = false
		return err
	}

	fs.log.WithFields(log.Fields{
		"descriptors":     maxDescriptors,
		"metadata_blocks": metadataBlocks,
		"data_blocks":     target.totalBlocks - metadataBlocks,
	}).Debug("formatted device")
	return nil
}

// createRootDirectory sets up inode 0 as a directory whose "." and ".." both
// point at itself.
func (fs *FileSystem) createRootDirectory() error {
	root, err := fs.allocateInode(inodefs.KindDirectory)
	if err != nil {
		return err
	}
	if root.ID != inodefs.RootInumber {
		return inodefs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf("root directory was allocated inode %d", root.ID),
		)
	}

	err = fs.addEntry(root.ID, root.ID, ".")
	if err != nil {
		return err
	}
	return fs.addEntry(root.ID, root.ID, "..")
}
