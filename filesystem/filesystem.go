package filesystem

import (
	"encoding/binary"
	"io"

	"github.com/dargueta/inodefs"
	"github.com/dargueta/inodefs/blockstore"
	log "github.com/sirupsen/logrus"
)

// DefaultMaxSymlinkDepth is the symlink depth used when [Options] doesn't give
// one. A lookup fails as soon as it has followed this many symlinks, so at most
// DefaultMaxSymlinkDepth - 1 can be chained.
const DefaultMaxSymlinkDepth = 8

// Options configures a [FileSystem]. The zero value uses the defaults.
type Options struct {
	// MaxSymlinkDepth bounds the number of symlinks a single path lookup may
	// follow. 0 means [DefaultMaxSymlinkDepth].
	MaxSymlinkDepth int

	// Logger receives debug records about allocation, reclamation and
	// rollbacks. Defaults to a logger that discards everything.
	Logger log.FieldLogger
}

// FileSystem is the driver for a single block store. It isn't safe for
// concurrent use; callers must serialize access themselves.
type FileSystem struct {
	store           blockstore.BlockStore
	layout          layout
	formatted       bool
	openFiles       map[inodefs.FileDescriptor]inodefs.Inumber
	nextFD          inodefs.FileDescriptor
	cwd             inodefs.Inumber
	maxSymlinkDepth int
	log             log.FieldLogger
}

var _ inodefs.Driver = (*FileSystem)(nil)

// New creates a driver for `store`. If the store already contains a formatted
// file system it can be used immediately, otherwise [FileSystem.Format] must be
// called first.
func New(store blockstore.BlockStore, options Options) (*FileSystem, error) {
	err := validateGeometry(store.BytesPerBlock(), store.TotalBlocks())
	if err != nil {
		return nil, err
	}

	if options.MaxSymlinkDepth < 0 {
		return nil, inodefs.ErrInvalidArgument.WithMessage(
			"maximum symlink depth can't be negative",
		)
	}
	if options.MaxSymlinkDepth == 0 {
		options.MaxSymlinkDepth = DefaultMaxSymlinkDepth
	}

	logger := options.Logger
	if logger == nil {
		discard := log.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	fs := &FileSystem{
		store:           store,
		layout:          newLayout(store.BytesPerBlock(), store.TotalBlocks(), 0),
		openFiles:       make(map[inodefs.FileDescriptor]inodefs.Inumber),
		cwd:             inodefs.RootInumber,
		maxSymlinkDepth: options.MaxSymlinkDepth,
		log:             logger,
	}

	err = fs.detectExistingFileSystem()
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// detectExistingFileSystem looks for a valid inode count and root directory on
// the device. Anything that doesn't look right is treated as unformatted.
func (fs *FileSystem) detectExistingFileSystem() error {
	raw, err := fs.readMetadata(fs.layout.descriptorCountOffset(), 4)
	if err != nil {
		return err
	}

	candidate := newLayout(
		fs.layout.bytesPerBlock,
		fs.layout.totalBlocks,
		uint(binary.LittleEndian.Uint32(raw)),
	)
	if candidate.validate() != nil {
		fs.log.Debug("no file system found on device")
		return nil
	}

	fs.layout = candidate
	root, err := fs.getInode(inodefs.RootInumber)
	if err != nil || !root.IsDir() {
		fs.layout = newLayout(fs.layout.bytesPerBlock, fs.layout.totalBlocks, 0)
		fs.log.Debug("inode count looks valid but root directory is missing")
		return nil
	}

	fs.formatted = true
	fs.log.WithField("descriptors", candidate.maxDescriptors).Debug("found existing file system")
	return nil
}

// checkFormatted fails if there's no file system on the device yet.
func (fs *FileSystem) checkFormatted() error {
	if !fs.formatted {
		return inodefs.ErrInvalidArgument.WithMessage("device hasn't been formatted")
	}
	return nil
}

// Getcwd returns the inode of the current directory.
func (fs *FileSystem) Getcwd() inodefs.Inumber {
	return fs.cwd
}

// OpenFiles returns the number of open file descriptors.
func (fs *FileSystem) OpenFiles() int {
	return len(fs.openFiles)
}

func (fs *FileSystem) readBlock(address inodefs.BlockAddress, buffer []byte) error {
	return toError(fs.store.ReadBlock(blockstore.BlockID(address), buffer))
}

func (fs *FileSystem) writeBlock(address inodefs.BlockAddress, data []byte) error {
	return toError(fs.store.WriteBlock(blockstore.BlockID(address), data))
}

// toError converts block store failures into a [inodefs.DriverError], keeping
// nil as an untyped nil.
func toError(err error) error {
	if err == nil {
		return nil
	}
	return inodefs.CastToDriverError(err)
}
