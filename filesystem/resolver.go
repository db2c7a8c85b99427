package filesystem

import (
	"fmt"
	"strings"

	"github.com/dargueta/inodefs"
)

// lookupContext carries state across the recursive steps of one path lookup.
type lookupContext struct {
	// depth is the number of symlinks followed so far.
	depth int
	// origin is the directory relative paths start from. It changes to the
	// containing directory whenever a symlink is followed.
	origin inodefs.Inumber
}

// isRootPath reports whether `path` names the root directory, e.g. "/" or "//".
func isRootPath(path string) bool {
	return path != "" && strings.Trim(path, "/") == ""
}

// splitPath separates a path into its parent directory and final component.
// Trailing slashes are ignored. The parent of a top-level absolute path is "/",
// and the parent of a single relative component is "" (the origin directory).
func splitPath(path string) (string, string) {
	trimmed := strings.TrimRight(path, "/")
	separator := strings.LastIndexByte(trimmed, '/')
	if separator < 0 {
		return "", trimmed
	}

	parent := strings.TrimRight(trimmed[:separator], "/")
	if parent == "" {
		parent = "/"
	}
	return parent, trimmed[separator+1:]
}

// lookup resolves a path starting from the current directory.
func (fs *FileSystem) lookup(path string, followFinalSymlink bool) (inodefs.Inode, error) {
	return fs.resolve(path, followFinalSymlink, &lookupContext{origin: fs.cwd})
}

func (fs *FileSystem) resolve(
	path string, followFinalSymlink bool, ctx *lookupContext,
) (inodefs.Inode, error) {
	if path == "" {
		return fs.getInode(ctx.origin)
	}
	if isRootPath(path) {
		return fs.getInode(inodefs.RootInumber)
	}

	parentPath, leaf := splitPath(path)
	parent, err := fs.resolveDirectory(parentPath, ctx)
	if err != nil {
		return inodefs.Inode{}, err
	}

	entries, err := fs.listEntries(parent)
	if err != nil {
		return inodefs.Inode{}, err
	}

	index := findEntry(entries, leaf)
	if index < 0 {
		return inodefs.Inode{}, inodefs.ErrPathNotFound.WithMessage(path)
	}

	inode, err := fs.getInode(entries[index].Inumber)
	if err != nil {
		return inodefs.Inode{}, err
	}
	if !inode.IsSymlink() || !followFinalSymlink {
		return inode, nil
	}

	ctx.depth++
	if ctx.depth >= fs.maxSymlinkDepth {
		return inodefs.Inode{}, inodefs.ErrMaxSymlinkDepthExceeded.WithMessage(
			fmt.Sprintf("followed %d symlinks resolving %q", ctx.depth, path),
		)
	}

	target, err := fs.readSymlinkTarget(inode)
	if err != nil {
		return inodefs.Inode{}, err
	}

	// Relative targets are relative to the directory containing the link.
	ctx.origin = parent.ID
	return fs.resolve(target, true, ctx)
}

// resolveDirectory resolves a path that must end at a directory, following
// symlinks all the way.
func (fs *FileSystem) resolveDirectory(
	path string, ctx *lookupContext,
) (inodefs.Inode, error) {
	dir, err := fs.resolve(path, true, ctx)
	if err != nil {
		return inodefs.Inode{}, err
	}
	if !dir.IsDir() {
		return inodefs.Inode{}, inodefs.ErrNotADirectory.WithMessage(path)
	}
	return dir, nil
}

// lookupParent resolves everything but the last component of `path`, returning
// the containing directory and the name of the final component. The final
// component itself isn't looked up.
func (fs *FileSystem) lookupParent(path string) (inodefs.Inode, string, error) {
	if path == "" {
		return inodefs.Inode{}, "", inodefs.ErrInvalidArgument.WithMessage("empty path")
	}
	if isRootPath(path) {
		return inodefs.Inode{}, "", inodefs.ErrInvalidArgument.WithMessage(
			"the root directory has no parent",
		)
	}

	parentPath, leaf := splitPath(path)
	parent, err := fs.resolveDirectory(parentPath, &lookupContext{origin: fs.cwd})
	if err != nil {
		return inodefs.Inode{}, "", err
	}
	return parent, leaf, nil
}

// readSymlinkTarget returns the path stored in a symlink.
func (fs *FileSystem) readSymlinkTarget(link inodefs.Inode) (string, error) {
	target, err := fs.readData(link, 0, uint64(link.Size))
	if err != nil {
		return "", err
	}
	return string(target), nil
}
