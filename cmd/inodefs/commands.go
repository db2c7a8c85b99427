package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dargueta/inodefs"
	"github.com/dargueta/inodefs/blockstore"
	"github.com/dargueta/inodefs/disks"
	"github.com/dargueta/inodefs/filesystem"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func listGeometries(ctx *cli.Context) error {
	writer := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "SLUG\tBLOCK SIZE\tBLOCKS\tNAME")
	for _, geometry := range disks.Geometries() {
		fmt.Fprintf(
			writer,
			"%s\t%d\t%d\t%s\n",
			geometry.Slug,
			geometry.BytesPerBlock,
			geometry.TotalBlocks,
			geometry.Name,
		)
	}
	return writer.Flush()
}

func formatImage(ctx *cli.Context, logger *log.Logger) error {
	descriptors := ctx.Uint("descriptors")
	return withSession(ctx, logger, func(fs *filesystem.FileSystem) error {
		return fs.Format(uint32(descriptors))
	})
}

func listDirectory(ctx *cli.Context, logger *log.Logger) error {
	path := ctx.Args().First()
	if path == "" {
		path = "/"
	}

	return withSession(ctx, logger, func(fs *filesystem.FileSystem) error {
		entries, err := fs.ListDirectory(path)
		if err != nil {
			return err
		}

		writer := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
		for _, entry := range entries {
			inode, err := fs.GetDescriptor(entry.Inumber)
			if err != nil {
				return err
			}
			fmt.Fprintf(
				writer,
				"%d\t%s\t%d\t%d\t%s\n",
				entry.Inumber,
				inode.Kind,
				inode.LinkCount,
				inode.Size,
				entry.Name,
			)
		}
		return writer.Flush()
	})
}

func statPath(ctx *cli.Context, logger *log.Logger) error {
	if err := requireArgs(ctx, 1); err != nil {
		return err
	}
	path := ctx.Args().First()

	return withSession(ctx, logger, func(fs *filesystem.FileSystem) error {
		var inode inodefs.Inode
		var err error
		if ctx.Bool("no-follow") {
			inode, err = fs.Lstat(path)
		} else {
			inode, err = fs.Stat(path)
		}
		if err != nil {
			return err
		}
		printInode(ctx.App.Writer, inode)

		if inode.IsSymlink() {
			target, err := fs.Readlink(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "Target: %s\n", target)
		}
		return nil
	})
}

func printInode(output io.Writer, inode inodefs.Inode) {
	fmt.Fprintf(output, "Inode: %d\n", inode.ID)
	fmt.Fprintf(output, "Type:  %s\n", inode.Kind)
	fmt.Fprintf(output, "Links: %d\n", inode.LinkCount)
	fmt.Fprintf(output, "Size:  %d\n", inode.Size)
	fmt.Fprintf(output, "Blocks: %v indirect=%d\n", inode.Direct, inode.Indirect)
}

func showFreeSpace(ctx *cli.Context, logger *log.Logger) error {
	return withSession(ctx, logger, func(fs *filesystem.FileSystem) error {
		stat, err := fs.FSStat()
		if err != nil {
			return err
		}

		output := ctx.App.Writer
		fmt.Fprintf(output, "Block size:   %d\n", stat.BlockSize)
		fmt.Fprintf(
			output,
			"Blocks:       %d total, %d free, %d metadata\n",
			stat.TotalBlocks,
			stat.BlocksFree,
			stat.MetadataBlocks,
		)
		fmt.Fprintf(
			output,
			"Descriptors:  %d total, %d free\n",
			stat.TotalDescriptors,
			stat.DescriptorsFree,
		)
		fmt.Fprintf(output, "Max name len: %d\n", stat.MaxNameLength)
		return nil
	})
}

// forEachPath runs `operation` on every path given on the command line,
// stopping at the first failure.
func forEachPath(
	ctx *cli.Context,
	logger *log.Logger,
	operation func(fs *filesystem.FileSystem, path string) error,
) error {
	if err := requireAtLeastOneArg(ctx); err != nil {
		return err
	}

	return withSession(ctx, logger, func(fs *filesystem.FileSystem) error {
		for _, path := range ctx.Args().Slice() {
			err := operation(fs, path)
			if err != nil {
				return fmt.Errorf("%s %q: %w", ctx.Command.Name, path, err)
			}
		}
		return nil
	})
}

func makeDirectories(ctx *cli.Context, logger *log.Logger) error {
	return forEachPath(ctx, logger, (*filesystem.FileSystem).Mkdir)
}

func removeDirectories(ctx *cli.Context, logger *log.Logger) error {
	return forEachPath(ctx, logger, (*filesystem.FileSystem).Rmdir)
}

func createFiles(ctx *cli.Context, logger *log.Logger) error {
	return forEachPath(ctx, logger, (*filesystem.FileSystem).CreateFile)
}

func removeFiles(ctx *cli.Context, logger *log.Logger) error {
	return forEachPath(ctx, logger, (*filesystem.FileSystem).Unlink)
}

func hardLink(ctx *cli.Context, logger *log.Logger) error {
	if err := requireArgs(ctx, 2); err != nil {
		return err
	}
	return withSession(ctx, logger, func(fs *filesystem.FileSystem) error {
		return fs.Link(ctx.Args().Get(0), ctx.Args().Get(1))
	})
}

func symbolicLink(ctx *cli.Context, logger *log.Logger) error {
	if err := requireArgs(ctx, 2); err != nil {
		return err
	}
	return withSession(ctx, logger, func(fs *filesystem.FileSystem) error {
		return fs.Symlink(ctx.Args().Get(0), ctx.Args().Get(1))
	})
}

// writeFile replaces the contents of a file with standard input, creating the
// file if it doesn't exist.
func writeFile(ctx *cli.Context, logger *log.Logger) error {
	if err := requireArgs(ctx, 1); err != nil {
		return err
	}
	path := ctx.Args().First()

	data, err := io.ReadAll(ctx.App.Reader)
	if err != nil {
		return err
	}

	return withSession(ctx, logger, func(fs *filesystem.FileSystem) error {
		_, err := fs.Stat(path)
		if errors.Is(err, inodefs.ErrPathNotFound) {
			err = fs.CreateFile(path)
		}
		if err != nil {
			return err
		}

		err = fs.Truncate(path, 0)
		if err != nil {
			return err
		}
		err = fs.Truncate(path, int64(len(data)))
		if err != nil {
			return err
		}

		fd, err := fs.Open(path)
		if err != nil {
			return err
		}
		err = fs.Write(fd, 0, data)
		if err != nil {
			fs.Close(fd)
			return err
		}
		logger.Debugf("wrote %d bytes to %q", len(data), path)
		return fs.Close(fd)
	})
}

func catFile(ctx *cli.Context, logger *log.Logger) error {
	if err := requireArgs(ctx, 1); err != nil {
		return err
	}
	path := ctx.Args().First()

	return withSession(ctx, logger, func(fs *filesystem.FileSystem) error {
		inode, err := fs.Stat(path)
		if err != nil {
			return err
		}

		fd, err := fs.Open(path)
		if err != nil {
			return err
		}
		defer fs.Close(fd)

		data, err := fs.Read(fd, 0, int(inode.Size))
		if err != nil {
			return err
		}
		_, err = ctx.App.Writer.Write(data)
		return err
	})
}

func exportImage(ctx *cli.Context, logger *log.Logger) (err error) {
	if err = requireArgs(ctx, 1); err != nil {
		return err
	}

	s, err := openSession(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			err = multierror.Append(err, closeErr)
		}
	}()

	output, err := os.Create(ctx.Args().First())
	if err != nil {
		return err
	}
	defer func() {
		// The snapshot isn't complete until the file is closed.
		if closeErr := output.Close(); closeErr != nil {
			err = multierror.Append(err, closeErr)
		}
	}()

	written, err := blockstore.Export(s.cache, output)
	if err != nil {
		return err
	}
	logger.Infof("exported %d bytes to %s", written, output.Name())
	return nil
}

func importImage(ctx *cli.Context, logger *log.Logger) error {
	if err := requireArgs(ctx, 1); err != nil {
		return err
	}

	input, err := os.Open(ctx.Args().First())
	if err != nil {
		return err
	}
	defer input.Close()

	s, err := openSession(ctx, logger)
	if err != nil {
		return err
	}
	err = blockstore.Import(input, s.cache)
	closeErr := s.Close()
	if err != nil {
		return err
	}
	return closeErr
}
